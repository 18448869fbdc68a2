package httperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/envelope-zero/ledger/pkg/ledger"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type HTTPError struct {
	Error string `json:"error" example:"there is no envelope with this ID"`
}

// Generate a struct containing the HTTP error on the fly.
func New(c *gin.Context, status int, msgAndArgs ...any) {
	// Format msgAndArgs in a final string.
	// This is taken almost exactly from https://github.com/stretchr/testify/blob/181cea6eab8b2de7071383eca4be32a424db38dd/assert/assertions.go#L181
	msg := ""
	if len(msgAndArgs) == 1 {
		if msgAsStr, ok := msgAndArgs[0].(string); ok {
			msg = msgAsStr
		}
		msg = fmt.Sprintf("%+v", msg)
	}

	if len(msgAndArgs) > 1 {
		msg = fmt.Sprintf(msgAndArgs[0].(string), msgAndArgs[1:]...)
	}

	c.JSON(status, HTTPError{
		Error: msg,
	})
}

// Status returns the appropriate HTTP status for an error.
func Status(err error) int {
	var e Error
	if errors.As(err, &e) {
		return e.Status
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	if errors.Is(err, ledger.ErrStore) || errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	return http.StatusBadRequest
}

// Handler writes the error response for err.
//
// Server errors are logged with the request ID. The client only gets the
// request ID since the underlying error is not helpful for them.
func Handler(c *gin.Context, err error) {
	status := Status(err)
	if status < http.StatusInternalServerError {
		New(c, status, err.Error())
		return
	}

	log.Error().Str("request-id", requestid.Get(c)).Msgf("%T: %v", err, err.Error())
	New(c, status, fmt.Sprintf("An error occurred on the server during your request, please contact your server administrator. The request id is '%v', send this to your server administrator to help them finding the problem", requestid.Get(c)))
}
