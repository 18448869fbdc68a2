package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/envelope-zero/ledger/pkg/httperrors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

type ContextKey string

// ContextURL is the key for the API base URL in the gin context.
const ContextURL ContextKey = "ledger:url"

// URL returns the API base URL for the request.
func URL(c *gin.Context) string {
	return c.GetString(string(ContextURL))
}

// BindData binds the data from the request to the struct passed in the interface.
func BindData(c *gin.Context, data any) error {
	if err := c.ShouldBindJSON(data); err != nil {
		if errors.Is(err, io.EOF) {
			return httperrors.ErrRequestBodyEmpty
		}

		var jsonUnmarshalTypeError *json.UnmarshalTypeError
		if errors.As(err, &jsonUnmarshalTypeError) {
			return httperrors.Error{Err: err, Status: http.StatusBadRequest}
		}

		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			messages := make([]string, 0, len(validationErrors))
			for _, e := range validationErrors {
				messages = append(messages, validationErrorToText(e))
			}
			return httperrors.Error{Err: errors.New(strings.Join(messages, ", ")), Status: http.StatusBadRequest}
		}

		log.Error().Str("request-id", requestid.Get(c)).Msgf("%T: %v", err, err.Error())
		return httperrors.ErrInvalidBody
	}

	return nil
}

func validationErrorToText(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "max":
		return fmt.Sprintf("%s cannot be longer than %s", e.Field(), e.Param())
	}
	return fmt.Sprintf("%s is not valid", e.Field())
}

// ParseID parses a resource ID from a path parameter.
func ParseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 0)
	if err != nil || id == 0 {
		return 0, httperrors.ErrInvalidID
	}

	return uint(id), nil
}

// GetURLFields returns the names of all fields of filter whose
// query parameters are set in url.
//
// This can be useful to distinguish zero values from unset parameters
// without defining them as pointer fields.
func GetURLFields(url *url.URL, filter any) []string {
	var setFields []string

	val := reflect.Indirect(reflect.ValueOf(filter))
	for i := 0; i < val.NumField(); i++ {
		field := val.Type().Field(i).Name
		param := val.Type().Field(i).Tag.Get("form")

		if url.Query().Has(param) {
			setFields = append(setFields, field)
		}
	}
	return setFields
}
