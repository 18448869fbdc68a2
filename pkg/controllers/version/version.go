package version

import (
	"net/http"

	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/gin-gonic/gin"
)

type Response struct {
	Data Object `json:"data"` // Data object for the version endpoint
}

type Object struct {
	Version  string `json:"version" example:"1.1.0"` // The running version of the ledger
	Currency string `json:"currency" example:"EUR"`  // ISO 4217 code of the currency all amounts are in
}

func RegisterRoutes(r *gin.RouterGroup, object Object) {
	r.GET("", Get(object))
	r.OPTIONS("", Options)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			General
// @Success		204
// @Router			/version [options]
func Options(c *gin.Context) {
	httputil.OptionsGet(c)
}

// Get returns the handler for the version endpoint.
//
// @Summary		API version
// @Description	Returns the software version of the API
// @Tags			General
// @Success		200	{object}	Response
// @Router			/version [get]
func Get(object Object) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, Response{
			Data: object,
		})
	}
}
