// Package controllers implements the v1 HTTP API of the ledger.
package controllers

import (
	"net/http"

	"github.com/envelope-zero/ledger/internal/money"
	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/envelope-zero/ledger/pkg/ledger"
	"github.com/gin-gonic/gin"
)

// Controller holds the dependencies of the API handlers.
type Controller struct {
	Engine   *ledger.Engine
	Currency money.Currency // All amounts are in this currency
}

// RegisterRoutes registers the v1 routes with the RouterGroup that is passed.
func (co Controller) RegisterRoutes(r *gin.RouterGroup) {
	{
		r.GET("", GetV1)
		r.OPTIONS("", OptionsV1)
	}

	co.RegisterEnvelopeRoutes(r.Group("/envelopes"))
	co.RegisterLogRoutes(r.Group("/log"))
	co.RegisterReplayRoutes(r.Group("/replay"))
}

type V1Response struct {
	Links V1Links `json:"links"` // Links for the v1 API
}

type V1Links struct {
	Envelopes string `json:"envelopes" example:"https://example.com/api/v1/envelopes"` // URL of Envelope collection endpoint
	Log       string `json:"log" example:"https://example.com/api/v1/log"`             // URL of the log endpoint
	Export    string `json:"export" example:"https://example.com/api/v1/log/export"`   // URL of the XLSX export of the log
	Replay    string `json:"replay" example:"https://example.com/api/v1/replay"`       // URL of the replay endpoint
}

// GetV1 returns the link list for v1
//
//	@Summary		v1 API
//	@Description	Returns general information about the v1 API
//	@Tags			v1
//	@Success		200	{object}	V1Response
//	@Router			/v1 [get]
func GetV1(c *gin.Context) {
	url := httputil.URL(c)

	c.JSON(http.StatusOK, V1Response{
		Links: V1Links{
			Envelopes: url + "/v1/envelopes",
			Log:       url + "/v1/log",
			Export:    url + "/v1/log/export",
			Replay:    url + "/v1/replay",
		},
	})
}

// OptionsV1 returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			v1
//	@Success		204
//	@Router			/v1 [options]
func OptionsV1(c *gin.Context) {
	httputil.OptionsGet(c)
}
