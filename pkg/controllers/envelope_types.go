package controllers

import (
	"fmt"

	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// EnvelopeEditable represents all user configurable parameters
type EnvelopeEditable struct {
	Name string `json:"name" binding:"required" example:"Groceries"` // Name of the envelope
}

type EnvelopeLinks struct {
	Self     string `json:"self" example:"https://example.com/api/v1/envelopes/3"`              // The envelope itself
	Deposits string `json:"deposits" example:"https://example.com/api/v1/envelopes/3/deposits"` // Endpoint for deposits and withdrawals
	Log      string `json:"log" example:"https://example.com/api/v1/log?envelope=3"`            // The envelope's log entries
}

type Envelope struct {
	ID             uint            `json:"id" example:"3"`                  // ID of the envelope
	Name           string          `json:"name" example:"Groceries"`        // Name of the envelope
	Current        decimal.Decimal `json:"current" example:"300"`           // Balance of all entries that are already effective
	Projected      decimal.Decimal `json:"projected" example:"1300"`        // Balance of all entries, including delayed ones
	CurrentCents   int64           `json:"currentCents" example:"30000"`    // Current balance in minor units
	ProjectedCents int64           `json:"projectedCents" example:"130000"` // Projected balance in minor units
	models.Timestamps
	Links EnvelopeLinks `json:"links"` // Links to related resources
}

func (co Controller) newEnvelope(c *gin.Context, model models.Envelope) Envelope {
	url := httputil.URL(c)

	return Envelope{
		ID:             model.ID,
		Name:           model.Name,
		Current:        co.Currency.FromMinor(model.CurrentCents),
		Projected:      co.Currency.FromMinor(model.ProjectedCents),
		CurrentCents:   model.CurrentCents,
		ProjectedCents: model.ProjectedCents,
		Timestamps:     model.Timestamps,
		Links: EnvelopeLinks{
			Self:     fmt.Sprintf("%s/v1/envelopes/%d", url, model.ID),
			Deposits: fmt.Sprintf("%s/v1/envelopes/%d/deposits", url, model.ID),
			Log:      fmt.Sprintf("%s/v1/log?envelope=%d", url, model.ID),
		},
	}
}

type EnvelopeListResponse struct {
	Data  []Envelope `json:"data"`                                                        // List of Envelopes
	Error *string    `json:"error" example:"the specified resource ID is not a valid ID"` // The error, if any occurred
}

type EnvelopeResponse struct {
	Data  *Envelope `json:"data"`                                              // Data for the Envelope
	Error *string   `json:"error" example:"there is no envelope with this ID"` // The error, if any occurred
}

type EnvelopeQueryFilter struct {
	Name string `form:"name"` // By name. Supports * as wildcard
}
