package controllers

import (
	"fmt"
	"time"

	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type LogEntryLinks struct {
	Envelope string `json:"envelope" example:"https://example.com/api/v1/envelopes/3"` // The envelope the entry belongs to
}

type LogEntry struct {
	ID            uint            `json:"id" example:"1274"`                                // ID of the entry. IDs reflect the order of insertion
	EnvelopeID    uint            `json:"envelopeId" example:"3"`                           // ID of the envelope
	Amount        decimal.Decimal `json:"amount" example:"-12.5"`                           // Amount in the main unit
	AmountCents   int64           `json:"amountCents" example:"-1250"`                      // Amount in minor units
	Description   string          `json:"description" example:"Weekly groceries"`           // Description of the entry
	EffectiveTime time.Time       `json:"effectiveTime" example:"2024-01-07T18:43:00.271Z"` // Time the entry takes effect for the current balance
	CreatedAt     time.Time       `json:"createdAt" example:"2024-01-07T18:43:00.271152Z"`  // Time the entry was logged
	Links         LogEntryLinks   `json:"links"`                                            // Links to related resources
}

func (co Controller) newLogEntry(c *gin.Context, model models.LogEntry) LogEntry {
	return LogEntry{
		ID:            model.ID,
		EnvelopeID:    model.EnvelopeID,
		Amount:        co.Currency.FromMinor(model.AmountCents),
		AmountCents:   model.AmountCents,
		Description:   model.Description,
		EffectiveTime: model.Effective(),
		CreatedAt:     model.CreatedAt.In(time.UTC),
		Links: LogEntryLinks{
			Envelope: fmt.Sprintf("%s/v1/envelopes/%d", httputil.URL(c), model.EnvelopeID),
		},
	}
}

type LogListResponse struct {
	Data       []LogEntry  `json:"data"`                                                                                // List of log entries
	Error      *string     `json:"error" example:"the query string contains unparseable data. Please check the values"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                                          // Pagination information
}

type LogQueryFilter struct {
	Envelope uint `form:"envelope"` // By the ID of the envelope
	Offset   uint `form:"offset"`   // The offset of the first entry returned. Defaults to 0.
	Limit    int  `form:"limit"`    // Maximum number of entries to return. Defaults to 50, -1 returns all entries.
}
