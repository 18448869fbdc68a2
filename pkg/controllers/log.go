package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/envelope-zero/ledger/pkg/httperrors"
	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/envelope-zero/ledger/pkg/ledger"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"golang.org/x/exp/slices"
)

const defaultLimit = 50

// RegisterLogRoutes registers the routes for the log with
// the RouterGroup that is passed.
func (co Controller) RegisterLogRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsLog)
		r.GET("", co.GetLog)
	}

	{
		r.OPTIONS("/export", OptionsLog)
		r.GET("/export", co.GetLogExport)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Log
// @Success		204
// @Router			/v1/log [options]
// @Router			/v1/log/export [options]
func OptionsLog(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get log
// @Description	Returns the log entries in the order they were logged
// @Tags			Log
// @Produce		json
// @Success		200			{object}	LogListResponse
// @Failure		400			{object}	LogListResponse
// @Failure		500			{object}	LogListResponse
// @Param			envelope	query		uint	false	"Filter by envelope ID"
// @Param			offset		query		uint	false	"The offset of the first entry returned. Defaults to 0."
// @Param			limit		query		int		false	"Maximum number of entries to return. Defaults to 50."
// @Router			/v1/log [get]
func (co Controller) GetLog(c *gin.Context) {
	var filter LogQueryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httperrors.Handler(c, httperrors.ErrInvalidQueryString)
		return
	}

	limit := defaultLimit
	if slices.Contains(httputil.GetURLFields(c.Request.URL, filter), "Limit") {
		limit = filter.Limit
	}

	entries, total, err := co.Engine.Store().LogEntries(c.Request.Context(), ledger.LogFilter{
		EnvelopeID: filter.Envelope,
		Offset:     int(filter.Offset),
		Limit:      limit,
	})
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	data := make([]LogEntry, 0, len(entries))
	for _, entry := range entries {
		data = append(data, co.newLogEntry(c, entry))
	}

	c.JSON(http.StatusOK, LogListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  total,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// exportSheet is the name of the worksheet containing the log.
const exportSheet = "Log"

// @Summary		Export log
// @Description	Exports the complete log as an XLSX spreadsheet
// @Tags			Log
// @Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success		200
// @Failure		500	{object}	httperrors.HTTPError
// @Router			/v1/log/export [get]
func (co Controller) GetLogExport(c *gin.Context) {
	ctx := c.Request.Context()

	entries, _, err := co.Engine.Store().LogEntries(ctx, ledger.LogFilter{Limit: -1})
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	envelopes, err := co.Engine.Store().Envelopes(ctx)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	names := make(map[uint]string, len(envelopes))
	for _, e := range envelopes {
		names[e.ID] = e.Name
	}

	f := excelize.NewFile()
	defer f.Close()

	err = f.SetSheetName(f.GetSheetName(0), exportSheet)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	header := []any{"ID", "Envelope ID", "Envelope", "Effective time", "Description", fmt.Sprintf("Amount (%s)", co.Currency), "Amount (minor units)"}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		httperrors.Handler(c, err)
		return
	}

	for i, entry := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			httperrors.Handler(c, err)
			return
		}

		row := []any{
			entry.ID,
			entry.EnvelopeID,
			names[entry.EnvelopeID],
			entry.Effective().Format(time.RFC3339),
			entry.Description,
			co.Currency.FromMinor(entry.AmountCents).InexactFloat64(),
			entry.AmountCents,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			httperrors.Handler(c, err)
			return
		}
	}

	widths := []struct {
		column string
		width  float64
	}{
		{"C", 20},
		{"D", 22},
		{"E", 40},
	}
	for _, w := range widths {
		if err := f.SetColWidth(exportSheet, w.column, w.column, w.width); err != nil {
			httperrors.Handler(c, err)
			return
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"ledger_%s.xlsx\"", time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		log.Error().Str("request-id", requestid.Get(c)).Err(err).Msg("Writing the log export failed")
	}
}
