package controllers

import (
	"net/http"
	"time"

	"github.com/envelope-zero/ledger/internal/money"
	"github.com/envelope-zero/ledger/pkg/httperrors"
	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// DepositEditable is a deposit or withdrawal for an envelope.
//
// The amount is either given in the main unit of the currency or in
// minor units, never both.
type DepositEditable struct {
	Amount        *decimal.Decimal `json:"amount" example:"12.5"`                               // Amount in the main unit. Negative amounts are withdrawals
	AmountCents   *int64           `json:"amountCents" example:"1250"`                          // Amount in minor units. Negative amounts are withdrawals
	Description   string           `json:"description" example:"Weekly groceries"`              // Description of the deposit
	EffectiveTime *time.Time       `json:"effectiveTime" example:"2024-01-07T18:43:00.271152Z"` // Time the deposit takes effect. Defaults to now, times in the future are delayed deposits
}

// amountCents returns the amount in minor units.
func (d DepositEditable) amountCents(currency money.Currency) (int64, error) {
	switch {
	case d.Amount != nil && d.AmountCents != nil:
		return 0, errAmountAmbiguous
	case d.AmountCents != nil:
		return *d.AmountCents, nil
	case d.Amount != nil:
		return currency.ToMinor(*d.Amount)
	}

	return 0, errAmountRequired
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Envelopes
// @Success		204
// @Failure		400	{object}	httperrors.HTTPError
// @Failure		404	{object}	httperrors.HTTPError
// @Failure		500	{object}	httperrors.HTTPError
// @Param			id	path		uint	true	"ID of the envelope"
// @Router			/v1/envelopes/{id}/deposits [options]
func (co Controller) OptionsDeposits(c *gin.Context) {
	_, err := co.envelopeFromPath(c)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	httputil.OptionsPost(c)
}

// @Summary		Deposit
// @Description	Deposits to or withdraws from an envelope. The projected balance changes immediately,
// @Description	the current balance only if the deposit is already effective.
// @Description	Deposits with an amount of zero do not change anything and are not logged.
// @Tags			Envelopes
// @Accept			json
// @Produce		json
// @Success		200		{object}	EnvelopeResponse
// @Success		201		{object}	EnvelopeResponse
// @Failure		400		{object}	EnvelopeResponse
// @Failure		404		{object}	EnvelopeResponse
// @Failure		500		{object}	EnvelopeResponse
// @Param			id		path		uint						true	"ID of the envelope"
// @Param			deposit	body		controllers.DepositEditable	true	"Deposit"
// @Router			/v1/envelopes/{id}/deposits [post]
func (co Controller) CreateDeposit(c *gin.Context) {
	id, err := httputil.ParseID(c.Param("id"))
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	var deposit DepositEditable
	err = httputil.BindData(c, &deposit)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	amount, err := deposit.amountCents(co.Currency)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	ctx := c.Request.Context()
	if deposit.EffectiveTime == nil {
		err = co.Engine.Deposit(ctx, id, amount, deposit.Description)
	} else {
		err = co.Engine.DepositAt(ctx, id, amount, deposit.Description, *deposit.EffectiveTime)
	}
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	envelope, err := co.Engine.Store().Envelope(ctx, id)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	// Nothing has been logged for zero amounts
	status := http.StatusCreated
	if amount == 0 {
		status = http.StatusOK
	}

	data := co.newEnvelope(c, envelope)
	c.JSON(status, EnvelopeResponse{Data: &data})
}
