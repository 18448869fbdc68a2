package controllers

import (
	"net/http"

	"github.com/envelope-zero/ledger/pkg/httperrors"
	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/gin-gonic/gin"
	"github.com/ryanuber/go-glob"
)

// RegisterEnvelopeRoutes registers the routes for envelopes with
// the RouterGroup that is passed.
func (co Controller) RegisterEnvelopeRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", co.OptionsEnvelopeList)
		r.GET("", co.GetEnvelopes)
		r.POST("", co.CreateEnvelope)
	}

	// Envelope with ID
	{
		r.OPTIONS("/:id", co.OptionsEnvelopeDetail)
		r.GET("/:id", co.GetEnvelope)
		r.PATCH("/:id", co.UpdateEnvelope)
	}

	// Deposits
	{
		r.OPTIONS("/:id/deposits", co.OptionsDeposits)
		r.POST("/:id/deposits", co.CreateDeposit)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Envelopes
// @Success		204
// @Router			/v1/envelopes [options]
func (co Controller) OptionsEnvelopeList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Envelopes
// @Success		204
// @Failure		400	{object}	httperrors.HTTPError
// @Failure		404	{object}	httperrors.HTTPError
// @Failure		500	{object}	httperrors.HTTPError
// @Param			id	path		uint	true	"ID of the envelope"
// @Router			/v1/envelopes/{id} [options]
func (co Controller) OptionsEnvelopeDetail(c *gin.Context) {
	_, err := co.envelopeFromPath(c)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	httputil.OptionsGetPatch(c)
}

// @Summary		Get envelopes
// @Description	Returns a list of envelopes
// @Tags			Envelopes
// @Produce		json
// @Success		200		{object}	EnvelopeListResponse
// @Failure		500		{object}	EnvelopeListResponse
// @Param			name	query		string	false	"Filter by name, * matches any characters"
// @Router			/v1/envelopes [get]
func (co Controller) GetEnvelopes(c *gin.Context) {
	var filter EnvelopeQueryFilter

	// The filters contain only strings, so this will always succeed
	_ = c.Bind(&filter)

	envelopes, err := co.Engine.Store().Envelopes(c.Request.Context())
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	data := make([]Envelope, 0, len(envelopes))
	for _, envelope := range envelopes {
		if filter.Name != "" && !glob.Glob(filter.Name, envelope.Name) {
			continue
		}

		data = append(data, co.newEnvelope(c, envelope))
	}

	c.JSON(http.StatusOK, EnvelopeListResponse{
		Data: data,
	})
}

// @Summary		Create envelope
// @Description	Creates a new envelope with zero balances
// @Tags			Envelopes
// @Accept			json
// @Produce		json
// @Success		201			{object}	EnvelopeResponse
// @Failure		400			{object}	EnvelopeResponse
// @Failure		500			{object}	EnvelopeResponse
// @Param			envelope	body		controllers.EnvelopeEditable	true	"Envelope"
// @Router			/v1/envelopes [post]
func (co Controller) CreateEnvelope(c *gin.Context) {
	var editable EnvelopeEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	envelope, err := co.Engine.Store().CreateEnvelope(c.Request.Context(), editable.Name)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	data := co.newEnvelope(c, envelope)
	c.JSON(http.StatusCreated, EnvelopeResponse{Data: &data})
}

// @Summary		Get Envelope
// @Description	Returns a specific Envelope
// @Tags			Envelopes
// @Produce		json
// @Success		200	{object}	EnvelopeResponse
// @Failure		400	{object}	EnvelopeResponse
// @Failure		404	{object}	EnvelopeResponse
// @Failure		500	{object}	EnvelopeResponse
// @Param			id	path		uint	true	"ID of the envelope"
// @Router			/v1/envelopes/{id} [get]
func (co Controller) GetEnvelope(c *gin.Context) {
	data, err := co.envelopeFromPath(c)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.JSON(http.StatusOK, EnvelopeResponse{Data: &data})
}

// @Summary		Update envelope
// @Description	Renames an existing envelope. Balances cannot be changed directly, use deposits instead.
// @Tags			Envelopes
// @Accept			json
// @Produce		json
// @Success		200			{object}	EnvelopeResponse
// @Failure		400			{object}	EnvelopeResponse
// @Failure		404			{object}	EnvelopeResponse
// @Failure		500			{object}	EnvelopeResponse
// @Param			id			path		uint						true	"ID of the envelope"
// @Param			envelope	body		controllers.EnvelopeEditable	true	"Envelope"
// @Router			/v1/envelopes/{id} [patch]
func (co Controller) UpdateEnvelope(c *gin.Context) {
	id, err := httputil.ParseID(c.Param("id"))
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	var editable EnvelopeEditable
	err = httputil.BindData(c, &editable)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	envelope, err := co.Engine.Store().RenameEnvelope(c.Request.Context(), id, editable.Name)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	data := co.newEnvelope(c, envelope)
	c.JSON(http.StatusOK, EnvelopeResponse{Data: &data})
}

// envelopeFromPath returns the envelope identified by the id path parameter.
func (co Controller) envelopeFromPath(c *gin.Context) (Envelope, error) {
	id, err := httputil.ParseID(c.Param("id"))
	if err != nil {
		return Envelope{}, err
	}

	envelope, err := co.Engine.Store().Envelope(c.Request.Context(), id)
	if err != nil {
		return Envelope{}, err
	}

	return co.newEnvelope(c, envelope), nil
}
