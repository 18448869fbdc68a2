package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/envelope-zero/ledger/pkg/httperrors"
	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/envelope-zero/ledger/pkg/ledger"
	"github.com/gin-gonic/gin"
)

type ReplayEditable struct {
	AsOf *time.Time `json:"asOf" example:"2024-01-07T18:43:00.271152Z"` // Entries effective up to this time count towards the current balance. Defaults to now
}

type ReplayResponse struct {
	Data  *ledger.ReplayResult `json:"data"`                                            // Summary of the replay
	Error *string              `json:"error" example:"the ledger could not be updated"` // The error, if any occurred
}

// RegisterReplayRoutes registers the routes for replays with
// the RouterGroup that is passed.
func (co Controller) RegisterReplayRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsReplay)
	r.POST("", co.Replay)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Replay
// @Success		204
// @Router			/v1/replay [options]
func OptionsReplay(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Replay
// @Description	Recomputes all balances from the log
// @Tags			Replay
// @Accept			json
// @Produce		json
// @Success		200		{object}	ReplayResponse
// @Failure		400		{object}	ReplayResponse
// @Failure		500		{object}	ReplayResponse
// @Param			replay	body		controllers.ReplayEditable	false	"Replay"
// @Router			/v1/replay [post]
func (co Controller) Replay(c *gin.Context) {
	var editable ReplayEditable

	// The body is optional
	err := httputil.BindData(c, &editable)
	if err != nil && !errors.Is(err, httperrors.ErrRequestBodyEmpty) {
		httperrors.Handler(c, err)
		return
	}

	var result ledger.ReplayResult
	if editable.AsOf == nil {
		result, err = co.Engine.FullReplay(c.Request.Context())
	} else {
		result, err = co.Engine.FullReplayAt(c.Request.Context(), *editable.AsOf)
	}
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.JSON(http.StatusOK, ReplayResponse{Data: &result})
}
