package rollup

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	httperr "github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the administrative recalculation endpoint.
func (e *Engine) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/admin/analytics/recalculate", e.HandleRecalculate)
}

// HandleRecalculate handles POST /v1/admin/analytics/recalculate.
// Body: {"start_date": "2024-06-01", "end_date": "2024-06-30"}.
// Blocking: the response is sent only after the rebuild finishes, so the
// request lifetime matches the job (no implicit timeout shorter than the
// expected scan).
func (e *Engine) HandleRecalculate(c *gin.Context) {
	var body struct {
		StartDate string `json:"start_date" binding:"required"`
		EndDate   string `json:"end_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid request body",
			Details:   err.Error(),
		})
		return
	}

	start, err := time.Parse("2006-01-02", body.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRangeError,
			Message:   "start_date must be YYYY-MM-DD",
			Details:   err.Error(),
		})
		return
	}
	end, err := time.Parse("2006-01-02", body.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRangeError,
			Message:   "end_date must be YYYY-MM-DD",
			Details:   err.Error(),
		})
		return
	}

	summary, err := e.Recalculate(c.Request.Context(), start, end)
	if err != nil {
		if errors.Is(err, ErrInvalidRange) {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidRangeError,
				Message:   "Invalid recalculation range",
				Details:   err.Error(),
			})
			return
		}

		slog.Error("Recalculation failed", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Recalculation failed",
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}
