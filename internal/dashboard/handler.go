package dashboard

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	httperr "github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/errors"
	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/temporal"
	"github.com/gin-gonic/gin"
)

const defaultSummaryWindowDays = 30

// RegisterRoutes registers the dashboard read endpoints.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/analytics/summary", s.HandleSummary)
	r.GET("/v1/analytics/:granularity", s.HandleRange)
}

// HandleRange handles GET /v1/analytics/:granularity?start=...&end=...
// Dates are YYYY-MM-DD; the response is the ordered bucket sequence.
func (s *Service) HandleRange(c *gin.Context) {
	var uri struct {
		Granularity string `uri:"granularity" binding:"required"`
	}
	var query struct {
		Start time.Time `form:"start" binding:"required" time_format:"2006-01-02"`
		End   time.Time `form:"end" binding:"required" time_format:"2006-01-02"`
	}

	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid path parameters",
			Details:   err.Error(),
		})
		return
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	g, err := temporal.ParseGranularity(uri.Granularity)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid granularity",
			Details:   err.Error(),
		})
		return
	}

	buckets, err := s.GetAnalyticsForRange(c.Request.Context(), g, query.Start, query.End)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, RangeResponse{
		Granularity: g,
		Start:       query.Start,
		End:         query.End,
		Buckets:     buckets,
	})
}

// HandleSummary handles GET /v1/analytics/summary?days=30.
func (s *Service) HandleSummary(c *gin.Context) {
	days := defaultSummaryWindowDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidQueryError,
				Message:   "days must be an integer",
				Details:   err.Error(),
			})
			return
		}
		days = parsed
	}

	summary, err := s.Summarize(c.Request.Context(), days)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func writeServiceError(c *gin.Context, err error) {
	if errors.Is(err, ErrInvalidQuery) {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid analytics query",
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   "Failed to query analytics",
		Details:   err.Error(),
	})
}
