package rollup

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/analytics"
)

func newTestRouter(engine *Engine) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	engine.RegisterRoutes(router)
	return router
}

func TestHandleRecalculate(t *testing.T) {
	day := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	ledger := &mockLedgerStore{records: []*analytics.BookingRecord{
		booking(1, day, analytics.CategoryActivity, analytics.StatusConfirmed, "v-1", 100),
	}}
	router := newTestRouter(NewEngine(ledger, newMockBucketStore(), EngineOptions{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/analytics/recalculate",
		strings.NewReader(`{"start_date":"2024-06-01","end_date":"2024-06-01"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.RecordsProcessed)
	assert.Equal(t, 4, summary.BucketsWritten)
}

func TestHandleRecalculate_StatusMapping(t *testing.T) {
	router := newTestRouter(NewEngine(&mockLedgerStore{}, newMockBucketStore(), EngineOptions{}))

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"missing body returns 400", ``, http.StatusBadRequest},
		{"missing end_date returns 400", `{"start_date":"2024-06-01"}`, http.StatusBadRequest},
		{"malformed date returns 400", `{"start_date":"June 1st","end_date":"2024-06-30"}`, http.StatusBadRequest},
		{"inverted range returns 400", `{"start_date":"2024-06-30","end_date":"2024-06-01"}`, http.StatusBadRequest},
		{"valid empty range returns 200", `{"start_date":"2024-06-01","end_date":"2024-06-01"}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/admin/analytics/recalculate",
				strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}
}
