package dashboard

import (
	"time"

	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/analytics"
	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/temporal"
	"github.com/shopspring/decimal"
)

// RangeResponse is the ordered bucket sequence for a range query.
type RangeResponse struct {
	Granularity temporal.Granularity `json:"granularity"`
	Start       time.Time            `json:"start"`
	End         time.Time            `json:"end"`
	Buckets     []*analytics.Bucket  `json:"buckets"`
}

// Summary is the single merged view over a day-count window: second-pass
// aggregation over already-aggregated buckets. Growth metrics come from the
// most recent bucket in the window only; they are not recomputed across the
// span.
type Summary struct {
	Granularity temporal.Granularity `json:"granularity"`
	WindowDays  int                  `json:"window_days"`
	Start       time.Time            `json:"start"`
	End         time.Time            `json:"end"`

	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalBookings     int64           `json:"total_bookings"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`

	RevenueByCategory          []analytics.CategoryRevenue      `json:"revenue_by_category"`
	RevenueByTransportCategory []analytics.TransportRevenue     `json:"revenue_by_transport_category"`
	BookingsByStatus           []analytics.StatusBreakdown      `json:"bookings_by_status"`
	RevenueByPaymentMethod     []analytics.PaymentMethodRevenue `json:"revenue_by_payment_method"`
	TopVendors                 []analytics.VendorRevenue        `json:"top_vendors"`

	Growth analytics.GrowthMetrics `json:"growth_metrics"`

	BucketCount int `json:"bucket_count"`

	// Stale reports whether any merged bucket was flagged for
	// recalculation. Callers that care about freshness honor this;
	// flagged data is still served in preference to no data.
	Stale bool `json:"stale"`
}
