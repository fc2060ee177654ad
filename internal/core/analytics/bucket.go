package analytics

import (
	"time"

	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/temporal"
	"github.com/shopspring/decimal"
)

// TopVendorLimit bounds the vendor ranking persisted on every bucket.
const TopVendorLimit = 10

// CategoryRevenue is one entry of a per-category revenue breakdown.
type CategoryRevenue struct {
	Category          string          `json:"category"`
	Revenue           decimal.Decimal `json:"revenue"`
	Bookings          int64           `json:"bookings"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// TransportRevenue is one entry of the transport sub-category breakdown,
// populated only from transportation bookings.
type TransportRevenue struct {
	TransportCategory string          `json:"transport_category"`
	Revenue           decimal.Decimal `json:"revenue"`
	Bookings          int64           `json:"bookings"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// StatusBreakdown counts bookings per status across all statuses,
// each with that status's own revenue.
type StatusBreakdown struct {
	Status  string          `json:"status"`
	Count   int64           `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// PaymentMethodRevenue is one entry of the payment-method breakdown.
type PaymentMethodRevenue struct {
	Method   string          `json:"method"`
	Revenue  decimal.Decimal `json:"revenue"`
	Bookings int64           `json:"bookings"`
}

// VendorRevenue is one entry of the top-vendor ranking.
type VendorRevenue struct {
	VendorID          string          `json:"vendor_id"`
	VendorName        string          `json:"vendor_name"`
	Revenue           decimal.Decimal `json:"revenue"`
	Bookings          int64           `json:"bookings"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// GrowthMetrics are percentage deltas against the immediately preceding
// bucket of the same granularity, rounded to 2 decimal places.
// Zero when no prior bucket exists or its corresponding total is zero —
// never NaN or infinity.
type GrowthMetrics struct {
	RevenueGrowth decimal.Decimal `json:"revenue_growth"`
	BookingGrowth decimal.Decimal `json:"booking_growth"`
	AOVGrowth     decimal.Decimal `json:"aov_growth"`
}

// Bucket is one pre-aggregated revenue summary for a (granularity, key) pair.
// Derived and disposable: always rebuildable from the ledger, never the
// source of truth. Replaced wholesale on every recalculation, never patched
// field by field.
type Bucket struct {
	Granularity temporal.Granularity `json:"granularity"`
	Key         temporal.Key         `json:"temporal_key"`
	AnchorDate  time.Time            `json:"anchor_date"`

	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalBookings     int64           `json:"total_bookings"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`

	RevenueByCategory          []CategoryRevenue      `json:"revenue_by_category"`
	RevenueByTransportCategory []TransportRevenue     `json:"revenue_by_transport_category"`
	BookingsByStatus           []StatusBreakdown      `json:"bookings_by_status"`
	RevenueByPaymentMethod     []PaymentMethodRevenue `json:"revenue_by_payment_method"`
	TopVendors                 []VendorRevenue        `json:"top_vendors"`

	Growth GrowthMetrics `json:"growth_metrics"`

	LastUpdated        time.Time `json:"last_updated"`
	NeedsRecalculation bool      `json:"needs_recalculation"`
}

// NewZeroBucket returns an empty bucket for the span containing date.
// Breakdown lists are empty, not nil, so the bucket serializes to empty
// arrays rather than nulls.
func NewZeroBucket(g temporal.Granularity, date time.Time, now time.Time) *Bucket {
	return &Bucket{
		Granularity:                g,
		Key:                        temporal.KeyFor(g, date),
		AnchorDate:                 temporal.AnchorFor(g, date),
		TotalRevenue:               decimal.Zero,
		AverageOrderValue:          decimal.Zero,
		RevenueByCategory:          []CategoryRevenue{},
		RevenueByTransportCategory: []TransportRevenue{},
		BookingsByStatus:           []StatusBreakdown{},
		RevenueByPaymentMethod:     []PaymentMethodRevenue{},
		TopVendors:                 []VendorRevenue{},
		LastUpdated:                now,
	}
}

// SafeAverage divides revenue by bookings, rounded to 2 decimal places.
// Zero bookings resolves to zero, never a division error.
func SafeAverage(revenue decimal.Decimal, bookings int64) decimal.Decimal {
	if bookings == 0 {
		return decimal.Zero
	}
	return revenue.DivRound(decimal.NewFromInt(bookings), 2)
}
