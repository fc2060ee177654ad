package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/analytics"
	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/temporal"
	"github.com/shopspring/decimal"
)

// marshalBreakdowns marshals every breakdown list of a bucket to JSON for the
// JSONB columns. Nil slices marshal as empty arrays, never SQL NULL, so a
// scanned bucket always round-trips to the same bytes.
func marshalBreakdowns(b *analytics.Bucket) (byCategory, byTransport, byStatus, byPayment, topVendors, growth []byte, err error) {
	if byCategory, err = marshalList(b.RevenueByCategory); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("marshal revenue_by_category: %w", err)
	}
	if byTransport, err = marshalList(b.RevenueByTransportCategory); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("marshal revenue_by_transport_category: %w", err)
	}
	if byStatus, err = marshalList(b.BookingsByStatus); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("marshal bookings_by_status: %w", err)
	}
	if byPayment, err = marshalList(b.RevenueByPaymentMethod); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("marshal revenue_by_payment_method: %w", err)
	}
	if topVendors, err = marshalList(b.TopVendors); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("marshal top_vendors: %w", err)
	}
	if growth, err = json.Marshal(b.Growth); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("marshal growth_metrics: %w", err)
	}
	return byCategory, byTransport, byStatus, byPayment, topVendors, growth, nil
}

func marshalList(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return []byte("[]"), nil
	}
	return data, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanBucketRow scans one analytics_buckets row into a Bucket.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
// NUMERIC columns come back as strings and parse into exact decimals.
func scanBucketRow(row scanner) (*analytics.Bucket, error) {
	var (
		b           analytics.Bucket
		granularity string
		revenueStr  string
		aovStr      string
		anchorDate  time.Time
		byCategory  []byte
		byTransport []byte
		byStatus    []byte
		byPayment   []byte
		topVendors  []byte
		growth      []byte
	)

	err := row.Scan(
		&granularity,
		&b.Key.Year,
		&b.Key.Month,
		&b.Key.Week,
		&b.Key.Day,
		&anchorDate,
		&revenueStr,
		&b.TotalBookings,
		&aovStr,
		&byCategory,
		&byTransport,
		&byStatus,
		&byPayment,
		&topVendors,
		&growth,
		&b.LastUpdated,
		&b.NeedsRecalculation,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan bucket row: %w", err)
	}

	b.Granularity = temporal.Granularity(granularity)
	b.AnchorDate = anchorDate.UTC()
	b.LastUpdated = b.LastUpdated.UTC()

	if b.TotalRevenue, err = decimal.NewFromString(revenueStr); err != nil {
		return nil, fmt.Errorf("parse total_revenue %q: %w", revenueStr, err)
	}
	if b.AverageOrderValue, err = decimal.NewFromString(aovStr); err != nil {
		return nil, fmt.Errorf("parse average_order_value %q: %w", aovStr, err)
	}

	if err := json.Unmarshal(byCategory, &b.RevenueByCategory); err != nil {
		return nil, fmt.Errorf("unmarshal revenue_by_category: %w", err)
	}
	if err := json.Unmarshal(byTransport, &b.RevenueByTransportCategory); err != nil {
		return nil, fmt.Errorf("unmarshal revenue_by_transport_category: %w", err)
	}
	if err := json.Unmarshal(byStatus, &b.BookingsByStatus); err != nil {
		return nil, fmt.Errorf("unmarshal bookings_by_status: %w", err)
	}
	if err := json.Unmarshal(byPayment, &b.RevenueByPaymentMethod); err != nil {
		return nil, fmt.Errorf("unmarshal revenue_by_payment_method: %w", err)
	}
	if err := json.Unmarshal(topVendors, &b.TopVendors); err != nil {
		return nil, fmt.Errorf("unmarshal top_vendors: %w", err)
	}
	if err := json.Unmarshal(growth, &b.Growth); err != nil {
		return nil, fmt.Errorf("unmarshal growth_metrics: %w", err)
	}

	return &b, nil
}
