package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/analytics"
	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/storage"
	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/temporal"
	"github.com/shopspring/decimal"
)

// ErrInvalidQuery marks request validation errors that should return HTTP 400.
var ErrInvalidQuery = errors.New("invalid analytics query")

// Service is the read path over persisted buckets. No ledger access and no
// locking: range reads run with unbounded concurrency, accepting the
// eventual-consistency window against an in-flight recalculation.
type Service struct {
	buckets storage.BucketStore
	nowFn   func() time.Time
}

// NewService creates a dashboard query service.
func NewService(buckets storage.BucketStore) *Service {
	return &Service{
		buckets: buckets,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// GetAnalyticsForRange returns the persisted buckets of one granularity whose
// anchor date falls in [start, end], ascending. An empty window returns an
// empty sequence, not an error.
func (s *Service) GetAnalyticsForRange(
	ctx context.Context,
	g temporal.Granularity,
	start, end time.Time,
) ([]*analytics.Bucket, error) {
	if !g.Valid() {
		return nil, invalidQueryf("invalid granularity: %s", g)
	}
	if end.Before(start) {
		return nil, invalidQueryf("start %s is after end %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	buckets, err := s.buckets.QueryRange(ctx, g, start, end)
	if err != nil {
		return nil, fmt.Errorf("query bucket range: %w", err)
	}
	return buckets, nil
}

// Summarize merges the buckets of the trailing windowDays-day window into one
// response-shaped summary. The resolution selector picks the granularity.
func (s *Service) Summarize(ctx context.Context, windowDays int) (*Summary, error) {
	if windowDays <= 0 {
		return nil, invalidQueryf("window must be a positive number of days, got %d", windowDays)
	}

	end := s.nowFn()
	start := end.AddDate(0, 0, -windowDays)
	g := GranularityForWindow(windowDays)

	buckets, err := s.buckets.QueryRange(ctx, g, start, end)
	if err != nil {
		return nil, fmt.Errorf("query bucket range: %w", err)
	}

	summary := mergeBuckets(g, buckets)
	summary.WindowDays = windowDays
	summary.Start = start
	summary.End = end
	return summary, nil
}

// mergeBuckets is the second-pass aggregation: totals sum across buckets,
// each breakdown merges by key with averages recomputed from merged totals,
// and vendors re-rank on summed revenue so a vendor split across buckets
// still places correctly. Growth comes from the most recent bucket alone.
func mergeBuckets(g temporal.Granularity, buckets []*analytics.Bucket) *Summary {
	summary := &Summary{
		Granularity:                g,
		TotalRevenue:               decimal.Zero,
		AverageOrderValue:          decimal.Zero,
		RevenueByCategory:          []analytics.CategoryRevenue{},
		RevenueByTransportCategory: []analytics.TransportRevenue{},
		BookingsByStatus:           []analytics.StatusBreakdown{},
		RevenueByPaymentMethod:     []analytics.PaymentMethodRevenue{},
		TopVendors:                 []analytics.VendorRevenue{},
		BucketCount:                len(buckets),
	}
	if len(buckets) == 0 {
		return summary
	}

	byCategory := make(map[string]*mergedRevenue)
	byTransport := make(map[string]*mergedRevenue)
	byStatus := make(map[string]*mergedStatus)
	byPayment := make(map[string]*mergedRevenue)
	vendors := analytics.NewVendorRanking()

	for _, b := range buckets {
		summary.TotalRevenue = summary.TotalRevenue.Add(b.TotalRevenue)
		summary.TotalBookings += b.TotalBookings
		if b.NeedsRecalculation {
			summary.Stale = true
		}

		for _, c := range b.RevenueByCategory {
			addMerged(byCategory, c.Category, c.Revenue, c.Bookings)
		}
		for _, tc := range b.RevenueByTransportCategory {
			addMerged(byTransport, tc.TransportCategory, tc.Revenue, tc.Bookings)
		}
		for _, st := range b.BookingsByStatus {
			ms, ok := byStatus[st.Status]
			if !ok {
				ms = &mergedStatus{revenue: decimal.Zero}
				byStatus[st.Status] = ms
			}
			ms.count += st.Count
			ms.revenue = ms.revenue.Add(st.Revenue)
		}
		for _, pm := range b.RevenueByPaymentMethod {
			addMerged(byPayment, pm.Method, pm.Revenue, pm.Bookings)
		}
		for _, v := range b.TopVendors {
			vendors.Add(v)
		}
	}

	summary.AverageOrderValue = analytics.SafeAverage(summary.TotalRevenue, summary.TotalBookings)

	for _, category := range sortedMergedKeys(byCategory) {
		m := byCategory[category]
		summary.RevenueByCategory = append(summary.RevenueByCategory, analytics.CategoryRevenue{
			Category:          category,
			Revenue:           m.revenue,
			Bookings:          m.bookings,
			AverageOrderValue: analytics.SafeAverage(m.revenue, m.bookings),
		})
	}
	for _, transport := range sortedMergedKeys(byTransport) {
		m := byTransport[transport]
		summary.RevenueByTransportCategory = append(summary.RevenueByTransportCategory, analytics.TransportRevenue{
			TransportCategory: transport,
			Revenue:           m.revenue,
			Bookings:          m.bookings,
			AverageOrderValue: analytics.SafeAverage(m.revenue, m.bookings),
		})
	}

	statuses := make([]string, 0, len(byStatus))
	for status := range byStatus {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		ms := byStatus[status]
		summary.BookingsByStatus = append(summary.BookingsByStatus, analytics.StatusBreakdown{
			Status:  status,
			Count:   ms.count,
			Revenue: ms.revenue,
		})
	}

	for _, method := range sortedMergedKeys(byPayment) {
		m := byPayment[method]
		summary.RevenueByPaymentMethod = append(summary.RevenueByPaymentMethod, analytics.PaymentMethodRevenue{
			Method:   method,
			Revenue:  m.revenue,
			Bookings: m.bookings,
		})
	}

	summary.TopVendors = vendors.Top()

	// Buckets arrive ascending by anchor date; the last one is the most
	// recent and owns the summary's growth metrics.
	summary.Growth = buckets[len(buckets)-1].Growth

	return summary
}

type mergedRevenue struct {
	revenue  decimal.Decimal
	bookings int64
}

type mergedStatus struct {
	count   int64
	revenue decimal.Decimal
}

func addMerged(m map[string]*mergedRevenue, key string, revenue decimal.Decimal, bookings int64) {
	mr, ok := m[key]
	if !ok {
		mr = &mergedRevenue{revenue: decimal.Zero}
		m[key] = mr
	}
	mr.revenue = mr.revenue.Add(revenue)
	mr.bookings += bookings
}

func sortedMergedKeys(m map[string]*mergedRevenue) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func invalidQueryf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}
