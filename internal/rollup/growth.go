package rollup

import (
	"context"
	"errors"

	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/analytics"
	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/storage"
	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/temporal"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// GrowthCalculator derives percentage deltas against the bucket immediately
// preceding a given bucket in calendar order at the same granularity.
type GrowthCalculator struct {
	buckets storage.BucketStore
}

// NewGrowthCalculator creates a calculator reading prior buckets from the store.
func NewGrowthCalculator(buckets storage.BucketStore) *GrowthCalculator {
	return &GrowthCalculator{buckets: buckets}
}

// ForBucket computes growth metrics for b. inBatch holds buckets rebuilt in
// the same recalculation pass, consulted before the store so a freshly
// rebuilt prior period wins over a stale persisted one. A missing prior
// bucket yields zero metrics, not an error.
func (c *GrowthCalculator) ForBucket(
	ctx context.Context,
	b *analytics.Bucket,
	inBatch map[temporal.Key]*analytics.Bucket,
) (analytics.GrowthMetrics, error) {
	prevKey := temporal.Previous(b.Granularity, b.Key)

	prev, ok := inBatch[prevKey]
	if !ok {
		var err error
		prev, err = c.buckets.FindByKey(ctx, b.Granularity, prevKey)
		if errors.Is(err, storage.ErrBucketNotFound) {
			return analytics.GrowthMetrics{}, nil
		}
		if err != nil {
			return analytics.GrowthMetrics{}, err
		}
	}

	return analytics.GrowthMetrics{
		RevenueGrowth: GrowthPercent(b.TotalRevenue, prev.TotalRevenue),
		BookingGrowth: GrowthPercent(
			decimal.NewFromInt(b.TotalBookings),
			decimal.NewFromInt(prev.TotalBookings),
		),
		AOVGrowth: GrowthPercent(b.AverageOrderValue, prev.AverageOrderValue),
	}, nil
}

// GrowthPercent returns (current - previous) / previous * 100 rounded to
// 2 decimal places. A zero previous value resolves to 0 — never NaN or
// infinity, and never a division error.
func GrowthPercent(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Mul(oneHundred).DivRound(previous, 2)
}
