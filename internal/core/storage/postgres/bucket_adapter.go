package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/analytics"
	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/storage"
	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/temporal"
)

// BucketAdapter implements storage.BucketStore using PostgreSQL.
// The unique index on (granularity, year, month, week, day) is what enforces
// the one-bucket-per-key invariant; every write path goes through ON CONFLICT.
type BucketAdapter struct {
	db    *sql.DB
	nowFn func() time.Time
}

// NewBucketAdapter creates a BucketAdapter sharing the given connection pool.
func NewBucketAdapter(db *sql.DB) *BucketAdapter {
	return &BucketAdapter{
		db: db,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// GetOrCreate returns the bucket containing date, inserting a zeroed bucket
// when absent. INSERT ... ON CONFLICT DO NOTHING followed by a read keeps
// concurrent callers for the same key from racing each other.
func (a *BucketAdapter) GetOrCreate(ctx context.Context, g temporal.Granularity, date time.Time) (*analytics.Bucket, error) {
	key := temporal.KeyFor(g, date)
	anchor := temporal.AnchorFor(g, date)

	zeroGrowth, err := json.Marshal(analytics.GrowthMetrics{})
	if err != nil {
		return nil, fmt.Errorf("bucket get_or_create: marshal zero growth: %w", err)
	}

	_, err = a.db.ExecContext(ctx, queryInsertZeroBucket,
		string(g), key.Year, key.Month, key.Week, key.Day, anchor, zeroGrowth, a.nowFn(),
	)
	if err != nil {
		return nil, fmt.Errorf("bucket get_or_create: insert: %w", err)
	}

	bucket, err := a.FindByKey(ctx, g, key)
	if err != nil {
		return nil, fmt.Errorf("bucket get_or_create: read back: %w", err)
	}
	return bucket, nil
}

// Upsert replaces-or-inserts a fully computed bucket by its temporal identity.
func (a *BucketAdapter) Upsert(ctx context.Context, b *analytics.Bucket) error {
	byCategory, byTransport, byStatus, byPayment, topVendors, growth, err := marshalBreakdowns(b)
	if err != nil {
		return fmt.Errorf("bucket upsert: %w", err)
	}

	_, err = a.db.ExecContext(ctx, queryUpsertBucket,
		string(b.Granularity),
		b.Key.Year,
		b.Key.Month,
		b.Key.Week,
		b.Key.Day,
		b.AnchorDate,
		b.TotalRevenue,
		b.TotalBookings,
		b.AverageOrderValue,
		byCategory,
		byTransport,
		byStatus,
		byPayment,
		topVendors,
		growth,
		b.LastUpdated,
		b.NeedsRecalculation,
	)
	if err != nil {
		return fmt.Errorf("bucket upsert %s %+v: %w", b.Granularity, b.Key, err)
	}
	return nil
}

// FindByKey loads one bucket by its exact (granularity, key) tuple.
func (a *BucketAdapter) FindByKey(ctx context.Context, g temporal.Granularity, key temporal.Key) (*analytics.Bucket, error) {
	row := a.db.QueryRowContext(ctx, queryFindBucketByKey,
		string(g), key.Year, key.Month, key.Week, key.Day,
	)

	bucket, err := scanBucketRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrBucketNotFound
		}
		return nil, fmt.Errorf("find bucket %s %+v: %w", g, key, err)
	}
	return bucket, nil
}

// QueryRange returns buckets whose anchor date falls in [start, end],
// ascending. Pure read against pre-aggregated data.
func (a *BucketAdapter) QueryRange(ctx context.Context, g temporal.Granularity, start, end time.Time) ([]*analytics.Bucket, error) {
	rows, err := a.db.QueryContext(ctx, queryBucketsInRange, string(g), start, end)
	if err != nil {
		return nil, fmt.Errorf("query buckets in range: %w", err)
	}
	defer rows.Close()

	var buckets []*analytics.Bucket
	for rows.Next() {
		bucket, err := scanBucketRow(rows)
		if err != nil {
			return nil, err
		}
		buckets = append(buckets, bucket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bucket rows: %w", err)
	}

	return buckets, nil
}

// DeleteRange removes buckets of one granularity anchored in [start, end].
func (a *BucketAdapter) DeleteRange(ctx context.Context, g temporal.Granularity, start, end time.Time) error {
	result, err := a.db.ExecContext(ctx, queryDeleteBucketsInRange, string(g), start, end)
	if err != nil {
		return fmt.Errorf("delete buckets in range: %w", err)
	}

	if deleted, err := result.RowsAffected(); err == nil && deleted > 0 {
		slog.Debug("[BucketAdapter] Cleared stale buckets",
			"granularity", g,
			"deleted", deleted,
		)
	}
	return nil
}

// FlagRange marks buckets anchored in [start, end] as needing recalculation.
func (a *BucketAdapter) FlagRange(ctx context.Context, g temporal.Granularity, start, end time.Time) error {
	_, err := a.db.ExecContext(ctx, queryFlagBucketsInRange, string(g), start, end, a.nowFn())
	if err != nil {
		return fmt.Errorf("flag buckets in range: %w", err)
	}
	return nil
}
