package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/analytics"
	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/temporal"
)

// ErrBucketNotFound is returned when no bucket exists for a (granularity, key).
var ErrBucketNotFound = errors.New("analytics bucket not found")

// LedgerStore is the read-only view of the booking ledger. The ledger is an
// external collaborator: the analytics engine scans it and never writes it.
type LedgerStore interface {
	// RetrieveBookingsInRange fetches booking records created in
	// [start, end) after the given cursor (ledger sequence), in strict
	// sequence order. Cursor pagination keeps large backfills from loading
	// the whole ledger at once. cursor=0 means "from the beginning".
	RetrieveBookingsInRange(
		ctx context.Context,
		start time.Time,
		end time.Time,
		cursor int64,
		limit int,
	) ([]*analytics.BookingRecord, error)
}

// BucketStore owns the derived bucket documents. At most one bucket exists
// per (granularity, temporal key); the backing store enforces uniqueness.
type BucketStore interface {
	// GetOrCreate returns the bucket whose span contains date, inserting a
	// zeroed bucket if absent. Atomic upsert, safe under concurrent calls
	// for the same key — not a read-then-insert race.
	GetOrCreate(ctx context.Context, g temporal.Granularity, date time.Time) (*analytics.Bucket, error)

	// Upsert replaces-or-inserts a fully computed bucket by its
	// (granularity, key) identity. Buckets are replaced wholesale, never
	// patched field by field.
	Upsert(ctx context.Context, b *analytics.Bucket) error

	// FindByKey loads one bucket, or ErrBucketNotFound.
	FindByKey(ctx context.Context, g temporal.Granularity, key temporal.Key) (*analytics.Bucket, error)

	// QueryRange returns buckets of one granularity whose anchor date falls
	// in [start, end], ascending by anchor date. Pure read; an empty range
	// yields an empty slice, not an error.
	QueryRange(ctx context.Context, g temporal.Granularity, start, end time.Time) ([]*analytics.Bucket, error)

	// DeleteRange removes buckets of one granularity whose anchor date
	// falls in [start, end]. Clears stale state before a rebuild.
	DeleteRange(ctx context.Context, g temporal.Granularity, start, end time.Time) error

	// FlagRange marks buckets in [start, end] as needing recalculation.
	// Used when a rebuild fails partway so stale buckets are visibly stale
	// rather than silently wrong.
	FlagRange(ctx context.Context, g temporal.Granularity, start, end time.Time) error
}
