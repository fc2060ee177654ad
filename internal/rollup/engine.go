package rollup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/analytics"
	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/storage"
	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/temporal"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultLedgerBatchSize = 5000

// ErrInvalidRange marks recalculation requests rejected before any deletion.
var ErrInvalidRange = errors.New("invalid recalculation range")

// Summary reports what one recalculation run did.
type Summary struct {
	RecordsProcessed int `json:"records_processed"`
	BucketsWritten   int `json:"buckets_written"`
}

// EngineOptions tunes a recalculation engine.
type EngineOptions struct {
	// LedgerBatchSize bounds how many ledger records one scan batch loads.
	LedgerBatchSize int
}

func (o EngineOptions) normalized() EngineOptions {
	n := o
	if n.LedgerBatchSize <= 0 {
		n.LedgerBatchSize = defaultLedgerBatchSize
	}
	return n
}

// Engine rebuilds analytics buckets from the booking ledger.
// Recalculation is a batch job: triggered explicitly, long-running from the
// caller's perspective, and serialized against overlapping jobs.
type Engine struct {
	ledger  storage.LedgerStore
	buckets storage.BucketStore
	growth  *GrowthCalculator
	locks   *rangeLock
	opts    EngineOptions
	nowFn   func() time.Time
}

// NewEngine creates a recalculation engine over the given stores.
func NewEngine(ledger storage.LedgerStore, buckets storage.BucketStore, opts EngineOptions) *Engine {
	return &Engine{
		ledger:  ledger,
		buckets: buckets,
		growth:  NewGrowthCalculator(buckets),
		locks:   newRangeLock(),
		opts:    opts.normalized(),
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Recalculate deletes and rebuilds the buckets of all four granularities
// whose span the date range touches, from a single pass over the ledger.
// Idempotent: running it twice over identical ledger state produces
// identical buckets. Blocks while another job over an overlapping range
// is in flight.
func (e *Engine) Recalculate(ctx context.Context, startDate, endDate time.Time) (*Summary, error) {
	if startDate.IsZero() || endDate.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrInvalidRange)
	}

	start := dateOnly(startDate)
	end := dateOnly(endDate)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: start %s is after end %s",
			ErrInvalidRange, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	endExclusive := end.AddDate(0, 0, 1)

	jobID := uuid.New().String()

	e.locks.Acquire(start, end)
	defer e.locks.Release(start, end)

	slog.Info("[Recalc] Starting recalculation job",
		"job_id", jobID,
		"start", start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"),
	)

	accumulators, recordsProcessed, err := e.scanLedger(ctx, start, endExclusive)
	if err != nil {
		// Nothing has been deleted yet: a failed scan leaves every bucket
		// exactly as it was.
		return nil, fmt.Errorf("scan ledger: %w", err)
	}

	slog.Info("[Recalc] Ledger scan complete",
		"job_id", jobID,
		"records", recordsProcessed,
	)

	group, groupCtx := errgroup.WithContext(ctx)
	var (
		mu             sync.Mutex
		bucketsWritten int
	)

	// Granularity units are independent: each deletes and rebuilds its own
	// key space, so they persist concurrently. Within a unit, writes stay
	// ordered ascending so in-batch growth lookups always see a finished
	// prior period.
	for _, g := range temporal.All {
		granularity := g
		group.Go(func() error {
			written, unitErr := e.rebuildUnit(groupCtx, jobID, granularity, accumulators[granularity], start, end)
			if unitErr != nil {
				return unitErr
			}
			mu.Lock()
			bucketsWritten += written
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{
		RecordsProcessed: recordsProcessed,
		BucketsWritten:   bucketsWritten,
	}

	slog.Info("[Recalc] Recalculation complete",
		"job_id", jobID,
		"records_processed", summary.RecordsProcessed,
		"buckets_written", summary.BucketsWritten,
	)
	return summary, nil
}

// scanLedger makes the single pass over the ledger, folding every record
// into per-granularity accumulators. Cursor-batched so a wide backfill never
// holds the whole ledger in memory.
func (e *Engine) scanLedger(
	ctx context.Context,
	start, endExclusive time.Time,
) (map[temporal.Granularity]map[temporal.Key]*analytics.Accumulator, int, error) {
	accumulators := make(map[temporal.Granularity]map[temporal.Key]*analytics.Accumulator, len(temporal.All))
	for _, g := range temporal.All {
		accumulators[g] = make(map[temporal.Key]*analytics.Accumulator)
	}

	var (
		cursor    int64
		processed int
	)
	for {
		records, err := e.ledger.RetrieveBookingsInRange(ctx, start, endExclusive, cursor, e.opts.LedgerBatchSize)
		if err != nil {
			return nil, 0, err
		}
		if len(records) == 0 {
			break
		}

		for _, rec := range records {
			for _, g := range temporal.All {
				key := temporal.KeyFor(g, rec.CreatedAt)
				acc, ok := accumulators[g][key]
				if !ok {
					acc = analytics.NewAccumulator(g, rec.CreatedAt)
					accumulators[g][key] = acc
				}
				acc.Observe(rec)
			}
		}

		processed += len(records)
		cursor = records[len(records)-1].LedgerSeq
		if len(records) < e.opts.LedgerBatchSize {
			break
		}
	}

	return accumulators, processed, nil
}

// rebuildUnit deletes and rewrites one granularity's buckets for the range.
// The delete window widens to the anchors of the units touching the range,
// so a weekly or monthly bucket whose anchor precedes the range start is
// still replaced rather than left to coexist with its rebuilt successor.
// On failure the unit's range is flagged for retry before returning.
func (e *Engine) rebuildUnit(
	ctx context.Context,
	jobID string,
	g temporal.Granularity,
	accumulators map[temporal.Key]*analytics.Accumulator,
	start, end time.Time,
) (written int, err error) {
	defer func() {
		if err != nil {
			if flagErr := e.buckets.FlagRange(ctx, g, temporal.AnchorFor(g, start), end); flagErr != nil {
				slog.Error("[Recalc] Failed to flag range after unit failure",
					"job_id", jobID,
					"granularity", g,
					"error", flagErr,
				)
			}
		}
	}()

	delStart := temporal.AnchorFor(g, start)
	if err = e.buckets.DeleteRange(ctx, g, delStart, end); err != nil {
		return 0, fmt.Errorf("delete %s buckets: %w", g, err)
	}

	if len(accumulators) == 0 {
		// No qualifying records: leave an explicit zero bucket for the
		// range start so the span reads as empty rather than absent.
		if _, err = e.buckets.GetOrCreate(ctx, g, start); err != nil {
			return 0, fmt.Errorf("seed zero %s bucket: %w", g, err)
		}
		return 1, nil
	}

	now := e.nowFn()
	finalized := make(map[temporal.Key]*analytics.Bucket, len(accumulators))
	keys := make([]temporal.Key, 0, len(accumulators))
	for key, acc := range accumulators {
		finalized[key] = acc.Finalize(now)
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return temporal.Anchor(g, keys[i]).Before(temporal.Anchor(g, keys[j]))
	})

	for _, key := range keys {
		bucket := finalized[key]

		growth, growthErr := e.growth.ForBucket(ctx, bucket, finalized)
		if growthErr != nil {
			err = fmt.Errorf("growth for %s %+v: %w", g, key, growthErr)
			return written, err
		}
		bucket.Growth = growth

		if err = e.buckets.Upsert(ctx, bucket); err != nil {
			err = fmt.Errorf("upsert %s %+v: %w", g, key, err)
			return written, err
		}
		written++
	}

	return written, nil
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
