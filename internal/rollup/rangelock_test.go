package rollup

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRangeLockSerializesOverlappingRanges(t *testing.T) {
	lock := newRangeLock()

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	lock.Acquire(start, end)

	acquired := make(chan struct{})
	go func() {
		// Overlaps [start, end]: must block until the first holder releases.
		lock.Acquire(start.AddDate(0, 0, 15), end.AddDate(0, 0, 15))
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("overlapping acquire succeeded while range was held")
	case <-time.After(50 * time.Millisecond):
	}

	lock.Release(start, end)

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("overlapping acquire never unblocked after release")
	}
	lock.Release(start.AddDate(0, 0, 15), end.AddDate(0, 0, 15))
}

func TestRangeLockAllowsDisjointRanges(t *testing.T) {
	lock := newRangeLock()

	lock.Acquire(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	)
	defer lock.Release(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	)

	done := make(chan struct{})
	go func() {
		lock.Acquire(
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		)
		lock.Release(
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disjoint acquire blocked")
	}
}

func TestRangeLockManyWaitersAllProceed(t *testing.T) {
	lock := newRangeLock()

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

	var (
		mu      sync.Mutex
		holders int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lock.Acquire(start, end)
			mu.Lock()
			holders++
			if holders > maxSeen {
				maxSeen = holders
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			holders--
			mu.Unlock()
			lock.Release(start, end)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen, "identical ranges must hold the lock one at a time")
}
