package rollup

import (
	"sync"
	"time"
)

// rangeLock serializes recalculation jobs whose date ranges overlap.
// Delete-then-rebuild is not safe under concurrent writers to the same
// bucket keys: one job's delete can race ahead of another's write, and two
// jobs can double-count. Jobs over disjoint ranges proceed concurrently.
type rangeLock struct {
	mu     sync.Mutex
	cond   *sync.Cond
	active []span
}

type span struct {
	start time.Time
	end   time.Time
}

func newRangeLock() *rangeLock {
	l := &rangeLock{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Acquire blocks until no in-flight job overlaps [start, end], then claims it.
func (l *rangeLock) Acquire(start, end time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for l.overlapsLocked(start, end) {
		l.cond.Wait()
	}
	l.active = append(l.active, span{start: start, end: end})
}

// Release frees a previously acquired range and wakes waiting jobs.
func (l *rangeLock) Release(start, end time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, s := range l.active {
		if s.start.Equal(start) && s.end.Equal(end) {
			l.active = append(l.active[:i], l.active[i+1:]...)
			break
		}
	}
	l.cond.Broadcast()
}

func (l *rangeLock) overlapsLocked(start, end time.Time) bool {
	for _, s := range l.active {
		if !start.After(s.end) && !s.start.After(end) {
			return true
		}
	}
	return false
}
