package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/quocanhngo/spark/internal/clock"
)

var _ CounterStore = (*MemoryStore)(nil)

const defaultSweepInterval = time.Minute

type memEntry struct {
	count   int64
	resetAt time.Time
}

// MemoryStore keeps counters in process memory. Expired windows are evicted
// by a sweep that piggybacks on Take, which keeps memory bounded by the
// number of keys active within one sweep interval.
type MemoryStore struct {
	mu            sync.Mutex
	entries       map[string]*memEntry
	clock         clock.Clock
	sweepInterval time.Duration
	lastSweep     time.Time
}

func NewMemoryStore(clk clock.Clock) *MemoryStore {
	if clk == nil {
		clk = clock.RealClockProvider()
	}
	return &MemoryStore{
		entries:       make(map[string]*memEntry),
		clock:         clk,
		sweepInterval: defaultSweepInterval,
		lastSweep:     clk.Now(),
	}
}

// Take implements CounterStore.
func (m *MemoryStore) Take(_ context.Context, key string, limit int64, window time.Duration) (Window, error) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) >= m.sweepInterval {
		m.sweepLocked(now)
	}

	e, ok := m.entries[key]
	if !ok || !now.Before(e.resetAt) {
		e = &memEntry{resetAt: now.Add(window)}
		m.entries[key] = e
	}

	resetIn := e.resetAt.Sub(now)
	if e.count >= limit {
		return Window{Count: e.count, ResetIn: resetIn}, nil
	}
	e.count++
	return Window{Count: e.count, ResetIn: resetIn, Taken: true}, nil
}

// Sweep drops every counter whose window has ended.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(m.clock.Now())
}

func (m *MemoryStore) sweepLocked(now time.Time) int {
	removed := 0
	for k, e := range m.entries {
		if !now.Before(e.resetAt) {
			delete(m.entries, k)
			removed++
		}
	}
	m.lastSweep = now
	return removed
}

// Len is the number of live counters.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
