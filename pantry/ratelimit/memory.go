// ratelimit/memory.go
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryStore keeps one token bucket per key. A bucket holds `requests`
// tokens and refills one token every window/requests.
type MemoryStore struct {
	mu        sync.Mutex
	limiters  map[string]*entry
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemory allows requests per window for each key. Keys idle for
// longer than the window are dropped.
func NewMemory(requests int, window time.Duration) *MemoryStore {
	if requests < 1 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryStore{
		limiters: make(map[string]*entry),
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
		ttl:      window,
		now:      time.Now,
	}
}

// Allow implements Store. It never returns an error.
func (m *MemoryStore) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	e, ok := m.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1), nil
}

// sweep drops idle keys at most once per ttl. An idle key's bucket is
// full again, so dropping it changes nothing. Caller holds mu.
func (m *MemoryStore) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < m.ttl {
		return
	}
	m.lastSweep = now
	for key, e := range m.limiters {
		if now.Sub(e.lastSeen) > m.ttl {
			delete(m.limiters, key)
		}
	}
}

// Size returns the number of tracked keys.
func (m *MemoryStore) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.limiters)
}
