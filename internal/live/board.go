package live

import (
	"sync"
	"time"
)

// Board holds the latest Status pushed by the session loop. The session
// writes, HTTP and WebSocket readers pull. A status older than the TTL is
// reported as stale — typically the session is between reconnects.
type Board struct {
	mu  sync.RWMutex
	cur *Status
	at  time.Time

	ttl time.Duration
	now func() time.Time // injectable for deterministic tests
}

// NewBoard creates a Board with the given staleness cutoff.
func NewBoard(ttl time.Duration) *Board {
	return &Board{
		ttl: ttl,
		now: time.Now,
	}
}

// Put replaces the current status.
func (b *Board) Put(s Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cur = &s
	b.at = b.now()
}

// Get returns the current status and whether it is fresh.
func (b *Board) Get() (Status, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.cur == nil || b.now().Sub(b.at) > b.ttl {
		return Status{}, false
	}
	return *b.cur, true
}
