package live

import (
	"testing"
	"time"
)

var baseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// fixedClock returns a clock function and a pointer to advance it.
func fixedClock() (func() time.Time, *time.Time) {
	now := baseTime
	return func() time.Time { return now }, &now
}

func TestBoard_EmptyIsStale(t *testing.T) {
	b := NewBoard(5 * time.Second)
	if _, ok := b.Get(); ok {
		t.Error("empty board reported fresh")
	}
}

func TestBoard_PutThenGet(t *testing.T) {
	b := NewBoard(5 * time.Second)
	clock, _ := fixedClock()
	b.now = clock

	b.Put(Status{Channel: "chan", Label: "n", Sends: 3})

	s, ok := b.Get()
	if !ok {
		t.Fatal("fresh status reported stale")
	}
	if s.Channel != "chan" || s.Label != "n" || s.Sends != 3 {
		t.Errorf("Get = %+v", s)
	}
}

func TestBoard_StaleAfterTTL(t *testing.T) {
	b := NewBoard(5 * time.Second)
	clock, now := fixedClock()
	b.now = clock

	b.Put(Status{Channel: "chan"})

	*now = baseTime.Add(5 * time.Second)
	if _, ok := b.Get(); !ok {
		t.Error("status within TTL reported stale")
	}

	*now = baseTime.Add(5*time.Second + time.Millisecond)
	if _, ok := b.Get(); ok {
		t.Error("status past TTL reported fresh")
	}
}

func TestBoard_PutRefreshes(t *testing.T) {
	b := NewBoard(5 * time.Second)
	clock, now := fixedClock()
	b.now = clock

	b.Put(Status{Sends: 1})
	*now = baseTime.Add(10 * time.Second)
	b.Put(Status{Sends: 2})

	s, ok := b.Get()
	if !ok {
		t.Fatal("refreshed status reported stale")
	}
	if s.Sends != 2 {
		t.Errorf("Sends = %d, want 2", s.Sends)
	}
}
