package tally

import "time"

// Default window geometry. With 100ms buckets the long window spans 10s of
// chat and the short window 2s.
const (
	DefaultSampleDuration = 100 * time.Millisecond
	DefaultLongWindow     = 100
	DefaultShortWindow    = 20
)

// Aggregator owns the bucket history and the two trailing window sums.
//
// The last history entry is always the open bucket that Current tallies
// into; the entries before it are closed and immutable. Rotate closes the
// open bucket once its duration has elapsed: the closing bucket is added to
// both sums, the oldest bucket is evicted (and subtracted from the long
// sum) once the history is full, and the bucket falling out of the short
// window is subtracted from the short sum while staying in history for the
// long one.
//
// The caller passes the clock in, so tests rotate without sleeping.
type Aggregator struct {
	sampleDur time.Duration
	longLen   int
	shortLen  int

	history []Counts
	long    Counts
	short   Counts

	openedAt  time.Time
	rotations int
}

// NewAggregator creates an Aggregator with an empty open bucket whose
// interval starts at now.
func NewAggregator(sampleDur time.Duration, longLen, shortLen int, now time.Time) *Aggregator {
	return &Aggregator{
		sampleDur: sampleDur,
		longLen:   longLen,
		shortLen:  shortLen,
		history:   make([]Counts, 1, longLen+1),
		openedAt:  now,
	}
}

// Current returns the open bucket. Callers tally into it directly; the
// pointer is invalidated by the next Rotate.
func (a *Aggregator) Current() *Counts {
	return &a.history[len(a.history)-1]
}

// Rotate closes the open bucket if its duration has elapsed and opens a new
// one, updating both window sums. It reports whether a rotation happened.
func (a *Aggregator) Rotate(now time.Time) bool {
	if now.Sub(a.openedAt) <= a.sampleDur {
		return false
	}

	closing := *a.Current()
	a.long.Add(closing)
	a.short.Add(closing)

	// The open bucket occupies one history slot, so '>' keeps exactly
	// longLen closed buckets.
	if len(a.history) > a.longLen {
		a.long.Sub(a.history[0])
		a.history = a.history[:copy(a.history, a.history[1:])]
	}
	if len(a.history) > a.shortLen {
		a.short.Sub(a.history[len(a.history)-1-a.shortLen])
	}

	a.history = append(a.history, Counts{})
	a.openedAt = now
	a.rotations++
	return true
}

// Long returns the long-window sum.
func (a *Aggregator) Long() Counts {
	return a.long
}

// Short returns the short-window sum.
func (a *Aggregator) Short() Counts {
	return a.short
}

// Full reports whether the long window is fully populated. The decision
// policy stays quiet until it is, so a fresh session never acts on a few
// buckets of data.
func (a *Aggregator) Full() bool {
	return len(a.history) > a.longLen
}

// Buckets returns the number of history entries, the open bucket included.
func (a *Aggregator) Buckets() int {
	return len(a.history)
}

// Rotations returns the number of completed rotations.
func (a *Aggregator) Rotations() int {
	return a.rotations
}

// LongDuration returns the time span the long window covers.
func (a *Aggregator) LongDuration() time.Duration {
	return a.sampleDur * time.Duration(a.longLen)
}

// ShortDuration returns the time span the short window covers.
func (a *Aggregator) ShortDuration() time.Duration {
	return a.sampleDur * time.Duration(a.shortLen)
}
