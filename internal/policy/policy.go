package policy

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/crowdplay/crowdplay/internal/tally"
)

// Tuning defaults, matching the production deployment.
const (
	// DefaultMessageRate is the server-side message rate limit (msgs/s). If
	// the limit is exceeded the server silently ignores the account for 30
	// minutes, so the rate floor must never be crossed.
	DefaultMessageRate = 20.0 / 30.0

	// DefaultMargin is added on top of the rate-limit interval as a safety
	// margin against clock skew between us and the server.
	DefaultMargin = 300 * time.Millisecond

	// DefaultMinCommandsPerSec and DefaultMinCommandRatio gate sending on
	// chat activity: at least this many commands per second, and at least
	// this share of chat messages being commands.
	DefaultMinCommandsPerSec = 2.0
	DefaultMinCommandRatio   = 0.6

	// intervalBase is the resting send interval in seconds; each observed
	// command per second removes one second, down to the rate floor.
	intervalBase = 8.0
)

// MostUsed picks the representative command label from the per-command
// counters of a window sum.
//
// Two counters are weight-adjusted before comparison: democracy votes count
// double and anarchy votes a quarter. The candidates are stable-sorted
// ascending by weighted count and the entry one position below the top is
// returned — the runner-up, not the maximum. That selection rule is the
// shipped behavior and observably differs from picking the max; see
// DESIGN.md before changing it. With all counters zero the stable order
// makes the result the fixed label "anarchie".
func MostUsed(c tally.Counts) string {
	candidates := []struct {
		count uint32
		label string
	}{
		{c.Up, "n"},
		{c.Left, "w"},
		{c.Down, "s"},
		{c.Right, "e"},
		{c.A, "a"},
		{c.B, "b"},
		{c.X, "x"},
		{c.Y, "y"},
		{c.Demo * 2, "democratie"},
		{c.Anar / 4, "anarchie"},
		{c.Start, "start"},
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].count < candidates[j].count
	})
	return candidates[len(candidates)-2].label
}

// Config tunes the send policy. Window is the time span of the short-window
// sum handed to Plan.
type Config struct {
	Enabled           bool
	Window            time.Duration
	MinCommandsPerSec float64
	MinCommandRatio   float64
	MessageRate       float64
	Margin            time.Duration
}

// Decision is one policy evaluation. The diagnostic numbers feed the live
// status board and the logs whether or not a send happens.
type Decision struct {
	Label          string
	CommandsPerSec float64
	CommandRatio   float64
	Interval       time.Duration
	Remaining      time.Duration
	Eligible       bool
}

// Engine holds the send-side state: the last text sent, the earliest next
// send time and an absolute outbound rate floor. It is owned by a single
// session loop and is not safe for concurrent use.
type Engine struct {
	cfg     Config
	limiter *rate.Limiter

	lastText string
	nextSend time.Time
	sends    int
}

// NewEngine creates an Engine with the given tuning.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.MessageRate), 1),
	}
}

// UpdateConfig swaps the tuning in place, e.g. on a config hot-reload.
// Send-side state (last text, next send time) is preserved.
func (e *Engine) UpdateConfig(cfg Config) {
	e.cfg = cfg
	e.limiter.SetLimit(rate.Limit(cfg.MessageRate))
}

// Plan evaluates the policy against the short-window sum. full reports
// whether the long window is populated; until then nothing is eligible and
// the reported remaining time is the whole interval.
//
// The required interval is max(intervalBase − cmd/s, 1/rate + margin): a
// busy chat shortens the pace, but never below the hard rate floor.
func (e *Engine) Plan(short tally.Counts, full bool, now time.Time) Decision {
	d := Decision{Label: MostUsed(short)}

	d.CommandsPerSec = float64(short.Commands) / e.cfg.Window.Seconds()
	if short.Messages > 0 {
		d.CommandRatio = float64(short.Commands) / float64(short.Messages)
	}

	interval := intervalBase - d.CommandsPerSec
	if floor := 1.0/e.cfg.MessageRate + e.cfg.Margin.Seconds(); interval < floor {
		interval = floor
	}
	d.Interval = time.Duration(interval * float64(time.Second))

	if !full {
		d.Remaining = d.Interval
		return d
	}
	if e.nextSend.After(now) {
		d.Remaining = e.nextSend.Sub(now)
	}

	// The limiter check comes last so a token is only consumed when every
	// other gate has passed.
	d.Eligible = e.cfg.Enabled &&
		d.Remaining == 0 &&
		d.CommandRatio >= e.cfg.MinCommandRatio &&
		d.CommandsPerSec >= e.cfg.MinCommandsPerSec &&
		e.limiter.AllowN(now, 1)

	return d
}

// Commit records an executed Decision and returns the literal text to send.
// A label equal to the previous send is uppercased so two consecutive sends
// never repeat the exact same text — plain repetition trips the server's
// spam detection.
func (e *Engine) Commit(d Decision, now time.Time) string {
	if e.lastText == d.Label {
		e.lastText = strings.ToUpper(e.lastText)
	} else {
		e.lastText = d.Label
	}
	e.nextSend = now.Add(d.Interval)
	e.sends++
	return e.lastText
}

// Sends returns the number of commands committed since the engine was
// created.
func (e *Engine) Sends() int {
	return e.sends
}
