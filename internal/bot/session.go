package bot

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/crowdplay/crowdplay/internal/config"
	"github.com/crowdplay/crowdplay/internal/irc"
	"github.com/crowdplay/crowdplay/internal/journal"
	"github.com/crowdplay/crowdplay/internal/live"
	"github.com/crowdplay/crowdplay/internal/metrics"
	"github.com/crowdplay/crowdplay/internal/policy"
	"github.com/crowdplay/crowdplay/internal/tally"
)

// Options carries the optional collaborators a Session reports through.
// Any of them may be nil (Reload included); the session then simply skips
// that surface.
type Options struct {
	Journal *journal.Writer
	Board   *live.Board
	Metrics *metrics.Metrics

	// Reload delivers updated policy tuning from the config watcher.
	Reload <-chan config.PolicyConfig

	// Now overrides the clock for tests. Defaults to time.Now.
	Now func() time.Time
}

// Session is the explicit state of one connection: everything the loop
// mutates lives here, owned exclusively by Run's goroutine.
type Session struct {
	cfg    config.Config
	client *irc.Client
	agg    *tally.Aggregator
	engine *policy.Engine

	journal *journal.Writer
	board   *live.Board
	metrics *metrics.Metrics
	reload  <-chan config.PolicyConfig
	now     func() time.Time

	welcome      bool
	sinceJournal int
}

// New wires a Session around an established connection.
func New(cfg config.Config, conn io.ReadWriteCloser, opts Options) *Session {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Session{
		cfg:     cfg,
		client:  irc.NewClient(conn),
		agg:     tally.NewAggregator(cfg.Bot.SampleDuration, cfg.Bot.LongWindow, cfg.Bot.ShortWindow, now()),
		engine:  policy.NewEngine(policyConfig(cfg)),
		journal: opts.Journal,
		board:   opts.Board,
		metrics: opts.Metrics,
		reload:  opts.Reload,
		now:     now,
	}
}

func policyConfig(cfg config.Config) policy.Config {
	return policy.Config{
		Enabled:           cfg.Policy.SendEnabled,
		Window:            cfg.Bot.SampleDuration * time.Duration(cfg.Bot.ShortWindow),
		MinCommandsPerSec: cfg.Policy.MinCommandsPerSec,
		MinCommandRatio:   cfg.Policy.MinCommandRatio,
		MessageRate:       cfg.Policy.MessageRate,
		Margin:            cfg.Policy.Margin,
	}
}

// Run executes the session loop until the connection fails or ctx is
// cancelled. It closes the connection on the way out; no session state is
// reusable afterward.
func (s *Session) Run(ctx context.Context) error {
	defer s.client.Close()

	slog.Info("bot: session starting",
		"nick", s.cfg.Bot.Nick, "channel", s.cfg.Bot.Channel)

	if err := s.client.Login(s.cfg.Bot.Nick, s.cfg.Bot.Token()); err != nil {
		return err
	}
	s.metrics.SetConnected(true)
	defer s.metrics.SetConnected(false)

	ticker := time.NewTicker(s.cfg.Bot.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case pc := <-s.reload:
			s.cfg.Policy = pc
			s.engine.UpdateConfig(policyConfig(s.cfg))
			slog.Info("bot: policy reloaded",
				"send_enabled", pc.SendEnabled,
				"min_commands_per_sec", pc.MinCommandsPerSec)
			continue
		case <-ticker.C:
		}

		now := s.now()

		rotated := s.agg.Rotate(now)
		if rotated {
			s.afterRotate(now)
		}

		d := s.engine.Plan(s.agg.Short(), s.agg.Full(), now)
		if d.Eligible {
			text := s.engine.Commit(d, now)
			if err := s.client.Privmsg(s.cfg.Bot.Channel, text); err != nil {
				return err
			}
			s.metrics.Send()
			slog.Info("bot: command sent",
				"text", text,
				"commands_per_sec", d.CommandsPerSec,
				"command_ratio", d.CommandRatio,
				"next_in", d.Interval)
		}

		if rotated {
			s.pushStatus(d, now)
		}

		if err := s.drainInbound(); err != nil {
			return err
		}
	}
}

// afterRotate refreshes the long-window surfaces: gauges every rotation,
// the journal every JournalEvery rotations.
func (s *Session) afterRotate(now time.Time) {
	long := s.agg.Long()
	window := s.agg.LongDuration()

	ratio := 0.0
	if long.Messages > 0 {
		ratio = float64(long.Commands) / float64(long.Messages)
	}
	s.metrics.SetWindow(
		float64(long.Messages)/window.Seconds(),
		float64(long.Commands)/window.Seconds(),
		ratio,
		s.agg.Buckets(),
	)

	s.sinceJournal++
	if s.journal != nil && s.sinceJournal >= s.cfg.Bot.JournalEvery {
		s.sinceJournal = 0
		if err := s.journal.Append(now, long, window); err != nil {
			slog.Error("bot: journal append failed", "err", err)
		}
	}
}

func (s *Session) pushStatus(d policy.Decision, now time.Time) {
	if s.board == nil {
		return
	}

	short := s.agg.Short()
	votes := make(map[string]uint32, len(tally.VoteNames))
	for i, v := range short.Votes() {
		votes[tally.VoteNames[i]] = v
	}

	s.board.Put(live.Status{
		Timestamp:      now.UTC().Format(time.RFC3339),
		Connected:      true,
		Channel:        s.cfg.Bot.Channel,
		Label:          d.Label,
		MessagesPerSec: float64(short.Messages) / s.agg.ShortDuration().Seconds(),
		CommandsPerSec: d.CommandsPerSec,
		CommandRatio:   d.CommandRatio,
		RemainingSec:   d.Remaining.Seconds(),
		Eligible:       d.Eligible,
		Messages:       short.Messages,
		Commands:       short.Commands,
		Votes:          votes,
		Sends:          s.engine.Sends(),
	})
}

// drainInbound moves all currently available bytes into the decoder and
// handles every complete message before yielding.
func (s *Session) drainInbound() error {
	if err := s.client.Drain(); err != nil {
		return err
	}
	for msg := s.client.Next(); msg != nil; msg = s.client.Next() {
		if err := s.handle(msg); err != nil {
			return err
		}
	}
	return nil
}

// handle reacts to one decoded message. Only write errors are returned;
// unexpected input is traced and dropped.
func (s *Session) handle(msg *irc.Message) error {
	s.metrics.Line()

	switch msg.Command {
	case irc.Welcome:
		if !s.welcome {
			s.welcome = true
			slog.Info("bot: welcomed, joining", "channel", s.cfg.Bot.Channel)
			return s.client.Join(s.cfg.Bot.Channel)
		}

	case irc.Ping:
		payload, _ := msg.Trailing()
		slog.Debug("bot: pong", "payload", payload)
		return s.client.Pong(payload)

	case irc.PrivMsg:
		if !s.welcome {
			return nil
		}
		payload, _ := msg.Trailing()
		vote := s.agg.Current().Observe(payload)
		s.metrics.Message(vote)

	default:
		if msg.Command == irc.Unknown {
			s.metrics.UnknownLine()
			slog.Debug("bot: unrecognized line", "token", msg.Token, "raw", msg.Raw)
		} else {
			slog.Debug("bot: ignored line", "command", msg.Command.String())
		}
	}
	return nil
}
