package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crowdplay/crowdplay/internal/api"
	"github.com/crowdplay/crowdplay/internal/bot"
	"github.com/crowdplay/crowdplay/internal/config"
	"github.com/crowdplay/crowdplay/internal/irc"
	"github.com/crowdplay/crowdplay/internal/journal"
	"github.com/crowdplay/crowdplay/internal/live"
	"github.com/crowdplay/crowdplay/internal/metrics"
)

const (
	backoffInitial    = 1 * time.Second
	backoffMax        = 60 * time.Second
	backoffMultiplier = 2.0

	// establishedAfter is how long a session must last before the backoff
	// resets — a session that dies faster keeps escalating the wait.
	establishedAfter = 30 * time.Second

	// boardTTL is the staleness cutoff for the live status board.
	boardTTL = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("crowdplay starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if cfg.Bot.Token() == "" {
		slog.Error("token environment variable is empty", "token_env", cfg.Bot.TokenEnv)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"server", cfg.Bot.Server,
		"transport", cfg.Bot.Transport,
		"channel", cfg.Bot.Channel,
		"send_enabled", cfg.Policy.SendEnabled,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Policy hot-reload: the watcher pushes new tuning into the running
	// session between loop iterations. Connection-level changes still
	// require a restart.
	reload := make(chan config.PolicyConfig, 1)
	go func() {
		if err := config.Watch(ctx, *configPath, func(pc config.PolicyConfig) {
			select {
			case <-reload: // stale tuning nobody consumed yet
			default:
			}
			reload <- pc
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	m := metrics.New()
	board := live.NewBoard(boardTTL)

	// Optional debug listener: metrics exposition, JSON status and the
	// WebSocket live feed.
	if cfg.Debug.Listen != "" {
		hub := live.NewHub(board, cfg.Debug.BroadcastInterval)
		go hub.Run(ctx)

		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		mux.Handle("/ws/live", hub)
		mux.Handle("/", api.New(board))

		srv := &http.Server{Addr: cfg.Debug.Listen, Handler: mux}
		go func() {
			slog.Info("debug listener up", "addr", cfg.Debug.Listen)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("debug listener stopped", "err", err)
			}
		}()
		go func() {
			<-ctx.Done()
			srv.Shutdown(context.Background()) //nolint:errcheck
		}()
	}

	// Session supervisor: dial, run, reconnect forever with truncated
	// exponential backoff. No state carries over between sessions.
	bo := newBackoff()
	for ctx.Err() == nil {
		conn, err := irc.Dial(cfg.Bot)
		if err != nil {
			wait := bo.next()
			slog.Error("connect failed, will retry",
				"server", cfg.Bot.Server, "err", err, "retry_in", wait)
			if !sleep(ctx, wait) {
				break
			}
			continue
		}

		jw, err := journal.Open(cfg.Bot.JournalPath)
		if err != nil {
			conn.Close()
			slog.Error("failed to open journal", "path", cfg.Bot.JournalPath, "err", err)
			os.Exit(1)
		}

		started := time.Now()
		sess := bot.New(*cfg, conn, bot.Options{
			Journal: jw,
			Board:   board,
			Metrics: m,
			Reload:  reload,
		})
		err = sess.Run(ctx)
		jw.Close()

		if ctx.Err() != nil {
			break
		}

		m.Reconnect()
		if time.Since(started) > establishedAfter {
			bo.reset()
		}
		wait := bo.next()
		slog.Warn("session ended, will reconnect", "err", err, "retry_in", wait)
		if !sleep(ctx, wait) {
			break
		}
	}

	slog.Info("crowdplay shutting down")
}

// sleep waits for d and reports false if ctx was cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// backoff implements truncated exponential backoff with jitter.
type backoff struct {
	current time.Duration
}

func newBackoff() *backoff {
	return &backoff{current: backoffInitial}
}

// next returns the current backoff duration and advances the internal state.
func (b *backoff) next() time.Duration {
	d := b.current
	// Apply ±25 % jitter.
	jitter := time.Duration(float64(b.current) * 0.25 * (rand.Float64()*2 - 1)) //nolint:gosec // not crypto
	d += jitter
	if d < 0 {
		d = 0
	}

	// Advance for next call.
	b.current = time.Duration(float64(b.current) * backoffMultiplier)
	if b.current > backoffMax {
		b.current = backoffMax
	}
	return d
}

func (b *backoff) reset() {
	b.current = backoffInitial
}
