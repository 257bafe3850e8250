package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the burst of filesystem events one editor save
// produces into a single reload.
const debounceDelay = 100 * time.Millisecond

// Watch monitors the config file at path and calls apply with the policy
// section of every update that loads and validates. Only policy tuning can
// change while running; connection-level fields take effect on the next
// session. Watch blocks until ctx is cancelled.
//
// An update that fails to load is dropped: the policy the session runs with
// stays whatever the last good file said.
func Watch(ctx context.Context, path string, apply func(PolicyConfig)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	// The debounce timer is armed by events and starts disarmed.
	debounce := time.NewTimer(debounceDelay)
	if !debounce.Stop() {
		<-debounce.C
	}

	slog.Info("config: watching policy tuning", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Writes to the file itself, and creates for editors that save by
			// writing a temp file and renaming it over the original.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(debounceDelay)

		case <-debounce.C:
			cfg, err := Load(path)
			if err != nil {
				slog.Warn("config: ignoring unloadable update", "path", path, "err", err)
			} else {
				slog.Info("config: policy tuning applied",
					"path", path,
					"send_enabled", cfg.Policy.SendEnabled,
					"min_commands_per_sec", cfg.Policy.MinCommandsPerSec,
					"min_command_ratio", cfg.Policy.MinCommandRatio)
				apply(cfg.Policy)
			}
			// A rename-over save replaced the inode, so the old watch is dead
			// either way. Point it at the file now sitting at path.
			if err := watcher.Add(path); err != nil {
				slog.Warn("config: re-watch failed", "path", path, "err", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("config: watch error", "err", err)
		}
	}
}
