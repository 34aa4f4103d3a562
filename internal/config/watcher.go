package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oshokin/vent-alarm/internal/logger"
)

// defaultDebounce absorbs the burst of events editors produce on save.
const defaultDebounce = 200 * time.Millisecond

// Watcher reloads the settings file when it changes.
type Watcher struct {
	path     string
	onReload func(ctx context.Context, cfg *Config)
	debounce time.Duration
}

// NewWatcher creates a watcher for path. onReload receives every settings
// value that loads and validates; broken edits are logged and skipped.
func NewWatcher(path string, onReload func(ctx context.Context, cfg *Config)) *Watcher {
	if path == "" {
		path = DefaultConfigFilename
	}

	return &Watcher{
		path:     filepath.Clean(path),
		onReload: onReload,
		debounce: defaultDebounce,
	}
}

// Run watches until ctx is canceled. The parent directory is watched rather
// than the file, so editors that save by rename keep working.
func (w *Watcher) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "config-watcher")

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	defer func() {
		_ = fsw.Close()
	}()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	logger.InfoKV(ctx, "Watching settings", "path", w.path)

	reload := make(chan struct{}, 1)

	var timer *time.Timer

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(ev.Name) != w.path || !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}

			if timer != nil {
				timer.Stop()
			}

			timer = time.AfterFunc(w.debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			w.reload(ctx)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}

			logger.ErrorKV(ctx, "Settings watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	cfg, err := Load(w.path)
	if err != nil {
		logger.ErrorKV(ctx, "Settings reload failed, keeping previous values", "error", err)
		return
	}

	logger.InfoKV(ctx, "Settings reloaded", "path", w.path)

	if w.onReload != nil {
		w.onReload(ctx, cfg)
	}
}

// ApplyLogLevel is an onReload callback that applies the log level.
func ApplyLogLevel(ctx context.Context, cfg *Config) {
	level, ok := logger.ParseLogLevel(cfg.LogLevel)
	if !ok {
		return
	}

	if level != logger.Level() {
		logger.InfoKV(ctx, "Log level changed", "from", logger.Level().String(), "to", level.String())
		logger.SetLevel(level)
	}
}
