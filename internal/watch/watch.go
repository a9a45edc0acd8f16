// Package watch runs gather cycles on a schedule and reloads configuration
// when the config file changes.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

type Options struct {
	Interval time.Duration
	// ConfigPath is watched for changes; empty disables reloading.
	ConfigPath string
	Debounce   time.Duration
	Logger     *zap.Logger
}

// Scheduler calls cycle once at start and then every Interval. When the
// config file changes, reload is called once edits settle; a successful
// reload is followed by an immediate cycle.
type Scheduler struct {
	cycle  func(ctx context.Context)
	reload func() error
	opts   Options
}

func New(cycle func(ctx context.Context), reload func() error, opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Scheduler{cycle: cycle, reload: reload, opts: opts}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	log := s.opts.Logger

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
		target string
	)
	if s.opts.ConfigPath != "" && s.reload != nil {
		target = filepath.Clean(s.opts.ConfigPath)
		fw, err := fsnotify.NewWatcher()
		if err != nil {
			log.Warn("config watching disabled", zap.Error(err))
		} else {
			defer fw.Close()
			// Watch the directory: editors often replace the file by rename.
			if err := fw.Add(filepath.Dir(target)); err != nil {
				log.Warn("config watching disabled", zap.String("path", target), zap.Error(err))
			} else {
				events, errs = fw.Events, fw.Errors
				log.Debug("watching config", zap.String("path", target))
			}
		}
	}

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	var (
		settle  *time.Timer
		settled <-chan time.Time
	)
	defer func() {
		if settle != nil {
			settle.Stop()
		}
	}()

	s.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			s.cycle(ctx)

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if settle == nil {
				settle = time.NewTimer(s.opts.Debounce)
			} else {
				settle.Reset(s.opts.Debounce)
			}
			settled = settle.C

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Warn("config watcher error", zap.Error(err))

		case <-settled:
			settled = nil
			if err := s.reload(); err != nil {
				log.Warn("config reload failed, keeping previous config", zap.Error(err))
				continue
			}
			log.Info("config reloaded", zap.String("path", target))
			ticker.Reset(s.opts.Interval)
			s.cycle(ctx)
		}
	}
}
