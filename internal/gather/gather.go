// Package gather runs one collection cycle: every registered source is
// polled concurrently, its items normalized, and the results merged.
package gather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/alert"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/cache"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/classify"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/clock"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/feed"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/source"
)

const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultRetries      = 1
	defaultRetryWait    = 500 * time.Millisecond
)

// Options tunes a Gatherer. Zero values pick the defaults.
type Options struct {
	CacheTTL     time.Duration
	FetchTimeout time.Duration
	Retries      int
	RetryWait    time.Duration
	// Concurrency caps in-flight sources; zero means one task per source.
	Concurrency int
}

// Result is what one source contributed to a cycle.
type Result struct {
	Source  source.Source
	Alerts  []alert.Alert
	Cached  bool
	Err     error
	Dropped int
}

// Outcome is the merged output of a cycle.
type Outcome struct {
	Timeframe alert.Timeframe
	Started   time.Time
	Results   []Result
	Alerts    []alert.Alert
}

// Failed counts sources that produced an error.
func (o Outcome) Failed() int {
	return lo.CountBy(o.Results, func(r Result) bool { return r.Err != nil })
}

type Gatherer struct {
	registry *source.Registry
	fetcher  feed.Fetcher
	cache    cache.Cache
	clock    clock.Clock
	logger   *zap.Logger
	opts     Options
}

func New(reg *source.Registry, f feed.Fetcher, c cache.Cache, clk clock.Clock, logger *zap.Logger, opts Options) *Gatherer {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = cache.NewMemory(clk)
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = cache.DefaultTTL
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = defaultRetryWait
	}
	return &Gatherer{registry: reg, fetcher: f, cache: c, clock: clk, logger: logger, opts: opts}
}

// Gather polls every source once for tf. Source failures are recorded in
// the per-source results and never abort the cycle; if every source fails
// the outcome simply has no alerts.
func (g *Gatherer) Gather(ctx context.Context, tf alert.Timeframe) Outcome {
	sources := g.registry.List()
	out := Outcome{
		Timeframe: tf,
		Started:   g.clock.Now(),
		Results:   make([]Result, len(sources)),
	}

	var eg errgroup.Group
	if g.opts.Concurrency > 0 {
		eg.SetLimit(g.opts.Concurrency)
	}
	for i, src := range sources {
		i, src := i, src
		eg.Go(func() error {
			out.Results[i] = g.poll(ctx, src, tf)
			return nil
		})
	}
	_ = eg.Wait()

	var merged []alert.Alert
	for _, r := range out.Results {
		if r.Err != nil {
			g.logger.Warn("source failed", zap.String("source", r.Source.Name), zap.Error(r.Err))
			continue
		}
		merged = append(merged, r.Alerts...)
	}
	out.Alerts = lo.UniqBy(merged, func(a alert.Alert) string { return a.ID })
	alertsGathered.Set(float64(len(out.Alerts)))

	g.logger.Info("gather cycle complete",
		zap.String("timeframe", string(tf)),
		zap.Int("sources", len(sources)),
		zap.Int("failed", out.Failed()),
		zap.Int("alerts", len(out.Alerts)),
	)
	return out
}

func (g *Gatherer) poll(ctx context.Context, src source.Source, tf alert.Timeframe) Result {
	res := Result{Source: src}
	key := cache.Key(src.Name, tf)

	cached, ok, err := g.cache.Get(ctx, key)
	switch {
	case err != nil:
		cacheLookups.WithLabelValues("error").Inc()
		g.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	case ok:
		cacheLookups.WithLabelValues("hit").Inc()
		fetchTotal.WithLabelValues(src.Name, "cached").Inc()
		now := g.clock.Now()
		res.Cached = true
		res.Alerts = lo.Filter(cached, func(a alert.Alert, _ int) bool {
			return tf.Contains(now, a.Timestamp)
		})
		return res
	default:
		cacheLookups.WithLabelValues("miss").Inc()
	}

	start := time.Now()
	res.Alerts, res.Dropped, res.Err = g.collect(ctx, src, tf)
	fetchDuration.WithLabelValues(src.Name).Observe(time.Since(start).Seconds())
	if res.Err != nil {
		fetchTotal.WithLabelValues(src.Name, "error").Inc()
		return res
	}
	fetchTotal.WithLabelValues(src.Name, "ok").Inc()

	if err := g.cache.Set(ctx, key, res.Alerts, g.opts.CacheTTL); err != nil {
		g.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	g.logger.Debug("source polled",
		zap.String("source", src.Name),
		zap.Int("alerts", len(res.Alerts)),
		zap.Int("dropped", res.Dropped),
	)
	return res
}

// collect fetches src with retries and normalizes what comes back. A panic
// in a transport or parser is turned into an error for this source only.
func (g *Gatherer) collect(ctx context.Context, src source.Source, tf alert.Timeframe) (alerts []alert.Alert, dropped int, err error) {
	defer func() {
		if r := recover(); r != nil {
			alerts, dropped = nil, 0
			err = fmt.Errorf("source %q: panic: %v", src.Name, r)
		}
	}()

	items, err := g.fetch(ctx, src)
	if err != nil {
		return nil, 0, err
	}

	now := g.clock.Now()
	alerts = make([]alert.Alert, 0, len(items))
	for _, item := range items {
		a, err := classify.Normalize(item, src, tf, now)
		if err != nil {
			dropped++
			droppedItems.WithLabelValues(dropReason(err)).Inc()
			continue
		}
		alerts = append(alerts, a)
	}
	return alerts, dropped, nil
}

func (g *Gatherer) fetch(ctx context.Context, src source.Source) ([]feed.Item, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = g.opts.RetryWait
	policy.MaxElapsedTime = 0

	var items []feed.Item
	attempt := 0
	op := func() error {
		attempt++
		fctx, cancel := context.WithTimeout(ctx, g.opts.FetchTimeout)
		defer cancel()

		var err error
		items, err = g.fetcher.Fetch(fctx, src)
		if err == nil {
			return nil
		}
		var status *feed.StatusError
		if errors.As(err, &status) && !status.Retryable() {
			return backoff.Permanent(err)
		}
		g.logger.Debug("fetch attempt failed",
			zap.String("source", src.Name),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(g.opts.Retries)), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src.Name, err)
	}
	return items, nil
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, classify.ErrNoTimestamp):
		return "no_timestamp"
	case errors.Is(err, classify.ErrOutsideWindow):
		return "outside_window"
	case errors.Is(err, classify.ErrOffTopic):
		return "off_topic"
	default:
		return "malformed"
	}
}
