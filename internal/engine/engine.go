// Package engine ties a gather cycle to report building and persistence.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/alert"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/clock"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/gather"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/report"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/store"
)

// ErrPersist wraps failures to save a report. The report itself is still
// returned to the caller.
var ErrPersist = errors.New("persisting report")

// Gatherer runs one collection cycle.
type Gatherer interface {
	Gather(ctx context.Context, tf alert.Timeframe) gather.Outcome
}

// Store persists reports and serves the latest summary.
type Store interface {
	Save(r *report.Report) error
	LoadLatestSummary() (store.Latest, error)
}

// GatherRecorder is implemented by caches that remember when the last
// cycle ran.
type GatherRecorder interface {
	SetLastGather(t time.Time) error
}

type Engine struct {
	gatherer Gatherer
	builder  *report.Builder
	store    Store
	recorder GatherRecorder
	clock    clock.Clock
	logger   *zap.Logger
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithRecorder stores the completion time of every cycle in r.
func WithRecorder(r GatherRecorder) Option {
	return func(e *Engine) { e.recorder = r }
}

func New(g Gatherer, b *report.Builder, s Store, opts ...Option) *Engine {
	e := &Engine{gatherer: g, builder: b, store: s}
	for _, o := range opts {
		o(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.clock == nil {
		e.clock = clock.Real()
	}
	if e.builder == nil {
		e.builder = report.NewBuilder(e.clock, nil)
	}
	return e
}

// GatherIntelligence runs a cycle for tf and persists the resulting report.
// Source and item failures are absorbed into the report. A non-nil error
// wraps ErrPersist and is returned together with the report.
func (e *Engine) GatherIntelligence(ctx context.Context, tf alert.Timeframe) (*report.Report, error) {
	if tf == "" {
		tf = alert.DefaultFrame
	}
	out := e.gatherer.Gather(ctx, tf)

	r := e.builder.Build(out.Alerts, tf)
	r.Sources = make([]report.SourceStatus, len(out.Results))
	for i, res := range out.Results {
		st := report.SourceStatus{Name: res.Source.Name, Alerts: len(res.Alerts), Cached: res.Cached}
		if res.Err != nil {
			st.Err = res.Err.Error()
		}
		r.Sources[i] = st
	}

	if e.recorder != nil {
		if err := e.recorder.SetLastGather(e.clock.Now()); err != nil {
			e.logger.Warn("recording gather time", zap.Error(err))
		}
	}

	if err := e.store.Save(r); err != nil {
		e.logger.Error("report not persisted", zap.String("report_id", r.ReportID), zap.Error(err))
		return r, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	e.logger.Info("report saved",
		zap.String("report_id", r.ReportID),
		zap.Int("alerts", r.TotalAlerts),
		zap.Int("critical", len(r.CriticalAlerts)),
	)
	return r, nil
}

// CurrentSummary returns the last persisted summary, or a placeholder when
// no report has been saved.
func (e *Engine) CurrentSummary() (store.Latest, error) {
	return e.store.LoadLatestSummary()
}
