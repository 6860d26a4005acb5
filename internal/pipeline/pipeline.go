// Package pipeline wires the run: resolve the window, fetch telemetry,
// aggregate, format the canonical report, re-parse it, render blocks, and
// deliver. Data flows strictly forward; only a structurally broken
// telemetry payload or a delivery failure aborts a run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/crimson-sun/vitals/internal/business"
	"github.com/crimson-sun/vitals/internal/connector"
	"github.com/crimson-sun/vitals/internal/insights"
	"github.com/crimson-sun/vitals/internal/output"
	"github.com/crimson-sun/vitals/internal/render"
	"github.com/crimson-sun/vitals/internal/report"
	"github.com/crimson-sun/vitals/internal/window"
)

// Status classifies a run's outcome.
type Status int

const (
	// StatusOK: full structured report delivered.
	StatusOK Status = iota
	// StatusDegraded: a report was delivered, but parsing or an optional
	// source fell back.
	StatusDegraded
	// StatusFailed: nothing was delivered.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result summarizes one completed run.
type Result struct {
	Status  Status
	Window  window.Window
	Report  string
	Message render.Message
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithBusinessSources registers optional business-metric sources.
func WithBusinessSources(sources ...business.Source) Option {
	return func(p *Pipeline) { p.sources = sources }
}

// WithTopN sets how many problem groups the report carries. Default: 5.
func WithTopN(n int) Option {
	return func(p *Pipeline) { p.topN = n }
}

// WithClock overrides the timestamp source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// Pipeline connects a telemetry connector, the formatter/renderer pair,
// optional business sources, and a delivery output.
type Pipeline struct {
	connector connector.Connector
	connCfg   connector.Config
	formatter *report.Formatter
	renderer  *render.Renderer
	output    output.Output
	sources   []business.Source
	topN      int
	now       func() time.Time
}

// New creates a Pipeline from the given components.
func New(conn connector.Connector, connCfg connector.Config, f *report.Formatter, r *render.Renderer, out output.Output, opts ...Option) *Pipeline {
	p := &Pipeline{
		connector: conn,
		connCfg:   connCfg,
		formatter: f,
		renderer:  r,
		output:    out,
		topN:      5,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one report run for the given run date. A connector error is
// the only fetch-stage failure that aborts the run; everything downstream
// degrades instead of failing.
func (p *Pipeline) Run(ctx context.Context, runDate time.Time) (Result, error) {
	win := window.Resolve(runDate)
	slog.Info("run started", "date", runDate.Format("2006-01-02"), "window_days", win.Days)

	payload, err := p.connector.Fetch(ctx, p.connCfg, win)
	if err != nil {
		return Result{Status: StatusFailed, Window: win}, fmt.Errorf("pipeline: fetch: %w", err)
	}
	slog.Info("telemetry fetched", "records", len(payload.Records), "elapsed", payload.Elapsed)

	agg := insights.Build(payload.Records, p.topN)
	if agg.Degraded {
		slog.Warn("summary counters incomplete, metrics line will show N/A")
	}

	biz := business.Collect(ctx, win, p.sources...)

	text := p.formatter.Format(agg, biz.Metrics, runDate)

	rep, err := report.Parse(text)
	if err != nil {
		slog.Warn("report unparsable, delivering raw text fallback", "error", err)
		rep = nil
	}

	msg := p.renderer.Render(rep, text, render.RunInfo{
		Now:           p.now(),
		InsightsRange: win.RangeLabel(),
		BusinessRange: win.DaysText(),
		Timeline:      agg.Timeline,
		Timings: render.Timings{
			Insights: payload.Elapsed.Seconds(),
			Redshift: biz.Timings["redshift"],
			MySQL:    biz.Timings["mysql"],
		},
	})

	rec := output.Record{
		RunAt:    p.now(),
		Degraded: msg.Degraded,
		Report:   text,
		Message:  msg,
	}
	if err := p.output.Deliver(ctx, rec); err != nil {
		return Result{Status: StatusFailed, Window: win, Report: text, Message: msg},
			fmt.Errorf("pipeline: deliver: %w", err)
	}

	status := StatusOK
	if msg.Degraded || agg.Degraded {
		status = StatusDegraded
	}
	slog.Info("report delivered", "status", status.String(), "blocks", len(msg.Blocks))

	return Result{Status: status, Window: win, Report: text, Message: msg}, nil
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	return p.output.Close()
}
