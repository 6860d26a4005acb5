// Package business collects optional business counters from external data
// sources. Source failures degrade the bag field-wise; they never fail the
// run.
package business

import (
	"context"
	"log/slog"
	"time"

	"github.com/crimson-sun/vitals/internal/model"
	"github.com/crimson-sun/vitals/internal/window"
)

// Source supplies a subset of the business metrics for a window.
type Source interface {
	Name() string
	Fetch(ctx context.Context, win window.Window) (model.BusinessMetrics, error)
}

// Result is one collection pass: the merged bag plus per-source fetch
// durations in seconds.
type Result struct {
	Metrics model.BusinessMetrics
	Timings map[string]float64
}

// Collect fetches from every source and merges field-wise. A failing
// source is logged at warning level and its fields stay marked
// unavailable; the remaining sources still contribute theirs.
func Collect(ctx context.Context, win window.Window, sources ...Source) Result {
	res := Result{Timings: make(map[string]float64, len(sources))}
	for _, src := range sources {
		started := time.Now()
		metrics, err := src.Fetch(ctx, win)
		res.Timings[src.Name()] = time.Since(started).Seconds()
		if err != nil {
			slog.Warn("business source unavailable", "source", src.Name(), "error", err)
			continue
		}
		res.Metrics = res.Metrics.Merge(metrics)
	}
	return res
}
