package vitals

import (
	"errors"
	"time"

	"github.com/crimson-sun/vitals/internal/insights"
	"github.com/crimson-sun/vitals/internal/render"
	"github.com/crimson-sun/vitals/internal/report"
	"github.com/crimson-sun/vitals/internal/window"
)

// ErrUnparsable signals that no core metric field could be recovered from
// report text.
var ErrUnparsable = report.ErrUnparsable

// Digest formats telemetry into canonical report text and renders that
// text into a block message. Safe for concurrent use.
type Digest struct {
	formatter *report.Formatter
	renderer  *render.Renderer
	topN      int
}

// New creates a Digest.
func New(opts ...Option) *Digest {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Digest{
		formatter: report.NewFormatter(
			report.WithTitle(o.title),
			report.WithLocale(o.locale),
			report.WithThresholds(o.warnThreshold, o.critThreshold),
			report.WithTopN(o.topProblems),
		),
		renderer: render.NewRenderer(
			render.WithTitle(o.title),
			render.WithPortalURL(o.portalURL),
			render.WithLocale(o.locale),
			render.WithTopN(o.topProblems),
		),
		topN: o.topProblems,
	}
}

// Format aggregates the telemetry rows and returns canonical report text.
// Missing summary counters degrade to N/A; an empty record slice still
// produces a complete (all-N/A) report.
func (d *Digest) Format(records []Record, biz Business, runDate time.Time) string {
	agg := insights.Build(toModelRecords(records), d.topN)
	return d.formatter.Format(agg, toModelBusiness(biz), runDate)
}

// Render parses report text and renders it as a block message. Text that
// yields no metric fields at all comes back as a degraded passthrough
// frame rather than an error, so there is always something to deliver.
func (d *Digest) Render(text string, runAt time.Time) Message {
	rep, err := report.Parse(text)
	if err != nil {
		rep = nil
	}
	msg := d.renderer.Render(rep, text, render.RunInfo{Now: runAt})
	return messageFrom(msg)
}

// Metric is one numeric field recovered from report text.
type Metric struct {
	Value float64
	Found bool
}

// Problem is one ranked issue recovered from the problems block.
type Problem struct {
	Rank        int
	Count       int64
	Description string
}

// Report is the structured form recovered from canonical report text.
type Report struct {
	Status             string
	Date               string
	Exceptions         Metric
	Requests           Metric
	Dependencies       Metric
	FailedDependencies Metric
	P95                Metric
	Offers             Metric
	Heartbeats         Metric
	Upsells            Metric
	Problems           []Problem
	Action             string
}

// Parse recovers the structured report from canonical text. It tolerates
// reordered lines, magnitude suffixes (1.2K, 3M), and problem-line
// variants; it returns ErrUnparsable only when none of the core metric
// fields could be found.
func Parse(text string) (*Report, error) {
	rep, err := report.Parse(text)
	if err != nil {
		return nil, err
	}
	return &Report{
		Status:             rep.Status,
		Date:               rep.Date,
		Exceptions:         metricFrom(rep.Metrics.Exceptions),
		Requests:           metricFrom(rep.Metrics.Requests),
		Dependencies:       metricFrom(rep.Metrics.Dependencies),
		FailedDependencies: metricFrom(rep.Metrics.FailedDependencies),
		P95:                metricFrom(rep.Metrics.P95),
		Offers:             metricFrom(rep.Business.Offers),
		Heartbeats:         metricFrom(rep.Business.Heartbeats),
		Upsells:            metricFrom(rep.Business.Upsells),
		Problems:           problemsFrom(rep.Problems),
		Action:             rep.Action,
	}, nil
}

// Window is a report's covered date range.
type Window struct {
	Start time.Time
	End   time.Time
	Days  int
	Label string
}

// ResolveWindow returns the reporting window for a run date: Monday runs
// cover the weekend (3 days), every other day covers 1.
func ResolveWindow(runDate time.Time) Window {
	w := window.Resolve(runDate)
	return Window{Start: w.Start, End: w.End, Days: w.Days, Label: w.RangeLabel()}
}

// Block is one display block of a rendered message.
type Block struct {
	Type     string   `json:"type"`
	Text     string   `json:"text,omitempty"`
	Fields   []string `json:"fields,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
	AltText  string   `json:"alt_text,omitempty"`
}

// Message is a rendered notification: an ordered block sequence plus a
// plain-text fallback. This is the stable public type — the internal
// representation may evolve independently without breaking consumers.
type Message struct {
	Fallback string  `json:"fallback"`
	Blocks   []Block `json:"blocks"`
	Degraded bool    `json:"degraded,omitempty"`
}

// IsUnparsable reports whether err is the parse-failure sentinel.
func IsUnparsable(err error) bool {
	return errors.Is(err, report.ErrUnparsable)
}

func metricFrom(v report.Value) Metric {
	return Metric{Value: v.Num, Found: v.Found}
}

func problemsFrom(ps []report.Problem) []Problem {
	out := make([]Problem, len(ps))
	for i, p := range ps {
		out[i] = Problem{Rank: p.Rank, Count: p.Count, Description: p.Description}
	}
	return out
}

func messageFrom(m render.Message) Message {
	blocks := make([]Block, len(m.Blocks))
	for i, b := range m.Blocks {
		blocks[i] = Block{
			Type:     string(b.Type),
			Text:     b.Text,
			Fields:   b.Fields,
			ImageURL: b.ImageURL,
			AltText:  b.AltText,
		}
	}
	return Message{Fallback: m.Fallback, Blocks: blocks, Degraded: m.Degraded}
}
