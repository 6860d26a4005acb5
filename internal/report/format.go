// Package report produces the canonical plain-text report and re-parses it
// into structured fields. The text is the hand-off contract between
// formatting and rendering: it may also originate from a hand-authored
// path, so the parser is tolerant where the formatter is exact.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/crimson-sun/vitals/internal/insights"
	"github.com/crimson-sun/vitals/internal/model"
)

// Unknown is the explicit token printed for counters that could not be
// sourced. Never a zero: "no data" and "no activity" must stay distinct.
const Unknown = "N/A"

// Status glyphs for the report's first line.
const (
	StatusCritical = "🔴"
	StatusWarning  = "🟡"
	StatusHealthy  = "✅"
)

const (
	defaultTitle             = "Player Health Status"
	defaultWarningThreshold  = 2000
	defaultCriticalThreshold = 5000
	defaultTopN              = 5
)

// Formatter renders an aggregate into the canonical report text.
// It never fails: missing data degrades to Unknown tokens or omitted
// lines so the output stays renderable downstream.
type Formatter struct {
	title   string
	printer *message.Printer
	warn    int64
	crit    int64
	topN    int
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithTitle sets the report title on the status line.
func WithTitle(title string) FormatterOption {
	return func(f *Formatter) { f.title = title }
}

// WithLocale sets the display locale used for thousands separators.
func WithLocale(tag language.Tag) FormatterOption {
	return func(f *Formatter) { f.printer = message.NewPrinter(tag) }
}

// WithThresholds sets the exception counts above which the status glyph
// turns warning and critical.
func WithThresholds(warn, crit int64) FormatterOption {
	return func(f *Formatter) { f.warn, f.crit = warn, crit }
}

// WithTopN sets the problem count named in the "Top N Problems" header.
func WithTopN(n int) FormatterOption {
	return func(f *Formatter) {
		if n > 0 {
			f.topN = n
		}
	}
}

// NewFormatter creates a Formatter with English number formatting and the
// default thresholds.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		title:   defaultTitle,
		printer: message.NewPrinter(language.English),
		warn:    defaultWarningThreshold,
		crit:    defaultCriticalThreshold,
		topN:    defaultTopN,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format renders the canonical six-part report: status line, metrics line,
// optional business-metrics line, problems block, action line.
func (f *Formatter) Format(agg insights.Aggregate, biz model.BusinessMetrics, runDate time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s - %s\n\n", f.statusGlyph(agg.Summary), f.title, runDate.Format("January 02, 2006"))

	b.WriteString(f.metricsLine(agg.Summary))
	b.WriteString("\n\n")

	if biz.Available() {
		b.WriteString(f.businessLine(biz))
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Top %d Problems:\n", f.topN)
	for _, p := range agg.Problems {
		fmt.Fprintf(&b, "%d. **%s×** %s at %s - %s\n", p.Rank, f.count(p.Count), orUnknownText(p.Type), orUnknownText(p.Operation), p.Description)
	}

	b.WriteString("\n")
	b.WriteString(f.actionLine(agg))
	b.WriteString("\n")

	return b.String()
}

// statusGlyph picks the health glyph from the exception total. An
// unavailable summary reads as warning: the Unknown metrics make the
// degradation visible without crying wolf.
func (f *Formatter) statusGlyph(s insights.Summary) string {
	if !s.Available {
		return StatusWarning
	}
	switch {
	case s.TotalExceptions > f.crit:
		return StatusCritical
	case s.TotalExceptions > f.warn:
		return StatusWarning
	default:
		return StatusHealthy
	}
}

func (f *Formatter) metricsLine(s insights.Summary) string {
	if !s.Available {
		return fmt.Sprintf("Metrics: %s exceptions | %s requests | %s dependencies (%s failed) | P95: %s",
			Unknown, Unknown, Unknown, Unknown, Unknown)
	}
	// P95 prints as a bare integer, no separator.
	return fmt.Sprintf("Metrics: %s exceptions | %s requests | %s dependencies (%s failed) | P95: %sms",
		f.count(s.TotalExceptions),
		f.count(s.TotalRequests),
		f.count(s.TotalDependencies),
		f.count(s.FailedDependencies),
		strconv.FormatInt(int64(s.P95ResponseTime), 10))
}

func (f *Formatter) businessLine(biz model.BusinessMetrics) string {
	return fmt.Sprintf("Business Metrics: %s offers | %s player heartbeats | %s upsells",
		f.metric(biz.Offers), f.metric(biz.Heartbeats), f.metric(biz.Upsells))
}

// actionLine derives the closing recommendation from the top problem.
func (f *Formatter) actionLine(agg insights.Aggregate) string {
	if len(agg.Problems) == 0 {
		return "✅ No major issues detected"
	}
	top := agg.Problems[0]
	if agg.Summary.Available && agg.Summary.TotalExceptions > 0 {
		share := top.Count * 100 / agg.Summary.TotalExceptions
		return fmt.Sprintf("🚨 Action Required: Investigate %s null-safety - accounts for %d%% of exceptions",
			orUnknownText(top.Operation), share)
	}
	return fmt.Sprintf("🚨 Action Required: Investigate %s null-safety", orUnknownText(top.Operation))
}

// count formats an integer with locale thousands separators.
func (f *Formatter) count(n int64) string {
	return f.printer.Sprintf("%d", n)
}

// metric formats a business metric, or the Unknown token when the field's
// source was unreachable.
func (f *Formatter) metric(m model.Metric) string {
	if !m.Available {
		return Unknown
	}
	return f.count(m.Value)
}

func orUnknownText(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
