// Package render turns a parsed report into an ordered block sequence for
// the delivery outputs, falling back to plain-text passthrough when
// structured parsing yielded nothing usable.
package render

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/crimson-sun/vitals/internal/insights"
	"github.com/crimson-sun/vitals/internal/report"
)

// BlockType identifies a display block. Outputs map these onto their own
// wire format; the renderer only guarantees order and textual content.
type BlockType string

const (
	BlockHeader  BlockType = "header"
	BlockSection BlockType = "section"
	BlockContext BlockType = "context"
	BlockDivider BlockType = "divider"
	BlockImage   BlockType = "image"
)

// Block is one display block of a rendered message.
type Block struct {
	Type     BlockType `json:"type"`
	Text     string    `json:"text,omitempty"`
	Fields   []string  `json:"fields,omitempty"` // section grid, two per row
	ImageURL string    `json:"image_url,omitempty"`
	AltText  string    `json:"alt_text,omitempty"`
}

// Message is the rendered notification: an ordered block sequence plus a
// plain-text fallback for clients that cannot display blocks.
type Message struct {
	Fallback string  `json:"fallback"`
	Blocks   []Block `json:"blocks"`
	Degraded bool    `json:"degraded,omitempty"`
}

// Timings are the collaborator fetch durations surfaced in the footer
// area, in seconds. Zero values are omitted.
type Timings struct {
	Insights float64
	Redshift float64
	MySQL    float64
}

// RunInfo carries the per-run context the renderer needs beyond the parsed
// report: the run timestamp, window labels, timeline buckets for the chart,
// an optional pre-built chart image reference, and fetch timings.
type RunInfo struct {
	Now           time.Time
	InsightsRange string
	BusinessRange string
	Timeline      []insights.Bucket
	ChartURL      string // external chart reference; "" synthesizes one
	Timings       Timings
}

const (
	defaultTitle     = "Daily Report"
	defaultPortalURL = "https://portal.azure.com"
	barCells         = 20
)

// degradedMarker prefixes the plain-text fallback so a degraded delivery
// is never mistaken for a healthy one.
const degradedMarker = "⚠️"

// Renderer builds Messages. Pure transform: it never mutates its inputs
// and reads no clocks or environment.
type Renderer struct {
	title     string
	portalURL string
	printer   *message.Printer
	topN      int
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithTitle sets the message header title.
func WithTitle(title string) RendererOption {
	return func(r *Renderer) { r.title = title }
}

// WithPortalURL sets the deep-link target in the footer.
func WithPortalURL(u string) RendererOption {
	return func(r *Renderer) { r.portalURL = u }
}

// WithLocale sets the display locale for separator-formatted counts.
func WithLocale(tag language.Tag) RendererOption {
	return func(r *Renderer) { r.printer = message.NewPrinter(tag) }
}

// WithTopN caps the number of problem blocks rendered.
func WithTopN(n int) RendererOption {
	return func(r *Renderer) {
		if n > 0 {
			r.topN = n
		}
	}
}

// NewRenderer creates a Renderer with English number formatting.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		title:     defaultTitle,
		portalURL: defaultPortalURL,
		printer:   message.NewPrinter(language.English),
		topN:      5,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render builds the message for a parsed report. A nil rep means parsing
// failed: the raw text is passed through verbatim inside a degraded frame
// so a human-readable report always reaches the channel.
func (r *Renderer) Render(rep *report.Report, raw string, info RunInfo) Message {
	if rep == nil {
		return r.renderFallback(raw)
	}

	blocks := []Block{
		{Type: BlockHeader, Text: "📊 " + r.title},
		{Type: BlockContext, Text: "_" + info.Now.Format("January 02, 2006 at 3:04 PM MST") + "_"},
		{Type: BlockDivider},
	}

	blocks = append(blocks, r.businessBlocks(rep.Business, info.BusinessRange)...)
	blocks = append(blocks, r.metricBlocks(rep.Metrics, rep.Status, info.InsightsRange)...)
	blocks = append(blocks, r.chartBlocks(info)...)
	blocks = append(blocks, r.problemBlocks(rep.Problems)...)

	if rep.Action != "" {
		text := "*⚡ Action Required*\n" + rep.Action
		if strings.Contains(strings.ToLower(rep.Action), "no major issues") {
			// All-clear line carries its own glyph; no alert framing.
			text = "*" + rep.Action + "*"
		}
		blocks = append(blocks,
			Block{Type: BlockDivider},
			Block{Type: BlockSection, Text: text},
		)
	}

	blocks = append(blocks, r.timingBlocks(info.Timings)...)
	blocks = append(blocks, r.footer())

	return Message{
		Fallback: fmt.Sprintf("%s %s - Daily Summary", rep.Status, r.title),
		Blocks:   blocks,
	}
}

// renderFallback wraps the raw report in the degraded frame: header,
// exactly one plain-text section carrying the report verbatim, footer.
func (r *Renderer) renderFallback(raw string) Message {
	return Message{
		Fallback: fmt.Sprintf("%s %s\n\n%s", degradedMarker, r.title, raw),
		Degraded: true,
		Blocks: []Block{
			{Type: BlockHeader, Text: fmt.Sprintf("%s %s (degraded)", degradedMarker, r.title)},
			{Type: BlockSection, Text: fmt.Sprintf("%s Structured rendering unavailable - raw report follows\n\n%s", degradedMarker, raw)},
			r.footer(),
		},
	}
}

func (r *Renderer) businessBlocks(biz report.BusinessSet, rangeLabel string) []Block {
	var fields []string
	if biz.Offers.Found {
		fields = append(fields, "*🎁 Offers*\n`"+biz.Offers.Text+"`")
	}
	if biz.Heartbeats.Found {
		fields = append(fields, "*🎮 Player Heartbeats*\n`"+biz.Heartbeats.Text+"`")
	}
	if biz.Upsells.Found {
		fields = append(fields, "*💰 Upsells*\n`"+biz.Upsells.Text+"`")
	}
	if len(fields) == 0 {
		return nil
	}

	header := "📊 Business Metrics – Daily"
	sources := "*Data Sources:* Redshift (Offers, Upsells) • MySQL (Player Heartbeats)"
	if rangeLabel != "" {
		header = "📊 Business Metrics – " + rangeLabel
		sources += " • Data from: " + rangeLabel
	} else {
		sources += " • Last 24 hours"
	}

	return []Block{
		{Type: BlockHeader, Text: header},
		{Type: BlockSection, Fields: fields},
		{Type: BlockContext, Text: sources},
		{Type: BlockDivider},
	}
}

func (r *Renderer) metricBlocks(m report.MetricSet, status, rangeLabel string) []Block {
	var fields []string
	if m.Exceptions.Found {
		fields = append(fields, "*🚨 Exceptions*\n`"+m.Exceptions.Text+"`")
	}
	if m.Requests.Found {
		fields = append(fields, "*📥 Requests*\n`"+m.Requests.Text+"`")
	}
	if m.SuccessRate.Found {
		fields = append(fields, "*✅ Success Rate*\n`"+m.SuccessRate.Text+"%`")
	}
	if m.Dependencies.Found {
		deps := m.Dependencies.Text
		if m.FailedDependencies.Found {
			deps += " (" + m.FailedDependencies.Text + " failed)"
		}
		fields = append(fields, "*🔗 Dependencies*\n`"+deps+"`")
	}
	if m.P95.Found {
		fields = append(fields, "*⚡ P95 Response*\n`"+m.P95.Text+"ms`")
	}
	if len(fields) == 0 {
		return nil
	}

	header := status + " Application Insights - Health Summary"
	if rangeLabel != "" {
		header = status + " Application Insights - " + rangeLabel
	}

	return []Block{
		{Type: BlockHeader, Text: header},
		{Type: BlockSection, Fields: fields},
	}
}

// chartBlocks emits the timeline visualization: an external or synthesized
// image reference when one fits, otherwise the inline bar chart. No
// buckets, no section — absence is not an error.
func (r *Renderer) chartBlocks(info RunInfo) []Block {
	if len(info.Timeline) == 0 {
		return nil
	}

	imageURL := info.ChartURL
	if imageURL == "" {
		imageURL = chartURL(info.Timeline)
	}
	if imageURL != "" {
		return []Block{
			{Type: BlockDivider},
			{Type: BlockSection, Text: "*📈 Exception Timeline - Last 24 Hours*"},
			{Type: BlockImage, ImageURL: imageURL, AltText: "Exception timeline showing hourly exception counts"},
		}
	}

	ascii := asciiChart(info.Timeline)
	if ascii == "" {
		return nil
	}
	return []Block{
		{Type: BlockDivider},
		{Type: BlockSection, Text: ascii},
	}
}

func (r *Renderer) problemBlocks(problems []report.Problem) []Block {
	if len(problems) == 0 {
		return nil
	}
	if len(problems) > r.topN {
		problems = problems[:r.topN]
	}

	var maxCount int64
	for _, p := range problems {
		if p.Count > maxCount {
			maxCount = p.Count
		}
	}

	blocks := []Block{
		{Type: BlockDivider},
		{Type: BlockSection, Text: "*🔥 Top Exception Problems*"},
	}
	for i, p := range problems {
		count := r.printer.Sprintf("%d", p.Count)
		blocks = append(blocks, Block{
			Type: BlockSection,
			Text: fmt.Sprintf("*%d. %s× occurrences*\n`%s` _%s_\n```%s```",
				i+1, count, bar(p.Count, maxCount), count, p.Description),
		})
	}
	return blocks
}

func (r *Renderer) timingBlocks(t Timings) []Block {
	var parts []string
	if t.Insights > 0 {
		parts = append(parts, fmt.Sprintf("Azure App Insights: %.2fs", t.Insights))
	}
	if t.Redshift > 0 {
		parts = append(parts, fmt.Sprintf("Redshift: %.2fs", t.Redshift))
	}
	if t.MySQL > 0 {
		parts = append(parts, fmt.Sprintf("MySQL: %.2fs", t.MySQL))
	}
	if len(parts) == 0 {
		return nil
	}
	return []Block{
		{Type: BlockDivider},
		{Type: BlockContext, Text: "⏱️ *Fetch Times:* " + strings.Join(parts, " • ")},
	}
}

func (r *Renderer) footer() Block {
	return Block{
		Type: BlockContext,
		Text: fmt.Sprintf("📈 <%s|View in Azure Portal> | Generated by vitals", r.portalURL),
	}
}

// bar renders a fixed-width proportional bar. Length scales linearly to the
// maximum displayed count, with at least one filled cell so zero-count
// entries stay visible.
func bar(count, maxCount int64) string {
	filled := 0
	if maxCount > 0 {
		filled = int(count * barCells / maxCount)
	}
	if filled < 1 {
		filled = 1
	}
	if filled > barCells {
		filled = barCells
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barCells-filled)
}
