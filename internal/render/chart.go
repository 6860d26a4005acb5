package render

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/crimson-sun/vitals/internal/insights"
)

const (
	quickChartBase = "https://quickchart.io/chart"
	maxChartURLLen = 2000 // longer URLs tend to be rejected by the image proxy
	maxImageHours  = 24
	maxASCIIHours  = 12
)

// Chart.js config shape, kept minimal so the encoded URL stays short.
type chartConfig struct {
	Type    string       `json:"type"`
	Data    chartData    `json:"data"`
	Options chartOptions `json:"options"`
}

type chartData struct {
	Labels   []string       `json:"labels"`
	Datasets []chartDataset `json:"datasets"`
}

type chartDataset struct {
	Label           string  `json:"label"`
	Data            []int64 `json:"data"`
	BackgroundColor string  `json:"backgroundColor"`
	BorderColor     string  `json:"borderColor"`
	BorderWidth     int     `json:"borderWidth"`
}

type chartOptions struct {
	Legend chartLegend `json:"legend"`
	Title  chartTitle  `json:"title"`
}

type chartLegend struct {
	Display bool `json:"display"`
}

type chartTitle struct {
	Display   bool   `json:"display"`
	Text      string `json:"text"`
	FontColor string `json:"fontColor"`
}

// chartURL builds a QuickChart bar-chart URL from the most recent timeline
// buckets. Returns "" when there is nothing to plot or the encoded URL
// exceeds the length limit; callers then fall back to the inline chart.
func chartURL(buckets []insights.Bucket) string {
	buckets = tail(buckets, maxImageHours)
	if len(buckets) == 0 {
		return ""
	}

	labels := make([]string, len(buckets))
	data := make([]int64, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Hour.Format("15:04")
		data[i] = b.Count
	}

	cfg := chartConfig{
		Type: "bar",
		Data: chartData{
			Labels: labels,
			Datasets: []chartDataset{{
				Label:           "Exceptions",
				Data:            data,
				BackgroundColor: "rgba(220,38,38,0.9)",
				BorderColor:     "rgba(220,38,38,1)",
				BorderWidth:     1,
			}},
		},
		Options: chartOptions{
			Legend: chartLegend{Display: false},
			Title: chartTitle{
				Display:   true,
				Text:      "Exception Timeline - Last 24 Hours",
				FontColor: "#e5e7eb",
			},
		},
	}

	encoded, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}

	// Dark background to match the chat client's dark mode.
	u := quickChartBase + "?c=" + url.QueryEscape(string(encoded)) + "&w=800&h=400&bkg=%23111827&devicePixelRatio=2"
	if len(u) > maxChartURLLen {
		return ""
	}
	return u
}

// asciiChart renders the most recent buckets as an inline bar chart wrapped
// in a code fence: equal-width rows scaled to the maximum bucket count,
// monotonic left-to-right by hour.
func asciiChart(buckets []insights.Bucket) string {
	buckets = tail(buckets, maxASCIIHours)
	if len(buckets) == 0 {
		return ""
	}

	var maxCount int64 = 1
	for _, b := range buckets {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("📊 *Exception Timeline (Last %d Hours)*", maxASCIIHours), "```")
	for _, b := range buckets {
		filled := int(b.Count * barCells / maxCount)
		lines = append(lines, fmt.Sprintf("%s %s %5d", b.Hour.Format("15:04"), strings.Repeat("█", filled), b.Count))
	}
	lines = append(lines, "```")
	return strings.Join(lines, "\n")
}

// tail returns the last n buckets. Timeline buckets arrive sorted by hour.
func tail(buckets []insights.Bucket, n int) []insights.Bucket {
	if len(buckets) > n {
		return buckets[len(buckets)-n:]
	}
	return buckets
}
