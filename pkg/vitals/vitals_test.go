package vitals_test

import (
	"strings"
	"testing"
	"time"

	"github.com/crimson-sun/vitals/pkg/vitals"
)

// Thursday.
var runDate = time.Date(2026, 2, 5, 8, 0, 0, 0, time.UTC)

func telemetry() []vitals.Record {
	return []vitals.Record{
		{
			Kind:               vitals.KindSummary,
			TotalRequests:      i64(0),
			FailedRequests:     i64(0),
			TotalExceptions:    i64(6417),
			TotalDependencies:  i64(2313802),
			FailedDependencies: i64(202),
			P95ResponseTime:    f64(1042),
		},
		{
			Kind:          vitals.KindExceptionGroup,
			Type:          "System.NullReferenceException",
			Operation:     "GET /api/player/profile",
			Count:         i64(3866),
			SampleMessage: "Object reference not set to an instance of an object",
		},
		{
			Kind:          vitals.KindExceptionGroup,
			Type:          "System.TimeoutException",
			Operation:     "GET /api/session",
			Count:         i64(1827),
			SampleMessage: "The operation has timed out",
		},
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	d := vitals.New()
	text := d.Format(telemetry(), vitals.Business{Offers: i64(1823), Upsells: i64(95)}, runDate)

	rep, err := vitals.Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rep.Exceptions.Value != 6417 {
		t.Errorf("exceptions = %v, want 6417", rep.Exceptions.Value)
	}
	if rep.Dependencies.Value != 2313802 {
		t.Errorf("dependencies = %v, want 2313802", rep.Dependencies.Value)
	}
	if rep.P95.Value != 1042 {
		t.Errorf("p95 = %v, want 1042", rep.P95.Value)
	}
	if rep.Offers.Value != 1823 || !rep.Offers.Found {
		t.Errorf("offers = %+v, want 1823", rep.Offers)
	}
	if rep.Heartbeats.Found {
		t.Error("missing heartbeats must not parse as found")
	}
	if len(rep.Problems) != 2 || rep.Problems[0].Count != 3866 {
		t.Errorf("problems = %+v", rep.Problems)
	}
	if rep.Status != "🔴" {
		t.Errorf("status = %q, want 🔴", rep.Status)
	}
}

func TestFormatEmptyTelemetryStaysTotal(t *testing.T) {
	d := vitals.New()
	text := d.Format(nil, vitals.Business{}, runDate)

	if !strings.Contains(text, "P95: N/A") {
		t.Errorf("expected all-N/A metrics line:\n%s", text)
	}
	if !strings.HasPrefix(text, "🟡") {
		t.Errorf("unknown summary should read as warning:\n%s", text)
	}
	if strings.Contains(text, "Business Metrics:") {
		t.Errorf("unavailable business metrics must omit the line:\n%s", text)
	}
}

func TestRenderStructured(t *testing.T) {
	d := vitals.New(vitals.WithTitle("Player Health Status"))
	text := d.Format(telemetry(), vitals.Business{}, runDate)

	msg := d.Render(text, runDate)
	if msg.Degraded {
		t.Fatal("healthy report must render structured")
	}
	if len(msg.Blocks) == 0 || msg.Blocks[0].Type != "header" {
		t.Fatalf("expected header block first, got %+v", msg.Blocks)
	}
	if !strings.Contains(msg.Blocks[0].Text, "Player Health Status") {
		t.Errorf("header = %q", msg.Blocks[0].Text)
	}
}

func TestRenderUnparsableFallsBack(t *testing.T) {
	d := vitals.New()
	msg := d.Render("completely unrelated text", runDate)

	if !msg.Degraded {
		t.Fatal("unparsable text must render degraded")
	}
	if len(msg.Blocks) != 3 {
		t.Fatalf("fallback frame should have 3 blocks, got %d", len(msg.Blocks))
	}
	if !strings.Contains(msg.Blocks[1].Text, "completely unrelated text") {
		t.Error("raw text must pass through verbatim")
	}
}

func TestParseUnparsable(t *testing.T) {
	_, err := vitals.Parse("nothing numeric here")
	if !vitals.IsUnparsable(err) {
		t.Fatalf("expected unparsable sentinel, got %v", err)
	}
}

func TestResolveWindowWeekdays(t *testing.T) {
	// 2026-02-02 is a Monday.
	for day := 2; day <= 6; day++ {
		date := time.Date(2026, 2, day, 8, 0, 0, 0, time.UTC)
		w := vitals.ResolveWindow(date)
		want := 1
		if date.Weekday() == time.Monday {
			want = 3
		}
		if w.Days != want {
			t.Errorf("%s: days = %d, want %d", date.Weekday(), w.Days, want)
		}
		if !w.End.After(w.Start) {
			t.Errorf("%s: end must follow start", date.Weekday())
		}
	}
}
