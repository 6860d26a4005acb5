package insights

import (
	"strings"
	"testing"
	"time"

	"github.com/crimson-sun/vitals/internal/model"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

func summaryRecord() model.Record {
	return model.Record{
		DataType:           model.KindSummary,
		TotalRequests:      i64(1200),
		FailedRequests:     i64(14),
		TotalExceptions:    i64(6417),
		TotalDependencies:  i64(2313802),
		FailedDependencies: i64(202),
		AvgResponseTime:    f64(310.5),
		P95ResponseTime:    f64(1042),
		SuccessRate:        f64(98.83),
	}
}

func groupRecord(id string, count int64, msg string) model.Record {
	return model.Record{
		DataType:      model.KindExceptionGroup,
		ProblemID:     id,
		Type:          "System.NullReferenceException",
		Operation:     "GET /api/player",
		Count:         i64(count),
		SampleMessage: msg,
	}
}

func TestBuild_SummaryPassthrough(t *testing.T) {
	agg := Build([]model.Record{summaryRecord()}, 5)

	if !agg.Summary.Available {
		t.Fatal("expected available summary")
	}
	if agg.Degraded {
		t.Fatal("expected non-degraded aggregate")
	}
	if agg.Summary.TotalExceptions != 6417 {
		t.Errorf("TotalExceptions = %d, want 6417", agg.Summary.TotalExceptions)
	}
	if agg.Summary.P95ResponseTime != 1042 {
		t.Errorf("P95ResponseTime = %v, want 1042", agg.Summary.P95ResponseTime)
	}
	if agg.Summary.FailedDependencies != 202 {
		t.Errorf("FailedDependencies = %d, want 202", agg.Summary.FailedDependencies)
	}
}

func TestBuild_MissingSummaryDegrades(t *testing.T) {
	agg := Build([]model.Record{groupRecord("p1", 10, "msg")}, 5)

	if agg.Summary.Available {
		t.Fatal("expected unavailable summary")
	}
	if !agg.Degraded {
		t.Fatal("expected degraded aggregate")
	}
}

func TestBuild_MalformedSummaryDegrades(t *testing.T) {
	rec := summaryRecord()
	rec.TotalExceptions = nil // null column from the backend

	agg := Build([]model.Record{rec}, 5)
	if agg.Summary.Available {
		t.Fatal("summary with null core counter must be unavailable")
	}
	if agg.Summary.TotalRequests != 0 {
		t.Errorf("unavailable summary must not carry partial counters, got requests=%d", agg.Summary.TotalRequests)
	}
}

func TestBuild_ProblemRanking(t *testing.T) {
	records := []model.Record{
		summaryRecord(),
		groupRecord("p1", 316, "a"),
		groupRecord("p2", 3866, "b"),
		groupRecord("p3", 1827, "c"),
		groupRecord("p4", 316, "d"), // tie with p1, arrives later
		groupRecord("p5", 78, "e"),
		groupRecord("p6", 12, "f"),
	}

	agg := Build(records, 5)
	if len(agg.Problems) != 5 {
		t.Fatalf("expected 5 problems, got %d", len(agg.Problems))
	}

	wantOrder := []string{"p2", "p3", "p1", "p4", "p5"}
	for i, want := range wantOrder {
		if agg.Problems[i].ProblemID != want {
			t.Errorf("rank %d: got %s, want %s", i+1, agg.Problems[i].ProblemID, want)
		}
		if agg.Problems[i].Rank != i+1 {
			t.Errorf("rank field = %d, want %d", agg.Problems[i].Rank, i+1)
		}
	}
}

func TestBuild_FewerThanTopN(t *testing.T) {
	records := []model.Record{
		summaryRecord(),
		groupRecord("p1", 100, "a"),
		groupRecord("p2", 50, "b"),
	}

	agg := Build(records, 5)
	if len(agg.Problems) != 2 {
		t.Fatalf("expected 2 problems, got %d — missing slots must not be fabricated", len(agg.Problems))
	}
}

func TestBuild_Timeline(t *testing.T) {
	records := []model.Record{
		{DataType: model.KindTimeline, Timestamp: "2026-02-05T09:00:00Z", Count: i64(40)},
		{DataType: model.KindTimeline, Timestamp: "2026-02-05T08:00:00Z", Count: i64(12)},
		{DataType: model.KindTimeline, Timestamp: "not-a-timestamp", Count: i64(99)},
	}

	agg := Build(records, 5)
	if len(agg.Timeline) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(agg.Timeline))
	}
	want := time.Date(2026, 2, 5, 8, 0, 0, 0, time.UTC)
	if !agg.Timeline[0].Hour.Equal(want) {
		t.Errorf("timeline not sorted ascending: first bucket %v", agg.Timeline[0].Hour)
	}
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"System.NullReferenceException - Object reference not set", "Object reference not set"},
		{"Timeout: connection to db-primary lost", "connection to db-primary lost"},
		{"plain message", "plain message"},
		{"with\x00control\x1fchars", "withcontrolchars"},
		{"", "(no sample message)"},
	}
	for _, tc := range cases {
		if got := Describe(tc.in); got != tc.want {
			t.Errorf("Describe(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDescribe_Truncates(t *testing.T) {
	long := strings.Repeat("x", 200)
	got := Describe(long)
	if len(got) != 80 {
		t.Fatalf("len = %d, want 80", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", got[len(got)-5:])
	}
}
