package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/crimson-sun/vitals/internal/output"
	"github.com/crimson-sun/vitals/internal/render"
)

func testRecord(degraded bool) output.Record {
	return output.Record{
		RunAt:    time.Date(2026, 2, 5, 8, 0, 0, 0, time.UTC),
		Degraded: degraded,
		Report:   "🟢 Player Health Status - February 05, 2026",
		Message: render.Message{
			Fallback: "🟢 Player Health Status - February 05, 2026",
			Blocks: []render.Block{
				{Type: render.BlockHeader, Text: "📊 Player Health Status"},
			},
			Degraded: degraded,
		},
	}
}

func TestDeliverProducesValidNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	out, err := New(path)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := out.Deliver(context.Background(), testRecord(false)); err != nil {
			t.Fatalf("Deliver error: %v", err)
		}
	}
	out.Close()

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}
	for i, line := range lines {
		var rec output.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Errorf("line %d: invalid JSON: %v", i, err)
		}
		if !strings.Contains(rec.Report, "Player Health Status") {
			t.Errorf("line %d: report = %q", i, rec.Report)
		}
	}
}

func TestDegradedFlagSurvivesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	out, err := New(path)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	out.Deliver(context.Background(), testRecord(true))
	out.Close()

	data, _ := os.ReadFile(path)
	var rec output.Record
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &rec); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !rec.Degraded {
		t.Error("degraded flag lost in archive")
	}
}

func TestRotationTriggersAtMaxSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs.jsonl")

	// Each record line is well over 100 bytes, so rotation after every line.
	out, err := New(path, WithMaxSize(100))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := out.Deliver(context.Background(), testRecord(false)); err != nil {
			t.Fatalf("Deliver error: %v", err)
		}
	}
	out.Close()

	if _, err := os.Stat(path + ".1"); os.IsNotExist(err) {
		t.Error("expected rotated file .1 to exist")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("expected live file to exist after rotation")
	}
}

func TestNoRotationWhenDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs.jsonl")

	out, err := New(path)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	for i := 0; i < 50; i++ {
		out.Deliver(context.Background(), testRecord(false))
	}
	out.Close()

	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Error("rotation should be disabled by default")
	}
}

func TestAppendAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")

	out, err := New(path)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	out.Deliver(context.Background(), testRecord(false))
	out.Close()

	out, err = New(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	out.Deliver(context.Background(), testRecord(false))
	out.Close()

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines after reopen, want 2", len(lines))
	}
}
