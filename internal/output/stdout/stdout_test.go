package stdout

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/crimson-sun/vitals/internal/output"
	"github.com/crimson-sun/vitals/internal/render"
)

func testRecord() output.Record {
	return output.Record{
		RunAt:  time.Date(2026, 2, 5, 8, 0, 0, 0, time.UTC),
		Report: "🔴 Player Health Status - February 05, 2026\n\nMetrics: 6,417 exceptions | 0 requests",
		Message: render.Message{
			Fallback: "🔴 Player Health Status - February 05, 2026",
			Blocks: []render.Block{
				{Type: render.BlockHeader, Text: "📊 Player Health Status"},
				{Type: render.BlockDivider},
			},
		},
	}
}

// captureStdout redirects os.Stdout to capture output.
func captureStdout(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestDeliverCanonicalText(t *testing.T) {
	result := captureStdout(func() {
		out := New(false, false)
		out.Deliver(context.Background(), testRecord())
	})

	if !strings.HasPrefix(result, "🔴 Player Health Status - February 05, 2026") {
		t.Fatalf("unexpected output: %q", result)
	}
	if !strings.Contains(result, "6,417 exceptions") {
		t.Fatalf("metrics line missing: %q", result)
	}
}

func TestDeliverBlocksJSON(t *testing.T) {
	result := captureStdout(func() {
		out := New(true, false)
		out.Deliver(context.Background(), testRecord())
	})

	lines := strings.Split(strings.TrimSpace(result), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	var msg render.Message
	if err := json.Unmarshal([]byte(lines[0]), &msg); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(msg.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(msg.Blocks))
	}
	if msg.Blocks[0].Type != render.BlockHeader {
		t.Errorf("first block = %q, want header", msg.Blocks[0].Type)
	}
}

func TestDeliverBlocksPretty(t *testing.T) {
	result := captureStdout(func() {
		out := New(true, true)
		out.Deliver(context.Background(), testRecord())
	})

	if !strings.Contains(result, "  ") {
		t.Fatal("expected indented output for pretty mode")
	}
	lines := strings.Split(strings.TrimSpace(result), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected multi-line pretty output, got %d lines", len(lines))
	}
}
