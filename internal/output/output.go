// Package output defines the delivery interface shared by all report
// destinations and the run record they receive.
package output

import (
	"context"
	"time"

	"github.com/crimson-sun/vitals/internal/render"
)

// Record is one pipeline run's deliverable: the canonical report text plus
// the rendered block message. Degraded mirrors the message's degraded flag
// so archive consumers can filter without re-parsing.
type Record struct {
	RunAt    time.Time      `json:"run_at"`
	Degraded bool           `json:"degraded,omitempty"`
	Report   string         `json:"report"`
	Message  render.Message `json:"message"`
}

// Output delivers a run record to a destination. Implementations must be
// safe to Close after a failed Deliver.
type Output interface {
	Deliver(ctx context.Context, rec Record) error
	Close() error
}
