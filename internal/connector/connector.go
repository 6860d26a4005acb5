package connector

import (
	"context"
	"errors"
	"time"

	"github.com/crimson-sun/vitals/internal/model"
	"github.com/crimson-sun/vitals/internal/window"
)

// ErrBadShape signals a structurally unusable telemetry response: not a
// record list at all. This is the one connector condition that must fail
// the run, since no report can be derived from it.
var ErrBadShape = errors.New("connector: response shape not recognized")

// Connector defines the interface all telemetry source connectors implement.
type Connector interface {
	// Fetch retrieves the raw metric records for the given window.
	Fetch(ctx context.Context, cfg Config, win window.Window) (Payload, error)
}

// Config holds provider-specific connection settings.
type Config struct {
	Provider string
	APIKey   string
	Endpoint string
	Extra    map[string]string
}

// Payload is one fetched record set plus how long the fetch took; the
// elapsed time surfaces in the rendered footer.
type Payload struct {
	Records []model.Record
	Elapsed time.Duration
}
