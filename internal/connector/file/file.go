// Package file replays an archived telemetry fetch artifact, for offline
// debugging and deterministic reruns.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/crimson-sun/vitals/internal/connector"
	"github.com/crimson-sun/vitals/internal/model"
	"github.com/crimson-sun/vitals/internal/window"
)

func init() {
	connector.Register("file", func() connector.Connector {
		return &Connector{}
	})
}

// Connector implements connector.Connector over a fetch artifact on disk.
type Connector struct{}

// artifact is the archived fetch envelope: the same shape the live
// connector's response is persisted in by the file output.
type artifact struct {
	Success bool               `json:"success"`
	Data    []model.Record     `json:"data"`
	Error   string             `json:"error,omitempty"`
	Timing  map[string]float64 `json:"timing,omitempty"`
}

// Fetch reads the artifact named by the "path" Extra key. The window is
// ignored: a replay reproduces whatever window the archived run used.
func (c *Connector) Fetch(_ context.Context, cfg connector.Config, _ window.Window) (connector.Payload, error) {
	path := cfg.Extra["path"]
	if path == "" {
		return connector.Payload{}, fmt.Errorf("file connector: missing required config key \"path\" in Extra")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return connector.Payload{}, fmt.Errorf("file connector: %w", err)
	}

	var art artifact
	if err := json.Unmarshal(raw, &art); err != nil {
		// Distinguish "not our envelope at all" from a plain record list.
		var records []model.Record
		if errList := json.Unmarshal(raw, &records); errList == nil {
			return connector.Payload{Records: records}, nil
		}
		return connector.Payload{}, fmt.Errorf("file connector: %s: %w", path, connector.ErrBadShape)
	}

	if !art.Success {
		if art.Error != "" {
			return connector.Payload{}, fmt.Errorf("file connector: archived fetch failed: %s", art.Error)
		}
		return connector.Payload{}, errors.New("file connector: archived fetch failed")
	}

	elapsed := time.Duration(art.Timing["app_insights_seconds"] * float64(time.Second))
	return connector.Payload{Records: art.Data, Elapsed: elapsed}, nil
}
