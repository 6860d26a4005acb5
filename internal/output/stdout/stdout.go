// Package stdout writes delivered reports to standard output, either as
// canonical report text or as rendered blocks JSON.
package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/crimson-sun/vitals/internal/output"
)

// Output writes run records to stdout.
type Output struct {
	enc    *json.Encoder
	blocks bool
}

// New creates a stdout output. With blocks set, each record is emitted as
// the rendered message's JSON; otherwise the canonical report text is
// printed verbatim. pretty indents the JSON form.
func New(blocks, pretty bool) *Output {
	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &Output{enc: enc, blocks: blocks}
}

func (o *Output) Deliver(_ context.Context, rec output.Record) error {
	if o.blocks {
		if err := o.enc.Encode(rec.Message); err != nil {
			return fmt.Errorf("stdout output: %w", err)
		}
		return nil
	}
	if _, err := fmt.Fprintln(os.Stdout, rec.Report); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
