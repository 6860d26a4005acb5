// Package multi fans a run record out to several delivery targets.
package multi

import (
	"context"
	"errors"

	"github.com/crimson-sun/vitals/internal/output"
)

// Multi fans records out to multiple output.Output implementations.
// Each Deliver call hands the record to every wrapped output sequentially.
// If one output fails, the remaining outputs still receive the record.
type Multi struct {
	outputs []output.Output
}

// New creates a Multi that fans out to the given outputs.
func New(outputs ...output.Output) *Multi {
	return &Multi{outputs: outputs}
}

// Deliver hands the record to every wrapped output. Errors are collected
// but do not prevent delivery to subsequent outputs.
func (m *Multi) Deliver(ctx context.Context, rec output.Record) error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Deliver(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close calls Close on every wrapped output, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
