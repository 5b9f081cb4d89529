// Package enrich runs a document through ordered stages. Steps inside a stage
// run in parallel; stages run one after another.
package enrich

import (
	"context"
)

// Step mutates an item in place. Steps of one stage run concurrently on the
// same item and must not write the same fields. A returned error is logged
// and does not stop the pipeline.
type Step[T any] func(ctx context.Context, item *T) error

// Stage is a named group of steps that may run in parallel.
type Stage[T any] struct {
	name  string
	steps []Step[T]
}

// NewStage constructs a Stage from the provided steps.
func NewStage[T any](name string, steps ...Step[T]) Stage[T] {
	return Stage[T]{name: name, steps: steps}
}

// Name returns the stage name used in log lines.
func (s Stage[T]) Name() string {
	return s.name
}
