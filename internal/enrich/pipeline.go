package enrich

import (
	"context"
	"log"
	"sync"
)

// Pipeline applies its stages to each item read from a channel.
type Pipeline[T any] struct {
	stages []Stage[T]
}

// NewPipeline constructs a Pipeline from the provided stages. Stages will be
// applied to each item in order.
func NewPipeline[T any](stages ...Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{stages: stages}
}

// Apply runs every stage on a single item, waiting for all steps of a stage
// before starting the next. It returns the number of failed steps.
func (p *Pipeline[T]) Apply(ctx context.Context, item *T) int {
	failed := 0
	for _, stage := range p.stages {
		var (
			wg sync.WaitGroup
			mu sync.Mutex
		)
		for _, step := range stage.steps {
			wg.Add(1)
			go func(step Step[T]) {
				defer wg.Done()
				if err := step(ctx, item); err != nil {
					log.Printf("Stage %q step failed: %v", stage.name, err)
					mu.Lock()
					failed++
					mu.Unlock()
				}
			}(step)
		}
		wg.Wait()
	}
	return failed
}

// Process consumes items until in is closed or ctx is done and returns how
// many items went through every stage.
func (p *Pipeline[T]) Process(ctx context.Context, in <-chan *T) int {
	processed := 0
	for {
		select {
		case <-ctx.Done():
			return processed
		case item, ok := <-in:
			if !ok {
				return processed
			}
			p.Apply(ctx, item)
			processed++
		}
	}
}
