package sim

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/san-kum/dynctl/internal/dynamo"
)

// Ensemble runs independent rollouts of a base simulator in parallel.
// Each run gets its own clone of the base simulator, so controllers never
// share state across goroutines.
type Ensemble struct {
	base    *Simulator
	numRuns int
}

func NewEnsemble(s *Simulator, numRuns int) *Ensemble {
	return &Ensemble{base: s, numRuns: numRuns}
}

// Prepare customizes the cloned controller of a run before it starts.
type Prepare func(run int, ctrl Controller) error

func (e *Ensemble) Run(ctx context.Context, x0 dynamo.State, cfg Config, prepare Prepare) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	sims := make([]*Simulator, e.numRuns)
	for i := range sims {
		sims[i] = e.base.Clone()
	}

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			s := sims[idx]
			if prepare != nil {
				if err := prepare(idx, s.controller); err != nil {
					errs[idx] = fmt.Errorf("run %d: %w", idx, err)
					return
				}
			}

			results[idx], errs[idx] = s.Run(ctx, x0, cfg)
		}(i)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			e.base.logger.Error("ensemble run failed", zap.Int("run", i), zap.Error(err))
			return nil, err
		}
	}

	return results, nil
}
