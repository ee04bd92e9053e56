package dynamo

import (
	"context"
	"errors"
	"sync"
)

// Ensemble runs independent simulators concurrently, one goroutine each.
// Every simulator must own its engine; engines are never shared.
type Ensemble struct {
	sims []*Simulator
}

func NewEnsemble(sims ...*Simulator) *Ensemble {
	return &Ensemble{sims: sims}
}

func (e *Ensemble) Len() int { return len(e.sims) }

// Run waits for every member to finish. results[i] belongs to the i-th
// simulator and is set even when that member failed; the returned error
// joins every member's error.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, len(e.sims))
	errs := make([]error, len(e.sims))

	var wg sync.WaitGroup
	for i, s := range e.sims {
		wg.Add(1)
		go func(idx int, s *Simulator) {
			defer wg.Done()
			results[idx], errs[idx] = s.Run(ctx)
		}(i, s)
	}

	wg.Wait()

	return results, errors.Join(errs...)
}
