package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent simulators side by side, one goroutine each.
// Simulators must not share anchors that are mutated during the run.
type Ensemble struct {
	sims []*Simulator
}

func NewEnsemble(sims ...*Simulator) *Ensemble {
	return &Ensemble{sims: sims}
}

func (e *Ensemble) Len() int { return len(e.sims) }

// Run advances every simulator frames times. Results are returned in the
// order the simulators were given; the first error cancels the rest.
func (e *Ensemble) Run(ctx context.Context, dt float64, frames int) ([]*Result, error) {
	results := make([]*Result, len(e.sims))

	g, ctx := errgroup.WithContext(ctx)
	for i, s := range e.sims {
		g.Go(func() error {
			res, err := s.Run(ctx, dt, frames, nil)
			results[i] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
