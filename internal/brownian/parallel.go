package brownian

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// Ensemble runs independent replicas of one simulation.
type Ensemble struct {
	base    *Simulator
	numRuns int

	// MetricFactory, when set, builds a fresh metric set for each replica,
	// keeping replicas free of shared state.
	MetricFactory func() []Metric
}

func NewEnsemble(s *Simulator, numRuns int) *Ensemble {
	return &Ensemble{base: s, numRuns: numRuns}
}

// Run executes all replicas concurrently and collects their results.
// Replica errors are joined, so one failed replica fails the ensemble.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	wg.Add(e.numRuns)
	for i := 0; i < e.numRuns; i++ {
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = e.runReplica(ctx, idx, cfg)
		}(i)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}

// runReplica runs replica idx on a Simulator and metric set of its own.
// SimID is offset by idx, so DeriveSeed hands every replica a distinct
// random stream.
func (e *Ensemble) runReplica(ctx context.Context, idx int, cfg Config) (*Result, error) {
	cfg.SimID += idx

	s := New(e.base.pop, e.base.box, e.base.psf, e.base.boundary)
	s.SetLogger(e.base.logger)
	if e.MetricFactory != nil {
		for _, m := range e.MetricFactory() {
			s.AddMetric(m)
		}
	}
	return s.Run(ctx, cfg)
}

// ParallelFor runs fn over [0, n) on all CPUs. Workers claim chunks of
// minChunk indices until the range is exhausted; fn must be safe for
// concurrent calls on disjoint ranges.
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if minChunk < 1 {
		minChunk = 1
	}

	workers := runtime.NumCPU()
	if limit := (n + minChunk - 1) / minChunk; workers > limit {
		workers = limit
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				end := int(next.Add(int64(minChunk)))
				start := end - minChunk
				if start >= n {
					return
				}
				if end > n {
					end = n
				}
				fn(start, end)
			}
		}()
	}
	wg.Wait()
}
