// Package testbackend implements a composite testing backend: rather
// than a process-wide backend global, every real entry point takes an
// explicit backend parameter, and test scopes construct one of these to
// fan a single compute request out to a reference backend and a
// candidate backend concurrently, then assert the two agree within
// tolerance.
//
// This is deliberately outside the core IR: it depends on ir read-only
// and exists purely to give tests something concrete to drive. The
// worker/job/result shape is a goroutine pool over a fixed job queue
// with context cancellation, narrowed down to exactly the two fixed
// jobs a reference/candidate comparison needs.
package testbackend

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/strata-ir/strata/internal/ir"
)

// Backend is the minimal interface a real backend contract needs to
// satisfy to participate in a comparison: given a kernel, produce its
// flattened output values in Kernel.Targets iteration order. Real
// scheduling, storage allocation, and code generation are out of scope
// for this library; Backend exists only so tests can plug in two
// independent (and possibly trivial) interpreters.
type Backend interface {
	Name() string
	Execute(ctx context.Context, k *ir.Kernel) ([]float64, error)
}

// job is one backend invocation dispatched to its own goroutine.
type job struct {
	backend Backend
}

// result is what a job produces.
type result struct {
	name   string
	values []float64
	err    error
}

// Harness fans a kernel execution out to a reference and a candidate
// backend and compares their results.
type Harness struct {
	Reference Backend
	Candidate Backend
	Tolerance float64
}

// Report is the outcome of one comparison.
type Report struct {
	ReferenceValues []float64
	CandidateValues []float64
	MaxAbsDiff      float64
	Mismatch        bool
}

// Compare runs Reference and Candidate concurrently against k, waits for
// both (or for ctx to be cancelled), and reports whether their results
// agree within h.Tolerance element-wise. A length mismatch is always
// reported as a Mismatch with MaxAbsDiff set to +Inf.
func (h *Harness) Compare(ctx context.Context, k *ir.Kernel) (Report, error) {
	jobs := []job{{backend: h.Reference}, {backend: h.Candidate}}
	results := make(chan result, len(jobs))

	var wg sync.WaitGroup
	for _, j := range jobs {
		j := j
		wg.Add(1)
		go func() {
			defer wg.Done()
			values, err := j.backend.Execute(ctx, k)
			select {
			case results <- result{name: j.backend.Name(), values: values, err: err}:
			case <-ctx.Done():
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	byName := make(map[string]result, 2)
	for r := range results {
		if r.err != nil {
			return Report{}, fmt.Errorf("backend %q: %w", r.name, r.err)
		}
		byName[r.name] = r
	}
	if ctx.Err() != nil {
		return Report{}, ctx.Err()
	}

	ref := byName[h.Reference.Name()]
	cand := byName[h.Candidate.Name()]

	if len(ref.values) != len(cand.values) {
		return Report{
			ReferenceValues: ref.values,
			CandidateValues: cand.values,
			MaxAbsDiff:      math.Inf(1),
			Mismatch:        true,
		}, nil
	}

	maxDiff := 0.0
	for i := range ref.values {
		d := math.Abs(ref.values[i] - cand.values[i])
		if d > maxDiff {
			maxDiff = d
		}
	}

	return Report{
		ReferenceValues: ref.values,
		CandidateValues: cand.values,
		MaxAbsDiff:      maxDiff,
		Mismatch:        maxDiff > h.Tolerance,
	}, nil
}
