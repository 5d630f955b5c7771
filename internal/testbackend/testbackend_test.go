package testbackend_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-ir/strata/internal/ir"
	"github.com/strata-ir/strata/internal/testbackend"
)

type fixedBackend struct {
	name   string
	values []float64
	err    error
}

func (f *fixedBackend) Name() string { return f.name }
func (f *fixedBackend) Execute(ctx context.Context, k *ir.Kernel) ([]float64, error) {
	return f.values, f.err
}

func TestHarnessCompareAgreementWithinTolerance(t *testing.T) {
	h := &testbackend.Harness{
		Reference: &fixedBackend{name: "ref", values: []float64{1, 2, 3}},
		Candidate: &fixedBackend{name: "cand", values: []float64{1, 2.0000001, 3}},
		Tolerance: 1e-3,
	}
	report, err := h.Compare(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, report.Mismatch)
	assert.Less(t, report.MaxAbsDiff, 1e-3)
}

func TestHarnessCompareMismatchBeyondTolerance(t *testing.T) {
	h := &testbackend.Harness{
		Reference: &fixedBackend{name: "ref", values: []float64{1, 2, 3}},
		Candidate: &fixedBackend{name: "cand", values: []float64{1, 2, 9}},
		Tolerance: 1e-6,
	}
	report, err := h.Compare(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, report.Mismatch)
	assert.Equal(t, 6.0, report.MaxAbsDiff)
}

func TestHarnessCompareLengthMismatchIsAlwaysAMismatch(t *testing.T) {
	h := &testbackend.Harness{
		Reference: &fixedBackend{name: "ref", values: []float64{1, 2, 3}},
		Candidate: &fixedBackend{name: "cand", values: []float64{1, 2}},
		Tolerance: 1e9,
	}
	report, err := h.Compare(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, report.Mismatch)
	assert.True(t, math.IsInf(report.MaxAbsDiff, 1))
}

func TestHarnessComparePropagatesBackendError(t *testing.T) {
	h := &testbackend.Harness{
		Reference: &fixedBackend{name: "ref", values: nil, err: errors.New("boom")},
		Candidate: &fixedBackend{name: "cand", values: []float64{1}},
		Tolerance: 1,
	}
	_, err := h.Compare(context.Background(), nil)
	assert.Error(t, err)
}
