package linalg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSolveIdentitySystem(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	x, err := Solve(a, []float64{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 3, x[0], 1e-12)
	assert.InDelta(t, 4, x[1], 1e-12)
}

func TestSolveKnownSystem(t *testing.T) {
	// [2 1][x]   [5]
	// [1 3][y] = [10]
	a := mat.NewDense(2, 2, []float64{2, 1, 1, 3})
	x, err := Solve(a, []float64{5, 10})
	require.NoError(t, err)
	assert.InDelta(t, 1, x[0], 1e-9)
	assert.InDelta(t, 3, x[1], 1e-9)
}

func TestSolveSingularReturnsErrSingular(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 2, 4})
	_, err := Solve(a, []float64{1, 2})
	assert.ErrorIs(t, err, ErrSingular)
}

func TestSolveRejectsMismatchedDims(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	_, err := Solve(a, []float64{1, 2, 3})
	assert.Error(t, err)
}
