// Package linalg wraps gonum's dense linear algebra with the handful
// of operations the calibration and location solvers need: a safe
// square solve and a compressed odd-symmetric polynomial fit/eval.
package linalg

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrSingular is returned by Solve when the system matrix is singular
// (or too close to singular for a stable solve), e.g. because the input
// rays were parallel or the fit points were collinear.
var ErrSingular = errors.New("linalg: singular or near-singular system")

// Solve solves A x = b for x, where A is n x n and b has length n.
func Solve(a *mat.Dense, b []float64) ([]float64, error) {
	n, m := a.Dims()
	if n != m {
		return nil, fmt.Errorf("linalg.Solve: matrix not square: %dx%d", n, m)
	}
	if len(b) != n {
		return nil, fmt.Errorf("linalg.Solve: rhs length %d does not match dimension %d", len(b), n)
	}
	bv := mat.NewVecDense(n, b)
	var xv mat.VecDense
	if err := xv.SolveVec(a, bv); err != nil {
		return nil, fmt.Errorf("linalg.Solve: %w: %w", ErrSingular, err)
	}
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = xv.AtVec(i)
	}
	return x, nil
}
