package linalg

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Polynomial is an odd-symmetric function of theta, represented in
// compressed form as P(theta) = theta * (1 + Q(theta^2)) where Q is an
// ordinary polynomial in theta^2 with coefficients Coeffs (Coeffs[0] is
// the constant term of Q, Coeffs[1] its theta^2 term, and so on). This
// representation guarantees P(0)=0 and P(-theta)=-P(theta) structurally,
// without needing to constrain a fit to pass through the origin.
type Polynomial struct {
	Coeffs []float64
}

// Calc evaluates P(theta) using Horner's method on Q(theta^2).
func (p Polynomial) Calc(theta float64) float64 {
	t2 := theta * theta
	q := 0.0
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		q = q*t2 + p.Coeffs[i]
	}
	return theta * (1 + q)
}

// MinSquares fits a Polynomial of the given order (number of Q
// coefficients) to the sample points (xs[i], ys[i]) by solving the
// normal equations for the least-squares problem
//
//	ys[i] = xs[i] * (1 + sum_k Coeffs[k] * xs[i]^(2k))
//
// i.e. (ys[i]/xs[i] - 1) = sum_k Coeffs[k] * xs[i]^(2k).
//
// Samples with |xs[i]| too small to divide safely are skipped.
func MinSquares(xs, ys []float64, order int) (Polynomial, error) {
	if len(xs) != len(ys) {
		return Polynomial{}, fmt.Errorf("linalg.MinSquares: xs/ys length mismatch: %d vs %d", len(xs), len(ys))
	}
	if order < 1 {
		return Polynomial{}, fmt.Errorf("linalg.MinSquares: order must be >= 1, got %d", order)
	}

	var rows [][]float64
	var targets []float64
	for i := range xs {
		x := xs[i]
		if x < 1e-9 && x > -1e-9 {
			continue
		}
		row := make([]float64, order)
		x2 := x * x
		pow := 1.0
		for k := 0; k < order; k++ {
			row[k] = pow
			pow *= x2
		}
		rows = append(rows, row)
		targets = append(targets, ys[i]/x-1)
	}
	if len(rows) < order {
		return Polynomial{}, fmt.Errorf("linalg.MinSquares: need at least %d usable samples, got %d", order, len(rows))
	}

	// Normal equations: (A^T A) c = A^T t
	ata := mat.NewDense(order, order, nil)
	atb := make([]float64, order)
	for a := 0; a < order; a++ {
		for b := 0; b < order; b++ {
			sum := 0.0
			for r := range rows {
				sum += rows[r][a] * rows[r][b]
			}
			ata.Set(a, b, sum)
		}
		sum := 0.0
		for r := range rows {
			sum += rows[r][a] * targets[r]
		}
		atb[a] = sum
	}

	coeffs, err := Solve(ata, atb)
	if err != nil {
		return Polynomial{}, fmt.Errorf("linalg.MinSquares: %w", err)
	}
	return Polynomial{Coeffs: coeffs}, nil
}

// FilterWSYaws removes outliers from a weighted sample of (worldYaw,
// sensorYaw) pairs using a sliding median window: samples are sorted by
// sensorYaw, then for every window of 2*halfWidth+1 consecutive points
// the highest and lowest sensorYaw are dropped and the remaining
// 2*halfWidth-1 are averaged into a single filtered point. This removes
// the same kind of measurement glitches the original calibration data
// is prone to (misidentified bar edges) without needing a fixed
// threshold.
func FilterWSYaws(worldYaws, sensorYaws []float64, halfWidth int) (fw, fs []float64) {
	n := len(worldYaws)
	if n != len(sensorYaws) || n == 0 || halfWidth < 1 {
		return nil, nil
	}

	type pair struct{ w, s float64 }
	pairs := make([]pair, n)
	for i := range worldYaws {
		pairs[i] = pair{worldYaws[i], sensorYaws[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].s < pairs[j].s })

	window := 2*halfWidth + 1
	if n < window {
		for _, p := range pairs {
			fw = append(fw, p.w)
			fs = append(fs, p.s)
		}
		return fw, fs
	}

	for start := 0; start+window <= n; start++ {
		chunk := pairs[start : start+window]
		sorted := make([]pair, window)
		copy(sorted, chunk)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].s < sorted[j].s })
		trimmed := sorted[1 : window-1]

		var wSum, sSum float64
		for _, p := range trimmed {
			wSum += p.w
			sSum += p.s
		}
		count := float64(len(trimmed))
		fw = append(fw, wSum/count)
		fs = append(fs, sSum/count)
	}
	return fw, fs
}
