package locus

import "github.com/itohio/camcal/x/geom"

// gradientDescentDirection estimates, via central finite differences
// of step size delta along each axis, the direction of steepest
// decrease of f at pt.
func gradientDescentDirection(pt geom.Point3D, f func(geom.Point3D) float64, delta float64) geom.Point3D {
	var grad geom.Point3D
	for axis := 0; axis < 3; axis++ {
		var e geom.Point3D
		e[axis] = delta
		plus := f(pt.Add(e))
		minus := f(pt.Sub(e))
		grad[axis] = (plus - minus) / (2 * delta)
	}
	// Move in the direction that decreases f.
	return grad.Neg()
}

// lineSearch repeatedly tries pt + dp*factor for factor shrinking by
// scale on each of the given number of steps, keeping the best
// (lowest-error) candidate found. It reports whether any improvement
// over f(pt) was found.
func lineSearch(pt, dp geom.Point3D, f func(geom.Point3D) float64, steps int, scale float64) (moved bool, bestErr float64, bestPt geom.Point3D) {
	bestErr = f(pt)
	bestPt = pt
	factor := 1.0
	for i := 0; i < steps; i++ {
		candidate := pt.Add(dp.Scale(factor))
		e := f(candidate)
		if e < bestErr {
			bestErr = e
			bestPt = candidate
			moved = true
		}
		factor *= scale
	}
	return moved, bestErr, bestPt
}
