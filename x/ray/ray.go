// Package ray implements weighted closest-point triangulation of a set
// of rays, used both as a standalone utility (intersecting sightings of
// the same model point from several located cameras) and internally by
// the location solver's refinement step.
package ray

import (
	"errors"
	"fmt"

	"github.com/itohio/camcal/x/geom"
	"gonum.org/v1/gonum/mat"
)

// ErrTooFewRays is returned when fewer than two rays are given; a
// single ray has no unique closest point.
var ErrTooFewRays = errors.New("ray: need at least two rays to triangulate")

// ErrDegenerate is returned when the rays are (near-)parallel or
// otherwise share no well-defined closest point, i.e. the normal
// equations matrix is singular.
var ErrDegenerate = errors.New("ray: rays are degenerate (parallel or coincident)")

// WeightFunc assigns a weight to a ray given its index; the default
// weight (used by ClosestPoint when weightFn is nil) is 1/TanError^2,
// falling back to 1 when TanError is non-positive.
type WeightFunc func(i int, r geom.Ray) float64

// DefaultWeight is the inverse-variance weighting used when no
// WeightFunc is supplied.
func DefaultWeight(_ int, r geom.Ray) float64 {
	if r.TanError <= 0 {
		return 1
	}
	return 1 / (r.TanError * r.TanError)
}

// ClosestPoint finds the point minimizing the weighted sum of squared
// perpendicular distances to every ray, by solving the normal-equations
// system M p = b where
//
//	M = sum_i w_i * (I - d_i d_i^T)
//	b = sum_i w_i * (I - d_i d_i^T) * s_i
//
// for each ray's start s_i and unit direction d_i.
func ClosestPoint(rays []geom.Ray, weightFn WeightFunc) (geom.Point3D, error) {
	if len(rays) < 2 {
		return geom.Point3D{}, ErrTooFewRays
	}
	if weightFn == nil {
		weightFn = DefaultWeight
	}

	var m [3][3]float64
	var b [3]float64

	for i, r := range rays {
		w := weightFn(i, r)
		d := r.Direction
		s := r.Start
		// P = I - d d^T
		var p [3][3]float64
		for a := 0; a < 3; a++ {
			for c := 0; c < 3; c++ {
				diag := 0.0
				if a == c {
					diag = 1
				}
				p[a][c] = diag - d[a]*d[c]
			}
		}
		for a := 0; a < 3; a++ {
			for c := 0; c < 3; c++ {
				m[a][c] += w * p[a][c]
			}
			ps := p[a][0]*s[0] + p[a][1]*s[1] + p[a][2]*s[2]
			b[a] += w * ps
		}
	}

	a := mat.NewDense(3, 3, []float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})
	bv := mat.NewVecDense(3, b[:])
	var xv mat.VecDense
	if err := xv.SolveVec(a, bv); err != nil {
		return geom.Point3D{}, fmt.Errorf("ray.ClosestPoint: %w: %w", ErrDegenerate, err)
	}
	return geom.Point3D{xv.AtVec(0), xv.AtVec(1), xv.AtVec(2)}, nil
}

// Residuals returns, for each ray, the perpendicular distance from p
// to that ray, useful for diagnosing triangulation quality.
func Residuals(rays []geom.Ray, p geom.Point3D) []float64 {
	out := make([]float64, len(rays))
	for i, r := range rays {
		v := p.Sub(r.Start)
		along := v.Dot(r.Direction)
		perp := v.Sub(r.Direction.Scale(along))
		out[i] = perp.Length()
	}
	return out
}
