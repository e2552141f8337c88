// Package engine wires the geometry, camera, mapping and solver
// packages into the external operations a calibration session drives:
// locating a camera from point mappings, orienting and reorienting it,
// calibrating its lens, and triangulating a model point from several
// located cameras' sightings of it.
package engine

import (
	"fmt"
	"math"

	"github.com/itohio/camcal/x/bestmap"
	"github.com/itohio/camcal/x/calib"
	"github.com/itohio/camcal/x/camera"
	"github.com/itohio/camcal/x/geom"
	"github.com/itohio/camcal/x/locus"
	"github.com/itohio/camcal/x/mapping"
	"github.com/itohio/camcal/x/orient"
	"github.com/itohio/camcal/x/ray"
)

// LocateUsingModelLines sets cam's Position by running the
// loci-of-constant-subtended-angle solver over every pair of mappings
// whose per-point pixel error (PxError) is at most maxModelError, using nPhi and
// nTheta grid resolution for the coarse surface search. It returns the
// solver's residual total squared angular error.
func LocateUsingModelLines(cam *camera.CameraInstance, mappings []mapping.PointMapping, maxModelError float64, nPhi, nTheta int) (float64, error) {
	set := mapping.PointMappingSet{Mappings: mappings}
	pairs := set.GoodScreenPairs(func(m mapping.PointMapping) bool { return m.PxError <= maxModelError })
	if len(pairs) == 0 {
		return 0, fmt.Errorf("engine.LocateUsingModelLines: no point-mapping pairs pass the model-error threshold %g", maxModelError)
	}

	mls := locus.NewModelLineSet(cam)
	for _, pr := range pairs {
		if err := mls.AddLine(mappings[pr.I], mappings[pr.J]); err != nil {
			continue
		}
	}
	if mls.NumLines() < 2 {
		return 0, fmt.Errorf("engine.LocateUsingModelLines: need at least 2 usable model lines, got %d", mls.NumLines())
	}

	location, residual, err := mls.FindBestMinErrLocation(locus.AcceptAll, nPhi, nTheta)
	if err != nil {
		return 0, fmt.Errorf("engine.LocateUsingModelLines: %w", err)
	}
	cam.Position = location
	return residual, nil
}

// GetLocationGivenDirection locates cam by casting, through every
// mapping's model point, a ray along the direction its pixel
// back-projects to (using cam's current orientation) and finding their
// weighted closest point, weighting each ray by its tan-space
// uncertainty.
func GetLocationGivenDirection(cam camera.CameraInstance, mappings []mapping.PointMapping) (geom.Point3D, error) {
	if len(mappings) < 2 {
		return geom.Point3D{}, fmt.Errorf("engine.GetLocationGivenDirection: need at least 2 mappings, got %d", len(mappings))
	}
	rays := make([]geom.Ray, len(mappings))
	for i, m := range mappings {
		r := cam.SensorToWorldRay(m.Screen, m.PxError)
		r.Start = m.Point.Position
		rays[i] = r
	}
	return ray.ClosestPoint(rays, nil)
}

// placement is a candidate (position, orientation) pair tried during
// GetBestLocation's search.
type placement struct {
	position    geom.Point3D
	orientation geom.Quat
}

// GetBestLocation searches a dense, uniformly-distributed set of
// candidate orientations (steps*steps of them, each refined by
// rotations about the world Z axis in 6 shrinking passes) and, for
// each, computes the
// best-fit position by ray intersection, keeping the overall candidate
// with the lowest total pixel error. This does not require a good
// initial orientation estimate, unlike Reorient, at the cost of being
// significantly more expensive.
func GetBestLocation(cam camera.CameraInstance, mappings []mapping.PointMapping, steps int) (camera.CameraInstance, float64, error) {
	if steps < 1 {
		steps = 8
	}
	initial := placement{position: cam.Position, orientation: cam.Orientation}
	best := bestmap.New[placement](false, math.Inf(1), math.Inf(1), initial)

	cp := cam
	for xy := 0; xy < steps*steps; xy++ {
		x := xy % steps
		y := (xy / steps) % steps
		dirn := geom.UniformDistSphere(float64(y)/float64(steps), float64(x)/float64(steps))

		k := math.Sqrt(math.Max(0, (dirn[2]+1)/2))
		var i, j float64
		if k < 1e-6 {
			i, j = 1, 0
		} else {
			i, j = dirn[0]/2/k, dirn[1]/2/k
		}
		qxy := geom.FromRijk(0, -i, -j, -k)

		candidate := placement{orientation: qxy.Mul(initial.orientation)}

		angleRange := 2 * math.Pi
		bestOfAxis := bestmap.New[placement](false, math.Inf(1), math.Inf(1), candidate)
		for pass := 0; pass < 6; pass++ {
			for z := 0; z <= steps*2; z++ {
				zf := float64(z)/float64(steps) - 1
				qz := geom.FromAxisAngle(geom.Point3D{0, 0, 1}, zf*angleRange)
				tc := candidate
				tc.orientation = qz.Mul(candidate.orientation)

				cp.Orientation = tc.orientation
				loc, err := GetLocationGivenDirection(cp, mappings)
				if err != nil {
					continue
				}
				tc.position = loc
				cp.Position = loc

				set := mapping.PointMappingSet{Mappings: mappings}
				te := set.TotalError(cp)
				we := set.WorstError(cp)
				bestOfAxis.UpdateBest(we, te, tc)
			}
			candidate = bestOfAxis.Data()
			angleRange /= float64(steps)
			if angleRange < 1e-4 {
				break
			}
		}
		best = best.BestOfBoth(bestOfAxis)
	}

	winner := best.Data()
	cp.Position = winner.position
	cp.Orientation = winner.orientation.Normalize()
	set := mapping.PointMappingSet{Mappings: mappings}
	return cp, set.TotalError(cp), nil
}

// Orient and Reorient re-export the orientation solver for callers
// that only need `engine` in scope.
func Orient(cam *camera.CameraInstance, mappings []mapping.PointMapping) (float64, error) {
	return orient.Orient(cam, mappings)
}

func Reorient(cam *camera.CameraInstance, mappings []mapping.PointMapping) float64 {
	return orient.Reorient(cam, mappings)
}

// CalibrateLens re-exports the lens calibration driver for callers
// that only need `engine` in scope.
func CalibrateLens(cam camera.CameraInstance, mappings []mapping.PointMapping, order int, yawRangeMin, yawRangeMax float64) (camera.LensPolys, error) {
	return calib.CalibrateLens(cam, mappings, order, yawRangeMin, yawRangeMax)
}

// Triangulate finds the world point best explaining a set of rays cast
// from several (already-located) cameras observing the same physical
// feature, one ray per camera.
func Triangulate(rays []geom.Ray) (geom.Point3D, error) {
	return ray.ClosestPoint(rays, nil)
}
