// Package orient recovers a located camera's orientation from a set of
// point mappings, once its position is known: Orient derives an
// initial estimate from scratch by comparing pairwise direction
// angles, and Reorient polishes an existing estimate by iterated
// per-point rotation averaging.
package orient

import (
	"fmt"
	"math"

	"github.com/itohio/camcal/x/camera"
	"github.com/itohio/camcal/x/geom"
	"github.com/itohio/camcal/x/mapping"
)

// Orient derives an orientation for cam (whose Position must already
// be set) from at least three point mappings, by constructing, for
// every ordered pair of mappings, the rotation that is consistent with
// both the camera-space and model-space direction to each point, then
// averaging all of those candidate rotations. It returns the total
// pixel error of the resulting orientation against mappings.
func Orient(cam *camera.CameraInstance, mappings []mapping.PointMapping) (float64, error) {
	n := len(mappings)
	if n < 3 {
		return 0, fmt.Errorf("orient.Orient: need at least 3 point mappings, got %d", n)
	}

	zAxis := geom.Point3D{0, 0, 1}
	var qs []geom.Quat
	var weights []float64

	for i := 0; i < n; i++ {
		pmI := mappings[i]
		diC := cam.CameraSpaceDirection(pmI.Screen)
		diM := pmI.Point.Position.Sub(cam.Position).Normalize()
		qiC := geom.RotationOfVecToVec(diC, zAxis)
		qiM := geom.RotationOfVecToVec(diM, zAxis)

		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			pmJ := mappings[j]
			djC := cam.CameraSpaceDirection(pmJ.Screen)
			djM := pmJ.Point.Position.Sub(cam.Position).Normalize()

			djCRotated := qiC.Apply(djC)
			djMRotated := qiM.Apply(djM)

			thetaC := math.Atan2(djCRotated[0], djCRotated[1])
			thetaM := math.Atan2(djMRotated[0], djMRotated[1])
			theta := thetaM - thetaC
			halfTheta := theta / 2
			qz := geom.FromRijk(math.Cos(halfTheta), 0, 0, math.Sin(halfTheta))

			q := qiC.Conj().Mul(qz).Mul(qiM)
			qs = append(qs, q.Normalize())
			weights = append(weights, 1)
		}
	}

	qr := geom.WeightedAverageMany(qs, weights)
	// Each q maps model directions onto camera-space ones, while
	// Orientation maps camera space into world space: take the conjugate.
	cam.Orientation = qr.Conj()
	return TotalError(*cam, mappings), nil
}

// Reorient polishes an existing orientation estimate by repeatedly
// computing, for every mapping, the rotation that would align the
// world-space direction its pixel has under the current orientation to
// the model-implied direction, averaging those rotations (with a
// heavily-weighted identity rotation included to damp the step), and
// accepting the update only while it strictly reduces total error.
func Reorient(cam *camera.CameraInstance, mappings []mapping.PointMapping) float64 {
	lastErr := TotalError(*cam, mappings)
	for {
		n := len(mappings)
		qs := []geom.Quat{geom.Identity()}
		weights := []float64{10 * float64(n)}

		initial := cam.Orientation
		for _, m := range mappings {
			dC := cam.Orientation.Apply(cam.CameraSpaceDirection(m.Screen))
			dM := m.Point.Position.Sub(cam.Position).Normalize()
			q := geom.RotationOfVecToVec(dC, dM)
			qs = append(qs, q)
			weights = append(weights, 1)
		}
		qr := geom.WeightedAverageMany(qs, weights)

		cam.Orientation = qr.Mul(initial).Normalize()
		err := TotalError(*cam, mappings)
		if err >= lastErr {
			cam.Orientation = initial
			break
		}
		lastErr = err
	}
	return lastErr
}

// TotalError sums the squared pixel error of every mapping against
// cam's current position and orientation.
func TotalError(cam camera.CameraInstance, mappings []mapping.PointMapping) float64 {
	set := mapping.PointMappingSet{Mappings: mappings}
	return set.TotalError(cam)
}
