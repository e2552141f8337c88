// Package calib drives lens polynomial calibration from a located,
// oriented camera and a set of point mappings with known model
// positions: for each mapping it derives the sensor-observed yaw (from
// the pixel location) and the world yaw (from the known model
// geometry), then fits the compressed odd-symmetric polynomial pair
// via camera.Calibrate.
package calib

import (
	"fmt"
	"math"

	"github.com/itohio/camcal/x/camera"
	"github.com/itohio/camcal/x/geom"
	"github.com/itohio/camcal/x/mapping"
)

// CalibrateLens computes sensor/world yaw pairs from mappings observed
// by cam (whose Position and Orientation must already be known
// accurately, e.g. from a rectilinear or otherwise pre-calibrated
// rig), and fits a new LensPolys for it.
func CalibrateLens(cam camera.CameraInstance, mappings []mapping.PointMapping, order int, yawRangeMin, yawRangeMax float64) (camera.LensPolys, error) {
	if len(mappings) == 0 {
		return camera.LensPolys{}, fmt.Errorf("calib.CalibrateLens: no point mappings given")
	}

	var sensorYaws, worldYaws []float64
	for _, m := range mappings {
		sensorDir := cam.CameraSpaceDirection(m.Screen)
		sensorYaw := angleFromForward(sensorDir)

		worldDir := m.Point.Position.Sub(cam.Position).Normalize()
		localDir := cam.Orientation.Conj().Apply(worldDir)
		worldYaw := angleFromForward(localDir)

		sensorYaws = append(sensorYaws, sensorYaw)
		worldYaws = append(worldYaws, worldYaw)
	}

	return camera.Calibrate(sensorYaws, worldYaws, order, yawRangeMin, yawRangeMax)
}

// angleFromForward returns the angle between a unit vector and the
// +Z (forward) axis.
func angleFromForward(v geom.Point3D) float64 {
	z := v[2]
	if z > 1 {
		z = 1
	}
	if z < -1 {
		z = -1
	}
	return math.Acos(z)
}
