// Package camera implements the pinhole-plus-distortion camera model:
// a sensor body (pixel <-> millimetre geometry), a lens (polynomial
// angle distortion) and an instance combining both with a focus
// distance and world pose to project between world rays and sensor
// pixels.
package camera

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/itohio/camcal/x/geom"
	"github.com/itohio/camcal/x/linalg"
)

// LensPolys holds the pair of compressed odd-symmetric polynomials
// that map sensor-angle to world-angle (Stw) and back (Wts). Both
// operate on angles in radians, not on tan-space values; CameraLens
// converts to/from tan-space around them.
type LensPolys struct {
	StwPoly linalg.Polynomial `json:"stw_poly"`
	WtsPoly linalg.Polynomial `json:"wts_poly"`
}

// Stw maps a sensor angle (radians) to the corresponding world angle.
func (l LensPolys) Stw(angle float64) float64 {
	return l.StwPoly.Calc(angle)
}

// Wts maps a world angle (radians) to the corresponding sensor angle.
func (l LensPolys) Wts(angle float64) float64 {
	return l.WtsPoly.Calc(angle)
}

// CalibrationOrder is the default number of compressed-polynomial
// coefficients fit during lens calibration.
const CalibrationOrder = 4

// Calibrate fits a sensor-to-world / world-to-sensor polynomial pair
// from paired (sensorYaw, worldYaw) observations, following the
// median-filter-then-fit procedure of LensPolys.calibration in the
// photogrammetric original: pairs are filtered for outliers, a
// sensor-to-world polynomial is fit in (sensorYaw^2, (worldYaw-sensorYaw)/sensorYaw)
// space, and then a world-to-sensor polynomial is fit as its
// approximate inverse by resampling the fitted stw curve.
func Calibrate(sensorYaws, worldYaws []float64, order int, yawRangeMin, yawRangeMax float64) (LensPolys, error) {
	if len(sensorYaws) != len(worldYaws) {
		return LensPolys{}, fmt.Errorf("camera.Calibrate: sensorYaws/worldYaws length mismatch: %d vs %d", len(sensorYaws), len(worldYaws))
	}
	if order < 1 {
		order = CalibrationOrder
	}

	var fw, fs []float64
	for i := range sensorYaws {
		if sensorYaws[i] > yawRangeMin {
			fw = append(fw, worldYaws[i])
			fs = append(fs, sensorYaws[i])
		}
	}
	fw, fs = linalg.FilterWSYaws(fw, fs, 2)

	var sxs, sys []float64
	for i := range fs {
		if fs[i] >= yawRangeMax {
			continue
		}
		s := fs[i]
		w := fw[i]
		if s < 0.001 {
			sxs = append(sxs, s*s)
			sys = append(sys, 0)
		} else {
			sxs = append(sxs, s*s)
			sys = append(sys, (w-s)/s)
		}
	}
	stwCoeffs, err := fitGram(sxs, sys, order)
	if err != nil {
		return LensPolys{}, fmt.Errorf("camera.Calibrate: sensor-to-world fit: %w", err)
	}
	stw := linalg.Polynomial{Coeffs: stwCoeffs}

	var wxs, wys []float64
	for _, s := range sensorYaws {
		w := stw.Calc(s)
		if math.Abs(w) < 0.001 {
			wxs = append(wxs, w*w)
			wys = append(wys, 0)
		} else {
			wxs = append(wxs, w*w)
			wys = append(wys, (s-w)/w)
		}
	}
	wtsCoeffs, err := fitGram(wxs, wys, order)
	if err != nil {
		return LensPolys{}, fmt.Errorf("camera.Calibrate: world-to-sensor fit: %w", err)
	}
	wts := linalg.Polynomial{Coeffs: wtsCoeffs}

	return LensPolys{StwPoly: stw, WtsPoly: wts}, nil
}

// fitGram fits coeffs such that sum_k coeffs[k]*x^k approximates y,
// reusing linalg.MinSquares's normal-equations machinery by feeding it
// already-squared x values (MinSquares itself squares its input, so we
// pass sqrt(x) through it).
func fitGram(xsSquared, ys []float64, order int) ([]float64, error) {
	xs := make([]float64, len(xsSquared))
	for i, x2 := range xsSquared {
		xs[i] = math.Sqrt(math.Abs(x2))
		if x2 < 0 {
			xs[i] = -xs[i]
		}
	}
	scaled := make([]float64, len(ys))
	for i := range ys {
		scaled[i] = xs[i] * (1 + ys[i])
	}
	p, err := linalg.MinSquares(xs, scaled, order)
	if err != nil {
		return nil, err
	}
	return p.Coeffs, nil
}

// CameraLens combines a focal length with a LensPolys distortion
// model.
type CameraLens struct {
	Name          string    `json:"name"`
	MMFocalLength float64   `json:"mm_focal_length"`
	Polys         LensPolys `json:"polys"`
}

// NewCameraLens builds a rectilinear (undistorted) lens of the given
// focal length.
func NewCameraLens(name string, mmFocalLength float64) CameraLens {
	return CameraLens{
		Name:          name,
		MMFocalLength: mmFocalLength,
		Polys:         LensPolys{StwPoly: linalg.Polynomial{Coeffs: []float64{0}}, WtsPoly: linalg.Polynomial{Coeffs: []float64{0}}},
	}
}

// TanSensorToTanWorld maps a tan-space direction on the sensor to the
// corresponding tan-space direction in the world: it decomposes into
// yaw and roll, applies the lens's sensor-to-world polynomial to yaw
// only (roll is preserved exactly, by the lens's spherical symmetry),
// and reassembles.
func (c CameraLens) TanSensorToTanWorld(tan geom.TanXTanY) geom.TanXTanY {
	ry := tan.ToRollYaw()
	ry.Yaw = c.Polys.Stw(ry.Yaw)
	return ry.ToTanXTanY()
}

// TanWorldToTanSensor maps the other way, applying the lens's
// world-to-sensor polynomial to yaw. Stw and Wts are fitted separately,
// so the two mappings are only approximately inverse to each other.
func (c CameraLens) TanWorldToTanSensor(tan geom.TanXTanY) geom.TanXTanY {
	ry := tan.ToRollYaw()
	ry.Yaw = c.Polys.Wts(ry.Yaw)
	return ry.ToTanXTanY()
}

func (c CameraLens) MarshalJSON() ([]byte, error) {
	type alias CameraLens
	return json.Marshal(alias(c))
}

func (c *CameraLens) UnmarshalJSON(data []byte) error {
	type alias CameraLens
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("camera.CameraLens.UnmarshalJSON: %w", err)
	}
	*c = CameraLens(a)
	return nil
}
