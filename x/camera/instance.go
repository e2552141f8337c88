package camera

import (
	"fmt"
	"math"

	"github.com/itohio/camcal/x/geom"
)

// CameraInstance is a fully posed camera: a body, a lens, a focus
// setting and a world placement (position and orientation). It
// provides the two directions of the camera projection used
// throughout the solvers: WorldToSensor (forward projection of a
// world point to a pixel) and SensorToWorldRay (back-projection of a
// pixel to a world-space ray).
type CameraInstance struct {
	Body     CameraBody   `json:"body"`
	Lens     CameraLens   `json:"lens"`
	Position geom.Point3D `json:"position"`
	// Orientation rotates a camera-space direction (+Z forward, +X
	// right, +Y up) into world space.
	Orientation geom.Quat `json:"orientation"`
	// FocusDistanceMM is the object distance u the lens is focused
	// at, in millimetres. A value <= the lens focal length is treated
	// as focus at infinity.
	FocusDistanceMM float64 `json:"focus_distance_mm"`
}

// NewCameraInstance places a body+lens pair at the given position and
// orientation, focused at infinity.
func NewCameraInstance(body CameraBody, lens CameraLens, position geom.Point3D, orientation geom.Quat) CameraInstance {
	return CameraInstance{
		Body:            body,
		Lens:            lens,
		Position:        position,
		Orientation:     orientation.Normalize(),
		FocusDistanceMM: 0,
	}
}

// effectiveImagePlaneDistance returns v, the lens-to-sensor distance
// implied by the focus setting: v = f*u/(u-f) for u > f (a finite
// focus distance), or f itself when the camera is focused at
// infinity (u <= f, including the default FocusDistanceMM == 0).
func (c CameraInstance) effectiveImagePlaneDistance() float64 {
	f := c.Lens.MMFocalLength
	u := c.FocusDistanceMM
	if u <= f {
		return f
	}
	return f * u / (u - f)
}

// WorldToSensor projects a world-space point onto the sensor, in
// absolute pixel coordinates. The second return value is false when
// the point is behind the camera (non-positive camera-space Z) and no
// meaningful projection exists.
func (c CameraInstance) WorldToSensor(world geom.Point3D) (geom.Point2D, bool) {
	rel := world.Sub(c.Position)
	camSpace := c.Orientation.Conj().Apply(rel)
	if camSpace[2] <= 1e-9 {
		return geom.Point2D{}, false
	}
	worldTxTy := geom.TanXTanYOfUnitVector(camSpace.Normalize())
	sensorTxTy := c.Lens.TanWorldToTanSensor(worldTxTy)

	v := c.effectiveImagePlaneDistance()
	mm := geom.Point2D{sensorTxTy[0] * v, sensorTxTy[1] * v}
	abs := c.Body.MMToPxAbs(mm)
	return abs, true
}

// SensorToWorldRay back-projects an absolute pixel coordinate into a
// world-space ray leaving the camera's position. pxError is the pixel
// uncertainty of the measurement that produced px; it is converted to
// the ray's tan-space TanError through the sensor's horizontal pixel
// pitch and the image-plane distance. Lens distortion is not applied
// to the error.
func (c CameraInstance) SensorToWorldRay(px geom.Point2D, pxError float64) geom.Ray {
	mm := c.Body.PxAbsToMM(px)
	v := c.effectiveImagePlaneDistance()
	sensorTxTy := geom.TanXTanY{mm[0] / v, mm[1] / v}

	worldTxTy := c.Lens.TanSensorToTanWorld(sensorTxTy)

	dirCam := worldTxTy.ToUnitVector()
	dirWorld := c.Orientation.Apply(dirCam)

	tanError := pxError * (c.Body.MMWidth / c.Body.PxWidth) / v
	return geom.NewRay(c.Position, dirWorld, tanError)
}

// CameraSpaceDirection returns the unit viewing direction of a pixel
// in camera-local space (+Z forward), before the camera's orientation
// is applied. This is the quantity the orientation solver needs: it
// compares this local direction against the world-space direction
// implied by the model, to recover the rotation between the two.
func (c CameraInstance) CameraSpaceDirection(px geom.Point2D) geom.Point3D {
	mm := c.Body.PxAbsToMM(px)
	v := c.effectiveImagePlaneDistance()
	sensorTxTy := geom.TanXTanY{mm[0] / v, mm[1] / v}
	worldTxTy := c.Lens.TanSensorToTanWorld(sensorTxTy)
	return worldTxTy.ToUnitVector()
}

// RayDirection returns just the world-space unit direction a pixel
// back-projects to, without the position-dependent Start point. Since
// the direction depends only on the camera's orientation and lens (not
// its position), this lets a camera be used as a pure direction
// provider before its location is known, which the locus solver
// depends on.
func (c CameraInstance) RayDirection(px geom.Point2D) geom.Point3D {
	return c.SensorToWorldRay(px, 0).Direction
}

// MaxUsableYaw estimates the largest world-space yaw angle (from the
// optical axis) for which the world-to-sensor polynomial's relative
// error stays below maxRelErr, following the original calibration
// diagnostic: max_angle = (maxRelErr / lastCoeff)^(1/(2*order)).
func (l LensPolys) MaxUsableYaw(maxRelErr float64) (float64, error) {
	coeffs := l.WtsPoly.Coeffs
	if len(coeffs) == 0 {
		return 0, fmt.Errorf("camera.LensPolys.MaxUsableYaw: polynomial has no coefficients")
	}
	last := coeffs[len(coeffs)-1]
	if last == 0 {
		return 0, fmt.Errorf("camera.LensPolys.MaxUsableYaw: leading coefficient is zero")
	}
	return math.Pow(math.Abs(maxRelErr/last), 0.5/float64(len(coeffs))), nil
}
