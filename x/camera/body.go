package camera

import (
	"fmt"
	"math"

	"github.com/itohio/camcal/x/geom"
)

// CameraBody describes a sensor's pixel geometry: its resolution and
// its physical size in millimetres. It provides the conversions
// between absolute pixel coordinates (origin top-left, y down),
// sensor-relative pixel coordinates (origin center, y up) and
// millimetre coordinates on the sensor plane.
type CameraBody struct {
	Name     string  `json:"name"`
	PxWidth  float64 `json:"px_width"`
	PxHeight float64 `json:"px_height"`
	MMWidth  float64 `json:"mm_width"`
	MMHeight float64 `json:"mm_height"`
}

// NewCameraBody builds a sensor description, validating that the
// resolution and physical size are both positive.
func NewCameraBody(name string, pxWidth, pxHeight, mmWidth, mmHeight float64) (CameraBody, error) {
	if pxWidth <= 0 || pxHeight <= 0 {
		return CameraBody{}, fmt.Errorf("camera.NewCameraBody: pixel resolution must be positive, got %gx%g", pxWidth, pxHeight)
	}
	if mmWidth <= 0 || mmHeight <= 0 {
		return CameraBody{}, fmt.Errorf("camera.NewCameraBody: physical size must be positive, got %gx%g", mmWidth, mmHeight)
	}
	return CameraBody{Name: name, PxWidth: pxWidth, PxHeight: pxHeight, MMWidth: mmWidth, MMHeight: mmHeight}, nil
}

// PxAbsToPxRel converts an absolute pixel coordinate (origin top-left,
// y increasing downward) to a sensor-relative coordinate (origin at
// the sensor center, y increasing upward, both axes in [-1, 1] at the
// sensor edges).
func (b CameraBody) PxAbsToPxRel(abs geom.Point2D) geom.Point2D {
	return geom.Point2D{
		(abs[0] - b.PxWidth/2) / (b.PxWidth / 2),
		-(abs[1] - b.PxHeight/2) / (b.PxHeight / 2),
	}
}

// PxRelToPxAbs is the inverse of PxAbsToPxRel.
func (b CameraBody) PxRelToPxAbs(rel geom.Point2D) geom.Point2D {
	return geom.Point2D{
		rel[0]*(b.PxWidth/2) + b.PxWidth/2,
		-rel[1]*(b.PxHeight/2) + b.PxHeight/2,
	}
}

// PxRelToMM converts a sensor-relative coordinate to millimetres on
// the sensor plane, measured from the sensor center.
func (b CameraBody) PxRelToMM(rel geom.Point2D) geom.Point2D {
	return geom.Point2D{rel[0] * (b.MMWidth / 2), rel[1] * (b.MMHeight / 2)}
}

// MMToPxRel is the inverse of PxRelToMM.
func (b CameraBody) MMToPxRel(mm geom.Point2D) geom.Point2D {
	return geom.Point2D{mm[0] / (b.MMWidth / 2), mm[1] / (b.MMHeight / 2)}
}

// PxAbsToMM composes PxAbsToPxRel and PxRelToMM.
func (b CameraBody) PxAbsToMM(abs geom.Point2D) geom.Point2D {
	return b.PxRelToMM(b.PxAbsToPxRel(abs))
}

// MMToPxAbs composes MMToPxRel and PxRelToPxAbs.
func (b CameraBody) MMToPxAbs(mm geom.Point2D) geom.Point2D {
	return b.PxRelToPxAbs(b.MMToPxRel(mm))
}

// PixelAspectRatio is mm_width/px_width divided by mm_height/px_height;
// 1.0 for square pixels.
func (b CameraBody) PixelAspectRatio() float64 {
	return (b.MMWidth / b.PxWidth) / (b.MMHeight / b.PxHeight)
}

// DiagonalMM is the sensor's diagonal size, used for field-of-view
// sanity checks.
func (b CameraBody) DiagonalMM() float64 {
	return math.Hypot(b.MMWidth, b.MMHeight)
}
