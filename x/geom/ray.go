package geom

// Ray is a half-line in world space used both for backward-casting
// through a camera's sensor and for triangulating model points from
// several located cameras.
//
// Invariant: Direction is unit-length; TanError >= 0. TanError is the
// angular half-width (radians) of the uncertainty cone around the ray,
// derived from the +-1 pixel uncertainty of the measurement that
// produced it.
type Ray struct {
	Start     Point3D
	Direction Point3D
	TanError  float64
}

// NewRay constructs a ray, normalizing direction.
func NewRay(start, direction Point3D, tanError float64) Ray {
	return Ray{Start: start, Direction: direction.Normalize(), TanError: tanError}
}

// PointAt returns start + t*direction.
func (r Ray) PointAt(t float64) Point3D {
	return r.Start.Add(r.Direction.Scale(t))
}
