// Package locus implements the "loci of constant subtended angle"
// location solver: given several model lines (pairs of known 3D
// points) and the angle each subtends as seen by an unlocated camera,
// it finds the camera position consistent with all of them.
package locus

import (
	"fmt"
	"math"

	"github.com/itohio/camcal/x/geom"
)

// ModelLine is a line segment between two known points in model
// (world) space.
type ModelLine struct {
	P0, P1 geom.Point3D
}

// NewModelLine builds a ModelLine, returning an error if the two
// points coincide (a zero-length line has no defined direction).
func NewModelLine(p0, p1 geom.Point3D) (ModelLine, error) {
	if p0.DistanceTo(p1) < 1e-10 {
		return ModelLine{}, fmt.Errorf("locus.NewModelLine: points coincide within 1e-10")
	}
	return ModelLine{P0: p0, P1: p1}, nil
}

func (l ModelLine) MidPoint() geom.Point3D {
	return geom.Midpoint(l.P0, l.P1)
}

func (l ModelLine) Direction() geom.Point3D {
	return l.P1.Sub(l.P0)
}

func (l ModelLine) Length() float64 {
	return l.Direction().Length()
}

// UnitPerpendicular returns an arbitrary unit vector perpendicular to
// the line's direction, preferring the cross product with the origin
// direction and falling back to the coordinate axes when the line
// passes through (or near) the origin.
func (l ModelLine) UnitPerpendicular() geom.Point3D {
	dir := l.Direction().Normalize()
	k := l.P0.Cross(dir)
	if k.Length() > 0.001 {
		return k.Normalize()
	}
	for _, axis := range []geom.Point3D{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		perp := dir.Cross(axis)
		if perp.Length() > 0.001 {
			return perp.Normalize()
		}
	}
	panic("locus.ModelLine.UnitPerpendicular: unreachable, direction degenerate on all axes")
}

// CosAngleSubtended returns cos(theta), theta being the angle
// subtended by the line as viewed from p.
func (l ModelLine) CosAngleSubtended(p geom.Point3D) float64 {
	pp0 := p.Sub(l.P0)
	pp1 := p.Sub(l.P1)
	return pp0.Dot(pp1) / (pp0.Length() * pp1.Length())
}

// RadiusOfCircumcircle returns the radius of the circle through p,
// P0 and P1.
func (l ModelLine) RadiusOfCircumcircle(p geom.Point3D) float64 {
	p0p := p.Sub(l.P0)
	p1p := p.Sub(l.P1)
	cross := p0p.Cross(p1p)
	return l.Length() * p0p.Length() * p1p.Length() / (2 * cross.Length())
}

// ModelLineSubtended pairs a ModelLine with the angle it is observed
// to subtend from some (as yet unknown) viewpoint. The set of points
// from which a line subtends a fixed angle theta forms a torus of
// revolution around the line's axis; this type precomputes the torus
// and generating-circle radii used to parametrize that surface.
type ModelLineSubtended struct {
	Line  ModelLine
	Theta float64

	cosTheta     float64
	sinTheta     float64
	midPoint     geom.Point3D
	length       float64
	circleRadius float64
}

// NewModelLineSubtended derives the torus parameters for the line and
// observed angle. Theta must be in (0, pi); a multiple of pi makes
// sin(theta) zero and the torus radius infinite.
func NewModelLineSubtended(line ModelLine, theta float64) (ModelLineSubtended, error) {
	s := math.Sin(theta)
	if math.Abs(s) < 1e-9 {
		return ModelLineSubtended{}, fmt.Errorf("locus.NewModelLineSubtended: theta %g too close to a multiple of pi", theta)
	}
	mls := ModelLineSubtended{
		Line:     line,
		Theta:    theta,
		cosTheta: math.Cos(theta),
		sinTheta: s,
		midPoint: line.MidPoint(),
		length:   line.Length(),
	}
	mls.circleRadius = mls.length / (2 * mls.sinTheta)
	return mls, nil
}

// CircleRadius is the radius of the generating circle in the plane
// containing the line and a given locus point.
func (m ModelLineSubtended) CircleRadius() float64 { return m.circleRadius }

// TorusRadius is the distance from the line's axis to the generating
// circle's center.
func (m ModelLineSubtended) TorusRadius() float64 { return m.circleRadius * m.cosTheta }

// ErrorInPAngle returns the difference between the angle the line
// actually subtends from p and the target Theta; zero means p lies
// exactly on the torus.
func (m ModelLineSubtended) ErrorInPAngle(p geom.Point3D) float64 {
	cosTheta := m.Line.CosAngleSubtended(p)
	cosTheta = math.Max(-1, math.Min(1, cosTheta))
	return math.Acos(cosTheta) - m.Theta
}

// ErrorInP is an alternative error metric in length units, the
// difference between p's circumcircle radius and the torus's
// generating-circle radius.
func (m ModelLineSubtended) ErrorInP(p geom.Point3D) float64 {
	return m.Line.RadiusOfCircumcircle(p) - m.circleRadius
}

// Surface returns an iterator over an nPhi x nTheta grid of points on
// the torus surface, excluding a band of width 2*Theta around the line
// itself (the torus self-intersects there).
func (m ModelLineSubtended) Surface(nPhi, nTheta int) *SurfaceIter {
	return newSurfaceIter(m, nPhi, nTheta)
}
