package locus

import (
	"fmt"
	"math"

	"github.com/itohio/camcal/x/geom"
	"github.com/itohio/camcal/x/mapping"
)

// DirectionProvider is the minimal camera-shaped interface the
// location solver needs to turn a sensor observation into a
// world-space viewing direction, without yet knowing the camera's
// position. *camera.CameraInstance satisfies this structurally.
type DirectionProvider interface {
	RayDirection(px geom.Point2D) geom.Point3D
}

// ModelLineSet accumulates model lines, each derived from a pair of
// point mappings observed by the same (not-yet-located) camera, and
// solves for the camera position consistent with all the subtended
// angles.
type ModelLineSet struct {
	Camera DirectionProvider

	modelCog geom.Point3D
	lines    []ModelLineSubtended
}

// NewModelLineSet starts an empty set for the given camera.
func NewModelLineSet(camera DirectionProvider) *ModelLineSet {
	return &ModelLineSet{Camera: camera}
}

// NumLines returns the number of model lines accumulated so far.
func (s *ModelLineSet) NumLines() int { return len(s.lines) }

// AddLine derives the angle subtended by two point mappings (as seen
// through the set's camera) and adds the corresponding model line. It
// returns an error if the two points coincide or if the implied angle
// is degenerate (0 or pi).
func (s *ModelLineSet) AddLine(pm0, pm1 mapping.PointMapping) error {
	dir0 := s.Camera.RayDirection(pm0.Screen)
	dir1 := s.Camera.RayDirection(pm1.Screen)
	cosTheta := dir0.Dot(dir1)
	if cosTheta > 1 {
		cosTheta = 1
	}
	if cosTheta < -1 {
		cosTheta = -1
	}
	angle := math.Acos(cosTheta)

	line, err := NewModelLine(pm0.Point.Position, pm1.Point.Position)
	if err != nil {
		return fmt.Errorf("locus.ModelLineSet.AddLine: %w", err)
	}
	mls, err := NewModelLineSubtended(line, angle)
	if err != nil {
		return fmt.Errorf("locus.ModelLineSet.AddLine: %w", err)
	}
	s.lines = append(s.lines, mls)
	s.deriveModelCog()
	return nil
}

func (s *ModelLineSet) deriveModelCog() {
	if len(s.lines) == 0 {
		s.modelCog = geom.Point3D{}
		return
	}
	var sum geom.Point3D
	for _, l := range s.lines {
		sum = sum.Add(l.Line.MidPoint())
	}
	s.modelCog = sum.Scale(1 / float64(len(s.lines)))
}

// TotalErr2 is the sum of squared angular errors of p against every
// accumulated model line.
func (s *ModelLineSet) TotalErr2(p geom.Point3D) float64 {
	var err2 float64
	for _, l := range s.lines {
		e := l.ErrorInPAngle(p)
		err2 += e * e
	}
	return err2
}

// Filter decides whether a candidate surface point is worth
// considering at all, e.g. to reject points behind the camera or
// outside a plausible working volume.
type Filter func(geom.Point3D) bool

// AcceptAll is a Filter that rejects nothing.
func AcceptAll(geom.Point3D) bool { return true }

// FindApproxLocationUsingLine does a coarse grid search over the
// torus surface of the line at the given index, scoring each
// candidate point by its total squared angular error against every
// *other* line in the set (the line used to generate the surface
// necessarily has zero error on its own surface).
func (s *ModelLineSet) FindApproxLocationUsingLine(filter Filter, index int, nPhi, nTheta int) (geom.Point3D, float64, error) {
	if index < 0 || index >= len(s.lines) {
		return geom.Point3D{}, 0, fmt.Errorf("locus.ModelLineSet.FindApproxLocationUsingLine: index %d out of range [0,%d)", index, len(s.lines))
	}
	if filter == nil {
		filter = AcceptAll
	}

	var best geom.Point3D
	minErr2 := 1e8
	it := s.lines[index].Surface(nPhi, nTheta)
	for {
		p, ok := it.Next()
		if !ok {
			break
		}
		if !filter(p) {
			continue
		}
		err2 := 0.0
		exceeded := false
		for i, l := range s.lines {
			if i == index {
				continue
			}
			e := l.ErrorInPAngle(p)
			err2 += e * e
			if err2 >= minErr2 {
				exceeded = true
				break
			}
		}
		if exceeded {
			continue
		}
		minErr2 = err2
		best = p
	}
	return best, minErr2, nil
}

// FindBetterMinErrLocation performs a single round of finite-difference
// gradient descent refinement around pt, scaled by fraction (larger
// fraction means a smaller step; callers typically call this
// repeatedly with the same fraction until it reports no improvement,
// then increase the fraction and repeat). It returns false if the
// refinement step found no improvement over pt.
func (s *ModelLineSet) FindBetterMinErrLocation(pt geom.Point3D, fraction float64) (geom.Point3D, float64, bool) {
	distance := pt.DistanceTo(s.modelCog)
	delta := distance / fraction / 10.0
	if delta <= 0 {
		delta = 1e-6
	}
	f := s.TotalErr2
	dp := gradientDescentDirection(pt, f, delta).Scale(10.0)
	moved, err, newPt := lineSearch(pt, dp, f, 26, 0.7)
	if !moved {
		return pt, f(pt), false
	}
	return newPt, err, true
}

// FindBestMinErrLocation is the full location solver: it grid-searches
// every accumulated line's torus surface for the best coarse location,
// then refines it through successively finer gradient-descent passes.
func (s *ModelLineSet) FindBestMinErrLocation(filter Filter, nPhi, nTheta int) (geom.Point3D, float64, error) {
	if len(s.lines) < 2 {
		return geom.Point3D{}, 0, fmt.Errorf("locus.ModelLineSet.FindBestMinErrLocation: need at least 2 model lines, got %d", len(s.lines))
	}

	location, err, solveErr := s.FindApproxLocationUsingLine(filter, 0, nPhi, nTheta)
	if solveErr != nil {
		return geom.Point3D{}, 0, solveErr
	}
	for i := 1; i < s.NumLines(); i++ {
		l, e, solveErr := s.FindApproxLocationUsingLine(filter, i, nPhi, nTheta)
		if solveErr != nil {
			return geom.Point3D{}, 0, solveErr
		}
		if e < err {
			err = e
			location = l
		}
	}

	for i := 0; i < 10; i++ {
		fraction := 200.0 * pow14(i)
		for {
			l, e, moved := s.FindBetterMinErrLocation(location, fraction)
			if !moved {
				break
			}
			location = l
			err = e
		}
	}
	return location, err, nil
}

func pow14(i int) float64 {
	r := 1.0
	for n := 0; n < i; n++ {
		r *= 1.4
	}
	return r
}
