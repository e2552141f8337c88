// Package mapping holds the point correspondences between named model
// points and their observed sensor locations, used by the location and
// orientation solvers. It depends only on geom, not on camera, so that
// camera can in turn depend on mapping-shaped interfaces without an
// import cycle; solvers instead take a Projector, which *camera.CameraInstance
// satisfies structurally.
package mapping

import (
	"fmt"
	"math"

	"github.com/itohio/camcal/x/geom"
)

// Projector is the minimal camera-shaped interface the mapping and
// solver packages need: given a world point, produce the sensor pixel
// it projects to (or false if it is behind the camera).
type Projector interface {
	WorldToSensor(world geom.Point3D) (geom.Point2D, bool)
}

// NamedPoint is a model point identified by name, used to correlate
// sightings of the same physical feature across multiple cameras.
type NamedPoint struct {
	Name     string
	Position geom.Point3D
}

// PointMapping is a single observation: a named model point and where
// it was measured on a sensor, in absolute pixel coordinates.
type PointMapping struct {
	Point  NamedPoint
	Screen geom.Point2D
	// PxError is the +-1 standard deviation pixel measurement
	// uncertainty, used to weight this mapping in least-squares fits.
	PxError float64
}

// NewPointMapping builds a mapping with a default 1-pixel error.
func NewPointMapping(point NamedPoint, screen geom.Point2D) PointMapping {
	return PointMapping{Point: point, Screen: screen, PxError: 1}
}

// Weight returns the inverse-variance weight (1/PxError^2) used in
// weighted least squares; mappings with zero or negative error are
// treated as having the default weight of 1.
func (m PointMapping) Weight() float64 {
	if m.PxError <= 0 {
		return 1
	}
	return 1 / (m.PxError * m.PxError)
}

// SqError returns a smooth saturating error metric d^2*d^2/(d^2+e^2),
// d being the pixel distance between this mapping's observed screen
// location and the location the projector predicts for its model
// point, and e being the mapping's pixel uncertainty. This is close to
// d^2 when d is large relative to e and close to d^4/e^2 when d is
// small, so the pixel error attenuates small deviations rather than
// capping large ones. The second return is false if the model point
// falls behind the camera.
func (m PointMapping) SqError(p Projector) (float64, bool) {
	predicted, ok := p.WorldToSensor(m.Point.Position)
	if !ok {
		return 0, false
	}
	diff := predicted.Sub(m.Screen)
	d2 := diff.Dot(diff)
	e := m.PxError
	e2 := e * e
	if d2+e2 == 0 {
		return 0, true
	}
	return d2 * d2 / (d2 + e2), true
}

// PointMappingSet is a collection of observations against one camera.
type PointMappingSet struct {
	Mappings []PointMapping
}

// Add appends a mapping to the set.
func (s *PointMappingSet) Add(m PointMapping) {
	s.Mappings = append(s.Mappings, m)
}

// TotalError sums the weighted squared pixel error of every mapping in
// the set against the given projector. Mappings that fall behind the
// camera contribute a fixed penalty rather than being skipped, so that
// a projector which hides points by facing away from them is not
// rewarded.
func (s PointMappingSet) TotalError(p Projector) float64 {
	const behindCameraPenalty = 1e6
	total := 0.0
	for _, m := range s.Mappings {
		sq, ok := m.SqError(p)
		if !ok {
			total += behindCameraPenalty * m.Weight()
			continue
		}
		total += sq * m.Weight()
	}
	return total
}

// WorstError returns the largest weighted squared pixel error across
// all mappings in the set, used to drive outlier-sensitive refinement.
func (s PointMappingSet) WorstError(p Projector) float64 {
	worst := 0.0
	for _, m := range s.Mappings {
		sq, ok := m.SqError(p)
		if !ok {
			sq = 1e6
		}
		w := sq * m.Weight()
		if w > worst {
			worst = w
		}
	}
	return worst
}

// RMSError returns sqrt(TotalError / count), a scale-stable error
// metric comparable across sets of different sizes.
func (s PointMappingSet) RMSError(p Projector) float64 {
	if len(s.Mappings) == 0 {
		return 0
	}
	return math.Sqrt(s.TotalError(p) / float64(len(s.Mappings)))
}

// Pair is an ordered index pair into a PointMappingSet's Mappings
// slice.
type Pair struct{ I, J int }

// GoodScreenPairs returns every unordered pair of mapping indices for
// which accept returns true on both mappings, used to pick which
// model lines are trustworthy enough to feed the location solver.
func (s PointMappingSet) GoodScreenPairs(accept func(PointMapping) bool) []Pair {
	var good []int
	for i, m := range s.Mappings {
		if accept(m) {
			good = append(good, i)
		}
	}
	var pairs []Pair
	for a := 0; a < len(good); a++ {
		for b := a + 1; b < len(good); b++ {
			pairs = append(pairs, Pair{good[a], good[b]})
		}
	}
	return pairs
}

// Find returns the first mapping in the set for the named point, if
// any.
func (s PointMappingSet) Find(name string) (PointMapping, error) {
	for _, m := range s.Mappings {
		if m.Point.Name == name {
			return m, nil
		}
	}
	return PointMapping{}, fmt.Errorf("mapping.PointMappingSet.Find: no mapping for point %q", name)
}
