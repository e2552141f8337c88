package locus

import (
	"math"

	"github.com/itohio/camcal/x/geom"
)

// parametricPoint evaluates points on a ModelLineSubtended's torus
// surface given a phi (rotation around the line's axis) and theta
// (position around the generating circle).
type parametricPoint struct {
	torusCenter  geom.Point3D
	torusRadius  float64
	circleRadius float64
	dx, dy, dz   geom.Point3D

	phiCircleCenter geom.Point3D
	phiDxy          geom.Point3D
}

func newParametricPoint(m ModelLineSubtended) *parametricPoint {
	dz := m.Line.Direction().Normalize()
	dx := m.Line.UnitPerpendicular()
	dy := dz.Cross(dx)
	p := &parametricPoint{
		torusCenter:  m.midPoint,
		torusRadius:  m.TorusRadius(),
		circleRadius: m.circleRadius,
		dx:           dx,
		dy:           dy,
		dz:           dz,
	}
	p.deriveFromPhi(0)
	return p
}

func (p *parametricPoint) deriveFromPhi(phi float64) {
	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)
	rCos := cosPhi * p.torusRadius
	rSin := sinPhi * p.torusRadius
	p.phiCircleCenter = p.torusCenter.Add(p.dx.Scale(rCos)).Add(p.dy.Scale(rSin))
	p.phiDxy = p.dx.Scale(cosPhi * p.circleRadius).Add(p.dy.Scale(sinPhi * p.circleRadius))
}

func (p *parametricPoint) ptOfTheta(theta float64) geom.Point3D {
	cosTheta, sinTheta := math.Cos(theta), math.Sin(theta)
	return p.phiCircleCenter.Sub(p.phiDxy.Scale(cosTheta)).Add(p.dz.Scale(sinTheta * p.circleRadius))
}

// SurfaceIter walks an nPhi x nTheta grid of points over a
// ModelLineSubtended's torus, skipping the band around the model line
// itself where the torus degenerates.
type SurfaceIter struct {
	nPhi, nTheta int
	iPhi, iTheta int

	phiPerI   float64
	thetaPerI float64
	thetaBase float64

	pt *parametricPoint
}

func newSurfaceIter(m ModelLineSubtended, nPhi, nTheta int) *SurfaceIter {
	if nPhi < 1 {
		nPhi = 1
	}
	if nTheta < 2 {
		nTheta = 2
	}
	thetaRange := 2*math.Pi - 2*m.Theta
	thetaPerI := thetaRange / float64(nTheta+1)
	return &SurfaceIter{
		nPhi:      nPhi,
		nTheta:    nTheta,
		phiPerI:   2 * math.Pi / float64(nPhi),
		thetaPerI: thetaPerI,
		thetaBase: m.Theta + thetaPerI,
		pt:        newParametricPoint(m),
	}
}

// Next returns the next surface point and true, or the zero point and
// false once the grid is exhausted.
func (it *SurfaceIter) Next() (geom.Point3D, bool) {
	for {
		if it.iPhi >= it.nPhi {
			return geom.Point3D{}, false
		}
		if it.iTheta >= it.nTheta {
			it.iPhi++
			it.iTheta = 0
			if it.iPhi >= it.nPhi {
				return geom.Point3D{}, false
			}
			it.pt.deriveFromPhi(it.phiPerI * float64(it.iPhi))
			continue
		}
		theta := it.thetaBase + it.thetaPerI*float64(it.iTheta)
		it.iTheta++
		return it.pt.ptOfTheta(theta), true
	}
}

// All drains the iterator into a slice, mainly for tests.
func (it *SurfaceIter) All() []geom.Point3D {
	var out []geom.Point3D
	for {
		p, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, p)
	}
}
