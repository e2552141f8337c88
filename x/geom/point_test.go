package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoint3DVectorAlgebra(t *testing.T) {
	a := Point3D{1, 2, 3}
	b := Point3D{4, -1, 2}

	assert.Equal(t, Point3D{5, 1, 5}, a.Add(b))
	assert.Equal(t, Point3D{-3, 3, 1}, a.Sub(b))
	assert.Equal(t, Point3D{2, 4, 6}, a.Scale(2))
	assert.Equal(t, Point3D{-1, -2, -3}, a.Neg())
	assert.InDelta(t, 4-2+6, a.Dot(b), 1e-12)
}

func TestPoint3DCrossOrthogonal(t *testing.T) {
	a := Point3D{1, 0, 0}
	b := Point3D{0, 1, 0}
	c := a.Cross(b)
	assert.InDelta(t, 0, c.Dot(a), 1e-12)
	assert.InDelta(t, 0, c.Dot(b), 1e-12)
	assert.Equal(t, Point3D{0, 0, 1}, c)
}

func TestPoint3DNormalize(t *testing.T) {
	p := Point3D{3, 4, 0}
	n := p.Normalize()
	assert.InDelta(t, 1, n.Length(), 1e-12)
	assert.InDelta(t, 0.6, n[0], 1e-12)
	assert.InDelta(t, 0.8, n[1], 1e-12)
}

func TestPoint3DNormalizePanicsBelowThreshold(t *testing.T) {
	assert.Panics(t, func() {
		Point3D{1e-9, 0, 0}.Normalize()
	})
}

func TestUniformDistSphereStaysOnUnitSphere(t *testing.T) {
	for _, uv := range [][2]float64{{0, 0}, {0.25, 0.5}, {0.5, 0.9}, {1, 0.1}} {
		p := UniformDistSphere(uv[0], uv[1])
		assert.InDelta(t, 1, p.Length(), 1e-9)
	}
}

func TestUniformDistSphereZExtremes(t *testing.T) {
	assert.InDelta(t, -1, UniformDistSphere(0, 0)[2], 1e-12)
	assert.InDelta(t, 1, UniformDistSphere(1, 0)[2], 1e-12)
}

func TestPoint2DArithmetic(t *testing.T) {
	a := Point2D{3, 4}
	b := Point2D{1, 2}
	assert.Equal(t, Point2D{4, 6}, a.Add(b))
	assert.Equal(t, Point2D{2, 2}, a.Sub(b))
	assert.InDelta(t, 5, a.Length(), 1e-12)
	assert.InDelta(t, math.Hypot(2, 2), a.DistanceTo(b), 1e-12)
}
