package ray

import (
	"testing"

	"github.com/itohio/camcal/x/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClosestPointTwoRaysThatActuallyIntersect(t *testing.T) {
	r1 := geom.NewRay(geom.Point3D{0, 0, 0}, geom.Point3D{1, 0, 0}, 0)
	r2 := geom.NewRay(geom.Point3D{5, -5, 0}, geom.Point3D{0, 1, 0}, 0)
	p, err := ClosestPoint([]geom.Ray{r1, r2}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 5, p[0], 1e-9)
	assert.InDelta(t, 0, p[1], 1e-9)
	assert.InDelta(t, 0, p[2], 1e-9)
}

func TestClosestPointNonIntersectingSkewRays(t *testing.T) {
	// Two skew rays whose lines pass about 5 apart; with equal weights
	// the best point lies midway, about 2.5 from each.
	r1 := geom.NewRay(geom.Point3D{0, 0, 0}, geom.Point3D{1, 0, 0}, 0)
	r2 := geom.NewRay(geom.Point3D{0, 0, 5}, geom.Point3D{0, 1, 0.01}, 0)
	p, err := ClosestPoint([]geom.Ray{r1, r2}, nil)
	require.NoError(t, err)
	residuals := Residuals([]geom.Ray{r1, r2}, p)
	for _, res := range residuals {
		assert.InDelta(t, 2.5, res, 1e-3)
	}
}

func TestClosestPointParallelRaysAreDegenerate(t *testing.T) {
	r1 := geom.NewRay(geom.Point3D{0, 0, 0}, geom.Point3D{1, 0, 0}, 0)
	r2 := geom.NewRay(geom.Point3D{0, 1, 0}, geom.Point3D{1, 0, 0}, 0)
	_, err := ClosestPoint([]geom.Ray{r1, r2}, nil)
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestClosestPointTooFewRays(t *testing.T) {
	r1 := geom.NewRay(geom.Point3D{0, 0, 0}, geom.Point3D{1, 0, 0}, 0)
	_, err := ClosestPoint([]geom.Ray{r1}, nil)
	assert.ErrorIs(t, err, ErrTooFewRays)
}

func TestResidualsZeroOnRayItself(t *testing.T) {
	r := geom.NewRay(geom.Point3D{0, 0, 0}, geom.Point3D{0, 0, 1}, 0)
	res := Residuals([]geom.Ray{r}, geom.Point3D{0, 0, 10})
	assert.InDelta(t, 0, res[0], 1e-9)
}

func TestDefaultWeightUsesInverseVarianceOfTanError(t *testing.T) {
	r := geom.Ray{TanError: 2}
	assert.InDelta(t, 0.25, DefaultWeight(0, r), 1e-12)
	r.TanError = 0
	assert.Equal(t, 1.0, DefaultWeight(0, r))
}
