package locus

import (
	"math"
	"testing"

	"github.com/itohio/camcal/x/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModelLineRejectsCoincidentPoints(t *testing.T) {
	_, err := NewModelLine(geom.Point3D{1, 1, 1}, geom.Point3D{1, 1, 1})
	assert.Error(t, err)
}

func TestModelLineLengthAndMidpoint(t *testing.T) {
	line, err := NewModelLine(geom.Point3D{0, 0, 0}, geom.Point3D{3, 4, 0})
	require.NoError(t, err)
	assert.InDelta(t, 5, line.Length(), 1e-12)
	assert.Equal(t, geom.Point3D{1.5, 2, 0}, line.MidPoint())
}

func TestCosAngleSubtendedFromMidpointPerpendicular(t *testing.T) {
	line, err := NewModelLine(geom.Point3D{-1, 0, 0}, geom.Point3D{1, 0, 0})
	require.NoError(t, err)
	// Viewed from directly above the midpoint at distance 1, each
	// half-line subtends 45 degrees from vertical, so the full angle is 90.
	p := geom.Point3D{0, 1, 0}
	cosTheta := line.CosAngleSubtended(p)
	assert.InDelta(t, 0, cosTheta, 1e-9)
}

func TestSurfacePointsActuallySubtendTheta(t *testing.T) {
	line, err := NewModelLine(geom.Point3D{-1, 0, 0}, geom.Point3D{1, 0, 0})
	require.NoError(t, err)
	theta := math.Pi / 3
	mls, err := NewModelLineSubtended(line, theta)
	require.NoError(t, err)

	it := mls.Surface(8, 8)
	checked := 0
	for {
		p, ok := it.Next()
		if !ok {
			break
		}
		errAngle := mls.ErrorInPAngle(p)
		assert.InDelta(t, 0, errAngle, 1e-6)
		checked++
	}
	assert.Greater(t, checked, 0)
}

func TestNewModelLineSubtendedRejectsDegenerateTheta(t *testing.T) {
	line, err := NewModelLine(geom.Point3D{0, 0, 0}, geom.Point3D{1, 0, 0})
	require.NoError(t, err)
	_, err = NewModelLineSubtended(line, 0)
	assert.Error(t, err)
	_, err = NewModelLineSubtended(line, math.Pi)
	assert.Error(t, err)
}

func TestErrorInPAngleZeroOnSurfacePoint(t *testing.T) {
	line, err := NewModelLine(geom.Point3D{-2, 0, 0}, geom.Point3D{2, 0, 0})
	require.NoError(t, err)
	theta := math.Pi / 4
	mls, err := NewModelLineSubtended(line, theta)
	require.NoError(t, err)

	it := mls.Surface(4, 4)
	p, ok := it.Next()
	require.True(t, ok)
	assert.InDelta(t, 0, mls.ErrorInPAngle(p), 1e-6)
}
