package camera

import (
	"testing"

	"github.com/itohio/camcal/x/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCameraBodyValidation(t *testing.T) {
	_, err := NewCameraBody("bad", 0, 100, 36, 24)
	assert.Error(t, err)
	_, err = NewCameraBody("bad", 100, 100, 0, 24)
	assert.Error(t, err)

	b, err := NewCameraBody("ok", 4000, 3000, 36, 27)
	require.NoError(t, err)
	assert.Equal(t, "ok", b.Name)
}

func TestPxAbsRoundTrip(t *testing.T) {
	b, err := NewCameraBody("sensor", 4000, 3000, 36, 27)
	require.NoError(t, err)

	for _, px := range []geom.Point2D{{0, 0}, {4000, 3000}, {2000, 1500}, {123.4, 987.6}} {
		mm := b.PxAbsToMM(px)
		back := b.MMToPxAbs(mm)
		assert.InDelta(t, px[0], back[0], 1e-9)
		assert.InDelta(t, px[1], back[1], 1e-9)
	}
}

func TestPxAbsToPxRelCenterIsZero(t *testing.T) {
	b, err := NewCameraBody("sensor", 4000, 3000, 36, 27)
	require.NoError(t, err)
	rel := b.PxAbsToPxRel(geom.Point2D{2000, 1500})
	assert.InDelta(t, 0, rel[0], 1e-9)
	assert.InDelta(t, 0, rel[1], 1e-9)
}

func TestPxAbsToPxRelYFlips(t *testing.T) {
	b, err := NewCameraBody("sensor", 4000, 3000, 36, 27)
	require.NoError(t, err)
	top := b.PxAbsToPxRel(geom.Point2D{2000, 0})
	assert.InDelta(t, 1, top[1], 1e-9)
}

func TestPixelAspectRatioSquare(t *testing.T) {
	b, err := NewCameraBody("sensor", 4000, 2000, 40, 20)
	require.NoError(t, err)
	assert.InDelta(t, 1, b.PixelAspectRatio(), 1e-12)
}

func TestDiagonalMM(t *testing.T) {
	b, err := NewCameraBody("sensor", 100, 100, 3, 4)
	require.NoError(t, err)
	assert.InDelta(t, 5, b.DiagonalMM(), 1e-12)
}
