package camera

import (
	"math"
	"testing"

	"github.com/itohio/camcal/x/geom"
	"github.com/itohio/camcal/x/linalg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityLensRoundTripsTanSpace(t *testing.T) {
	lens := NewCameraLens("rectilinear", 35)
	for _, tan := range []geom.TanXTanY{{0.1, 0.2}, {-0.3, 0.05}, {0, 0}, {0.4, -0.4}} {
		world := lens.TanSensorToTanWorld(tan)
		back := lens.TanWorldToTanSensor(world)
		assert.InDelta(t, tan[0], back[0], 1e-9)
		assert.InDelta(t, tan[1], back[1], 1e-9)
		// identity lens: world tan-space equals sensor tan-space
		assert.InDelta(t, tan[0], world[0], 1e-9)
		assert.InDelta(t, tan[1], world[1], 1e-9)
	}
}

func TestLensPreservesRollExactly(t *testing.T) {
	lens := CameraLens{
		Name:          "distorted",
		MMFocalLength: 24,
		Polys: LensPolys{
			StwPoly: linalg.Polynomial{Coeffs: []float64{0.2, -0.05}},
			WtsPoly: linalg.Polynomial{Coeffs: []float64{-0.15, 0.02}},
		},
	}
	tan := geom.TanXTanY{0.3, 0.5}
	wantRoll := tan.ToRollYaw().Roll

	world := lens.TanSensorToTanWorld(tan)
	assert.InDelta(t, wantRoll, world.ToRollYaw().Roll, 1e-9)
}

func TestCalibrateRecoversKnownPolynomial(t *testing.T) {
	knownStw := linalg.Polynomial{Coeffs: []float64{0.1, -0.02}}
	var sensorYaws, worldYaws []float64
	for i := 1; i <= 40; i++ {
		s := float64(i) / 40 * 1.0 // up to 1.0 rad
		sensorYaws = append(sensorYaws, s)
		worldYaws = append(worldYaws, knownStw.Calc(s))
	}
	polys, err := Calibrate(sensorYaws, worldYaws, 2, 0, 1.5)
	require.NoError(t, err)

	for _, s := range []float64{0.2, 0.5, 0.8} {
		want := knownStw.Calc(s)
		got := polys.Stw(s)
		assert.InDelta(t, want, got, 5e-3)
	}
}

func TestStwWtsApproximateInverses(t *testing.T) {
	knownStw := linalg.Polynomial{Coeffs: []float64{0.08, -0.01}}
	var sensorYaws, worldYaws []float64
	for i := 1; i <= 60; i++ {
		s := float64(i) / 60 * 1.2
		sensorYaws = append(sensorYaws, s)
		worldYaws = append(worldYaws, knownStw.Calc(s))
	}
	polys, err := Calibrate(sensorYaws, worldYaws, CalibrationOrder, 0, 1.5)
	require.NoError(t, err)

	theta := 0.5
	world := polys.Stw(theta)
	back := polys.Wts(world)
	assert.InDelta(t, theta, back, 0.05)
}

func TestMaxUsableYaw(t *testing.T) {
	lens := CameraLens{
		Name:          "x",
		MMFocalLength: 24,
		Polys: LensPolys{
			WtsPoly: linalg.Polynomial{Coeffs: []float64{0.1, 0.5}},
		},
	}
	angle, err := lens.Polys.MaxUsableYaw(0.01)
	require.NoError(t, err)
	assert.Greater(t, angle, 0.0)
	assert.False(t, math.IsNaN(angle))
}
