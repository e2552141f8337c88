package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityAppliesNoRotation(t *testing.T) {
	v := Point3D{1, 2, 3}
	assert.Equal(t, v, Identity().Apply(v))
}

func TestFromAxisAngleRotatesQuarterTurn(t *testing.T) {
	q := FromAxisAngle(Point3D{0, 0, 1}, math.Pi/2)
	got := q.Apply(Point3D{1, 0, 0})
	assert.InDelta(t, 0, got[0], 1e-9)
	assert.InDelta(t, 1, got[1], 1e-9)
	assert.InDelta(t, 0, got[2], 1e-9)
}

func TestQuatConjIsInverseForUnitQuat(t *testing.T) {
	q := FromAxisAngle(Point3D{1, 1, 0}, 0.7)
	v := Point3D{0.2, -0.5, 1.3}
	roundTripped := q.Conj().Apply(q.Apply(v))
	assert.InDelta(t, v[0], roundTripped[0], 1e-9)
	assert.InDelta(t, v[1], roundTripped[1], 1e-9)
	assert.InDelta(t, v[2], roundTripped[2], 1e-9)
}

func TestRotationOfVecToVecAlignsVectors(t *testing.T) {
	from := Point3D{1, 0, 0}
	to := Point3D{0, 1, 0}
	q := RotationOfVecToVec(from, to)
	got := q.Apply(from)
	assert.InDelta(t, to[0], got[0], 1e-9)
	assert.InDelta(t, to[1], got[1], 1e-9)
	assert.InDelta(t, to[2], got[2], 1e-9)
}

func TestRotationOfVecToVecIdenticalIsIdentity(t *testing.T) {
	v := Point3D{0.3, 0.4, 0.866}
	q := RotationOfVecToVec(v, v)
	assert.Equal(t, Identity(), q)
}

func TestRotationOfVecToVecAntiparallel(t *testing.T) {
	from := Point3D{1, 0, 0}
	to := Point3D{-1, 0, 0}
	q := RotationOfVecToVec(from, to)
	got := q.Apply(from)
	assert.InDelta(t, to[0], got[0], 1e-9)
	assert.InDelta(t, to[1], got[1], 1e-9)
	assert.InDelta(t, to[2], got[2], 1e-9)
}

func TestWeightedAverageManySingleInputReturnsItself(t *testing.T) {
	q := FromAxisAngle(Point3D{0, 1, 0}, 0.4)
	avg := WeightedAverageMany([]Quat{q}, nil)
	assert.InDelta(t, 1, math.Abs(avg.Dot(q)), 1e-9)
}

func TestWeightedAverageManyHandlesDoubleCover(t *testing.T) {
	q := FromAxisAngle(Point3D{0, 0, 1}, 0.9)
	neg := q.Neg()
	avg := WeightedAverageMany([]Quat{q, neg}, []float64{1, 1})
	// q and -q represent the same rotation; the average should too.
	v := Point3D{1, 0, 0}
	assert.InDelta(t, q.Apply(v)[0], avg.Apply(v)[0], 1e-9)
	assert.InDelta(t, q.Apply(v)[1], avg.Apply(v)[1], 1e-9)
}

func TestQuatJSONRoundTrip(t *testing.T) {
	q := FromAxisAngle(Point3D{1, 2, 3}, 1.1).Normalize()
	data, err := q.MarshalJSON()
	require.NoError(t, err)
	var back Quat
	require.NoError(t, back.UnmarshalJSON(data))
	assert.InDelta(t, q.Real, back.Real, 1e-12)
	assert.InDelta(t, q.Imag, back.Imag, 1e-12)
	assert.InDelta(t, q.Jmag, back.Jmag, 1e-12)
	assert.InDelta(t, q.Kmag, back.Kmag, 1e-12)
}
