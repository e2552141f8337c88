package geom

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Quat is a unit quaternion representing a rigid rotation, built on top
// of gonum's quat.Number.
type Quat struct {
	quat.Number
}

// Identity is the zero rotation.
func Identity() Quat {
	return Quat{quat.Number{Real: 1}}
}

// FromRijk builds a quaternion directly from its four components. The
// result is not normalized.
func FromRijk(r, i, j, k float64) Quat {
	return Quat{quat.Number{Real: r, Imag: i, Jmag: j, Kmag: k}}
}

// FromAxisAngle builds a unit quaternion rotating by angle radians
// around axis, which need not be pre-normalized.
func FromAxisAngle(axis Point3D, angle float64) Quat {
	a := axis.Normalize()
	s := math.Sin(angle / 2)
	return Quat{quat.Number{
		Real: math.Cos(angle / 2),
		Imag: a[0] * s,
		Jmag: a[1] * s,
		Kmag: a[2] * s,
	}}
}

func (q Quat) Length() float64 {
	return math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
}

// Normalize returns q scaled to unit length. Panics if q is near zero,
// mirroring Point3D.Normalize's caller contract.
func (q Quat) Normalize() Quat {
	l := q.Length()
	if l < 1e-12 {
		panic("geom.Quat.Normalize: length below 1e-12, rotation undefined")
	}
	s := 1 / l
	return Quat{quat.Number{Real: q.Real * s, Imag: q.Imag * s, Jmag: q.Jmag * s, Kmag: q.Kmag * s}}
}

// Conj returns the conjugate (= inverse, for a unit quaternion).
func (q Quat) Conj() Quat {
	return Quat{quat.Conj(q.Number)}
}

// Mul returns q*o (apply o first, then q, when used to compose
// rotations).
func (q Quat) Mul(o Quat) Quat {
	return Quat{quat.Mul(q.Number, o.Number)}
}

func (q Quat) Scale(s float64) Quat {
	return Quat{quat.Number{Real: q.Real * s, Imag: q.Imag * s, Jmag: q.Jmag * s, Kmag: q.Kmag * s}}
}

func (q Quat) Add(o Quat) Quat {
	return Quat{quat.Number{
		Real: q.Real + o.Real,
		Imag: q.Imag + o.Imag,
		Jmag: q.Jmag + o.Jmag,
		Kmag: q.Kmag + o.Kmag,
	}}
}

// Dot is the 4-vector dot product, used to detect the double-cover sign
// flip between two quaternions that represent nearly the same rotation.
func (q Quat) Dot(o Quat) float64 {
	return q.Real*o.Real + q.Imag*o.Imag + q.Jmag*o.Jmag + q.Kmag*o.Kmag
}

// Neg flips the sign of all four components; it represents the same
// rotation as q (double cover of SO(3)).
func (q Quat) Neg() Quat {
	return Quat{quat.Number{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}}
}

// Apply rotates v by q, assuming q is a unit quaternion.
func (q Quat) Apply(v Point3D) Point3D {
	p := quat.Number{Real: 0, Imag: v[0], Jmag: v[1], Kmag: v[2]}
	r := quat.Mul(quat.Mul(q.Number, p), quat.Conj(q.Number))
	return Point3D{r.Imag, r.Jmag, r.Kmag}
}

// RotationOfVecToVec returns the shortest-arc unit quaternion rotating
// unit vector from onto unit vector to. When the vectors are nearly
// antiparallel the rotation axis is ambiguous; an arbitrary axis
// perpendicular to from is chosen.
func RotationOfVecToVec(from, to Point3D) Quat {
	f := from.Normalize()
	t := to.Normalize()
	d := f.Dot(t)
	if d > 1-1e-12 {
		return Identity()
	}
	if d < -1+1e-12 {
		axis := Point3D{1, 0, 0}.Cross(f)
		if axis.LengthSq() < 1e-12 {
			axis = Point3D{0, 1, 0}.Cross(f)
		}
		return FromAxisAngle(axis, math.Pi)
	}
	axis := f.Cross(t)
	w := 1 + d
	return Quat{quat.Number{Real: w, Imag: axis[0], Jmag: axis[1], Kmag: axis[2]}}.Normalize()
}

// LookAt builds the orientation whose local +Z axis points along
// direction and whose local +Y axis is as close to up as possible.
func LookAt(direction, up Point3D) Quat {
	fwd := direction.Normalize()
	qz := RotationOfVecToVec(Point3D{0, 0, 1}, fwd)
	rotatedY := qz.Apply(Point3D{0, 1, 0})
	upProj := up.Sub(fwd.Scale(up.Dot(fwd)))
	if upProj.LengthSq() < 1e-12 {
		return qz
	}
	upProj = upProj.Normalize()
	cosA := math.Max(-1, math.Min(1, rotatedY.Dot(upProj)))
	angle := math.Acos(cosA)
	if rotatedY.Cross(upProj).Dot(fwd) < 0 {
		angle = -angle
	}
	qroll := FromAxisAngle(fwd, angle)
	return qroll.Mul(qz).Normalize()
}

// WeightedAverageMany returns the weighted average rotation of qs,
// resolving the unit-quaternion double cover by flipping each
// quaternion into the hemisphere of the first before summing, then
// renormalizing. This is the standard linear approximation to a
// weighted geodesic mean, accurate for rotations that are reasonably
// close together.
func WeightedAverageMany(qs []Quat, weights []float64) Quat {
	if len(qs) == 0 {
		return Identity()
	}
	ref := qs[0]
	sum := quat.Number{}
	totalW := 0.0
	for i, q := range qs {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		if q.Dot(ref) < 0 {
			q = q.Neg()
		}
		sum.Real += w * q.Real
		sum.Imag += w * q.Imag
		sum.Jmag += w * q.Jmag
		sum.Kmag += w * q.Kmag
		totalW += w
	}
	if totalW == 0 {
		return ref.Normalize()
	}
	return Quat{sum}.Normalize()
}

// MarshalJSON encodes q as a [r, i, j, k] array, matching the
// serialization convention used for camera instance orientation.
func (q Quat) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{q.Real, q.Imag, q.Jmag, q.Kmag})
}

func (q *Quat) UnmarshalJSON(data []byte) error {
	var a [4]float64
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("geom.Quat.UnmarshalJSON: %w", err)
	}
	q.Number = quat.Number{Real: a[0], Imag: a[1], Jmag: a[2], Kmag: a[3]}
	return nil
}
