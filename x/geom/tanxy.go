package geom

import "math"

// TanXTanY is a direction expressed as (x/z, y/z) on the canonical image
// plane at z=1.
type TanXTanY Point2D

func (t TanXTanY) Sub(o TanXTanY) TanXTanY { return TanXTanY{t[0] - o[0], t[1] - o[1]} }

// ToUnitVector returns the unit direction in camera space corresponding
// to this tan-space point: (tx, ty, 1), normalized.
func (t TanXTanY) ToUnitVector() Point3D {
	return Point3D{t[0], t[1], 1}.Normalize()
}

// TanXTanYOfUnitVector recovers the tan-space point for a unit vector
// with positive Z. Callers must guard against vz <= 0 (behind camera).
func TanXTanYOfUnitVector(v Point3D) TanXTanY {
	return TanXTanY{v[0] / v[2], v[1] / v[2]}
}

// RollYaw represents a direction by its yaw (angle from the principal
// axis, in [0, pi/2)) and roll (clock-angle around the axis, in [-pi,
// pi]).
type RollYaw struct {
	Roll float64
	Yaw  float64
}

// ToRollYaw decomposes a tan-space direction into yaw and roll. When
// tx^2+ty^2 is near zero the roll is undefined on the axis itself; zero
// is returned rather than propagating a NaN from atan2(0,0).
func (t TanXTanY) ToRollYaw() RollYaw {
	r2 := t[0]*t[0] + t[1]*t[1]
	if r2 < 1e-18 {
		return RollYaw{Roll: 0, Yaw: 0}
	}
	return RollYaw{
		Roll: math.Atan2(t[1], t[0]),
		Yaw:  math.Atan(math.Sqrt(r2)),
	}
}

// ToTanXTanY reassembles a tan-space direction from yaw and roll.
func (ry RollYaw) ToTanXTanY() TanXTanY {
	tanYaw := math.Tan(ry.Yaw)
	return TanXTanY{tanYaw * math.Cos(ry.Roll), tanYaw * math.Sin(ry.Roll)}
}
