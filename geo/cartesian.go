package geo

import "math"

// Cartesian3 is a point or vector in earth-centered, earth-fixed
// coordinates, in meters.
type Cartesian3 struct {
	X float64
	Y float64
	Z float64
}

func Add(a, b Cartesian3) Cartesian3 {
	return Cartesian3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func Sub(a, b Cartesian3) Cartesian3 {
	return Cartesian3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func Mul(v Cartesian3, s float64) Cartesian3 {
	return Cartesian3{v.X * s, v.Y * s, v.Z * s}
}

func Cross(a, b Cartesian3) Cartesian3 {
	return Cartesian3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (v Cartesian3) Dot(o Cartesian3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Cartesian3) MagnitudeSquared() float64 {
	return v.Dot(v)
}

func (v Cartesian3) Magnitude() float64 {
	return math.Sqrt(v.MagnitudeSquared())
}

// Normalize returns the unit vector pointing in the direction of v. The
// zero vector is returned unchanged.
func (v Cartesian3) Normalize() Cartesian3 {
	m := v.Magnitude()
	if m == 0 {
		return v
	}
	return Mul(v, 1/m)
}

func (v Cartesian3) Equal(o Cartesian3) bool {
	return v.X == o.X && v.Y == o.Y && v.Z == o.Z
}

func (v Cartesian3) EqualWithEpsilon(o Cartesian3, epsilon float64) bool {
	return EqualWithEpsilon(v.X, o.X, epsilon) &&
		EqualWithEpsilon(v.Y, o.Y, epsilon) &&
		EqualWithEpsilon(v.Z, o.Z, epsilon)
}

func EqualWithEpsilon(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// Ray is a half-line starting at Origin extending along Direction.
type Ray struct {
	Origin    Cartesian3
	Direction Cartesian3
}

// Point returns the position at distance t along the ray.
func (r Ray) Point(t float64) Cartesian3 {
	return Add(r.Origin, Mul(r.Direction, t))
}
