// Package vector provides the 3-component float64 vector used for body
// positions, velocities and accelerations.
//
// Vector3 is a value type: every method returns a new vector except
// [Vector3.Accumulate], which adds in place so summation loops do not
// allocate a fresh value per term. Arithmetic is delegated to mgl64.
package vector

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Vector3 struct {
	X, Y, Z float64
}

// Zero is the additive identity.
var Zero = Vector3{}

func New(x, y, z float64) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// FromSlice builds a vector from up to three components; missing ones are 0.
func FromSlice(s []float64) Vector3 {
	var v Vector3
	if len(s) > 0 {
		v.X = s[0]
	}
	if len(s) > 1 {
		v.Y = s[1]
	}
	if len(s) > 2 {
		v.Z = s[2]
	}
	return v
}

func fromMgl(m mgl64.Vec3) Vector3 {
	return Vector3{X: m[0], Y: m[1], Z: m[2]}
}

func (v Vector3) mgl() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func (v Vector3) Add(o Vector3) Vector3 {
	return fromMgl(v.mgl().Add(o.mgl()))
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return fromMgl(v.mgl().Sub(o.mgl()))
}

func (v Vector3) Negate() Vector3 {
	return Vector3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Accumulate adds o to v in place.
func (v *Vector3) Accumulate(o Vector3) {
	v.X += o.X
	v.Y += o.Y
	v.Z += o.Z
}

func (v Vector3) Scale(s float64) Vector3 {
	return fromMgl(v.mgl().Mul(s))
}

func (v Vector3) Dot(o Vector3) float64 {
	return v.mgl().Dot(o.mgl())
}

func (v Vector3) Cross(o Vector3) Vector3 {
	return fromMgl(v.mgl().Cross(o.mgl()))
}

// MagnitudeSquared returns x²+y²+z².
func (v Vector3) MagnitudeSquared() float64 {
	return v.Dot(v)
}

// Magnitude returns the Euclidean norm. The zero vector has magnitude 0.
func (v Vector3) Magnitude() float64 {
	if v == Zero {
		return 0
	}
	return v.mgl().Len()
}

// Normalize returns the unit vector pointing along v.
func (v Vector3) Normalize() (Vector3, error) {
	m := v.Magnitude()
	if m == 0 {
		return Zero, ErrZeroLength
	}
	return v.Scale(1 / m), nil
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vector3) IsFinite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// ApproxEqual compares componentwise using mgl64.FloatEqualThreshold, which
// is relative for non-zero components.
func (v Vector3) ApproxEqual(o Vector3, tol float64) bool {
	return v.mgl().ApproxEqualThreshold(o.mgl(), tol)
}

// Slice returns the components as [x, y, z].
func (v Vector3) Slice() []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// String renders the vector as {x, y, z}.
func (v Vector3) String() string {
	return fmt.Sprintf("{%g, %g, %g}", v.X, v.Y, v.Z)
}
