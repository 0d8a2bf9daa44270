// Package math provides the small vector types shared by the mesh model and the patch engine.
package math

import "math"

// Vec2 is a 2D vector, used for texture coordinates and UV scales.
type Vec2 struct {
	U, V float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.U + other.U, v.V + other.V}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.U - other.U, v.V - other.V}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.U * s, v.V * s}
}

// Div returns v / scalar. Division by zero follows IEEE 754.
func (v Vec2) Div(s float32) Vec2 {
	return Vec2{v.U / s, v.V / s}
}

// Abs returns the component-wise absolute value.
func (v Vec2) Abs() Vec2 {
	return Vec2{float32(math.Abs(float64(v.U))), float32(math.Abs(float64(v.V)))}
}

// Recip returns the component-wise reciprocal.
func (v Vec2) Recip() Vec2 {
	return Vec2{1 / v.U, 1 / v.V}
}

// Min returns the smaller component.
func (v Vec2) Min() float32 {
	return min(v.U, v.V)
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.U*v.U + v.V*v.V)))
}

// Uniform returns a Vec2 with both components set to s.
func Uniform(s float32) Vec2 {
	return Vec2{s, s}
}
