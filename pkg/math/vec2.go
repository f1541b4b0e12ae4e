package math

import "github.com/chewxy/math32"

// Vec2 is a point on a spline profile, X along the axis and Y the radius.
// RectanglePush also uses it for a plane size in X and Z.
type Vec2 struct {
	X, Y float32
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Length returns the magnitude; for XZ projections this is the radial
// distance from the Y axis.
func (v Vec2) Length() float32 {
	return math32.Hypot(v.X, v.Y)
}

// Distance returns the distance between two profile points.
func (v Vec2) Distance(other Vec2) float32 {
	return v.Sub(other).Length()
}
