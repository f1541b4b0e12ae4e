package math

import "math"

const (
	// Pi as a float32-friendly untyped constant.
	Pi = math.Pi

	// Deg2Rad converts degrees to radians.
	Deg2Rad = Pi / 180

	// Rad2Deg converts radians to degrees.
	Rad2Deg = 180 / Pi

	// Epsilon is the tolerance used when deciding whether a transform is a no-op.
	Epsilon = 0.0001
)

// Lerp interpolates between a and b without clamping t.
func Lerp(a, b, t float32) float32 {
	return a*(1-t) + b*t
}

// InverseLerp returns where value lies between a and b, clamped to [0, 1].
// Returns 0 when a == b.
func InverseLerp(a, b, value float32) float32 {
	if a == b {
		return 0
	}
	return Clamp01((value - a) / (b - a))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float32) float32 {
	return Clamp(v, 0, 1)
}

// SmoothStep is the cubic Hermite ease 3t²-2t³ for t in [0, 1].
func SmoothStep(t float32) float32 {
	t = Clamp01(t)
	return t * t * (3 - 2*t)
}

// Sign returns -1 for negative values and 1 otherwise.
func Sign(v float32) float32 {
	if v < 0 {
		return -1
	}
	return 1
}

// Sq returns v*v.
func Sq(v float32) float32 {
	return v * v
}
