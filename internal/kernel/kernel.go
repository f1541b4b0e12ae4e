// Package kernel contains the per-vertex shape functions behind every
// deformer.
//
// A kernel maps a position in the deformer's local space to a new position.
// Y is the height axis and the radial distance is measured in the XZ plane
// unless a kernel says otherwise. Kernels are pure: they read only their
// parameters and the input position, so they can run on any worker for any
// index range.
//
// The second return value reports whether the vertex was changed. When it is
// false the returned position is the input unchanged; this covers vertices
// outside the area of effect and every case where a divisor would be zero.
package kernel

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshwarp/pkg/math"
)

// Func is a prepared kernel ready to run over a vertex buffer.
type Func func(p math.Vec3) (math.Vec3, bool)

// Identity leaves every vertex untouched.
func Identity(p math.Vec3) (math.Vec3, bool) {
	return p, false
}

// Run applies fn to vertices[start:end] in place.
func Run(fn Func, vertices []math.Vec3, start, end int) {
	for i := start; i < end; i++ {
		if p, ok := fn(vertices[i]); ok {
			vertices[i] = p
		}
	}
}

// Matrix returns a kernel applying an affine matrix to every vertex.
func Matrix(m math.Mat4) Func {
	return func(p math.Vec3) (math.Vec3, bool) {
		return m.TransformAffine(p), true
	}
}

// lengthXZ returns the distance from the Y axis.
func lengthXZ(p math.Vec3) float32 {
	return math32.Sqrt(p.X*p.X + p.Z*p.Z)
}

// sideFalloff is the blend weight for a strip of the given half width with a
// soft edge of width fallOff: 1 inside the strip, fading to 0 at the edge.
func sideFalloff(ax, halfWidth, fallOff float32) float32 {
	dist := ax - halfWidth
	if fallOff <= 0 {
		if dist > 0 {
			return 0
		}
		return 1
	}
	return math.InverseLerp(fallOff, 0, dist)
}
