package math

import "math"

// Bounds is an axis-aligned box stored as center and full size.
type Bounds struct {
	Center Vec3
	Size   Vec3
}

// EmptyMinMax returns the seed values for a min/max scan.
func EmptyMinMax() (lo, hi Vec3) {
	return Splat3(math.MaxFloat32), Splat3(-math.MaxFloat32)
}

// BoundsFromMinMax builds bounds spanning [lo, hi].
func BoundsFromMinMax(lo, hi Vec3) Bounds {
	return Bounds{
		Center: lo.Add(hi).Scale(0.5),
		Size:   hi.Sub(lo),
	}
}

// Extents returns half the size.
func (b Bounds) Extents() Vec3 {
	return b.Size.Scale(0.5)
}

// Min returns the minimum corner.
func (b Bounds) Min() Vec3 {
	return b.Center.Sub(b.Extents())
}

// Max returns the maximum corner.
func (b Bounds) Max() Vec3 {
	return b.Center.Add(b.Extents())
}

// Encapsulate grows b to include p.
func (b Bounds) Encapsulate(p Vec3) Bounds {
	return BoundsFromMinMax(b.Min().Min(p), b.Max().Max(p))
}

// Transform returns the axis-aligned bounds of the eight corners of b after
// applying m.
func (b Bounds) Transform(m Mat4) Bounds {
	lo, hi := b.Min(), b.Max()
	tlo, thi := EmptyMinMax()
	for i := 0; i < 8; i++ {
		corner := Vec3{lo.X, lo.Y, lo.Z}
		if i&1 != 0 {
			corner.X = hi.X
		}
		if i&2 != 0 {
			corner.Y = hi.Y
		}
		if i&4 != 0 {
			corner.Z = hi.Z
		}
		p := m.TransformAffine(corner)
		tlo = tlo.Min(p)
		thi = thi.Max(p)
	}
	return BoundsFromMinMax(tlo, thi)
}

// ApproxEqual compares center and size within eps.
func (b Bounds) ApproxEqual(other Bounds, eps float32) bool {
	return b.Center.ApproxEqual(other.Center, eps) && b.Size.ApproxEqual(other.Size, eps)
}
