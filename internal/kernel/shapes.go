package kernel

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshwarp/pkg/math"
)

// Sphere projects vertices relative to a sphere at the origin.
type Sphere struct {
	Radius  float32 `yaml:"radius"`
	FallOff float32 `yaml:"falloff"`
	Mode    Mode    `yaml:"mode"`
}

// Distance is the quantity reduced for the farthest-distance aggregate.
func (k Sphere) Distance(p math.Vec3) float32 {
	return p.Length()
}

// Kernel prepares the sphere kernel for the given farthest distance.
func (k Sphere) Kernel(farthest float32) Func {
	shell := Shell{Mode: k.Mode, Radius: k.Radius, FallOff: k.FallOff, Farthest: farthest}
	return func(p math.Vec3) (math.Vec3, bool) {
		d := p.Length()
		nd, ok := shell.Remap(d)
		if !ok {
			return p, false
		}
		return p.Scale(nd / d), true
	}
}

// Capsule projects vertices relative to a Y-aligned capsule: a cylinder of
// Height between the centers of two hemispherical caps.
type Capsule struct {
	Radius  float32 `yaml:"radius"`
	Height  float32 `yaml:"height"`
	FallOff float32 `yaml:"falloff"`
	Mode    Mode    `yaml:"mode"`
}

// capsuleOffset returns the vector from the closest point on the capsule's
// core segment to p.
func (k Capsule) capsuleOffset(p math.Vec3) math.Vec3 {
	top := k.Height * 0.5
	past := max(math32.Abs(p.Y)-top, 0)
	return math.Vec3{X: p.X, Y: past * math.Sign(p.Y), Z: p.Z}
}

// Distance is the distance from the capsule's core segment.
func (k Capsule) Distance(p math.Vec3) float32 {
	return k.capsuleOffset(p).Length()
}

// Kernel prepares the capsule kernel for the given farthest distance.
func (k Capsule) Kernel(farthest float32) Func {
	shell := Shell{Mode: k.Mode, Radius: k.Radius, FallOff: k.FallOff, Farthest: farthest}
	top := k.Height * 0.5
	return func(p math.Vec3) (math.Vec3, bool) {
		off := k.capsuleOffset(p)
		d := off.Length()
		nd, ok := shell.Remap(d)
		if !ok {
			return p, false
		}
		mult := nd / d
		out := math.Vec3{X: p.X * mult, Y: p.Y, Z: p.Z * mult}
		if off.Y != 0 {
			out.Y = (math32.Abs(off.Y)*mult + top) * math.Sign(p.Y)
		}
		return out, true
	}
}

// Cube projects vertices relative to an axis-aligned box of Size centered on
// the origin. Each axis is handled against its own half size.
type Cube struct {
	Size    math.Vec3 `yaml:"size"`
	FallOff float32   `yaml:"falloff"`
	Mode    Mode      `yaml:"mode"`
}

// Kernel prepares the cube kernel. lo and hi are the batch-wide vertex
// extents, read by Inside and Both.
func (k Cube) Kernel(lo, hi math.Vec3) Func {
	half := k.Size.Scale(0.5)
	far := lo.Abs().Max(hi.Abs())
	f := max(k.FallOff, 0)

	switch k.Mode {
	case Inside:
		return func(p math.Vec3) (math.Vec3, bool) {
			return cubeInside(p, half, far, f)
		}
	case Both:
		return func(p math.Vec3) (math.Vec3, bool) {
			return cubeBoth(p, half, far, f)
		}
	default:
		return func(p math.Vec3) (math.Vec3, bool) {
			return cubeOutside(p, half, f)
		}
	}
}

func cubeOutside(p, half math.Vec3, f float32) (math.Vec3, bool) {
	changed := false
	for axis := 0; axis < 3; axis++ {
		c := p.Component(axis)
		s := Shell{Mode: Outside, Radius: half.Component(axis), FallOff: f}
		if nd, ok := s.Remap(math32.Abs(c)); ok {
			p = p.WithComponent(axis, nd*math.Sign(c))
			changed = true
		}
	}
	return p, changed
}

func cubeInside(p, half, far math.Vec3, f float32) (math.Vec3, bool) {
	// Push along the axis whose expanded face is nearest.
	best := -1
	var bestGap float32
	var bestShell Shell
	for axis := 0; axis < 3; axis++ {
		h := half.Component(axis)
		s := Shell{Mode: Inside, Radius: h, FallOff: f, Farthest: far.Component(axis)}
		outer := h + f
		if s.Farthest > h {
			outer = min(outer, s.Farthest)
		}
		c := math32.Abs(p.Component(axis))
		if c >= outer {
			return p, false
		}
		if gap := outer - c; best < 0 || gap < bestGap {
			best, bestGap, bestShell = axis, gap, s
		}
	}

	c := p.Component(best)
	nd, ok := bestShell.Remap(math32.Abs(c))
	if !ok {
		return p, false
	}
	return p.WithComponent(best, nd*math.Sign(c)), true
}

func cubeBoth(p, half, far math.Vec3, f float32) (math.Vec3, bool) {
	a := p.Abs()
	inside := a.X < half.X && a.Y < half.Y && a.Z < half.Z

	if inside {
		best := 0
		bestGap := half.X - a.X
		for axis := 1; axis < 3; axis++ {
			if gap := half.Component(axis) - a.Component(axis); gap < bestGap {
				best, bestGap = axis, gap
			}
		}
		s := Shell{Mode: Both, Radius: half.Component(best), FallOff: f}
		c := p.Component(best)
		nd, ok := s.Remap(math32.Abs(c))
		if !ok {
			return p, false
		}
		return p.WithComponent(best, nd*math.Sign(c)), true
	}

	changed := false
	for axis := 0; axis < 3; axis++ {
		s := Shell{Mode: Both, Radius: half.Component(axis), FallOff: f, Farthest: far.Component(axis)}
		c := p.Component(axis)
		if math32.Abs(c) <= s.Radius {
			continue
		}
		if nd, ok := s.Remap(math32.Abs(c)); ok {
			p = p.WithComponent(axis, nd*math.Sign(c))
			changed = true
		}
	}
	return p, changed
}
