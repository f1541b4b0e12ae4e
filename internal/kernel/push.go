package kernel

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshwarp/pkg/math"
)

// CapsuleXZ pushes vertices out of a Y-aligned capsule in the XZ plane and
// can additionally lift the pushed vertices along Y.
type CapsuleXZ struct {
	Radius  float32 `yaml:"radius"`
	Height  float32 `yaml:"height"`
	FallOff float32 `yaml:"falloff"`
	// Push lifts vertices along Y, fully at the surface and fading out
	// across the falloff band.
	Push float32 `yaml:"push"`
}

// Apply pushes p.
func (k CapsuleXZ) Apply(p math.Vec3) (math.Vec3, bool) {
	r, f := k.Radius, k.FallOff
	top := k.Height * 0.5
	outer := r + f

	xxzz := p.X*p.X + p.Z*p.Z
	if xxzz >= outer*outer || xxzz == 0 {
		return p, false
	}
	ay := math32.Abs(p.Y)
	if ay >= top+r {
		return p, false
	}
	d := math32.Sqrt(xxzz)

	radius := r
	lift := float32(1)
	if ay > top {
		dy := ay - top
		radius = math32.Sqrt(r*r - dy*dy)
		lift = (top + r - ay) / r
	}
	band := radius + f
	if d >= band || band <= 0 {
		return p, false
	}

	target := radius + f*d/band
	mult := target / d
	p.X *= mult
	p.Z *= mult
	if k.Push != 0 {
		p.Y += k.Push * math.InverseLerp(band, radius, d) * lift
	}
	return p, true
}

// SpherePush lifts vertices above the XZ plane over a sphere whose top sits
// at Height/2 + Radius.
type SpherePush struct {
	Radius  float32 `yaml:"radius"`
	Height  float32 `yaml:"height"`
	FallOff float32 `yaml:"falloff"`
}

// Apply pushes p.
func (k SpherePush) Apply(p math.Vec3) (math.Vec3, bool) {
	if p.Y <= 0 {
		return p, false
	}
	r, f := k.Radius, k.FallOff
	top := k.Height * 0.5
	xxzz := p.X*p.X + p.Z*p.Z

	if f <= 0 {
		if xxzz >= r*r {
			return p, false
		}
		newY := top + math32.Sqrt(r*r-xxzz)
		if p.Y > newY {
			return p, false
		}
		p.Y = newY
		return p, true
	}

	outer := r + f
	if xxzz >= outer*outer {
		return p, false
	}

	var minY, maxY float32
	if xxzz < r*r {
		minY = top + math32.Sqrt(r*r-xxzz)
		maxY = minY + f
	} else {
		minY = top * (outer - math32.Sqrt(xxzz)) / f
		maxY = top + f
	}
	if maxY <= 0 || p.Y > maxY {
		return p, false
	}
	p.Y += minY * (1 - p.Y/maxY)
	return p, true
}

// RectanglePush lifts vertices above a rectangle in the XZ plane to
// PushDistance, softening the edges with FallOffSides.
type RectanglePush struct {
	FallOff      float32   `yaml:"falloff"`
	Size         math.Vec2 `yaml:"size"`
	PushDistance float32   `yaml:"push_distance"`
	FallOffSides float32   `yaml:"falloff_sides"`
}

// Apply pushes p.
func (k RectanglePush) Apply(p math.Vec3) (math.Vec3, bool) {
	span := k.PushDistance + k.FallOff
	if p.Y <= 0 || p.Y >= span {
		return p, false
	}
	halfX, halfZ := k.Size.X*0.5, k.Size.Y*0.5
	ax, az := math32.Abs(p.X), math32.Abs(p.Z)
	if ax >= halfX+k.FallOffSides || az >= halfZ+k.FallOffSides {
		return p, false
	}

	newY := p.Y*k.FallOff/span + k.PushDistance
	if k.FallOffSides > 0 {
		edge := max(ax-halfX, az-halfZ, 0)
		p.Y = math.Lerp(newY, p.Y, edge/k.FallOffSides)
	} else {
		p.Y = newY
	}
	return p, true
}
