package kernel

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshwarp/pkg/math"
)

// Suction pulls vertices towards a target by up to Power units. The pull is
// full at FullPowerDistance and fades linearly to nothing at
// ZeroPowerDistance.
type Suction struct {
	ZeroPowerDistance float32 `yaml:"zero_power_distance"`
	FullPowerDistance float32 `yaml:"full_power_distance"`
	Power             float32 `yaml:"power"`
}

// scale returns the factor that moves a vertex at distance d from its target
// by the pull for that distance, never past the target.
func (k Suction) scale(d float32) (float32, bool) {
	if d >= k.ZeroPowerDistance || d <= 0 || k.Power <= 0 {
		return 1, false
	}
	if k.ZeroPowerDistance == k.FullPowerDistance {
		if k.Power <= d {
			return 1 - k.Power/d, true
		}
		return 0, true
	}
	move := min((d-k.ZeroPowerDistance)*k.Power/(k.FullPowerDistance-k.ZeroPowerDistance), k.Power)
	if move <= 0 {
		return 1, false
	}
	if move <= d {
		return 1 - move/d, true
	}
	return 0, true
}

// SuctionPoint pulls towards the origin.
type SuctionPoint struct {
	Suction `yaml:",inline"`
}

// Apply pulls p.
func (k SuctionPoint) Apply(p math.Vec3) (math.Vec3, bool) {
	mult, ok := k.scale(p.Length())
	if !ok {
		return p, false
	}
	return p.Scale(mult), true
}

// SuctionLine pulls towards the Y axis segment of LineLength centered on the
// origin.
type SuctionLine struct {
	Suction    `yaml:",inline"`
	LineLength float32 `yaml:"line_length"`
}

// Apply pulls p.
func (k SuctionLine) Apply(p math.Vec3) (math.Vec3, bool) {
	half := k.LineLength * 0.5
	yc := math.Clamp(p.Y, -half, half)
	yd := p.Y - yc
	d := math32.Sqrt(p.X*p.X + p.Z*p.Z + yd*yd)

	mult, ok := k.scale(d)
	if !ok {
		return p, false
	}
	return math.Vec3{X: p.X * mult, Y: yd*mult + yc, Z: p.Z * mult}, true
}

// SuctionCircle pulls towards a disc of Radius in the XZ plane.
type SuctionCircle struct {
	Suction `yaml:",inline"`
	Radius  float32 `yaml:"radius"`
}

// Apply pulls p.
func (k SuctionCircle) Apply(p math.Vec3) (math.Vec3, bool) {
	if k.Radius <= 0 {
		return SuctionPoint{k.Suction}.Apply(p)
	}
	toDisc := k.Radius / max(lengthXZ(p), k.Radius)
	closest := math.Vec3{X: p.X * toDisc, Z: p.Z * toDisc}

	mult, ok := k.scale(p.Distance(closest))
	if !ok {
		return p, false
	}
	return math.Vec3{
		X: math.Lerp(closest.X, p.X, mult),
		Y: p.Y * mult,
		Z: math.Lerp(closest.Z, p.Z, mult),
	}, true
}
