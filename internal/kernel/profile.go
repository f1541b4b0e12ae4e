package kernel

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshwarp/pkg/math"
)

// Bulge scales the XZ radius by a parabola between Bottom and Top, peaking
// at 1+Amount halfway.
type Bulge struct {
	Amount float32 `yaml:"amount"`
	Top    float32 `yaml:"top"`
	Bottom float32 `yaml:"bottom"`
	// Smooth eases the parabola parameter with a smoothstep.
	Smooth bool `yaml:"smooth"`
}

// Apply bulges p.
func (k Bulge) Apply(p math.Vec3) (math.Vec3, bool) {
	if p.Y <= k.Bottom || p.Y >= k.Top {
		return p, false
	}
	t := (p.Y - k.Bottom) / (k.Top - k.Bottom)
	if k.Smooth {
		t = math.SmoothStep(t)
	}
	mult := -4*k.Amount*(t*t-t) + 1
	return math.Vec3{X: p.X * mult, Y: p.Y, Z: p.Z * mult}, true
}

// Stretch moves the band [Bottom, Top] so that Bottom lands on BottomAfter
// and Top on TopAfter, for vertices within Radius of the Y axis.
type Stretch struct {
	Radius      float32 `yaml:"radius"`
	Top         float32 `yaml:"top"`
	TopAfter    float32 `yaml:"top_after"`
	Bottom      float32 `yaml:"bottom"`
	BottomAfter float32 `yaml:"bottom_after"`
}

// Apply stretches p.
func (k Stretch) Apply(p math.Vec3) (math.Vec3, bool) {
	if k.Radius <= 0 || k.Top == k.Bottom {
		return p, false
	}
	if p.X*p.X+p.Z*p.Z > k.Radius*k.Radius {
		return p, false
	}
	topMove := k.TopAfter - k.Top
	bottomMove := k.BottomAfter - k.Bottom
	t := math.Clamp01((p.Y - k.Bottom) / (k.Top - k.Bottom))
	p.Y += math.Lerp(bottomMove, topMove, t)
	return p, true
}

// Wave offsets Y by a cosine along X and another along Z.
type Wave struct {
	HeightX   float32 `yaml:"height_x"`
	DistanceX float32 `yaml:"distance_x"`
	OffsetX   float32 `yaml:"offset_x"`
	HeightZ   float32 `yaml:"height_z"`
	DistanceZ float32 `yaml:"distance_z"`
	OffsetZ   float32 `yaml:"offset_z"`
}

// Apply waves p.
func (k Wave) Apply(p math.Vec3) (math.Vec3, bool) {
	var dy float32
	changed := false
	if k.HeightX != 0 && k.DistanceX != 0 {
		dy += math32.Cos((p.X+k.OffsetX)*2*math.Pi/k.DistanceX) * k.HeightX
		changed = true
	}
	if k.HeightZ != 0 && k.DistanceZ != 0 {
		dy += math32.Cos((p.Z+k.OffsetZ)*2*math.Pi/k.DistanceZ) * k.HeightZ
		changed = true
	}
	if !changed {
		return p, false
	}
	p.Y += dy
	return p, true
}
