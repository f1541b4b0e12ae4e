package kernel

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshwarp/pkg/math"
	"github.com/Faultbox/meshwarp/pkg/spline"
)

// Tube squeezes everything within EffectRadius of the Y axis into a tube of
// Radius, over a band of Height that fades out across FallOffHeight.
type Tube struct {
	Radius        float32 `yaml:"radius"`
	EffectRadius  float32 `yaml:"effect_radius"`
	Height        float32 `yaml:"height"`
	FallOff       float32 `yaml:"falloff"`
	FallOffHeight float32 `yaml:"falloff_height"`
}

// Apply squeezes p.
func (k Tube) Apply(p math.Vec3) (math.Vec3, bool) {
	inner := max(k.Radius-k.FallOff, 0)
	top := k.Height * 0.5

	ay := math32.Abs(p.Y)
	if ay >= top+k.FallOffHeight {
		return p, false
	}
	xxzz := p.X*p.X + p.Z*p.Z
	if xxzz >= k.EffectRadius*k.EffectRadius || xxzz <= inner*inner || inner == k.EffectRadius {
		return p, false
	}
	d := math32.Sqrt(xxzz)

	goal := math.Lerp(k.Radius, inner, (d-k.EffectRadius)/(inner-k.EffectRadius))
	if k.FallOffHeight > 0 {
		goal = math.Lerp(d, goal, 1-max(ay-top, 0)/k.FallOffHeight)
	}
	mult := goal / d
	p.X *= mult
	p.Z *= mult
	return p, true
}

// Rollers feeds the mesh through a stack of rollers. The first two rollers
// form the entrance nip at z=0; each further roller wraps the flattened sheet
// half way around itself, alternating direction.
type Rollers struct {
	Radii           []float32 `yaml:"radii"`
	FlattenedHeight float32   `yaml:"flattened_height"`
}

// Kernel prepares the rollers for a batch spanning [minY, maxY].
func (k Rollers) Kernel(minY, maxY float32) Func {
	height := max(maxY, -minY)
	if len(k.Radii) < 2 || height <= 0 {
		return Identity
	}
	entrance := min(k.Radii[0], k.Radii[1])
	flat := k.FlattenedHeight / height

	// Arc length of the half turns and the height drop once past them.
	var travel, drop float32
	for i := 2; i < len(k.Radii); i++ {
		travel += k.Radii[i-1] * math.Pi
		drop -= k.Radii[i-1] * 2
	}
	exitDir := float32(1)
	if len(k.Radii)%2 != 0 {
		exitDir = -1
	}

	return func(p math.Vec3) (math.Vec3, bool) {
		if p.Z <= -entrance {
			return p, false
		}
		if p.Z < 0 {
			toRoller := entrance - math32.Sqrt(entrance*entrance-p.Z*p.Z)
			if toRoller > height {
				return p, false
			}
			p.Y *= max(toRoller, k.FlattenedHeight) / height
			return p, true
		}

		y := p.Y * flat
		if p.Z > travel {
			p.Z = (p.Z - travel) * exitDir
			p.Y = drop + y*exitDir
			return p, true
		}

		var yPos, soFar float32
		zSign := float32(1)
		for i := 2; i < len(k.Radii); i++ {
			r := k.Radii[i-1]
			yPos -= r
			half := r * math.Pi
			if p.Z < soFar+half {
				angle := math.Pi * (p.Z - soFar) / half
				s, c := math32.Sincos(angle)
				arm := r + y*zSign
				p.Z = arm * s * zSign
				p.Y = arm*c + yPos
				return p, true
			}
			soFar += half
			zSign = -zSign
			yPos -= r
		}
		p.Y = y
		return p, true
	}
}

// CylinderSpline pushes vertices out of a lathe whose radius along Y follows
// a smooth profile through Widths, spread evenly over Height.
type CylinderSpline struct {
	Height   float32   `yaml:"height"`
	FallOff  float32   `yaml:"falloff"`
	Segments int       `yaml:"segments"`
	Widths   []float32 `yaml:"widths"`
}

// ControlPoints returns the (height, radius) knots for Widths.
func (k CylinderSpline) ControlPoints() []math.Vec2 {
	points := make([]math.Vec2, len(k.Widths))
	last := float32(len(k.Widths) - 1)
	for i, w := range k.Widths {
		points[i] = math.Vec2{X: float32(i)/last*k.Height - k.Height*0.5, Y: w}
	}
	return points
}

// Profile resamples the control points into a lookup table.
func (k CylinderSpline) Profile() (spline.Profile, error) {
	points, err := spline.InterpolateXY(k.ControlPoints(), k.Segments)
	if err != nil {
		return spline.Profile{}, err
	}
	return spline.NewProfile(points), nil
}

// Kernel prepares the lathe push for a profile built by Profile.
func (k CylinderSpline) Kernel(profile spline.Profile) Func {
	if k.Height == 0 || profile.Empty() || profile.MaxRadius() == 0 {
		return Identity
	}
	top, bottom := k.Height*0.5, -k.Height*0.5
	reach := profile.MaxRadius() + k.FallOff
	reachSq := reach * reach

	return func(p math.Vec3) (math.Vec3, bool) {
		if p.Y >= top || p.Y <= bottom {
			return p, false
		}
		xxzz := p.X*p.X + p.Z*p.Z
		if xxzz >= reachSq || xxzz == 0 {
			return p, false
		}
		radius := profile.Radius(p.Y)
		if radius <= 0 {
			return p, false
		}
		d := math32.Sqrt(xxzz)
		if d > radius+k.FallOff {
			return p, false
		}
		mult := 1 + radius/d - radius/(radius+k.FallOff)
		p.X *= mult
		p.Z *= mult
		return p, true
	}
}
