package kernel

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshwarp/pkg/math"
)

// Twist rotates vertices around the Y axis by an angle that grows with height.
type Twist struct {
	// Rotations is the number of full turns reached at FallOff height.
	Rotations float32 `yaml:"rotations"`
	// FallOff is the height over which the rotation ramps in. Zero or less
	// rotates every vertex above the origin by the full amount.
	FallOff float32 `yaml:"falloff"`
	// MiddleWidth scales the XZ radius at half of FallOff; 1 disables it.
	MiddleWidth float32 `yaml:"middle_width"`
}

// Apply twists p. Vertices below the origin are skipped.
func (k Twist) Apply(p math.Vec3) (math.Vec3, bool) {
	if p.Y < 0 {
		return p, false
	}

	var angle float32
	if k.FallOff <= 0 {
		angle = k.Rotations * 2 * math.Pi
	} else {
		angle = k.Rotations * 2 * math.Pi / k.FallOff * min(p.Y, k.FallOff)
	}

	s, c := math32.Sincos(angle)
	x := c*p.X - s*p.Z
	z := s*p.X + c*p.Z

	if k.MiddleWidth != 1 && k.FallOff > 0 {
		t := 1 - 2*p.Y/k.FallOff
		width := math.Lerp(k.MiddleWidth, 1, min(t*t, 1))
		x *= width
		z *= width
	}
	return math.Vec3{X: x, Y: p.Y, Z: z}, true
}

// Bend curls the Y axis into an arc around a point on +X.
type Bend struct {
	// Angle is the total bend in degrees reached at Length.
	Angle float32 `yaml:"angle"`
	// Length is the height of the bent section.
	Length float32 `yaml:"length"`
	// Limited keeps vertices below the origin straight and continues
	// vertices above Length along the tangent at the end of the arc.
	Limited bool `yaml:"limited"`
}

// Apply bends p.
func (k Bend) Apply(p math.Vec3) (math.Vec3, bool) {
	if k.Limited {
		return k.applyLimited(p)
	}
	return k.applyUnlimited(p)
}

func (k Bend) applyLimited(p math.Vec3) (math.Vec3, bool) {
	angleRad := k.Angle * math.Deg2Rad
	if p.Y <= 0 || angleRad == 0 || k.Length <= 0 {
		return p, false
	}
	arcRadius := k.Length / angleRad

	if p.Y > k.Length {
		s, c := math32.Sincos(math.Pi - angleRad)
		past := p.Y - k.Length
		y := (arcRadius-p.X)*s - c*past
		x := arcRadius*(c+1) - p.X*c + s*past
		return math.Vec3{X: x, Y: y, Z: p.Z}, true
	}

	s, c := math32.Sincos(math.Pi - p.Y*angleRad/k.Length)
	y := (arcRadius - p.X) * s
	x := arcRadius*(c+1) - p.X*c
	return math.Vec3{X: x, Y: y, Z: p.Z}, true
}

func (k Bend) applyUnlimited(p math.Vec3) (math.Vec3, bool) {
	radians := math.Deg2Rad * min(k.Angle/max(k.Length, 0.0001), 36000)
	if radians == 0 {
		return p, false
	}
	arcRadius := 1 / radians

	s, c := math32.Sincos(math.Pi - p.Y*radians)
	y := (arcRadius - p.X) * s
	x := arcRadius*(c+1) - p.X*c
	return math.Vec3{X: x, Y: y, Z: p.Z}, true
}

// Roll winds the negative Y half of the mesh into an Archimedean spiral in
// the YZ plane.
type Roll struct {
	// LoopDistance is the spacing between consecutive spiral loops.
	LoopDistance float32 `yaml:"loop_distance"`
}

// Apply rolls p. Only vertices with y <= 0 are affected.
func (k Roll) Apply(p math.Vec3) (math.Vec3, bool) {
	if k.LoopDistance <= 0 {
		return p, false
	}
	perRadius := math.Pi / k.LoopDistance
	spiral := perRadius * p.Z * p.Z
	if p.Y > 0 || spiral == 0 {
		return p, false
	}

	if -p.Y >= spiral {
		return math.Vec3{X: p.X}, true
	}

	radius := p.Z * math32.Sqrt(1+p.Y/spiral)
	s, c := math32.Sincos(2 * (p.Z - radius) * perRadius)
	return math.Vec3{X: p.X, Y: -s * radius, Z: c * radius}, true
}
