package kernel

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshwarp/pkg/math"
)

// MinFallOff is the smallest gap the flattening kernels allow between two
// planes or the thinnest flattened layer.
const MinFallOff = 0.005

// Plane squeezes the whole batch between two horizontal planes.
type Plane struct {
	Above float32 `yaml:"above"`
	Below float32 `yaml:"below"`
	// SpreadX and SpreadZ widen the mesh as it approaches full compression.
	SpreadX float32 `yaml:"spread_x"`
	SpreadZ float32 `yaml:"spread_z"`
	// Together keeps the planes symmetric around the origin.
	Together bool `yaml:"together"`
}

// Matrix returns the squeeze for a batch spanning [minY, maxY]. It reports
// false when the batch has no height.
func (k Plane) Matrix(minY, maxY float32) (math.Mat4, bool) {
	height := maxY - minY
	if height <= 0 {
		return math.Identity(), false
	}
	dist := k.Above - k.Below
	compression := min(height, dist) / height

	var move float32
	if dist > height {
		move = min(0, k.Above-maxY) + max(0, k.Below-minY)
	} else {
		move = k.Below - minY*compression
	}

	var spread float32
	if height != 0.01 {
		spread = math.Clamp01((dist - height) / (0.01 - height))
	}

	m := math.Scale(1+k.SpreadX*spread, compression, 1+k.SpreadZ*spread)
	m[13] = move
	return m, true
}

// PartialFlatCircle flattens a disc of Radius towards the XZ plane so the
// mesh stays within ±PlaneDistance, fading out over FallOff.
type PartialFlatCircle struct {
	FallOff       float32 `yaml:"falloff"`
	PlaneDistance float32 `yaml:"plane_distance"`
	Radius        float32 `yaml:"radius"`
}

// Kernel prepares the circle for a batch spanning [minY, maxY].
func (k PartialFlatCircle) Kernel(minY, maxY float32) Func {
	height := max(maxY, -minY)
	if height <= 0 || (maxY <= k.PlaneDistance && minY >= -k.PlaneDistance) {
		return Identity
	}
	compression := k.PlaneDistance / height
	outer := k.FallOff + k.Radius

	return func(p math.Vec3) (math.Vec3, bool) {
		xxzz := p.X*p.X + p.Z*p.Z
		if xxzz > outer*outer {
			return p, false
		}
		if k.FallOff == 0 || xxzz <= k.Radius*k.Radius {
			p.Y *= compression
			return p, true
		}
		t := math.InverseLerp(0, k.FallOff, math32.Sqrt(xxzz)-k.Radius)
		p.Y *= math.Lerp(compression, 1, t)
		return p, true
	}
}

// PartialFlatSquare flattens a SizeX by SizeZ rectangle towards the XZ plane.
type PartialFlatSquare struct {
	FallOff       float32 `yaml:"falloff"`
	PlaneDistance float32 `yaml:"plane_distance"`
	SizeX         float32 `yaml:"size_x"`
	SizeZ         float32 `yaml:"size_z"`
}

// Kernel prepares the square for a batch spanning [minY, maxY].
func (k PartialFlatSquare) Kernel(minY, maxY float32) Func {
	height := max(maxY, -minY)
	if height <= k.PlaneDistance || height <= 0 {
		return Identity
	}
	compression := min(k.PlaneDistance/height, 1)
	halfX, halfZ := k.SizeX*0.5, k.SizeZ*0.5

	return func(p math.Vec3) (math.Vec3, bool) {
		dx := max(math32.Abs(p.X)-halfX, 0)
		dz := max(math32.Abs(p.Z)-halfZ, 0)
		if k.FallOff <= 0 {
			if dx > 0 || dz > 0 {
				return p, false
			}
			p.Y *= compression
			return p, true
		}
		dist := math32.Sqrt(dx*dx + dz*dz)
		if dist >= k.FallOff {
			return p, false
		}
		p.Y *= math.Lerp(compression, 1, dist/k.FallOff)
		return p, true
	}
}

// PartialFlatRoller flattens a strip behind a roller lying along X at z=0,
// optionally wrapping the flattened strip around the roller.
type PartialFlatRoller struct {
	FallOff         float32 `yaml:"falloff"`
	LengthBehind    float32 `yaml:"length_behind"`
	Width           float32 `yaml:"width"`
	RollerRadius    float32 `yaml:"roller_radius"`
	StuckOnRoller   bool    `yaml:"stuck_on_roller"`
	FlattenedHeight float32 `yaml:"flattened_height"`
}

// Kernel prepares the roller for a batch whose highest vertex is maxY.
func (k PartialFlatRoller) Kernel(maxY float32) Func {
	height := maxY
	if k.FlattenedHeight >= height || height <= 0 {
		return Identity
	}
	r := k.RollerRadius
	halfWidth := k.Width * 0.5

	return func(p math.Vec3) (math.Vec3, bool) {
		if p.Z <= -k.LengthBehind || p.Z > r {
			return p, false
		}
		ax := math32.Abs(p.X)
		if ax > halfWidth+k.FallOff {
			return p, false
		}

		zCompression := float32(1)
		if p.Z <= 0 {
			zCompression = k.FlattenedHeight / height
		} else if p.Z < r {
			toRoller := r - math32.Sqrt(r*r-p.Z*p.Z)
			if toRoller > height {
				return p, false
			}
			zCompression = max(toRoller, k.FlattenedHeight) / height
		}

		p.Y *= math.Lerp(1, zCompression, sideFalloff(ax, halfWidth, k.FallOff))

		if k.StuckOnRoller && p.Z < 0 && r > 0 {
			s, c := math32.Sincos(p.Z / r)
			arm := p.Y - r
			p.Z = -arm * s
			p.Y = arm*c + r
		}
		return p, true
	}
}

// AngledPlanes flattens a strip under a plane rising at Angle degrees from
// z=0 to z=Length, fading out over FallOff in Z and X.
type AngledPlanes struct {
	FallOff         float32 `yaml:"falloff"`
	Length          float32 `yaml:"length"`
	Width           float32 `yaml:"width"`
	Angle           float32 `yaml:"angle"`
	FlattenedHeight float32 `yaml:"flattened_height"`
}

// Kernel prepares the planes for a batch spanning [minY, maxY].
func (k AngledPlanes) Kernel(minY, maxY float32) Func {
	height := maxY - minY
	if k.Angle >= 90 || k.FlattenedHeight >= height || height <= 0 {
		return Identity
	}
	heightPerZ := math32.Tan(k.Angle * math.Deg2Rad)
	halfWidth := k.Width * 0.5
	fh := k.FlattenedHeight

	return func(p math.Vec3) (math.Vec3, bool) {
		if p.Z <= -k.FallOff || p.Z >= k.Length+k.FallOff {
			return p, false
		}
		ax := math32.Abs(p.X)
		if ax > halfWidth+k.FallOff {
			return p, false
		}

		var zCompression float32
		switch {
		case p.Z < 0:
			zCompression = math.Lerp(fh/height, 1, math.InverseLerp(0, -k.FallOff, p.Z))
		case p.Z > k.Length:
			atEnd := heightPerZ * k.Length
			if atEnd > height {
				return p, false
			}
			zCompression = math.Lerp(max(atEnd, fh)/height, 1, math.InverseLerp(k.Length, k.Length+k.FallOff, p.Z))
		default:
			atPoint := heightPerZ * p.Z
			if atPoint > height {
				return p, false
			}
			zCompression = max(atPoint, fh) / height
		}

		p.Y *= math.Lerp(1, zCompression, sideFalloff(ax, halfWidth, k.FallOff))
		return p, true
	}
}
