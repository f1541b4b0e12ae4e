package deformer

import (
	"github.com/Faultbox/meshwarp/internal/kernel"
	"github.com/Faultbox/meshwarp/pkg/math"
)

// CapsuleXZ pushes the mesh sideways out of a capsule.
type CapsuleXZ struct {
	Base             `yaml:"-"`
	kernel.CapsuleXZ `yaml:",inline"`
}

// NewCapsuleXZ returns a sideways capsule push with default parameters.
func NewCapsuleXZ() *CapsuleXZ {
	return &CapsuleXZ{
		Base:      NewBase("CapsuleXZ"),
		CapsuleXZ: kernel.CapsuleXZ{Radius: 0.2, Height: 1, FallOff: 0.05},
	}
}

func (d *CapsuleXZ) Kind() Kind           { return KindCapsuleXZ }
func (d *CapsuleXZ) Aggregate() Aggregate { return AggregateNone }

func (d *CapsuleXZ) Validate() {
	d.Radius = max(d.Radius, 0)
	d.Height = max(d.Height, 0)
	d.FallOff = max(d.FallOff, 0)
}

func (d *CapsuleXZ) HasWork() bool {
	return d.Radius > 0 || d.Push != 0
}

func (d *CapsuleXZ) Prepare(Stats) kernel.Func {
	return d.CapsuleXZ.Apply
}

// SpherePush lifts the mesh over a sphere.
type SpherePush struct {
	Base              `yaml:"-"`
	kernel.SpherePush `yaml:",inline"`
}

// NewSpherePush returns a sphere push with default parameters.
func NewSpherePush() *SpherePush {
	return &SpherePush{
		Base:       NewBase("SpherePush"),
		SpherePush: kernel.SpherePush{Radius: 0.1, Height: 1, FallOff: 0.05},
	}
}

func (d *SpherePush) Kind() Kind           { return KindSpherePush }
func (d *SpherePush) Aggregate() Aggregate { return AggregateNone }

func (d *SpherePush) Validate() {
	d.Radius = max(d.Radius, 0)
	d.Height = max(d.Height, 0)
	d.FallOff = max(d.FallOff, 0)
}

func (d *SpherePush) HasWork() bool {
	return d.Radius > 0
}

func (d *SpherePush) Prepare(Stats) kernel.Func {
	return d.SpherePush.Apply
}

// RectanglePush lifts the mesh above a rectangle.
type RectanglePush struct {
	Base                 `yaml:"-"`
	kernel.RectanglePush `yaml:",inline"`
}

// NewRectanglePush returns a rectangle push with default parameters.
func NewRectanglePush() *RectanglePush {
	return &RectanglePush{
		Base: NewBase("RectanglePush"),
		RectanglePush: kernel.RectanglePush{
			FallOff:      0.05,
			Size:         math.Vec2{X: 1, Y: 1},
			PushDistance: 1,
			FallOffSides: 0.05,
		},
	}
}

func (d *RectanglePush) Kind() Kind           { return KindRectanglePush }
func (d *RectanglePush) Aggregate() Aggregate { return AggregateNone }

func (d *RectanglePush) Validate() {
	d.FallOff = max(d.FallOff, 0)
	d.Size.X = max(d.Size.X, 0)
	d.Size.Y = max(d.Size.Y, 0)
	d.PushDistance = max(d.PushDistance, 0)
	d.FallOffSides = max(d.FallOffSides, 0)
}

func (d *RectanglePush) HasWork() bool {
	return d.PushDistance > 0
}

func (d *RectanglePush) Prepare(Stats) kernel.Func {
	return d.RectanglePush.Apply
}
