package deformer

import (
	"github.com/Faultbox/meshwarp/internal/kernel"
	"github.com/Faultbox/meshwarp/pkg/math"
)

// Sphere keeps the mesh inside, outside or on a sphere.
type Sphere struct {
	Base          `yaml:"-"`
	kernel.Sphere `yaml:",inline"`
}

// NewSphere returns a sphere with default parameters.
func NewSphere() *Sphere {
	return &Sphere{
		Base:   NewBase("Sphere"),
		Sphere: kernel.Sphere{Radius: 0.5, FallOff: 0.05},
	}
}

func (d *Sphere) Kind() Kind { return KindSphere }

func (d *Sphere) Aggregate() Aggregate {
	if d.Mode.NeedsFarthest() {
		return AggregateFarthest
	}
	return AggregateNone
}

func (d *Sphere) Validate() {
	d.Radius = max(d.Radius, 0)
	d.FallOff = max(d.FallOff, 0)
}

func (d *Sphere) HasWork() bool {
	return shellHasWork(d.Mode, d.Radius, d.FallOff)
}

func (d *Sphere) Prepare(stats Stats) kernel.Func {
	return d.Sphere.Kernel(stats.Farthest)
}

// Capsule keeps the mesh inside, outside or on a Y aligned capsule.
type Capsule struct {
	Base           `yaml:"-"`
	kernel.Capsule `yaml:",inline"`
}

// NewCapsule returns a capsule with default parameters.
func NewCapsule() *Capsule {
	return &Capsule{
		Base:    NewBase("Capsule"),
		Capsule: kernel.Capsule{Radius: 0.2, Height: 1, FallOff: 0.05},
	}
}

func (d *Capsule) Kind() Kind { return KindCapsule }

func (d *Capsule) Aggregate() Aggregate {
	if d.Mode.NeedsFarthest() {
		return AggregateFarthest
	}
	return AggregateNone
}

func (d *Capsule) Validate() {
	d.Radius = max(d.Radius, 0)
	d.Height = max(d.Height, 0)
	d.FallOff = max(d.FallOff, 0)
}

func (d *Capsule) HasWork() bool {
	return shellHasWork(d.Mode, d.Radius, d.FallOff)
}

func (d *Capsule) Prepare(stats Stats) kernel.Func {
	return d.Capsule.Kernel(stats.Farthest)
}

// Cube keeps the mesh inside, outside or on an axis aligned box.
type Cube struct {
	Base        `yaml:"-"`
	kernel.Cube `yaml:",inline"`
}

// NewCube returns a cube with default parameters.
func NewCube() *Cube {
	return &Cube{
		Base: NewBase("Cube"),
		Cube: kernel.Cube{Size: math.Splat3(1), FallOff: 0.05},
	}
}

func (d *Cube) Kind() Kind { return KindCube }

func (d *Cube) Aggregate() Aggregate {
	if d.Mode.NeedsFarthest() {
		return AggregateMinMax
	}
	return AggregateNone
}

func (d *Cube) Validate() {
	d.Size = d.Size.Max(math.Vec3{})
	d.FallOff = max(d.FallOff, 0)
}

func (d *Cube) HasWork() bool {
	largest := max(d.Size.X, d.Size.Y, d.Size.Z)
	return shellHasWork(d.Mode, largest*0.5, d.FallOff)
}

func (d *Cube) Prepare(stats Stats) kernel.Func {
	return d.Cube.Kernel(stats.Min, stats.Max)
}

// shellHasWork reports whether a shell with these parameters can move a
// vertex. Inside with no radius maps every distance onto itself, as does
// Both with no band.
func shellHasWork(mode kernel.Mode, radius, fallOff float32) bool {
	switch mode {
	case kernel.Inside:
		return radius > 0
	case kernel.Both:
		return min(radius, fallOff*0.5) > 0
	default:
		return true
	}
}
