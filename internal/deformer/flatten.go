package deformer

import (
	"github.com/Faultbox/meshwarp/internal/kernel"
)

// MinPlaneDistance is the thinnest layer the partial flatteners allow.
const MinPlaneDistance = 0.0025

// Plane squeezes the mesh between two planes.
type Plane struct {
	Base         `yaml:"-"`
	kernel.Plane `yaml:",inline"`
}

// NewPlane returns a plane squeeze with default parameters.
func NewPlane() *Plane {
	return &Plane{
		Base:  NewBase("Plane"),
		Plane: kernel.Plane{Above: 0.2, Below: -0.2},
	}
}

func (d *Plane) Kind() Kind           { return KindPlane }
func (d *Plane) Aggregate() Aggregate { return AggregateMinMax }

// Validate keeps the planes at least kernel.MinFallOff apart. With Together
// set Below mirrors Above.
func (d *Plane) Validate() {
	if d.Together {
		d.Above = max(d.Above, kernel.MinFallOff*0.5)
		d.Below = -d.Above
		return
	}
	d.Above = max(d.Above, d.Below+kernel.MinFallOff)
}

func (d *Plane) HasWork() bool { return true }

func (d *Plane) Prepare(stats Stats) kernel.Func {
	m, ok := d.Plane.Matrix(stats.Min.Y, stats.Max.Y)
	if !ok {
		return kernel.Identity
	}
	return kernel.Matrix(m)
}

// PartialFlatCircle flattens a disc of the mesh.
type PartialFlatCircle struct {
	Base                     `yaml:"-"`
	kernel.PartialFlatCircle `yaml:",inline"`
}

// NewPartialFlatCircle returns a disc flattener with default parameters.
func NewPartialFlatCircle() *PartialFlatCircle {
	return &PartialFlatCircle{
		Base:              NewBase("PartialFlatCircle"),
		PartialFlatCircle: kernel.PartialFlatCircle{FallOff: 0.1, PlaneDistance: 0.2, Radius: 0.5},
	}
}

func (d *PartialFlatCircle) Kind() Kind           { return KindPartialFlatCircle }
func (d *PartialFlatCircle) Aggregate() Aggregate { return AggregateMinMax }

func (d *PartialFlatCircle) Validate() {
	d.FallOff = max(d.FallOff, 0)
	d.PlaneDistance = max(d.PlaneDistance, MinPlaneDistance)
	d.Radius = max(d.Radius, 0)
}

func (d *PartialFlatCircle) HasWork() bool {
	return d.Radius+d.FallOff > 0
}

func (d *PartialFlatCircle) Prepare(stats Stats) kernel.Func {
	return d.PartialFlatCircle.Kernel(stats.Min.Y, stats.Max.Y)
}

// PartialFlatSquare flattens a rectangle of the mesh.
type PartialFlatSquare struct {
	Base                     `yaml:"-"`
	kernel.PartialFlatSquare `yaml:",inline"`
}

// NewPartialFlatSquare returns a rectangle flattener with default parameters.
func NewPartialFlatSquare() *PartialFlatSquare {
	return &PartialFlatSquare{
		Base:              NewBase("PartialFlatSquare"),
		PartialFlatSquare: kernel.PartialFlatSquare{FallOff: 0.1, PlaneDistance: 0.2, SizeX: 1, SizeZ: 1},
	}
}

func (d *PartialFlatSquare) Kind() Kind           { return KindPartialFlatSquare }
func (d *PartialFlatSquare) Aggregate() Aggregate { return AggregateMinMax }

func (d *PartialFlatSquare) Validate() {
	d.FallOff = max(d.FallOff, 0)
	d.PlaneDistance = max(d.PlaneDistance, MinPlaneDistance)
	d.SizeX = max(d.SizeX, 0)
	d.SizeZ = max(d.SizeZ, 0)
}

func (d *PartialFlatSquare) HasWork() bool { return true }

func (d *PartialFlatSquare) Prepare(stats Stats) kernel.Func {
	return d.PartialFlatSquare.Kernel(stats.Min.Y, stats.Max.Y)
}

// PartialFlatRoller flattens a strip behind a roller.
type PartialFlatRoller struct {
	Base                     `yaml:"-"`
	kernel.PartialFlatRoller `yaml:",inline"`
}

// NewPartialFlatRoller returns a roller flattener with default parameters.
func NewPartialFlatRoller() *PartialFlatRoller {
	return &PartialFlatRoller{
		Base: NewBase("PartialFlatRoller"),
		PartialFlatRoller: kernel.PartialFlatRoller{
			FallOff:         0.1,
			LengthBehind:    3,
			Width:           1,
			RollerRadius:    0.25,
			FlattenedHeight: kernel.MinFallOff,
		},
	}
}

func (d *PartialFlatRoller) Kind() Kind           { return KindPartialFlatRoller }
func (d *PartialFlatRoller) Aggregate() Aggregate { return AggregateMinMax }

func (d *PartialFlatRoller) Validate() {
	d.FallOff = max(d.FallOff, 0)
	d.LengthBehind = max(d.LengthBehind, 0)
	d.Width = max(d.Width, 0)
	d.RollerRadius = max(d.RollerRadius, 0)
	d.FlattenedHeight = max(d.FlattenedHeight, kernel.MinFallOff)
}

func (d *PartialFlatRoller) HasWork() bool { return true }

func (d *PartialFlatRoller) Prepare(stats Stats) kernel.Func {
	return d.PartialFlatRoller.Kernel(stats.Max.Y)
}

// AngledPlanes flattens a strip under a sloped plane.
type AngledPlanes struct {
	Base                `yaml:"-"`
	kernel.AngledPlanes `yaml:",inline"`
}

// NewAngledPlanes returns angled planes with default parameters.
func NewAngledPlanes() *AngledPlanes {
	return &AngledPlanes{
		Base: NewBase("AngledPlanes"),
		AngledPlanes: kernel.AngledPlanes{
			FallOff:         0.1,
			Length:          1,
			Width:           1,
			Angle:           90,
			FlattenedHeight: kernel.MinFallOff,
		},
	}
}

func (d *AngledPlanes) Kind() Kind           { return KindAngledPlanes }
func (d *AngledPlanes) Aggregate() Aggregate { return AggregateMinMax }

func (d *AngledPlanes) Validate() {
	d.FallOff = max(d.FallOff, 0)
	d.Length = max(d.Length, 0)
	d.Width = max(d.Width, 0)
	d.Angle = min(max(d.Angle, 0), 90)
	d.FlattenedHeight = max(d.FlattenedHeight, kernel.MinFallOff)
}

// HasWork is false at 90 degrees where the plane stands upright.
func (d *AngledPlanes) HasWork() bool {
	return d.Angle < 90
}

func (d *AngledPlanes) Prepare(stats Stats) kernel.Func {
	return d.AngledPlanes.Kernel(stats.Min.Y, stats.Max.Y)
}
