package deformer

import (
	"github.com/Faultbox/meshwarp/internal/kernel"
)

// Twist rotates the mesh around the deformer's Y axis.
type Twist struct {
	Base         `yaml:"-"`
	kernel.Twist `yaml:",inline"`
}

// NewTwist returns a twist with default parameters.
func NewTwist() *Twist {
	return &Twist{
		Base:  NewBase("Twist"),
		Twist: kernel.Twist{FallOff: 0.05, MiddleWidth: 1},
	}
}

func (d *Twist) Kind() Kind           { return KindTwist }
func (d *Twist) Aggregate() Aggregate { return AggregateNone }

func (d *Twist) Validate() {
	d.FallOff = max(d.FallOff, 0)
}

func (d *Twist) HasWork() bool {
	return d.Rotations != 0 || d.MiddleWidth != 1
}

func (d *Twist) Prepare(Stats) kernel.Func {
	return d.Twist.Apply
}

// Bend curls the mesh into an arc.
type Bend struct {
	Base        `yaml:"-"`
	kernel.Bend `yaml:",inline"`
}

// NewBend returns a bend with default parameters.
func NewBend() *Bend {
	return &Bend{
		Base: NewBase("Bend"),
		Bend: kernel.Bend{Length: 1, Limited: true},
	}
}

func (d *Bend) Kind() Kind           { return KindBend }
func (d *Bend) Aggregate() Aggregate { return AggregateNone }

func (d *Bend) Validate() {
	d.Length = max(d.Length, 0)
}

func (d *Bend) HasWork() bool {
	return d.Angle != 0
}

func (d *Bend) Prepare(Stats) kernel.Func {
	return d.Bend.Apply
}

// Roll winds the lower half of the mesh into a spiral.
type Roll struct {
	Base        `yaml:"-"`
	kernel.Roll `yaml:",inline"`
}

// MinLoopDistance is the tightest spiral Roll allows.
const MinLoopDistance = 0.01

// NewRoll returns a roll with default parameters.
func NewRoll() *Roll {
	return &Roll{
		Base: NewBase("Roll"),
		Roll: kernel.Roll{LoopDistance: 0.1},
	}
}

func (d *Roll) Kind() Kind           { return KindRoll }
func (d *Roll) Aggregate() Aggregate { return AggregateNone }

func (d *Roll) Validate() {
	d.LoopDistance = max(d.LoopDistance, MinLoopDistance)
}

func (d *Roll) HasWork() bool { return true }

func (d *Roll) Prepare(Stats) kernel.Func {
	return d.Roll.Apply
}

// Bulge widens the mesh between two heights.
type Bulge struct {
	Base         `yaml:"-"`
	kernel.Bulge `yaml:",inline"`
}

// NewBulge returns a bulge with default parameters.
func NewBulge() *Bulge {
	return &Bulge{
		Base:  NewBase("Bulge"),
		Bulge: kernel.Bulge{Amount: 0.5, Top: 0.5, Bottom: -0.5, Smooth: true},
	}
}

func (d *Bulge) Kind() Kind           { return KindBulge }
func (d *Bulge) Aggregate() Aggregate { return AggregateNone }

func (d *Bulge) Validate() {
	d.Top = max(d.Top, d.Bottom)
}

func (d *Bulge) HasWork() bool {
	return d.Amount != 0 && d.Top > d.Bottom
}

func (d *Bulge) Prepare(Stats) kernel.Func {
	return d.Bulge.Apply
}

// Stretch moves a band of the mesh along Y.
type Stretch struct {
	Base           `yaml:"-"`
	kernel.Stretch `yaml:",inline"`
}

// NewStretch returns a stretch with default parameters.
func NewStretch() *Stretch {
	return &Stretch{
		Base:    NewBase("Stretch"),
		Stretch: kernel.Stretch{Radius: 0.2, Top: 0.5, TopAfter: 0.5},
	}
}

func (d *Stretch) Kind() Kind           { return KindStretch }
func (d *Stretch) Aggregate() Aggregate { return AggregateNone }

func (d *Stretch) Validate() {
	d.Radius = max(d.Radius, 0)
	d.Top = max(d.Top, d.Bottom)
}

func (d *Stretch) HasWork() bool {
	if d.Radius <= 0 || d.Top == d.Bottom {
		return false
	}
	return d.TopAfter != d.Top || d.BottomAfter != d.Bottom
}

func (d *Stretch) Prepare(Stats) kernel.Func {
	return d.Stretch.Apply
}

// Wave ripples the mesh along X and Z.
type Wave struct {
	Base        `yaml:"-"`
	kernel.Wave `yaml:",inline"`
}

// MinWaveDistance is the shortest wavelength Wave allows.
const MinWaveDistance = 0.01

// NewWave returns a wave with default parameters.
func NewWave() *Wave {
	return &Wave{
		Base: NewBase("Wave"),
		Wave: kernel.Wave{HeightX: 0.1, DistanceX: 0.4, DistanceZ: 0.4},
	}
}

func (d *Wave) Kind() Kind           { return KindWave }
func (d *Wave) Aggregate() Aggregate { return AggregateNone }

func (d *Wave) Validate() {
	d.HeightX = max(d.HeightX, 0)
	d.HeightZ = max(d.HeightZ, 0)
	d.DistanceX = max(d.DistanceX, MinWaveDistance)
	d.DistanceZ = max(d.DistanceZ, MinWaveDistance)
}

func (d *Wave) HasWork() bool {
	return d.HeightX > 0 || d.HeightZ > 0
}

func (d *Wave) Prepare(Stats) kernel.Func {
	return d.Wave.Apply
}
