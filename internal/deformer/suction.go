package deformer

import (
	"github.com/Faultbox/meshwarp/internal/kernel"
)

func defaultSuction() kernel.Suction {
	return kernel.Suction{ZeroPowerDistance: 2}
}

// validateSuction orders the two distances so 0 <= full <= zero.
func validateSuction(s *kernel.Suction) {
	s.ZeroPowerDistance = max(s.ZeroPowerDistance, 0)
	s.FullPowerDistance = min(max(s.FullPowerDistance, 0), s.ZeroPowerDistance)
	s.Power = max(s.Power, 0)
}

// SuctionPoint pulls the mesh towards the deformer origin.
type SuctionPoint struct {
	Base                `yaml:"-"`
	kernel.SuctionPoint `yaml:",inline"`
}

// NewSuctionPoint returns a point suction with default parameters.
func NewSuctionPoint() *SuctionPoint {
	return &SuctionPoint{
		Base:         NewBase("SuctionPoint"),
		SuctionPoint: kernel.SuctionPoint{Suction: defaultSuction()},
	}
}

func (d *SuctionPoint) Kind() Kind           { return KindSuctionPoint }
func (d *SuctionPoint) Aggregate() Aggregate { return AggregateNone }
func (d *SuctionPoint) Validate()            { validateSuction(&d.Suction) }
func (d *SuctionPoint) HasWork() bool        { return d.Power > 0 }

func (d *SuctionPoint) Prepare(Stats) kernel.Func {
	return d.SuctionPoint.Apply
}

// SuctionLine pulls the mesh towards a segment on the Y axis.
type SuctionLine struct {
	Base               `yaml:"-"`
	kernel.SuctionLine `yaml:",inline"`
}

// NewSuctionLine returns a line suction with default parameters.
func NewSuctionLine() *SuctionLine {
	return &SuctionLine{
		Base:        NewBase("SuctionLine"),
		SuctionLine: kernel.SuctionLine{Suction: defaultSuction(), LineLength: 0.3},
	}
}

func (d *SuctionLine) Kind() Kind           { return KindSuctionLine }
func (d *SuctionLine) Aggregate() Aggregate { return AggregateNone }
func (d *SuctionLine) HasWork() bool        { return d.Power > 0 }

func (d *SuctionLine) Validate() {
	validateSuction(&d.Suction)
	d.LineLength = max(d.LineLength, 0)
}

func (d *SuctionLine) Prepare(Stats) kernel.Func {
	return d.SuctionLine.Apply
}

// SuctionCircle pulls the mesh towards a disc in the XZ plane.
type SuctionCircle struct {
	Base                 `yaml:"-"`
	kernel.SuctionCircle `yaml:",inline"`
}

// NewSuctionCircle returns a circle suction with default parameters.
func NewSuctionCircle() *SuctionCircle {
	return &SuctionCircle{
		Base:          NewBase("SuctionCircle"),
		SuctionCircle: kernel.SuctionCircle{Suction: defaultSuction(), Radius: 0.05},
	}
}

func (d *SuctionCircle) Kind() Kind           { return KindSuctionCircle }
func (d *SuctionCircle) Aggregate() Aggregate { return AggregateNone }
func (d *SuctionCircle) HasWork() bool        { return d.Power > 0 }

func (d *SuctionCircle) Validate() {
	validateSuction(&d.Suction)
	d.Radius = max(d.Radius, 0)
}

func (d *SuctionCircle) Prepare(Stats) kernel.Func {
	return d.SuctionCircle.Apply
}
