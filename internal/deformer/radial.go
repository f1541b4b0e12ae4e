package deformer

import (
	"slices"

	"github.com/Faultbox/meshwarp/internal/kernel"
	"github.com/Faultbox/meshwarp/pkg/spline"
)

// Tube squeezes the mesh into a tube around the Y axis.
type Tube struct {
	Base        `yaml:"-"`
	kernel.Tube `yaml:",inline"`
}

// NewTube returns a tube with default parameters.
func NewTube() *Tube {
	return &Tube{
		Base: NewBase("Tube"),
		Tube: kernel.Tube{Radius: 0.1, EffectRadius: 0.4, Height: 0.3, FallOff: 0.05, FallOffHeight: 0.1},
	}
}

func (d *Tube) Kind() Kind           { return KindTube }
func (d *Tube) Aggregate() Aggregate { return AggregateNone }

func (d *Tube) Validate() {
	d.Radius = max(d.Radius, 0)
	d.EffectRadius = max(d.EffectRadius, d.Radius)
	d.Height = max(d.Height, 0)
	d.FallOff = max(d.FallOff, 0)
	d.FallOffHeight = max(d.FallOffHeight, 0)
}

func (d *Tube) HasWork() bool {
	if d.EffectRadius <= 0 || d.Radius == d.EffectRadius {
		return false
	}
	return d.Height > 0 || d.FallOffHeight > 0
}

func (d *Tube) Prepare(Stats) kernel.Func {
	return d.Tube.Apply
}

// DefaultRollerRadius is used for missing entrance rollers.
const DefaultRollerRadius = 0.25

// Rollers feeds the mesh through a stack of rollers.
type Rollers struct {
	Base           `yaml:"-"`
	kernel.Rollers `yaml:",inline"`
}

// NewRollers returns a pair of entrance rollers.
func NewRollers() *Rollers {
	return &Rollers{
		Base: NewBase("Rollers"),
		Rollers: kernel.Rollers{
			Radii:           []float32{DefaultRollerRadius, DefaultRollerRadius},
			FlattenedHeight: kernel.MinFallOff,
		},
	}
}

func (d *Rollers) Kind() Kind           { return KindRollers }
func (d *Rollers) Aggregate() Aggregate { return AggregateMinMax }

// Validate guarantees at least the two entrance rollers. A single radius is
// used for both.
func (d *Rollers) Validate() {
	switch len(d.Radii) {
	case 0:
		d.Radii = []float32{DefaultRollerRadius, DefaultRollerRadius}
	case 1:
		d.Radii = []float32{d.Radii[0], d.Radii[0]}
	}
	for i, r := range d.Radii {
		d.Radii[i] = max(r, 0)
	}
	d.FlattenedHeight = max(d.FlattenedHeight, kernel.MinFallOff)
}

func (d *Rollers) HasWork() bool { return true }

func (d *Rollers) Prepare(stats Stats) kernel.Func {
	k := d.Rollers
	k.Radii = slices.Clone(d.Radii)
	return k.Kernel(stats.Min.Y, stats.Max.Y)
}

// MinSplineSegments is the coarsest profile resampling CylinderSplineXZ
// allows.
const MinSplineSegments = 2

// CylinderSplineXZ pushes the mesh out of a lathe with a smooth profile.
// The resampled profile is cached until Height, Segments or Widths change.
type CylinderSplineXZ struct {
	Base                  `yaml:"-"`
	kernel.CylinderSpline `yaml:",inline"`

	cached      spline.Profile
	cachedKey   kernel.CylinderSpline
	cachedValid bool
}

// NewCylinderSplineXZ returns a spline cylinder with default parameters.
func NewCylinderSplineXZ() *CylinderSplineXZ {
	return &CylinderSplineXZ{
		Base: NewBase("CylinderSplineXZ"),
		CylinderSpline: kernel.CylinderSpline{
			Height:   1,
			FallOff:  1,
			Segments: 60,
			Widths:   []float32{0, 0.2, 0},
		},
	}
}

func (d *CylinderSplineXZ) Kind() Kind           { return KindCylinderSplineXZ }
func (d *CylinderSplineXZ) Aggregate() Aggregate { return AggregateNone }

func (d *CylinderSplineXZ) Validate() {
	d.Height = max(d.Height, 0)
	d.FallOff = max(d.FallOff, 0)
	d.Segments = max(d.Segments, MinSplineSegments)
	for len(d.Widths) < 2 {
		d.Widths = append(d.Widths, 0)
	}
	for i, w := range d.Widths {
		d.Widths[i] = max(w, 0)
	}
}

func (d *CylinderSplineXZ) HasWork() bool {
	return d.Height > 0 && len(d.Widths) > 0 && slices.Max(d.Widths) > 0
}

// Profile returns the resampled radius profile, rebuilding it only when the
// shape parameters changed since the last call. Not safe for concurrent use.
func (d *CylinderSplineXZ) Profile() (spline.Profile, error) {
	if d.cachedValid && d.cachedKey.Height == d.Height && d.cachedKey.Segments == d.Segments &&
		slices.Equal(d.cachedKey.Widths, d.Widths) {
		return d.cached, nil
	}
	profile, err := d.CylinderSpline.Profile()
	if err != nil {
		d.cachedValid = false
		return spline.Profile{}, err
	}
	d.cached = profile
	d.cachedKey = kernel.CylinderSpline{Height: d.Height, Segments: d.Segments, Widths: slices.Clone(d.Widths)}
	d.cachedValid = true
	return profile, nil
}

func (d *CylinderSplineXZ) Prepare(Stats) kernel.Func {
	profile, err := d.Profile()
	if err != nil {
		return kernel.Identity
	}
	return d.CylinderSpline.Kernel(profile)
}
