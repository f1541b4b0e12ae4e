package deformer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshwarp/internal/kernel"
	"github.com/Faultbox/meshwarp/pkg/math"
)

func TestRegistryBuildsEveryKind(t *testing.T) {
	kinds := Kinds()
	require.Len(t, kinds, 23)

	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			d, err := New(kind)
			require.NoError(t, err)
			assert.Equal(t, kind, d.Kind())
			assert.NotEmpty(t, d.Common().Name)
			assert.True(t, d.Common().Enabled)

			// Defaults are already legal.
			fresh, _ := New(kind)
			d.Validate()
			assert.Equal(t, fresh, d)

			if d.Aggregate() == AggregateFarthest {
				_, ok := d.(Distancer)
				assert.True(t, ok, "farthest aggregate without Distance")
			}
			assert.NotNil(t, d.Prepare(Stats{Min: math.Splat3(-1), Max: math.Splat3(1), Farthest: 2}))
		})
	}
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New("teapot")
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("err = %v, want ErrUnknownKind", err)
	}
}

func TestValidateClamps(t *testing.T) {
	tests := []struct {
		name  string
		d     Deformer
		check func(t *testing.T, d Deformer)
	}{
		{
			name: "twist falloff",
			d:    &Twist{Twist: kernel.Twist{FallOff: -1}},
			check: func(t *testing.T, d Deformer) {
				assert.Equal(t, float32(0), d.(*Twist).FallOff)
			},
		},
		{
			name: "roll loop distance",
			d:    &Roll{},
			check: func(t *testing.T, d Deformer) {
				assert.Equal(t, float32(MinLoopDistance), d.(*Roll).LoopDistance)
			},
		},
		{
			name: "bulge bounds",
			d:    &Bulge{Bulge: kernel.Bulge{Top: -1, Bottom: 1}},
			check: func(t *testing.T, d Deformer) {
				b := d.(*Bulge)
				assert.Equal(t, b.Bottom, b.Top)
			},
		},
		{
			name: "wave distances",
			d:    &Wave{Wave: kernel.Wave{HeightX: -1, DistanceX: 0, DistanceZ: -3}},
			check: func(t *testing.T, d Deformer) {
				w := d.(*Wave)
				assert.Equal(t, float32(0), w.HeightX)
				assert.Equal(t, float32(MinWaveDistance), w.DistanceX)
				assert.Equal(t, float32(MinWaveDistance), w.DistanceZ)
			},
		},
		{
			name: "plane together",
			d:    &Plane{Plane: kernel.Plane{Above: 0.3, Below: 7, Together: true}},
			check: func(t *testing.T, d Deformer) {
				p := d.(*Plane)
				assert.Equal(t, float32(0.3), p.Above)
				assert.Equal(t, float32(-0.3), p.Below)
			},
		},
		{
			name: "plane crossed",
			d:    &Plane{Plane: kernel.Plane{Above: -1, Below: 0}},
			check: func(t *testing.T, d Deformer) {
				p := d.(*Plane)
				assert.InDelta(t, kernel.MinFallOff, p.Above-p.Below, 1e-6)
			},
		},
		{
			name: "partial flat distance",
			d:    &PartialFlatCircle{},
			check: func(t *testing.T, d Deformer) {
				assert.Equal(t, float32(MinPlaneDistance), d.(*PartialFlatCircle).PlaneDistance)
			},
		},
		{
			name: "angled planes angle",
			d:    &AngledPlanes{AngledPlanes: kernel.AngledPlanes{Angle: 120}},
			check: func(t *testing.T, d Deformer) {
				a := d.(*AngledPlanes)
				assert.Equal(t, float32(90), a.Angle)
				assert.False(t, a.HasWork())
			},
		},
		{
			name: "suction ordering",
			d: &SuctionPoint{SuctionPoint: kernel.SuctionPoint{Suction: kernel.Suction{
				ZeroPowerDistance: 1, FullPowerDistance: 3, Power: -1,
			}}},
			check: func(t *testing.T, d Deformer) {
				s := d.(*SuctionPoint)
				assert.Equal(t, float32(1), s.FullPowerDistance)
				assert.Equal(t, float32(0), s.Power)
			},
		},
		{
			name: "tube effect radius",
			d:    &Tube{Tube: kernel.Tube{Radius: 0.5, EffectRadius: 0.1, Height: 1}},
			check: func(t *testing.T, d Deformer) {
				tube := d.(*Tube)
				assert.Equal(t, float32(0.5), tube.EffectRadius)
				assert.False(t, tube.HasWork())
			},
		},
		{
			name: "rollers empty",
			d:    &Rollers{},
			check: func(t *testing.T, d Deformer) {
				r := d.(*Rollers)
				assert.Equal(t, []float32{DefaultRollerRadius, DefaultRollerRadius}, r.Radii)
				assert.Equal(t, float32(kernel.MinFallOff), r.FlattenedHeight)
			},
		},
		{
			name: "rollers single",
			d:    &Rollers{Rollers: kernel.Rollers{Radii: []float32{0.4}, FlattenedHeight: 1}},
			check: func(t *testing.T, d Deformer) {
				assert.Equal(t, []float32{0.4, 0.4}, d.(*Rollers).Radii)
			},
		},
		{
			name: "spline widths",
			d:    &CylinderSplineXZ{CylinderSpline: kernel.CylinderSpline{Widths: []float32{-1}}},
			check: func(t *testing.T, d Deformer) {
				c := d.(*CylinderSplineXZ)
				assert.Equal(t, []float32{0, 0}, c.Widths)
				assert.Equal(t, MinSplineSegments, c.Segments)
				assert.False(t, c.HasWork())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.d.Validate()
			tt.check(t, tt.d)

			// A second pass changes nothing.
			tt.d.Validate()
			tt.check(t, tt.d)
		})
	}
}

func TestHasWork(t *testing.T) {
	twist := NewTwist()
	assert.False(t, twist.HasWork())
	twist.Rotations = 0.25
	assert.True(t, twist.HasWork())

	bend := NewBend()
	assert.False(t, bend.HasWork())

	sphere := NewSphere()
	sphere.Mode = kernel.Inside
	sphere.Radius = 0
	assert.False(t, sphere.HasWork())

	suction := NewSuctionLine()
	assert.False(t, suction.HasWork())
	suction.Power = 0.1
	assert.True(t, suction.HasWork())
}

func TestActive(t *testing.T) {
	twist := NewTwist()
	twist.Rotations = 1
	assert.True(t, Active(twist))

	twist.Enabled = false
	assert.False(t, Active(twist))
	assert.False(t, Active(nil))
}

func TestAggregateFollowsMode(t *testing.T) {
	sphere := NewSphere()
	assert.Equal(t, AggregateNone, sphere.Aggregate())
	sphere.Mode = kernel.Both
	assert.Equal(t, AggregateFarthest, sphere.Aggregate())

	cube := NewCube()
	cube.Mode = kernel.Inside
	assert.Equal(t, AggregateMinMax, cube.Aggregate())

	assert.Equal(t, AggregateMinMax, NewPlane().Aggregate())
	assert.Equal(t, "farthest", AggregateFarthest.String())
}

func TestBaseFrame(t *testing.T) {
	b := NewBase("frame")
	b.Transform.Position = math.Vec3{X: 1, Y: 2, Z: 3}
	b.Transform.Rotation = math.QuatFromAxisAngle(math.Vec3{Y: 1}, 0.7)

	p := math.Vec3{X: -0.5, Y: 4, Z: 2}
	l2w := b.LocalToWorld()
	w2l := b.WorldToLocal()
	world := l2w.TransformAffine(p)
	back := w2l.TransformAffine(world)
	assert.True(t, back.ApproxEqual(p, 1e-4), "got %v", back)
}

func TestTwistDeformerScenario(t *testing.T) {
	d, err := New(KindTwist)
	require.NoError(t, err)
	twist := d.(*Twist)
	twist.Rotations = 0.25
	twist.FallOff = 0
	d.Validate()

	fn := d.Prepare(Stats{})
	got, ok := fn(math.Vec3{X: 1, Y: 3})
	require.True(t, ok)
	assert.True(t, got.ApproxEqual(math.Vec3{Y: 3, Z: 1}, 1e-5), "got %v", got)
}

func TestPreparedKernelIsSnapshot(t *testing.T) {
	d := NewBulge()
	fn := d.Prepare(Stats{})
	d.Amount = 10

	got, _ := fn(math.Vec3{X: 1})
	assert.InDelta(t, 1.5, got.X, 1e-5)
}

func TestPlanePrepare(t *testing.T) {
	d := NewPlane()
	d.Validate()

	fn := d.Prepare(Stats{Min: math.Vec3{Y: -1}, Max: math.Vec3{Y: 1}})
	got, ok := fn(math.Vec3{Y: 1})
	require.True(t, ok)
	assert.InDelta(t, 0.2, got.Y, 1e-5)

	// A flat batch leaves the mesh alone.
	fn = d.Prepare(Stats{})
	_, ok = fn(math.Vec3{Y: 1})
	assert.False(t, ok)
}

func TestCylinderSplineProfileCache(t *testing.T) {
	d := NewCylinderSplineXZ()
	d.Validate()

	first, err := d.Profile()
	require.NoError(t, err)
	second, err := d.Profile()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	d.Widths[1] = 0.4
	third, err := d.Profile()
	require.NoError(t, err)
	assert.Greater(t, third.MaxRadius(), first.MaxRadius())

	fn := d.Prepare(Stats{})
	got, ok := fn(math.Vec3{X: 0.1})
	require.True(t, ok)
	assert.Greater(t, got.X, float32(0.1))
}
