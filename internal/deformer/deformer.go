// Package deformer defines the procedural deformers applied by the pipeline
// and the registry that builds them by kind.
//
// A deformer owns one kernel family from package kernel plus a local frame.
// The pipeline moves every mesh into that frame, asks the deformer for a
// prepared kernel and runs it over the vertex buffer. Deformers keep no
// per-frame state: Validate clamps parameters in place and the same
// parameters always produce the same kernel.
package deformer

import (
	"github.com/Faultbox/meshwarp/internal/kernel"
	"github.com/Faultbox/meshwarp/pkg/math"
)

// Kind names a deformer type in scene files and the registry.
type Kind string

// Deformer kinds.
const (
	KindTwist             Kind = "twist"
	KindBend              Kind = "bend"
	KindRoll              Kind = "roll"
	KindBulge             Kind = "bulge"
	KindStretch           Kind = "stretch"
	KindWave              Kind = "wave"
	KindSphere            Kind = "sphere"
	KindCapsule           Kind = "capsule"
	KindCube              Kind = "cube"
	KindCapsuleXZ         Kind = "capsule_xz"
	KindSpherePush        Kind = "sphere_push"
	KindRectanglePush     Kind = "rectangle_push"
	KindPlane             Kind = "plane"
	KindPartialFlatCircle Kind = "partial_flat_circle"
	KindPartialFlatSquare Kind = "partial_flat_square"
	KindPartialFlatRoller Kind = "partial_flat_roller"
	KindAngledPlanes      Kind = "angled_planes"
	KindSuctionPoint      Kind = "suction_point"
	KindSuctionLine       Kind = "suction_line"
	KindSuctionCircle     Kind = "suction_circle"
	KindTube              Kind = "tube"
	KindRollers           Kind = "rollers"
	KindCylinderSplineXZ  Kind = "cylinder_spline_xz"
)

// Aggregate is a batch-wide quantity a deformer needs before its kernel can
// run. The pipeline reduces it over every mesh in the deformer's local space.
type Aggregate uint8

const (
	// AggregateNone needs nothing.
	AggregateNone Aggregate = iota
	// AggregateMinMax needs the component-wise vertex min and max.
	AggregateMinMax
	// AggregateFarthest needs the largest Distance of any vertex.
	AggregateFarthest
)

// String returns the aggregate name.
func (a Aggregate) String() string {
	switch a {
	case AggregateMinMax:
		return "minmax"
	case AggregateFarthest:
		return "farthest"
	default:
		return "none"
	}
}

// Stats holds the merged aggregates for one deformer pass.
type Stats struct {
	Min      math.Vec3
	Max      math.Vec3
	Farthest float32
}

// Deformer is one entry in the pipeline's ordered deformer list.
type Deformer interface {
	// Kind returns the registry key.
	Kind() Kind
	// Common returns the shared name, enabled flag and frame.
	Common() *Base
	// Validate clamps parameters into their legal range.
	Validate()
	// HasWork reports whether the current parameters can move any vertex.
	HasWork() bool
	// Aggregate reports which batch-wide quantity Prepare reads.
	Aggregate() Aggregate
	// Prepare returns the kernel for this frame.
	Prepare(stats Stats) kernel.Func
}

// Distancer is implemented by deformers whose Aggregate is
// AggregateFarthest. Distance is measured in the deformer's local space.
type Distancer interface {
	Distance(p math.Vec3) float32
}

// Base carries the fields every deformer shares.
type Base struct {
	Name      string
	Enabled   bool
	Transform math.Transform
}

// NewBase returns an enabled base at the identity frame.
func NewBase(name string) Base {
	return Base{Name: name, Enabled: true, Transform: math.NewTransform()}
}

// Common returns b.
func (b *Base) Common() *Base { return b }

// LocalToWorld returns the deformer frame.
func (b *Base) LocalToWorld() math.Mat4 {
	return b.Transform.Matrix()
}

// WorldToLocal returns the inverse of LocalToWorld.
func (b *Base) WorldToLocal() math.Mat4 {
	return b.Transform.Matrix().Inverse()
}

// Active reports whether d is enabled and has work to do.
func Active(d Deformer) bool {
	return d != nil && d.Common().Enabled && d.HasWork()
}
