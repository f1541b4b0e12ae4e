package mesh

import (
	"github.com/Faultbox/meshwarp/pkg/math"
)

// Skin poses a skinned mesh. Implementations are read once per frame from
// the goroutine driving the pipeline.
type Skin interface {
	// BoneLocalToWorld returns one matrix per bindpose.
	BoneLocalToWorld() []math.Mat4
	// RootLocalToWorld returns the root bone frame. Deformed vertices and
	// bounds are expressed relative to it.
	RootLocalToWorld() math.Mat4
	// BlendShapeWeights returns one weight per blend shape.
	BlendShapeWeights() []float32
}

// Renderer is the host object that displays a mesh.
type Renderer interface {
	Name() string
	Source() *Source
	// Active reports whether the renderer is enabled and visible.
	Active() bool
	LocalToWorld() math.Mat4
	// Skin returns nil for static meshes.
	Skin() Skin
	// Attach swaps the displayed mesh for the pipeline's working copy.
	Attach(rm *RenderMesh)
	// Detach restores the original mesh.
	Detach()
	// SetBounds receives the deformed bounds in mesh space and world space.
	SetBounds(local, world math.Bounds)
}

// RenderMesh is the buffer a renderer displays while the pipeline is
// enabled. Indices are shared with the source.
type RenderMesh struct {
	Name     string
	Vertices []math.Vec3
	Normals  []math.Vec3
	Indices  []uint32
	Bounds   math.Bounds
}
