package scene

import (
	"github.com/Faultbox/meshwarp/internal/mesh"
	"github.com/Faultbox/meshwarp/pkg/math"
)

// Renderer is an in-memory stand-in for a host renderer. It records what
// the pipeline hands it so benchmarks and tests can inspect the result.
type Renderer struct {
	name      string
	source    *mesh.Source
	transform math.Transform
	active    bool
	rig       *Rig

	displayed *mesh.RenderMesh
	local     math.Bounds
	world     math.Bounds
}

// NewRenderer creates an active static renderer.
func NewRenderer(name string, src *mesh.Source, transform math.Transform) *Renderer {
	return &Renderer{name: name, source: src, transform: transform, active: true}
}

// NewSkinnedRenderer creates an active renderer posed by rig. The source
// must carry bindposes from rig.
func NewSkinnedRenderer(name string, src *mesh.Source, transform math.Transform, rig *Rig) *Renderer {
	r := NewRenderer(name, src, transform)
	r.rig = rig
	return r
}

func (r *Renderer) Name() string            { return r.name }
func (r *Renderer) Source() *mesh.Source    { return r.source }
func (r *Renderer) Active() bool            { return r.active }
func (r *Renderer) LocalToWorld() math.Mat4 { return r.transform.Matrix() }

// Skin returns the rig, or nil for static renderers.
func (r *Renderer) Skin() mesh.Skin {
	if r.rig == nil {
		return nil
	}
	return r.rig
}

// Rig returns the rig posing r, or nil.
func (r *Renderer) Rig() *Rig { return r.rig }

func (r *Renderer) Attach(rm *mesh.RenderMesh) { r.displayed = rm }
func (r *Renderer) Detach()                    { r.displayed = nil }

func (r *Renderer) SetBounds(local, world math.Bounds) {
	r.local, r.world = local, world
}

// SetActive shows or hides the renderer.
func (r *Renderer) SetActive(active bool) { r.active = active }

// Displayed returns the attached render mesh, or nil when showing the
// source.
func (r *Renderer) Displayed() *mesh.RenderMesh { return r.displayed }

// Bounds returns the last bounds pushed by the pipeline.
func (r *Renderer) Bounds() (local, world math.Bounds) { return r.local, r.world }
