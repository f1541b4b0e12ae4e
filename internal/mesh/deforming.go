package mesh

import (
	"github.com/Faultbox/meshwarp/internal/jobs"
	"github.com/Faultbox/meshwarp/internal/kernel"
	"github.com/Faultbox/meshwarp/pkg/math"
)

// Options sizes the parallel batches a DeformingMesh schedules.
type Options struct {
	// BatchSize is the number of vertices per task.
	BatchSize int
	// NormalBatchSize is the number of triangles per face normal task.
	NormalBatchSize int
}

// DeformingMesh owns the working buffers for one renderer. Every method that
// takes a scheduler returns the handle of the last task it scheduled; callers
// chain the next step on it so a buffer has a single writer at a time.
type DeformingMesh struct {
	renderer Renderer
	source   *Source
	skin     Skin
	opts     Options

	original    []math.Vec3
	blendShaped []math.Vec3
	weights     []float32
	skinning    []math.Mat4

	// Vertices is the live working buffer.
	Vertices []math.Vec3
	// Normals is recomputed by UpdateNormals or copied from the source.
	Normals []math.Vec3

	faceNormals []math.Vec3
	// Triangles around each vertex in CSR form.
	adjStart   []int32
	adjFaces   []int32
	invValence []float32

	localToWorld math.Mat4
	worldToLocal math.Mat4

	bounds math.Bounds
	// sourceBounds are the source extents, pushed back on Disable.
	sourceBounds math.Bounds
	render       *RenderMesh

	attached  bool
	allocated bool
}

// New builds the working buffers for r. It fails for sources that cannot be
// indexed or are malformed.
func New(r Renderer, opts Options) (*DeformingMesh, error) {
	src := r.Source()
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = jobs.DefaultBatchSize
	}
	if opts.NormalBatchSize <= 0 {
		opts.NormalBatchSize = opts.BatchSize / 4
	}

	n := len(src.Vertices)
	m := &DeformingMesh{
		renderer:     r,
		source:       src,
		opts:         opts,
		original:     append([]math.Vec3(nil), src.Vertices...),
		Vertices:     make([]math.Vec3, n),
		Normals:      make([]math.Vec3, n),
		faceNormals:  make([]math.Vec3, len(src.Indices)/3),
		localToWorld: math.Identity(),
		worldToLocal: math.Identity(),
		allocated:    true,
	}
	copy(m.Vertices, m.original)
	copy(m.Normals, src.Normals)
	m.sourceBounds = math.BoundsFromMinMax(m.MinMax())
	m.bounds = m.sourceBounds

	if skin := r.Skin(); skin != nil && src.Skinned() {
		m.skin = skin
		m.skinning = make([]math.Mat4, len(src.Bindposes))
		if len(src.BlendShapes) > 0 {
			m.blendShaped = append([]math.Vec3(nil), m.original...)
			m.weights = make([]float32, len(src.BlendShapes))
		}
	}

	m.buildAdjacency()
	m.render = &RenderMesh{
		Name:     src.Name,
		Vertices: make([]math.Vec3, n),
		Normals:  make([]math.Vec3, n),
		Indices:  src.Indices,
		Bounds:   m.sourceBounds,
	}
	copy(m.render.Vertices, m.original)
	copy(m.render.Normals, m.Normals)
	return m, nil
}

// buildAdjacency records the triangles touching each vertex and the
// reciprocal of their count.
func (m *DeformingMesh) buildAdjacency() {
	n := len(m.original)
	idx := m.source.Indices

	counts := make([]int32, n)
	for _, v := range idx {
		counts[v]++
	}
	m.adjStart = make([]int32, n+1)
	m.invValence = make([]float32, n)
	for v, c := range counts {
		m.adjStart[v+1] = m.adjStart[v] + c
		if c > 0 {
			m.invValence[v] = 1 / float32(c)
		}
	}

	m.adjFaces = make([]int32, len(idx))
	fill := append([]int32(nil), m.adjStart[:n]...)
	for i, v := range idx {
		m.adjFaces[fill[v]] = int32(i / 3)
		fill[v]++
	}
}

// Renderer returns the renderer backing m.
func (m *DeformingMesh) Renderer() Renderer { return m.renderer }

// Skinned reports whether Bake poses the mesh through its skin.
func (m *DeformingMesh) Skinned() bool { return m.skin != nil }

// Allocated reports whether m still owns its buffers.
func (m *DeformingMesh) Allocated() bool { return m.allocated }

// RenderMesh returns the buffer handed to the renderer.
func (m *DeformingMesh) RenderMesh() *RenderMesh { return m.render }

// Bounds returns the result of the last UpdateBounds.
func (m *DeformingMesh) Bounds() math.Bounds { return m.bounds }

// LocalToWorld returns the mesh frame captured by UpdateRoot.
func (m *DeformingMesh) LocalToWorld() math.Mat4 { return m.localToWorld }

// WorldToLocal returns the inverse of LocalToWorld.
func (m *DeformingMesh) WorldToLocal() math.Mat4 { return m.worldToLocal }

// UpdateRoot captures this frame's mesh frame: the root bone for skinned
// meshes, the renderer transform otherwise.
func (m *DeformingMesh) UpdateRoot() {
	if m.skin != nil {
		m.localToWorld = m.skin.RootLocalToWorld()
	} else {
		m.localToWorld = m.renderer.LocalToWorld()
	}
	m.worldToLocal = m.localToWorld.Inverse()
}

// BakeSpace returns the matrix taking baked vertices to mesh space. Skinned
// meshes bake in world space; static meshes bake in mesh space.
func (m *DeformingMesh) BakeSpace() math.Mat4 {
	if m.skin != nil {
		return m.worldToLocal
	}
	return math.Identity()
}

// Bake resets Vertices to the current pose.
func (m *DeformingMesh) Bake(s *jobs.Scheduler, deps ...jobs.Handle) jobs.Handle {
	n := len(m.Vertices)
	if m.skin == nil {
		return s.ScheduleParallel(n, m.opts.BatchSize, func(start, end int) {
			copy(m.Vertices[start:end], m.original[start:end])
		}, deps...)
	}

	rest := m.original
	if m.blendShaped != nil {
		rest = m.blendShaped
		if m.refreshWeights() {
			h := s.ScheduleParallel(n, m.opts.BatchSize, m.applyBlendShapes, deps...)
			deps = []jobs.Handle{h}
		}
	}

	bones := m.skin.BoneLocalToWorld()
	for i, bind := range m.source.Bindposes {
		if i < len(bones) {
			m.skinning[i] = bones[i].Mul(bind)
		} else {
			m.skinning[i] = bind
		}
	}

	return s.ScheduleParallel(n, m.opts.BatchSize, func(start, end int) {
		m.skinRange(rest, start, end)
	}, deps...)
}

// refreshWeights copies the skin's blend shape weights and reports whether
// any differs from the cached value.
func (m *DeformingMesh) refreshWeights() bool {
	current := m.skin.BlendShapeWeights()
	changed := false
	for i := range m.weights {
		var w float32
		if i < len(current) {
			w = current[i]
		}
		if w != m.weights[i] {
			m.weights[i] = w
			changed = true
		}
	}
	return changed
}

func (m *DeformingMesh) applyBlendShapes(start, end int) {
	copy(m.blendShaped[start:end], m.original[start:end])
	for i, shape := range m.source.BlendShapes {
		w := m.weights[i]
		if w == 0 {
			continue
		}
		if shape.FrameWeight > 0 {
			w /= shape.FrameWeight
		}
		for v := start; v < end; v++ {
			m.blendShaped[v] = m.blendShaped[v].Add(shape.Deltas[v].Scale(w))
		}
	}
}

// skinRange applies linear blend skinning to rest[start:end].
func (m *DeformingMesh) skinRange(rest []math.Vec3, start, end int) {
	weights := m.source.BoneWeights
	for v := start; v < end; v++ {
		p := rest[v]
		bw := weights[v]
		var out math.Vec3
		var total float32
		for k := 0; k < 4; k++ {
			w := bw.Weight[k]
			if w == 0 {
				continue
			}
			out = out.Add(m.skinning[bw.Index[k]].TransformAffine(p).Scale(w))
			total += w
		}
		if total == 0 {
			out = p
		}
		m.Vertices[v] = out
	}
}

// Transform applies mat to every vertex. Matrices within epsilon of identity
// schedule nothing and translations skip the rotation part.
func (m *DeformingMesh) Transform(s *jobs.Scheduler, mat math.Mat4, deps ...jobs.Handle) jobs.Handle {
	if mat.IsAlmostIdentity() {
		return s.Combine(deps...)
	}
	if !mat.HasRotation() {
		offset := mat.Translation()
		return s.ScheduleParallel(len(m.Vertices), m.opts.BatchSize, func(start, end int) {
			for i := start; i < end; i++ {
				m.Vertices[i] = m.Vertices[i].Add(offset)
			}
		}, deps...)
	}
	return m.Apply(s, kernel.Matrix(mat), deps...)
}

// Apply runs fn over every vertex.
func (m *DeformingMesh) Apply(s *jobs.Scheduler, fn kernel.Func, deps ...jobs.Handle) jobs.Handle {
	return m.ApplyDeferred(s, &fn, deps...)
}

// ApplyDeferred runs *fn over every vertex. fn is read when each batch
// starts, so a task in deps may still be filling it in.
func (m *DeformingMesh) ApplyDeferred(s *jobs.Scheduler, fn *kernel.Func, deps ...jobs.Handle) jobs.Handle {
	return s.ScheduleParallel(len(m.Vertices), m.opts.BatchSize, func(start, end int) {
		kernel.Run(*fn, m.Vertices, start, end)
	}, deps...)
}

// MinMax returns the component-wise extents of Vertices.
func (m *DeformingMesh) MinMax() (lo, hi math.Vec3) {
	lo, hi = math.EmptyMinMax()
	for _, v := range m.Vertices {
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	return lo, hi
}

// Farthest returns the largest dist over Vertices.
func (m *DeformingMesh) Farthest(dist func(math.Vec3) float32) float32 {
	var far float32
	for _, v := range m.Vertices {
		far = max(far, dist(v))
	}
	return far
}

// UpdateBounds records the extents of Vertices for Bounds.
func (m *DeformingMesh) UpdateBounds(s *jobs.Scheduler, deps ...jobs.Handle) jobs.Handle {
	return s.Schedule(func() {
		m.bounds = math.BoundsFromMinMax(m.MinMax())
	}, deps...)
}

// Enable hands the working copy to the renderer. Calling it again is a no-op.
func (m *DeformingMesh) Enable() {
	if !m.allocated || m.attached {
		return
	}
	m.renderer.Attach(m.render)
	m.attached = true
}

// Disable gives the renderer back its original mesh and the source bounds.
// Calling it again is a no-op.
func (m *DeformingMesh) Disable() {
	if !m.attached {
		return
	}
	m.renderer.Detach()
	m.renderer.SetBounds(m.sourceBounds, m.sourceBounds.Transform(m.localToWorld))
	m.attached = false
}

// SourceBounds returns the extents of the undeformed source mesh.
func (m *DeformingMesh) SourceBounds() math.Bounds { return m.sourceBounds }

// Commit copies the working buffers into the render mesh and pushes bounds.
// withBounds is false when bounds were not recomputed this frame.
func (m *DeformingMesh) Commit(withBounds bool) {
	if !m.allocated {
		return
	}
	copy(m.render.Vertices, m.Vertices)
	copy(m.render.Normals, m.Normals)
	if withBounds {
		m.render.Bounds = m.bounds
		m.renderer.SetBounds(m.bounds, m.bounds.Transform(m.localToWorld))
	}
}

// Dispose detaches the renderer and drops the buffers. Calling it again is a
// no-op.
func (m *DeformingMesh) Dispose() {
	if !m.allocated {
		return
	}
	m.Disable()
	m.allocated = false
	m.original = nil
	m.blendShaped = nil
	m.Vertices = nil
	m.Normals = nil
	m.faceNormals = nil
	m.adjStart = nil
	m.adjFaces = nil
	m.invValence = nil
	m.render = nil
}
