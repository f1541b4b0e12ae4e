package mesh

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshwarp/internal/jobs"
	"github.com/Faultbox/meshwarp/pkg/math"
)

type testRenderer struct {
	name     string
	source   *Source
	l2w      math.Mat4
	skin     Skin
	attached *RenderMesh
	attaches int
	detaches int
	local    math.Bounds
	world    math.Bounds
}

func (r *testRenderer) Name() string            { return r.name }
func (r *testRenderer) Source() *Source         { return r.source }
func (r *testRenderer) Active() bool            { return true }
func (r *testRenderer) LocalToWorld() math.Mat4 { return r.l2w }
func (r *testRenderer) Skin() Skin              { return r.skin }

func (r *testRenderer) Attach(rm *RenderMesh) {
	r.attached = rm
	r.attaches++
}

func (r *testRenderer) Detach() {
	r.attached = nil
	r.detaches++
}

func (r *testRenderer) SetBounds(local, world math.Bounds) {
	r.local, r.world = local, world
}

type testSkin struct {
	bones   []math.Mat4
	root    math.Mat4
	weights []float32
}

func (s *testSkin) BoneLocalToWorld() []math.Mat4 { return s.bones }
func (s *testSkin) RootLocalToWorld() math.Mat4   { return s.root }
func (s *testSkin) BlendShapeWeights() []float32  { return s.weights }

func newRenderer(src *Source) *testRenderer {
	return &testRenderer{name: src.Name, source: src, l2w: math.Identity()}
}

func unitCube() *Source {
	var verts []math.Vec3
	for _, x := range []float32{-0.5, 0.5} {
		for _, y := range []float32{-0.5, 0.5} {
			for _, z := range []float32{-0.5, 0.5} {
				verts = append(verts, math.Vec3{X: x, Y: y, Z: z})
			}
		}
	}
	return &Source{Name: "cube", Vertices: verts}
}

func TestSourceValidate(t *testing.T) {
	tri := []math.Vec3{{}, {X: 1}, {Z: 1}}
	tests := []struct {
		name    string
		src     *Source
		wantErr error
	}{
		{"ok", &Source{Vertices: tri, Indices: []uint32{0, 1, 2}}, nil},
		{"nil", nil, ErrInvalidSource},
		{"empty", &Source{}, ErrInvalidSource},
		{"normals mismatch", &Source{Vertices: tri, Normals: []math.Vec3{{}}}, ErrInvalidSource},
		{"partial triangle", &Source{Vertices: tri, Indices: []uint32{0, 1}}, ErrInvalidSource},
		{"index out of range", &Source{Vertices: tri, Indices: []uint32{0, 1, 3}}, ErrIndexOverflow},
		{"missing weights", &Source{Vertices: tri, Bindposes: []math.Mat4{math.Identity()}}, ErrInvalidSource},
		{"bad bone", &Source{
			Vertices:    tri[:1],
			Bindposes:   []math.Mat4{math.Identity()},
			BoneWeights: []BoneWeight{{Index: [4]int32{2}, Weight: [4]float32{1}}},
		}, ErrIndexOverflow},
		{"short blend shape", &Source{
			Vertices:    tri[:1],
			Bindposes:   []math.Mat4{math.Identity()},
			BoneWeights: []BoneWeight{{Weight: [4]float32{1}}},
			BlendShapes: []BlendShape{{Name: "smile"}},
		}, ErrInvalidSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.src.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFlatTriangleNormals(t *testing.T) {
	s := jobs.NewScheduler(2)
	defer s.Close()

	src := &Source{
		Name:     "tri",
		Vertices: []math.Vec3{{}, {Z: 1}, {X: 1}},
		Indices:  []uint32{0, 1, 2},
	}
	m, err := New(newRenderer(src), Options{BatchSize: 2, NormalBatchSize: 1})
	require.NoError(t, err)

	bake := m.Bake(s)
	zero := m.ZeroNormals(s)
	m.UpdateNormals(s, bake, zero).Complete()

	for i, n := range m.Normals {
		assert.True(t, n.ApproxEqual(math.Vec3{Y: 1}, 1e-6), "normal %d = %v", i, n)
	}
}

func TestSharedVertexNormalIsAveraged(t *testing.T) {
	s := jobs.NewScheduler(2)
	defer s.Close()

	// Two triangles folded 90 degrees along the Z axis.
	src := &Source{
		Name:     "fold",
		Vertices: []math.Vec3{{}, {Z: 1}, {X: 1}, {Y: 1}},
		Indices:  []uint32{0, 1, 2, 0, 3, 1},
		Normals:  make([]math.Vec3, 4),
	}
	m, err := New(newRenderer(src), Options{})
	require.NoError(t, err)

	m.UpdateNormals(s, m.Bake(s), m.ZeroNormals(s)).Complete()

	want := math.Vec3{X: 1, Y: 1}.Normalize()
	assert.True(t, m.Normals[0].ApproxEqual(want, 1e-5), "shared normal %v", m.Normals[0])
	assert.InDelta(t, 1, m.Normals[0].Length(), 1e-5)
	assert.True(t, m.Normals[2].ApproxEqual(math.Vec3{Y: 1}, 1e-5))
	assert.True(t, m.Normals[3].ApproxEqual(math.Vec3{X: 1}, 1e-5))
}

func TestScaledCubeBounds(t *testing.T) {
	s := jobs.NewScheduler(2)
	defer s.Close()

	r := newRenderer(unitCube())
	r.l2w = math.Translate(10, 0, 0)
	m, err := New(r, Options{BatchSize: 3})
	require.NoError(t, err)
	m.UpdateRoot()

	h := m.Bake(s)
	h = m.Transform(s, math.Scale(2, 3, 4), h)
	m.UpdateBounds(s, h).Complete()
	m.Commit(true)

	want := math.BoundsFromMinMax(math.Vec3{X: -1, Y: -1.5, Z: -2}, math.Vec3{X: 1, Y: 1.5, Z: 2})
	assert.True(t, m.Bounds().ApproxEqual(want, 1e-6), "bounds %+v", m.Bounds())
	assert.True(t, r.local.ApproxEqual(want, 1e-6))
	assert.InDelta(t, 10, r.world.Center.X, 1e-5)
	assert.Equal(t, m.Vertices, m.RenderMesh().Vertices)
}

func TestTransformFastPaths(t *testing.T) {
	s := jobs.NewScheduler(2)
	defer s.Close()

	m, err := New(newRenderer(unitCube()), Options{})
	require.NoError(t, err)
	before := append([]math.Vec3(nil), m.Vertices...)

	m.Transform(s, math.Identity()).Complete()
	assert.Equal(t, before, m.Vertices)

	m.Transform(s, math.Translate(1, 2, 3)).Complete()
	for i, v := range m.Vertices {
		assert.Equal(t, before[i].Add(math.Vec3{X: 1, Y: 2, Z: 3}), v)
	}
}

func TestSkinnedBake(t *testing.T) {
	s := jobs.NewScheduler(2)
	defer s.Close()

	src := &Source{
		Name:      "skinned",
		Vertices:  []math.Vec3{{Y: 1}, {Y: 2}},
		Bindposes: []math.Mat4{math.Identity(), math.Identity()},
		BoneWeights: []BoneWeight{
			{Index: [4]int32{0}, Weight: [4]float32{1}},
			{Index: [4]int32{0, 1}, Weight: [4]float32{0.5, 0.5}},
		},
	}
	skin := &testSkin{
		bones: []math.Mat4{math.Translate(2, 0, 0), math.Identity()},
		root:  math.Translate(0, 5, 0),
	}
	r := newRenderer(src)
	r.skin = skin
	m, err := New(r, Options{})
	require.NoError(t, err)
	require.True(t, m.Skinned())

	m.UpdateRoot()
	m.Bake(s).Complete()
	assert.Equal(t, math.Vec3{X: 2, Y: 1}, m.Vertices[0])
	assert.Equal(t, math.Vec3{X: 1, Y: 2}, m.Vertices[1])

	// Baked vertices are in world space; BakeSpace brings them to the root.
	space := m.BakeSpace()
	assert.True(t, space.TransformAffine(m.Vertices[0]).ApproxEqual(math.Vec3{X: 2, Y: -4}, 1e-6))
}

func TestBlendShapesRefreshOnWeightChange(t *testing.T) {
	s := jobs.NewScheduler(2)
	defer s.Close()

	src := &Source{
		Name:        "face",
		Vertices:    []math.Vec3{{}, {X: 1}},
		Bindposes:   []math.Mat4{math.Identity()},
		BoneWeights: []BoneWeight{{Weight: [4]float32{1}}, {Weight: [4]float32{1}}},
		BlendShapes: []BlendShape{{Name: "lift", Deltas: []math.Vec3{{Y: 2}, {Y: 4}}, FrameWeight: 100}},
	}
	skin := &testSkin{bones: []math.Mat4{math.Identity()}, root: math.Identity(), weights: []float32{50}}
	r := newRenderer(src)
	r.skin = skin
	m, err := New(r, Options{})
	require.NoError(t, err)

	m.Bake(s).Complete()
	assert.Equal(t, math.Vec3{Y: 1}, m.Vertices[0])
	assert.Equal(t, math.Vec3{X: 1, Y: 2}, m.Vertices[1])

	skin.weights[0] = 0
	m.Bake(s).Complete()
	assert.Equal(t, math.Vec3{}, m.Vertices[0])
}

func TestEnableDisableIdempotent(t *testing.T) {
	r := newRenderer(unitCube())
	m, err := New(r, Options{})
	require.NoError(t, err)

	m.Enable()
	m.Enable()
	assert.Equal(t, 1, r.attaches)
	assert.Same(t, m.RenderMesh(), r.attached)

	m.Disable()
	m.Disable()
	assert.Equal(t, 1, r.detaches)

	m.Enable()
	m.Dispose()
	m.Dispose()
	assert.Equal(t, 2, r.detaches)
	assert.False(t, m.Allocated())

	// Disposed meshes ignore further lifecycle calls.
	m.Enable()
	m.Commit(true)
	assert.Equal(t, 2, r.attaches)
}

func TestDisablePushesSourceBounds(t *testing.T) {
	s := jobs.NewScheduler(2)
	defer s.Close()

	r := newRenderer(unitCube())
	r.l2w = math.Translate(0, 5, 0)
	m, err := New(r, Options{})
	require.NoError(t, err)
	src := m.SourceBounds()
	assert.Equal(t, src, m.RenderMesh().Bounds)

	m.UpdateRoot()
	m.Enable()
	h := m.Transform(s, math.Scale(3, 3, 3), m.Bake(s))
	m.UpdateBounds(s, h).Complete()
	m.Commit(true)
	require.False(t, r.local.ApproxEqual(src, 1e-6))

	m.Disable()
	assert.Equal(t, src, r.local)
	assert.True(t, r.world.ApproxEqual(src.Transform(r.l2w), 1e-5), "world bounds %+v", r.world)
}

func TestReductions(t *testing.T) {
	m, err := New(newRenderer(unitCube()), Options{})
	require.NoError(t, err)

	lo, hi := m.MinMax()
	assert.Equal(t, math.Splat3(-0.5), lo)
	assert.Equal(t, math.Splat3(0.5), hi)
	assert.InDelta(t, 0.866, m.Farthest(math.Vec3.Length), 1e-3)
}
