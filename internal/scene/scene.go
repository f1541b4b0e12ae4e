// Package scene loads benchmark scenes: procedural meshes, the renderers
// showing them and the ordered deformer list.
//
// A scene file is YAML:
//
//	meshes:
//	  - name: column
//	    shape: cylinder
//	    size: [0.5, 2, 0.5]
//	    segments: 24
//	    rows: 40
//	renderers:
//	  - name: column
//	    mesh: column
//	    transform: {position: [0, 1, 0]}
//	deformers:
//	  - kind: twist
//	    params: {rotations: 0.25, falloff: 1}
//
// Renderers with a rig are skinned: bones are weighted to vertices by
// height and posed from keyframes as the scene advances.
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshwarp/internal/deformer"
	"github.com/Faultbox/meshwarp/internal/mesh"
	"github.com/Faultbox/meshwarp/pkg/math"
)

// ErrInvalidScene wraps every problem found while building a scene.
var ErrInvalidScene = errors.New("invalid scene")

// File is the YAML layout of a scene.
type File struct {
	Meshes    []MeshSpec     `yaml:"meshes"`
	Renderers []RendererSpec `yaml:"renderers"`
	Deformers []DeformerSpec `yaml:"deformers"`
}

// TransformSpec is a frame with rotation in Euler degrees.
type TransformSpec struct {
	Position [3]float32 `yaml:"position"`
	Rotation [3]float32 `yaml:"rotation"`
	Scale    [3]float32 `yaml:"scale"`
}

// Transform converts t. A zero scale means unit scale.
func (t TransformSpec) Transform() math.Transform {
	out := math.Transform{
		Position: vec3(t.Position),
		Rotation: math.QuatFromEuler(vec3(t.Rotation)),
		Scale:    vec3(t.Scale),
	}
	if out.Scale == (math.Vec3{}) {
		out.Scale = math.Splat3(1)
	}
	return out
}

func vec3(v [3]float32) math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// RendererSpec places a mesh in the scene.
type RendererSpec struct {
	Name      string        `yaml:"name"`
	Mesh      string        `yaml:"mesh"`
	Active    *bool         `yaml:"active"`
	Transform TransformSpec `yaml:"transform"`
	Rig       *RigSpec      `yaml:"rig"`
}

// RigSpec describes the bones and blend shapes of a skinned renderer.
type RigSpec struct {
	Bones       []BoneSpec       `yaml:"bones"`
	BlendShapes []BlendShapeSpec `yaml:"blend_shapes"`
}

// BoneSpec is one bone. Parent names an earlier bone; empty makes a root.
type BoneSpec struct {
	Name      string        `yaml:"name"`
	Parent    string        `yaml:"parent"`
	Transform TransformSpec `yaml:"transform"`
	Keys      []BoneKeySpec `yaml:"keys"`
}

// BoneKeySpec sets any of a bone's channels at Time seconds.
type BoneKeySpec struct {
	Time     float32     `yaml:"time"`
	Position *[3]float32 `yaml:"position"`
	Rotation *[3]float32 `yaml:"rotation"`
	Scale    *[3]float32 `yaml:"scale"`
}

// BlendShapeSpec is a blend shape scaling the mesh around its origin.
type BlendShapeSpec struct {
	Name        string      `yaml:"name"`
	Scale       [3]float32  `yaml:"scale"`
	FrameWeight float32     `yaml:"frame_weight"`
	Keys        []WeightKey `yaml:"keys"`
}

// WeightKey sets a blend shape weight at Time seconds.
type WeightKey struct {
	Time   float32 `yaml:"time"`
	Weight float32 `yaml:"weight"`
}

// DeformerSpec is one entry of the deformer list. Params is decoded into
// the deformer created for Kind, so its keys are that deformer's fields.
type DeformerSpec struct {
	Kind      deformer.Kind `yaml:"kind"`
	Name      string        `yaml:"name"`
	Enabled   *bool         `yaml:"enabled"`
	Transform TransformSpec `yaml:"transform"`
	Params    yaml.Node     `yaml:"params"`
}

// Scene is a built scene ready to hand to the pipeline.
type Scene struct {
	Renderers []*Renderer
	Deformers []deformer.Deformer

	time float32
}

// Load reads and builds the scene at path.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading scene %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading scene %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and builds a scene from YAML.
func Parse(data []byte) (*Scene, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	return Build(f)
}

// Build creates the meshes, renderers and deformers of f. Every problem is
// collected and reported together.
func Build(f File) (*Scene, error) {
	var errs error
	s := &Scene{}

	sources := make(map[string]*mesh.Source, len(f.Meshes))
	for _, spec := range f.Meshes {
		if _, dup := sources[spec.Name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("duplicate mesh %q", spec.Name))
			continue
		}
		src, err := spec.Build()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		sources[spec.Name] = src
	}

	for _, spec := range f.Renderers {
		r, err := buildRenderer(spec, sources)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		s.Renderers = append(s.Renderers, r)
	}

	for i, spec := range f.Deformers {
		d, err := buildDeformer(spec)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("deformer %d: %w", i, err))
			continue
		}
		s.Deformers = append(s.Deformers, d)
	}

	if errs != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScene, errs)
	}
	return s, nil
}

func buildRenderer(spec RendererSpec, sources map[string]*mesh.Source) (*Renderer, error) {
	src, ok := sources[spec.Mesh]
	if !ok {
		return nil, fmt.Errorf("renderer %s: unknown mesh %q", spec.Name, spec.Mesh)
	}
	name := spec.Name
	if name == "" {
		name = spec.Mesh
	}
	transform := spec.Transform.Transform()

	var r *Renderer
	if spec.Rig == nil {
		r = NewRenderer(name, src, transform)
	} else {
		rig, skinned, err := buildRig(*spec.Rig, src, transform.Matrix())
		if err != nil {
			return nil, fmt.Errorf("renderer %s: %w", name, err)
		}
		r = NewSkinnedRenderer(name, skinned, transform, rig)
	}
	if spec.Active != nil {
		r.SetActive(*spec.Active)
	}
	return r, nil
}

func buildDeformer(spec DeformerSpec) (deformer.Deformer, error) {
	d, err := deformer.New(spec.Kind)
	if err != nil {
		return nil, err
	}
	if spec.Params.Kind != 0 {
		if err := spec.Params.Decode(d); err != nil {
			return nil, fmt.Errorf("%s params: %w", spec.Kind, err)
		}
	}
	base := d.Common()
	if spec.Name != "" {
		base.Name = spec.Name
	}
	if spec.Enabled != nil {
		base.Enabled = *spec.Enabled
	}
	base.Transform = spec.Transform.Transform()
	return d, nil
}

// buildRig creates the rig and a copy of src carrying its skinning data.
func buildRig(spec RigSpec, src *mesh.Source, parent math.Mat4) (*Rig, *mesh.Source, error) {
	if len(spec.Bones) == 0 {
		return nil, nil, errors.New("rig has no bones")
	}

	index := make(map[string]int, len(spec.Bones))
	bones := make([]Bone, len(spec.Bones))
	for i, b := range spec.Bones {
		parentIdx := -1
		if b.Parent != "" {
			p, ok := index[b.Parent]
			if !ok {
				return nil, nil, fmt.Errorf("bone %s: parent %q must be listed before it", b.Name, b.Parent)
			}
			parentIdx = p
		}
		index[b.Name] = i
		bones[i] = boneFromSpec(b, parentIdx)
	}

	blendKeys := make([][]ScalarKey, len(spec.BlendShapes))
	skinned := *src
	for i, bs := range spec.BlendShapes {
		scale := vec3(bs.Scale)
		deltas := make([]math.Vec3, len(src.Vertices))
		for v, p := range src.Vertices {
			deltas[v] = p.Mul(scale).Sub(p)
		}
		frameWeight := bs.FrameWeight
		if frameWeight <= 0 {
			frameWeight = 100
		}
		skinned.BlendShapes = append(skinned.BlendShapes, mesh.BlendShape{
			Name:        bs.Name,
			Deltas:      deltas,
			FrameWeight: frameWeight,
		})
		for _, k := range bs.Keys {
			blendKeys[i] = append(blendKeys[i], ScalarKey{Time: k.Time, Value: k.Weight})
		}
	}

	rig := NewRig(bones, blendKeys, parent)
	skinned.Bindposes = rig.Bindposes()
	skinned.BoneWeights = heightWeights(src.Vertices, restHeights(bones))
	if err := skinned.Validate(); err != nil {
		return nil, nil, err
	}
	return rig, &skinned, nil
}

func boneFromSpec(b BoneSpec, parent int) Bone {
	out := Bone{Name: b.Name, Parent: parent, Rest: b.Transform.Transform()}
	keys := slices.Clone(b.Keys)
	slices.SortStableFunc(keys, func(x, y BoneKeySpec) int {
		switch {
		case x.Time < y.Time:
			return -1
		case x.Time > y.Time:
			return 1
		}
		return 0
	})
	for _, k := range keys {
		if k.Position != nil {
			out.Position = append(out.Position, VecKey{Time: k.Time, Value: vec3(*k.Position)})
		}
		if k.Rotation != nil {
			out.Rotation = append(out.Rotation, QuatKey{Time: k.Time, Value: math.QuatFromEuler(vec3(*k.Rotation))})
		}
		if k.Scale != nil {
			out.Scale = append(out.Scale, VecKey{Time: k.Time, Value: vec3(*k.Scale)})
		}
	}
	return out
}

// restHeights returns each bone's rest height in mesh space.
func restHeights(bones []Bone) []float32 {
	rest := make([]math.Mat4, len(bones))
	heights := make([]float32, len(bones))
	for i, b := range bones {
		m := b.Rest.Matrix()
		if b.Parent >= 0 {
			m = rest[b.Parent].Mul(m)
		}
		rest[i] = m
		heights[i] = m.Translation().Y
	}
	return heights
}

// heightWeights binds each vertex to the two bones whose rest heights
// bracket it, blending linearly between them.
func heightWeights(vertices []math.Vec3, heights []float32) []mesh.BoneWeight {
	order := make([]int, len(heights))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case heights[a] < heights[b]:
			return -1
		case heights[a] > heights[b]:
			return 1
		}
		return 0
	})

	out := make([]mesh.BoneWeight, len(vertices))
	for v, p := range vertices {
		var bw mesh.BoneWeight
		switch {
		case p.Y <= heights[order[0]]:
			bw.Index[0], bw.Weight[0] = int32(order[0]), 1
		case p.Y >= heights[order[len(order)-1]]:
			bw.Index[0], bw.Weight[0] = int32(order[len(order)-1]), 1
		default:
			k := 0
			for k+1 < len(order) && heights[order[k+1]] <= p.Y {
				k++
			}
			lo, hi := order[k], order[k+1]
			t := math.InverseLerp(heights[lo], heights[hi], p.Y)
			bw.Index[0], bw.Weight[0] = int32(lo), 1-t
			bw.Index[1], bw.Weight[1] = int32(hi), t
		}
		out[v] = bw
	}
	return out
}

// MeshRenderers returns the renderers as the pipeline consumes them.
func (s *Scene) MeshRenderers() []mesh.Renderer {
	out := make([]mesh.Renderer, len(s.Renderers))
	for i, r := range s.Renderers {
		out[i] = r
	}
	return out
}

// Advance moves the scene clock by dt and poses every rig.
func (s *Scene) Advance(dt time.Duration) {
	s.time += float32(dt.Seconds())
	for _, r := range s.Renderers {
		if r.rig != nil {
			r.rig.Pose(s.time)
		}
	}
}

// Time returns the scene clock in seconds.
func (s *Scene) Time() float32 { return s.time }
