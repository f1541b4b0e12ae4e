package scene

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshwarp/pkg/math"
)

// VecKey is a position or scale keyframe. Time is in seconds.
type VecKey struct {
	Time  float32
	Value math.Vec3
}

// QuatKey is a rotation keyframe.
type QuatKey struct {
	Time  float32
	Value math.Quat
}

// ScalarKey is a blend shape weight keyframe.
type ScalarKey struct {
	Time  float32
	Value float32
}

// Bone is one joint of a Rig. Parent is an index into the rig's bones that
// precedes this bone, or -1 for a root.
type Bone struct {
	Name     string
	Parent   int
	Rest     math.Transform
	Position []VecKey
	Rotation []QuatKey
	Scale    []VecKey
}

// Rig poses a bone hierarchy from keyframes. It implements mesh.Skin; the
// first bone is the root.
type Rig struct {
	bones  []Bone
	parent math.Mat4
	length float32

	world     []math.Mat4
	blendKeys [][]ScalarKey
	weights   []float32
}

// NewRig creates a rig in its rest pose under parent, the owning
// renderer's frame.
func NewRig(bones []Bone, blendKeys [][]ScalarKey, parent math.Mat4) *Rig {
	r := &Rig{
		bones:     bones,
		parent:    parent,
		world:     make([]math.Mat4, len(bones)),
		blendKeys: blendKeys,
		weights:   make([]float32, len(blendKeys)),
	}
	for _, b := range bones {
		r.length = max(r.length, lastTime(b.Position), lastTime(b.Scale))
		if n := len(b.Rotation); n > 0 {
			r.length = max(r.length, b.Rotation[n-1].Time)
		}
	}
	for _, keys := range blendKeys {
		if n := len(keys); n > 0 {
			r.length = max(r.length, keys[n-1].Time)
		}
	}
	r.pose(func(b Bone) math.Mat4 { return b.Rest.Matrix() })
	return r
}

func lastTime(keys []VecKey) float32 {
	if len(keys) == 0 {
		return 0
	}
	return keys[len(keys)-1].Time
}

// Length returns the animation length in seconds.
func (r *Rig) Length() float32 { return r.length }

// Bindposes returns, per bone, the matrix taking rest mesh space into the
// bone's rest space.
func (r *Rig) Bindposes() []math.Mat4 {
	rest := make([]math.Mat4, len(r.bones))
	for i, b := range r.bones {
		local := b.Rest.Matrix()
		if b.Parent >= 0 {
			local = rest[b.Parent].Mul(local)
		}
		rest[i] = local
	}
	out := make([]math.Mat4, len(rest))
	for i, m := range rest {
		out[i] = m.Inverse()
	}
	return out
}

// Pose evaluates every track at t seconds, looping over Length.
func (r *Rig) Pose(t float32) {
	if r.length > 0 {
		t = math32.Mod(t, r.length)
	}
	r.pose(func(b Bone) math.Mat4 {
		pos := interpolateVec(b.Position, t, b.Rest.Position)
		rot := interpolateQuat(b.Rotation, t, b.Rest.Rotation)
		scale := interpolateVec(b.Scale, t, b.Rest.Scale)
		return math.Transform{Position: pos, Rotation: rot, Scale: scale}.Matrix()
	})
	for i, keys := range r.blendKeys {
		r.weights[i] = interpolateScalar(keys, t)
	}
}

// pose walks the hierarchy parent first.
func (r *Rig) pose(local func(Bone) math.Mat4) {
	for i, b := range r.bones {
		parent := r.parent
		if b.Parent >= 0 {
			parent = r.world[b.Parent]
		}
		r.world[i] = parent.Mul(local(b))
	}
}

// BoneLocalToWorld implements mesh.Skin.
func (r *Rig) BoneLocalToWorld() []math.Mat4 { return r.world }

// RootLocalToWorld implements mesh.Skin.
func (r *Rig) RootLocalToWorld() math.Mat4 {
	if len(r.world) == 0 {
		return r.parent
	}
	return r.world[0]
}

// BlendShapeWeights implements mesh.Skin.
func (r *Rig) BlendShapeWeights() []float32 { return r.weights }

// keySpan finds the keys around t. Keys are sorted by time; past either end
// prev == next.
func keySpan(n int, at func(int) float32, t float32) (prev, next int, frac float32) {
	for i := 0; i < n; i++ {
		if at(i) > t {
			next = i
			break
		}
		prev = i
		next = i
	}
	if prev == next {
		return prev, next, 0
	}
	t0, t1 := at(prev), at(next)
	if t1 != t0 {
		frac = (t - t0) / (t1 - t0)
	}
	return prev, next, frac
}

// interpolateQuat slerps rotation keys at t, or returns fallback when there
// are none.
func interpolateQuat(keys []QuatKey, t float32, fallback math.Quat) math.Quat {
	if len(keys) == 0 {
		return fallback
	}
	prev, next, frac := keySpan(len(keys), func(i int) float32 { return keys[i].Time }, t)
	if prev == next {
		return keys[prev].Value
	}
	return keys[prev].Value.Slerp(keys[next].Value, frac)
}

// interpolateVec lerps position or scale keys at t.
func interpolateVec(keys []VecKey, t float32, fallback math.Vec3) math.Vec3 {
	if len(keys) == 0 {
		return fallback
	}
	prev, next, frac := keySpan(len(keys), func(i int) float32 { return keys[i].Time }, t)
	return keys[prev].Value.Lerp(keys[next].Value, frac)
}

func interpolateScalar(keys []ScalarKey, t float32) float32 {
	if len(keys) == 0 {
		return 0
	}
	prev, next, frac := keySpan(len(keys), func(i int) float32 { return keys[i].Time }, t)
	return math.Lerp(keys[prev].Value, keys[next].Value, frac)
}
