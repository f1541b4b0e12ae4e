// Package mesh holds the per-mesh buffers the deformation pipeline works on
// and the interfaces it uses to talk to the host: the renderer that owns a
// mesh and the skin that poses it.
package mesh

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/meshwarp/pkg/math"
)

// Source validation errors.
var (
	ErrInvalidSource = errors.New("invalid source mesh")
	ErrIndexOverflow = errors.New("mesh index out of range")
)

// BoneWeight binds a vertex to up to four bones. Unused slots have zero
// weight.
type BoneWeight struct {
	Index  [4]int32
	Weight [4]float32
}

// BlendShape is a set of per-vertex offsets, fully applied when the shape's
// weight reaches FrameWeight.
type BlendShape struct {
	Name        string
	Deltas      []math.Vec3
	FrameWeight float32
}

// Source is the immutable input mesh. The pipeline never writes to it.
type Source struct {
	Name     string
	Vertices []math.Vec3
	Normals  []math.Vec3
	Indices  []uint32

	// Skinning data, empty for static meshes.
	BoneWeights []BoneWeight
	Bindposes   []math.Mat4
	BlendShapes []BlendShape
}

// Skinned reports whether s carries bone data.
func (s *Source) Skinned() bool {
	return len(s.Bindposes) > 0
}

// Validate checks that s can back a DeformingMesh.
func (s *Source) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil", ErrInvalidSource)
	}
	n := len(s.Vertices)
	if n == 0 {
		return fmt.Errorf("%w: %s has no vertices", ErrInvalidSource, s.Name)
	}
	if uint64(n) > gomath.MaxUint32 {
		return fmt.Errorf("%w: %s has %d vertices", ErrIndexOverflow, s.Name, n)
	}
	if uint64(len(s.Indices)) > gomath.MaxInt32 {
		return fmt.Errorf("%w: %s has %d indices", ErrIndexOverflow, s.Name, len(s.Indices))
	}
	if len(s.Normals) != 0 && len(s.Normals) != n {
		return fmt.Errorf("%w: %s has %d normals for %d vertices", ErrInvalidSource, s.Name, len(s.Normals), n)
	}
	if len(s.Indices)%3 != 0 {
		return fmt.Errorf("%w: %s index count %d is not a multiple of 3", ErrInvalidSource, s.Name, len(s.Indices))
	}
	for i, idx := range s.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: %s index %d references vertex %d of %d", ErrIndexOverflow, s.Name, i, idx, n)
		}
	}

	if !s.Skinned() {
		return nil
	}
	if len(s.BoneWeights) != n {
		return fmt.Errorf("%w: %s has %d bone weights for %d vertices", ErrInvalidSource, s.Name, len(s.BoneWeights), n)
	}
	for i, bw := range s.BoneWeights {
		for k, b := range bw.Index {
			if bw.Weight[k] != 0 && (b < 0 || int(b) >= len(s.Bindposes)) {
				return fmt.Errorf("%w: %s vertex %d references bone %d of %d", ErrIndexOverflow, s.Name, i, b, len(s.Bindposes))
			}
		}
	}
	for _, shape := range s.BlendShapes {
		if len(shape.Deltas) != n {
			return fmt.Errorf("%w: %s blend shape %q has %d deltas for %d vertices",
				ErrInvalidSource, s.Name, shape.Name, len(shape.Deltas), n)
		}
	}
	return nil
}
