package math

// Transform is a translation/rotation/scale triple describing a local frame.
// A zero Rotation means identity and a zero Scale means (1, 1, 1), so the
// zero Transform is the identity frame.
type Transform struct {
	Position Vec3
	Rotation Quat
	Scale    Vec3
}

// NewTransform returns an identity transform.
func NewTransform() Transform {
	return Transform{Rotation: QuatIdentity(), Scale: Splat3(1)}
}

// Matrix returns the local-to-parent matrix.
func (t Transform) Matrix() Mat4 {
	rot := t.Rotation
	if rot.IsZero() {
		rot = QuatIdentity()
	}
	scale := t.Scale
	if scale == (Vec3{}) {
		scale = Splat3(1)
	}
	return TRS(t.Position, rot, scale)
}
