package deformer

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownKind is returned by New for kinds missing from the registry.
var ErrUnknownKind = errors.New("unknown deformer kind")

var registry = map[Kind]func() Deformer{
	KindTwist:             func() Deformer { return NewTwist() },
	KindBend:              func() Deformer { return NewBend() },
	KindRoll:              func() Deformer { return NewRoll() },
	KindBulge:             func() Deformer { return NewBulge() },
	KindStretch:           func() Deformer { return NewStretch() },
	KindWave:              func() Deformer { return NewWave() },
	KindSphere:            func() Deformer { return NewSphere() },
	KindCapsule:           func() Deformer { return NewCapsule() },
	KindCube:              func() Deformer { return NewCube() },
	KindCapsuleXZ:         func() Deformer { return NewCapsuleXZ() },
	KindSpherePush:        func() Deformer { return NewSpherePush() },
	KindRectanglePush:     func() Deformer { return NewRectanglePush() },
	KindPlane:             func() Deformer { return NewPlane() },
	KindPartialFlatCircle: func() Deformer { return NewPartialFlatCircle() },
	KindPartialFlatSquare: func() Deformer { return NewPartialFlatSquare() },
	KindPartialFlatRoller: func() Deformer { return NewPartialFlatRoller() },
	KindAngledPlanes:      func() Deformer { return NewAngledPlanes() },
	KindSuctionPoint:      func() Deformer { return NewSuctionPoint() },
	KindSuctionLine:       func() Deformer { return NewSuctionLine() },
	KindSuctionCircle:     func() Deformer { return NewSuctionCircle() },
	KindTube:              func() Deformer { return NewTube() },
	KindRollers:           func() Deformer { return NewRollers() },
	KindCylinderSplineXZ:  func() Deformer { return NewCylinderSplineXZ() },
}

// New returns a deformer of the given kind with default parameters.
func New(kind Kind) (Deformer, error) {
	ctor, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return ctor(), nil
}

// Kinds returns every registered kind in sorted order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}
