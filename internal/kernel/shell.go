package kernel

import (
	"fmt"
	"strings"
)

// Mode selects how a closed shape treats vertices around its surface.
type Mode uint8

const (
	// Outside keeps the mesh inside the shape: vertices past the surface are
	// pulled back, softened by the falloff.
	Outside Mode = iota
	// Inside keeps the mesh out of the shape: vertices inside the surface
	// are pushed out into the falloff band. Needs the farthest distance.
	Inside
	// Both pulls every vertex onto a shell around the surface: inner
	// vertices outwards, outer vertices inwards. Needs the farthest distance.
	Both
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Outside:
		return "outside"
	case Inside:
		return "inside"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "outside", "":
		*m = Outside
	case "inside":
		*m = Inside
	case "both":
		*m = Both
	default:
		return fmt.Errorf("unknown mode %q", text)
	}
	return nil
}

// NeedsFarthest reports whether the mode reads the farthest-distance
// reduction.
func (m Mode) NeedsFarthest() bool {
	return m == Inside || m == Both
}

// Shell remaps a distance from a surface at Radius according to Mode.
// Farthest is the largest distance of any vertex in the batch and is only
// read by Inside and Both.
type Shell struct {
	Mode     Mode
	Radius   float32
	FallOff  float32
	Farthest float32
}

// Remap returns the new distance for d. It reports false when d is left as
// is, including d == 0 where the direction is undefined.
func (s Shell) Remap(d float32) (float32, bool) {
	if d <= 0 {
		return d, false
	}
	switch s.Mode {
	case Inside:
		return s.remapInside(d)
	case Both:
		return s.remapBoth(d)
	default:
		return s.remapOutside(d)
	}
}

// remapOutside compresses [r, inf) into [r, r+f).
func (s Shell) remapOutside(d float32) (float32, bool) {
	r, f := s.Radius, max(s.FallOff, 0)
	if d <= r {
		return d, false
	}
	excess := d - r
	return r + excess*f/(f+excess), true
}

// remapInside expands [0, outer) into [r, outer). outer is the falloff
// boundary, pulled in to the farthest vertex when that lies inside the band.
func (s Shell) remapInside(d float32) (float32, bool) {
	r := s.Radius
	outer := r + s.FallOff
	if s.Farthest > r {
		outer = min(outer, s.Farthest)
	}
	if outer <= 0 || d >= outer {
		return d, false
	}
	return r + d*(outer-r)/outer, true
}

// remapBoth squeezes [0, r) into [r-fo, r) and (r, farthest] into
// (r, r+fo], fo being half the falloff capped at the radius.
func (s Shell) remapBoth(d float32) (float32, bool) {
	r := s.Radius
	fo := min(r, s.FallOff*0.5)
	if fo <= 0 || d == r {
		return d, false
	}
	if d < r {
		return r - fo + d*fo/r, true
	}
	if s.Farthest <= r {
		return d, false
	}
	return r + (d-r)*fo/(s.Farthest-r), true
}
