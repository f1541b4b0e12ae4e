// Package spline provides the smooth radius profiles used by spline-driven
// deformers: cubic resampling of control points, piecewise-linear lookup and
// lathe geometry for previews.
package spline

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/meshwarp/pkg/math"
)

// Errors returned by InterpolateXY.
var (
	ErrTooFewPoints = errors.New("spline needs at least 2 points")
	ErrDegenerate   = errors.New("spline has coincident consecutive points")
)

// InterpolateXY returns count points along a smooth curve through points,
// spaced evenly by arc length. The curve is a cubic spline in each of X and
// Y, parameterized by the cumulative distance between input points.
func InterpolateXY(points []math.Vec2, count int) ([]math.Vec2, error) {
	if len(points) < 2 {
		return nil, ErrTooFewPoints
	}
	if count < 2 {
		return nil, fmt.Errorf("resample count %d: %w", count, ErrTooFewPoints)
	}

	xs := make([]float32, len(points))
	ys := make([]float32, len(points))
	dist := make([]float32, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
		if i > 0 {
			step := p.Distance(points[i-1])
			if step == 0 {
				return nil, fmt.Errorf("points %d and %d: %w", i-1, i, ErrDegenerate)
			}
			dist[i] = dist[i-1] + step
		}
	}

	spacing := dist[len(dist)-1] / float32(count-1)
	even := make([]float32, count)
	for i := range even {
		even[i] = float32(i) * spacing
	}

	xOut := interpolate(dist, xs, even)
	yOut := interpolate(dist, ys, even)

	out := make([]math.Vec2, count)
	for i := range out {
		out[i] = math.Vec2{X: xOut[i], Y: yOut[i]}
	}
	return out, nil
}

// interpolate evaluates the spline through (xOrig, yOrig) at every xInterp.
// xOrig must be strictly increasing.
func interpolate(xOrig, yOrig, xInterp []float32) []float32 {
	a, b := fitMatrix(xOrig, yOrig)

	out := make([]float32, len(xInterp))
	for i, x := range xInterp {
		j := 0
		for ; j < len(xOrig)-2; j++ {
			if x <= xOrig[j+1] {
				break
			}
		}
		dx := xOrig[j+1] - xOrig[j]
		t := (x - xOrig[j]) / dx
		out[i] = (1-t)*yOrig[j] + t*yOrig[j+1] + t*(1-t)*(a[j]*(1-t)+b[j]*t)
	}
	return out
}

// fitMatrix solves the tridiagonal system for the knot slopes and returns the
// per-segment a, b coefficients of the symmetric cubic form.
func fitMatrix(x, y []float32) (a, b []float32) {
	n := len(x)
	a = make([]float32, n-1)
	b = make([]float32, n-1)
	r := make([]float32, n)
	lower := make([]float32, n)
	diag := make([]float32, n)
	upper := make([]float32, n)

	dx1 := x[1] - x[0]
	upper[0] = 1 / dx1
	diag[0] = 2 * upper[0]
	r[0] = 3 * (y[1] - y[0]) / (dx1 * dx1)

	for i := 1; i < n-1; i++ {
		dx1 := x[i] - x[i-1]
		dx2 := x[i+1] - x[i]
		lower[i] = 1 / dx1
		upper[i] = 1 / dx2
		diag[i] = 2 * (lower[i] + upper[i])
		dy1 := y[i] - y[i-1]
		dy2 := y[i+1] - y[i]
		r[i] = 3 * (dy1/(dx1*dx1) + dy2/(dx2*dx2))
	}

	dx1 = x[n-1] - x[n-2]
	dy1 := y[n-1] - y[n-2]
	lower[n-1] = 1 / dx1
	diag[n-1] = 2 * lower[n-1]
	r[n-1] = 3 * dy1 / (dx1 * dx1)

	// Thomas algorithm.
	cPrime := make([]float32, n)
	dPrime := make([]float32, n)
	cPrime[0] = upper[0] / diag[0]
	dPrime[0] = r[0] / diag[0]
	for i := 1; i < n; i++ {
		m := diag[i] - cPrime[i-1]*lower[i]
		cPrime[i] = upper[i] / m
		dPrime[i] = (r[i] - dPrime[i-1]*lower[i]) / m
	}

	k := make([]float32, n)
	k[n-1] = dPrime[n-1]
	for i := n - 2; i >= 0; i-- {
		k[i] = dPrime[i] - cPrime[i]*k[i+1]
	}

	for i := 1; i < n; i++ {
		dx := x[i] - x[i-1]
		dy := y[i] - y[i-1]
		a[i-1] = k[i-1]*dx - dy
		b[i-1] = -k[i]*dx + dy
	}
	return a, b
}

// Profile is a piecewise-linear radius as a function of height, built from
// points sorted by X (height) with Y as the radius.
type Profile struct {
	segments  []segment
	maxRadius float32
}

type segment struct {
	nextX     float32
	slope     float32
	intercept float32
}

// NewProfile builds a lookup table from points.
func NewProfile(points []math.Vec2) Profile {
	var p Profile
	for _, pt := range points {
		p.maxRadius = max(p.maxRadius, pt.Y)
	}
	for i := 1; i < len(points); i++ {
		prev, next := points[i-1], points[i]
		dx := next.X - prev.X
		if dx == 0 {
			p.segments = append(p.segments, segment{nextX: next.X, intercept: prev.Y})
			continue
		}
		slope := (next.Y - prev.Y) / dx
		p.segments = append(p.segments, segment{
			nextX:     next.X,
			slope:     slope,
			intercept: prev.Y - prev.X*slope,
		})
	}
	return p
}

// Empty reports whether the profile has no segments.
func (p Profile) Empty() bool {
	return len(p.segments) == 0
}

// MaxRadius returns the largest radius of any control point.
func (p Profile) MaxRadius() float32 {
	return p.maxRadius
}

// Radius returns the radius at height y using the first segment that ends
// above y, or 0 past the last segment.
func (p Profile) Radius(y float32) float32 {
	for _, s := range p.segments {
		if y < s.nextX {
			return y*s.slope + s.intercept
		}
	}
	return 0
}

// Geometry is an indexed triangle mesh.
type Geometry struct {
	Vertices []math.Vec3
	Normals  []math.Vec3
	Indices  []uint32
}

// Cylinder builds a lathe around Y from profile points (X = height,
// Y = radius) with capped ends at ±height/2.
func Cylinder(points []math.Vec2, height float32, radialSegments int) Geometry {
	var g Geometry
	if len(points) < 2 || radialSegments < 3 {
		return g
	}
	rows := len(points)
	cols := radialSegments + 1

	for y, pt := range points {
		slope := profileSlope(points, y)
		for x := 0; x < cols; x++ {
			theta := float32(x) / float32(radialSegments) * 2 * math.Pi
			s, c := math32.Sincos(theta)
			g.Vertices = append(g.Vertices, math.Vec3{X: pt.Y * s, Y: pt.X, Z: pt.Y * c})
			g.Normals = append(g.Normals, math.Vec3{X: s, Y: slope, Z: c}.Normalize())
		}
	}
	for x := 0; x < radialSegments; x++ {
		for y := 0; y < rows-1; y++ {
			a := uint32(y*cols + x)
			b := uint32((y+1)*cols + x)
			c := uint32((y+1)*cols + x + 1)
			d := uint32(y*cols + x + 1)
			g.Indices = append(g.Indices, b, a, d, c, b, d)
		}
	}

	g.cap(points[rows-1].Y, height*0.5, radialSegments, true)
	g.cap(points[0].Y, -height*0.5, radialSegments, false)
	return g
}

// profileSlope is the outward normal's Y component at row i.
func profileSlope(points []math.Vec2, i int) float32 {
	n := len(points) - 1
	slope := func(a, b math.Vec2) float32 {
		if b.X == a.X {
			return 0
		}
		return (b.Y - a.Y) / (b.X - a.X)
	}
	switch i {
	case 0:
		return -slope(points[0], points[1])
	case n:
		return -slope(points[n-1], points[n])
	default:
		return -(slope(points[i-1], points[i]) + slope(points[i], points[i+1])) * 0.5
	}
}

func (g *Geometry) cap(radius, y float32, radialSegments int, top bool) {
	normal := math.Vec3{Y: -1}
	if top {
		normal.Y = 1
	}

	centerStart := uint32(len(g.Vertices))
	for x := 0; x < radialSegments; x++ {
		g.Vertices = append(g.Vertices, math.Vec3{Y: y})
		g.Normals = append(g.Normals, normal)
	}
	ringStart := uint32(len(g.Vertices))
	for x := 0; x <= radialSegments; x++ {
		theta := float32(x) / float32(radialSegments) * 2 * math.Pi
		s, c := math32.Sincos(theta)
		g.Vertices = append(g.Vertices, math.Vec3{X: radius * s, Y: y, Z: radius * c})
		g.Normals = append(g.Normals, normal)
	}
	for x := 0; x < radialSegments; x++ {
		i := ringStart + uint32(x)
		if top {
			g.Indices = append(g.Indices, i, i+1, centerStart+uint32(x))
		} else {
			g.Indices = append(g.Indices, i+1, i, centerStart+uint32(x))
		}
	}
}
