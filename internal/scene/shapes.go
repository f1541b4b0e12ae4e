package scene

import (
	"fmt"

	"github.com/Faultbox/meshwarp/internal/mesh"
	"github.com/Faultbox/meshwarp/pkg/math"
	"github.com/Faultbox/meshwarp/pkg/spline"
)

// Procedural mesh shapes.
const (
	ShapeGrid     = "grid"
	ShapeCube     = "cube"
	ShapeCylinder = "cylinder"
	ShapeLathe    = "lathe"
)

// MeshSpec describes a procedural source mesh.
type MeshSpec struct {
	Name  string     `yaml:"name"`
	Shape string     `yaml:"shape"`
	Size  [3]float32 `yaml:"size"`
	// Segments subdivides grids and cube faces, or sets the radial segment
	// count of cylinders and lathes.
	Segments int `yaml:"segments"`
	// Rows is the number of height rings of cylinders and lathes.
	Rows int `yaml:"rows"`
	// Profile holds lathe control points as [height, radius] pairs.
	Profile [][2]float32 `yaml:"profile"`
}

// Build generates the source mesh.
func (s MeshSpec) Build() (*mesh.Source, error) {
	size := math.Vec3{X: s.Size[0], Y: s.Size[1], Z: s.Size[2]}
	if size == (math.Vec3{}) {
		size = math.Splat3(1)
	}
	segments := max(s.Segments, 1)

	var g spline.Geometry
	switch s.Shape {
	case ShapeGrid:
		g = gridGeometry(size, segments)
	case ShapeCube:
		g = cubeGeometry(size, segments)
	case ShapeCylinder:
		rows := max(s.Rows, 2)
		points := make([]math.Vec2, rows)
		for i := range points {
			points[i] = math.Vec2{X: size.Y * (float32(i)/float32(rows-1) - 0.5), Y: size.X * 0.5}
		}
		g = spline.Cylinder(points, size.Y, max(s.Segments, 3))
	case ShapeLathe:
		control := make([]math.Vec2, len(s.Profile))
		for i, p := range s.Profile {
			control[i] = math.Vec2{X: p[0], Y: p[1]}
		}
		points, err := spline.InterpolateXY(control, max(s.Rows, 2))
		if err != nil {
			return nil, fmt.Errorf("mesh %s profile: %w", s.Name, err)
		}
		// Center the profile so the caps land on its ends.
		first, last := points[0].X, points[len(points)-1].X
		mid := (first + last) * 0.5
		for i := range points {
			points[i].X -= mid
		}
		g = spline.Cylinder(points, last-first, max(s.Segments, 3))
	default:
		return nil, fmt.Errorf("mesh %s: unknown shape %q", s.Name, s.Shape)
	}

	src := &mesh.Source{
		Name:     s.Name,
		Vertices: g.Vertices,
		Normals:  g.Normals,
		Indices:  g.Indices,
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}
	return src, nil
}

// gridGeometry builds an XZ plane centered on the origin.
func gridGeometry(size math.Vec3, segments int) spline.Geometry {
	var g spline.Geometry
	addFace(&g, math.Vec3{X: -size.X * 0.5, Z: -size.Z * 0.5}, math.Vec3{Z: size.Z}, math.Vec3{X: size.X}, segments)
	return g
}

// cubeGeometry builds a box centered on the origin with each face split into
// segments x segments quads. Faces do not share vertices, so normals stay
// flat.
func cubeGeometry(size math.Vec3, segments int) spline.Geometry {
	var g spline.Geometry
	h := size.Scale(0.5)
	x := math.Vec3{X: size.X}
	y := math.Vec3{Y: size.Y}
	z := math.Vec3{Z: size.Z}
	lo := h.Scale(-1)

	addFace(&g, math.Vec3{X: -h.X, Y: h.Y, Z: -h.Z}, z, x, segments) // +Y
	addFace(&g, lo, x, z, segments)                                  // -Y
	addFace(&g, math.Vec3{X: h.X, Y: -h.Y, Z: -h.Z}, y, z, segments) // +X
	addFace(&g, lo, z, y, segments)                                  // -X
	addFace(&g, math.Vec3{X: -h.X, Y: -h.Y, Z: h.Z}, x, y, segments) // +Z
	addFace(&g, lo, y, x, segments)                                  // -Z
	return g
}

// addFace appends a subdivided parallelogram spanned by u and v. Triangles
// wind so their normal is u x v.
func addFace(g *spline.Geometry, origin, u, v math.Vec3, segments int) {
	normal := u.Cross(v).Normalize()
	base := uint32(len(g.Vertices))
	cols := uint32(segments + 1)
	step := 1 / float32(segments)

	for j := 0; j <= segments; j++ {
		for i := 0; i <= segments; i++ {
			p := origin.Add(u.Scale(float32(i) * step)).Add(v.Scale(float32(j) * step))
			g.Vertices = append(g.Vertices, p)
			g.Normals = append(g.Normals, normal)
		}
	}
	for j := uint32(0); j < uint32(segments); j++ {
		for i := uint32(0); i < uint32(segments); i++ {
			p00 := base + j*cols + i
			p10 := p00 + 1
			p01 := p00 + cols
			p11 := p01 + 1
			g.Indices = append(g.Indices, p00, p10, p01, p10, p11, p01)
		}
	}
}
