package framekit

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Vertex is a single point of a Geometry, with a texture coordinate.
type Vertex struct {
	Position mgl64.Vec3
	UV       mgl64.Vec2
}

// NewVertex creates a new Vertex with the provided position and UV values.
func NewVertex(x, y, z, u, v float64) Vertex {
	return Vertex{
		Position: mgl64.Vec3{x, y, z},
		UV:       mgl64.Vec2{u, v},
	}
}

// Geometry is an indexed triangle list. Every three indices form one triangle, wound counter-clockwise when seen from
// its front side. Geometry is shared between Renderables and never owned by a Node.
type Geometry struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

// NewGeometry creates a new Geometry. It returns an error if the index count isn't a multiple of 3 or an index is out of range.
func NewGeometry(name string, vertices []Vertex, indices []uint32) (*Geometry, error) {
	if len(indices)%3 != 0 {
		return nil, errors.Errorf("geometry %q: index count %d is not a multiple of 3", name, len(indices))
	}
	for _, i := range indices {
		if int(i) >= len(vertices) {
			return nil, errors.Errorf("geometry %q: index %d out of range (%d vertices)", name, i, len(vertices))
		}
	}
	return &Geometry{Name: name, Vertices: vertices, Indices: indices}, nil
}

// TriangleCount returns how many triangles the Geometry has.
func (geometry *Geometry) TriangleCount() int {
	return len(geometry.Indices) / 3
}

// Triangle returns the three vertices of the indexed triangle.
func (geometry *Geometry) Triangle(index int) (Vertex, Vertex, Vertex) {
	i := index * 3
	return geometry.Vertices[geometry.Indices[i]], geometry.Vertices[geometry.Indices[i+1]], geometry.Vertices[geometry.Indices[i+2]]
}

// Bounds returns the local-space axis-aligned bounds of the Geometry.
func (geometry *Geometry) Bounds() (min, max mgl64.Vec3) {
	if len(geometry.Vertices) == 0 {
		return
	}
	min = mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, v := range geometry.Vertices {
		for a := 0; a < 3; a++ {
			min[a] = math.Min(min[a], v.Position[a])
			max[a] = math.Max(max[a], v.Position[a])
		}
	}
	return
}

// BoundingSphere returns a local-space sphere enclosing every vertex of the Geometry, centered on its bounds.
func (geometry *Geometry) BoundingSphere() (center mgl64.Vec3, radius float64) {
	min, max := geometry.Bounds()
	center = min.Add(max).Mul(0.5)
	for _, v := range geometry.Vertices {
		radius = math.Max(radius, v.Position.Sub(center).Len())
	}
	return
}

// WorldBoundingSphere returns the bounding sphere carried into world space by the given matrix. The radius grows with the
// largest axis scale, so the sphere still encloses every vertex under non-uniform scaling.
func (geometry *Geometry) WorldBoundingSphere(world mgl64.Mat4) (center mgl64.Vec3, radius float64) {
	center, radius = geometry.BoundingSphere()
	maxScale := 0.0
	for col := 0; col < 3; col++ {
		maxScale = math.Max(maxScale, world.Col(col).Vec3().Len())
	}
	return mgl64.TransformCoordinate(center, world), radius * maxScale
}

// NewCubeGeometry creates a new box Geometry of the given width, height, and depth, centered on the origin.
// Each face has its own four vertices so UVs map the full texture onto every face.
func NewCubeGeometry(width, height, depth float64) *Geometry {

	half := mgl64.Vec3{width / 2, height / 2, depth / 2}

	// Normal, then the face's right and up axes; right x up == normal, so corners listed
	// (-r,-u), (+r,-u), (+r,+u), (-r,+u) wind counter-clockwise from outside.
	faces := [6][3]mgl64.Vec3{
		{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},  // Right
		{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},  // Left
		{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},  // Top
		{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},  // Bottom
		{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},   // Front
		{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}}, // Back
	}

	corners := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	uvs := [4]mgl64.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	geometry := &Geometry{
		Name:     "Cube",
		Vertices: make([]Vertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}

	for _, face := range faces {
		base := uint32(len(geometry.Vertices))
		for c, corner := range corners {
			p := face[0].Add(face[1].Mul(corner[0])).Add(face[2].Mul(corner[1]))
			geometry.Vertices = append(geometry.Vertices, Vertex{
				Position: mgl64.Vec3{p[0] * half[0], p[1] * half[1], p[2] * half[2]},
				UV:       uvs[c],
			})
		}
		geometry.Indices = append(geometry.Indices, base, base+1, base+2, base, base+2, base+3)
	}

	return geometry

}

// NewPlaneGeometry creates a new flat Geometry of the given width (X) and depth (Z), lying on the XZ plane and facing +Y.
func NewPlaneGeometry(width, depth float64) *Geometry {
	w, d := width/2, depth/2
	return &Geometry{
		Name: "Plane",
		Vertices: []Vertex{
			NewVertex(-w, 0, d, 0, 1),
			NewVertex(w, 0, d, 1, 1),
			NewVertex(w, 0, -d, 1, 0),
			NewVertex(-w, 0, -d, 0, 0),
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}
