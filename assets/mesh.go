package assets

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrInvalidRadius   = errors.New("assets: sphere radius must be positive and finite")
	ErrTooManyVertices = errors.New("assets: icosphere exceeds 16-bit vertex budget")
)

// DefaultIcosphereSubdivisions matches the resolution the editor ships with.
const DefaultIcosphereSubdivisions = 5

const maxMeshVertices = math.MaxUint16

// Mesh is indexed triangle geometry.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

// Bounds returns the axis-aligned bounding box of the mesh.
func (m *Mesh) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	if m == nil || len(m.Positions) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	lo, hi := m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
	}
	return lo, hi
}

// BoundingRadius is the distance from the origin to the furthest vertex.
func (m *Mesh) BoundingRadius() float32 {
	if m == nil {
		return 0
	}
	var r float32
	for _, p := range m.Positions {
		r = max(r, p.Len())
	}
	return r
}

// NewQuad builds a flat rectangle of the given width/height in the XY plane,
// centered on the origin and facing +Z.
func NewQuad(size mgl32.Vec2) *Mesh {
	hw, hh := size.X()/2, size.Y()/2
	return &Mesh{
		Positions: []mgl32.Vec3{
			{-hw, -hh, 0},
			{-hw, hh, 0},
			{hw, hh, 0},
			{hw, -hh, 0},
		},
		Normals: []mgl32.Vec3{
			{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1},
		},
		UVs: []mgl32.Vec2{
			{0, 1}, {0, 0}, {1, 0}, {1, 1},
		},
		Indices: []uint32{0, 2, 1, 0, 3, 2},
	}
}

// NewIcosphere subdivides an icosahedron so every original edge carries
// `subdivisions` extra points, then projects the result onto a sphere of
// the given radius.
func NewIcosphere(radius float32, subdivisions int) (*Mesh, error) {
	r := float64(radius)
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRadius, radius)
	}
	if subdivisions < 0 {
		subdivisions = 0
	}
	freq := subdivisions + 1
	if want := 10*freq*freq + 2; want > maxMeshVertices {
		return nil, fmt.Errorf("%w: %d subdivisions need %d vertices", ErrTooManyVertices, subdivisions, want)
	}

	corners, faces := icosahedron()
	b := newSphereBuilder(radius)
	for _, f := range faces {
		a, c1, c2 := corners[f[0]], corners[f[1]], corners[f[2]]
		// grid[i][j] holds the vertex index at a + i*(c1-a)/freq + j*(c2-a)/freq
		grid := make([][]uint32, freq+1)
		for i := 0; i <= freq; i++ {
			grid[i] = make([]uint32, freq+1-i)
			for j := 0; j <= freq-i; j++ {
				p := a.
					Add(c1.Sub(a).Mul(float32(i) / float32(freq))).
					Add(c2.Sub(a).Mul(float32(j) / float32(freq)))
				key := latticeKey([3]int{f[0], f[1], f[2]}, [3]int{freq - i - j, i, j})
				grid[i][j] = b.vertex(key, p)
			}
		}
		for i := 0; i < freq; i++ {
			for j := 0; j < freq-i; j++ {
				b.tri(grid[i][j], grid[i+1][j], grid[i][j+1])
				if j+1 < freq-i {
					b.tri(grid[i+1][j], grid[i+1][j+1], grid[i][j+1])
				}
			}
		}
	}
	return b.mesh, nil
}

type sphereBuilder struct {
	radius float32
	mesh   *Mesh
	seen   map[[6]int]uint32
}

func newSphereBuilder(radius float32) *sphereBuilder {
	return &sphereBuilder{
		radius: radius,
		mesh:   &Mesh{},
		seen:   make(map[[6]int]uint32),
	}
}

func (b *sphereBuilder) vertex(key [6]int, p mgl32.Vec3) uint32 {
	if idx, ok := b.seen[key]; ok {
		return idx
	}
	n := p.Normalize()
	idx := uint32(len(b.mesh.Positions))
	b.seen[key] = idx
	b.mesh.Positions = append(b.mesh.Positions, n.Mul(b.radius))
	b.mesh.Normals = append(b.mesh.Normals, n)
	u := 0.5 + math.Atan2(float64(n[2]), float64(n[0]))/(2*math.Pi)
	v := 0.5 - math.Asin(float64(n[1]))/math.Pi
	b.mesh.UVs = append(b.mesh.UVs, mgl32.Vec2{float32(u), float32(v)})
	return idx
}

func (b *sphereBuilder) tri(i0, i1, i2 uint32) {
	b.mesh.Indices = append(b.mesh.Indices, i0, i1, i2)
}

// latticeKey identifies a subdivision point by its integer barycentric
// weights over the icosahedron corners, so points on shared edges and
// corners get the same key from every face that touches them.
func latticeKey(corners, weights [3]int) [6]int {
	key := [6]int{-1, 0, -1, 0, -1, 0}
	n := 0
	for k := 0; k < 3; k++ {
		if weights[k] == 0 {
			continue
		}
		key[2*n], key[2*n+1] = corners[k], weights[k]
		n++
	}
	// insertion sort by corner index
	for i := 1; i < n; i++ {
		for j := i; j > 0 && key[2*j] < key[2*(j-1)]; j-- {
			key[2*j], key[2*(j-1)] = key[2*(j-1)], key[2*j]
			key[2*j+1], key[2*(j-1)+1] = key[2*(j-1)+1], key[2*j+1]
		}
	}
	return key
}

func icosahedron() ([]mgl32.Vec3, [][3]int) {
	t := float32((1 + math.Sqrt(5)) / 2)
	corners := []mgl32.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	return corners, faces
}
