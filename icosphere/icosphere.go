// Package icosphere builds subdivided-icosahedron meshes and implements
// the closed-form primitive-count contracts (vertex/edge/face counts per
// subdivision level, Loop subdivision counts, boundary-aware subdivision
// counts) that the surface evolver's Preprocess step and its tests rely
// on.
package icosphere

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
)

// VertexCount returns V(k) = (30*(4^k - 1) + 3*12) / 3, the closed-form
// vertex count of an ico-sphere subdivided k times.
func VertexCount(k int) int {
	p := math.Pow(4, float64(k))
	return int(math.Round((30*(p-1) + 3*12) / 3))
}

// EdgeCount returns E(k) = 30 * 4^k.
func EdgeCount(k int) int {
	return int(math.Round(30 * math.Pow(4, float64(k))))
}

// FaceCount returns F(k) = 2 * (V(k) - 2), the Euler-formula consequence
// of a closed genus-0 triangulation.
func FaceCount(k int) int {
	return 2 * (VertexCount(k) - 2)
}

// Build constructs an ico-sphere of the given radius, subdivided k times,
// centered at the origin.
func Build(radius float64, k int) *meshbuf.Mesh {
	verts, faces := baseIcosahedron(radius)
	for i := 0; i < k; i++ {
		verts, faces = subdivideOnce(verts, faces, radius)
	}
	return meshbuf.NewMesh(verts, faces)
}

func baseIcosahedron(radius float64) ([]r3.Vec, [][3]int) {
	t := (1 + math.Sqrt(5)) / 2
	raw := [][3]float64{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	verts := make([]r3.Vec, 12)
	for i, p := range raw {
		v := r3.Vec{X: p[0], Y: p[1], Z: p[2]}
		verts[i] = r3.Scale(radius/r3.Norm(v), v)
	}
	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	return verts, faces
}

// subdivideOnce performs one Loop-style 1-to-4 split, projecting new
// midpoint vertices back onto the sphere of the given radius.
func subdivideOnce(verts []r3.Vec, faces [][3]int, radius float64) ([]r3.Vec, [][3]int) {
	midCache := map[meshbuf.EdgeKey]int{}
	newVerts := append([]r3.Vec(nil), verts...)

	midpoint := func(a, b int) int {
		k := meshbuf.MakeEdgeKey(a, b)
		if idx, ok := midCache[k]; ok {
			return idx
		}
		m := r3.Scale(0.5, r3.Add(verts[a], verts[b]))
		m = r3.Scale(radius/r3.Norm(m), m)
		idx := len(newVerts)
		newVerts = append(newVerts, m)
		midCache[k] = idx
		return idx
	}

	newFaces := make([][3]int, 0, len(faces)*4)
	for _, f := range faces {
		a, b, c := f[0], f[1], f[2]
		ab := midpoint(a, b)
		bc := midpoint(b, c)
		ca := midpoint(c, a)
		newFaces = append(newFaces,
			[3]int{a, ab, ca},
			[3]int{b, bc, ab},
			[3]int{c, ca, bc},
			[3]int{ab, bc, ca},
		)
	}
	return newVerts, newFaces
}

// LoopSubdivisionCounts advances (V,E,F) by one Loop subdivision step for
// a closed triangle mesh: V' = V+E, E' = 2E+3F, F' = 4F.
func LoopSubdivisionCounts(v, e, f int) (vOut, eOut, fOut int) {
	return v + e, 2*e + 3*f, 4 * f
}

// BoundaryAwareSubdivisionCounts advances boundary-edge and boundary-vertex
// counts for a mesh with a nonempty boundary loop, per Cavarga's
// mesh-primitive counting formula for subdivision surfaces: a boundary
// edge splits into two boundary edges (E^bd doubles each level) and each
// boundary split also introduces one new boundary vertex.
func BoundaryAwareSubdivisionCounts(boundaryVerts, boundaryEdges, steps int) (vBd, eBd int) {
	eBd = boundaryEdges
	vBd = boundaryVerts
	for i := 0; i < steps; i++ {
		vBd += eBd
		eBd *= 2
	}
	return vBd, eBd
}
