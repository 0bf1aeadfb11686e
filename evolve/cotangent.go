package evolve

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
)

// laplaceStencil is the cotangent (Voronoi) Laplacian stencil at one
// vertex: weights keyed by neighbor index, plus their sum λ_v (spec.md
// §4.8 step 2). Weights are left unsigned, as spec.md's open questions
// section flags the sign convention as implementation-defined.
type laplaceStencil struct {
	neighbors []int
	lambda    map[int]float64
	sum       float64
}

// buildLaplaceStencil computes {(w, λ_vw)} for vertex v: for each edge
// (v,w), λ_vw is half the sum of the cotangents of the angles opposite
// that edge in its one or two incident triangles. Deliberately left
// un-normalized by Voronoi area (unlike the textbook Laplace-Beltrami
// discretization): λ_vw as computed here depends only on the edge's
// incident triangles, so it is identical seen from either endpoint,
// which is what keeps the assembled system matrix symmetric in solve.go.
func buildLaplaceStencil(mesh *meshbuf.Mesh, v int) laplaceStencil {
	neighbors := mesh.VertexNeighbors(v)

	st := laplaceStencil{neighbors: neighbors, lambda: make(map[int]float64, len(neighbors))}
	for _, w := range neighbors {
		var cotSum float64
		for _, fi := range mesh.EdgeFaces(v, w) {
			opp := thirdVertexOf(mesh.Faces[fi], v, w)
			cotSum += cotangentAt(mesh, opp, v, w)
		}
		lambda := cotSum / 2
		st.lambda[w] = lambda
		st.sum += lambda
	}
	return st
}

func thirdVertexOf(f [3]int, a, b int) int {
	for _, x := range f {
		if x != a && x != b {
			return x
		}
	}
	return f[0]
}

// cotangentAt returns cot(angle at vertex `at` in the triangle at,a,b).
func cotangentAt(mesh *meshbuf.Mesh, at, a, b int) float64 {
	p := mesh.Vertices[at]
	e1 := r3.Sub(mesh.Vertices[a], p)
	e2 := r3.Sub(mesh.Vertices[b], p)
	cross := r3.Norm(r3.Cross(e1, e2))
	if cross < 1e-20 {
		return 0
	}
	return r3.Dot(e1, e2) / cross
}

