package remesh

import "github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"

// flipEdges flips every non-feature interior edge whose flip strictly
// reduces the sum of valence deviations from the target valence (6
// interior, 4 boundary).
func flipEdges(mesh *meshbuf.Mesh, set Settings) {
	visited := map[meshbuf.EdgeKey]bool{}
	for _, e := range collectEdges(mesh) {
		a, b := e[0], e[1]
		if visited[e] || isFeatureEdge(mesh, a, b) || mesh.IsBoundaryEdge(a, b) {
			continue
		}
		if isFeatureVertex(mesh, a) || isFeatureVertex(mesh, b) {
			continue
		}
		visited[e] = true

		faces := mesh.EdgeFaces(a, b)
		if len(faces) != 2 {
			continue
		}
		fa, fb := faces[0], faces[1]
		c := thirdOf(mesh.Faces[fa], a, b)
		d := thirdOf(mesh.Faces[fb], a, b)
		if c == d {
			continue
		}
		if !flipReducesDeviation(mesh, a, b, c, d) {
			continue
		}
		mesh.FlipEdge(fa, fb)
	}
}

func thirdOf(f [3]int, a, b int) int {
	for _, v := range f {
		if v != a && v != b {
			return v
		}
	}
	return f[0]
}

func flipReducesDeviation(mesh *meshbuf.Mesh, a, b, c, d int) bool {
	target := func(v int) int {
		if mesh.IsBoundaryVertex(v) {
			return 4
		}
		return 6
	}
	deg := func(v int) int { return len(mesh.VertexNeighbors(v)) }

	before := devAbs(deg(a), target(a)) + devAbs(deg(b), target(b)) +
		devAbs(deg(c), target(c)) + devAbs(deg(d), target(d))
	after := devAbs(deg(a)-1, target(a)) + devAbs(deg(b)-1, target(b)) +
		devAbs(deg(c)+1, target(c)) + devAbs(deg(d)+1, target(d))
	return after < before
}

func devAbs(deg, target int) int {
	d := deg - target
	if d < 0 {
		return -d
	}
	return d
}
