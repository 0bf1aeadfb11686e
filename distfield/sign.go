package distfield

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/geom"
	"github.com/MCInversion/ImplicitSurfaceWrap/grid"
	"github.com/MCInversion/ImplicitSurfaceWrap/kdtree"
	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
)

// assignSign applies set.SignMode in place over g, negating cells
// classified as interior. verts/faces is the filtered, non-degenerate
// triangle soup seedNarrowBand already seeded the narrow band from.
func assignSign(g *grid.ScalarGrid, verts []r3.Vec, faces [][3]int, set Settings) {
	switch set.SignMode {
	case SignVoxelFloodFill:
		signByFloodFill(g, set.TruncationValue)
	case SignPseudoNormal:
		signByPseudoNormal(g, verts, faces)
	}
}

// signByFloodFill marks every grid-boundary cell as "outside" and floods
// 6-connected through cells still sitting at the truncation plateau —
// fastSweep clamps every cell farther than truncation from the surface
// back to exactly that value, so "at the plateau" is the correct signal
// for "far from the surface", while the ramping shell of cells strictly
// below truncation (the narrow band straddling the surface, on both
// sides) blocks the flood. Whatever the flood never reaches is interior.
func signByFloodFill(g *grid.ScalarGrid, truncation float64) {
	dims := g.Dims()
	margin := truncation
	n := dims.Total()
	visited := make([]bool, n)
	var queue []int

	push := func(i int) {
		if !visited[i] && g.At(i) >= margin {
			visited[i] = true
			queue = append(queue, i)
		}
	}

	for z := 0; z < dims.Nz; z++ {
		for y := 0; y < dims.Ny; y++ {
			push(dims.Index(0, y, z))
			push(dims.Index(dims.Nx-1, y, z))
		}
	}
	for z := 0; z < dims.Nz; z++ {
		for x := 0; x < dims.Nx; x++ {
			push(dims.Index(x, 0, z))
			push(dims.Index(x, dims.Ny-1, z))
		}
	}
	for y := 0; y < dims.Ny; y++ {
		for x := 0; x < dims.Nx; x++ {
			push(dims.Index(x, y, 0))
			push(dims.Index(x, y, dims.Nz-1))
		}
	}

	for len(queue) > 0 {
		i := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y, z := coordsOf(dims, i)
		visit := func(nx, ny, nz int) {
			if dims.Contains(nx, ny, nz) {
				push(dims.Index(nx, ny, nz))
			}
		}
		visit(x-1, y, z)
		visit(x+1, y, z)
		visit(x, y-1, z)
		visit(x, y+1, z)
		visit(x, y, z-1)
		visit(x, y, z+1)
	}

	for i := 0; i < n; i++ {
		if !visited[i] {
			g.Set(i, -g.At(i))
		}
	}
}

func coordsOf(dims grid.Dimensions, i int) (x, y, z int) {
	z = i / (dims.Nx * dims.Ny)
	rem := i % (dims.Nx * dims.Ny)
	y = rem / dims.Nx
	x = rem % dims.Nx
	return
}

// signByPseudoNormal negates cells whose nearest point lies "behind" the
// angle-weighted pseudonormal of the closest feature (face, edge, or
// vertex) of the winning triangle, per Baerentzen & Aanaes.
func signByPseudoNormal(g *grid.ScalarGrid, verts []r3.Vec, faces [][3]int) {
	if len(faces) == 0 {
		return
	}
	tree := kdtree.Build(verts, faces, kdtree.Midpoint)
	adj := buildAdjacency(faces)

	dims := g.Dims()
	for z := 0; z < dims.Nz; z++ {
		for y := 0; y < dims.Ny; y++ {
			for x := 0; x < dims.Nx; x++ {
				idx := dims.Index(x, y, z)
				center := g.CellCenter(x, y, z)
				fi, _ := tree.Nearest(center)
				if fi < 0 {
					continue
				}
				tri := tree.Triangle(fi)
				_, closest, feature := geom.PointTriangleDistSq(center, tri)
				n := pseudoNormal(verts, faces, adj, fi, feature)
				toCell := r3.Sub(center, closest)
				if r3.Dot(toCell, n) < 0 {
					g.Set(idx, -g.At(idx))
				}
			}
		}
	}
}

type adjacency struct {
	edgeFaces   map[meshbuf.EdgeKey][]int
	vertexFaces map[int][]int
}

func buildAdjacency(faces [][3]int) adjacency {
	adj := adjacency{edgeFaces: map[meshbuf.EdgeKey][]int{}, vertexFaces: map[int][]int{}}
	for fi, f := range faces {
		pairs := [3][2]int{{f[0], f[1]}, {f[1], f[2]}, {f[2], f[0]}}
		for _, p := range pairs {
			k := meshbuf.MakeEdgeKey(p[0], p[1])
			adj.edgeFaces[k] = append(adj.edgeFaces[k], fi)
		}
		for _, v := range f {
			adj.vertexFaces[v] = append(adj.vertexFaces[v], fi)
		}
	}
	return adj
}

func pseudoNormal(verts []r3.Vec, faces [][3]int, adj adjacency, fi int, feature geom.Feature) r3.Vec {
	f := faces[fi]
	switch feature {
	case geom.FeatureFace:
		return triangleAt(verts, f).UnitNormal()
	case geom.FeatureEdge01:
		return edgePseudoNormal(verts, faces, adj, f[0], f[1])
	case geom.FeatureEdge12:
		return edgePseudoNormal(verts, faces, adj, f[1], f[2])
	case geom.FeatureEdge20:
		return edgePseudoNormal(verts, faces, adj, f[2], f[0])
	case geom.FeatureVertex0:
		return vertexPseudoNormal(verts, faces, adj, f[0])
	case geom.FeatureVertex1:
		return vertexPseudoNormal(verts, faces, adj, f[1])
	default:
		return vertexPseudoNormal(verts, faces, adj, f[2])
	}
}

func edgePseudoNormal(verts []r3.Vec, faces [][3]int, adj adjacency, a, b int) r3.Vec {
	var sum r3.Vec
	for _, fi := range adj.edgeFaces[meshbuf.MakeEdgeKey(a, b)] {
		sum = r3.Add(sum, triangleAt(verts, faces[fi]).UnitNormal())
	}
	if l := r3.Norm(sum); l > 0 {
		return r3.Scale(1/l, sum)
	}
	return r3.Vec{Z: 1}
}

func vertexPseudoNormal(verts []r3.Vec, faces [][3]int, adj adjacency, v int) r3.Vec {
	var sum r3.Vec
	for _, fi := range adj.vertexFaces[v] {
		f := faces[fi]
		tri := triangleAt(verts, f)
		angle := incidentAngle(tri, f, v)
		sum = r3.Add(sum, r3.Scale(angle, tri.UnitNormal()))
	}
	if l := r3.Norm(sum); l > 0 {
		return r3.Scale(1/l, sum)
	}
	return r3.Vec{Z: 1}
}

func incidentAngle(tri geom.Triangle3, f [3]int, v int) float64 {
	var p, a, b r3.Vec
	for i, idx := range f {
		if idx == v {
			p = tri[i]
			a = tri[(i+1)%3]
			b = tri[(i+2)%3]
		}
	}
	e1, e2 := r3.Sub(a, p), r3.Sub(b, p)
	cos := r3.Dot(e1, e2) / (r3.Norm(e1) * r3.Norm(e2))
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos)
}

func triangleAt(verts []r3.Vec, f [3]int) geom.Triangle3 {
	return geom.Triangle3{verts[f[0]], verts[f[1]], verts[f[2]]}
}
