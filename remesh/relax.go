package remesh

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/geom"
	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
)

// tangentialRelax moves each non-feature, non-boundary vertex a fraction
// (set.TangentialWeight) of the way toward the area-weighted centroid of
// its 1-ring, projected onto the vertex's tangent plane.
func tangentialRelax(mesh *meshbuf.Mesh, set Settings) {
	if set.TangentialWeight <= 0 {
		return
	}
	nv := len(mesh.Vertices)
	newPos := make([]r3.Vec, nv)
	movable := make([]bool, nv)

	for v := 0; v < nv; v++ {
		if mesh.IsVertexDeleted(v) || isFeatureVertex(mesh, v) || mesh.IsBoundaryVertex(v) {
			continue
		}
		n := vertexNormal(mesh, v)
		centroid := areaWeightedCentroid(mesh, v)
		if centroid == (r3.Vec{}) {
			continue
		}
		d := r3.Sub(centroid, mesh.Vertices[v])
		d = r3.Sub(d, r3.Scale(r3.Dot(d, n), n)) // project onto tangent plane
		newPos[v] = r3.Add(mesh.Vertices[v], r3.Scale(set.TangentialWeight, d))
		movable[v] = true
	}
	for v, ok := range movable {
		if ok {
			mesh.Vertices[v] = newPos[v]
		}
	}
}

func vertexNormal(mesh *meshbuf.Mesh, v int) r3.Vec {
	var n r3.Vec
	for _, fi := range mesh.VertexFaces(v) {
		f := mesh.Faces[fi]
		tri := geom.Triangle3{mesh.Vertices[f[0]], mesh.Vertices[f[1]], mesh.Vertices[f[2]]}
		n = r3.Add(n, tri.Normal())
	}
	if l := r3.Norm(n); l > 0 {
		return r3.Scale(1/l, n)
	}
	return r3.Vec{Z: 1}
}

func areaWeightedCentroid(mesh *meshbuf.Mesh, v int) r3.Vec {
	var sum r3.Vec
	var totalArea float64
	for _, fi := range mesh.VertexFaces(v) {
		f := mesh.Faces[fi]
		tri := geom.Triangle3{mesh.Vertices[f[0]], mesh.Vertices[f[1]], mesh.Vertices[f[2]]}
		a := tri.Area()
		sum = r3.Add(sum, r3.Scale(a, tri.Centroid()))
		totalArea += a
	}
	if totalArea == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/totalArea, sum)
}

// backProjectVertices snaps every non-feature vertex onto the closest
// point of set.BackProjectTree's reference surface.
func backProjectVertices(mesh *meshbuf.Mesh, set Settings) {
	tree := set.BackProjectTree
	if tree == nil {
		return
	}
	for v := range mesh.Vertices {
		if mesh.IsVertexDeleted(v) || isFeatureVertex(mesh, v) {
			continue
		}
		faceIdx, _ := tree.Nearest(mesh.Vertices[v])
		if faceIdx < 0 {
			continue
		}
		_, closest, _ := geom.PointTriangleDistSq(mesh.Vertices[v], tree.Triangle(faceIdx))
		mesh.Vertices[v] = closest
	}
}
