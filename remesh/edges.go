package remesh

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/geom"
	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
)

// collectEdges returns every live, undirected edge of the mesh exactly
// once.
func collectEdges(mesh *meshbuf.Mesh) []meshbuf.EdgeKey {
	seen := map[meshbuf.EdgeKey]bool{}
	var out []meshbuf.EdgeKey
	for fi, f := range mesh.Faces {
		if mesh.IsFaceDeleted(fi) {
			continue
		}
		pairs := [3][2]int{{f[0], f[1]}, {f[1], f[2]}, {f[2], f[0]}}
		for _, p := range pairs {
			k := meshbuf.MakeEdgeKey(p[0], p[1])
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

func edgeLength(mesh *meshbuf.Mesh, a, b int) float64 {
	return r3.Norm(r3.Sub(mesh.Vertices[a], mesh.Vertices[b]))
}

// splitLongEdges splits every edge longer than 4/3 * min(s(u),s(v)).
// Feature edges are never split, which keeps feature polylines
// geometrically stable across iterations.
//
// In ConvexHull mode, priority instead goes to each triangle's single
// longest edge, which produces more-equilateral triangulations near
// elongated features than a plain per-edge threshold would.
func splitLongEdges(mesh *meshbuf.Mesh, sizing []float64, set Settings) {
	if set.Mode == ConvexHull {
		splitLongestEdgePerFace(mesh, sizing)
		return
	}
	for _, e := range collectEdges(mesh) {
		a, b := e[0], e[1]
		if isFeatureEdge(mesh, a, b) {
			continue
		}
		threshold := (4.0 / 3.0) * min(sizing[a], sizing[b])
		if edgeLength(mesh, a, b) > threshold {
			mesh.SplitEdge(a, b)
		}
	}
}

// splitLongestEdgePerFace splits only the longest edge of each triangle
// whose length exceeds the 4/3 threshold, skipping faces tombstoned by an
// earlier split in this same pass.
func splitLongestEdgePerFace(mesh *meshbuf.Mesh, sizing []float64) {
	nf := len(mesh.Faces)
	for fi := 0; fi < nf; fi++ {
		if mesh.IsFaceDeleted(fi) {
			continue
		}
		f := mesh.Faces[fi]
		edges := [3][2]int{{f[0], f[1]}, {f[1], f[2]}, {f[2], f[0]}}
		bestLen, bestA, bestB := -1.0, -1, -1
		for _, e := range edges {
			l := edgeLength(mesh, e[0], e[1])
			if l > bestLen {
				bestLen, bestA, bestB = l, e[0], e[1]
			}
		}
		if isFeatureEdge(mesh, bestA, bestB) {
			continue
		}
		threshold := (4.0 / 3.0) * min(sizing[bestA], sizing[bestB])
		if bestLen > threshold {
			mesh.SplitEdge(bestA, bestB)
		}
	}
}

// collapseShortEdges collapses every edge shorter than 4/5 * min(s(u),s(v))
// unless doing so would invert an adjacent triangle, touch a locked
// feature, or pinch two boundary vertices together across a non-boundary
// edge.
func collapseShortEdges(mesh *meshbuf.Mesh, sizing []float64, set Settings) {
	for _, e := range collectEdges(mesh) {
		a, b := e[0], e[1]
		if mesh.IsVertexDeleted(a) || mesh.IsVertexDeleted(b) {
			continue
		}
		threshold := (4.0 / 5.0) * min(sizing[a], sizing[b])
		if edgeLength(mesh, a, b) >= threshold {
			continue
		}
		if !canCollapse(mesh, a, b, set) {
			continue
		}
		// Always merge the plain vertex into the feature/boundary one, or
		// the higher index into the lower one when neither carries extra
		// constraints — this is an arbitrary but consistent tie-break.
		v0, v1 := a, b
		if preferKeep(mesh, set, b, a) {
			v0, v1 = b, a
		}
		mesh.CollapseEdge(v0, v1)
	}
}

// preferKeep reports whether keep should survive a collapse over other,
// because it is a feature/boundary vertex and other is not.
func preferKeep(mesh *meshbuf.Mesh, set Settings, keep, other int) bool {
	keepLocked := isFeatureVertex(mesh, keep) || mesh.IsBoundaryVertex(keep)
	otherLocked := isFeatureVertex(mesh, other) || mesh.IsBoundaryVertex(other)
	return keepLocked && !otherLocked
}

func canCollapse(mesh *meshbuf.Mesh, a, b int, set Settings) bool {
	if isFeatureVertex(mesh, a) && isFeatureVertex(mesh, b) {
		return false
	}
	if isFeatureEdge(mesh, a, b) {
		return false
	}
	aBoundary, bBoundary := mesh.IsBoundaryVertex(a), mesh.IsBoundaryVertex(b)
	if aBoundary && bBoundary && !mesh.IsBoundaryEdge(a, b) {
		return false
	}
	if aBoundary && !bBoundary {
		// collapsing away a boundary vertex is only safe if the surviving
		// vertex also ends up on the boundary, i.e. they are the same loop
		// point — conservatively disallow.
		return false
	}
	if bBoundary && !aBoundary {
		return false
	}
	return !collapseWouldInvert(mesh, a, b)
}

// collapseWouldInvert checks whether retargeting b -> a flips the normal
// of any triangle that keeps both its other two vertices (i.e. is not
// itself being deleted as degenerate by the collapse).
func collapseWouldInvert(mesh *meshbuf.Mesh, a, b int) bool {
	for _, fi := range mesh.VertexFaces(b) {
		if mesh.IsFaceDeleted(fi) {
			continue
		}
		f := mesh.Faces[fi]
		if f[0] == a || f[1] == a || f[2] == a {
			continue // degenerates away under the collapse, not a concern
		}
		before := geom.Triangle3{mesh.Vertices[f[0]], mesh.Vertices[f[1]], mesh.Vertices[f[2]]}
		after := before
		for i, v := range f {
			if v == b {
				after[i] = mesh.Vertices[a]
			}
		}
		if r3.Dot(before.Normal(), after.Normal()) < 0 {
			return true
		}
	}
	return false
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
