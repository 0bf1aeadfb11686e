package meshbuf

import (
	"github.com/MCInversion/ImplicitSurfaceWrap/geom"
	"github.com/MCInversion/ImplicitSurfaceWrap/kdtree"
)

// CountSelfIntersectingFaces counts faces that overlap some other
// non-adjacent face, using a TriangleKdTree for broad-phase pruning
// (matching MeshAnalysis.h's CountPMPSurfaceMeshSelfIntersectingFaces) and
// geom.TrianglesIntersect for the narrow phase. If setFaceProperty is
// true, a "selfIntersecting" face-bool property is written.
func (m *Mesh) CountSelfIntersectingFaces(setFaceProperty bool) int {
	tree := kdtree.Build(m.Vertices, m.Faces, kdtree.Midpoint)
	var flagged []bool
	if setFaceProperty {
		flagged = m.props.FaceBool("selfIntersecting", len(m.Faces))
	}

	count := 0
	for fi, f := range m.Faces {
		if m.faceDeleted[fi] {
			continue
		}
		if m.faceIntersectsAnother(tree, fi, f) {
			count++
			if setFaceProperty {
				flagged[fi] = true
			}
		}
	}
	return count
}

// HasSelfIntersections is a fast existence check, stopping at the first hit.
func (m *Mesh) HasSelfIntersections() bool {
	tree := kdtree.Build(m.Vertices, m.Faces, kdtree.Midpoint)
	for fi, f := range m.Faces {
		if m.faceDeleted[fi] {
			continue
		}
		if m.faceIntersectsAnother(tree, fi, f) {
			return true
		}
	}
	return false
}

func (m *Mesh) faceIntersectsAnother(tree *kdtree.TriangleKdTree, fi int, f [3]int) bool {
	tri := geom.Triangle3{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
	box := tri.Bounds()
	seen := map[int]bool{}
	for _, oi := range tree.FacesOverlappingBox(box) {
		if oi == fi || seen[oi] || m.faceDeleted[oi] || sharesVertex(f, m.Faces[oi]) {
			continue
		}
		seen[oi] = true
		of := m.Faces[oi]
		other := geom.Triangle3{m.Vertices[of[0]], m.Vertices[of[1]], m.Vertices[of[2]]}
		if geom.TrianglesIntersect(tri, other) {
			return true
		}
	}
	return false
}

func sharesVertex(a, b [3]int) bool {
	for _, va := range a {
		for _, vb := range b {
			if va == vb {
				return true
			}
		}
	}
	return false
}
