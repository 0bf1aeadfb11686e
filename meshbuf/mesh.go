// Package meshbuf implements the minimal read/write mesh adapter the
// evolver, remesher and metrics packages operate against: a triangle
// soup with vertex/face adjacency, named per-vertex/face/edge properties,
// and the handful of topological edits adaptive remeshing needs
// (add/delete vertex, add/delete face, edge collapse/split/flip). This is
// the Go stand-in for a half-edge mesh library such as pmp::SurfaceMesh.
package meshbuf

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// EdgeKey identifies an undirected edge by its two endpoint indices in
// ascending order, so it can key a map regardless of winding.
type EdgeKey [2]int

func MakeEdgeKey(a, b int) EdgeKey {
	if a > b {
		a, b = b, a
	}
	return EdgeKey{a, b}
}

// Mesh is a triangle soup with incremental topological-edit support.
// Deleted vertices/faces are tombstoned until GarbageCollect compacts them.
type Mesh struct {
	Vertices []r3.Vec
	Faces    [][3]int

	vertDeleted []bool
	faceDeleted []bool

	// adjacency, rebuilt lazily by ensureAdjacency.
	vertexFaces [][]int
	adjacencyOK bool

	props Properties
}

// NewMesh builds a Mesh from vertex positions and triangle index triples.
func NewMesh(verts []r3.Vec, faces [][3]int) *Mesh {
	m := &Mesh{
		Vertices:    append([]r3.Vec(nil), verts...),
		Faces:       append([][3]int(nil), faces...),
		vertDeleted: make([]bool, len(verts)),
		faceDeleted: make([]bool, len(faces)),
	}
	m.props.init(len(verts), len(faces))
	return m
}

// NumVertices and NumFaces count live (non-tombstoned) elements.
func (m *Mesh) NumVertices() int {
	n := 0
	for _, d := range m.vertDeleted {
		if !d {
			n++
		}
	}
	return n
}

func (m *Mesh) NumFaces() int {
	n := 0
	for _, d := range m.faceDeleted {
		if !d {
			n++
		}
	}
	return n
}

func (m *Mesh) IsVertexDeleted(v int) bool { return m.vertDeleted[v] }
func (m *Mesh) IsFaceDeleted(f int) bool   { return m.faceDeleted[f] }

// Properties exposes the mesh's named per-vertex/per-face/per-edge
// property storage.
func (m *Mesh) Properties() *Properties { return &m.props }

// ensureAdjacency (re)builds the vertex->incident-faces map if it has been
// invalidated by a topological edit.
func (m *Mesh) ensureAdjacency() {
	if m.adjacencyOK {
		return
	}
	m.vertexFaces = make([][]int, len(m.Vertices))
	for fi, f := range m.Faces {
		if m.faceDeleted[fi] {
			continue
		}
		for _, v := range f {
			m.vertexFaces[v] = append(m.vertexFaces[v], fi)
		}
	}
	m.adjacencyOK = true
}

// VertexFaces returns the (live) faces incident to vertex v.
func (m *Mesh) VertexFaces(v int) []int {
	m.ensureAdjacency()
	return m.vertexFaces[v]
}

// VertexNeighbors returns the 1-ring of vertices connected to v by an edge,
// in ascending index order, deduplicated.
func (m *Mesh) VertexNeighbors(v int) []int {
	seen := map[int]bool{}
	var out []int
	for _, fi := range m.VertexFaces(v) {
		for _, w := range m.Faces[fi] {
			if w != v && !seen[w] {
				seen[w] = true
				out = append(out, w)
			}
		}
	}
	sort.Ints(out)
	return out
}

// EdgeFaces returns the faces incident to edge (a,b) — 1 for a boundary
// edge, 2 for an interior edge of a manifold mesh.
func (m *Mesh) EdgeFaces(a, b int) []int {
	var out []int
	for _, fi := range m.VertexFaces(a) {
		f := m.Faces[fi]
		if f[0] == b || f[1] == b || f[2] == b {
			out = append(out, fi)
		}
	}
	return out
}

// IsBoundaryEdge reports whether edge (a,b) has exactly one incident face.
func (m *Mesh) IsBoundaryEdge(a, b int) bool {
	return len(m.EdgeFaces(a, b)) == 1
}

// IsBoundaryVertex reports whether v lies on a boundary loop.
func (m *Mesh) IsBoundaryVertex(v int) bool {
	for _, w := range m.VertexNeighbors(v) {
		if m.IsBoundaryEdge(v, w) {
			return true
		}
	}
	return false
}

// FaceVertices returns the three world-space positions of face f.
func (m *Mesh) FaceVertices(f int) [3]r3.Vec {
	idx := m.Faces[f]
	return [3]r3.Vec{m.Vertices[idx[0]], m.Vertices[idx[1]], m.Vertices[idx[2]]}
}

// Clone deep-copies the mesh, including properties.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Vertices:    append([]r3.Vec(nil), m.Vertices...),
		Faces:       append([][3]int(nil), m.Faces...),
		vertDeleted: append([]bool(nil), m.vertDeleted...),
		faceDeleted: append([]bool(nil), m.faceDeleted...),
	}
	c.props = m.props.clone()
	return c
}
