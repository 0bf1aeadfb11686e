package meshbuf

import "gonum.org/v1/gonum/spatial/r3"

// AddVertex appends a new vertex and grows every registered property
// array to match, returning its index.
func (m *Mesh) AddVertex(p r3.Vec) int {
	idx := len(m.Vertices)
	m.Vertices = append(m.Vertices, p)
	m.vertDeleted = append(m.vertDeleted, false)
	m.adjacencyOK = false
	for name := range m.props.vertexScalar {
		m.props.VertexScalar(name, idx+1)
	}
	for name := range m.props.vertexVector {
		m.props.VertexVector(name, idx+1)
	}
	for name := range m.props.vertexBool {
		m.props.VertexBool(name, idx+1)
	}
	return idx
}

// AddFace appends a triangle (v0,v1,v2) and grows face properties,
// returning its index.
func (m *Mesh) AddFace(v0, v1, v2 int) int {
	idx := len(m.Faces)
	m.Faces = append(m.Faces, [3]int{v0, v1, v2})
	m.faceDeleted = append(m.faceDeleted, false)
	m.adjacencyOK = false
	for name := range m.props.faceScalar {
		m.props.FaceScalar(name, idx+1)
	}
	for name := range m.props.faceBool {
		m.props.FaceBool(name, idx+1)
	}
	return idx
}

// DeleteFace tombstones face f; it is removed on the next GarbageCollect.
func (m *Mesh) DeleteFace(f int) {
	if m.faceDeleted[f] {
		return
	}
	m.faceDeleted[f] = true
	m.adjacencyOK = false
}

// deleteVertex tombstones vertex v. Callers must ensure no live face still
// references v.
func (m *Mesh) deleteVertex(v int) {
	if m.vertDeleted[v] {
		return
	}
	m.vertDeleted[v] = true
	m.adjacencyOK = false
}

// CollapseEdge removes edge (v0,v1) by merging v1 into v0: every face
// referencing v1 is retargeted to v0 (degenerate faces that would result
// are deleted instead), then v1 is tombstoned. Returns false (no-op) only
// if v0 == v1 or either vertex is already deleted. This method performs
// the raw topological edit only: it does not check for inverted triangles
// or boundary crossings, which the caller must rule out beforehand.
func (m *Mesh) CollapseEdge(v0, v1 int) bool {
	if v0 == v1 || m.vertDeleted[v0] || m.vertDeleted[v1] {
		return false
	}
	for _, fi := range m.VertexFaces(v1) {
		if m.faceDeleted[fi] {
			continue
		}
		f := &m.Faces[fi]
		for i, v := range f {
			if v == v1 {
				f[i] = v0
			}
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			m.DeleteFace(fi)
		}
	}
	m.deleteVertex(v1)
	return true
}

// SplitEdge inserts a new vertex at the midpoint of (v0,v1), retriangulating
// the one or two incident faces around it, and returns the new vertex
// index.
func (m *Mesh) SplitEdge(v0, v1 int) int {
	mid := r3.Scale(0.5, r3.Add(m.Vertices[v0], m.Vertices[v1]))
	nv := m.AddVertex(mid)

	for _, fi := range m.EdgeFaces(v0, v1) {
		f := m.Faces[fi]
		opp := thirdVertex(f, v0, v1)
		m.DeleteFace(fi)
		m.AddFace(v0, nv, opp)
		m.AddFace(nv, v1, opp)
	}
	return nv
}

func thirdVertex(f [3]int, a, b int) int {
	for _, v := range f {
		if v != a && v != b {
			return v
		}
	}
	return f[0]
}

// FlipEdge replaces the shared edge of the two triangles meeting at
// faces fa,fb (which must share exactly one edge) with the opposite
// diagonal of the resulting quad. Returns false if the faces do not form
// a flippable quad.
func (m *Mesh) FlipEdge(fa, fb int) bool {
	a := m.Faces[fa]
	b := m.Faces[fb]
	shared, onlyA, onlyB := sharedEdge(a, b)
	if shared[0] < 0 {
		return false
	}
	m.DeleteFace(fa)
	m.DeleteFace(fb)
	m.AddFace(onlyA, onlyB, shared[0])
	m.AddFace(onlyB, onlyA, shared[1])
	return true
}

// sharedEdge returns the two shared vertices and the vertex unique to
// each face, or shared[0]==-1 if a,b don't share exactly one edge.
func sharedEdge(a, b [3]int) (shared [2]int, onlyA, onlyB int) {
	shared = [2]int{-1, -1}
	n := 0
	bSet := map[int]bool{b[0]: true, b[1]: true, b[2]: true}
	for _, v := range a {
		if bSet[v] {
			if n < 2 {
				shared[n] = v
			}
			n++
		} else {
			onlyA = v
		}
	}
	if n != 2 {
		shared[0] = -1
		return
	}
	aSet := map[int]bool{a[0]: true, a[1]: true, a[2]: true}
	for _, v := range b {
		if !aSet[v] {
			onlyB = v
		}
	}
	return
}

// GarbageCollect compacts out tombstoned vertices and faces, remapping all
// face indices and resizing every registered property array to the new,
// smaller element counts. This is the "property resize on topology
// change" hook the remesher calls after a batch of edits.
func (m *Mesh) GarbageCollect() {
	newVertIdx := make([]int, len(m.Vertices))
	verts := make([]r3.Vec, 0, len(m.Vertices))
	for i, v := range m.Vertices {
		if m.vertDeleted[i] {
			newVertIdx[i] = -1
			continue
		}
		newVertIdx[i] = len(verts)
		verts = append(verts, v)
	}

	faces := make([][3]int, 0, len(m.Faces))
	keepFaceIdx := make([]int, 0, len(m.Faces))
	for fi, f := range m.Faces {
		if m.faceDeleted[fi] {
			continue
		}
		faces = append(faces, [3]int{newVertIdx[f[0]], newVertIdx[f[1]], newVertIdx[f[2]]})
		keepFaceIdx = append(keepFaceIdx, fi)
	}

	m.props = compactProperties(m.props, newVertIdx, len(verts), keepFaceIdx)

	m.Vertices = verts
	m.Faces = faces
	m.vertDeleted = make([]bool, len(verts))
	m.faceDeleted = make([]bool, len(faces))
	m.adjacencyOK = false
}

func compactProperties(p Properties, newVertIdx []int, nv int, keepFaceIdx []int) Properties {
	out := Properties{
		vertexScalar: map[string][]float64{},
		vertexVector: map[string][]r3.Vec{},
		vertexBool:   map[string][]bool{},
		faceScalar:   map[string][]float64{},
		faceBool:     map[string][]bool{},
		edgeScalar:   map[EdgeKey]map[string]float64{},
	}
	for name, arr := range p.vertexScalar {
		nw := make([]float64, nv)
		for old, nu := range newVertIdx {
			if nu >= 0 && old < len(arr) {
				nw[nu] = arr[old]
			}
		}
		out.vertexScalar[name] = nw
	}
	for name, arr := range p.vertexVector {
		nw := make([]r3.Vec, nv)
		for old, nu := range newVertIdx {
			if nu >= 0 && old < len(arr) {
				nw[nu] = arr[old]
			}
		}
		out.vertexVector[name] = nw
	}
	for name, arr := range p.vertexBool {
		nw := make([]bool, nv)
		for old, nu := range newVertIdx {
			if nu >= 0 && old < len(arr) {
				nw[nu] = arr[old]
			}
		}
		out.vertexBool[name] = nw
	}
	for name, arr := range p.faceScalar {
		nw := make([]float64, len(keepFaceIdx))
		for i, old := range keepFaceIdx {
			if old < len(arr) {
				nw[i] = arr[old]
			}
		}
		out.faceScalar[name] = nw
	}
	for name, arr := range p.faceBool {
		nw := make([]bool, len(keepFaceIdx))
		for i, old := range keepFaceIdx {
			if old < len(arr) {
				nw[i] = arr[old]
			}
		}
		out.faceBool[name] = nw
	}
	for k, v := range p.edgeScalar {
		if k[0] >= len(newVertIdx) || k[1] >= len(newVertIdx) {
			continue
		}
		a, b := newVertIdx[k[0]], newVertIdx[k[1]]
		if a < 0 || b < 0 {
			continue
		}
		cp := make(map[string]float64, len(v))
		for n, val := range v {
			cp[n] = val
		}
		out.edgeScalar[MakeEdgeKey(a, b)] = cp
	}
	return out
}
