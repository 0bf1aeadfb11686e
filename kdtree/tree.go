// Package kdtree implements TriangleKdTree, a static KD-tree over triangle
// face indices supporting nearest-triangle and watertight ray queries. Its
// split-position machinery is grounded on the teacher's gonum/kdtree
// Comparable adapters (render.NewKDSDF, helpers/sdfexp's mesh kd-tree),
// generalized to a bespoke top-down build that duplicates faces straddling
// a split plane into both children, as required for correct triangle-soup
// spatial queries (gonum's own kdtree.Tree assumes one leaf per point and
// cannot express that).
package kdtree

import (
	"math"

	gokd "gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/geom"
	"github.com/MCInversion/ImplicitSurfaceWrap/internal/d3"
)

// SplitPolicy selects how a node's split axis and position are chosen.
type SplitPolicy int

const (
	// Midpoint splits at the coordinate median along the widest axis
	// (the teacher's kdComp + gonum MedianOfMedians approach).
	Midpoint SplitPolicy = iota
	// Center splits at the spatial midpoint of the widest axis.
	Center
	// HighestStdDev picks the axis along which face centroids have the
	// highest variance, splitting at its coordinate median.
	HighestStdDev
)

const (
	defaultLeafThreshold = 4
	defaultMaxDepth      = 32
)

// TriangleKdTree is a static KD-tree over a host vertex/face array. It
// borrows those arrays for its lifetime per the data-model ownership
// contract: the host must keep them alive and unmodified.
type TriangleKdTree struct {
	verts     []r3.Vec
	faces     [][3]int
	centroids []r3.Vec
	root      *node
	policy    SplitPolicy
}

type node struct {
	box         d3.Box
	axis        int // -1 marks a leaf
	splitPos    float64
	left, right *node
	faceIdx     []int // populated only at leaves
}

// Build constructs a TriangleKdTree over faces (indices into verts) using
// the given split policy. An empty face list yields an empty tree whose
// queries report "no result".
func Build(verts []r3.Vec, faces [][3]int, policy SplitPolicy) *TriangleKdTree {
	t := &TriangleKdTree{
		verts:     verts,
		faces:     faces,
		centroids: make([]r3.Vec, len(faces)),
		policy:    policy,
	}
	for i, f := range faces {
		t.centroids[i] = r3.Scale(1.0/3.0, r3.Add(verts[f[0]], r3.Add(verts[f[1]], verts[f[2]])))
	}
	if len(faces) == 0 {
		return t
	}
	all := make([]int, len(faces))
	box := t.triBounds(0)
	for i := range faces {
		all[i] = i
		box = box.Extend(t.triBounds(i))
	}
	t.root = t.build(all, box, 0)
	return t
}

func (t *TriangleKdTree) triBounds(faceIdx int) d3.Box {
	f := t.faces[faceIdx]
	b := d3.Box{Min: t.verts[f[0]], Max: t.verts[f[0]]}
	b = b.Include(t.verts[f[1]])
	b = b.Include(t.verts[f[2]])
	return b
}

func (t *TriangleKdTree) triangle(faceIdx int) geom.Triangle3 {
	f := t.faces[faceIdx]
	return geom.Triangle3{t.verts[f[0]], t.verts[f[1]], t.verts[f[2]]}
}

// Triangle exposes the triangle at faceIdx, for callers (e.g. the
// remesher's back-projection step) that need the closest point on the
// winning triangle, not just its index.
func (t *TriangleKdTree) Triangle(faceIdx int) geom.Triangle3 {
	return t.triangle(faceIdx)
}

func (t *TriangleKdTree) build(faceIdx []int, box d3.Box, depth int) *node {
	if len(faceIdx) <= defaultLeafThreshold || depth >= defaultMaxDepth {
		return &node{box: box, axis: -1, faceIdx: faceIdx}
	}

	axis := t.chooseAxis(faceIdx, box)
	splitPos := t.choosePos(faceIdx, box, axis)

	leftBox, rightBox := splitBox(box, axis, splitPos)

	var left, right []int
	for _, fi := range faceIdx {
		fb := t.triBounds(fi)
		if boxesOverlap(fb, leftBox) {
			left = append(left, fi)
		}
		if boxesOverlap(fb, rightBox) {
			right = append(right, fi)
		}
	}
	// Safety net: if the split failed to shrink the set (e.g. every face
	// straddles the plane), stop subdividing to guarantee termination.
	if len(left) == len(faceIdx) && len(right) == len(faceIdx) {
		return &node{box: box, axis: -1, faceIdx: faceIdx}
	}

	n := &node{box: box, axis: axis, splitPos: splitPos}
	if len(left) > 0 {
		n.left = t.build(left, leftBox, depth+1)
	}
	if len(right) > 0 {
		n.right = t.build(right, rightBox, depth+1)
	}
	if n.left == nil && n.right == nil {
		return &node{box: box, axis: -1, faceIdx: faceIdx}
	}
	return n
}

func (t *TriangleKdTree) chooseAxis(faceIdx []int, box d3.Box) int {
	if t.policy == HighestStdDev {
		return highestVarianceAxis(t.centroids, faceIdx)
	}
	return widestAxis(box)
}

func (t *TriangleKdTree) choosePos(faceIdx []int, box d3.Box, axis int) float64 {
	if t.policy == Center {
		return axisComponent(box.Center(), axis)
	}
	return t.medianAlong(faceIdx, axis)
}

// medianAlong finds the coordinate median of face centroids along axis
// using gonum/kdtree's Partition + MedianOfMedians quickselect, the same
// pair of utilities the teacher's kdPlane/Pivot combination relies on.
func (t *TriangleKdTree) medianAlong(faceIdx []int, axis int) float64 {
	cp := make([]int, len(faceIdx))
	copy(cp, faceIdx)
	plane := axisPlane{tree: t, idx: cp, axis: axis}
	pivot := gokd.Partition(plane, gokd.MedianOfMedians(plane))
	return axisComponent(t.centroids[cp[pivot]], axis)
}

// axisPlane adapts a face-index slice into gonum/kdtree's SortSlicer so
// Partition/MedianOfMedians can operate on centroid coordinates along a
// fixed axis.
type axisPlane struct {
	tree *TriangleKdTree
	idx  []int
	axis int
}

func (p axisPlane) Len() int { return len(p.idx) }
func (p axisPlane) Less(i, j int) bool {
	return axisComponent(p.tree.centroids[p.idx[i]], p.axis) < axisComponent(p.tree.centroids[p.idx[j]], p.axis)
}
func (p axisPlane) Swap(i, j int) { p.idx[i], p.idx[j] = p.idx[j], p.idx[i] }
func (p axisPlane) Slice(start, end int) gokd.SortSlicer {
	p.idx = p.idx[start:end]
	return p
}

func widestAxis(box d3.Box) int {
	size := box.Size()
	switch {
	case size.X >= size.Y && size.X >= size.Z:
		return 0
	case size.Y >= size.X && size.Y >= size.Z:
		return 1
	default:
		return 2
	}
}

func highestVarianceAxis(centroids []r3.Vec, faceIdx []int) int {
	var mean r3.Vec
	for _, i := range faceIdx {
		mean = r3.Add(mean, centroids[i])
	}
	mean = r3.Scale(1/float64(len(faceIdx)), mean)
	var varX, varY, varZ float64
	for _, i := range faceIdx {
		d := r3.Sub(centroids[i], mean)
		varX += d.X * d.X
		varY += d.Y * d.Y
		varZ += d.Z * d.Z
	}
	switch {
	case varX >= varY && varX >= varZ:
		return 0
	case varY >= varX && varY >= varZ:
		return 1
	default:
		return 2
	}
}

func axisComponent(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func splitBox(box d3.Box, axis int, pos float64) (left, right d3.Box) {
	left, right = box, box
	switch axis {
	case 0:
		left.Max.X, right.Min.X = pos, pos
	case 1:
		left.Max.Y, right.Min.Y = pos, pos
	default:
		left.Max.Z, right.Min.Z = pos, pos
	}
	return left, right
}

func boxesOverlap(a, b d3.Box) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// Nearest returns the index (into the host face array) of the triangle
// closest to point, and the squared distance to it. Returns
// (-1, math.MaxFloat64) for an empty tree.
func (t *TriangleKdTree) Nearest(point r3.Vec) (faceIdx int, distSq float64) {
	if t.root == nil {
		return -1, math.MaxFloat64
	}
	best := -1
	bestD2 := math.MaxFloat64
	t.nearestHelper(t.root, point, &best, &bestD2)
	return best, bestD2
}

func (t *TriangleKdTree) nearestHelper(n *node, point r3.Vec, best *int, bestD2 *float64) {
	if n.axis == -1 {
		for _, fi := range n.faceIdx {
			d2, _, _ := geom.PointTriangleDistSq(point, t.triangle(fi))
			if d2 < *bestD2 {
				*bestD2 = d2
				*best = fi
			}
		}
		return
	}
	leftBox, rightBox := splitBox(n.box, n.axis, n.splitPos)
	var leftMin, rightMin float64
	if n.left != nil {
		leftMin, _ = leftBox.MinMaxDist2(point)
	} else {
		leftMin = math.MaxFloat64
	}
	if n.right != nil {
		rightMin, _ = rightBox.MinMaxDist2(point)
	} else {
		rightMin = math.MaxFloat64
	}

	first, second := n.left, n.right
	firstMin, secondMin := leftMin, rightMin
	if rightMin < leftMin {
		first, second = n.right, n.left
		firstMin, secondMin = rightMin, leftMin
	}
	if first != nil && firstMin < *bestD2 {
		t.nearestHelper(first, point, best, bestD2)
	}
	if second != nil && secondMin < *bestD2 {
		t.nearestHelper(second, point, best, bestD2)
	}
}

// Intersects tests ray against the tree, updating ray.HitParam with the
// closest hit found (if any) so the recursive traversal naturally prunes
// subtrees farther than the current best hit.
func (t *TriangleKdTree) Intersects(ray *geom.Ray) bool {
	if t.root == nil {
		return false
	}
	hit := false
	t.intersectHelper(t.root, ray, &hit)
	return hit
}

func (t *TriangleKdTree) intersectHelper(n *node, ray *geom.Ray, hit *bool) {
	if !geom.RayIntersectsBox(*ray, n.box) {
		return
	}
	if n.axis == -1 {
		for _, fi := range n.faceIdx {
			if geom.RayIntersectsTriangleWatertight(ray, t.triangle(fi)) {
				*hit = true
			}
		}
		return
	}
	if n.left != nil {
		t.intersectHelper(n.left, ray, hit)
	}
	if n.right != nil {
		t.intersectHelper(n.right, ray, hit)
	}
}

// FacesOverlappingBox returns every face (by index into the host array)
// whose bounding box overlaps query, used as a broad-phase filter ahead of
// an exact narrow-phase test such as TrianglesIntersect.
func (t *TriangleKdTree) FacesOverlappingBox(query d3.Box) []int {
	if t.root == nil {
		return nil
	}
	var out []int
	t.overlapHelper(t.root, query, &out)
	return out
}

func (t *TriangleKdTree) overlapHelper(n *node, query d3.Box, out *[]int) {
	if !boxesOverlap(n.box, query) {
		return
	}
	if n.axis == -1 {
		for _, fi := range n.faceIdx {
			if boxesOverlap(t.triBounds(fi), query) {
				*out = append(*out, fi)
			}
		}
		return
	}
	if n.left != nil {
		t.overlapHelper(n.left, query, out)
	}
	if n.right != nil {
		t.overlapHelper(n.right, query, out)
	}
}

// Bounds returns the bounding box of the whole tree, or a zero box if empty.
func (t *TriangleKdTree) Bounds() d3.Box {
	if t.root == nil {
		return d3.Box{}
	}
	return t.root.box
}
