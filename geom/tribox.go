package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/internal/d3"
)

// TriBoxOverlap tests whether triangle t overlaps box using the separating
// axis theorem: the 3 box axes, the triangle normal, and the 9
// cross-products of box edges with triangle edges. Returns false as soon as
// any axis separates.
func TriBoxOverlap(t Triangle3, box d3.Box) bool {
	center := box.Center()
	half := r3.Scale(0.5, box.Size())

	v0 := r3.Sub(t[0], center)
	v1 := r3.Sub(t[1], center)
	v2 := r3.Sub(t[2], center)

	// 3 box-axis tests: equivalent to an AABB overlap test on the triangle's
	// own bounding box.
	if overlapAxisExtent(v0.X, v1.X, v2.X, half.X) {
		return false
	}
	if overlapAxisExtent(v0.Y, v1.Y, v2.Y, half.Y) {
		return false
	}
	if overlapAxisExtent(v0.Z, v1.Z, v2.Z, half.Z) {
		return false
	}

	e0 := r3.Sub(v1, v0)
	e1 := r3.Sub(v2, v1)
	e2 := r3.Sub(v0, v2)

	boxAxes := [3]r3.Vec{{X: 1}, {Y: 1}, {Z: 1}}
	edges := [3]r3.Vec{e0, e1, e2}
	for _, e := range edges {
		for _, a := range boxAxes {
			axis := r3.Cross(a, e)
			if axis == (r3.Vec{}) {
				continue
			}
			if separatingAxis(axis, v0, v1, v2, half) {
				return false
			}
		}
	}

	// triangle-normal test.
	normal := r3.Cross(e0, e1)
	if normal != (r3.Vec{}) && separatingAxis(normal, v0, v1, v2, half) {
		return false
	}

	return true
}

func overlapAxisExtent(a, b, c, halfExtent float64) bool {
	lo := math.Min(a, math.Min(b, c))
	hi := math.Max(a, math.Max(b, c))
	return lo > halfExtent || hi < -halfExtent
}

// separatingAxis projects the triangle and the box (centered at origin,
// half-extents half) onto axis and reports whether axis separates them.
func separatingAxis(axis, v0, v1, v2, half r3.Vec) bool {
	p0 := r3.Dot(axis, v0)
	p1 := r3.Dot(axis, v1)
	p2 := r3.Dot(axis, v2)
	minP := math.Min(p0, math.Min(p1, p2))
	maxP := math.Max(p0, math.Max(p1, p2))

	rad := half.X*math.Abs(axis.X) + half.Y*math.Abs(axis.Y) + half.Z*math.Abs(axis.Z)
	return minP > rad || maxP < -rad
}
