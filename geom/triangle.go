// Package geom implements the triangle-level geometric primitives shared by
// the KD-tree, the SDF builder and the self-intersection detector:
// point-triangle distance, tri-box overlap, and watertight ray-triangle
// intersection.
package geom

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/internal/d3"
)

// Triangle3 is three world-space vertices in CCW winding order.
type Triangle3 [3]r3.Vec

// Normal returns the (non-unit) face normal via the cross product of two
// edges; degenerate triangles return the zero vector.
func (t Triangle3) Normal() r3.Vec {
	e0 := r3.Sub(t[1], t[0])
	e1 := r3.Sub(t[2], t[0])
	return r3.Cross(e0, e1)
}

// UnitNormal returns Normal scaled to unit length, or the zero vector for
// degenerate (zero-area) triangles.
func (t Triangle3) UnitNormal() r3.Vec {
	n := t.Normal()
	l := r3.Norm(n)
	if l == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/l, n)
}

// Area returns the triangle's area.
func (t Triangle3) Area() float64 {
	return 0.5 * r3.Norm(t.Normal())
}

// IsDegenerate reports whether the triangle has (numerically) zero area.
func (t Triangle3) IsDegenerate(eps float64) bool {
	return t.Area() <= eps
}

// Centroid returns the arithmetic mean of the three vertices.
func (t Triangle3) Centroid() r3.Vec {
	return r3.Scale(1.0/3.0, r3.Add(t[0], r3.Add(t[1], t[2])))
}

// Bounds returns the triangle's axis-aligned bounding box.
func (t Triangle3) Bounds() d3.Box {
	b := d3.Box{Min: t[0], Max: t[0]}
	b = b.Include(t[1])
	b = b.Include(t[2])
	return b
}
