package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// TrianglesIntersect is a triangle-triangle overlap test following
// [Moller, 1997]: each triangle's vertices are classified against the
// other's supporting plane; if one triangle lies entirely to one side of
// the other's plane there is no intersection, otherwise the two lines of
// intersection with the shared plane-pair are interval-tested.
func TrianglesIntersect(a, b Triangle3) bool {
	na := a.Normal()
	da := -r3.Dot(na, a[0])
	db0 := r3.Dot(na, b[0]) + da
	db1 := r3.Dot(na, b[1]) + da
	db2 := r3.Dot(na, b[2]) + da
	if sameSign(db0, db1, db2) {
		return false
	}

	nb := b.Normal()
	dbp := -r3.Dot(nb, b[0])
	da0 := r3.Dot(nb, a[0]) + dbp
	da1 := r3.Dot(nb, a[1]) + dbp
	da2 := r3.Dot(nb, a[2]) + dbp
	if sameSign(da0, da1, da2) {
		return false
	}

	d := r3.Cross(na, nb)
	if r3.Dot(d, d) < 1e-18 {
		// nearly coplanar triangles: fall back to a 2D-projected overlap
		// test on the dominant axis pair.
		return coplanarOverlap(a, b, na)
	}

	// project both triangles' edge-crossings of the other's plane onto the
	// common line L = plane(a) ∩ plane(b), then test interval overlap.
	ta0, ta1 := intervalOnLine(a, d, [3]float64{da0, da1, da2})
	tb0, tb1 := intervalOnLine(b, d, [3]float64{db0, db1, db2})
	if ta0 > ta1 {
		ta0, ta1 = ta1, ta0
	}
	if tb0 > tb1 {
		tb0, tb1 = tb1, tb0
	}
	return ta0 <= tb1 && tb0 <= ta1
}

func sameSign(a, b, c float64) bool {
	const eps = 1e-12
	pos := a > eps && b > eps && c > eps
	neg := a < -eps && b < -eps && c < -eps
	return pos || neg
}

// intervalOnLine projects the edges of t that cross the other triangle's
// plane (signed distances d) onto direction dir, returning the two
// projected parameters bounding t's piece of the intersection line.
func intervalOnLine(t Triangle3, dir r3.Vec, d [3]float64) (t0, t1 float64) {
	proj := func(p r3.Vec) float64 { return r3.Dot(dir, p) }
	var pts []float64
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		if (d[i] > 0) != (d[j] > 0) {
			denom := d[i] - d[j]
			if denom == 0 {
				continue
			}
			s := d[i] / denom
			p := r3.Add(t[i], r3.Scale(s, r3.Sub(t[j], t[i])))
			pts = append(pts, proj(p))
		}
	}
	if len(pts) < 2 {
		v := proj(t.Centroid())
		return v, v
	}
	return pts[0], pts[1]
}

// coplanarOverlap handles the (rare) nearly-coplanar case by projecting
// both triangles onto the plane best aligned with their shared normal and
// running a 2D triangle-triangle overlap test.
func coplanarOverlap(a, b Triangle3, n r3.Vec) bool {
	ax, ay := dominantAxes(n)
	pa := [3][2]float64{proj2(a[0], ax, ay), proj2(a[1], ax, ay), proj2(a[2], ax, ay)}
	pb := [3][2]float64{proj2(b[0], ax, ay), proj2(b[1], ax, ay), proj2(b[2], ax, ay)}
	return triangles2DOverlap(pa, pb)
}

func dominantAxes(n r3.Vec) (ax, ay int) {
	an := r3.Vec{X: math.Abs(n.X), Y: math.Abs(n.Y), Z: math.Abs(n.Z)}
	switch {
	case an.Z >= an.X && an.Z >= an.Y:
		return 0, 1
	case an.Y >= an.X && an.Y >= an.Z:
		return 0, 2
	default:
		return 1, 2
	}
}

func proj2(v r3.Vec, ax, ay int) [2]float64 {
	return [2]float64{component(v, ax), component(v, ay)}
}

func triangles2DOverlap(a, b [3][2]float64) bool {
	for _, tri := range [2][3][2]float64{a, b} {
		for i := 0; i < 3; i++ {
			j := (i + 1) % 3
			edge := [2]float64{tri[j][0] - tri[i][0], tri[j][1] - tri[i][1]}
			axis := [2]float64{-edge[1], edge[0]}
			if separates2D(axis, a, b) {
				return false
			}
		}
	}
	return true
}

func separates2D(axis [2]float64, a, b [3][2]float64) bool {
	minA, maxA := project2D(axis, a)
	minB, maxB := project2D(axis, b)
	return maxA < minB || maxB < minA
}

func project2D(axis [2]float64, t [3][2]float64) (min, max float64) {
	min, max = math.MaxFloat64, -math.MaxFloat64
	for _, p := range t {
		d := axis[0]*p[0] + axis[1]*p[1]
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return
}
