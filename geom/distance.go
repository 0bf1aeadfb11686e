package geom

import "gonum.org/v1/gonum/spatial/r3"

// Feature identifies which part of a triangle a closest-point query landed
// on, needed by the pseudonormal sign-determination pass.
type Feature int

const (
	FeatureFace Feature = iota
	FeatureEdge01
	FeatureEdge12
	FeatureEdge20
	FeatureVertex0
	FeatureVertex1
	FeatureVertex2
)

// PointTriangleDistSq computes the squared distance from p to the closest
// point on triangle t, classifying which face/edge/vertex feature the
// closest point landed on (needed for angle-weighted pseudonormal signing).
//
// Ported from the Geometric Tools algorithm for distance between a point
// and a solid triangle (Boost Software License), working in the triangle's
// own (edge0, edge1) basis rather than canonicalizing into a 2D frame.
func PointTriangleDistSq(p r3.Vec, t Triangle3) (distSq float64, closest r3.Vec, feature Feature) {
	a, b, c := t[0], t[1], t[2]
	diff := r3.Sub(p, a)
	edge0 := r3.Sub(b, a)
	edge1 := r3.Sub(c, a)

	a00 := r3.Dot(edge0, edge0)
	a01 := r3.Dot(edge0, edge1)
	a11 := r3.Dot(edge1, edge1)
	b0 := -r3.Dot(diff, edge0)
	b1 := -r3.Dot(diff, edge1)

	f00 := b0
	f10 := b0 + a00
	f01 := b0 + a01

	var s, tt float64

	getMinEdge02 := func() (float64, float64) {
		if b1 >= 0 {
			return 0, 0
		} else if a11+b1 <= 0 {
			return 0, 1
		}
		return 0, -b1 / a11
	}
	getMinEdge12 := func() (float64, float64) {
		h0 := a01 + b1 - f10
		var t1 float64
		if h0 >= 0 {
			t1 = 0
		} else {
			h1 := a11 + b1 - f01
			if h1 <= 0 {
				t1 = 1
			} else {
				t1 = h0 / (h0 - h1)
			}
		}
		return 1 - t1, t1
	}
	getMinInterior := func(p0 [2]float64, h0 float64, p1 [2]float64, h1 float64) (float64, float64) {
		z := h0 / (h0 - h1)
		omz := 1 - z
		return omz*p0[0] + z*p1[0], omz*p0[1] + z*p1[1]
	}

	switch {
	case f00 >= 0 && f01 > 0:
		s, tt = getMinEdge02()
	case f00 >= 0:
		p0 := [2]float64{0, f00 / (f00 - f01)}
		p1 := [2]float64{f01 / (f01 - f10), 1 - f01/(f01-f10)}
		dt1 := p1[1] - p0[1]
		h0 := dt1 * (a11*p0[1] + b1)
		if h0 >= 0 {
			s, tt = getMinEdge02()
		} else {
			h1 := dt1 * (a01*p1[0] + a11*p1[1] + b1)
			if h1 <= 0 {
				s, tt = getMinEdge12()
			} else {
				s, tt = getMinInterior(p0, h0, p1, h1)
			}
		}
	case f01 <= 0 && f10 <= 0:
		s, tt = getMinEdge12()
	case f01 <= 0:
		p0 := [2]float64{f00 / (f00 - f10), 0}
		p1 := [2]float64{f01 / (f01 - f10), 1 - f01/(f01-f10)}
		h0 := p1[1] * (a01*p0[0] + b1)
		if h0 >= 0 {
			s, tt = p0[0], p0[1]
		} else {
			h1 := p1[1] * (a01*p1[0] + a11*p1[1] + b1)
			if h1 <= 0 {
				s, tt = getMinEdge12()
			} else {
				s, tt = getMinInterior(p0, h0, p1, h1)
			}
		}
	case f10 <= 0:
		p0 := [2]float64{0, f00 / (f00 - f01)}
		p1 := [2]float64{f01 / (f01 - f10), 1 - f01/(f01-f10)}
		dt1 := p1[1] - p0[1]
		h0 := dt1 * (a11*p0[1] + b1)
		if h0 >= 0 {
			s, tt = getMinEdge02()
		} else {
			h1 := dt1 * (a01*p1[0] + a11*p1[1] + b1)
			if h1 <= 0 {
				s, tt = getMinEdge12()
			} else {
				s, tt = getMinInterior(p0, h0, p1, h1)
			}
		}
	default:
		p0 := [2]float64{f00 / (f00 - f10), 0}
		p1 := [2]float64{0, f00 / (f00 - f01)}
		h0 := p1[1] * (a01*p0[0] + b1)
		if h0 >= 0 {
			s, tt = p0[0], p0[1]
		} else {
			h1 := p1[1] * (a11*p1[1] + b1)
			if h1 <= 0 {
				s, tt = getMinEdge02()
			} else {
				s, tt = getMinInterior(p0, h0, p1, h1)
			}
		}
	}

	closest = r3.Add(a, r3.Add(r3.Scale(s, edge0), r3.Scale(tt, edge1)))
	d := r3.Sub(p, closest)
	distSq = r3.Dot(d, d)
	feature = classifyFeature(s, tt)
	return distSq, closest, feature
}

// classifyFeature maps barycentric-like (s,t) coordinates in the
// (edge0,edge1) basis back to the vertex/edge/face it landed on.
func classifyFeature(s, t float64) Feature {
	const eps = 1e-12
	onS0 := s <= eps
	onT0 := t <= eps
	onST1 := s+t >= 1-eps
	switch {
	case onS0 && onT0:
		return FeatureVertex0
	case onT0 && onST1:
		return FeatureVertex1
	case onS0 && onST1:
		return FeatureVertex2
	case onT0:
		return FeatureEdge01
	case onST1:
		return FeatureEdge12
	case onS0:
		return FeatureEdge20
	default:
		return FeatureFace
	}
}
