package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/geom"
)

// edgeLengths returns the three edge lengths |BC|,|CA|,|AB| opposite each
// vertex, in vertex order.
func edgeLengths(t geom.Triangle3) (a, b, c float64) {
	a = r3.Norm(r3.Sub(t[2], t[1])) // opposite vertex 0
	b = r3.Norm(r3.Sub(t[0], t[2])) // opposite vertex 1
	c = r3.Norm(r3.Sub(t[1], t[0])) // opposite vertex 2
	return
}

// TriangleMinAngle returns the smallest internal angle, in [0, pi/3].
func TriangleMinAngle(t geom.Triangle3) float64 {
	angles := internalAngles(t)
	return math.Min(angles[0], math.Min(angles[1], angles[2]))
}

// TriangleMaxAngle returns the largest internal angle, in [pi/3, pi].
func TriangleMaxAngle(t geom.Triangle3) float64 {
	angles := internalAngles(t)
	return math.Max(angles[0], math.Max(angles[1], angles[2]))
}

func internalAngles(t geom.Triangle3) [3]float64 {
	a, b, c := edgeLengths(t)
	angle := func(opp, adj1, adj2 float64) float64 {
		cosA := (adj1*adj1 + adj2*adj2 - opp*opp) / (2 * adj1 * adj2)
		cosA = math.Max(-1, math.Min(1, cosA))
		return math.Acos(cosA)
	}
	return [3]float64{
		angle(a, b, c),
		angle(b, c, a),
		angle(c, a, b),
	}
}

// localCoords2x2 returns the 2x2 matrix whose columns are the local
// in-plane coordinates of vertices B and C relative to A, using the
// triangle's own orthonormal basis (u along AB, v completing the plane).
func localCoords2x2(t geom.Triangle3) *mat.Dense {
	u := r3.Sub(t[1], t[0])
	lenAB := r3.Norm(u)
	if lenAB == 0 {
		return mat.NewDense(2, 2, []float64{0, 0, 0, 0})
	}
	u = r3.Scale(1/lenAB, u)
	n := t.UnitNormal()
	v := r3.Cross(n, u)

	ac := r3.Sub(t[2], t[0])
	bx, by := lenAB, 0.0
	cx, cy := r3.Dot(ac, u), r3.Dot(ac, v)
	return mat.NewDense(2, 2, []float64{bx, cx, by, cy})
}

func condNumber2x2(m *mat.Dense) float64 {
	var svd mat.SVD
	ok := svd.Factorize(m, mat.SVDNone)
	if !ok {
		return math.Inf(1)
	}
	sv := svd.Values(nil)
	if len(sv) < 2 || sv[1] == 0 {
		return math.Inf(1)
	}
	return sv[0] / sv[1]
}

// TriangleJacobianConditionNumber is the condition number of the Jacobian
// mapping the reference right-isoceles triangle (0,0)-(1,0)-(0,1) onto t.
// Range [1, inf); 1 is best (equivalent shape up to rotation).
func TriangleJacobianConditionNumber(t geom.Triangle3) float64 {
	return condNumber2x2(localCoords2x2(t))
}

// TriangleEquilateralJacobianCondition is the same condition number but
// referenced against a unit equilateral triangle instead of the
// right-isoceles one, so a perfectly equilateral t scores exactly 1.
func TriangleEquilateralJacobianCondition(t geom.Triangle3) float64 {
	a := localCoords2x2(t)
	ref := mat.NewDense(2, 2, []float64{1, 0.5, 0, math.Sqrt(3) / 2})
	var refInv mat.Dense
	if err := refInv.Inverse(ref); err != nil {
		return math.Inf(1)
	}
	var j mat.Dense
	j.Mul(a, &refInv)
	return condNumber2x2(&j)
}

// TriangleStiffnessConditioning estimates the conditioning of the local FEM
// stiffness matrix of a spring model of the triangle (cotangent weights),
// per [ch. 3, Shewchuk, 2002]: the ratio of its largest to smallest
// nonzero eigenvalue.
func TriangleStiffnessConditioning(t geom.Triangle3) float64 {
	cotA, cotB, cotC := cotangents(t)
	// local 3x3 stiffness for edges (BC:A),(CA:B),(AB:C) weighted by the
	// cotangent of the angle opposite each edge.
	k := mat.NewSymDense(3, []float64{
		cotB + cotC, -cotC, -cotB,
		0, cotA + cotC, -cotA,
		0, 0, cotA + cotB,
	})
	var eig mat.EigenSym
	if !eig.Factorize(k, false) {
		return math.Inf(1)
	}
	vals := eig.Values(nil)
	min, max := math.Inf(1), 0.0
	for _, v := range vals {
		av := math.Abs(v)
		if av < 1e-9 {
			continue
		}
		if av < min {
			min = av
		}
		if av > max {
			max = av
		}
	}
	if min == math.Inf(1) || min == 0 {
		return math.Inf(1)
	}
	return max / min
}

func cotangents(t geom.Triangle3) (cotA, cotB, cotC float64) {
	angles := internalAngles(t)
	cot := func(a float64) float64 {
		s := math.Sin(a)
		if math.Abs(s) < 1e-12 {
			return 0
		}
		return math.Cos(a) / s
	}
	return cot(angles[0]), cot(angles[1]), cot(angles[2])
}
