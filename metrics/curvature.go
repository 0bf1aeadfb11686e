package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
)

// VertexCurvature holds the estimated principal curvatures and derived
// mean curvature at a vertex.
type VertexCurvature struct {
	K1, K2 float64
	Mean   float64
}

// MaxAbs returns max(|K1|,|K2|), the value the remesher's adaptive sizing
// field clamps against (kappa_max in spec.md's sizing formula).
func (c VertexCurvature) MaxAbs() float64 {
	return math.Max(math.Abs(c.K1), math.Abs(c.K2))
}

// VertexCurvatures estimates per-vertex principal and mean curvature via
// Taubin's normal-cycle integral-invariant estimator: for each incident
// edge, a normal curvature sample is projected onto the tangent plane and
// accumulated into a 3x3 curvature tensor whose eigenvectors (excluding
// the vertex normal direction) give the principal directions.
// Ground: MeshAnalysis.h's ComputeVertexCurvatures contract, implemented
// with gonum/mat.EigenSym in the style of the pack's point-cloud PCA
// curvature estimators adapted to a 1-ring mesh neighborhood.
func VertexCurvatures(mesh *meshbuf.Mesh, principalCurvatureFactor float64) []VertexCurvature {
	if principalCurvatureFactor == 0 {
		principalCurvatureFactor = 2.0
	}
	nv := len(mesh.Vertices)
	out := make([]VertexCurvature, nv)
	normals := vertexNormals(mesh)

	for v := 0; v < nv; v++ {
		if mesh.IsVertexDeleted(v) {
			continue
		}
		neighbors := mesh.VertexNeighbors(v)
		if len(neighbors) < 2 {
			continue
		}
		n := normals[v]
		accum := make([]float64, 9)
		totalWeight := 0.0
		for _, w := range neighbors {
			d := r3.Sub(mesh.Vertices[w], mesh.Vertices[v])
			l2 := r3.Dot(d, d)
			if l2 < 1e-18 {
				continue
			}
			kappa := 2 * r3.Dot(n, d) / l2
			tangent := r3.Sub(d, r3.Scale(r3.Dot(d, n), n))
			tl := r3.Norm(tangent)
			if tl < 1e-12 {
				continue
			}
			tangent = r3.Scale(1/tl, tangent)
			weight := math.Sqrt(l2)
			totalWeight += weight
			addOuter(accum, tangent, weight*kappa)
		}
		if totalWeight == 0 {
			continue
		}
		for i := range accum {
			accum[i] /= totalWeight
		}
		sym := mat.NewSymDense(3, accum)
		var eig mat.EigenSym
		if !eig.Factorize(sym, false) {
			continue
		}
		vals := eig.Values(nil)
		k1, k2 := principalFromEigen(vals)
		out[v] = VertexCurvature{
			K1:   principalCurvatureFactor * k1 / 2,
			K2:   principalCurvatureFactor * k2 / 2,
			Mean: principalCurvatureFactor * (k1 + k2) / 4,
		}
	}
	return out
}

// addOuter accumulates weight*(t ⊗ t) into the row-major 3x3 buffer acc.
func addOuter(acc []float64, t r3.Vec, weight float64) {
	v := [3]float64{t.X, t.Y, t.Z}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			acc[i*3+j] += weight * v[i] * v[j]
		}
	}
}

// principalFromEigen returns the two largest-magnitude eigenvalues of the
// curvature tensor (the third, near-zero one, corresponds to the normal
// direction and is discarded).
func principalFromEigen(vals []float64) (k1, k2 float64) {
	idx := []int{0, 1, 2}
	// sort indices by |vals| descending
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if math.Abs(vals[idx[j]]) > math.Abs(vals[idx[i]]) {
				idx[i], idx[j] = idx[j], idx[i]
			}
		}
	}
	return vals[idx[0]], vals[idx[1]]
}

func vertexNormals(mesh *meshbuf.Mesh) []r3.Vec {
	nv := len(mesh.Vertices)
	out := make([]r3.Vec, nv)
	for fi, f := range mesh.Faces {
		if mesh.IsFaceDeleted(fi) {
			continue
		}
		tri := triangleOf(mesh, fi)
		n := tri.Normal() // area-weighted: magnitude proportional to 2*area
		for _, v := range f {
			out[v] = r3.Add(out[v], n)
		}
	}
	for i, n := range out {
		if l := r3.Norm(n); l > 0 {
			out[i] = r3.Scale(1/l, n)
		}
	}
	return out
}
