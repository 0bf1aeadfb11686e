package evolve

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/grid"
	"github.com/MCInversion/ImplicitSurfaceWrap/internal/d3"
	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
)

// linearSystem holds the per-step SPD matrix M and right-hand side R of
// spec.md §4.8 step 2, reallocated whenever the evolving mesh's vertex
// count changes.
type linearSystem struct {
	n int
	m *mat.SymDense
	r [3]*mat.VecDense // one column per coordinate
}

func newLinearSystem(n int) *linearSystem {
	return &linearSystem{
		n: n,
		m: mat.NewSymDense(n, nil),
		r: [3]*mat.VecDense{
			mat.NewVecDense(n, nil),
			mat.NewVecDense(n, nil),
			mat.NewVecDense(n, nil),
		},
	}
}

// fixedVertex is implemented by weight functions that need certain
// vertices held exactly in place (SheetWeights' constrained boundary);
// fillSystem writes an identity row for those vertices instead of the
// usual fidelity/advection blend.
type fixedVertex interface {
	IsFixed(mesh *meshbuf.Mesh, v int) bool
}

// heightDriven is implemented by weight functions whose driving term
// comes from a vertex's world-space height rather than a field/gradient
// sample — SheetWeights' ramp between ZStart and ZEnd. fillSystem
// converts the vertex's local (stabilizing-transform) position back to
// world space with toWorld before calling HeightAdvection, since
// ZStart/ZEnd are given in the same frame as buildPlanarGrid's bootstrap.
type heightDriven interface {
	HeightAdvection(z float64) PerVertexWeights
}

// fillSystem assembles M and R for one time step, sampling field/gradient
// at every live vertex and combining it with the cotangent stencil and
// the weight function's ε/η. Per-vertex weights are computed in a first
// pass so that the off-diagonal entry for edge (v,w) can use the average
// of ε(v) and ε(w) — spec.md §4.8 writes M[v,w] = -τ·ε·λ_vw with ε
// implicitly row-local, but a row-local ε makes M asymmetric in general
// (spec.md §9's open question about losing SPD); averaging keeps the
// assembled matrix symmetric so mat.Cholesky's contract holds.
func fillSystem(sys *linearSystem, mesh *meshbuf.Mesh, field grid.Field3, gradField *grid.VectorGrid, normals []r3.Vec, weights WeightFunction, toWorld d3.Transform, isoLevel, tau, tangentialWeight, advectionScale, laplacianScale float64) {
	n := sys.n
	fixer, _ := weights.(fixedVertex)
	hd, isHeightDriven := weights.(heightDriven)

	perVertex := make([]PerVertexWeights, n)
	for v := 0; v < n; v++ {
		x := mesh.Vertices[v]
		var w PerVertexWeights
		if isHeightDriven {
			w = hd.HeightAdvection(toWorld.Transform(x).Z)
		} else {
			d := field.Evaluate(x) - isoLevel
			g := gradField.SampleTrilinear(x)
			gn := r3.Dot(g, normals[v])
			w = weights.Weights(d, gn)
		}
		w.Laplacian *= laplacianScale
		w.Advection *= advectionScale
		perVertex[v] = w
	}

	for v := 0; v < n; v++ {
		if fixer != nil && fixer.IsFixed(mesh, v) {
			sys.m.SetSym(v, v, 1)
			x := mesh.Vertices[v]
			sys.r[0].SetVec(v, x.X)
			sys.r[1].SetVec(v, x.Y)
			sys.r[2].SetVec(v, x.Z)
			continue
		}

		x := mesh.Vertices[v]
		n3 := normals[v]
		w := perVertex[v]
		stencil := buildLaplaceStencil(mesh, v)

		diag := 1 + tau*w.Laplacian*stencil.sum
		sys.m.SetSym(v, v, diag)

		rhs := r3.Add(x, r3.Scale(tau*w.Advection, n3))
		for _, nb := range stencil.neighbors {
			switch {
			case fixer != nil && fixer.IsFixed(mesh, nb):
				// Dirichlet handling: a fixed neighbor's position is
				// known, not a system unknown, so its contribution moves
				// to the right-hand side instead of a matrix entry — the
				// (v,nb) slot in sys.m stays at its zero default, which
				// also keeps the matrix symmetric with v's identity row.
				coeff := tau * w.Laplacian * stencil.lambda[nb]
				rhs = r3.Add(rhs, r3.Scale(coeff, mesh.Vertices[nb]))
			case nb > v:
				avgEps := 0.5 * (w.Laplacian + perVertex[nb].Laplacian)
				sys.m.SetSym(v, nb, -tau*avgEps*stencil.lambda[nb])
			}
		}

		if tangentialWeight > 0 {
			centroid := neighborCentroid(mesh, v, stencil.neighbors)
			tangent := r3.Sub(centroid, x)
			tangent = r3.Sub(tangent, r3.Scale(r3.Dot(tangent, n3), n3))
			rhs = r3.Add(rhs, r3.Scale(tangentialWeight, tangent))
		}
		sys.r[0].SetVec(v, rhs.X)
		sys.r[1].SetVec(v, rhs.Y)
		sys.r[2].SetVec(v, rhs.Z)
	}
}

func neighborCentroid(mesh *meshbuf.Mesh, v int, neighbors []int) r3.Vec {
	if len(neighbors) == 0 {
		return mesh.Vertices[v]
	}
	var sum r3.Vec
	for _, w := range neighbors {
		sum = r3.Add(sum, mesh.Vertices[w])
	}
	return r3.Scale(1/float64(len(neighbors)), sum)
}

// solveSystem factors M once and solves the three coordinate systems,
// writing updated positions back into mesh.Vertices. Returns a
// SolverFailureReason on factorization or solve failure so the caller can
// build a typed ErrSolverFailure carrying the step index.
func solveSystem(sys *linearSystem, mesh *meshbuf.Mesh) (ok bool, reason SolverFailureReason) {
	var chol mat.Cholesky
	if !chol.Factorize(sys.m) {
		return false, NumericalIssue
	}

	var xCols [3]*mat.VecDense
	for axis := 0; axis < 3; axis++ {
		dst := mat.NewVecDense(sys.n, nil)
		if err := chol.SolveVecTo(dst, sys.r[axis]); err != nil {
			return false, NoConvergence
		}
		xCols[axis] = dst
	}

	for v := 0; v < sys.n; v++ {
		mesh.Vertices[v] = r3.Vec{X: xCols[0].AtVec(v), Y: xCols[1].AtVec(v), Z: xCols[2].AtVec(v)}
	}
	return true, 0
}
