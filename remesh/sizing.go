// Package remesh implements uniform and adaptive isotropic remeshing
// (split/collapse/flip/tangential-relax, with optional back-projection
// onto a reference surface), matching the pipeline described for
// pmp::SurfaceMesh-based remeshers in MeshAnalysis.h / SurfaceEvolver.cpp.
package remesh

import (
	"math"

	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
	"github.com/MCInversion/ImplicitSurfaceWrap/metrics"
)

// Mode selects the sizing-field strategy.
type Mode int

const (
	// Uniform targets a single edge length everywhere.
	Uniform Mode = iota
	// Adaptive shrinks the target length where curvature is high, per
	// s = clamp(sqrt(6*eps/kappa_max - 3*eps^2), Lmin, Lmax).
	Adaptive
	// ConvexHull runs the same pipeline but prioritizes splitting the
	// longest edges of elongated triangles, for hull-like inputs.
	ConvexHull
)

// ComputeSizingField returns the target edge length s(v) for every vertex,
// per spec.md §4.7's precompute-sizing step.
func ComputeSizingField(mesh *meshbuf.Mesh, set Settings) []float64 {
	nv := len(mesh.Vertices)
	s := make([]float64, nv)
	if set.Mode == Uniform {
		for v := range s {
			s[v] = set.UniformLength
		}
		return s
	}

	curv := metrics.VertexCurvatures(mesh, set.PrincipalCurvatureFactor)
	eps := set.ApproxError
	for v := 0; v < nv; v++ {
		if mesh.IsVertexDeleted(v) {
			continue
		}
		kappaMax := curv[v].MaxAbs()
		var target float64
		if kappaMax < 1e-9 {
			target = set.MaxLength
		} else {
			inner := 6*eps/kappaMax - 3*eps*eps
			if inner <= 0 {
				target = set.MinLength
			} else {
				target = math.Sqrt(inner)
			}
		}
		s[v] = clamp(target, set.MinLength, set.MaxLength)
	}
	return s
}

func clamp(x, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
