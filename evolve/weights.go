package evolve

import (
	"math"

	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
)

// PerVertexWeights holds the values the system fill needs at one vertex
// for one time step: the fidelity (Laplacian) weight and the advection
// weight, spec.md §4.8 step 2.
type PerVertexWeights struct {
	Laplacian float64 // ε(d)
	Advection float64 // η(d, g·n)
}

// WeightFunction is the strategy object spec.md §9 asks for in place of
// polymorphism over evolver variants: the step loop in SurfaceEvolver is
// identical across IsoSurfaceEvolver/BrainSurfaceEvolver/SheetMembraneEvolver,
// only this computation differs.
type WeightFunction interface {
	// Weights computes ε(d) and η(d, g·n) for one vertex sample. d is
	// field(x) - isoLevel; gn is g·n, the dot of the advection direction
	// with the vertex unit normal.
	Weights(d, gn float64) PerVertexWeights
}

// DefaultWeights implements the plain spec.md §4.8 formulas:
//
//	ε(d) = 1 - exp(-d²)
//	η(d, g·n) = d·(g·n - sqrt(max(0, 1-(g·n)²)))
//
// used directly by IsoSurfaceEvolver and as the base every other variant
// starts from.
type DefaultWeights struct{}

func (DefaultWeights) Weights(d, gn float64) PerVertexWeights {
	return PerVertexWeights{
		Laplacian: laplacianWeight(d),
		Advection: advectionWeight(d, gn),
	}
}

func laplacianWeight(d float64) float64 {
	return 1 - math.Exp(-d*d)
}

// advectionWeight implements η(d,g·n). The open question in spec.md §9
// about the sign convention when |g·n|>1 (interpolation overshoot) is
// resolved here by clamping the radicand to zero rather than propagating
// NaN through the rest of the step.
func advectionWeight(d, gn float64) float64 {
	radicand := 1 - gn*gn
	if radicand < 0 {
		radicand = 0
	}
	return d * (gn - math.Sqrt(radicand))
}

// BrainWeights derives its effective weights from BET-style percentile
// thresholds of the underlying intensity field rather than a fixed
// iso-level: d is rescaled by (d - lowPercentile)/(highPercentile-lowPercentile)
// before the default formulas apply, so the advection term is gentler in
// low-contrast tissue and sharper across a clear intensity boundary.
type BrainWeights struct {
	LowPercentile, HighPercentile float64
}

func (w BrainWeights) Weights(d, gn float64) PerVertexWeights {
	span := w.HighPercentile - w.LowPercentile
	if span <= 0 {
		span = 1
	}
	scaled := (d - w.LowPercentile) / span
	return PerVertexWeights{
		Laplacian: laplacianWeight(scaled),
		Advection: advectionWeight(scaled, gn),
	}
}

// SheetWeights drives a planar membrane between two heights rather than
// toward a field iso-surface: fillSystem recognizes it through the
// heightDriven interface and replaces the field-sampled advection term
// with HeightAdvection's ramp between ZStart and ZEnd; boundary vertices
// are held fixed via IsFixed.
type SheetWeights struct {
	ZStart, ZEnd float64
}

// Weights satisfies WeightFunction for callers that invoke it directly
// (BET-style debugging, unit tests) without going through fillSystem's
// heightDriven path; it falls back to the plain field-sample formulas.
// fillSystem itself always prefers HeightAdvection for a SheetWeights.
func (w SheetWeights) Weights(d, gn float64) PerVertexWeights {
	return PerVertexWeights{
		Laplacian: laplacianWeight(d),
		Advection: advectionWeight(d, gn),
	}
}

// IsFixed holds the membrane's boundary loop in place, implementing the
// fixedVertex hook fillSystem checks for.
func (w SheetWeights) IsFixed(mesh *meshbuf.Mesh, v int) bool {
	return mesh.IsBoundaryVertex(v)
}

// HeightTarget returns the membrane's target height fraction in [0,1] for
// a given world-space z.
func (w SheetWeights) HeightTarget(z float64) float64 {
	span := w.ZEnd - w.ZStart
	if span == 0 {
		return 0
	}
	t := (z - w.ZStart) / span
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// HeightAdvection computes the driving term fillSystem uses in place of
// a field gradient sample: it treats the remaining climb to ZEnd as the
// signed "distance to target" and assumes the membrane advects straight
// toward its target plane (g·n = 1), so the fidelity/advection formulas
// collapse to laplacianWeight(d) and d itself. This is the heightDriven
// hook fillSystem type-asserts for.
func (w SheetWeights) HeightAdvection(z float64) PerVertexWeights {
	d := w.ZEnd - z
	return PerVertexWeights{
		Laplacian: laplacianWeight(d),
		Advection: advectionWeight(d, 1),
	}
}
