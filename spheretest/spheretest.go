// Package spheretest implements the analytical shrinking-sphere
// convergence benchmark of spec.md §4.9: an ico-sphere evolved under pure
// mean-curvature flow (no field, no advection) should track the
// closed-form radius r(t) = sqrt(max(0, r0^2 - 2t)) to within a tolerance
// proportional to the initial mesh's characteristic edge length.
package spheretest

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/evolve"
	"github.com/MCInversion/ImplicitSurfaceWrap/icosphere"
	"github.com/MCInversion/ImplicitSurfaceWrap/internal/d3"
)

// nullField is a constant-zero Field3 whose gradient is meaningless — its
// only role is to satisfy SurfaceEvolver.Preprocess's box-framing step.
// pureMCFWeights below ignores d and gn entirely, so this field never
// actually drives the evolution.
type nullField struct {
	box d3.Box
}

func (nullField) Evaluate(r3.Vec) float64 { return 0 }
func (f nullField) Bounds() d3.Box        { return f.box }

// pureMCFWeights implements WeightFunction with the fidelity term fixed
// at 1 (full Laplacian smoothing, no field-proximity gating) and the
// advection term fixed at 0 (no field-driven term) — "pure MCF" per
// spec.md §4.9. The inward motion comes entirely from the cotangent
// Laplacian's mean-curvature-flow behavior.
type pureMCFWeights struct{}

func (pureMCFWeights) Weights(d, gn float64) evolve.PerVertexWeights {
	return evolve.PerVertexWeights{Laplacian: 1, Advection: 0}
}

// StepResult records one step's comparison against the closed-form
// solution.
type StepResult struct {
	Step       int
	Time       float64
	MeanRadius float64
	ExpectedR  float64
	LInf       float64 // max |radius(v) - meanRadius| over vertices
	L2         float64 // RMS |radius(v) - meanRadius| over vertices
}

// Run evolves an ico-sphere of radius r0, subdivision k, under pure MCF
// for nSteps steps of size tau, and returns one StepResult per step.
// Collapse (mean radius reaching ~0) is not treated as an error; the
// caller inspects ExpectedR to detect it via PassesTolerance.
func Run(r0 float64, k int, tau float64, nSteps int) ([]StepResult, error) {
	half := d3.Elem(2.5 * r0)
	box := d3.Box{Min: r3.Scale(-1, half), Max: half}

	settings := evolve.Settings{
		NSteps:             nSteps,
		Tau:                tau,
		InitialSubdivision: k,
		RemeshingInterval:  0, // keep vertex correspondence stable for radius tracking
	}
	e := evolve.NewSurfaceEvolver(settings)
	e.Weights = pureMCFWeights{}
	e.WithInitialSphere(r0, r3.Vec{})

	if err := e.Preprocess(nullField{box: box}); err != nil {
		return nil, err
	}

	// The stabilizing transform scales the r0-radius bootstrap sphere by
	// sigma; recover that factor from the actual stabilized-frame radius
	// so results can be reported back in the original, unscaled units.
	sigma := meanRadius(e.Result().Mesh.Vertices) / r0

	results := make([]StepResult, 0, nSteps)
	for i := 0; i < nSteps; i++ {
		if err := e.Step(); err != nil {
			return results, err
		}
		t := float64(i+1) * tau
		expected := math.Sqrt(math.Max(0, r0*r0-2*t))

		verts := e.Result().Mesh.Vertices
		radii := make([]float64, len(verts))
		var sum float64
		for v, p := range verts {
			r := r3.Norm(p) / sigma
			radii[v] = r
			sum += r
		}
		mean := sum / float64(len(radii))

		var lInf, sqSum float64
		for _, r := range radii {
			diff := math.Abs(r - mean)
			if diff > lInf {
				lInf = diff
			}
			sqSum += diff * diff
		}
		l2 := math.Sqrt(sqSum / float64(len(radii)))

		results = append(results, StepResult{
			Step:       i,
			Time:       t,
			MeanRadius: mean,
			ExpectedR:  expected,
			LInf:       lInf,
			L2:         l2,
		})
	}
	return results, nil
}

func meanRadius(verts []r3.Vec) float64 {
	var sum float64
	for _, p := range verts {
		sum += r3.Norm(p)
	}
	return sum / float64(len(verts))
}

// characteristicEdgeLength approximates the initial ico-sphere's edge
// length from its radius and subdivision level, a value for the h of
// PassesTolerance's "error <= c*h" check. Run does not call it.
func characteristicEdgeLength(r0 float64, k int) float64 {
	vertCount := float64(icosphere.VertexCount(k))
	faces := 2*vertCount - 4
	if faces <= 0 {
		return r0
	}
	areaPerFace := 4 * math.Pi * r0 * r0 / faces
	return math.Sqrt(4 * areaPerFace / math.Sqrt(3))
}

// PassesTolerance reports whether every result up to (but not including)
// collapse satisfies |MeanRadius - ExpectedR| <= c*h, the "error <= C*h
// at all steps before collapse" criterion of spec.md §4.9.
func PassesTolerance(results []StepResult, h, c float64) bool {
	for _, r := range results {
		if r.ExpectedR <= 1e-9 {
			break
		}
		if math.Abs(r.MeanRadius-r.ExpectedR) > c*h {
			return false
		}
	}
	return true
}
