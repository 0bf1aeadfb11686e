package evolve

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/grid"
	"github.com/MCInversion/ImplicitSurfaceWrap/icosphere"
	"github.com/MCInversion/ImplicitSurfaceWrap/internal/d3"
	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
	"github.com/MCInversion/ImplicitSurfaceWrap/remesh"
	"github.com/MCInversion/ImplicitSurfaceWrap/report"
)

// State is one of the SurfaceEvolver lifecycle states of spec.md §4.8:
// Constructed → Preprocessed → Stepping(i) → Finished | Failed(step, reason).
type State int

const (
	Constructed State = iota
	Preprocessed
	Stepping
	Finished
	Failed
)

func (s State) String() string {
	switch s {
	case Constructed:
		return "constructed"
	case Preprocessed:
		return "preprocessed"
	case Stepping:
		return "stepping"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// SurfaceEvolver implicit-steps a triangle mesh toward the iso-surface of
// a scalar field under a mean-curvature-flow-plus-advection equation
// (spec.md §4.8). It exclusively owns the evolving mesh; the field is a
// non-owning reference.
type SurfaceEvolver struct {
	Settings Settings
	Weights  WeightFunction
	Reporter *report.StepReporter

	state State
	step  int

	mesh  *meshbuf.Mesh
	field grid.Field3
	grad  *grid.VectorGrid

	toWorld d3.Transform

	sys *linearSystem

	failStep   int
	failReason SolverFailureReason

	snapshots []*meshbuf.Mesh

	// overrideRadius/overrideCenter, when non-zero/non-nil, replace the
	// default "0.4 * min_extent(field box)" radius and box-center used to
	// build the bootstrap ico-sphere — BrainSurfaceEvolver's "initial
	// ico-sphere parameters externally supplied" variant behavior.
	overrideRadius float64
	overrideCenter *r3.Vec

	// externalInitialMesh, when non-nil, replaces the bootstrap ico-sphere
	// outright — IsoSurfaceEvolver's "initial surface from marching-cubes"
	// variant behavior. marching-cubes itself is an external collaborator
	// (spec.md §1 non-goals); the driver builds it and hands the mesh in.
	externalInitialMesh *meshbuf.Mesh

	// topologyEdit, when non-nil, runs once per step after remeshing —
	// IsoSurfaceEvolver's feature-detection-by-curvature pass.
	topologyEdit func(mesh *meshbuf.Mesh)
}

// NewSurfaceEvolver constructs an evolver in the Constructed state with
// DefaultWeights; use the variant constructors in variants.go for
// IsoSurfaceEvolver/BrainSurfaceEvolver/SheetMembraneEvolver behavior.
func NewSurfaceEvolver(settings Settings) *SurfaceEvolver {
	return &SurfaceEvolver{Settings: settings, Weights: DefaultWeights{}, state: Constructed}
}

func (e *SurfaceEvolver) State() State { return e.state }

// WithInitialSphere overrides the bootstrap ico-sphere's radius and
// center, which Preprocess otherwise derives from the field's bounding
// box (spec.md §4.8's "0.4 * min_extent(B)" default). Must be called
// before Preprocess/Run. Returns e for chaining.
func (e *SurfaceEvolver) WithInitialSphere(radius float64, center r3.Vec) *SurfaceEvolver {
	e.overrideRadius = radius
	e.overrideCenter = &center
	return e
}

// Preprocess builds the initial ico-sphere, computes the stabilizing
// similarity transform, and applies it to both the mesh and a resampled
// copy of the field, per spec.md §4.8.
func (e *SurfaceEvolver) Preprocess(field grid.Field3) error {
	if err := e.Settings.validate(); err != nil {
		return err
	}
	if e.state != Constructed {
		return &ErrInvalidSettings{"state", "Preprocess called outside Constructed"}
	}

	box := field.Bounds()
	size := box.Size()
	d := math.Min(size.X, math.Min(size.Y, size.Z))
	r := 0.4 * d
	if e.overrideRadius > 0 {
		r = e.overrideRadius
	}
	center := box.Center()
	if e.overrideCenter != nil {
		center = *e.overrideCenter
	}

	var mesh *meshbuf.Mesh
	if e.externalInitialMesh != nil {
		mesh = e.externalInitialMesh.Clone()
	} else {
		// icosphere.Build centers its output at the origin; recenter onto
		// the field's box (or the override center) so the mesh starts out
		// in the same world frame the field itself lives in, before the
		// stabilizing transform below maps everything back to the origin.
		mesh = icosphere.Build(r, e.Settings.InitialSubdivision)
		for i, v := range mesh.Vertices {
			mesh.Vertices[i] = r3.Add(v, center)
		}
	}
	expectedV := float64(icosphere.VertexCount(e.Settings.InitialSubdivision))
	meanCoVolumeArea := 4 * math.Pi * r * r / expectedV
	sigma := math.Cbrt(e.Settings.Tau / meanCoVolumeArea)

	// x' = sigma*(x - center): scale about the global origin first (matrix
	// = sigma*I, translation untouched by Transform.Scale), then fold in
	// the -sigma*center translation — doing Translate before Scale would
	// leave the translation component unscaled and produce sigma*x-center
	// instead.
	transform := d3.Transform{}.Scale(r3.Vec{}, d3.Elem(sigma)).Translate(r3.Scale(-sigma, center))
	e.toWorld = transform.Inv()

	for i, v := range mesh.Vertices {
		mesh.Vertices[i] = transform.Transform(v)
	}

	e.mesh = mesh
	e.field = transformedField(field, transform, sigma*fieldCellSize(field))
	e.grad = grid.Gradient(e.field.(*grid.ScalarGrid)).NegatedNormalize()
	e.sys = newLinearSystem(len(e.mesh.Vertices))
	e.state = Preprocessed
	if e.Reporter != nil {
		e.Reporter.Preprocessed(len(e.mesh.Vertices), sigma)
	}
	return nil
}

// Step advances the evolution by one time step (spec.md §4.8 per-step
// 1-6): recompute normals, fill the system, solve, write back positions,
// remesh, optionally snapshot.
func (e *SurfaceEvolver) Step() error {
	if e.state != Preprocessed && e.state != Stepping {
		return &ErrInvalidSettings{"state", "Step called outside Preprocessed/Stepping"}
	}
	e.state = Stepping

	normals := vertexUnitNormals(e.mesh)
	if e.sys == nil || e.sys.n != len(e.mesh.Vertices) {
		e.sys = newLinearSystem(len(e.mesh.Vertices))
	}

	advectionScale, laplacianScale := e.Settings.scales()
	fillSystem(e.sys, e.mesh, e.field, e.grad, normals, e.Weights, e.toWorld,
		e.Settings.IsoLevel, e.Settings.Tau, e.Settings.TangentialWeight, advectionScale, laplacianScale)

	ok, reason := solveSystem(e.sys, e.mesh)
	if !ok {
		e.state = Failed
		e.failStep, e.failReason = e.step, reason
		if e.Reporter != nil {
			e.Reporter.Failed(e.step, reason.String())
		}
		return &ErrSolverFailure{Step: e.step, Reason: reason}
	}

	if e.Settings.RemeshingInterval > 0 && e.step%e.Settings.RemeshingInterval == 0 {
		lMin := math.Sqrt(e.Settings.Tau)
		remesh.AdaptiveRemesh(e.mesh, e.Settings.remeshSettings(lMin))
		e.mesh.GarbageCollect()
		if e.topologyEdit != nil {
			e.topologyEdit(e.mesh)
		}
		e.sys = newLinearSystem(len(e.mesh.Vertices))
	}

	if e.Settings.ExportEveryStep {
		e.snapshots = append(e.snapshots, e.mesh.Clone())
	}
	if e.Reporter != nil {
		e.Reporter.Step(e.step, len(e.mesh.Vertices))
	}

	e.step++
	return nil
}

// Run drives Step to completion, returning the final result in world
// coordinates. On solver failure it aborts cleanly and returns the
// partial result alongside the error, with any snapshots taken before the
// failing step intact (the caller can still call Result()).
func (e *SurfaceEvolver) Run(field grid.Field3) (*EvolutionResult, error) {
	if err := e.Preprocess(field); err != nil {
		return nil, err
	}
	for e.step < e.Settings.NSteps {
		if err := e.Step(); err != nil {
			return e.Result(), err
		}
	}
	e.state = Finished
	if e.Reporter != nil {
		e.Reporter.Finished(e.step, len(e.mesh.Vertices))
	}
	return e.Result(), nil
}

// Result exports the current mesh back to world coordinates, applying
// the inverse of the stabilizing transform recorded at Preprocess.
func (e *SurfaceEvolver) Result() *EvolutionResult {
	return &EvolutionResult{
		Mesh:      e.mesh.Clone(),
		Transform: e.toWorld,
		Snapshots: append([]*meshbuf.Mesh(nil), e.snapshots...),
		State:     e.state,
	}
}

func vertexUnitNormals(mesh *meshbuf.Mesh) []r3.Vec {
	out := make([]r3.Vec, len(mesh.Vertices))
	for v := range mesh.Vertices {
		if mesh.IsVertexDeleted(v) {
			continue
		}
		var sum r3.Vec
		for _, fi := range mesh.VertexFaces(v) {
			fv := mesh.FaceVertices(fi)
			e1, e2 := r3.Sub(fv[1], fv[0]), r3.Sub(fv[2], fv[0])
			sum = r3.Add(sum, r3.Cross(e1, e2))
		}
		if n := r3.Norm(sum); n > 0 {
			out[v] = r3.Scale(1/n, sum)
		}
	}
	return out
}
