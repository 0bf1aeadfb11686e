package evolve

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/icosphere"
	"github.com/MCInversion/ImplicitSurfaceWrap/internal/d3"
)

// sphereField is an analytic signed-distance-to-sphere Field3 stand-in,
// used so these tests don't depend on distfield's grid construction.
type sphereField struct {
	center r3.Vec
	radius float64
	extent float64
}

func (f sphereField) Evaluate(p r3.Vec) float64 {
	return r3.Norm(r3.Sub(p, f.center)) - f.radius
}

func (f sphereField) Bounds() d3.Box {
	half := d3.Elem(f.extent)
	return d3.Box{Min: r3.Sub(f.center, half), Max: r3.Add(f.center, half)}
}

func TestLaplacianWeightApproachesOneAwayFromSurface(t *testing.T) {
	if got := laplacianWeight(0); got != 0 {
		t.Fatalf("laplacianWeight(0) = %v, want 0", got)
	}
	if got := laplacianWeight(5); got < 0.999 {
		t.Fatalf("laplacianWeight(5) = %v, want close to 1", got)
	}
}

func TestAdvectionWeightClampsOvershoot(t *testing.T) {
	got := advectionWeight(1.0, 1.5) // |g.n| > 1 from interpolation overshoot
	if math.IsNaN(got) {
		t.Fatal("advectionWeight produced NaN for |g.n| > 1")
	}
	want := 1.0 * 1.5 // radicand clamped to 0, sqrt(0) = 0
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("advectionWeight(1, 1.5) = %v, want %v", got, want)
	}
}

func TestBrainWeightsDegenerateSpanDefaultsToOne(t *testing.T) {
	w := BrainWeights{LowPercentile: 0.5, HighPercentile: 0.5}
	got := w.Weights(0.5, 0)
	want := DefaultWeights{}.Weights(0, 0)
	if got != want {
		t.Fatalf("degenerate percentile span: got %+v, want %+v", got, want)
	}
}

func TestBuildLaplaceStencilSymmetricAcrossEndpoints(t *testing.T) {
	mesh := icosphere.Build(1, 1)
	v, w := mesh.Faces[0][0], mesh.Faces[0][1]

	stV := buildLaplaceStencil(mesh, v)
	stW := buildLaplaceStencil(mesh, w)

	lambdaVW, ok := stV.lambda[w]
	if !ok {
		t.Fatalf("vertex %d stencil missing neighbor %d", v, w)
	}
	lambdaWV, ok := stW.lambda[v]
	if !ok {
		t.Fatalf("vertex %d stencil missing neighbor %d", w, v)
	}
	if math.Abs(lambdaVW-lambdaWV) > 1e-12 {
		t.Fatalf("lambda(%d,%d) = %v != lambda(%d,%d) = %v", v, w, lambdaVW, w, v, lambdaWV)
	}
}

func TestSheetWeightsLocksBoundaryVertices(t *testing.T) {
	mesh := buildPlanarGrid(4, 4, 0.5, 0)
	w := SheetWeights{ZStart: 0, ZEnd: 1}

	boundaryFound, interiorFound := false, false
	for v := range mesh.Vertices {
		if mesh.IsBoundaryVertex(v) {
			boundaryFound = true
			if !w.IsFixed(mesh, v) {
				t.Fatalf("boundary vertex %d not reported fixed", v)
			}
		} else {
			interiorFound = true
			if w.IsFixed(mesh, v) {
				t.Fatalf("interior vertex %d incorrectly reported fixed", v)
			}
		}
	}
	if !boundaryFound || !interiorFound {
		t.Fatal("fixture grid has no boundary/interior vertex split to test")
	}
}

func TestHeightTargetClampsToUnitRange(t *testing.T) {
	w := SheetWeights{ZStart: 0, ZEnd: 2}
	if got := w.HeightTarget(-1); got != 0 {
		t.Fatalf("HeightTarget(-1) = %v, want 0", got)
	}
	if got := w.HeightTarget(3); got != 1 {
		t.Fatalf("HeightTarget(3) = %v, want 1", got)
	}
	if got := w.HeightTarget(1); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("HeightTarget(1) = %v, want 0.5", got)
	}
}

func TestSurfaceEvolverPreprocessCentersAndScalesMesh(t *testing.T) {
	field := sphereField{center: r3.Vec{X: 10, Y: 0, Z: 0}, radius: 3, extent: 6}
	settings := Settings{NSteps: 1, Tau: 0.01, InitialSubdivision: 1}
	e := NewSurfaceEvolver(settings)

	if err := e.Preprocess(field); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if e.State() != Preprocessed {
		t.Fatalf("state = %v, want Preprocessed", e.State())
	}

	var centroid r3.Vec
	for _, v := range e.mesh.Vertices {
		centroid = r3.Add(centroid, v)
	}
	centroid = r3.Scale(1/float64(len(e.mesh.Vertices)), centroid)
	if r3.Norm(centroid) > 1e-6 {
		t.Fatalf("stabilized mesh not centered at origin: centroid = %v", centroid)
	}
}

func TestSurfaceEvolverRunReachesFinished(t *testing.T) {
	field := sphereField{center: r3.Vec{}, radius: 2, extent: 5}
	settings := Settings{NSteps: 3, Tau: 0.02, InitialSubdivision: 1}
	e := NewSurfaceEvolver(settings)

	result, err := e.Run(field)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.State != Finished {
		t.Fatalf("result.State = %v, want Finished", result.State)
	}
	if len(result.Mesh.Vertices) == 0 {
		t.Fatal("Run produced an empty mesh")
	}
}

func TestEvolutionResultToWorldRecoversFieldFrame(t *testing.T) {
	field := sphereField{center: r3.Vec{X: -4, Y: 1, Z: 2}, radius: 1.5, extent: 4}
	settings := Settings{NSteps: 1, Tau: 0.01, InitialSubdivision: 1}
	e := NewSurfaceEvolver(settings)

	result, err := e.Run(field)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	worldMesh := result.ToWorld()
	var centroid r3.Vec
	for _, v := range worldMesh.Vertices {
		centroid = r3.Add(centroid, v)
	}
	centroid = r3.Scale(1/float64(len(worldMesh.Vertices)), centroid)

	if dist := r3.Norm(r3.Sub(centroid, field.center)); dist > 1e-6 {
		t.Fatalf("world-space mesh centroid %v not near field center %v (dist %v)", centroid, field.center, dist)
	}
}

func TestRemeshingIntervalZeroNeverRemeshes(t *testing.T) {
	field := sphereField{center: r3.Vec{}, radius: 2, extent: 5}
	settings := Settings{NSteps: 2, Tau: 0.02, InitialSubdivision: 1, RemeshingInterval: 0}
	e := NewSurfaceEvolver(settings)

	if err := e.Preprocess(field); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	wantV := len(e.mesh.Vertices)
	for i := 0; i < settings.NSteps; i++ {
		if err := e.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if got := len(e.mesh.Vertices); got != wantV {
		t.Fatalf("vertex count changed with RemeshingInterval=0: %d -> %d", wantV, got)
	}
}

func TestSheetMembraneEvolverBootstrapsPlanarGridAndClimbsTowardZEnd(t *testing.T) {
	const zStart, zEnd = 0.0, 2.0
	field := sphereField{center: r3.Vec{}, radius: 2, extent: 5}
	settings := Settings{NSteps: 1, Tau: 0.01, InitialSubdivision: 1}
	e := NewSheetMembraneEvolver(settings, 5, 5, 0.5, zStart, zEnd)

	if err := e.Preprocess(field); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	for _, v := range e.mesh.Vertices {
		if world := e.toWorld.Transform(v); math.Abs(world.Z-zStart) > 1e-9 {
			t.Fatalf("bootstrap vertex world z = %v, want %v (planar grid not wired into Preprocess)", world.Z, zStart)
		}
	}

	boundaryBefore := map[int]r3.Vec{}
	interiorZBefore := map[int]float64{}
	for v := range e.mesh.Vertices {
		if e.mesh.IsBoundaryVertex(v) {
			boundaryBefore[v] = e.mesh.Vertices[v]
		} else {
			interiorZBefore[v] = e.mesh.Vertices[v].Z
		}
	}
	if len(boundaryBefore) == 0 || len(interiorZBefore) == 0 {
		t.Fatal("planar bootstrap has no boundary/interior vertex split to test")
	}

	if err := e.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	for v, before := range boundaryBefore {
		if dist := r3.Norm(r3.Sub(e.mesh.Vertices[v], before)); dist > 1e-9 {
			t.Fatalf("boundary vertex %d moved by %v, want held fixed", v, dist)
		}
	}

	climbed := false
	for v, zBefore := range interiorZBefore {
		if e.mesh.Vertices[v].Z > zBefore+1e-12 {
			climbed = true
		}
	}
	if !climbed {
		t.Fatal("interior vertices did not climb toward zEnd; HeightAdvection not wired into fillSystem")
	}
}
