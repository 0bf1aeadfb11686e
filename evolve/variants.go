package evolve

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
	"github.com/MCInversion/ImplicitSurfaceWrap/metrics"
	"github.com/MCInversion/ImplicitSurfaceWrap/remesh"
)

// NewIsoSurfaceEvolver builds a SurfaceEvolver whose bootstrap surface is
// supplied externally (typically from a marching-cubes pass the driver
// ran at an effective iso-level — marching-cubes itself is an external
// collaborator per spec.md §1) rather than the plain ico-sphere, and
// which runs a feature-detection-by-curvature pass between steps,
// locking the sharpest vertices against remeshing.
//
// curvatureFactor scales how far above the mesh's mean |κ| a vertex's
// principal curvature must sit before it is treated as a feature; 2.0 is
// a reasonable default.
func NewIsoSurfaceEvolver(settings Settings, initialMesh *meshbuf.Mesh, curvatureFactor float64) *SurfaceEvolver {
	e := NewSurfaceEvolver(settings)
	e.externalInitialMesh = initialMesh
	e.topologyEdit = func(mesh *meshbuf.Mesh) {
		lockHighCurvatureVertices(mesh, curvatureFactor)
	}
	return e
}

func lockHighCurvatureVertices(mesh *meshbuf.Mesh, curvatureFactor float64) {
	curvatures := metrics.VertexCurvatures(mesh, 1)
	if len(curvatures) == 0 {
		return
	}
	var mean float64
	for _, c := range curvatures {
		mean += c.MaxAbs()
	}
	mean /= float64(len(curvatures))
	threshold := curvatureFactor * mean

	for v, c := range curvatures {
		if c.MaxAbs() > threshold {
			remesh.LockVertex(mesh, v)
		}
	}
}

// NewBrainSurfaceEvolver builds a SurfaceEvolver operating on an
// intensity-grid field, with BET-style percentile-threshold weights and
// externally supplied ico-sphere bootstrap parameters (radius and
// center) rather than ones derived from the field's bounding box.
func NewBrainSurfaceEvolver(settings Settings, radius float64, center r3.Vec, lowPercentile, highPercentile float64) *SurfaceEvolver {
	e := NewSurfaceEvolver(settings)
	e.Weights = BrainWeights{LowPercentile: lowPercentile, HighPercentile: highPercentile}
	e.WithInitialSphere(radius, center)
	return e
}

// NewSheetMembraneEvolver builds a SurfaceEvolver whose bootstrap surface
// is a width x height planar triangulated grid of spacing cellSize at
// zStart rather than an ico-sphere, with its boundary loop held fixed
// (SheetWeights.IsFixed) and a height-based driving term ramping toward
// zEnd (SheetWeights.HeightAdvection) in place of a field gradient. The
// field passed to Preprocess/Run still supplies the bounding box used to
// resample it; its values are never sampled once stepping starts.
func NewSheetMembraneEvolver(settings Settings, width, height int, cellSize, zStart, zEnd float64) *SurfaceEvolver {
	e := NewSurfaceEvolver(settings)
	e.Weights = SheetWeights{ZStart: zStart, ZEnd: zEnd}
	e.externalInitialMesh = buildPlanarGrid(width, height, cellSize, zStart)
	return e
}

// buildPlanarGrid triangulates a width x height regular grid of spacing
// cellSize centered at the origin in the XY plane at height z, in the
// same leaves-first vertex/face construction style as icosphere.Build.
func buildPlanarGrid(width, height int, cellSize, z float64) *meshbuf.Mesh {
	if width < 2 || height < 2 {
		panic("evolve: planar grid needs at least 2x2 vertices")
	}
	verts := make([]r3.Vec, 0, width*height)
	ox := -float64(width-1) * cellSize / 2
	oy := -float64(height-1) * cellSize / 2
	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			verts = append(verts, r3.Vec{X: ox + float64(i)*cellSize, Y: oy + float64(j)*cellSize, Z: z})
		}
	}

	idx := func(i, j int) int { return j*width + i }
	var faces [][3]int
	for j := 0; j < height-1; j++ {
		for i := 0; i < width-1; i++ {
			a, b, c, d := idx(i, j), idx(i+1, j), idx(i+1, j+1), idx(i, j+1)
			faces = append(faces, [3]int{a, b, c})
			faces = append(faces, [3]int{a, c, d})
		}
	}
	return meshbuf.NewMesh(verts, faces)
}
