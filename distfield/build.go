package distfield

import (
	"time"

	"github.com/MCInversion/ImplicitSurfaceWrap/grid"
	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
)

// GenerateSDF runs the full pipeline of spec.md §4.4 — frame, allocate,
// preprocess, fast-sweep, sign, blur — over mesh, returning the resulting
// grid and a count of triangles skipped for degeneracy.
func GenerateSDF(mesh *meshbuf.Mesh, set Settings) (*grid.ScalarGrid, DegenerateTriangleStats, error) {
	if mesh == nil || mesh.NumVertices() == 0 || mesh.NumFaces() == 0 {
		return nil, DegenerateTriangleStats{}, ErrEmptyMesh
	}
	started := time.Now()
	set.Reporter.Input("", mesh.NumVertices(), mesh.NumFaces(), set.CellSize, set.TruncationValue)

	box := frame(mesh, set)
	g := grid.NewScalarGrid(set.CellSize, box, grid.DefaultInitValue)

	faces, stats := liveFaces(mesh)
	if len(faces) == 0 {
		return nil, stats, ErrEmptyMesh
	}

	seedNarrowBand(g, mesh.Vertices, faces, set)
	fastSweep(g, set.TruncationValue)
	assignSign(g, mesh.Vertices, faces, set)
	applyBlur(g, set.BlurMode)

	dims := g.Dims()
	set.Reporter.Output(dims.Nx, dims.Ny, dims.Nz, stats.Skipped, time.Since(started))

	return g, stats, nil
}
