package distfield

import (
	"github.com/MCInversion/ImplicitSurfaceWrap/geom"
	"github.com/MCInversion/ImplicitSurfaceWrap/grid"
	"github.com/MCInversion/ImplicitSurfaceWrap/internal/d3"
	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
)

// frame computes the mesh bounding box and expands it per
// Settings.VolumeExpansionFactor, per spec.md §4.4 step 1.
func frame(mesh *meshbuf.Mesh, set Settings) d3.Box {
	box := meshBounds(mesh)
	return grid.ExpandByFactor(box, set.VolumeExpansionFactor)
}

func meshBounds(mesh *meshbuf.Mesh) d3.Box {
	box := d3.Box{Min: mesh.Vertices[0], Max: mesh.Vertices[0]}
	for _, v := range mesh.Vertices {
		box = box.Include(v)
	}
	return box
}

// liveFaces filters the mesh's face list down to live, non-degenerate
// triangles, referencing the mesh's own vertex indices (so adjacency —
// shared edges and vertices across faces — survives the filter for the
// pseudonormal sign pass), tracking how many were skipped for having
// near-zero area.
func liveFaces(mesh *meshbuf.Mesh) ([][3]int, DegenerateTriangleStats) {
	var faces [][3]int
	stats := DegenerateTriangleStats{}
	for fi, f := range mesh.Faces {
		if mesh.IsFaceDeleted(fi) {
			continue
		}
		stats.Total++
		tri := geom.Triangle3{mesh.Vertices[f[0]], mesh.Vertices[f[1]], mesh.Vertices[f[2]]}
		if tri.IsDegenerate(1e-12) {
			stats.Skipped++
			continue
		}
		faces = append(faces, f)
	}
	return faces, stats
}
