package remesh

import "github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"

// AdaptiveRemesh runs the split/collapse/flip/tangential-relax pipeline
// for set.iterations() passes, recomputing the sizing field whenever the
// vertex count changes (per spec.md §4.7's "if mesh vertex count changed,
// reallocate" contract — here that just means recomputing s(v) against
// the new vertex set before the next pass).
func AdaptiveRemesh(mesh *meshbuf.Mesh, set Settings) {
	for i := 0; i < set.iterations(); i++ {
		sizing := ComputeSizingField(mesh, set)
		splitLongEdges(mesh, sizing, set)

		// Splitting changed the vertex count; reallocate the sizing field
		// before the index space it indexes into shifts again.
		sizing = ComputeSizingField(mesh, set)
		collapseShortEdges(mesh, sizing, set)

		mesh.GarbageCollect()
		flipEdges(mesh, set)
		tangentialRelax(mesh, set)
		backProjectVertices(mesh, set)
	}
}
