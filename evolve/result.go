package evolve

import (
	"github.com/MCInversion/ImplicitSurfaceWrap/internal/d3"
	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
)

// EvolutionResult is what Run/Result hand back: the evolved mesh in the
// solver's stabilized coordinate frame, the transform mapping that frame
// back to world coordinates (the inverse of the stabilizing transform),
// any per-step snapshots, and the evolver's terminal state.
type EvolutionResult struct {
	Mesh      *meshbuf.Mesh
	Transform d3.Transform
	Snapshots []*meshbuf.Mesh
	State     State
}

// ToWorld applies the inverse of the stabilizing transform recorded at
// Preprocess, returning a copy of Mesh in the field's original world
// coordinates (spec.md §4.8's "export applies the inverse transform").
func (r *EvolutionResult) ToWorld() *meshbuf.Mesh {
	out := r.Mesh.Clone()
	for i, v := range out.Vertices {
		out.Vertices[i] = r.Transform.Transform(v)
	}
	return out
}

// SnapshotsToWorld applies ToWorld's inverse transform to every recorded
// snapshot, for callers exporting the full evolution history rather than
// just the final surface.
func (r *EvolutionResult) SnapshotsToWorld() []*meshbuf.Mesh {
	out := make([]*meshbuf.Mesh, len(r.Snapshots))
	for i, snap := range r.Snapshots {
		clone := snap.Clone()
		for j, v := range clone.Vertices {
			clone.Vertices[j] = r.Transform.Transform(v)
		}
		out[i] = clone
	}
	return out
}
