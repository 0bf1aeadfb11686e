package remesh

import (
	"github.com/MCInversion/ImplicitSurfaceWrap/kdtree"
	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
)

const defaultIterations = 10

// featureVertexProp and featureEdgeProp name the mesh properties locking
// vertices/edges against removal or relocation. Using mesh properties
// (rather than a plain []int/map in Settings) means the lock survives
// GarbageCollect's index remapping across remeshing iterations.
const (
	featureVertexProp = "feature"
	featureEdgeProp   = "featureEdge"
)

// Settings configures one AdaptiveRemesh run.
type Settings struct {
	Mode Mode

	// UniformLength is s(v) for every vertex when Mode == Uniform.
	UniformLength float64

	// ApproxError (eps) and the [MinLength, MaxLength] clamp feed the
	// adaptive sizing formula in ComputeSizingField.
	ApproxError              float64
	MinLength, MaxLength     float64
	PrincipalCurvatureFactor float64

	// Iterations is the number of split/collapse/flip/relax passes; 0
	// defaults to 10 (spec.md §4.7's default).
	Iterations int

	// TangentialWeight scales the relaxation step toward the area-weighted
	// centroid; 1 fully relaxes, 0 disables relaxation.
	TangentialWeight float64

	// BackProjectTree, if non-nil, is queried once per vertex per
	// iteration to snap positions back onto a reference surface.
	BackProjectTree *kdtree.TriangleKdTree
}

func (s Settings) iterations() int {
	if s.Iterations > 0 {
		return s.Iterations
	}
	return defaultIterations
}

// LockVertex flags v as a feature vertex: it is never collapsed away,
// relaxed, or back-projected.
func LockVertex(mesh *meshbuf.Mesh, v int) {
	mesh.Properties().VertexBool(featureVertexProp, len(mesh.Vertices))[v] = true
}

// LockEdge flags (a,b) as a feature edge: it is never collapsed or
// flipped.
func LockEdge(mesh *meshbuf.Mesh, a, b int) {
	mesh.Properties().SetEdgeScalar(a, b, featureEdgeProp, 1)
}

func isFeatureVertex(mesh *meshbuf.Mesh, v int) bool {
	if !mesh.Properties().HasVertexBool(featureVertexProp) {
		return false
	}
	flags := mesh.Properties().VertexBool(featureVertexProp, len(mesh.Vertices))
	return v < len(flags) && flags[v]
}

func isFeatureEdge(mesh *meshbuf.Mesh, a, b int) bool {
	_, ok := mesh.Properties().EdgeScalar(a, b, featureEdgeProp)
	return ok
}
