// Package metrics computes per-vertex aggregated triangle-quality metrics
// (minAngle, maxAngle, jacobianConditionNumber, equilateralJacobianCondition,
// stiffnessMatrixConditioning) and vertex curvature, consumed by the
// remesher's adaptive sizing field. The registry maps a string name to its
// computation function and is the sole extension point, per
// MeshAnalysis.h's IsMetricRegistered/IdentifyMetricFunction contract.
package metrics

import (
	"fmt"

	"github.com/MCInversion/ImplicitSurfaceWrap/geom"
	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
)

// TriangleMetricFunc computes a single scalar for a triangle.
type TriangleMetricFunc func(geom.Triangle3) float64

// Registry maps a metric name to its per-triangle computation function.
type Registry struct {
	funcs map[string]TriangleMetricFunc
}

// NewRegistry returns a Registry seeded with the standard metric set.
func NewRegistry() *Registry {
	r := &Registry{funcs: map[string]TriangleMetricFunc{}}
	r.Register("minAngle", TriangleMinAngle)
	r.Register("maxAngle", TriangleMaxAngle)
	r.Register("jacobianConditionNumber", TriangleJacobianConditionNumber)
	r.Register("equilateralJacobianCondition", TriangleEquilateralJacobianCondition)
	r.Register("stiffnessMatrixConditioning", TriangleStiffnessConditioning)
	return r
}

// Register adds or replaces a named metric function.
func (r *Registry) Register(name string, fn TriangleMetricFunc) {
	r.funcs[name] = fn
}

// IsRegistered reports whether name has a registered metric function.
func (r *Registry) IsRegistered(name string) bool {
	_, ok := r.funcs[name]
	return ok
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (TriangleMetricFunc, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// ComputeMetric evaluates the named metric per-triangle and writes the
// mean over incident triangles as a named vertex scalar property on mesh.
// Returns an error if name is not registered.
func (r *Registry) ComputeMetric(mesh *meshbuf.Mesh, name string) error {
	fn, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("metrics: unregistered metric %q", name)
	}
	nv := len(mesh.Vertices)
	sums := make([]float64, nv)
	counts := make([]int, nv)

	for fi := range mesh.Faces {
		if mesh.IsFaceDeleted(fi) {
			continue
		}
		tri := triangleOf(mesh, fi)
		val := fn(tri)
		for _, v := range mesh.Faces[fi] {
			sums[v] += val
			counts[v]++
		}
	}

	out := mesh.Properties().VertexScalar(name, nv)
	for v := 0; v < nv; v++ {
		if counts[v] > 0 {
			out[v] = sums[v] / float64(counts[v])
		}
	}
	return nil
}

func triangleOf(mesh *meshbuf.Mesh, fi int) geom.Triangle3 {
	f := mesh.Faces[fi]
	return geom.Triangle3{mesh.Vertices[f[0]], mesh.Vertices[f[1]], mesh.Vertices[f[2]]}
}
