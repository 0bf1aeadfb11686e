package remesh

import (
	"testing"

	"github.com/MCInversion/ImplicitSurfaceWrap/icosphere"
	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
)

func TestComputeSizingFieldUniform(t *testing.T) {
	mesh := icosphere.Build(1, 2)
	set := Settings{Mode: Uniform, UniformLength: 0.3}
	s := ComputeSizingField(mesh, set)
	for v, val := range s {
		if val != 0.3 {
			t.Fatalf("vertex %d: got sizing %v, want 0.3", v, val)
		}
	}
}

func TestComputeSizingFieldAdaptiveRange(t *testing.T) {
	mesh := icosphere.Build(1, 2)
	set := Settings{
		Mode:                     Adaptive,
		ApproxError:              0.05,
		MinLength:                0.05,
		MaxLength:                0.5,
		PrincipalCurvatureFactor: 2.0,
	}
	s := ComputeSizingField(mesh, set)
	for v := range mesh.Vertices {
		if mesh.IsVertexDeleted(v) {
			continue
		}
		if s[v] < set.MinLength-1e-9 || s[v] > set.MaxLength+1e-9 {
			t.Fatalf("vertex %d: sizing %v outside [%v, %v]", v, s[v], set.MinLength, set.MaxLength)
		}
	}
}

func TestAdaptiveRemeshLeavesNoDegenerateFaces(t *testing.T) {
	mesh := icosphere.Build(1, 1)
	wantV := icosphere.VertexCount(1)
	if mesh.NumVertices() != wantV {
		t.Fatalf("fixture vertex count %d != closed form %d", mesh.NumVertices(), wantV)
	}

	set := Settings{
		Mode:             Uniform,
		UniformLength:    0.3,
		Iterations:       3,
		TangentialWeight: 0.5,
	}
	AdaptiveRemesh(mesh, set)

	for fi := range mesh.Faces {
		if mesh.IsFaceDeleted(fi) {
			continue
		}
		f := mesh.Faces[fi]
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			t.Fatalf("face %d degenerated into a zero-area triangle after remeshing", fi)
		}
	}
	if mesh.NumVertices() == 0 || mesh.NumFaces() == 0 {
		t.Fatal("remeshing collapsed the entire mesh")
	}
}

func TestLockedVertexSurvivesCollapse(t *testing.T) {
	mesh := icosphere.Build(1, 1)
	LockVertex(mesh, 0)

	set := Settings{
		Mode:          Uniform,
		UniformLength: 1e6, // everything looks "too short", forcing aggressive collapse
		Iterations:    2,
	}
	AdaptiveRemesh(mesh, set)

	if mesh.IsVertexDeleted(0) {
		t.Fatal("locked vertex 0 was removed by collapse")
	}
}

func TestFlipEdgesDoesNotIncreaseValenceDeviation(t *testing.T) {
	mesh := icosphere.Build(1, 2)
	before := totalValenceDeviation(mesh)
	flipEdges(mesh, Settings{})
	after := totalValenceDeviation(mesh)
	if after > before {
		t.Fatalf("flip pass increased total valence deviation: %d -> %d", before, after)
	}
}

func totalValenceDeviation(mesh *meshbuf.Mesh) int {
	total := 0
	for v := range mesh.Vertices {
		if mesh.IsVertexDeleted(v) {
			continue
		}
		target := 6
		if mesh.IsBoundaryVertex(v) {
			target = 4
		}
		total += devAbs(len(mesh.VertexNeighbors(v)), target)
	}
	return total
}
