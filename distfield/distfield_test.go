package distfield

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/icosphere"
)

func vecXYZ(x, y, z float64) r3.Vec { return r3.Vec{X: x, Y: y, Z: z} }

func baseSettings() Settings {
	return Settings{
		CellSize:              0.1,
		VolumeExpansionFactor: 0.2,
		TruncationValue:       0.3,
		SignMode:              SignVoxelFloodFill,
		Preprocessing:         PreprocessKDTree,
	}
}

func TestGenerateSDFEmptyMesh(t *testing.T) {
	if _, _, err := GenerateSDF(nil, baseSettings()); err != ErrEmptyMesh {
		t.Fatalf("got err %v, want ErrEmptyMesh", err)
	}
}

func TestGenerateSDFSphereSignsCenterNegative(t *testing.T) {
	mesh := icosphere.Build(1, 2)
	g, stats, err := GenerateSDF(mesh, baseSettings())
	if err != nil {
		t.Fatalf("GenerateSDF: %v", err)
	}
	if stats.Skipped != 0 {
		t.Fatalf("unexpected degenerate triangles skipped: %d", stats.Skipped)
	}
	center := g.Evaluate(vecXYZ(0, 0, 0))
	if center >= 0 {
		t.Fatalf("center of unit sphere should be inside (negative), got %v", center)
	}
}

func TestGenerateSDFOctreePreprocessingAgreesOnSign(t *testing.T) {
	mesh := icosphere.Build(1, 2)
	settings := baseSettings()
	settings.Preprocessing = PreprocessOctree

	g, _, err := GenerateSDF(mesh, settings)
	if err != nil {
		t.Fatalf("GenerateSDF: %v", err)
	}
	center := g.Evaluate(vecXYZ(0, 0, 0))
	if center >= 0 {
		t.Fatalf("octree preprocessing: center should be inside, got %v", center)
	}
}

func TestGenerateSDFPseudoNormalSign(t *testing.T) {
	mesh := icosphere.Build(1, 2)
	settings := baseSettings()
	settings.SignMode = SignPseudoNormal

	g, _, err := GenerateSDF(mesh, settings)
	if err != nil {
		t.Fatalf("GenerateSDF: %v", err)
	}
	inside := g.Evaluate(vecXYZ(0, 0, 0))
	outside := g.Evaluate(vecXYZ(5, 5, 5))
	if inside >= 0 || outside <= 0 {
		t.Fatalf("pseudonormal sign: inside=%v outside=%v, want inside<0<outside", inside, outside)
	}
}

func TestBoxBlurIntroducesNoNaN(t *testing.T) {
	mesh := icosphere.Build(1, 1)
	settings := baseSettings()
	settings.BlurMode = Blur3Cube

	g, _, err := GenerateSDF(mesh, settings)
	if err != nil {
		t.Fatalf("GenerateSDF: %v", err)
	}
	if math.IsNaN(g.Evaluate(vecXYZ(0, 0, 0))) {
		t.Fatal("blur introduced NaN")
	}
}
