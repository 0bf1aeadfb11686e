package evolve

import "github.com/MCInversion/ImplicitSurfaceWrap/remesh"

// Settings configures a SurfaceEvolver run (spec.md §4.8).
type Settings struct {
	Name string

	NSteps int
	Tau    float64 // time step τ
	IsoLevel float64 // c

	InitialSubdivision int // k, ico-sphere subdivision level

	// AdvectionWeight and LaplacianWeight scale η and ε respectively before
	// they enter the system fill; 1.0 reproduces the plain spec formulas.
	AdvectionWeight float64
	LaplacianWeight float64

	RemeshingInterval int // run AdaptiveRemesh every N steps; 0 disables it
	TangentialWeight  float64

	// ExportEveryStep, when true, asks Run to retain every intermediate
	// mesh snapshot in EvolutionResult.Snapshots rather than only the
	// final mesh.
	ExportEveryStep bool
}

// scales returns the effective advection/Laplacian multipliers, defaulting
// an unset (zero) value to 1 so the plain spec formulas apply unless a
// caller deliberately overrides them.
func (s Settings) scales() (advection, laplacian float64) {
	advection, laplacian = s.AdvectionWeight, s.LaplacianWeight
	if advection == 0 {
		advection = 1
	}
	if laplacian == 0 {
		laplacian = 1
	}
	return advection, laplacian
}

func (s Settings) remeshSettings(lMin float64) remesh.Settings {
	return remesh.Settings{
		Mode:                     remesh.Adaptive,
		ApproxError:              lMin,
		MinLength:                lMin,
		MaxLength:                5 * lMin,
		PrincipalCurvatureFactor: 1,
		Iterations:               1,
		TangentialWeight:         s.TangentialWeight,
	}
}

func (s Settings) validate() error {
	if s.NSteps <= 0 {
		return &ErrInvalidSettings{"NSteps", "must be positive"}
	}
	if s.Tau <= 0 {
		return &ErrInvalidSettings{"Tau", "must be positive"}
	}
	if s.InitialSubdivision < 0 {
		return &ErrInvalidSettings{"InitialSubdivision", "must be non-negative"}
	}
	return nil
}
