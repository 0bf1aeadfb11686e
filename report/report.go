// Package report implements the structured stdout reporting block
// spec.md §6 describes ("format is stable per-line but not
// machine-parsed"), generalizing the original SDF::ReportInput /
// SDF::ReportOutput / REPORT_EVOL_STEPS stdout blocks from
// ShrinkWrapMain.cpp / SurfaceEvolver.cpp into a small io.Writer-based
// reporter the distfield and evolve packages call optionally.
package report

import (
	"fmt"
	"io"
	"time"
)

// StepReporter writes a structured progress block to an io.Writer. The
// zero value is unusable; construct with New. A nil *StepReporter is
// valid to hold (e.g. as SurfaceEvolver.Reporter) and every method on it
// is a no-op, matching the library default of "off" described in
// SPEC_FULL.md.
type StepReporter struct {
	w     io.Writer
	start time.Time
}

// New returns a StepReporter writing to w.
func New(w io.Writer) *StepReporter {
	return &StepReporter{w: w}
}

func (r *StepReporter) writef(format string, args ...interface{}) {
	if r == nil || r.w == nil {
		return
	}
	fmt.Fprintf(r.w, format, args...)
}

// Input prints the SDF build's input settings block.
func (r *StepReporter) Input(meshName string, nVerts, nFaces int, cellSize, truncation float64) {
	r.writef("=== SDF input: %s ===\n", meshName)
	r.writef("  vertices=%d faces=%d cellSize=%.6g truncation=%.6g\n", nVerts, nFaces, cellSize, truncation)
}

// Output prints the SDF build's output grid dimensions and elapsed time.
func (r *StepReporter) Output(nx, ny, nz int, skipped int, elapsed time.Duration) {
	r.writef("=== SDF output: grid %dx%dx%d, %d degenerate triangles skipped, %s ===\n",
		nx, ny, nz, skipped, elapsed)
}

// Preprocessed prints the evolver's Preprocess summary.
func (r *StepReporter) Preprocessed(nVerts int, sigma float64) {
	if r != nil {
		r.start = time.Now()
	}
	r.writef("[evolve] preprocessed: %d vertices, stabilizing scale sigma=%.6g\n", nVerts, sigma)
}

// Step prints one per-step progress line: vertex count after any
// remeshing, and elapsed time since Preprocess.
func (r *StepReporter) Step(step, nVerts int) {
	r.writef("[evolve] step %4d: vertices=%d elapsed=%s\n", step, nVerts, r.elapsed())
}

// Failed prints the terminal failure line for a run that aborted with an
// ErrSolverFailure.
func (r *StepReporter) Failed(step int, reason string) {
	r.writef("[evolve] FAILED at step %d: %s\n", step, reason)
}

// Finished prints the terminal success line.
func (r *StepReporter) Finished(nSteps, nVerts int) {
	r.writef("[evolve] finished: %d steps, %d final vertices, total=%s\n", nSteps, nVerts, r.elapsed())
}

func (r *StepReporter) elapsed() time.Duration {
	if r == nil || r.start.IsZero() {
		return 0
	}
	return time.Since(r.start)
}
