package grid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/internal/d3"
)

// DefaultInitValue is the "unset" sentinel used when allocating a fresh
// ScalarGrid ahead of distance-field construction.
const DefaultInitValue = 1e9

// ScalarGrid is a dense uniform lattice of float64 values over a world-space
// box, row-major with x fastest: linear = x + Nx*(y + Ny*z).
type ScalarGrid struct {
	h      float64
	box    d3.Box
	dims   Dimensions
	values []float64
	frozen []bool
}

// Field3 is satisfied by anything that can be evaluated as a signed
// distance or general scalar field and queried for its support box.
// ScalarGrid is the canonical implementation; evolve and distfield consume
// Field3 so they can accept either a built grid or an analytic stand-in
// (used by the sphere test harness).
type Field3 interface {
	Evaluate(p r3.Vec) float64
	Bounds() d3.Box
}

// NewScalarGrid allocates a grid covering box at cell size h, expanding box
// to integer multiples of h as required by the data model. Every cell is
// initialized to init.
func NewScalarGrid(h float64, box d3.Box, init float64) *ScalarGrid {
	if h <= 0 {
		panic("grid: cell size must be positive")
	}
	framed, dims := frameBox(h, box)
	n := dims.Total()
	values := make([]float64, n)
	for i := range values {
		values[i] = init
	}
	return &ScalarGrid{
		h:      h,
		box:    framed,
		dims:   dims,
		values: values,
		frozen: make([]bool, n),
	}
}

func (g *ScalarGrid) CellSize() float64      { return g.h }
func (g *ScalarGrid) Dims() Dimensions       { return g.dims }
func (g *ScalarGrid) Bounds() d3.Box         { return g.box }
func (g *ScalarGrid) Len() int               { return len(g.values) }
func (g *ScalarGrid) At(i int) float64       { return g.values[i] }
func (g *ScalarGrid) Set(i int, v float64)   { g.values[i] = v }
func (g *ScalarGrid) AtCoord(x, y, z int) float64     { return g.values[g.dims.Index(x, y, z)] }
func (g *ScalarGrid) SetCoord(x, y, z int, v float64) { g.values[g.dims.Index(x, y, z)] = v }

// Freeze marks cell i as permanently set; used by the SDF fast-sweep
// propagation to pin seed voxels.
func (g *ScalarGrid) Freeze(i int) { g.frozen[i] = true }

// IsFrozen reports whether cell i has been frozen.
func (g *ScalarGrid) IsFrozen(i int) bool { return g.frozen[i] }

// CellCenter returns the world-space position of the center of cell (x,y,z).
func (g *ScalarGrid) CellCenter(x, y, z int) r3.Vec {
	return r3.Vec{
		X: g.box.Min.X + (float64(x)+0.5)*g.h,
		Y: g.box.Min.Y + (float64(y)+0.5)*g.h,
		Z: g.box.Min.Z + (float64(z)+0.5)*g.h,
	}
}

// AddInPlace adds other to the receiver cell-by-cell. Grids must share
// dimensions.
func (g *ScalarGrid) AddInPlace(other *ScalarGrid) {
	for i := range g.values {
		g.values[i] += other.values[i]
	}
}

// ScaleInPlace multiplies every cell value by k.
func (g *ScalarGrid) ScaleInPlace(k float64) {
	for i := range g.values {
		g.values[i] *= k
	}
}

// NegateInPlace flips the sign of every cell value.
func (g *ScalarGrid) NegateInPlace() {
	for i := range g.values {
		g.values[i] = -g.values[i]
	}
}

// cellCoords locates the lower of the two cell centers bracketing p on each
// axis (values live at CellCenter positions) and the fractional offset
// between them, clamping indices to [0, N-2] so the trilinear stencil
// always has a full set of 8 neighbors.
func (g *ScalarGrid) cellCoords(p r3.Vec) (x0, y0, z0 int, tx, ty, tz float64) {
	fx := (p.X-g.box.Min.X)/g.h - 0.5
	fy := (p.Y-g.box.Min.Y)/g.h - 0.5
	fz := (p.Z-g.box.Min.Z)/g.h - 0.5

	x0 = clamp(int(math.Floor(fx)), 0, g.dims.Nx-2)
	y0 = clamp(int(math.Floor(fy)), 0, g.dims.Ny-2)
	z0 = clamp(int(math.Floor(fz)), 0, g.dims.Nz-2)

	tx = clamp01(fx - float64(x0))
	ty = clamp01(fy - float64(y0))
	tz = clamp01(fz - float64(z0))
	return
}

// SampleTrilinear evaluates the grid at an arbitrary world-space point,
// clamping out-of-box queries to the nearest cell center.
func (g *ScalarGrid) SampleTrilinear(p r3.Vec) float64 {
	x0, y0, z0, tx, ty, tz := g.cellCoords(p)
	x1, y1, z1 := x0+1, y0+1, z0+1

	c000 := g.AtCoord(x0, y0, z0)
	c100 := g.AtCoord(x1, y0, z0)
	c010 := g.AtCoord(x0, y1, z0)
	c110 := g.AtCoord(x1, y1, z0)
	c001 := g.AtCoord(x0, y0, z1)
	c101 := g.AtCoord(x1, y0, z1)
	c011 := g.AtCoord(x0, y1, z1)
	c111 := g.AtCoord(x1, y1, z1)

	c00 := lerp(c000, c100, tx)
	c10 := lerp(c010, c110, tx)
	c01 := lerp(c001, c101, tx)
	c11 := lerp(c011, c111, tx)

	c0 := lerp(c00, c10, ty)
	c1 := lerp(c01, c11, ty)
	return lerp(c0, c1, tz)
}

// Evaluate implements Field3.
func (g *ScalarGrid) Evaluate(p r3.Vec) float64 { return g.SampleTrilinear(p) }

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

