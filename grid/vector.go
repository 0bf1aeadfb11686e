package grid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/internal/d3"
)

// VectorGrid holds three scalar-grid-shaped component buffers sharing the
// dimensions and box of a source ScalarGrid.
type VectorGrid struct {
	h        float64
	box      d3.Box
	dims     Dimensions
	x, y, z  []float64
}

// NewVectorGrid allocates a VectorGrid with the same shape as ref, every
// component initialized to zero.
func NewVectorGrid(ref *ScalarGrid) *VectorGrid {
	n := ref.Len()
	return &VectorGrid{
		h:    ref.h,
		box:  ref.box,
		dims: ref.dims,
		x:    make([]float64, n),
		y:    make([]float64, n),
		z:    make([]float64, n),
	}
}

func (v *VectorGrid) Dims() Dimensions { return v.dims }
func (v *VectorGrid) Bounds() d3.Box   { return v.box }
func (v *VectorGrid) CellSize() float64 { return v.h }

func (v *VectorGrid) At(i int) r3.Vec {
	return r3.Vec{X: v.x[i], Y: v.y[i], Z: v.z[i]}
}

func (v *VectorGrid) Set(i int, val r3.Vec) {
	v.x[i] = val.X
	v.y[i] = val.Y
	v.z[i] = val.Z
}

func (v *VectorGrid) AtCoord(cx, cy, cz int) r3.Vec {
	return v.At(v.dims.Index(cx, cy, cz))
}

func (v *VectorGrid) sampleComponent(comp []float64, p r3.Vec) float64 {
	x0, y0, z0, tx, ty, tz := sampleCoords(v.h, v.box, v.dims, p)
	x1, y1, z1 := x0+1, y0+1, z0+1
	idx := v.dims.Index

	c00 := lerp(comp[idx(x0, y0, z0)], comp[idx(x1, y0, z0)], tx)
	c10 := lerp(comp[idx(x0, y1, z0)], comp[idx(x1, y1, z0)], tx)
	c01 := lerp(comp[idx(x0, y0, z1)], comp[idx(x1, y0, z1)], tx)
	c11 := lerp(comp[idx(x0, y1, z1)], comp[idx(x1, y1, z1)], tx)

	c0 := lerp(c00, c10, ty)
	c1 := lerp(c01, c11, ty)
	return lerp(c0, c1, tz)
}

// SampleTrilinear evaluates the vector field at p, component-wise.
func (v *VectorGrid) SampleTrilinear(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: v.sampleComponent(v.x, p),
		Y: v.sampleComponent(v.y, p),
		Z: v.sampleComponent(v.z, p),
	}
}

// sampleCoords is the shared cell-location logic behind ScalarGrid and
// VectorGrid trilinear sampling; values live at cell centers.
func sampleCoords(h float64, box d3.Box, dims Dimensions, p r3.Vec) (x0, y0, z0 int, tx, ty, tz float64) {
	fx := (p.X-box.Min.X)/h - 0.5
	fy := (p.Y-box.Min.Y)/h - 0.5
	fz := (p.Z-box.Min.Z)/h - 0.5

	x0 = clamp(int(math.Floor(fx)), 0, dims.Nx-2)
	y0 = clamp(int(math.Floor(fy)), 0, dims.Ny-2)
	z0 = clamp(int(math.Floor(fz)), 0, dims.Nz-2)

	tx = clamp01(fx - float64(x0))
	ty = clamp01(fy - float64(y0))
	tz = clamp01(fz - float64(z0))
	return
}

// Normalize returns a new VectorGrid with every vector normalized to unit
// length; zero-length vectors map to the zero vector, never NaN.
func (v *VectorGrid) Normalize() *VectorGrid {
	out := &VectorGrid{h: v.h, box: v.box, dims: v.dims,
		x: make([]float64, len(v.x)), y: make([]float64, len(v.y)), z: make([]float64, len(v.z))}
	for i := range v.x {
		vec := r3.Vec{X: v.x[i], Y: v.y[i], Z: v.z[i]}
		n := r3.Norm(vec)
		if n > 0 {
			vec = r3.Scale(1/n, vec)
		}
		out.x[i], out.y[i], out.z[i] = vec.X, vec.Y, vec.Z
	}
	return out
}

// NegatedNormalize returns Normalize() with every component sign-flipped;
// this is the advection direction consumed by the surface evolver.
func (v *VectorGrid) NegatedNormalize() *VectorGrid {
	n := v.Normalize()
	for i := range n.x {
		n.x[i], n.y[i], n.z[i] = -n.x[i], -n.y[i], -n.z[i]
	}
	return n
}
