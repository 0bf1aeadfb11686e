// Package grid implements the uniform 3D scalar/vector lattices that back
// distance-field construction and field sampling during surface evolution.
package grid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/internal/d3"
)

// Dimensions holds the voxel extents of a grid along each axis.
type Dimensions struct {
	Nx, Ny, Nz int
}

// Total returns Nx*Ny*Nz, the number of cells in the grid.
func (d Dimensions) Total() int { return d.Nx * d.Ny * d.Nz }

// Index computes the row-major linear index (x fastest) of a cell.
func (d Dimensions) Index(x, y, z int) int {
	return x + d.Nx*(y+d.Ny*z)
}

// Contains reports whether (x,y,z) lies within [0,Nx)x[0,Ny)x[0,Nz).
func (d Dimensions) Contains(x, y, z int) bool {
	return x >= 0 && x < d.Nx && y >= 0 && y < d.Ny && z >= 0 && z < d.Nz
}

// frameBox expands box so that box.Min/box.Max land on integer multiples of
// h along every axis, per the grid construction contract: nMinus =
// floor(B.min/h), nPlus = ceil(B.max/h).
func frameBox(h float64, box d3.Box) (d3.Box, Dimensions) {
	nMinusX := math.Floor(box.Min.X / h)
	nMinusY := math.Floor(box.Min.Y / h)
	nMinusZ := math.Floor(box.Min.Z / h)
	nPlusX := math.Ceil(box.Max.X / h)
	nPlusY := math.Ceil(box.Max.Y / h)
	nPlusZ := math.Ceil(box.Max.Z / h)

	framed := d3.Box{
		Min: r3.Vec{X: nMinusX * h, Y: nMinusY * h, Z: nMinusZ * h},
		Max: r3.Vec{X: nPlusX * h, Y: nPlusY * h, Z: nPlusZ * h},
	}
	dims := Dimensions{
		Nx: int(nPlusX - nMinusX),
		Ny: int(nPlusY - nMinusY),
		Nz: int(nPlusZ - nMinusZ),
	}
	return framed, dims
}

// ExpandByFactor expands box on all sides by factor times the box's minimum
// extent, matching the SDF builder's "Frame" step.
func ExpandByFactor(box d3.Box, factor float64) d3.Box {
	size := box.Size()
	minExtent := math.Min(size.X, math.Min(size.Y, size.Z))
	pad := factor * minExtent
	return box.Enlarge(d3.Elem(2 * pad))
}
