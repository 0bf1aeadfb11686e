package grid

import "gonum.org/v1/gonum/spatial/r3"

// Gradient computes the central-difference gradient of g, using one-sided
// differences at the box boundary, with cell spacing h in every axis.
func Gradient(g *ScalarGrid) *VectorGrid {
	out := NewVectorGrid(g)
	dims := g.dims
	invH2 := 1 / (2 * g.h)
	invH := 1 / g.h

	for z := 0; z < dims.Nz; z++ {
		for y := 0; y < dims.Ny; y++ {
			for x := 0; x < dims.Nx; x++ {
				var dx, dy, dz float64
				switch {
				case dims.Nx == 1:
					dx = 0
				case x == 0:
					dx = (g.AtCoord(1, y, z) - g.AtCoord(0, y, z)) * invH
				case x == dims.Nx-1:
					dx = (g.AtCoord(x, y, z) - g.AtCoord(x-1, y, z)) * invH
				default:
					dx = (g.AtCoord(x+1, y, z) - g.AtCoord(x-1, y, z)) * invH2
				}
				switch {
				case dims.Ny == 1:
					dy = 0
				case y == 0:
					dy = (g.AtCoord(x, 1, z) - g.AtCoord(x, 0, z)) * invH
				case y == dims.Ny-1:
					dy = (g.AtCoord(x, y, z) - g.AtCoord(x, y-1, z)) * invH
				default:
					dy = (g.AtCoord(x, y+1, z) - g.AtCoord(x, y-1, z)) * invH2
				}
				switch {
				case dims.Nz == 1:
					dz = 0
				case z == 0:
					dz = (g.AtCoord(x, y, 1) - g.AtCoord(x, y, 0)) * invH
				case z == dims.Nz-1:
					dz = (g.AtCoord(x, y, z) - g.AtCoord(x, y, z-1)) * invH
				default:
					dz = (g.AtCoord(x, y, z+1) - g.AtCoord(x, y, z-1)) * invH2
				}
				out.Set(dims.Index(x, y, z), r3.Vec{X: dx, Y: dy, Z: dz})
			}
		}
	}
	return out
}
