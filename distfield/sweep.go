package distfield

import (
	"github.com/MCInversion/ImplicitSurfaceWrap/grid"
)

// fastSweep propagates distances from the frozen narrow-band seed voxels
// across the whole grid (spec.md §4.4 step 4): repeatedly sweep in all 8
// diagonal orderings, relaxing each cell to the minimum of its current
// value and (axis-neighbor + h) over the three axis neighbors, until no
// cell improves. Voxels farther than truncation keep the value
// truncation rather than being relaxed past it.
func fastSweep(g *grid.ScalarGrid, truncation float64) {
	dims := g.Dims()
	h := g.CellSize()

	for i := 0; i < dims.Total(); i++ {
		if g.At(i) > truncation {
			g.Set(i, truncation)
		}
	}

	orderings := sweepOrderings(dims)
	for {
		changed := false
		for _, ord := range orderings {
			if sweepOnce(g, dims, h, ord) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	// Sweeping can relax unfrozen cells below the initial truncation clip
	// (chasing the true distance through chained hops); clamp back so the
	// |sdf| <= truncation + O(h) contract holds and the plateau stays a
	// clean signal for the flood-fill sign pass.
	for i := 0; i < dims.Total(); i++ {
		if g.At(i) > truncation {
			g.Set(i, truncation)
		}
	}
}

type axisRange struct {
	start, end, step int
}

func sweepOnce(g *grid.ScalarGrid, dims grid.Dimensions, h float64, ord [3]axisRange) bool {
	changed := false
	for z := ord[2].start; z != ord[2].end; z += ord[2].step {
		for y := ord[1].start; y != ord[1].end; y += ord[1].step {
			for x := ord[0].start; x != ord[0].end; x += ord[0].step {
				if relaxCell(g, dims, h, x, y, z) {
					changed = true
				}
			}
		}
	}
	return changed
}

func relaxCell(g *grid.ScalarGrid, dims grid.Dimensions, h float64, x, y, z int) bool {
	idx := dims.Index(x, y, z)
	if g.IsFrozen(idx) {
		return false
	}
	best := g.At(idx)
	improved := false
	tryNeighbor := func(nx, ny, nz int) {
		if !dims.Contains(nx, ny, nz) {
			return
		}
		cand := g.At(dims.Index(nx, ny, nz)) + h
		if cand < best {
			best = cand
			improved = true
		}
	}
	tryNeighbor(x-1, y, z)
	tryNeighbor(x+1, y, z)
	tryNeighbor(x, y-1, z)
	tryNeighbor(x, y+1, z)
	tryNeighbor(x, y, z-1)
	tryNeighbor(x, y, z+1)
	if improved {
		g.Set(idx, best)
	}
	return improved
}

// sweepOrderings returns the 8 octant traversal orders (forward/backward
// on each of x,y,z), the standard fast-sweeping-method sweep set.
func sweepOrderings(dims grid.Dimensions) [][3]axisRange {
	fwd := func(n int) axisRange { return axisRange{0, n, 1} }
	bwd := func(n int) axisRange { return axisRange{n - 1, -1, -1} }

	xs := [2]axisRange{fwd(dims.Nx), bwd(dims.Nx)}
	ys := [2]axisRange{fwd(dims.Ny), bwd(dims.Ny)}
	zs := [2]axisRange{fwd(dims.Nz), bwd(dims.Nz)}

	var out [][3]axisRange
	for _, zr := range zs {
		for _, yr := range ys {
			for _, xr := range xs {
				out = append(out, [3]axisRange{xr, yr, zr})
			}
		}
	}
	return out
}
