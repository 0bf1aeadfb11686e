package distfield

import "github.com/MCInversion/ImplicitSurfaceWrap/grid"

// boxBlur convolves g with a (2*radius+1)^3 box kernel, out-of-range
// samples clamping to the nearest in-range cell (matching SampleTrilinear's
// clamping convention).
func boxBlur(g *grid.ScalarGrid, radius int) {
	dims := g.Dims()
	n := dims.Total()
	src := make([]float64, n)
	for i := 0; i < n; i++ {
		src[i] = g.At(i)
	}

	get := func(x, y, z int) float64 {
		x = clampAxis(x, dims.Nx)
		y = clampAxis(y, dims.Ny)
		z = clampAxis(z, dims.Nz)
		return src[dims.Index(x, y, z)]
	}

	for z := 0; z < dims.Nz; z++ {
		for y := 0; y < dims.Ny; y++ {
			for x := 0; x < dims.Nx; x++ {
				var sum float64
				count := 0
				for dz := -radius; dz <= radius; dz++ {
					for dy := -radius; dy <= radius; dy++ {
						for dx := -radius; dx <= radius; dx++ {
							sum += get(x+dx, y+dy, z+dz)
							count++
						}
					}
				}
				g.Set(dims.Index(x, y, z), sum/float64(count))
			}
		}
	}
}

func clampAxis(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

func applyBlur(g *grid.ScalarGrid, mode BlurMode) {
	switch mode {
	case Blur3Cube:
		boxBlur(g, 1)
	case Blur5Cube:
		boxBlur(g, 2)
	}
}
