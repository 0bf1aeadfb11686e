package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Ray is a parametrized ray with a cached inverse direction, parameter
// range, current hit parameter, and the precomputed shear constants used
// by the watertight ray-triangle test [Woop, Benthin, Wald, 2013].
type Ray struct {
	Start     r3.Vec
	Dir       r3.Vec
	InvDir    r3.Vec
	ParamMin  float64
	ParamMax  float64
	HitParam  float64

	// kx,ky,kz: axis permutation putting the dominant direction component
	// last (z); Sx,Sy,Sz: shear constants.
	Kx, Ky, Kz int
	Sx, Sy, Sz float64
}

// NewRay builds a Ray from a start point and a (not necessarily normalized)
// direction, precomputing the inverse direction and the watertight
// intersection's shear constants.
func NewRay(start, dir r3.Vec) Ray {
	n := r3.Norm(dir)
	if n > 0 {
		dir = r3.Scale(1/n, dir)
	}
	r := Ray{
		Start:    start,
		Dir:      dir,
		ParamMin: 0,
		ParamMax: math.MaxFloat64,
		HitParam: math.MaxFloat64,
	}
	r.InvDir = r3.Vec{X: safeInv(dir.X), Y: safeInv(dir.Y), Z: safeInv(dir.Z)}

	// dominant axis becomes z (Kz), per Woop/Benthin/Wald.
	ax, ay, az := math.Abs(dir.X), math.Abs(dir.Y), math.Abs(dir.Z)
	switch {
	case az >= ax && az >= ay:
		r.Kx, r.Ky, r.Kz = 0, 1, 2
	case ay >= ax && ay >= az:
		r.Kx, r.Ky, r.Kz = 2, 0, 1
	default:
		r.Kx, r.Ky, r.Kz = 1, 2, 0
	}
	if dirComponent(dir, r.Kz) < 0 {
		r.Kx, r.Ky = r.Ky, r.Kx
	}
	dz := dirComponent(dir, r.Kz)
	r.Sx = dirComponent(dir, r.Kx) / dz
	r.Sy = dirComponent(dir, r.Ky) / dz
	r.Sz = 1 / dz
	return r
}

func dirComponent(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// safeInv returns +-Inf for a zero input rather than NaN, so the slab test
// correctly treats axis-parallel rays.
func safeInv(x float64) float64 {
	if x == 0 {
		return math.Inf(1)
	}
	return 1 / x
}

// At evaluates the ray at parameter t.
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Start, r3.Scale(t, r.Dir))
}
