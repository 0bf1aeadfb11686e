package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// RayIntersectsTriangleWatertight implements the watertight ray-triangle
// test of [Woop, Benthin, Wald, 2013]: permute axes so the dominant
// direction component is z, shear the triangle into ray space, and
// evaluate the edge functions U,V,W without division until the final hit
// parameter, avoiding the cracks classic Moller-Trumbore can show at
// shared edges. Returns true, and sets ray.HitParam to the hit parameter,
// only for a hit with ParamMin <= t <= min(ParamMax, HitParam); a hit
// farther than the current HitParam returns false.
func RayIntersectsTriangleWatertight(ray *Ray, tri Triangle3) bool {
	a := r3.Sub(tri[0], ray.Start)
	b := r3.Sub(tri[1], ray.Start)
	c := r3.Sub(tri[2], ray.Start)

	ax, ay, az := permute(a, ray.Kx, ray.Ky, ray.Kz)
	bx, by, bz := permute(b, ray.Kx, ray.Ky, ray.Kz)
	cx, cy, cz := permute(c, ray.Kx, ray.Ky, ray.Kz)

	ax -= ray.Sx * az
	ay -= ray.Sy * az
	bx -= ray.Sx * bz
	by -= ray.Sy * bz
	cx -= ray.Sx * cz
	cy -= ray.Sy * cz

	u := cx*by - cy*bx
	v := ax*cy - ay*cx
	w := bx*ay - by*ax

	if u < 0 || v < 0 || w < 0 {
		if u > 0 || v > 0 || w > 0 {
			return false
		}
	}
	det := u + v + w
	if det == 0 {
		return false
	}

	az *= ray.Sz
	bz *= ray.Sz
	cz *= ray.Sz
	tScaled := u*az + v*bz + w*cz

	if det < 0 {
		if tScaled > 0 || tScaled < ray.ParamMax*det {
			return false
		}
	} else {
		if tScaled < 0 || tScaled > ray.ParamMax*det {
			return false
		}
	}

	invDet := 1 / det
	t := tScaled * invDet
	if t < ray.ParamMin || t > ray.HitParam {
		return false
	}
	ray.HitParam = t
	return true
}

func permute(v r3.Vec, kx, ky, kz int) (x, y, z float64) {
	return component(v, kx), component(v, ky), component(v, kz)
}

func component(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// RayIntersectsTriangle is the classic [Moller, Trumbore, 1997] test,
// kept alongside the watertight variant for cross-checking and for
// callers that don't need watertight guarantees at shared edges.
func RayIntersectsTriangle(ray *Ray, tri Triangle3) bool {
	const eps = 1e-12
	e1 := r3.Sub(tri[1], tri[0])
	e2 := r3.Sub(tri[2], tri[0])
	p := r3.Cross(ray.Dir, e2)
	det := r3.Dot(e1, p)
	if math.Abs(det) < eps {
		return false
	}
	invDet := 1 / det
	tvec := r3.Sub(ray.Start, tri[0])
	u := r3.Dot(tvec, p) * invDet
	if u < 0 || u > 1 {
		return false
	}
	q := r3.Cross(tvec, e1)
	v := r3.Dot(ray.Dir, q) * invDet
	if v < 0 || u+v > 1 {
		return false
	}
	t := r3.Dot(e2, q) * invDet
	if t < ray.ParamMin || t > ray.HitParam {
		return false
	}
	ray.HitParam = t
	return true
}
