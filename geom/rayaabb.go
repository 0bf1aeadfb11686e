package geom

import (
	"math"

	"github.com/MCInversion/ImplicitSurfaceWrap/internal/d3"
)

// RayIntersectsBox is the slab test using the ray's cached inverse
// direction; axis-parallel rays are handled correctly because
// Ray.InvDir carries +-Inf rather than NaN for a zero direction component.
func RayIntersectsBox(ray Ray, box d3.Box) bool {
	tMin := ray.ParamMin
	tMax := ray.ParamMax

	tMin, tMax = slabClip(ray.Start.X, ray.InvDir.X, box.Min.X, box.Max.X, tMin, tMax)
	if tMin > tMax {
		return false
	}
	tMin, tMax = slabClip(ray.Start.Y, ray.InvDir.Y, box.Min.Y, box.Max.Y, tMin, tMax)
	if tMin > tMax {
		return false
	}
	tMin, tMax = slabClip(ray.Start.Z, ray.InvDir.Z, box.Min.Z, box.Max.Z, tMin, tMax)
	return tMin <= tMax
}

func slabClip(origin, invDir, lo, hi, tMin, tMax float64) (float64, float64) {
	t0 := (lo - origin) * invDir
	t1 := (hi - origin) * invDir
	if invDir < 0 {
		t0, t1 = t1, t0
	}
	if math.IsNaN(t0) {
		t0 = tMin
	}
	if math.IsNaN(t1) {
		t1 = tMax
	}
	if t0 > tMin {
		tMin = t0
	}
	if t1 < tMax {
		tMax = t1
	}
	return tMin, tMax
}
