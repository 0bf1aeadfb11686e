package d3

import "gonum.org/v1/gonum/spatial/r3"

type r3Triangle [3]r3.Vec

// Closest returns closest point on the triangle to argument point p.
func (t r3Triangle) Closest(p r3.Vec) r3.Vec {
	// Calculate transformation matrix so that
	return r3.Vec{}
}
