package distfield

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/geom"
	"github.com/MCInversion/ImplicitSurfaceWrap/grid"
	"github.com/MCInversion/ImplicitSurfaceWrap/internal/d3"
	"github.com/MCInversion/ImplicitSurfaceWrap/kdtree"
)

// seedNarrowBand implements spec.md §4.4 step 3: for every voxel whose
// cell center is within truncation of some triangle, write the exact
// (unsigned) distance and freeze the cell.
func seedNarrowBand(g *grid.ScalarGrid, verts []r3.Vec, faces [][3]int, set Settings) {
	switch set.Preprocessing {
	case PreprocessOctree:
		seedViaRtree(g, verts, faces, set.TruncationValue)
	default:
		seedViaKDTree(g, verts, faces, set.TruncationValue)
	}
}

// seedViaKDTree builds a TriangleKdTree over the triangle soup and, for
// every voxel, queries the nearest triangle directly — the "NoOctree"
// preprocessing mode.
func seedViaKDTree(g *grid.ScalarGrid, verts []r3.Vec, faces [][3]int, truncation float64) {
	if len(faces) == 0 {
		return
	}
	tree := kdtree.Build(verts, faces, kdtree.Midpoint)

	dims := g.Dims()
	for z := 0; z < dims.Nz; z++ {
		for y := 0; y < dims.Ny; y++ {
			for x := 0; x < dims.Nx; x++ {
				center := g.CellCenter(x, y, z)
				_, distSq := tree.Nearest(center)
				dist := math.Sqrt(distSq)
				if dist <= truncation {
					idx := dims.Index(x, y, z)
					g.Set(idx, dist)
					g.Freeze(idx)
				}
			}
		}
	}
}

// seedViaRtree builds an R-tree over per-triangle AABBs — the idiomatic
// Go stand-in for the spec's octree, each node's bounding query playing
// the role of "the set of faces overlapping it" — and for every voxel
// queries the candidates overlapping its truncation-expanded cell box,
// exact-testing each with geom.PointTriangleDistSq. This is the "Octree"
// preprocessing mode.
func seedViaRtree(g *grid.ScalarGrid, verts []r3.Vec, faces [][3]int, truncation float64) {
	if len(faces) == 0 {
		return
	}
	tree := rtreego.NewTree(3, 4, 16)
	for i, f := range faces {
		tri := triangleAt(verts, f)
		tree.Insert(triSpatial{idx: i, tri: tri})
	}

	dims := g.Dims()
	h := g.CellSize()
	pad := truncation + h
	for z := 0; z < dims.Nz; z++ {
		for y := 0; y < dims.Ny; y++ {
			for x := 0; x < dims.Nx; x++ {
				center := g.CellCenter(x, y, z)
				rect := queryRect(center, pad)
				candidates := tree.SearchIntersect(rect)
				if len(candidates) == 0 {
					continue
				}
				best := math.MaxFloat64
				for _, c := range candidates {
					tri := c.(triSpatial).tri
					d2, _, _ := geom.PointTriangleDistSq(center, tri)
					if d2 < best {
						best = d2
					}
				}
				dist := math.Sqrt(best)
				if dist <= truncation {
					idx := dims.Index(x, y, z)
					g.Set(idx, dist)
					g.Freeze(idx)
				}
			}
		}
	}
}

// triSpatial adapts a triangle into rtreego.Spatial.
type triSpatial struct {
	idx int
	tri geom.Triangle3
}

func (t triSpatial) Bounds() *rtreego.Rect {
	return boxToRect(t.tri.Bounds(), 0)
}

func queryRect(center r3.Vec, pad float64) *rtreego.Rect {
	box := d3.Box{
		Min: r3.Vec{X: center.X - pad, Y: center.Y - pad, Z: center.Z - pad},
		Max: r3.Vec{X: center.X + pad, Y: center.Y + pad, Z: center.Z + pad},
	}
	return boxToRect(box, 0)
}

// boxToRect converts a d3.Box to an rtreego.Rect, inflating by margin on
// every axis so degenerate (zero-extent) triangle boxes still form a
// valid rectangle as rtreego.NewRect requires strictly positive lengths.
func boxToRect(box d3.Box, margin float64) *rtreego.Rect {
	const minExtent = 1e-9
	size := box.Size()
	lengths := []float64{
		math.Max(size.X+2*margin, minExtent),
		math.Max(size.Y+2*margin, minExtent),
		math.Max(size.Z+2*margin, minExtent),
	}
	p := rtreego.Point{box.Min.X - margin, box.Min.Y - margin, box.Min.Z - margin}
	rect, err := rtreego.NewRect(p, lengths)
	if err != nil {
		// Only reachable if lengths are non-positive, which minExtent rules
		// out; kept as a hard failure rather than silently continuing with
		// a malformed index.
		panic("distfield: invalid rtree rect: " + err.Error())
	}
	return rect
}
