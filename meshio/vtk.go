package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/grid"
	"github.com/MCInversion/ImplicitSurfaceWrap/internal/d3"
	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
)

// WriteVTKGrid writes g as a legacy VTK STRUCTURED_POINTS file with a
// single scalar POINT_DATA array, for callers that want a ParaView-openable
// grid without the XML overhead of VTI.
func WriteVTKGrid(w io.Writer, g *grid.ScalarGrid) error {
	bw := bufio.NewWriter(w)
	dims := g.Dims()
	box := g.Bounds()
	h := g.CellSize()

	fmt.Fprintln(bw, "# vtk DataFile Version 3.0")
	fmt.Fprintln(bw, "scalar distance field")
	fmt.Fprintln(bw, "ASCII")
	fmt.Fprintln(bw, "DATASET STRUCTURED_POINTS")
	fmt.Fprintf(bw, "DIMENSIONS %d %d %d\n", dims.Nx, dims.Ny, dims.Nz)
	fmt.Fprintf(bw, "ORIGIN %.17g %.17g %.17g\n", box.Min.X, box.Min.Y, box.Min.Z)
	fmt.Fprintf(bw, "SPACING %.17g %.17g %.17g\n", h, h, h)
	fmt.Fprintf(bw, "POINT_DATA %d\n", g.Len())
	fmt.Fprintln(bw, "SCALARS distance double 1")
	fmt.Fprintln(bw, "LOOKUP_TABLE default")
	for i := 0; i < g.Len(); i++ {
		if _, err := fmt.Fprintf(bw, "%.17g\n", g.At(i)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadVTKGrid parses a legacy VTK STRUCTURED_POINTS scalar file written by
// WriteVTKGrid back into a grid.ScalarGrid.
func ReadVTKGrid(r io.Reader) (*grid.ScalarGrid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)

	var nx, ny, nz int
	var origin, spacing r3.Vec
	var nPoints int
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch strings.ToUpper(fields[0]) {
		case "DIMENSIONS":
			if len(fields) != 4 {
				return nil, fmt.Errorf("meshio: malformed DIMENSIONS line %q", line)
			}
			nx, _ = strconv.Atoi(fields[1])
			ny, _ = strconv.Atoi(fields[2])
			nz, _ = strconv.Atoi(fields[3])
		case "ORIGIN":
			v, err := parseVec3(strings.Join(fields[1:], " "))
			if err != nil {
				return nil, err
			}
			origin = v
		case "SPACING":
			v, err := parseVec3(strings.Join(fields[1:], " "))
			if err != nil {
				return nil, err
			}
			spacing = v
		case "POINT_DATA":
			nPoints, _ = strconv.Atoi(fields[1])
		case "LOOKUP_TABLE":
			goto readValues
		}
	}
readValues:
	if nx == 0 || ny == 0 || nz == 0 {
		return nil, fmt.Errorf("meshio: VTK stream missing DIMENSIONS")
	}
	n := nx * ny * nz
	if nPoints != 0 && nPoints != n {
		return nil, fmt.Errorf("meshio: VTK POINT_DATA count %d does not match DIMENSIONS product %d", nPoints, n)
	}
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("meshio: unexpected EOF reading VTK scalar %d/%d", i, n)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(sc.Text()), 64)
		if err != nil {
			return nil, fmt.Errorf("meshio: parsing VTK scalar %d: %w", i, err)
		}
		values[i] = v
	}
	if spacing.X <= 0 {
		return nil, fmt.Errorf("meshio: VTK spacing must be positive, got %v", spacing)
	}
	h := spacing.X
	box := d3.Box{
		Min: origin,
		Max: r3.Add(origin, r3.Vec{X: float64(nx) * h, Y: float64(ny) * h, Z: float64(nz) * h}),
	}
	g := grid.NewScalarGrid(h, box, grid.DefaultInitValue)
	for i, v := range values {
		g.Set(i, v)
	}
	return g, nil
}

// WriteVTKMesh writes mesh as a legacy VTK POLYDATA file (POINTS +
// POLYGONS), the mesh-export counterpart of WriteVTKGrid.
func WriteVTKMesh(w io.Writer, mesh *meshbuf.Mesh) error {
	bw := bufio.NewWriter(w)

	remap := make([]int, len(mesh.Vertices))
	liveVerts := make([]r3.Vec, 0, len(mesh.Vertices))
	for v, p := range mesh.Vertices {
		if mesh.IsVertexDeleted(v) {
			remap[v] = -1
			continue
		}
		remap[v] = len(liveVerts)
		liveVerts = append(liveVerts, p)
	}
	liveFaces := make([][3]int, 0, len(mesh.Faces))
	for fi, f := range mesh.Faces {
		if mesh.IsFaceDeleted(fi) {
			continue
		}
		a, b, c := remap[f[0]], remap[f[1]], remap[f[2]]
		if a < 0 || b < 0 || c < 0 {
			return fmt.Errorf("meshio: face %d references a deleted vertex", fi)
		}
		liveFaces = append(liveFaces, [3]int{a, b, c})
	}

	fmt.Fprintln(bw, "# vtk DataFile Version 3.0")
	fmt.Fprintln(bw, "surface mesh")
	fmt.Fprintln(bw, "ASCII")
	fmt.Fprintln(bw, "DATASET POLYDATA")
	fmt.Fprintf(bw, "POINTS %d double\n", len(liveVerts))
	for _, p := range liveVerts {
		if _, err := fmt.Fprintf(bw, "%.17g %.17g %.17g\n", p.X, p.Y, p.Z); err != nil {
			return err
		}
	}
	fmt.Fprintf(bw, "POLYGONS %d %d\n", len(liveFaces), 4*len(liveFaces))
	for _, f := range liveFaces {
		if _, err := fmt.Fprintf(bw, "3 %d %d %d\n", f[0], f[1], f[2]); err != nil {
			return err
		}
	}
	return bw.Flush()
}
