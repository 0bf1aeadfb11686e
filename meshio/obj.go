// Package meshio implements the mesh I/O external collaborator of
// spec.md §6: OBJ/PLY/VTK/VTI read/write. It generalizes the teacher's
// render.WriteSTL/readBinarySTL pair (render/stl.go) from a triangle-soup
// renderer source to the meshbuf.Mesh vertex/face representation the rest
// of this module operates on.
package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
)

// ReadOBJ parses positions ("v") and faces ("f") from an OBJ stream.
// Faces with more than 3 indices are triangulated by fan splitting from
// the first vertex, per spec.md §6. Normal/texture indices ("vn"/"vt" and
// the "/n/n" suffixes on face indices) are accepted but discarded — the
// core only needs vertex/triangle/half-edge access.
func ReadOBJ(r io.Reader) (*meshbuf.Mesh, error) {
	var verts []r3.Vec
	var faces [][3]int

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			v, err := parseVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("meshio: OBJ line %d: %w", lineNo, err)
			}
			verts = append(verts, v)
		case "f":
			tris, err := parseFace(fields[1:], len(verts))
			if err != nil {
				return nil, fmt.Errorf("meshio: OBJ line %d: %w", lineNo, err)
			}
			faces = append(faces, tris...)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("meshio: reading OBJ: %w", err)
	}
	if len(verts) == 0 || len(faces) == 0 {
		return nil, fmt.Errorf("meshio: OBJ stream has no usable geometry")
	}
	return meshbuf.NewMesh(verts, faces), nil
}

func parseVertex(fields []string) (r3.Vec, error) {
	if len(fields) < 3 {
		return r3.Vec{}, fmt.Errorf("vertex line needs 3 coordinates, got %d", len(fields))
	}
	coords := make([]float64, 3)
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("parsing vertex coordinate %q: %w", fields[i], err)
		}
		coords[i] = f
	}
	return r3.Vec{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

// parseFace triangulates an n-gon by fan splitting from its first vertex.
func parseFace(fields []string, nVerts int) ([][3]int, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("face line needs at least 3 indices, got %d", len(fields))
	}
	idx := make([]int, len(fields))
	for i, f := range fields {
		vi, err := parseFaceIndex(f, nVerts)
		if err != nil {
			return nil, err
		}
		idx[i] = vi
	}
	tris := make([][3]int, 0, len(idx)-2)
	for i := 1; i < len(idx)-1; i++ {
		tris = append(tris, [3]int{idx[0], idx[i], idx[i+1]})
	}
	return tris, nil
}

// parseFaceIndex accepts the "v", "v/vt", "v/vt/vn", and "v//vn" forms,
// converting OBJ's 1-based (or negative, relative-to-end) indices to a
// 0-based index into the vertex slice built so far.
func parseFaceIndex(field string, nVerts int) (int, error) {
	vPart := field
	if i := strings.IndexByte(field, '/'); i >= 0 {
		vPart = field[:i]
	}
	n, err := strconv.Atoi(vPart)
	if err != nil {
		return 0, fmt.Errorf("parsing face index %q: %w", field, err)
	}
	switch {
	case n > 0:
		return n - 1, nil
	case n < 0:
		return nVerts + n, nil
	default:
		return 0, fmt.Errorf("face index 0 is invalid in OBJ (1-based)")
	}
}

// WriteOBJ writes mesh's live (non-deleted) vertices and faces as a
// minimal OBJ stream: "v x y z" lines followed by "f a b c" lines with
// 1-based indices, in the teacher's plain-text-writer style.
func WriteOBJ(w io.Writer, mesh *meshbuf.Mesh) error {
	bw := bufio.NewWriter(w)

	// OBJ indices are 1-based and reference the file's own vertex
	// ordering, so tombstoned vertices must be skipped and remaining
	// ones remapped to a dense, written-order index.
	remap := make([]int, len(mesh.Vertices))
	next := 1
	for v, p := range mesh.Vertices {
		if mesh.IsVertexDeleted(v) {
			remap[v] = -1
			continue
		}
		remap[v] = next
		next++
		if _, err := fmt.Fprintf(bw, "v %.17g %.17g %.17g\n", p.X, p.Y, p.Z); err != nil {
			return err
		}
	}
	for fi, f := range mesh.Faces {
		if mesh.IsFaceDeleted(fi) {
			continue
		}
		a, b, c := remap[f[0]], remap[f[1]], remap[f[2]]
		if a < 0 || b < 0 || c < 0 {
			return fmt.Errorf("meshio: face %d references a deleted vertex", fi)
		}
		if _, err := fmt.Fprintf(bw, "f %d %d %d\n", a, b, c); err != nil {
			return err
		}
	}
	return bw.Flush()
}
