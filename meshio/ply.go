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

// ReadPLY parses an ASCII PLY stream (header "element vertex N" / "element
// face M" followed by "property float x/y/z" and the corresponding data
// lines) into a meshbuf.Mesh. Binary PLY and extra per-vertex properties
// (normals, colors, texture coordinates) are out of scope — spec.md §6
// only commits to the ASCII vertex/face subset OBJ already covers.
func ReadPLY(r io.Reader) (*meshbuf.Mesh, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)

	if !sc.Scan() || strings.TrimSpace(sc.Text()) != "ply" {
		return nil, fmt.Errorf("meshio: PLY stream missing \"ply\" magic header")
	}

	var nVerts, nFaces int
	headerDone := false
	for !headerDone && sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) < 2 || fields[1] != "ascii" {
				return nil, fmt.Errorf("meshio: only ascii PLY is supported, got %q", line)
			}
		case "element":
			if len(fields) < 3 {
				return nil, fmt.Errorf("meshio: malformed element line %q", line)
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("meshio: parsing element count %q: %w", line, err)
			}
			switch fields[1] {
			case "vertex":
				nVerts = n
			case "face":
				nFaces = n
			}
		case "end_header":
			headerDone = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if nVerts == 0 {
		return nil, fmt.Errorf("meshio: PLY header declares 0 vertices")
	}

	verts := make([]r3.Vec, 0, nVerts)
	for i := 0; i < nVerts; i++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("meshio: unexpected EOF reading PLY vertex %d/%d", i, nVerts)
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			return nil, fmt.Errorf("meshio: PLY vertex line %d has fewer than 3 fields", i)
		}
		v, err := parseVertex(fields[:3])
		if err != nil {
			return nil, fmt.Errorf("meshio: PLY vertex %d: %w", i, err)
		}
		verts = append(verts, v)
	}

	var faces [][3]int
	for i := 0; i < nFaces; i++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("meshio: unexpected EOF reading PLY face %d/%d", i, nFaces)
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 1 {
			continue
		}
		count, err := strconv.Atoi(fields[0])
		if err != nil || len(fields) < 1+count || count < 3 {
			return nil, fmt.Errorf("meshio: malformed PLY face line %d: %q", i, sc.Text())
		}
		idx := make([]int, count)
		for j := 0; j < count; j++ {
			vi, err := strconv.Atoi(fields[1+j])
			if err != nil {
				return nil, fmt.Errorf("meshio: PLY face %d index %d: %w", i, j, err)
			}
			idx[j] = vi
		}
		for j := 1; j < count-1; j++ {
			faces = append(faces, [3]int{idx[0], idx[j], idx[j+1]})
		}
	}
	if len(faces) == 0 {
		return nil, fmt.Errorf("meshio: PLY stream has no usable faces")
	}
	return meshbuf.NewMesh(verts, faces), nil
}

// WritePLY writes mesh as an ASCII PLY stream with a minimal vertex/face
// element header, mirroring WriteOBJ's tombstone-aware index remapping.
func WritePLY(w io.Writer, mesh *meshbuf.Mesh) error {
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

	fmt.Fprintln(bw, "ply")
	fmt.Fprintln(bw, "format ascii 1.0")
	fmt.Fprintf(bw, "element vertex %d\n", len(liveVerts))
	fmt.Fprintln(bw, "property float x")
	fmt.Fprintln(bw, "property float y")
	fmt.Fprintln(bw, "property float z")
	fmt.Fprintf(bw, "element face %d\n", len(liveFaces))
	fmt.Fprintln(bw, "property list uchar int vertex_indices")
	fmt.Fprintln(bw, "end_header")
	for _, p := range liveVerts {
		if _, err := fmt.Fprintf(bw, "%.17g %.17g %.17g\n", p.X, p.Y, p.Z); err != nil {
			return err
		}
	}
	for _, f := range liveFaces {
		if _, err := fmt.Fprintf(bw, "3 %d %d %d\n", f[0], f[1], f[2]); err != nil {
			return err
		}
	}
	return bw.Flush()
}
