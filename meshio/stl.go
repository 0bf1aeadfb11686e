package meshio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
)

// stlHeader and stlTriangle mirror the teacher's render.stlHeader and
// render.stlTriangle (render/stl.go) — the 80-byte-padded header plus
// 50-byte little-endian triangle record defined by the binary STL format.
type stlHeader struct {
	_     [80]uint8
	Count uint32
}

type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16
}

// WriteSTL writes mesh's live faces as binary STL, grounded in
// render.WriteSTL's per-triangle record layout adapted from a Triangle3
// renderer source to a meshbuf.Mesh's vertex/face-index representation.
func WriteSTL(w io.Writer, mesh *meshbuf.Mesh) error {
	nt := mesh.NumFaces()
	if nt == 0 {
		return errors.New("meshio: WriteSTL: mesh has no live faces")
	}
	header := stlHeader{Count: uint32(nt)}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	var d stlTriangle
	var b [50]byte
	for fi := range mesh.Faces {
		if mesh.IsFaceDeleted(fi) {
			continue
		}
		tri := mesh.FaceVertices(fi)
		n := r3.Unit(r3.Cross(tri[1].Sub(tri[0]), tri[2].Sub(tri[0])))
		d.Normal = [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
		d.Vertex1 = vecToF32(tri[0])
		d.Vertex2 = vecToF32(tri[1])
		d.Vertex3 = vecToF32(tri[2])
		d.put(b[:])
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	return nil
}

// ReadSTL parses a binary STL stream into a meshbuf.Mesh, welding the
// 3*triangleCount duplicated vertices STL's format produces into a shared
// vertex pool by exact-coordinate matching, the way an importer feeding a
// half-edge structure must (STL carries no vertex-sharing information of
// its own). Malformed or degenerate triangles are rejected the way
// render/stl.go's readBinarySTL validates them, short of its
// normal-mismatch tolerance bookkeeping which has no analog once the
// input is purely being turned into topology rather than re-rendered.
func ReadSTL(r io.Reader) (*meshbuf.Mesh, error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("meshio: STL header read failed: %w", err)
	}
	if header.Count == 0 {
		return nil, errors.New("meshio: STL header indicates 0 triangles")
	}

	type vkey [3]float64
	index := make(map[vkey]int)
	var verts []r3.Vec
	faces := make([][3]int, 0, header.Count)

	lookup := func(v r3.Vec) int {
		k := vkey{v.X, v.Y, v.Z}
		if i, ok := index[k]; ok {
			return i
		}
		i := len(verts)
		verts = append(verts, v)
		index[k] = i
		return i
	}

	var buf [50]byte
	var d stlTriangle
	for i := 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("meshio: STL triangle %d/%d: %w", i+1, header.Count, err)
		}
		d.get(buf[:])
		if bad3F32(d.Vertex1) || bad3F32(d.Vertex2) || bad3F32(d.Vertex3) {
			return nil, fmt.Errorf("meshio: STL triangle %d has inf/NaN vertex", i)
		}
		a := lookup(f32ToVec(d.Vertex1))
		b := lookup(f32ToVec(d.Vertex2))
		c := lookup(f32ToVec(d.Vertex3))
		if a == b || b == c || c == a {
			continue // degenerate triangle, dropped rather than rejecting the whole file
		}
		faces = append(faces, [3]int{a, b, c})
	}
	if len(faces) == 0 {
		return nil, errors.New("meshio: STL stream has no usable geometry")
	}
	return meshbuf.NewMesh(verts, faces), nil
}

func vecToF32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func f32ToVec(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

func (t stlTriangle) put(b []byte) {
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (t *stlTriangle) get(b []byte) {
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11]
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11]
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}
