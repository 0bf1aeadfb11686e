package meshio

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/grid"
	"github.com/MCInversion/ImplicitSurfaceWrap/internal/d3"
)

// vtiImageData mirrors the subset of VTK's .vti XML schema this module
// reads/writes: a single-piece ImageData with one PointData scalar array,
// either as whitespace-separated ASCII floats or base64-encoded raw
// float64s (VTK's "binary" appended-data convention, without the zlib
// compression header VTK itself supports — spec.md §6 only commits to
// ASCII+base64, not compressed payloads).
type vtiImageData struct {
	XMLName xml.Name `xml:"VTKFile"`
	Image   vtiPiece `xml:"ImageData"`
}

type vtiPiece struct {
	WholeExtent string     `xml:"WholeExtent,attr"`
	Origin      string     `xml:"Origin,attr"`
	Spacing     string     `xml:"Spacing,attr"`
	Piece       vtiXMLData `xml:"Piece"`
}

type vtiXMLData struct {
	Extent    string       `xml:"Extent,attr"`
	PointData vtiPointData `xml:"PointData"`
}

type vtiPointData struct {
	Array vtiArray `xml:"DataArray"`
}

type vtiArray struct {
	Name    string `xml:"Name,attr"`
	Format  string `xml:"format,attr"` // "ascii" or "binary"
	Content string `xml:",chardata"`
}

// WriteVTI serializes grid as a VTK ImageData (.vti) scalar field, the
// distance-field export counterpart spec.md §6 lists alongside OBJ/PLY/VTK
// mesh I/O. ascii selects the human-readable DataArray encoding; otherwise
// values are written as base64 raw float64 (VTK's "binary" format without
// the appended compression header).
func WriteVTI(w io.Writer, g *grid.ScalarGrid, ascii bool) error {
	dims := g.Dims()
	box := g.Bounds()
	h := g.CellSize()

	format := "binary"
	var content string
	if ascii {
		format = "ascii"
		var sb strings.Builder
		for i := 0; i < g.Len(); i++ {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.FormatFloat(g.At(i), 'g', 17, 64))
		}
		content = sb.String()
	} else {
		buf := make([]byte, 8*g.Len())
		for i := 0; i < g.Len(); i++ {
			binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(g.At(i)))
		}
		content = base64.StdEncoding.EncodeToString(buf)
	}

	doc := vtiImageData{
		Image: vtiPiece{
			WholeExtent: extentString(dims),
			Origin:      fmt.Sprintf("%.17g %.17g %.17g", box.Min.X, box.Min.Y, box.Min.Z),
			Spacing:     fmt.Sprintf("%.17g %.17g %.17g", h, h, h),
			Piece: vtiXMLData{
				Extent: extentString(dims),
				PointData: vtiPointData{Array: vtiArray{
					Name:    "distance",
					Format:  format,
					Content: content,
				}},
			},
		},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Flush()
}

func extentString(d grid.Dimensions) string {
	return fmt.Sprintf("0 %d 0 %d 0 %d", d.Nx-1, d.Ny-1, d.Nz-1)
}

// ReadVTI parses a VTI ImageData stream written by WriteVTI (or any
// VTK writer producing the same single-piece, single-scalar-array shape)
// back into a grid.ScalarGrid.
func ReadVTI(r io.Reader) (*grid.ScalarGrid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var doc vtiImageData
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("meshio: parsing VTI: %w", err)
	}

	nx, ny, nz, err := parseExtent(doc.Image.Piece.Extent)
	if err != nil {
		return nil, err
	}
	origin, err := parseVec3(doc.Image.Origin)
	if err != nil {
		return nil, err
	}
	spacing, err := parseVec3(doc.Image.Spacing)
	if err != nil {
		return nil, err
	}
	if spacing.X <= 0 {
		return nil, fmt.Errorf("meshio: VTI spacing must be positive, got %v", spacing)
	}
	h := spacing.X

	n := nx * ny * nz
	values := make([]float64, n)
	arr := doc.Image.Piece.PointData.Array
	switch strings.ToLower(arr.Format) {
	case "ascii":
		fields := strings.Fields(arr.Content)
		if len(fields) != n {
			return nil, fmt.Errorf("meshio: VTI ascii array has %d values, want %d", len(fields), n)
		}
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("meshio: parsing VTI value %d: %w", i, err)
			}
			values[i] = v
		}
	case "binary", "":
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(arr.Content))
		if err != nil {
			return nil, fmt.Errorf("meshio: decoding VTI base64 payload: %w", err)
		}
		if len(raw) != 8*n {
			return nil, fmt.Errorf("meshio: VTI binary payload has %d bytes, want %d", len(raw), 8*n)
		}
		for i := 0; i < n; i++ {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
		}
	default:
		return nil, fmt.Errorf("meshio: unsupported VTI DataArray format %q", arr.Format)
	}

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

func parseExtent(s string) (nx, ny, nz int, err error) {
	f := strings.Fields(s)
	if len(f) != 6 {
		return 0, 0, 0, fmt.Errorf("meshio: malformed VTI Extent %q", s)
	}
	var lo, hi [3]int
	for i := 0; i < 3; i++ {
		lo[i], err = strconv.Atoi(f[2*i])
		if err != nil {
			return 0, 0, 0, err
		}
		hi[i], err = strconv.Atoi(f[2*i+1])
		if err != nil {
			return 0, 0, 0, err
		}
	}
	return hi[0] - lo[0] + 1, hi[1] - lo[1] + 1, hi[2] - lo[2] + 1, nil
}

func parseVec3(s string) (r3.Vec, error) {
	f := strings.Fields(s)
	if len(f) != 3 {
		return r3.Vec{}, fmt.Errorf("meshio: expected 3 components, got %q", s)
	}
	var c [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(f[i], 64)
		if err != nil {
			return r3.Vec{}, err
		}
		c[i] = v
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}
