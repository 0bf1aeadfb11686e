package meshio

import (
	"bufio"
	"bytes"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MCInversion/ImplicitSurfaceWrap/meshbuf"
)

// ParallelOptions configures ReadOBJParallel.
type ParallelOptions struct {
	// Workers selects the worker count; 0 picks runtime.NumCPU(), capped
	// at 8 (the teacher's octree_renderer.go uses a similar fixed worker
	// cap for its parallel sweep rather than an unbounded fan-out).
	Workers int
}

// ReadOBJParallel imports path the way spec.md §5's concurrency model
// describes: the file is memory-mapped read-only (via FileMapping),
// split into byte subranges aligned to newlines, and each worker emits a
// thread-local (vertices, faces) buffer; a join step concatenates them.
//
// Per spec.md §5's contract, face ordering is the chunk-join order, not
// the original file order — callers must not rely on file ordering. OBJ
// face indices are resolved as absolute, file-wide 1-based positions
// (valid because vertex buffers are joined in chunk/file order, so
// "index n" always means "the nth vertex line in the file" regardless of
// how parsing was parallelized); negative (relative-to-current-position)
// face indices are NOT supported in parallel mode since that requires
// sequential position tracking — use ReadOBJ for files using them.
func ReadOBJParallel(path string, opts ParallelOptions) (*meshbuf.Mesh, error) {
	mapping, err := OpenFileMapping(path)
	if err != nil {
		return nil, err
	}
	defer mapping.Close()
	data := mapping.Data()

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > 8 {
		workers = 8
	}
	if workers < 1 {
		workers = 1
	}
	chunks := splitOnNewlines(data, workers)

	vertCounts := make([]int, len(chunks))
	var wg sync.WaitGroup
	for i, c := range chunks {
		wg.Add(1)
		go func(i int, c []byte) {
			defer wg.Done()
			vertCounts[i] = countVertexLines(c)
		}(i, c)
	}
	wg.Wait()

	totalVerts := 0
	for _, n := range vertCounts {
		totalVerts += n
	}

	type chunkResult struct {
		verts []r3.Vec
		faces [][3]int
		err   error
	}
	results := make([]chunkResult, len(chunks))
	for i, c := range chunks {
		wg.Add(1)
		go func(i int, c []byte) {
			defer wg.Done()
			verts, faces, err := parseOBJChunk(c, totalVerts)
			results[i] = chunkResult{verts: verts, faces: faces, err: err}
		}(i, c)
	}
	wg.Wait()

	allVerts := make([]r3.Vec, 0, totalVerts)
	var allFaces [][3]int
	for _, res := range results {
		if res.err != nil {
			return nil, res.err
		}
		// Vertices are appended in chunk (file) order — required so
		// absolute face indices resolve correctly — while faces are
		// simply concatenated in whatever order the chunks are joined,
		// per the face-ordering contract above.
		allVerts = append(allVerts, res.verts...)
		allFaces = append(allFaces, res.faces...)
	}
	if len(allVerts) == 0 || len(allFaces) == 0 {
		return nil, fmt.Errorf("meshio: parallel OBJ import of %s found no usable geometry", path)
	}
	return meshbuf.NewMesh(allVerts, allFaces), nil
}

// splitOnNewlines divides data into up to n byte ranges, each boundary
// pushed forward to the next newline so no chunk splits a line.
func splitOnNewlines(data []byte, n int) [][]byte {
	if len(data) == 0 {
		return nil
	}
	if n > len(data) {
		n = len(data)
	}
	chunks := make([][]byte, 0, n)
	chunkLen := len(data) / n
	start := 0
	for i := 0; i < n && start < len(data); i++ {
		end := start + chunkLen
		if i == n-1 || end >= len(data) {
			end = len(data)
		} else if nl := bytes.IndexByte(data[end:], '\n'); nl >= 0 {
			end += nl + 1
		} else {
			end = len(data)
		}
		chunks = append(chunks, data[start:end])
		start = end
	}
	return chunks
}

func countVertexLines(chunk []byte) int {
	sc := bufio.NewScanner(bytes.NewReader(chunk))
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	n := 0
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "v ") || strings.HasPrefix(line, "v\t") {
			n++
		}
	}
	return n
}

func parseOBJChunk(chunk []byte, totalVerts int) ([]r3.Vec, [][3]int, error) {
	var verts []r3.Vec
	var faces [][3]int

	sc := bufio.NewScanner(bytes.NewReader(chunk))
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			v, err := parseVertex(fields[1:])
			if err != nil {
				return nil, nil, fmt.Errorf("meshio: parallel OBJ import: %w", err)
			}
			verts = append(verts, v)
		case "f":
			tris, err := parseFaceAbsolute(fields[1:], totalVerts)
			if err != nil {
				return nil, nil, fmt.Errorf("meshio: parallel OBJ import: %w", err)
			}
			faces = append(faces, tris...)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return verts, faces, nil
}

func parseFaceAbsolute(fields []string, totalVerts int) ([][3]int, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("face line needs at least 3 indices, got %d", len(fields))
	}
	idx := make([]int, len(fields))
	for i, f := range fields {
		vPart := f
		if j := strings.IndexByte(f, '/'); j >= 0 {
			vPart = f[:j]
		}
		n, err := strconv.Atoi(vPart)
		if err != nil {
			return nil, fmt.Errorf("parsing face index %q: %w", f, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("relative/negative face index %q unsupported in parallel import", f)
		}
		if n > totalVerts {
			return nil, fmt.Errorf("face index %d exceeds vertex count %d", n, totalVerts)
		}
		idx[i] = n - 1
	}
	tris := make([][3]int, 0, len(idx)-2)
	for i := 1; i < len(idx)-1; i++ {
		tris = append(tris, [3]int{idx[0], idx[i], idx[i+1]})
	}
	return tris, nil
}
