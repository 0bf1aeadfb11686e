package meshio

import "os"

// FileMapping is the abstract memory-mapping collaborator behind
// ReadOBJParallel (spec.md §9: "the hand-rolled platform file mapping is
// an optimization; a portable implementation ... or falling back to
// buffered streaming satisfies the contract"). Bytes returned by Data
// must remain valid until Close is called.
type FileMapping interface {
	Data() []byte
	Close() error
}

// OpenFileMapping opens path using the best mapping available on the
// current platform: a real mmap on unix platforms (mmap_unix.go, build-tag
// gated), or bufferedMapping's read-the-whole-file fallback everywhere
// else (mmap_other.go) — satisfying spec.md §9's portability
// guidance without requiring a platform-specific build.
func OpenFileMapping(path string) (FileMapping, error) {
	return openFileMapping(path)
}

// bufferedMapping is the portable FileMapping fallback: it reads the
// entire file into memory once, rather than asking the OS to map pages
// lazily. Correct on every platform golang.org/x/sys supports, just
// without the real mmap's lazy paging.
type bufferedMapping struct {
	data []byte
}

func newBufferedMapping(path string) (FileMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &bufferedMapping{data: data}, nil
}

func (m *bufferedMapping) Data() []byte { return m.data }
func (m *bufferedMapping) Close() error { m.data = nil; return nil }
