//go:build unix

package meshio

import (
	"os"

	"golang.org/x/sys/unix"
)

// unixMapping is the real memory-mapped FileMapping implementation,
// grounded in golang.org/x/sys/unix (pulled into this module's dependency
// surface the same way onuse-worldgenerator_go's go.mod does for
// platform syscalls). Falls back to bufferedMapping on any mmap error
// (e.g. a zero-length file, which unix.Mmap rejects).
type unixMapping struct {
	data []byte
}

func openFileMapping(path string) (FileMapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return newBufferedMapping(path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return newBufferedMapping(path)
	}
	return &unixMapping{data: data}, nil
}

func (m *unixMapping) Data() []byte { return m.data }

func (m *unixMapping) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	return err
}
