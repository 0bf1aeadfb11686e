//go:build !unix

package meshio

// On platforms without a golang.org/x/sys/unix-style mmap (notably
// Windows, whose mapping API lives in golang.org/x/sys/windows and is
// enough of a different shape to not share unixMapping's code), the
// portable buffered fallback spec.md §9 explicitly sanctions is the
// default rather than a second bespoke mapping implementation.
func openFileMapping(path string) (FileMapping, error) {
	return newBufferedMapping(path)
}
