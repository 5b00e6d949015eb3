package adapter

import "strings"

// Select picks a StorageAdapter implementation for path, a pure function
// of the path's extension as spec.md §9 requires ("Select by file
// extension/probe; selection is a pure function of the input path").
func Select(path string) (StorageAdapter, error) {
	switch {
	case strings.HasSuffix(path, ".zip"):
		return NewZipDir(path)
	case strings.HasSuffix(path, ".h5") || strings.HasSuffix(path, ".hdf5"):
		return NewH5Dir(path)
	default:
		return NewRealDir(path)
	}
}
