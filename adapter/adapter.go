// Package adapter implements DirSchema's StorageAdapter abstraction: a
// uniform path-tree view over a real filesystem directory (RealDir), a zip
// archive (ZipDir), or an HDF5 file (H5Dir).
//
// Grounded on the teacher's pathfinder package (finder.go's directory walk,
// ignore.go's .fulmenignore pattern matcher) for RealDir, and fulpack's
// scan.go (scanZip) for ZipDir's archive/zip usage; H5Dir has no teacher or
// pack precedent and is built directly against gonum.org/v1/hdf5, named in
// SPEC_FULL.md as an out-of-pack dependency.
package adapter

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is the error a reader built over OpenFile returns when
// OpenFile reports ok=false. Since OpenFile reports a missing path, a path
// of the wrong kind, and an I/O failure alike, ErrNotFound does not tell
// these cases apart.
var ErrNotFound = errors.New("adapter: path not found")

// StorageAdapter is the uniform capability set every concrete backend
// (RealDir, ZipDir, H5Dir) implements.
type StorageAdapter interface {
	// GetPaths returns every enumerable path under the root, including the
	// root itself ("") exactly once, in a deterministic (lexicographic)
	// order. Symbolic links are skipped.
	GetPaths() ([]string, error)

	// IsFile and IsDir are mutually exclusive for any given path; the root
	// is always a directory.
	IsFile(path string) bool
	IsDir(path string) bool

	// OpenFile reads path's full contents. ok is false when the path
	// cannot be read as a file (missing, wrong kind, or I/O error) — the
	// spec treats all three as "none", not a crash.
	OpenFile(path string) (data []byte, ok bool)

	// DecodeJSON parses data (as read from path via OpenFile) into a JSON
	// value. The default policy is JSON first, then YAML fallback; H5Dir
	// overrides this (see H5Dir.DecodeJSON).
	DecodeJSON(data []byte, path string) (value any, ok bool)

	// LoadMeta composes OpenFile and DecodeJSON for path.
	LoadMeta(path string) (value any, ok bool)

	// Close releases any open handle (archive, HDF5 file). RealDir's
	// Close is a no-op.
	Close() error
}

// DefaultDecodeJSON implements the JSON-then-YAML-fallback policy shared by
// RealDir and ZipDir. Since valid JSON is valid YAML, a single yaml.Unmarshal
// call subsumes both, but JSON is tried first via encoding/json so that a
// strictly-JSON document reports JSON-flavored errors upstream if ever
// needed (and to keep parity with the spec's "JSON then YAML fallback"
// wording rather than silently trusting YAML's looser grammar first).
func DefaultDecodeJSON(data []byte, _ string) (any, bool) {
	var v any
	if err := json.Unmarshal(data, &v); err == nil {
		return v, true
	}
	if err := yaml.Unmarshal(data, &v); err == nil {
		return v, true
	}
	return nil, false
}

// normalize strips a leading/trailing "/" and collapses "" consistently;
// callers pass already-clean paths, this only guards against stray
// separators introduced by path joins.
func normalize(path string) string {
	return strings.Trim(path, "/")
}

func sortedCopy(paths []string) []string {
	out := make([]string, len(paths))
	copy(out, paths)
	sort.Strings(out)
	return out
}
