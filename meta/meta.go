// Package meta implements the MetaConvention: a pure mapping from an entity
// path to the path of its companion metadata document, and the predicate
// that recognizes metadata paths themselves.
package meta

import (
	"fmt"
	"strings"
)

// Convention holds the four strings that define a metadata naming scheme.
// At least one of FilePrefix, FileSuffix must be non-empty.
type Convention struct {
	PathPrefix string
	PathSuffix string
	FilePrefix string
	FileSuffix string
}

// Default returns the convention pinned by the spec: a "_meta.json"
// sidecar file alongside every entity, with no path-level prefix/suffix.
func Default() Convention {
	return Convention{FileSuffix: "_meta.json"}
}

// Validate reports whether the convention satisfies its invariant.
func (c Convention) Validate() error {
	if c.FilePrefix == "" && c.FileSuffix == "" {
		return fmt.Errorf("meta: at least one of FilePrefix, FileSuffix must be non-empty")
	}
	return nil
}

func segments(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// IsMeta reports whether path is itself a metadata path under this
// convention.
func (c Convention) IsMeta(path string) bool {
	segs := segments(path)
	minLen := 1
	if c.PathPrefix != "" {
		minLen++
	}
	if c.PathSuffix != "" {
		minLen++
	}
	if len(segs) < minLen {
		return false
	}

	last := segs[len(segs)-1]
	if c.FilePrefix != "" && !strings.HasPrefix(last, c.FilePrefix) {
		return false
	}
	if c.FileSuffix != "" && !strings.HasSuffix(last, c.FileSuffix) {
		return false
	}

	if c.PathPrefix != "" && segs[0] != c.PathPrefix {
		return false
	}

	if c.PathSuffix != "" {
		penultimate := segs[len(segs)-2]
		if penultimate != c.PathSuffix {
			return false
		}
	}

	return true
}

// MetaFor constructs the companion metadata path for an entity path.
// isDir selects the directory form (<entity>/<pathSuffix?>/<meta-file>)
// versus the file form (<parent>/<pathSuffix?>/<meta-prefix><name><meta-suffix>).
func (c Convention) MetaFor(path string, isDir bool) string {
	metaName := c.FilePrefix + lastSegmentOrEmpty(path, isDir) + c.FileSuffix

	var parts []string
	if c.PathPrefix != "" {
		parts = append(parts, c.PathPrefix)
	}

	segs := segments(path)
	if isDir {
		parts = append(parts, segs...)
	} else if len(segs) > 1 {
		parts = append(parts, segs[:len(segs)-1]...)
	}

	if c.PathSuffix != "" {
		parts = append(parts, c.PathSuffix)
	}

	parts = append(parts, metaName)
	return strings.Join(parts, "/")
}

// lastSegmentOrEmpty returns the final path segment as a name component to
// embed in the metadata filename. Directories embed nothing (the metadata
// filename is just prefix+suffix); files embed their own base name.
func lastSegmentOrEmpty(path string, isDir bool) string {
	if isDir {
		return ""
	}
	segs := segments(path)
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}
