package evaluate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver turns a validator-reference string into a URL the jsonschema
// compiler's default file/http/https loaders can fetch, per SPEC_FULL.md's
// `cwd://`, `local://`, and bare-plus-relative_prefix forms (spec.md §6).
// Grounded on the teacher's schema.LoadSchemaFromDir / LoadSchemaFile
// naming convention, generalized from "load from a known local directory"
// to "resolve any of the four reference shapes to a fetchable URL".
type Resolver struct {
	// LocalBaseDir is the base for `local://REL` references. When empty,
	// they resolve against the process working directory; cmd/dirschema
	// sets it to the rule document's directory unless configured.
	LocalBaseDir string
	// RelativePrefix is prepended to a bare string with no `://`.
	RelativePrefix string
}

// ResolveURL returns the jsonschema-compiler-fetchable URL for ref.
func (r Resolver) ResolveURL(ref string) (string, error) {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"), strings.HasPrefix(ref, "file://"):
		return ref, nil
	case strings.HasPrefix(ref, "cwd://"):
		rel := strings.TrimPrefix(ref, "cwd://")
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve %q: %w", ref, err)
		}
		return "file://" + filepath.Join(wd, filepath.FromSlash(rel)), nil
	case strings.HasPrefix(ref, "local://"):
		rel := strings.TrimPrefix(ref, "local://")
		base := r.LocalBaseDir
		if base == "" {
			var err error
			base, err = os.Getwd()
			if err != nil {
				return "", fmt.Errorf("resolve %q: %w", ref, err)
			}
		}
		return "file://" + filepath.Join(base, filepath.FromSlash(rel)), nil
	default:
		combined := r.RelativePrefix + ref
		if strings.Contains(combined, "://") {
			return combined, nil
		}
		abs, err := filepath.Abs(filepath.FromSlash(combined))
		if err != nil {
			return "", fmt.Errorf("resolve %q: %w", ref, err)
		}
		return "file://" + abs, nil
	}
}
