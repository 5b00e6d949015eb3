// Package pathslice implements Python-slice semantics over the '/'-separated
// segments of a normalized path, plus regex fullmatch/substitution on the
// sliced-out portion.
package pathslice

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultPattern is used by Rewrite when the caller supplies no pattern.
const DefaultPattern = `(.*)`

// PathSlice is a path split into a prefix, a sliced-out inner segment range,
// and a suffix. Re-joining pre, inner, and suf with '/' always reproduces
// the original path (see Unslice).
type PathSlice struct {
	pre    []string
	inner  []string
	suf    []string
	hasPre bool
	hasSuf bool
}

// Into slices path on '/' boundaries using Python slice semantics for
// [start:stop], with one deviation pinned by the spec: stop == 0 means
// "through end" rather than "empty selection up to index 0".
func Into(path string, start, stop int) PathSlice {
	segs := splitSegments(path)
	n := len(segs)

	effStart := normalizeIndex(start, n)
	var effStop int
	if stop == 0 {
		effStop = n
	} else {
		effStop = normalizeIndex(stop, n)
	}
	if effStop < effStart {
		effStop = effStart
	}

	pre := segs[:effStart]
	inner := segs[effStart:effStop]
	suf := segs[effStop:]

	return PathSlice{
		pre:    pre,
		inner:  inner,
		suf:    suf,
		hasPre: len(pre) > 0,
		hasSuf: len(suf) > 0,
	}
}

// normalizeIndex converts a possibly-negative Python-style index into a
// clamped, in-bounds offset into a sequence of length n.
func normalizeIndex(idx, n int) int {
	if idx < 0 {
		idx = n + idx
	}
	if idx < 0 {
		idx = 0
	}
	if idx > n {
		idx = n
	}
	return idx
}

func splitSegments(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Unslice rejoins pre, inner, suf back into the original path. The law
// Into(p, a, b).Unslice() == p holds for every valid (a, b) and p.
func (p PathSlice) Unslice() string {
	all := make([]string, 0, len(p.pre)+len(p.inner)+len(p.suf))
	all = append(all, p.pre...)
	all = append(all, p.inner...)
	all = append(all, p.suf...)
	return strings.Join(all, "/")
}

// Inner returns the '/'-joined inner slice the regex operations act on.
func (p PathSlice) Inner() string {
	return strings.Join(p.inner, "/")
}

// Match reports whether pat fullmatches the inner slice. A nil pat is
// treated as DefaultPattern.
func (p PathSlice) Match(pat *regexp.Regexp) bool {
	if pat == nil {
		pat = regexp.MustCompile(DefaultPattern)
	}
	return fullMatchIndex(pat, p.Inner()) != nil
}

// fullMatchIndex returns the submatch indices of pat matched against the
// whole of s, or nil if pat cannot match all of s. Anchoring the pattern
// keeps an earlier, shorter alternative from hiding a full match.
func fullMatchIndex(pat *regexp.Regexp, s string) []int {
	anchored := regexp.MustCompile(`^(?:` + pat.String() + `)$`)
	return anchored.FindStringSubmatchIndex(s)
}

// Rewrite full-matches pat (or DefaultPattern if nil) against the inner
// slice and, on success, replaces the inner slice with the expansion of sub
// against the match's capture groups. It returns the rewritten PathSlice and
// true on success, or the zero value and false if the match failed.
//
// An invalid backreference in sub is a caller/schema error, not a validation
// failure, and is reported through the returned error (see CheckExpand).
func (p PathSlice) Rewrite(pat *regexp.Regexp, sub string) (PathSlice, bool, error) {
	if pat == nil {
		pat = regexp.MustCompile(DefaultPattern)
	}
	inner := p.Inner()
	match := fullMatchIndex(pat, inner)
	if match == nil {
		return PathSlice{}, false, nil
	}

	if err := CheckExpand(pat, sub); err != nil {
		return PathSlice{}, false, err
	}

	expanded := pat.ExpandString(nil, sub, inner, match)
	rewritten := p
	rewritten.inner = splitSegments(string(expanded))
	if string(expanded) == "" {
		rewritten.inner = nil
	}
	return rewritten, true, nil
}

// CheckExpand validates that every $N or ${name} backreference in sub
// refers to a capture group that actually exists in pat, returning an error
// describing the first invalid reference.
func CheckExpand(pat *regexp.Regexp, sub string) error {
	names := pat.SubexpNames()
	numGroups := pat.NumSubexp()

	i := 0
	for i < len(sub) {
		if sub[i] != '$' || i+1 >= len(sub) {
			i++
			continue
		}
		rest := sub[i+1:]
		switch {
		case strings.HasPrefix(rest, "{"):
			end := strings.IndexByte(rest, '}')
			if end < 0 {
				return fmt.Errorf("pathslice: unterminated ${...} reference in rewrite %q", sub)
			}
			name := rest[:end]
			if !validBackref(name, names, numGroups) {
				return fmt.Errorf("pathslice: rewrite %q references unknown capture group %q", sub, name)
			}
			i += 2 + end
		case rest[0] >= '0' && rest[0] <= '9':
			j := 0
			for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
				j++
			}
			name := rest[:j]
			if !validBackref(name, names, numGroups) {
				return fmt.Errorf("pathslice: rewrite %q references unknown capture group %q", sub, name)
			}
			i += 1 + j
		default:
			i++
		}
	}
	return nil
}

func validBackref(name string, names []string, numGroups int) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	var idx int
	if _, err := fmt.Sscanf(name, "%d", &idx); err == nil {
		return idx >= 0 && idx <= numGroups
	}
	return false
}
