package evaluate

import (
	"regexp"
	"strconv"
	"strings"
)

// evalContext threads the current rule-location path and the inherited
// matchStart/matchStop/matchPat down through a descent. It is copied at
// every push, per SPEC_FULL.md's "context threading" design: no rule node
// ever mutates a parent's context, so cancellation and backtracking need
// no undo logic.
//
// matchPat, like matchStart/matchStop, is inherited from the nearest
// ancestor that set `match` — a descendant with only `rewrite` (no
// `match` of its own) rewrites against the inherited pattern, not the
// default "capture the whole slice" pattern.
type evalContext struct {
	location   []string
	matchStart int
	matchStop  int
	matchPat   *regexp.Regexp
}

func (c evalContext) push(segment string) evalContext {
	loc := make([]string, len(c.location), len(c.location)+1)
	copy(loc, c.location)
	nc := c
	nc.location = append(loc, segment)
	return nc
}

func (c evalContext) pushIndex(segment string, index int) evalContext {
	return c.push(segment).push(strconv.Itoa(index))
}

func (c evalContext) locationString() string {
	if len(c.location) == 0 {
		return ""
	}
	return "/" + strings.Join(c.location, "/")
}
