package evaluate

import (
	"fmt"

	"github.com/fulmenhq/dirschema/ruleset"
)

// evaluateCombinators implements Stage 3: if/then/else, then allOf, oneOf,
// anyOf, then not, each evaluated in that fixed order. Nested sub-rule
// errors are merged into entries only when the enclosing node's `details`
// is true (the default when unset).
func (e *Evaluator) evaluateCombinators(path string, node *ruleset.Rule, ctx evalContext, entries LocationResult) (bool, error) {
	detailsOn := node.Details == nil || *node.Details
	ok := true

	if node.If != nil {
		ifOK, _, err := e.evaluatePath(path, *node.If, ctx.push("if"))
		if err != nil {
			return false, err
		}
		if ifOK {
			if node.Then != nil {
				thenOK, sub, err := e.evaluatePath(path, *node.Then, ctx.push("then"))
				if err != nil {
					return false, err
				}
				if !thenOK {
					ok = false
					if detailsOn {
						mergeInto(entries, sub)
					}
				}
			}
		} else if node.Else != nil {
			elseOK, sub, err := e.evaluatePath(path, *node.Else, ctx.push("else"))
			if err != nil {
				return false, err
			}
			if !elseOK {
				ok = false
				if detailsOn {
					mergeInto(entries, sub)
				}
			}
		}
	}

	if node.AllOf != nil {
		satisfied := 0
		var failed []LocationResult
		for i, sub := range node.AllOf {
			if err := e.canceller.Check(); err != nil {
				return false, err
			}
			subOK, subEntries, err := e.evaluatePath(path, sub, ctx.pushIndex("allOf", i))
			if err != nil {
				return false, err
			}
			if subOK {
				satisfied++
			} else {
				failed = append(failed, subEntries)
			}
		}
		if satisfied != len(node.AllOf) {
			ok = false
			loc := ctx.push("allOf").locationString()
			entries[loc] = Entry{Path: path, Err: fmt.Sprintf("All %d sub-rules must be satisfied (satisfied: %d)", len(node.AllOf), satisfied)}
			if detailsOn {
				for _, f := range failed {
					mergeInto(entries, f)
				}
			}
		}
	}

	if len(node.OneOf) > 0 {
		satisfied := 0
		var all []LocationResult
		for i, sub := range node.OneOf {
			if err := e.canceller.Check(); err != nil {
				return false, err
			}
			subOK, subEntries, err := e.evaluatePath(path, sub, ctx.pushIndex("oneOf", i))
			if err != nil {
				return false, err
			}
			if subOK {
				satisfied++
			} else {
				all = append(all, subEntries)
			}
		}
		if satisfied != 1 {
			ok = false
			loc := ctx.push("oneOf").locationString()
			entries[loc] = Entry{Path: path, Err: fmt.Sprintf("Exactly one sub-rule must be satisfied (satisfied: %d)", satisfied)}
			if detailsOn {
				for _, a := range all {
					mergeInto(entries, a)
				}
			}
		}
	}

	if len(node.AnyOf) > 0 {
		anySuccess := false
		var failed []LocationResult
		for i, sub := range node.AnyOf {
			if err := e.canceller.Check(); err != nil {
				return false, err
			}
			subOK, subEntries, err := e.evaluatePath(path, sub, ctx.pushIndex("anyOf", i))
			if err != nil {
				return false, err
			}
			if subOK {
				anySuccess = true
				break
			}
			failed = append(failed, subEntries)
		}
		if !anySuccess {
			ok = false
			loc := ctx.push("anyOf").locationString()
			entries[loc] = Entry{Path: path, Err: "No sub-rule was satisfied"}
			if detailsOn {
				for _, f := range failed {
					mergeInto(entries, f)
				}
			}
		}
	}

	if node.Not != nil {
		subOK, _, err := e.evaluatePath(path, *node.Not, ctx.push("not"))
		if err != nil {
			return false, err
		}
		if subOK {
			ok = false
			loc := ctx.push("not").locationString()
			entries[loc] = Entry{Path: path, Err: "negated sub-rule satisfied, but should have failed"}
		}
	}

	return ok, nil
}
