// Package evaluate implements DirSchema's per-path recursive evaluator: the
// five-stage pipeline (boolean shortcut, match/rewrite, primitive
// constraints, logical combinators, implication) that walks a rule tree
// against a single path, plus the top-level Validate entry point that runs
// it over every non-metadata path a StorageAdapter enumerates.
//
// Grounded loosely on the teacher's schema.Validator dispatch shape
// (validate one document against one compiled schema, accumulate errors),
// generalized to a recursive rule language with its own control flow.
package evaluate

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/fulmenhq/dirschema/meta"
	"github.com/fulmenhq/dirschema/pathslice"
	"github.com/fulmenhq/dirschema/ruleset"

	"github.com/fulmenhq/dirschema/adapter"
	"github.com/fulmenhq/dirschema/dslog"
	"github.com/fulmenhq/dirschema/dssignal"
	"github.com/fulmenhq/dirschema/dstelemetry"
)

// Evaluator runs a validation pass against one StorageAdapter.
type Evaluator struct {
	Adapter    adapter.StorageAdapter
	Convention meta.Convention
	Resolver   Resolver

	// Metrics and Log are optional: either may be left nil, and the
	// evaluator checks for nil before each use, so a caller that doesn't
	// need operational telemetry isn't forced to wire either up.
	Metrics *dstelemetry.Metrics
	Log     *dslog.Logger

	schemas   *schemaCache
	canceller dssignal.Canceller
}

// NewEvaluator builds an Evaluator ready to run Validate. Metrics and Log
// are left nil; set Evaluator.Metrics/Evaluator.Log afterward to enable
// operational telemetry and logging.
func NewEvaluator(adp adapter.StorageAdapter, convention meta.Convention, resolver Resolver) *Evaluator {
	return &Evaluator{
		Adapter:    adp,
		Convention: convention,
		Resolver:   resolver,
		schemas:    newSchemaCache(),
	}
}

func (e *Evaluator) observeDuration(start time.Time) {
	if e.Metrics != nil {
		e.Metrics.ObserveEvaluateDuration(time.Since(start))
	}
}

func (e *Evaluator) warnf(msg string, path string) {
	if e.Log != nil {
		e.Log.WithComponent("evaluate").WithPath(path).Warn(msg)
	}
}

// Validate runs rule against every path the adapter enumerates, skipping
// paths the metadata convention recognizes as a sidecar rather than an
// entity. It polls ctx between paths so a caller can cancel a long run
// without leaving adapter handles open.
func (e *Evaluator) Validate(ctx context.Context, rule ruleset.DSRule) (Result, error) {
	paths, err := e.Adapter.GetPaths()
	if err != nil {
		return nil, err
	}

	e.canceller = dssignal.New(ctx)
	result := make(Result)
	for _, p := range paths {
		if err := e.canceller.Check(); err != nil {
			return result, err
		}
		if e.Convention.IsMeta(p) {
			continue
		}

		if e.Metrics != nil {
			e.Metrics.IncPathsValidated()
		}

		_, entries, err := e.evaluatePath(p, rule, evalContext{})
		if err != nil {
			if errors.Is(err, dssignal.ErrCancelled) {
				return result, err
			}
			return nil, err
		}
		if len(entries) > 0 {
			result[p] = entries
			if e.Metrics != nil {
				e.Metrics.IncErrors(len(entries))
			}
		}
	}
	return result, nil
}

var defaultMatchPattern = regexp.MustCompile(pathslice.DefaultPattern)

// evaluatePath runs the five-stage pipeline for rule against path. A
// non-nil error is a schema/adapter error that aborts the whole run;
// validation failures are always returned as (false, entries, nil).
func (e *Evaluator) evaluatePath(path string, rule ruleset.DSRule, ctx evalContext) (bool, LocationResult, error) {
	if e.Metrics != nil {
		defer e.observeDuration(time.Now())
	}
	entries := LocationResult{}

	// Stage 0 — boolean shortcut.
	if rule.IsBool {
		if rule.Bool {
			return true, entries, nil
		}
		entries[ctx.locationString()] = Entry{Path: path, Err: "reached unsatisfiable false"}
		return false, entries, nil
	}

	node := rule.Node

	// Stage 1 — match/rewrite.
	matchStart, matchStop := ctx.matchStart, ctx.matchStop
	if node.MatchStart != nil {
		matchStart = *node.MatchStart
	}
	if node.MatchStop != nil {
		matchStop = *node.MatchStop
	}

	psl := pathslice.Into(path, matchStart, matchStop)
	nextPath := path

	// ctx carries matchStart/matchStop/matchPat down to descendants
	// (if/then/allOf/next/...) so a node's own override stays in effect
	// for its subtree unless a descendant overrides it again. A node with
	// `rewrite` but no `match` of its own rewrites against the inherited
	// pattern, not a reset-to-default one.
	matchPat := ctx.matchPat
	if node.Match != nil {
		matchPat = node.Match
	}
	ctx.matchStart, ctx.matchStop = matchStart, matchStop
	ctx.matchPat = matchPat

	if node.HasMatchOrRewrite() {
		pattern := matchPat
		if pattern == nil {
			pattern = defaultMatchPattern
		}
		sub := "$0"
		if node.Rewrite != nil {
			sub = *node.Rewrite
		}

		rewritten, matched, err := psl.Rewrite(pattern, sub)
		if err != nil {
			return false, nil, err
		}
		if !matched {
			msg := "path segment does not match pattern"
			if node.Description != nil {
				msg = expandDescription(*node.Description, pattern, psl)
			}
			entries[ctx.locationString()] = Entry{Path: path, Err: msg}
			return false, entries, nil
		}
		nextPath = rewritten.Unslice()
	}

	// Stage 2 — primitive constraints.
	stage2OK := true

	if node.Type != nil {
		isFile, isDir := e.Adapter.IsFile(path), e.Adapter.IsDir(path)
		if !node.Type.Satisfied(isFile, isDir) {
			stage2OK = false
			loc := ctx.push("type").locationString()
			msg := node.Type.Message()
			if node.Description != nil {
				msg = expandDescription(*node.Description, defaultMatchPattern, psl)
			}
			entries[loc] = Entry{Path: path, Err: msg}
		}
	}

	if node.Valid != nil {
		ok, sub, err := e.evaluateValidatorConstraint(path, "valid", node.Valid, ctx)
		if err != nil {
			return false, nil, err
		}
		if !ok {
			stage2OK = false
			mergeInto(entries, sub)
		}
	}

	if node.ValidMeta != nil {
		ok, sub, err := e.evaluateValidatorConstraint(path, "validMeta", node.ValidMeta, ctx)
		if err != nil {
			return false, nil, err
		}
		if !ok {
			stage2OK = false
			mergeInto(entries, sub)
		}
	}

	if !stage2OK {
		return false, entries, nil
	}

	// Stage 3 — logical combinators.
	stage3OK, err := e.evaluateCombinators(path, node, ctx, entries)
	if err != nil {
		return false, nil, err
	}
	if !stage3OK {
		return false, entries, nil
	}

	// Stage 4 — implication.
	if node.Next != nil {
		ok, sub, err := e.evaluatePath(nextPath, *node.Next, ctx.push("next"))
		if err != nil {
			return false, nil, err
		}
		if !ok {
			mergeInto(entries, sub)
			return false, entries, nil
		}
	}

	return true, entries, nil
}

// expandDescription substitutes capture-group backreferences ($1, ${name},
// ...) in desc against the last attempted match of pattern within psl's
// inner segment. Stages with no regex in play (pattern == nil) return desc
// unchanged.
func expandDescription(desc string, pattern *regexp.Regexp, psl pathslice.PathSlice) string {
	if pattern == nil {
		return desc
	}
	loc := pattern.FindStringSubmatchIndex(psl.Inner())
	if loc == nil {
		return desc
	}
	return string(pattern.ExpandString(nil, desc, psl.Inner(), loc))
}
