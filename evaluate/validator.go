package evaluate

import (
	"fmt"

	"github.com/fulmenhq/dirschema/adapter"
	"github.com/fulmenhq/dirschema/plugin"
	"github.com/fulmenhq/dirschema/ruleset"
)

// evaluateValidatorConstraint implements the `valid`/`validMeta` primitive
// constraint (spec.md §4.5 Stage 2). keyword is "valid" or "validMeta" and
// only affects which target path is checked and where failures are keyed.
func (e *Evaluator) evaluateValidatorConstraint(path, keyword string, ref *ruleset.ValidatorRef, ctx evalContext) (bool, LocationResult, error) {
	loc := ctx.push(keyword).locationString()
	entries := LocationResult{}

	target := path
	if keyword == "validMeta" {
		target = e.Convention.MetaFor(path, e.Adapter.IsDir(path))
	}

	if !e.Adapter.IsFile(path) && !e.Adapter.IsDir(path) {
		entries[loc] = Entry{Path: path, Err: "path does not exist"}
		return false, entries, nil
	}

	data, ok := e.Adapter.OpenFile(target)
	if !ok {
		e.warnf("adapter could not open path for "+keyword, target)
		entries[loc] = Entry{Path: target, Err: "could not load"}
		return false, entries, nil
	}
	if e.Metrics != nil {
		e.Metrics.IncAdapterOpens()
	}

	if ref.IsString() && plugin.IsPluginURI(ref.Ref) {
		return e.dispatchPlugin(target, data, ref.Ref, loc, entries)
	}
	if ref.IsString() {
		return e.dispatchExternalSchema(target, data, ref.Ref, loc, entries)
	}
	return e.dispatchInlineSchema(target, data, ref.Inline, loc, entries)
}

func (e *Evaluator) dispatchPlugin(target string, data []byte, refStr, loc string, entries LocationResult) (bool, LocationResult, error) {
	pref, err := plugin.ParseReference(refStr)
	if err != nil {
		return false, nil, fmt.Errorf("evaluate: %w", err)
	}
	handler, err := plugin.Dispatch(pref)
	if err != nil {
		return false, nil, fmt.Errorf("evaluate: %w", err)
	}
	if e.Metrics != nil {
		e.Metrics.IncPluginDispatches()
	}

	var res plugin.Result
	switch h := handler.(type) {
	case plugin.RawHandler:
		reader := func(p string) ([]byte, error) {
			d, ok := e.Adapter.OpenFile(p)
			if !ok {
				return nil, adapter.ErrNotFound
			}
			return d, nil
		}
		res, err = h.ValidateRaw(target, data, reader)
	case plugin.JSONHandler:
		value, ok := e.Adapter.DecodeJSON(data, target)
		if !ok {
			entries[loc] = Entry{Path: target, Err: "could not parse"}
			return false, entries, nil
		}
		res, err = h.ValidateJSON(target, value)
	default:
		return false, nil, fmt.Errorf("evaluate: plugin %q implements neither JSONHandler nor RawHandler", pref.Name)
	}
	if err != nil {
		return false, nil, fmt.Errorf("evaluate: plugin %q: %w", pref.Name, err)
	}
	if len(res) > 0 {
		entries[loc] = Entry{Path: target, Err: res}
		return false, entries, nil
	}
	return true, entries, nil
}

func (e *Evaluator) dispatchExternalSchema(target string, data []byte, ref, loc string, entries LocationResult) (bool, LocationResult, error) {
	url, err := e.Resolver.ResolveURL(ref)
	if err != nil {
		return false, nil, fmt.Errorf("evaluate: %w", err)
	}
	sch, err := e.schemas.getOrCompile(url)
	if err != nil {
		return false, nil, fmt.Errorf("evaluate: %w", err)
	}
	value, ok := e.Adapter.DecodeJSON(data, target)
	if !ok {
		entries[loc] = Entry{Path: target, Err: "could not parse"}
		return false, entries, nil
	}
	if messages := validateAgainstSchema(sch, value); len(messages) > 0 {
		entries[loc] = Entry{Path: target, Err: messages}
		return false, entries, nil
	}
	return true, entries, nil
}

func (e *Evaluator) dispatchInlineSchema(target string, data []byte, doc map[string]any, loc string, entries LocationResult) (bool, LocationResult, error) {
	sch, err := compileInline(doc)
	if err != nil {
		return false, nil, fmt.Errorf("evaluate: %w", err)
	}
	value, ok := e.Adapter.DecodeJSON(data, target)
	if !ok {
		entries[loc] = Entry{Path: target, Err: "could not parse"}
		return false, entries, nil
	}
	if messages := validateAgainstSchema(sch, value); len(messages) > 0 {
		entries[loc] = Entry{Path: target, Err: messages}
		return false, entries, nil
	}
	return true, entries, nil
}
