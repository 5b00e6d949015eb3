package evaluate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaCache memoizes compiled external schemas by their resolved URL, so
// a `valid: "local://common.json"` reused across many rule nodes compiles
// once per run. Grounded on the teacher's schema.SchemaRegistry
// cache-by-key pattern (sync.RWMutex, double-checked construction).
type schemaCache struct {
	mu    sync.RWMutex
	byURL map[string]*jsonschema.Schema
}

func newSchemaCache() *schemaCache {
	return &schemaCache{byURL: make(map[string]*jsonschema.Schema)}
}

func (c *schemaCache) getOrCompile(url string) (*jsonschema.Schema, error) {
	c.mu.RLock()
	sch, ok := c.byURL[url]
	c.mu.RUnlock()
	if ok {
		return sch, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if sch, ok := c.byURL[url]; ok {
		return sch, nil
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	sch, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", url, err)
	}
	c.byURL[url] = sch
	return sch, nil
}

// compileInline compiles an embedded JSON-Schema-like document. Unlike
// external references, inline documents are not cached by URL (each rule
// node's document is distinct), but are cheap enough to compile per call.
func compileInline(doc map[string]any) (*jsonschema.Schema, error) {
	if len(doc) == 1 {
		if b, ok := doc["__bool__"].(bool); ok {
			compiler := jsonschema.NewCompiler()
			compiler.Draft = jsonschema.Draft2020
			text := "false"
			if b {
				text = "true"
			}
			const url = "dirschema://inline-bool-schema.json"
			if err := compiler.AddResource(url, bytes.NewReader([]byte(text))); err != nil {
				return nil, fmt.Errorf("add inline schema: %w", err)
			}
			return compiler.Compile(url)
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal inline schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	const url = "dirschema://inline-schema.json"
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("add inline schema: %w", err)
	}
	return compiler.Compile(url)
}

// validateAgainstSchema runs value through sch, flattening any
// *jsonschema.ValidationError tree into a JSON-Pointer -> messages map.
func validateAgainstSchema(sch *jsonschema.Schema, value any) map[string][]string {
	err := sch.Validate(value)
	if err == nil {
		return nil
	}
	out := make(map[string][]string)
	if ve, ok := err.(*jsonschema.ValidationError); ok {
		flattenValidationError(ve, out)
		return out
	}
	out[""] = []string{err.Error()}
	return out
}

func flattenValidationError(ve *jsonschema.ValidationError, out map[string][]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		out[loc] = append(out[loc], ve.Message)
		return
	}
	for _, cause := range ve.Causes {
		flattenValidationError(cause, out)
	}
}
