package ruleset

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ParseError is a schema error raised at parse time: an unknown keyword, an
// invalid regex, an invalid embedded JSON Schema, or a malformed type
// value. Per spec.md §7 these abort the load; they are never accumulated
// into a validation result.
type ParseError struct {
	Location string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Location == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("ruleset: at %s: %v", e.Location, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var knownKeys = map[string]bool{
	"type": true, "valid": true, "validMeta": true,
	"allOf": true, "anyOf": true, "oneOf": true, "not": true,
	"if": true, "then": true, "else": true,
	"match": true, "matchStart": true, "matchStop": true, "rewrite": true,
	"next": true, "description": true, "details": true,
}

// Parse decodes a YAML or JSON schema document (with $ref already resolved
// by an external loader, per spec.md §1) into a DSRule. YAML is accepted
// unconditionally since valid JSON is valid YAML.
func Parse(data []byte) (DSRule, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return DSRule{}, &ParseError{Err: fmt.Errorf("decode document: %w", err)}
	}
	return parseNode(raw, "")
}

func parseNode(raw any, loc string) (DSRule, error) {
	switch v := raw.(type) {
	case bool:
		return BoolRule(v), nil
	case nil:
		return DSRule{}, &ParseError{Location: loc, Err: fmt.Errorf("rule node must be a boolean or an object, got null")}
	case map[string]any:
		r, err := parseRuleObject(v, loc)
		if err != nil {
			return DSRule{}, err
		}
		return NodeRule(r), nil
	case map[any]any:
		normalized := normalizeYAMLMap(v)
		r, err := parseRuleObject(normalized, loc)
		if err != nil {
			return DSRule{}, err
		}
		return NodeRule(r), nil
	default:
		return DSRule{}, &ParseError{Location: loc, Err: fmt.Errorf("rule node must be a boolean or an object, got %T", raw)}
	}
}

// normalizeYAMLMap converts a map[any]any (as produced by gopkg.in/yaml.v3
// for non-string-keyed mappings) into map[string]any.
func normalizeYAMLMap(m map[any]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[fmt.Sprintf("%v", k)] = v
	}
	return out
}

func parseRuleObject(obj map[string]any, loc string) (*Rule, error) {
	for key := range obj {
		if !knownKeys[key] {
			return nil, &ParseError{Location: loc, Err: fmt.Errorf("unknown rule keyword %q", key)}
		}
	}

	r := &Rule{}

	if raw, ok := obj["type"]; ok {
		t, err := parseTypeEnum(raw)
		if err != nil {
			return nil, &ParseError{Location: loc + "/type", Err: err}
		}
		r.Type = &t
	}

	if raw, ok := obj["valid"]; ok {
		ref, err := parseValidatorRef(raw, loc+"/valid")
		if err != nil {
			return nil, err
		}
		r.Valid = ref
	}

	if raw, ok := obj["validMeta"]; ok {
		ref, err := parseValidatorRef(raw, loc+"/validMeta")
		if err != nil {
			return nil, err
		}
		r.ValidMeta = ref
	}

	var err error
	if r.AllOf, err = parseRuleList(obj["allOf"], loc+"/allOf"); err != nil {
		return nil, err
	}
	if r.AnyOf, err = parseRuleList(obj["anyOf"], loc+"/anyOf"); err != nil {
		return nil, err
	}
	if r.OneOf, err = parseRuleList(obj["oneOf"], loc+"/oneOf"); err != nil {
		return nil, err
	}

	if raw, ok := obj["not"]; ok {
		sub, err := parseNode(raw, loc+"/not")
		if err != nil {
			return nil, err
		}
		r.Not = &sub
	}
	if raw, ok := obj["if"]; ok {
		sub, err := parseNode(raw, loc+"/if")
		if err != nil {
			return nil, err
		}
		r.If = &sub
	}
	if raw, ok := obj["then"]; ok {
		sub, err := parseNode(raw, loc+"/then")
		if err != nil {
			return nil, err
		}
		r.Then = &sub
	}
	if raw, ok := obj["else"]; ok {
		sub, err := parseNode(raw, loc+"/else")
		if err != nil {
			return nil, err
		}
		r.Else = &sub
	}
	if raw, ok := obj["next"]; ok {
		sub, err := parseNode(raw, loc+"/next")
		if err != nil {
			return nil, err
		}
		r.Next = &sub
	}

	if r.If == nil && (r.Then != nil || r.Else != nil) {
		return nil, &ParseError{Location: loc, Err: fmt.Errorf("\"then\"/\"else\" may only appear alongside \"if\"; implication is spelled \"next\"")}
	}

	if raw, ok := obj["match"]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, &ParseError{Location: loc + "/match", Err: fmt.Errorf("match must be a string, got %T", raw)}
		}
		compiled, err := regexp.Compile(s)
		if err != nil {
			return nil, &ParseError{Location: loc + "/match", Err: fmt.Errorf("invalid regex %q: %w", s, err)}
		}
		r.Match = compiled
		r.MatchRaw = s
	}

	if raw, ok := obj["matchStart"]; ok {
		n, err := parseInt(raw)
		if err != nil {
			return nil, &ParseError{Location: loc + "/matchStart", Err: err}
		}
		r.MatchStart = &n
	}
	if raw, ok := obj["matchStop"]; ok {
		n, err := parseInt(raw)
		if err != nil {
			return nil, &ParseError{Location: loc + "/matchStop", Err: err}
		}
		r.MatchStop = &n
	}

	if raw, ok := obj["rewrite"]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, &ParseError{Location: loc + "/rewrite", Err: fmt.Errorf("rewrite must be a string, got %T", raw)}
		}
		r.Rewrite = &s
	}

	if raw, ok := obj["description"]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, &ParseError{Location: loc + "/description", Err: fmt.Errorf("description must be a string, got %T", raw)}
		}
		r.Description = &s
	}

	if raw, ok := obj["details"]; ok {
		b, ok := raw.(bool)
		if !ok {
			return nil, &ParseError{Location: loc + "/details", Err: fmt.Errorf("details must be a boolean, got %T", raw)}
		}
		r.Details = &b
	}

	return r, nil
}

func parseRuleList(raw any, loc string) ([]DSRule, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, &ParseError{Location: loc, Err: fmt.Errorf("expected a list, got %T", raw)}
	}
	out := make([]DSRule, 0, len(list))
	for i, item := range list {
		sub, err := parseNode(item, fmt.Sprintf("%s/%d", loc, i))
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}

func parseTypeEnum(raw any) (TypeEnum, error) {
	switch v := raw.(type) {
	case bool:
		if v {
			return TypeAny, nil
		}
		return TypeMissing, nil
	case string:
		switch v {
		case "file":
			return TypeFile, nil
		case "dir":
			return TypeDir, nil
		default:
			return "", fmt.Errorf("invalid type value %q, must be true, false, \"file\", or \"dir\"", v)
		}
	default:
		return "", fmt.Errorf("invalid type value %v (%T)", raw, raw)
	}
}

func parseInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid integer %q", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", raw)
	}
}

func parseValidatorRef(raw any, loc string) (*ValidatorRef, error) {
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, &ParseError{Location: loc, Err: fmt.Errorf("validator reference string must not be empty")}
		}
		return &ValidatorRef{Ref: v}, nil
	case map[string]any:
		if err := validateMetaSchema(v, loc); err != nil {
			return nil, err
		}
		return &ValidatorRef{Inline: v}, nil
	case map[any]any:
		normalized := normalizeYAMLMap(v)
		if err := validateMetaSchema(normalized, loc); err != nil {
			return nil, err
		}
		return &ValidatorRef{Inline: normalized}, nil
	case bool:
		return &ValidatorRef{Inline: map[string]any{"__bool__": v}}, nil
	default:
		return nil, &ParseError{Location: loc, Err: fmt.Errorf("valid/validMeta must be an object or a string, got %T", raw)}
	}
}

// validateMetaSchema compiles doc against the embedded JSON-Schema
// Draft 2020-12 meta-schema, so a malformed `valid`/`validMeta` document is
// caught at parse time rather than surfacing as a confusing runtime error
// the first time a path happens to exercise it.
func validateMetaSchema(doc map[string]any, loc string) error {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	const resourceURL = "dirschema://inline-schema.json"
	if err := compiler.AddResource(resourceURL, mapToReader(doc)); err != nil {
		return &ParseError{Location: loc, Err: fmt.Errorf("invalid embedded schema: %w", err)}
	}
	if _, err := compiler.Compile(resourceURL); err != nil {
		return &ParseError{Location: loc, Err: fmt.Errorf("embedded schema fails meta-schema validation: %w", err)}
	}
	return nil
}
