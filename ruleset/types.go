// Package ruleset defines the DirSchema rule tree data model: the parsed
// representation of a schema document, and the parser that turns YAML/JSON
// bytes into it.
//
// A DSRule is either a trivial boolean or a Rule node carrying at most one
// occurrence of each keyword. Recursion is unbounded in principle but
// finite per schema, so the tree owns its children outright (no cycles,
// no back-references).
package ruleset

import "regexp"

// TypeEnum names the four structural states a path can satisfy the `type`
// keyword with.
type TypeEnum string

const (
	TypeMissing TypeEnum = "missing"
	TypeFile    TypeEnum = "file"
	TypeDir     TypeEnum = "dir"
	TypeAny     TypeEnum = "any"
)

// Satisfied reports whether the observed (isFile, isDir) pair satisfies t.
func (t TypeEnum) Satisfied(isFile, isDir bool) bool {
	switch t {
	case TypeMissing:
		return !isFile && !isDir
	case TypeFile:
		return isFile
	case TypeDir:
		return isDir
	case TypeAny:
		return isFile || isDir
	default:
		return false
	}
}

// Message returns the spec-pinned error text for a failed type check.
func (t TypeEnum) Message() string {
	switch t {
	case TypeMissing:
		return "Entity exists but was expected to be missing"
	case TypeFile:
		return "Entity does not have expected type: 'file'"
	case TypeDir:
		return "Entity does not have expected type: 'dir'"
	case TypeAny:
		return "Entity does not exist"
	default:
		return "Entity does not have expected type"
	}
}

// ValidatorRef is the shape accepted by `valid` and `validMeta`: either an
// embedded JSON-Schema-like document, or a string (a plugin URI or a
// dereferenceable schema reference — see package plugin and SPEC_FULL.md
// §6 for the string forms).
type ValidatorRef struct {
	// Exactly one of Inline or Ref is set.
	Inline map[string]any
	Ref    string
}

func (v *ValidatorRef) IsString() bool { return v != nil && v.Ref != "" }

// DSRule is either a trivial boolean or a *Rule node. The zero value is
// neither: IsBool is false and Node is nil; build rules with BoolRule or
// NodeRule.
type DSRule struct {
	IsBool bool
	Bool   bool
	Node   *Rule
}

// BoolRule constructs a trivial boolean DSRule.
func BoolRule(b bool) DSRule { return DSRule{IsBool: true, Bool: b} }

// NodeRule constructs a DSRule wrapping a Rule node.
func NodeRule(r *Rule) DSRule { return DSRule{Node: r} }

// Rule is a single schema node. Every field is optional; a parsed document
// carries zero or more of these set at once, per spec.md §3.
type Rule struct {
	Type *TypeEnum

	Valid     *ValidatorRef
	ValidMeta *ValidatorRef

	AllOf []DSRule
	AnyOf []DSRule
	OneOf []DSRule
	Not   *DSRule

	If   *DSRule
	Then *DSRule
	Else *DSRule

	Match      *regexp.Regexp
	MatchRaw   string
	MatchStart *int
	MatchStop  *int
	Rewrite    *string

	Next *DSRule

	Description *string
	Details     *bool
}

// HasMatchOrRewrite reports whether Stage 1 (match/rewrite) applies at all
// for this rule node.
func (r *Rule) HasMatchOrRewrite() bool {
	return r != nil && (r.Match != nil || r.Rewrite != nil)
}
