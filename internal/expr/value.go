// Package expr implements the matcher expression tree: a closed tagged sum of
// node variants that the builder constructs from JSON and the evaluator runs
// against a per-request FetcherBundle.
package expr

import "fmt"

// ReturnType is the declared result type of an Expression node.
type ReturnType int

const (
	ReturnBool ReturnType = iota
	ReturnString
	ReturnStringList
)

func (t ReturnType) String() string {
	switch t {
	case ReturnBool:
		return "bool"
	case ReturnString:
		return "string"
	case ReturnStringList:
		return "list<string>"
	default:
		return "unknown"
	}
}

// Value is the tagged union produced by Evaluate: exactly one of Bool,
// String, or StringList is meaningful depending on Kind.
type Value struct {
	kind    ReturnType
	boolV   bool
	stringV string
	listV   []string
}

func BoolValue(b bool) Value  { return Value{kind: ReturnBool, boolV: b} }
func StringValue(s string) Value {
	return Value{kind: ReturnString, stringV: s}
}
func StringListValue(l []string) Value {
	return Value{kind: ReturnStringList, listV: l}
}

func (v Value) Kind() ReturnType { return v.kind }

func (v Value) Bool() bool { return v.boolV }

func (v Value) String() string { return v.stringV }

func (v Value) StringList() []string { return v.listV }

// Equal implements the structural equality EQUALS relies on. Both sides are
// expected to share a return type (enforced at build time), so comparisons
// across kinds are a defect in the builder, not something callers handle.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case ReturnBool:
		return v.boolV == other.boolV
	case ReturnString:
		return v.stringV == other.stringV
	case ReturnStringList:
		return stringSliceEqual(v.listV, other.listV)
	default:
		return false
	}
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (v Value) GoString() string {
	switch v.kind {
	case ReturnBool:
		return fmt.Sprintf("bool(%v)", v.boolV)
	case ReturnString:
		return fmt.Sprintf("string(%q)", v.stringV)
	case ReturnStringList:
		return fmt.Sprintf("list(%v)", v.listV)
	default:
		return "invalid"
	}
}
