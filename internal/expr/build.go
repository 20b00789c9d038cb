package expr

import (
	"fmt"
	"regexp"
)

// factory constructs one Expression variant from its decoded JSON object.
// Children are built by recursing into Build, so they are fully type-checked
// before the parent's own invariants run.
type factory func(node map[string]any, path string) (Expression, error)

// registry is the closed, compile-time-known dispatch table the design notes
// ask for in place of a runtime-extensible registration mechanism. It is
// fixed at package init and never mutated afterward.
var registry = map[string]factory{
	"AND":          buildAnd,
	"OR":           buildOr,
	"NOT":          buildNot,
	"EQUALS":       buildEquals,
	"CONTAINS":     buildContains,
	"REGEX":        buildRegex,
	"BODY":         buildBody,
	"QUERY":        buildQuery,
	"QUERY_ARRAY":  buildQueryArray,
	"PATH":         buildPath,
	"STRING":       buildString,
}

// Build is the sole entry point: it dispatches on the "type" discriminator
// and recursively builds children before type-checking the parent.
func Build(raw any, path string) (Expression, error) {
	node, ok := raw.(map[string]any)
	if !ok {
		return nil, newConfigError(path, "expected an expression object, got %T", raw)
	}
	typeVal, ok := node["type"]
	if !ok {
		return nil, newConfigError(path, "missing required field %q", "type")
	}
	typeName, ok := typeVal.(string)
	if !ok {
		return nil, newConfigError(path, "field %q must be a string", "type")
	}
	build, ok := registry[typeName]
	if !ok {
		return nil, newConfigError(path, "unknown expression type %q", typeName)
	}
	return build(node, path)
}

func requireField(node map[string]any, path, field string) (any, error) {
	v, ok := node[field]
	if !ok {
		return nil, newConfigError(path, "missing required field %q", field)
	}
	return v, nil
}

func requireArray(node map[string]any, path, field string) ([]any, error) {
	v, err := requireField(node, path, field)
	if err != nil {
		return nil, err
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, newConfigError(path, "field %q must be an array", field)
	}
	return arr, nil
}

func requireString(node map[string]any, path, field string) (string, error) {
	v, err := requireField(node, path, field)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", newConfigError(path, "field %q must be a string", field)
	}
	return s, nil
}

func buildAnd(node map[string]any, path string) (Expression, error) {
	items, err := requireArray(node, path, "expressions")
	if err != nil {
		return nil, err
	}
	children := make([]Expression, len(items))
	for i, item := range items {
		child, err := Build(item, fmt.Sprintf("%s.expressions[%d]", path, i))
		if err != nil {
			return nil, err
		}
		if child.ReturnType() != ReturnBool {
			return nil, newConfigError(path, "AND children must be bool, expressions[%d] is %s", i, child.ReturnType())
		}
		children[i] = child
	}
	return &andExpr{children: children}, nil
}

func buildOr(node map[string]any, path string) (Expression, error) {
	items, err := requireArray(node, path, "expressions")
	if err != nil {
		return nil, err
	}
	children := make([]Expression, len(items))
	for i, item := range items {
		child, err := Build(item, fmt.Sprintf("%s.expressions[%d]", path, i))
		if err != nil {
			return nil, err
		}
		if child.ReturnType() != ReturnBool {
			return nil, newConfigError(path, "OR children must be bool, expressions[%d] is %s", i, child.ReturnType())
		}
		children[i] = child
	}
	return &orExpr{children: children}, nil
}

func buildNot(node map[string]any, path string) (Expression, error) {
	raw, err := requireField(node, path, "expression")
	if err != nil {
		return nil, err
	}
	child, err := Build(raw, path+".expression")
	if err != nil {
		return nil, err
	}
	if child.ReturnType() != ReturnBool {
		return nil, newConfigError(path, "NOT child must be bool, got %s", child.ReturnType())
	}
	return &notExpr{child: child}, nil
}

func buildEquals(node map[string]any, path string) (Expression, error) {
	leftRaw, err := requireField(node, path, "left")
	if err != nil {
		return nil, err
	}
	rightRaw, err := requireField(node, path, "right")
	if err != nil {
		return nil, err
	}
	left, err := Build(leftRaw, path+".left")
	if err != nil {
		return nil, err
	}
	right, err := Build(rightRaw, path+".right")
	if err != nil {
		return nil, err
	}
	if left.ReturnType() != right.ReturnType() {
		return nil, newConfigError(path, "EQUALS left (%s) and right (%s) must share a return type", left.ReturnType(), right.ReturnType())
	}
	return &equalsExpr{left: left, right: right}, nil
}

func buildContains(node map[string]any, path string) (Expression, error) {
	listRaw, err := requireField(node, path, "list")
	if err != nil {
		return nil, err
	}
	valuesRaw, err := requireArray(node, path, "values")
	if err != nil {
		return nil, err
	}
	list, err := Build(listRaw, path+".list")
	if err != nil {
		return nil, err
	}
	if list.ReturnType() != ReturnStringList {
		return nil, newConfigError(path, "CONTAINS list must be list<string>, got %s", list.ReturnType())
	}
	values := make([]Expression, len(valuesRaw))
	for i, item := range valuesRaw {
		v, err := Build(item, fmt.Sprintf("%s.values[%d]", path, i))
		if err != nil {
			return nil, err
		}
		if v.ReturnType() != ReturnString {
			return nil, newConfigError(path, "CONTAINS values[%d] must be string, got %s", i, v.ReturnType())
		}
		values[i] = v
	}
	return &containsExpr{list: list, values: values}, nil
}

func buildRegex(node map[string]any, path string) (Expression, error) {
	valueRaw, err := requireField(node, path, "value")
	if err != nil {
		return nil, err
	}
	pattern, err := requireString(node, path, "pattern")
	if err != nil {
		return nil, err
	}
	value, err := Build(valueRaw, path+".value")
	if err != nil {
		return nil, err
	}
	if value.ReturnType() != ReturnString {
		return nil, newConfigError(path, "REGEX value must be string, got %s", value.ReturnType())
	}
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, newConfigError(path, "pattern %q does not compile: %w", pattern, err)
	}
	return &regexExpr{value: value, pattern: compiled}, nil
}

func buildBody(node map[string]any, path string) (Expression, error) {
	id, err := requireString(node, path, "id")
	if err != nil {
		return nil, err
	}
	return &bodyExpr{id: id}, nil
}

func buildQuery(node map[string]any, path string) (Expression, error) {
	id, err := requireString(node, path, "id")
	if err != nil {
		return nil, err
	}
	return &queryExpr{id: id}, nil
}

func buildQueryArray(node map[string]any, path string) (Expression, error) {
	id, err := requireString(node, path, "id")
	if err != nil {
		return nil, err
	}
	return &queryArrayExpr{id: id}, nil
}

func buildPath(node map[string]any, path string) (Expression, error) {
	id, err := requireString(node, path, "id")
	if err != nil {
		return nil, err
	}
	return &pathExpr{id: id}, nil
}

func buildString(node map[string]any, path string) (Expression, error) {
	value, err := requireString(node, path, "value")
	if err != nil {
		return nil, err
	}
	return &stringExpr{value: value}, nil
}
