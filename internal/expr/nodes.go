package expr

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Expression is the sum type every node satisfies. ReturnType is fixed at
// build time; Evaluate yields a Value of that same kind.
type Expression interface {
	ReturnType() ReturnType
	Evaluate(fb FetcherBundle) (Value, error)
}

// --- AND / OR / NOT ---------------------------------------------------

type andExpr struct{ children []Expression }

func (e *andExpr) ReturnType() ReturnType { return ReturnBool }

func (e *andExpr) Evaluate(fb FetcherBundle) (Value, error) {
	for _, child := range e.children {
		v, err := child.Evaluate(fb)
		if err != nil {
			return Value{}, err
		}
		if !v.Bool() {
			return BoolValue(false), nil
		}
	}
	return BoolValue(true), nil
}

type orExpr struct{ children []Expression }

func (e *orExpr) ReturnType() ReturnType { return ReturnBool }

func (e *orExpr) Evaluate(fb FetcherBundle) (Value, error) {
	for _, child := range e.children {
		v, err := child.Evaluate(fb)
		if err != nil {
			return Value{}, err
		}
		if v.Bool() {
			return BoolValue(true), nil
		}
	}
	return BoolValue(false), nil
}

type notExpr struct{ child Expression }

func (e *notExpr) ReturnType() ReturnType { return ReturnBool }

func (e *notExpr) Evaluate(fb FetcherBundle) (Value, error) {
	v, err := e.child.Evaluate(fb)
	if err != nil {
		return Value{}, err
	}
	return BoolValue(!v.Bool()), nil
}

// --- EQUALS / CONTAINS / REGEX ----------------------------------------

type equalsExpr struct{ left, right Expression }

func (e *equalsExpr) ReturnType() ReturnType { return ReturnBool }

func (e *equalsExpr) Evaluate(fb FetcherBundle) (Value, error) {
	lv, err := e.left.Evaluate(fb)
	if err != nil {
		return Value{}, err
	}
	rv, err := e.right.Evaluate(fb)
	if err != nil {
		return Value{}, err
	}
	return BoolValue(lv.Equal(rv)), nil
}

type containsExpr struct {
	list   Expression
	values []Expression
}

func (e *containsExpr) ReturnType() ReturnType { return ReturnBool }

func (e *containsExpr) Evaluate(fb FetcherBundle) (Value, error) {
	listVal, err := e.list.Evaluate(fb)
	if err != nil {
		return Value{}, err
	}
	haystack := make(map[string]struct{}, len(listVal.StringList()))
	for _, item := range listVal.StringList() {
		haystack[item] = struct{}{}
	}
	for _, valueExpr := range e.values {
		v, err := valueExpr.Evaluate(fb)
		if err != nil {
			return Value{}, err
		}
		if _, ok := haystack[v.String()]; !ok {
			return BoolValue(false), nil
		}
	}
	return BoolValue(true), nil
}

type regexExpr struct {
	value   Expression
	pattern *regexp.Regexp
}

func (e *regexExpr) ReturnType() ReturnType { return ReturnBool }

func (e *regexExpr) Evaluate(fb FetcherBundle) (Value, error) {
	v, err := e.value.Evaluate(fb)
	if err != nil {
		return Value{}, err
	}
	return BoolValue(e.pattern.MatchString(v.String())), nil
}

// --- BODY / QUERY / QUERY_ARRAY / PATH / STRING -----------------------

type bodyExpr struct{ id string }

func (e *bodyExpr) ReturnType() ReturnType { return ReturnString }

func (e *bodyExpr) Evaluate(fb FetcherBundle) (Value, error) {
	body := fb.Body()
	if body == nil {
		return StringValue(""), nil
	}
	return StringValue(stringifyBodyValue(body[e.id])), nil
}

type queryExpr struct{ id string }

func (e *queryExpr) ReturnType() ReturnType { return ReturnString }

func (e *queryExpr) Evaluate(fb FetcherBundle) (Value, error) {
	return StringValue(fb.Query(e.id)), nil
}

type queryArrayExpr struct{ id string }

func (e *queryArrayExpr) ReturnType() ReturnType { return ReturnStringList }

func (e *queryArrayExpr) Evaluate(fb FetcherBundle) (Value, error) {
	scalar := fb.Query(e.id)
	if strings.Contains(scalar, ",") {
		return StringListValue(strings.Split(scalar, ",")), nil
	}
	return StringListValue(fb.QueryArray(e.id)), nil
}

type pathExpr struct{ id string }

func (e *pathExpr) ReturnType() ReturnType { return ReturnString }

func (e *pathExpr) Evaluate(fb FetcherBundle) (Value, error) {
	return StringValue(fb.Path(e.id)), nil
}

type stringExpr struct{ value string }

func (e *stringExpr) ReturnType() ReturnType { return ReturnString }

func (e *stringExpr) Evaluate(FetcherBundle) (Value, error) {
	return StringValue(e.value), nil
}

// stringifyBodyValue is the canonical conversion for comparing body values as
// strings: numbers become their minimal decimal form, booleans become
// "true"/"false", missing or null values become "", and objects/arrays fall
// back to their compact JSON encoding.
func stringifyBodyValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
