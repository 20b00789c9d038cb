package expr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// stubBundle is a FetcherBundle double that also counts how many times Body
// is invoked, used to assert short-circuiting.
type stubBundle struct {
	body       map[string]any
	query      map[string]string
	queryArray map[string][]string
	path       map[string]string
	bodyCalls  int
}

func (b *stubBundle) Body() map[string]any {
	b.bodyCalls++
	if b.body == nil {
		return map[string]any{}
	}
	return b.body
}

func (b *stubBundle) Query(key string) string { return b.query[key] }

func (b *stubBundle) QueryArray(key string) []string { return b.queryArray[key] }

func (b *stubBundle) Path(key string) string { return b.path[key] }

func boolNode(v bool) map[string]any {
	return map[string]any{
		"type": "EQUALS",
		"left": map[string]any{"type": "STRING", "value": "x"},
		"right": map[string]any{"type": "STRING", "value": map[bool]string{true: "x", false: "y"}[v]},
	}
}

func countingNode(counter *int, result bool) map[string]any {
	// BODY comparisons read through the bundle, so wrapping one in EQUALS
	// against a fixed STRING lets us observe whether a child was evaluated at
	// all (short-circuiting) via the bundle's bodyCalls counter.
	return map[string]any{
		"type": "EQUALS",
		"left": map[string]any{"type": "BODY", "id": "flag"},
		"right": map[string]any{"type": "STRING", "value": map[bool]string{true: "yes", false: "no"}[result]},
	}
}

func TestBuildAndShortCircuitsOnFirstFalse(t *testing.T) {
	bundle := &stubBundle{body: map[string]any{"flag": "yes"}}
	node := map[string]any{
		"type": "AND",
		"expressions": []any{
			countingNode(nil, false),
			countingNode(nil, true),
		},
	}
	expr, err := Build(node, "root")
	require.NoError(t, err)

	v, err := expr.Evaluate(bundle)
	require.NoError(t, err)
	require.False(t, v.Bool())
	require.Equal(t, 1, bundle.bodyCalls, "AND must stop evaluating after the first false child")
}

func TestBuildOrShortCircuitsOnFirstTrue(t *testing.T) {
	bundle := &stubBundle{body: map[string]any{"flag": "yes"}}
	node := map[string]any{
		"type": "OR",
		"expressions": []any{
			countingNode(nil, true),
			countingNode(nil, false),
		},
	}
	expr, err := Build(node, "root")
	require.NoError(t, err)

	v, err := expr.Evaluate(bundle)
	require.NoError(t, err)
	require.True(t, v.Bool())
	require.Equal(t, 1, bundle.bodyCalls, "OR must stop evaluating after the first true child")
}

func TestBuildNot(t *testing.T) {
	node := map[string]any{"type": "NOT", "expression": boolNode(true)}
	expr, err := Build(node, "root")
	require.NoError(t, err)
	v, err := expr.Evaluate(&stubBundle{})
	require.NoError(t, err)
	require.False(t, v.Bool())
}

func TestBuildEqualsRejectsMismatchedReturnTypes(t *testing.T) {
	node := map[string]any{
		"type": "EQUALS",
		"left": map[string]any{"type": "BODY", "id": "x"},
		"right": map[string]any{
			"type": "CONTAINS",
			"list": map[string]any{"type": "QUERY_ARRAY", "id": "x"},
			"values": []any{},
		},
	}
	_, err := Build(node, "root")
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestBuildContainsRequiresStringListLeft(t *testing.T) {
	node := map[string]any{
		"type":   "CONTAINS",
		"list":   map[string]any{"type": "BODY", "id": "x"},
		"values": []any{map[string]any{"type": "STRING", "value": "a"}},
	}
	_, err := Build(node, "root")
	require.Error(t, err)
}

func TestContainsEvaluatesTrueWhenAllValuesPresent(t *testing.T) {
	node := map[string]any{
		"type": "CONTAINS",
		"list": map[string]any{"type": "QUERY_ARRAY", "id": "tag"},
		"values": []any{
			map[string]any{"type": "STRING", "value": "beta"},
			map[string]any{"type": "STRING", "value": "alpha"},
		},
	}
	expr, err := Build(node, "root")
	require.NoError(t, err)

	bundle := &stubBundle{queryArray: map[string][]string{"tag": {"alpha", "beta", "gamma"}}}
	v, err := expr.Evaluate(bundle)
	require.NoError(t, err)
	require.True(t, v.Bool())
}

func TestQueryArraySplitsOnCommaOverRepetition(t *testing.T) {
	node := map[string]any{"type": "QUERY_ARRAY", "id": "tag"}
	expr, err := Build(node, "root")
	require.NoError(t, err)

	bundle := &stubBundle{
		query:      map[string]string{"tag": "alpha,beta"},
		queryArray: map[string][]string{"tag": {"alpha,beta", "gamma"}},
	}
	v, err := expr.Evaluate(bundle)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "beta"}, v.StringList())
}

func TestQueryArrayFallsBackToRepeatedValuesWithoutComma(t *testing.T) {
	node := map[string]any{"type": "QUERY_ARRAY", "id": "tag"}
	expr, err := Build(node, "root")
	require.NoError(t, err)

	bundle := &stubBundle{
		query:      map[string]string{"tag": "alpha"},
		queryArray: map[string][]string{"tag": {"alpha", "beta"}},
	}
	v, err := expr.Evaluate(bundle)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "beta"}, v.StringList())
}

func TestRegexMatchesAgainstQueryValue(t *testing.T) {
	node := map[string]any{
		"type":    "REGEX",
		"value":   map[string]any{"type": "QUERY", "id": "q"},
		"pattern": "^item-[0-9]+$",
	}
	expr, err := Build(node, "root")
	require.NoError(t, err)

	bundle := &stubBundle{query: map[string]string{"q": "item-42"}}
	v, err := expr.Evaluate(bundle)
	require.NoError(t, err)
	require.True(t, v.Bool())

	bundle2 := &stubBundle{query: map[string]string{"q": "nope"}}
	v2, err := expr.Evaluate(bundle2)
	require.NoError(t, err)
	require.False(t, v2.Bool())
}

func TestRegexRejectsUncompilablePattern(t *testing.T) {
	node := map[string]any{
		"type":    "REGEX",
		"value":   map[string]any{"type": "QUERY", "id": "q"},
		"pattern": "(unclosed",
	}
	_, err := Build(node, "root")
	require.Error(t, err)
}

func TestBodyStringifiesNumbersBoolsAndMissing(t *testing.T) {
	bundle := &stubBundle{body: map[string]any{
		"count":   float64(3),
		"enabled": true,
		"nested":  map[string]any{"a": 1.0},
	}}

	for _, tc := range []struct {
		id   string
		want string
	}{
		{"count", "3"},
		{"enabled", "true"},
		{"missing", ""},
		{"nested", `{"a":1}`},
	} {
		expr, err := Build(map[string]any{"type": "BODY", "id": tc.id}, "root")
		require.NoError(t, err)
		v, err := expr.Evaluate(bundle)
		require.NoError(t, err)
		require.Equal(t, tc.want, v.String())
	}
}

func TestPathReadsFromBundle(t *testing.T) {
	expr, err := Build(map[string]any{"type": "PATH", "id": "id"}, "root")
	require.NoError(t, err)
	bundle := &stubBundle{path: map[string]string{"id": "42"}}
	v, err := expr.Evaluate(bundle)
	require.NoError(t, err)
	require.Equal(t, "42", v.String())
}

func TestBuildRejectsUnknownType(t *testing.T) {
	_, err := Build(map[string]any{"type": "BOGUS"}, "root")
	require.Error(t, err)
}

func TestBuildRejectsMissingTypeField(t *testing.T) {
	_, err := Build(map[string]any{}, "root")
	require.Error(t, err)
}

func TestBuildRejectsNonObjectNode(t *testing.T) {
	_, err := Build("not-an-object", "root")
	require.Error(t, err)
}
