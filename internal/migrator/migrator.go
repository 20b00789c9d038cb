// Package migrator rewrites the legacy {key,type,value} params shorthand
// into canonical EQUALS expression trees. It is a pure, offline transform:
// no I/O beyond what its CLI wrapper performs.
package migrator

// Migrate recursively rewrites every array found under a literal "params"
// key, leaving all other structure untouched. Objects are rebuilt as Go
// maps, so key order is not preserved. It is idempotent: re-running it
// against already-canonical output is a no-op.
func Migrate(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, child := range v {
			if key == "params" {
				if arr, ok := child.([]any); ok {
					out[key] = migrateParamsArray(arr)
					continue
				}
			}
			out[key] = Migrate(child)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Migrate(item)
		}
		return out
	default:
		return value
	}
}

func migrateParamsArray(params []any) []any {
	out := make([]any, len(params))
	for i, item := range params {
		out[i] = migrateParam(item)
	}
	return out
}

// migrateParam rewrites a single shorthand element. Elements missing any of
// key/type/value — including already-canonical EQUALS nodes — pass through
// the generic Migrate recursion unchanged.
func migrateParam(item any) any {
	obj, ok := item.(map[string]any)
	if !ok {
		return Migrate(item)
	}
	key, hasKey := obj["key"]
	typ, hasType := obj["type"]
	val, hasValue := obj["value"]
	if !hasKey || !hasType || !hasValue {
		return Migrate(item)
	}
	return map[string]any{
		"type": "EQUALS",
		"left": map[string]any{
			"type": typ,
			"id":   key,
		},
		"right": map[string]any{
			"type":  "STRING",
			"value": val,
		},
	}
}
