package outfmt

import (
	"encoding/json"
	"reflect"
)

// normalizeJSONOutput wraps top-level lists as {"items": [...]} so every
// list command emits the same document shape.
func normalizeJSONOutput(v any) any {
	if v == nil {
		return v
	}
	switch v.(type) {
	case []byte, json.RawMessage:
		return v
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return v
		}
		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return v
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return v
	}
	items := rv.Interface()
	// a nil slice would encode as null and break .items[]
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		items = []any{}
	}
	return map[string]any{"items": items}
}
