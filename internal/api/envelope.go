package api

import (
	"bytes"
	"encoding/json"
)

// envelopeKind classifies a decoded response body.
type envelopeKind int

const (
	envelopeUnrecognized envelopeKind = iota
	envelopeObject                    // a bare entity or unknown object
	envelopeArray                     // a bare list
	envelopeWrapped                   // {data|item|resource: ...}
	envelopePage                      // {items, total, page, pageSize}
)

// wrapperKeys are probed in this order.
var wrapperKeys = []string{"data", "item", "resource"}

type record = map[string]any

// envelope is the closed set of response shapes the backend produces.
// Exactly one of the payload fields is meaningful for a given kind.
type envelope struct {
	kind    envelopeKind
	object  record // envelopeObject, and the outer object of wrapped/page
	array   []any  // envelopeArray, and items of envelopePage
	wrapped any    // envelopeWrapped inner value
}

// decodeEnvelope never fails: anything it cannot classify is unrecognized.
func decodeEnvelope(raw []byte) envelope {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return envelope{}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return envelope{}
	}
	return classify(v)
}

func classify(v any) envelope {
	switch t := v.(type) {
	case []any:
		return envelope{kind: envelopeArray, array: t}
	case record:
		if items, ok := t["items"]; ok && isPage(t) {
			list, _ := items.([]any)
			return envelope{kind: envelopePage, object: t, array: list}
		}
		for _, key := range wrapperKeys {
			if inner, ok := t[key]; ok && inner != nil {
				switch inner.(type) {
				case record, []any:
					return envelope{kind: envelopeWrapped, object: t, wrapped: inner}
				}
			}
		}
		return envelope{kind: envelopeObject, object: t}
	default:
		return envelope{}
	}
}

// isPage recognizes the paginated envelope. items alone is enough when it is a
// list or null; the counters are optional.
func isPage(obj record) bool {
	switch obj["items"].(type) {
	case []any, nil:
		return true
	}
	return false
}

// shape is a list of required alias groups; an object matches when each group
// has at least one key present.
type shape [][]string

func (s shape) matches(v any) (record, bool) {
	obj, ok := v.(record)
	if !ok {
		return nil, false
	}
	for _, group := range s {
		if !hasAny(obj, group) {
			return nil, false
		}
	}
	return obj, true
}

func hasAny(obj record, keys []string) bool {
	for _, k := range keys {
		if _, ok := lookup(obj, k); ok {
			return true
		}
	}
	return false
}

// entity extracts the single entity of the given shape, in priority order:
// first array element, wrapped value, then the object itself.
func (e envelope) entity(s shape) (record, bool) {
	switch e.kind {
	case envelopeArray:
		if len(e.array) == 0 {
			return nil, false
		}
		return s.matches(e.array[0])
	case envelopeWrapped:
		if obj, ok := s.matches(e.wrapped); ok {
			return obj, true
		}
		if list, ok := e.wrapped.([]any); ok && len(list) > 0 {
			if obj, ok := s.matches(list[0]); ok {
				return obj, true
			}
		}
		return s.matches(e.object)
	case envelopeObject, envelopePage:
		return s.matches(e.object)
	default:
		return nil, false
	}
}

// items returns the list elements that are objects. Shapes without a list
// yield an empty, non-nil slice.
func (e envelope) items() []record {
	var list []any
	switch e.kind {
	case envelopeArray, envelopePage:
		list = e.array
	case envelopeWrapped:
		list, _ = e.wrapped.([]any)
	}
	out := make([]record, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(record); ok {
			out = append(out, obj)
		}
	}
	return out
}
