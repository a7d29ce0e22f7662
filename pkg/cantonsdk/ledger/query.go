package ledger

import (
	"encoding/json"
	"reflect"
	"strings"
)

// OrKey is the query key holding a list of alternative predicates.
const OrKey = "$or"

// Query is a structural predicate over a contract payload. Every key is an
// equality constraint on the payload field at that (dotted) path, except
// OrKey whose value is an ordered list of alternative queries.
type Query map[string]any

// QueryFilter pairs a template with an optional predicate.
type QueryFilter struct {
	TemplateID string
	Query      Query
}

// Or builds a query matching any of the given alternatives.
func Or(alternatives ...Query) Query {
	alts := make([]any, 0, len(alternatives))
	for _, a := range alternatives {
		alts = append(alts, map[string]any(a))
	}
	return Query{OrKey: alts}
}

// Alternatives returns the alternatives under OrKey in their original order.
// It accepts both freshly built queries and queries decoded from JSON.
func (q Query) Alternatives() []Query {
	raw, ok := q[OrKey]
	if !ok {
		return nil
	}
	var out []Query
	switch alts := raw.(type) {
	case []Query:
		out = append(out, alts...)
	case []map[string]any:
		for _, a := range alts {
			out = append(out, Query(a))
		}
	case []any:
		for _, a := range alts {
			switch m := a.(type) {
			case Query:
				out = append(out, m)
			case map[string]any:
				out = append(out, Query(m))
			}
		}
	}
	return out
}

// Matches reports whether payload satisfies the query. An empty query
// matches every payload.
func (q Query) Matches(payload any) bool {
	doc := normalize(payload)
	for key, expected := range q {
		if key == OrKey {
			if !q.matchesAny(doc) {
				return false
			}
			continue
		}
		actual, ok := lookup(doc, key)
		if !ok {
			return false
		}
		if nested, ok := asQuery(expected); ok {
			if !nested.Matches(actual) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(normalize(expected), actual) {
			return false
		}
	}
	return true
}

func (q Query) matchesAny(doc any) bool {
	alts := q.Alternatives()
	for _, alt := range alts {
		if alt.Matches(doc) {
			return true
		}
	}
	return false
}

func asQuery(v any) (Query, bool) {
	switch m := v.(type) {
	case Query:
		return m, true
	case map[string]any:
		return Query(m), true
	}
	return nil, false
}

// lookup resolves a dotted path inside a decoded JSON document.
func lookup(doc any, path string) (any, bool) {
	cur := doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// normalize maps any JSON-compatible value onto the generic JSON shapes
// (map[string]any, []any, float64, string, bool, nil).
func normalize(v any) any {
	if raw, ok := v.(json.RawMessage); ok {
		var out any
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil
		}
		return out
	}
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}
