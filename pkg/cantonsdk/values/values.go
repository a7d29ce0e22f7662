// Package values provides helper utilities for working with
// contract payloads decoded from the JSON Ledger API.
package values

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Record is a decoded contract payload.
type Record = map[string]any

// Decode parses a raw payload into a Record. Anything that is not a JSON
// object yields an empty record and ok=false.
func Decode(raw json.RawMessage) (Record, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Record{}, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out Record
	if err := dec.Decode(&out); err != nil || out == nil {
		return Record{}, false
	}
	return out, true
}

// Field resolves a dotted path inside a record.
func Field(r Record, path string) any {
	var cur any = r
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

// Text extracts a text value.
func Text(v any) string {
	s, _ := v.(string)
	return s
}

// Party extracts a party value.
func Party(v any) string {
	return Text(v)
}

// Nested extracts a nested record.
func Nested(v any) (Record, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// Numeric extracts a numeric value as a decimal. Daml numerics arrive as
// strings, but plain JSON numbers are accepted too.
func Numeric(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	}
	return decimal.Zero, false
}
