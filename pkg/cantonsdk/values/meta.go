package values

const MetaKeySymbol = "splice.chainsafe.io/symbol"

// MetaSymbol extracts token symbol from a Splice Metadata value.
// Splice Metadata is a Record { values : TextMap Text }.
func MetaSymbol(v any) string {
	return DecodeMetadata(v)[MetaKeySymbol]
}

// DecodeMetadata extracts a Splice Metadata { values : TextMap Text } into a Go map.
func DecodeMetadata(v any) map[string]string {
	out := make(map[string]string)
	rec, ok := Nested(v)
	if !ok {
		return out
	}
	vals, ok := Nested(rec["values"])
	if !ok {
		return out
	}
	for k, val := range vals {
		if s := Text(val); s != "" {
			out[k] = s
		}
	}
	return out
}
