package analyzer

// isEmptyReport mirrors Python's truthiness test (`if not report`): nil,
// an empty map, an empty slice, and an empty/whitespace string are all
// "no report", not just nil.
func isEmptyReport(report any) bool {
	if report == nil {
		return true
	}
	switch v := report.(type) {
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case string:
		return v == ""
	}
	return false
}

// asMap returns report as a map[string]any if it is one, and ok=true.
func asMap(report any) (map[string]any, bool) {
	m, ok := report.(map[string]any)
	return m, ok
}

// firstField returns the first of fields present in m, and the key it
// matched under, mirroring the original handlers' "try each alias"
// pattern for reports that use inconsistent field naming across vendors.
func firstField(m map[string]any, fields ...string) (any, string, bool) {
	for _, f := range fields {
		if v, ok := m[f]; ok {
			return v, f, true
		}
	}
	return nil, "", false
}

// asFloat converts a JSON-decoded number (float64) or bool to a float64,
// returning ok=false for anything else.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// asInt truncates a JSON-decoded number to an int.
func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
