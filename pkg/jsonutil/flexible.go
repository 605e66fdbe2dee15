package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlexibleStringValue converts a json.RawMessage to a string, handling payloads where
// the backend sends numbers or booleans instead of strings. Returns empty string for null/empty.
func FlexibleStringValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	// json.Number keeps integer ids exact beyond 2^53
	var numVal json.Number
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if i, err := numVal.Int64(); err == nil {
			return fmt.Sprintf("%d", i)
		}
		if f, err := numVal.Float64(); err == nil {
			return fmt.Sprintf("%g", f)
		}
		return numVal.String()
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return fmt.Sprintf("%t", boolVal)
	}

	// Objects and arrays are rendered compactly
	return strings.TrimSpace(string(raw))
}

// FlexibleAnyValue renders a decoded JSON value (as produced by encoding/json into
// interface{}) the same way FlexibleStringValue renders its raw form.
func FlexibleAnyValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return FlexibleStringValue(raw)
}
