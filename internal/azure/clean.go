package azure

import "encoding/json"

// Raw-response keys carrying positional or confidence metadata that the
// cleaned output never includes.
var metadataKeys = map[string]struct{}{
	"boundingRegions": {},
	"polygon":         {},
	"spans":           {},
	"confidence":      {},
	"type":            {},
}

// cleanFieldSet decodes the raw field map and strips it down to values.
func cleanFieldSet(fields map[string]json.RawMessage) (map[string]any, error) {
	cleaned := make(map[string]any, len(fields))
	for name, raw := range fields {
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, err
		}
		cleaned[name] = CleanValue(value)
	}
	out, _ := PruneEmpty(cleaned).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// CleanValue unwraps an Azure field value recursively: typed value
// wrappers collapse to their payload, metadata keys disappear, and a
// wrapper left empty falls back to its raw content string.
func CleanValue(data any) any {
	switch v := data.(type) {
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = CleanValue(item)
		}
		return out
	case map[string]any:
		for _, key := range []string{
			"valueString", "valueNumber", "valueDate", "valueTime",
			"valuePhoneNumber", "valueBoolean", "valueSelectionMark",
		} {
			if inner, ok := v[key]; ok {
				return inner
			}
		}
		if inner, ok := v["valueArray"]; ok {
			return CleanValue(inner)
		}
		if inner, ok := v["valueObject"]; ok {
			if obj, ok := inner.(map[string]any); ok {
				out := make(map[string]any, len(obj))
				for k, item := range obj {
					out[k] = CleanValue(item)
				}
				return out
			}
			return CleanValue(inner)
		}

		cleaned := make(map[string]any)
		for k, item := range v {
			if _, skip := metadataKeys[k]; skip {
				continue
			}
			cleaned[k] = CleanValue(item)
		}
		if len(cleaned) == 0 {
			if content, ok := v["content"]; ok {
				return content
			}
		}
		return cleaned
	default:
		return data
	}
}

// PruneEmpty removes nil values, empty strings, empty maps and empty
// slices recursively. The pruning runs bottom-up so containers emptied
// by their children disappear too.
func PruneEmpty(data any) any {
	switch v := data.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			pruned := PruneEmpty(item)
			if isEmpty(pruned) {
				continue
			}
			out[k] = pruned
		}
		return out
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			pruned := PruneEmpty(item)
			if isEmpty(pruned) {
				continue
			}
			out = append(out, pruned)
		}
		return out
	default:
		return data
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}
