package normalize

import "strings"

// displayKeys are tried in order when an object has to be shown as a single cell.
var displayKeys = []string{"title", "jobTitle", "position", "name", "text", "value"}

// Coerce flattens any input value into the string stored in a grid cell.
//
// Lists are joined with ", " (non-string elements are rendered as JSON), objects
// collapse to their first truthy display key or to their JSON text.
func Coerce(v Value) string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.text
	case KindNumber:
		return v.numberText()
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindList:
		parts := make([]string, 0, len(v.list))
		for _, item := range v.list {
			if item.kind == KindString {
				parts = append(parts, item.text)
				continue
			}
			parts = append(parts, jsonText(item))
		}
		return strings.Join(parts, ", ")
	case KindObject:
		for _, key := range displayKeys {
			if nested, ok := v.obj.Lookup(key); ok && nested.Truthy() {
				return Coerce(nested)
			}
		}
		return jsonText(v)
	}
	return ""
}

func jsonText(v Value) string {
	b, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}
