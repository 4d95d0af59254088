package normalize

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Resolve picks the value for one destination field out of a heterogeneous record.
//
// Lookup order: exact key for every variant, then case-insensitive key equality for
// every variant, then case-insensitive substring for every variant, then the dotted
// nested paths. Nothing found yields "".
func Resolve(record Record, variants []string, paths []string) string {
	if v, ok := resolveValue(record, variants, paths); ok {
		return Coerce(v)
	}
	return ""
}

func resolveValue(record Record, variants []string, paths []string) (Value, bool) {
	for _, name := range variants {
		if v, ok := record.Lookup(name); ok {
			return v, true
		}
	}

	// cases.Caser is stateful, one per call keeps Resolve safe for concurrent use.
	lower := cases.Lower(language.Und)
	fold := func(s string) string {
		return lower.String(strings.TrimSpace(s))
	}

	keys := record.Keys()
	folded := make([]string, len(keys))
	for i, key := range keys {
		folded[i] = fold(key)
	}

	for _, name := range variants {
		want := fold(name)
		for i, key := range folded {
			if key == want {
				return record.values[keys[i]], true
			}
		}
	}

	for _, name := range variants {
		want := fold(name)
		if want == "" {
			continue
		}
		for i, key := range folded {
			if strings.Contains(key, want) {
				return record.values[keys[i]], true
			}
		}
	}

	for _, path := range paths {
		if v, ok := LookupPath(record, path); ok {
			return v, true
		}
	}

	return Value{}, false
}

// LookupPath walks a dotted path ("currentPosition.tenureAtPosition.numYears").
// Numeric segments index into lists. Any missing step means no value.
func LookupPath(record Record, path string) (Value, bool) {
	if path == "" {
		return Value{}, false
	}

	current := Object(record)
	for _, segment := range strings.Split(path, ".") {
		switch current.kind {
		case KindObject:
			next, ok := current.obj.Lookup(segment)
			if !ok {
				return Value{}, false
			}
			current = next
		case KindList:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(current.list) {
				return Value{}, false
			}
			current = current.list[idx]
		default:
			return Value{}, false
		}
	}
	return current, true
}
