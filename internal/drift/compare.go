package drift

import (
	"reflect"
	"sort"
)

// CompareDocs recursively compares two structured documents and returns the
// field-level differences, each addressed by a dotted path. Keys are visited
// in lexicographic order so the output is reproducible. A value replaced by a
// value of another shape (scalar vs nested document) is reported as modified
// with the raw old and new values, not recursed into.
func CompareDocs(baseline, current map[string]any) []Change {
	return compare(baseline, current, "")
}

func compare(baseline, current map[string]any, prefix string) []Change {
	changes := []Change{}

	for _, key := range sortedKeys(baseline) {
		path := joinPath(prefix, key)
		baseVal := baseline[key]

		curVal, inCurrent := current[key]
		if !inCurrent {
			changes = append(changes, Change{
				Kind:     ChangeRemoved,
				Path:     path,
				OldValue: baseVal,
			})
			continue
		}

		baseDoc, baseIsDoc := baseVal.(map[string]any)
		curDoc, curIsDoc := curVal.(map[string]any)
		if baseIsDoc && curIsDoc {
			changes = append(changes, compare(baseDoc, curDoc, path)...)
			continue
		}

		if !reflect.DeepEqual(baseVal, curVal) {
			changes = append(changes, Change{
				Kind:     ChangeModified,
				Path:     path,
				OldValue: baseVal,
				NewValue: curVal,
			})
		}
	}

	for _, key := range sortedKeys(current) {
		if _, inBaseline := baseline[key]; inBaseline {
			continue
		}
		changes = append(changes, Change{
			Kind:     ChangeAdded,
			Path:     joinPath(prefix, key),
			NewValue: current[key],
		})
	}

	return changes
}

func sortedKeys(doc map[string]any) []string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
