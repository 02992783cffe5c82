package drift

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genDoc generates random flat structured documents
func genDoc() gopter.Gen {
	return gen.MapOf(gen.Identifier(), gen.AlphaString()).Map(func(m map[string]string) map[string]any {
		doc := make(map[string]any, len(m))
		for k, v := range m {
			doc[k] = v
		}
		return doc
	})
}

// genNestedDoc generates documents with one nested level
func genNestedDoc() gopter.Gen {
	return gopter.CombineGens(genDoc(), genDoc()).Map(func(vals []interface{}) map[string]any {
		doc := vals[0].(map[string]any)
		doc["nested"] = vals[1].(map[string]any)
		return doc
	})
}

// TestSelfDiffIsEmpty checks that no document drifts against itself.
func TestSelfDiffIsEmpty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("diff(D, D) is empty", prop.ForAll(
		func(doc map[string]any) bool {
			return len(CompareDocs(doc, doc)) == 0
		},
		genNestedDoc(),
	))

	properties.TestingRun(t)
}

// TestDiffIsSymmetric checks that swapping baseline and current turns every
// added into removed (and vice versa), swaps old/new on modified entries, and
// preserves the set of paths.
func TestDiffIsSymmetric(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("swapping inputs mirrors the diff", prop.ForAll(
		func(baseline, current map[string]any) bool {
			forward := CompareDocs(baseline, current)
			backward := CompareDocs(current, baseline)

			if len(forward) != len(backward) {
				return false
			}

			mirrored := make(map[string]Change, len(backward))
			for _, c := range backward {
				mirrored[c.Path] = c
			}

			for _, c := range forward {
				m, ok := mirrored[c.Path]
				if !ok {
					return false
				}
				switch c.Kind {
				case ChangeAdded:
					if m.Kind != ChangeRemoved || !reflect.DeepEqual(m.OldValue, c.NewValue) {
						return false
					}
				case ChangeRemoved:
					if m.Kind != ChangeAdded || !reflect.DeepEqual(m.NewValue, c.OldValue) {
						return false
					}
				case ChangeModified:
					if m.Kind != ChangeModified ||
						!reflect.DeepEqual(m.OldValue, c.NewValue) ||
						!reflect.DeepEqual(m.NewValue, c.OldValue) {
						return false
					}
				}
			}
			return true
		},
		genNestedDoc(),
		genNestedDoc(),
	))

	properties.TestingRun(t)
}

func TestCompareDocsNestedModification(t *testing.T) {
	baseline := map[string]any{
		"auth": map[string]any{"enabled": true},
	}
	current := map[string]any{
		"auth": map[string]any{"enabled": false},
	}

	changes := CompareDocs(baseline, current)

	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d: %+v", len(changes), changes)
	}
	c := changes[0]
	if c.Kind != ChangeModified {
		t.Errorf("expected modified, got %s", c.Kind)
	}
	if c.Path != "auth.enabled" {
		t.Errorf("expected path 'auth.enabled', got %q", c.Path)
	}
	if c.OldValue != true || c.NewValue != false {
		t.Errorf("expected old=true new=false, got old=%v new=%v", c.OldValue, c.NewValue)
	}
}

func TestCompareDocsTypeChangeIsModified(t *testing.T) {
	baseline := map[string]any{
		"limits": map[string]any{"rate": 10.0},
	}
	current := map[string]any{
		"limits": "unlimited",
	}

	changes := CompareDocs(baseline, current)

	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d: %+v", len(changes), changes)
	}
	c := changes[0]
	if c.Kind != ChangeModified {
		t.Errorf("expected modified for scalar/document replacement, got %s", c.Kind)
	}
	if c.Path != "limits" {
		t.Errorf("expected path 'limits', got %q", c.Path)
	}
	if _, ok := c.OldValue.(map[string]any); !ok {
		t.Errorf("expected raw old value, got %T", c.OldValue)
	}
}

func TestCompareDocsEmptySides(t *testing.T) {
	doc := map[string]any{"a": "1", "b": "2"}

	added := CompareDocs(map[string]any{}, doc)
	if len(added) != 2 {
		t.Fatalf("expected 2 added entries, got %d", len(added))
	}
	for _, c := range added {
		if c.Kind != ChangeAdded {
			t.Errorf("expected added, got %s for %s", c.Kind, c.Path)
		}
	}

	removed := CompareDocs(doc, map[string]any{})
	if len(removed) != 2 {
		t.Fatalf("expected 2 removed entries, got %d", len(removed))
	}
	for _, c := range removed {
		if c.Kind != ChangeRemoved {
			t.Errorf("expected removed, got %s for %s", c.Kind, c.Path)
		}
	}
}

func TestCompareDocsDeterministicOrder(t *testing.T) {
	baseline := map[string]any{"b": "1", "a": "1", "c": "1"}
	current := map[string]any{"b": "2", "a": "2", "c": "2"}

	first := CompareDocs(baseline, current)
	for i := 0; i < 10; i++ {
		if got := CompareDocs(baseline, current); !reflect.DeepEqual(got, first) {
			t.Fatalf("diff order not deterministic: %+v vs %+v", got, first)
		}
	}

	if first[0].Path != "a" || first[1].Path != "b" || first[2].Path != "c" {
		t.Errorf("expected lexicographic path order, got %+v", first)
	}
}
