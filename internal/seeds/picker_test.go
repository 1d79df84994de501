package seeds

import (
	"reflect"
	"testing"
)

func TestPickReturnsRequestedCount(t *testing.T) {
	p := NewPicker(func() float64 { return 0.5 })
	picks := p.Pick(3, nil)
	if len(picks) != 3 {
		t.Fatalf("expected 3 picks, got %d", len(picks))
	}

	seen := make(map[string]struct{})
	for _, pick := range picks {
		if pick.Reference == "" {
			t.Error("pick has empty reference")
		}
		if _, dup := seen[pick.Reference]; dup {
			t.Errorf("duplicate pick %q", pick.Reference)
		}
		seen[pick.Reference] = struct{}{}
	}
}

func TestPickSkipsExcluded(t *testing.T) {
	p := NewPicker(func() float64 { return 0 })
	excluded := []string{"Genesis 1:1-31", "psalm   23", "John 3:1–21"}
	picks := p.Pick(CatalogSize(), excluded)

	if len(picks) != CatalogSize()-len(excluded) {
		t.Fatalf("expected %d picks, got %d", CatalogSize()-len(excluded), len(picks))
	}
	for _, pick := range picks {
		switch pick.Reference {
		case "Genesis 1:1-31", "Psalm 23", "John 3:1-21":
			t.Errorf("excluded passage %q was picked", pick.Reference)
		}
	}
}

func TestPickEmptyWhenEverythingExcluded(t *testing.T) {
	p := NewPicker(func() float64 { return 0.3 })
	var all []string
	for _, entry := range catalog {
		all = append(all, entry.Reference)
	}
	picks := p.Pick(5, all)
	if len(picks) != 0 {
		t.Fatalf("expected no picks, got %d", len(picks))
	}
}

func TestPickSpansCategories(t *testing.T) {
	p := NewPicker(func() float64 { return 0 })
	picks := p.Pick(3, nil)

	categories := make(map[string]struct{})
	byRef := make(map[string]string, len(catalog))
	for _, entry := range catalog {
		byRef[entry.Reference] = entry.Category
	}
	for _, pick := range picks {
		categories[byRef[pick.Reference]] = struct{}{}
	}
	if len(categories) != 3 {
		t.Errorf("expected picks from 3 distinct categories, got %d", len(categories))
	}
}

func TestPickForDateIsReproducible(t *testing.T) {
	a := PickForDate("2026-01-05", 3, nil)
	b := PickForDate("2026-01-05", 3, nil)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same date produced different ballots: %v vs %v", a, b)
	}
}

func TestPickIndexClampsSampleAboveOne(t *testing.T) {
	if got := pickIndex(func() float64 { return 1.0 }, 4); got != 3 {
		t.Errorf("expected clamped index 3, got %d", got)
	}
	if got := pickIndex(func() float64 { return -0.5 }, 4); got != 0 {
		t.Errorf("expected clamped index 0, got %d", got)
	}
}
