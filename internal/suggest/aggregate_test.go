package suggest

import (
	"reflect"
	"strings"
	"testing"

	"github.com/hikkoshi-box/hikkoshigo/internal/models"
)

func TestMergeDropsNamelessEntries(t *testing.T) {
	out := Merge([]Suggestion{
		{Name: "   ", Confidence: 0.9},
		{Name: "コーヒー豆", Confidence: 0.5},
	})
	if len(out) != 1 || out[0].Name != "コーヒー豆" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestMergeDeduplicatesByBarcode(t *testing.T) {
	out := Merge([]Suggestion{
		{Name: "コーヒー豆 A", Barcode: "4901234567894", Confidence: 0.6},
		{Name: "コーヒー豆 B", Barcode: "4901234567894", Confidence: 0.9},
	})
	if len(out) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(out))
	}
	if out[0].Confidence != 0.9 || out[0].Name != "コーヒー豆 B" {
		t.Errorf("kept wrong entry: %+v", out[0])
	}
}

func TestMergeTieKeepsEarlierEntry(t *testing.T) {
	out := Merge([]Suggestion{
		{Name: "first", Barcode: "4901234567894", Confidence: 0.7, Source: "A"},
		{Name: "second", Barcode: "4901234567894", Confidence: 0.7, Source: "B"},
	})
	if len(out) != 1 || out[0].Source != "A" {
		t.Fatalf("tie should keep the earlier entry: %+v", out)
	}
}

func TestMergeDeduplicatesByNameWhenNoBarcode(t *testing.T) {
	out := Merge([]Suggestion{
		{Name: "Widget Pro", Confidence: 0.5},
		{Name: "widget pro", Confidence: 0.8},
	})
	if len(out) != 1 || out[0].Confidence != 0.8 {
		t.Fatalf("case-insensitive name dedup failed: %+v", out)
	}
}

func TestMergeSortOrder(t *testing.T) {
	out := Merge([]Suggestion{
		{Name: "b", Confidence: 0.5},
		{Name: "a", Confidence: 0.5},
		{Name: "local", Confidence: 0.5, ExistingProductID: 7},
		{Name: "top", Confidence: 0.9},
	})
	names := make([]string, len(out))
	for i, s := range out {
		names[i] = s.Name
	}
	want := []string{"top", "local", "a", "b"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("order = %v, want %v", names, want)
	}
}

func TestMergeNormalizesFields(t *testing.T) {
	out := Merge([]Suggestion{
		{Name: "x", Barcode: "4-901234-567894", Category: "nonsense", Confidence: 1.7},
	})
	if out[0].Barcode != "4901234567894" {
		t.Errorf("barcode not normalized: %q", out[0].Barcode)
	}
	if out[0].Category != models.CategoryOther {
		t.Errorf("category not defaulted: %q", out[0].Category)
	}
	if out[0].Confidence != 1.0 {
		t.Errorf("confidence not clamped: %v", out[0].Confidence)
	}
}

func TestMergeDefaultsMissingConfidence(t *testing.T) {
	out := Merge([]Suggestion{
		{Name: "confident", Confidence: 0.3},
		{Name: "unsure"},
	})
	if len(out) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(out))
	}
	// The defaulted entry outranks the explicit 0.3
	if out[0].Name != "unsure" || out[0].Confidence != DefaultConfidence {
		t.Errorf("missing confidence not defaulted: %+v", out[0])
	}
	if out[1].Confidence != 0.3 {
		t.Errorf("explicit confidence changed: %+v", out[1])
	}
}

func TestMergeIdempotent(t *testing.T) {
	in := []Suggestion{
		{Name: "a", Barcode: "4901234567894", Confidence: 0.9},
		{Name: "b", Confidence: 0.7, ExistingProductID: 3},
		{Name: "c", Confidence: 0.7},
		{Name: "a dup", Barcode: "4901234567894", Confidence: 0.4},
	}
	once := Merge(in)
	twice := Merge(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Merge not idempotent:\n once: %+v\ntwice: %+v", once, twice)
	}
}

func TestMergeNoDuplicateKeys(t *testing.T) {
	out := Merge([]Suggestion{
		{Name: "a", Barcode: "4901234567894", Confidence: 0.9},
		{Name: "A", Confidence: 0.8},
		{Name: "a", Confidence: 0.7},
		{Name: "b", Barcode: "4901234567894", Confidence: 0.6},
	})
	seen := make(map[string]bool)
	for _, s := range out {
		key := "n:" + strings.ToLower(s.Name)
		if s.Barcode != "" {
			key = "b:" + s.Barcode
		}
		if seen[key] {
			t.Errorf("duplicate key %q in output", key)
		}
		seen[key] = true
	}
}
