package suggest

import (
	"sort"
	"strings"
)

// Merge combines suggestions from all sources into one ranked list.
//
// Entries without a name are dropped; barcode and category are normalized;
// a missing confidence becomes DefaultConfidence; duplicates (same barcode,
// or same lowercased name when no barcode) keep the higher-confidence
// entry; the survivors sort by confidence descending, then
// local-record-backed before not, then name ascending.
//
// Pure and deterministic given input order; Merge(Merge(xs)) == Merge(xs).
func Merge(suggestions []Suggestion) []Suggestion {
	byKey := make(map[string]Suggestion)
	var order []string

	for _, s := range suggestions {
		if strings.TrimSpace(s.Name) == "" {
			continue
		}
		s.Barcode = NormalizeBarcode(s.Barcode)
		s.Category = NormalizeCategory(s.Category)
		s.Confidence = ClampConfidence(s.Confidence)
		if s.Confidence == 0 {
			s.Confidence = DefaultConfidence
		}

		key := "n:" + strings.ToLower(s.Name)
		if s.Barcode != "" {
			key = "b:" + s.Barcode
		}

		prev, seen := byKey[key]
		if !seen {
			byKey[key] = s
			order = append(order, key)
			continue
		}
		// Non-replacing compare: ties keep the earlier entry.
		if s.Confidence > prev.Confidence {
			byKey[key] = s
		}
	}

	merged := make([]Suggestion, 0, len(order))
	for _, key := range order {
		merged = append(merged, byKey[key])
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if (a.ExistingProductID != 0) != (b.ExistingProductID != 0) {
			return a.ExistingProductID != 0
		}
		return a.Name < b.Name
	})

	return merged
}
