// Package suggest holds the transient Suggestion type produced by every
// lookup source, the shared category inference table, and the aggregator
// that merges all sources into one ranked candidate list.
package suggest

import (
	"strings"
)

// DefaultConfidence is assigned when a source provides no confidence.
const DefaultConfidence = 0.5

// Suggestion is a candidate product description from one source. It is
// never written to the store directly; the operator resolves it first.
type Suggestion struct {
	Name        string  `json:"name"`
	Barcode     string  `json:"barcode,omitempty"`
	Category    string  `json:"category"`
	Price       float64 `json:"price,omitempty"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Brand       string  `json:"brand,omitempty"`

	// Source labels provenance, e.g. "Local DB", "Rakuten API(keyword)",
	// "AI estimate".
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`

	// ExistingProductID is set only when the suggestion originates from a
	// record already in the local store.
	ExistingProductID int64 `json:"existingProductId,omitempty"`
}

// IsValidBarcode reports whether s is an 8-18 digit string.
func IsValidBarcode(s string) bool {
	if len(s) < 8 || len(s) > 18 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DigitsOnly strips every non-digit rune from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeBarcode reduces s to digits and returns it only if the result
// is a valid barcode, else "".
func NormalizeBarcode(s string) string {
	d := DigitsOnly(s)
	if IsValidBarcode(d) {
		return d
	}
	return ""
}

// ClampConfidence forces c into [0,1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
