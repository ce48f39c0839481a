// Package catalog contains the lookup clients that turn a barcode or a
// keyword into candidate suggestions: the local record store, the open
// product-facts catalogs, and the Rakuten Ichiba search API.
//
// Every client absorbs its own failures. Transport, credential and parse
// errors are logged and collapse to an empty result, so a dead external
// service only ever costs the operator candidates, never the whole flow.
package catalog

import (
	"context"

	"github.com/hikkoshi-box/hikkoshigo/internal/suggest"
)

// BarcodeLookup resolves a barcode into zero or more suggestions.
type BarcodeLookup interface {
	LookupByBarcode(ctx context.Context, barcode string) []suggest.Suggestion
}

// KeywordLookup resolves a free-text keyword into zero or more suggestions.
type KeywordLookup interface {
	LookupByKeyword(ctx context.Context, keyword string, hits int) []suggest.Suggestion
}
