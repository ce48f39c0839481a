package catalog

import (
	"context"
	"log"

	"github.com/hikkoshi-box/hikkoshigo/internal/models"
	"github.com/hikkoshi-box/hikkoshigo/internal/store"
	"github.com/hikkoshi-box/hikkoshigo/internal/suggest"
)

const localNameSearchLimit = 8

// LocalClient looks up suggestions in the local record store. A local hit
// is authoritative: confidence 1.0 and the backing product id attached, so
// the aggregator ranks "you already own this" first.
type LocalClient struct {
	store store.ProductStore
}

// NewLocalClient creates a client over the given record store.
func NewLocalClient(s store.ProductStore) *LocalClient {
	return &LocalClient{store: s}
}

// LookupByBarcode finds the one record with an exactly matching barcode.
func (c *LocalClient) LookupByBarcode(ctx context.Context, barcode string) []suggest.Suggestion {
	if !suggest.IsValidBarcode(barcode) {
		return nil
	}
	p, err := c.store.FindByBarcode(barcode)
	if err != nil {
		log.Printf("⚠️ Local lookup failed for %s: %v", barcode, err)
		return nil
	}
	if p == nil {
		return nil
	}
	return []suggest.Suggestion{fromProduct(p, "exact barcode match")}
}

// LookupByKeyword substring-matches name, barcode and description.
func (c *LocalClient) LookupByKeyword(ctx context.Context, keyword string, hits int) []suggest.Suggestion {
	if keyword == "" {
		return nil
	}
	if hits <= 0 || hits > localNameSearchLimit {
		hits = localNameSearchLimit
	}
	products, err := c.store.SearchByText(keyword, hits)
	if err != nil {
		log.Printf("⚠️ Local search failed for %q: %v", keyword, err)
		return nil
	}
	suggestions := make([]suggest.Suggestion, 0, len(products))
	for i := range products {
		suggestions = append(suggestions, fromProduct(&products[i], "name match"))
	}
	return suggestions
}

func fromProduct(p *models.Product, reason string) suggest.Suggestion {
	return suggest.Suggestion{
		Name:              p.Name,
		Barcode:           p.Barcode,
		Category:          p.Category,
		Price:             p.Price,
		Description:       p.Description,
		ImageURL:          p.ImageURL,
		Brand:             p.Brand,
		Source:            "Local DB",
		Confidence:        1.0,
		Reason:            reason,
		ExistingProductID: p.ID,
	}
}
