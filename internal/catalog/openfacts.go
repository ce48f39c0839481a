package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/hikkoshi-box/hikkoshigo/internal/suggest"
	"github.com/spf13/cast"
)

// Descriptor identifies one topical catalog in the Open *Facts family.
type Descriptor struct {
	Name    string
	BaseURL string
}

// DefaultDescriptors is the lookup order: general goods first, then the
// topical siblings. First catalog that knows the barcode wins.
var DefaultDescriptors = []Descriptor{
	{Name: "Open Food Facts", BaseURL: "https://world.openfoodfacts.org"},
	{Name: "Open Beauty Facts", BaseURL: "https://world.openbeautyfacts.org"},
	{Name: "Open Pet Food Facts", BaseURL: "https://world.openpetfoodfacts.org"},
	{Name: "Open Products Facts", BaseURL: "https://world.openproductsfacts.org"},
}

// OpenFactsClient looks up barcodes against an ordered list of open
// product catalogs, stopping at the first hit.
type OpenFactsClient struct {
	descriptors []Descriptor
	http        *http.Client
}

// NewOpenFactsClient creates a client over the given catalog list; nil
// falls back to DefaultDescriptors.
func NewOpenFactsClient(descriptors []Descriptor, timeout time.Duration) *OpenFactsClient {
	if descriptors == nil {
		descriptors = DefaultDescriptors
	}
	return &OpenFactsClient{
		descriptors: descriptors,
		http:        &http.Client{Timeout: timeout},
	}
}

// LookupByBarcode queries each catalog in turn and returns the first hit.
func (c *OpenFactsClient) LookupByBarcode(ctx context.Context, barcode string) []suggest.Suggestion {
	if !suggest.IsValidBarcode(barcode) {
		return nil
	}
	for _, d := range c.descriptors {
		s, err := c.lookupOne(ctx, d, barcode)
		if err != nil {
			log.Printf("⚠️ %s lookup failed for %s: %v", d.Name, barcode, err)
			continue
		}
		if s != nil {
			return []suggest.Suggestion{*s}
		}
	}
	return nil
}

type openFactsEnvelope struct {
	Status  int                    `json:"status"`
	Product map[string]interface{} `json:"product"`
}

// lookupOne returns (nil, nil) when the catalog simply does not know the
// barcode; an error means the catalog itself misbehaved.
func (c *OpenFactsClient) lookupOne(ctx context.Context, d Descriptor, barcode string) (*suggest.Suggestion, error) {
	url := fmt.Sprintf("%s/api/v2/product/%s.json", d.BaseURL, barcode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var env openFactsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if env.Status != 1 || env.Product == nil {
		return nil, nil
	}

	// Localized name first, then the generic one, then English.
	name := firstNonEmpty(
		cast.ToString(env.Product["product_name_ja"]),
		cast.ToString(env.Product["product_name"]),
		cast.ToString(env.Product["product_name_en"]),
	)
	if name == "" {
		return nil, nil
	}

	var descParts []string
	if q := cast.ToString(env.Product["quantity"]); q != "" {
		descParts = append(descParts, q)
	}
	if cats := cast.ToString(env.Product["categories"]); cats != "" {
		descParts = append(descParts, cats)
	}

	return &suggest.Suggestion{
		Name:        name,
		Barcode:     barcode,
		Category:    suggest.InferCategory(name + " " + cast.ToString(env.Product["categories"])),
		Description: strings.Join(descParts, " / "),
		ImageURL:    cast.ToString(env.Product["image_url"]),
		Brand:       cast.ToString(env.Product["brands"]),
		Source:      d.Name,
		Confidence:  0.95,
		Reason:      "barcode match",
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
