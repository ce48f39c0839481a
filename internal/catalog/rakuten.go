package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hikkoshi-box/hikkoshigo/internal/config"
	"github.com/hikkoshi-box/hikkoshigo/internal/suggest"
	"github.com/spf13/cast"
)

const rakutenSearchURL = "https://app.rakuten.co.jp/services/api/IchibaItem/Search/20220601"

// ConfidencePolicy tunes how commerce search hits are scored by rank.
// The defaults are empirical; treat them as policy, not invariants.
type ConfidencePolicy struct {
	BarcodeBase float64
	KeywordBase float64
	RankStep    float64
	Min         float64
	Max         float64
}

// DefaultConfidencePolicy matches the tuning the app shipped with.
var DefaultConfidencePolicy = ConfidencePolicy{
	BarcodeBase: 0.92,
	KeywordBase: 0.74,
	RankStep:    0.05,
	Min:         0.45,
	Max:         0.99,
}

func (p ConfidencePolicy) score(base float64, rank int) float64 {
	c := base - p.RankStep*float64(rank)
	if c < p.Min {
		c = p.Min
	}
	if c > p.Max {
		c = p.Max
	}
	return suggest.ClampConfidence(c)
}

// RakutenClient searches the Rakuten Ichiba item API by keyword or
// barcode. Credentials are injected, never read from globals.
type RakutenClient struct {
	appID       string
	affiliateID string
	baseURL     string
	policy      ConfidencePolicy
	http        *http.Client
}

// NewRakutenClient creates a commerce search client.
func NewRakutenClient(cfg config.RakutenConfig, timeout time.Duration) *RakutenClient {
	return &RakutenClient{
		appID:       cfg.ApplicationID,
		affiliateID: cfg.AffiliateID,
		baseURL:     rakutenSearchURL,
		policy:      DefaultConfidencePolicy,
		http:        &http.Client{Timeout: timeout},
	}
}

// SetBaseURL overrides the API endpoint. Tests point this at a stub.
func (c *RakutenClient) SetBaseURL(u string) { c.baseURL = u }

// SetPolicy overrides the rank-confidence policy.
func (c *RakutenClient) SetPolicy(p ConfidencePolicy) { c.policy = p }

// LookupByBarcode searches the catalog using the barcode as the query
// term. Hits score higher than keyword hits since a barcode query rarely
// matches the wrong product.
func (c *RakutenClient) LookupByBarcode(ctx context.Context, barcode string) []suggest.Suggestion {
	if !suggest.IsValidBarcode(barcode) {
		return nil
	}
	items, err := c.search(ctx, barcode, 5, true)
	if err != nil {
		log.Printf("⚠️ Rakuten barcode search failed for %s: %v", barcode, err)
		return nil
	}
	return c.toSuggestions(items, barcode, "Rakuten API(barcode)", c.policy.BarcodeBase)
}

// LookupByKeyword searches the catalog by free text, up to hits results.
func (c *RakutenClient) LookupByKeyword(ctx context.Context, keyword string, hits int) []suggest.Suggestion {
	if keyword == "" || c.appID == "" {
		return nil
	}
	if hits < 1 {
		hits = 1
	}
	if hits > 30 {
		hits = 30
	}
	items, err := c.search(ctx, keyword, hits, true)
	if err != nil {
		log.Printf("⚠️ Rakuten keyword search failed for %q: %v", keyword, err)
		return nil
	}
	return c.toSuggestions(items, "", "Rakuten API(keyword)", c.policy.KeywordBase)
}

type rakutenError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

// search performs one API call. withAffiliate controls whether the
// optional affiliate credential is sent.
func (c *RakutenClient) search(ctx context.Context, query string, hits int, withAffiliate bool) ([]map[string]interface{}, error) {
	if c.appID == "" {
		return nil, fmt.Errorf("rakuten application id not configured")
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("applicationId", c.appID)
	params.Set("keyword", query)
	params.Set("hits", strconv.Itoa(hits))
	if withAffiliate && c.affiliateID != "" {
		params.Set("affiliateId", c.affiliateID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body struct {
		rakutenError
		Items []struct {
			Item map[string]interface{} `json:"Item"`
		} `json:"Items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || body.Code != "" {
		return nil, fmt.Errorf("api error %d: %s %s", resp.StatusCode, body.Code, body.Description)
	}

	items := make([]map[string]interface{}, 0, len(body.Items))
	for _, wrapped := range body.Items {
		if wrapped.Item != nil {
			items = append(items, wrapped.Item)
		}
	}
	return items, nil
}

func (c *RakutenClient) toSuggestions(items []map[string]interface{}, barcodeHint, source string, base float64) []suggest.Suggestion {
	suggestions := make([]suggest.Suggestion, 0, len(items))
	for rank, item := range items {
		name := cast.ToString(item["itemName"])
		if name == "" {
			continue
		}
		caption := cast.ToString(item["itemCaption"])

		// Catalog code fields rarely carry a JAN, so fall back to the
		// query barcode when they don't.
		barcode := ""
		for _, field := range []string{"janCode", "jan", "isbn", "itemCode"} {
			if b := suggest.NormalizeBarcode(cast.ToString(item[field])); b != "" {
				barcode = b
				break
			}
		}
		if barcode == "" {
			barcode = barcodeHint
		}

		suggestions = append(suggestions, suggest.Suggestion{
			Name:        name,
			Barcode:     barcode,
			Category:    suggest.InferCategory(name + " " + caption),
			Price:       cast.ToFloat64(item["itemPrice"]),
			Description: caption,
			ImageURL:    firstImageURL(item["mediumImageUrls"]),
			Brand:       cast.ToString(item["shopName"]),
			Source:      source,
			Confidence:  c.policy.score(base, rank),
			Reason:      fmt.Sprintf("search rank %d", rank+1),
		})
	}
	return suggestions
}

func firstImageURL(v interface{}) string {
	for _, entry := range cast.ToSlice(v) {
		if m, ok := entry.(map[string]interface{}); ok {
			if u := cast.ToString(m["imageUrl"]); u != "" {
				return u
			}
		}
	}
	return ""
}

// SelfTestResult reports the outcome of a connectivity check.
type SelfTestResult struct {
	OK       bool   `json:"ok"`
	Degraded bool   `json:"degraded"`
	Message  string `json:"message"`
}

// SelfTest validates the configured credentials with one minimal search.
// A rejected affiliate id is retried without it and reported as degraded
// success, since the affiliate credential is optional for lookups.
func (c *RakutenClient) SelfTest(ctx context.Context) SelfTestResult {
	if c.appID == "" {
		return SelfTestResult{Message: "application id not configured"}
	}
	for _, r := range c.appID {
		if r < '0' || r > '9' {
			return SelfTestResult{Message: "application id must be numeric"}
		}
	}

	_, err := c.search(ctx, "test", 1, true)
	if err == nil {
		return SelfTestResult{OK: true, Message: "connected"}
	}

	if c.affiliateID != "" && isAffiliateRejection(err) {
		if _, retryErr := c.search(ctx, "test", 1, false); retryErr == nil {
			return SelfTestResult{
				OK:       true,
				Degraded: true,
				Message:  "connected without affiliate id (credential rejected)",
			}
		}
	}
	return SelfTestResult{Message: err.Error()}
}

func isAffiliateRejection(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "affiliateid")
}
