// Package ai generates product candidates and moving decisions with a
// generative model, degrading to deterministic keyword rules whenever the
// model is unreachable, misconfigured or returns garbage.
package ai

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"

	"github.com/hikkoshi-box/hikkoshigo/internal/models"
	"github.com/hikkoshi-box/hikkoshigo/internal/suggest"
)

var (
	errNoModel       = errors.New("no AI model configured")
	errEmptyResponse = errors.New("empty response from model")
)

const (
	maxCandidates        = 8
	defaultAIConfidence  = 0.55
	aiSourceLabel        = "AI estimate"
	heuristicSourceLabel = "AI estimate (rule-based)"
)

// Suggester asks a generative model for product candidates. A nil model
// (no credential configured) makes every call take the rule-based path
// without touching the network.
type Suggester struct {
	model      TextModel
	configured string
}

// NewSuggester wraps a text model; model may be nil.
func NewSuggester(model TextModel, configuredModel string) *Suggester {
	return &Suggester{model: model, configured: configuredModel}
}

type aiCandidate struct {
	Name        string  `json:"name"`
	Barcode     string  `json:"barcode"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Brand       string  `json:"brand"`
	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason"`
}

// Suggest produces up to maxResults candidates for a scanned or typed
// input. Never fails: any model problem falls back to rule-based guesses.
func (s *Suggester) Suggest(ctx context.Context, rawInput, barcodeHint, nameHint string, maxResults int) []suggest.Suggestion {
	if maxResults < 1 {
		maxResults = 1
	}
	if maxResults > maxCandidates {
		maxResults = maxCandidates
	}

	if s.model == nil {
		return s.ruleSuggest(rawInput, barcodeHint, nameHint)
	}

	prompt := buildSuggestPrompt(rawInput, barcodeHint, nameHint, maxResults)
	text, err := generateWithFallback(ctx, s.model, s.configured, prompt)
	if err != nil {
		log.Printf("⚠️ AI suggestion failed, using rules: %v", err)
		return s.ruleSuggest(rawInput, barcodeHint, nameHint)
	}

	parsed := parseCandidates(text)
	if len(parsed) == 0 {
		log.Printf("⚠️ AI returned no usable candidates, using rules")
		return s.ruleSuggest(rawInput, barcodeHint, nameHint)
	}
	if len(parsed) > maxResults {
		parsed = parsed[:maxResults]
	}
	return parsed
}

// parseCandidates decodes a model response into normalized suggestions,
// dropping nameless entries and sorting by confidence.
func parseCandidates(text string) []suggest.Suggestion {
	var raw []aiCandidate
	if err := extractJSONArray(text, &raw); err != nil {
		log.Printf("⚠️ Unparseable AI response: %v", err)
		return nil
	}

	suggestions := make([]suggest.Suggestion, 0, len(raw))
	for _, c := range raw {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		conf := c.Confidence
		if conf == 0 {
			conf = defaultAIConfidence
		}
		category := c.Category
		if !isFixedCategory(category) {
			category = suggest.InferCategory(c.Name + " " + c.Description)
		}
		suggestions = append(suggestions, suggest.Suggestion{
			Name:        strings.TrimSpace(c.Name),
			Barcode:     suggest.NormalizeBarcode(c.Barcode),
			Category:    category,
			Price:       c.Price,
			Description: c.Description,
			Brand:       c.Brand,
			Source:      aiSourceLabel,
			Confidence:  suggest.ClampConfidence(conf),
			Reason:      c.Reason,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	return suggestions
}

func isFixedCategory(c string) bool {
	return suggest.NormalizeCategory(c) == c && c != ""
}

// ruleSuggest deterministically synthesizes one or two candidates from the
// input text. Reasons mark the result as heuristic so callers can tell it
// apart from a real model answer.
func (s *Suggester) ruleSuggest(rawInput, barcodeHint, nameHint string) []suggest.Suggestion {
	name := strings.TrimSpace(nameHint)
	if name == "" {
		name = strings.TrimSpace(rawInput)
	}
	if name == "" && barcodeHint != "" {
		name = "商品 " + barcodeHint
	}
	if name == "" {
		return nil
	}

	barcode := suggest.NormalizeBarcode(barcodeHint)
	primary, secondary := 0.66, 0.58
	if barcode != "" {
		primary, secondary = 0.82, 0.74
	}

	category := suggest.InferCategory(name + " " + rawInput)
	out := []suggest.Suggestion{{
		Name:       name,
		Barcode:    barcode,
		Category:   category,
		Source:     heuristicSourceLabel,
		Confidence: primary,
		Reason:     "キーワードからの推定（AI未使用）",
	}}

	// Second, vaguer guess only when the keyword table was decisive.
	if category != models.CategoryOther {
		out = append(out, suggest.Suggestion{
			Name:       name + "（" + category + "）",
			Barcode:    barcode,
			Category:   category,
			Source:     heuristicSourceLabel,
			Confidence: secondary,
			Reason:     "カテゴリ推定による補助候補（AI未使用）",
		})
	}
	return out
}

// SelfTest verifies the model answers a trivial prompt with any text.
func (s *Suggester) SelfTest(ctx context.Context) error {
	if s.model == nil {
		return errNoModel
	}
	text, err := generateWithFallback(ctx, s.model, s.configured, "「OK」とだけ答えてください。")
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return errEmptyResponse
	}
	return nil
}
