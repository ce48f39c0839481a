package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/hikkoshi-box/hikkoshigo/internal/models"
)

// fakeModel scripts responses per model name and records calls.
type fakeModel struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (f *fakeModel) Generate(ctx context.Context, modelName, prompt string) (string, error) {
	f.calls = append(f.calls, modelName)
	if err, ok := f.errs[modelName]; ok {
		return "", err
	}
	if resp, ok := f.responses[modelName]; ok {
		return resp, nil
	}
	return "", errors.New("model foo is not found")
}

func (f *fakeModel) Close() {}

func TestSuggestNoModelUsesRules(t *testing.T) {
	s := NewSuggester(nil, "")

	out := s.Suggest(context.Background(), "コーヒー豆", "4901234567894", "", 5)
	if len(out) != 2 {
		t.Fatalf("expected 2 rule-based candidates, got %d", len(out))
	}
	if out[0].Confidence != 0.82 || out[1].Confidence != 0.74 {
		t.Errorf("confidences = %v, %v; want 0.82, 0.74", out[0].Confidence, out[1].Confidence)
	}
	if out[0].Category != models.CategoryFood {
		t.Errorf("category = %q", out[0].Category)
	}
	if out[0].Source == aiSourceLabel {
		t.Errorf("rule-based result must not look AI-derived: %q", out[0].Source)
	}
}

func TestSuggestRuleConfidencesWithoutBarcode(t *testing.T) {
	s := NewSuggester(nil, "")

	out := s.Suggest(context.Background(), "コーヒー豆", "", "", 5)
	if len(out) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(out))
	}
	if out[0].Confidence != 0.66 || out[1].Confidence != 0.58 {
		t.Errorf("confidences = %v, %v; want 0.66, 0.58", out[0].Confidence, out[1].Confidence)
	}
}

func TestSuggestParsesModelResponse(t *testing.T) {
	model := &fakeModel{responses: map[string]string{
		"gemini-2.0-flash": `候補は次の通りです。
[
  {"name":"ドリップコーヒー","barcode":"4901234567894","category":"食品・飲料","confidence":0.9,"reason":"型番一致"},
  {"name":"","barcode":"123","confidence":0.8},
  {"name":"コーヒーミル","category":"unknown","confidence":0.6}
]
以上です。`,
	}}
	s := NewSuggester(model, "gemini-2.0-flash")

	out := s.Suggest(context.Background(), "コーヒー", "", "", 5)
	if len(out) != 2 {
		t.Fatalf("expected 2 candidates (nameless dropped), got %d", len(out))
	}
	if out[0].Name != "ドリップコーヒー" || out[0].Confidence != 0.9 {
		t.Errorf("wrong first candidate: %+v", out[0])
	}
	// Unknown category falls back to keyword inference
	if out[1].Category != models.CategoryFood {
		t.Errorf("category = %q, want inferred %q", out[1].Category, models.CategoryFood)
	}
}

func TestSuggestModelFallbackOnNotFound(t *testing.T) {
	model := &fakeModel{
		errs: map[string]error{
			"gemini-custom": errors.New("model gemini-custom is not found"),
		},
		responses: map[string]string{
			"gemini-2.0-flash": `[{"name":"本棚","confidence":0.7}]`,
		},
	}
	s := NewSuggester(model, "gemini-custom")

	out := s.Suggest(context.Background(), "本棚", "", "", 3)
	if len(out) != 1 || out[0].Name != "本棚" {
		t.Fatalf("fallback model result missing: %+v", out)
	}
	if len(model.calls) < 2 || model.calls[0] != "gemini-custom" || model.calls[1] != "gemini-2.0-flash" {
		t.Errorf("unexpected call order: %v", model.calls)
	}
}

func TestSuggestHardErrorStopsModelListAndFallsBack(t *testing.T) {
	model := &fakeModel{
		errs: map[string]error{
			"gemini-custom": errors.New("quota exceeded"),
		},
	}
	s := NewSuggester(model, "gemini-custom")

	out := s.Suggest(context.Background(), "コーヒー", "", "", 3)
	if len(model.calls) != 1 {
		t.Errorf("hard error should stop the candidate walk, calls = %v", model.calls)
	}
	// Falls back to rules
	if len(out) == 0 || out[0].Confidence != 0.66 {
		t.Errorf("expected rule fallback, got %+v", out)
	}
}

func TestSuggestUnparseableFallsBack(t *testing.T) {
	model := &fakeModel{responses: map[string]string{
		"gemini-2.0-flash": "すみません、わかりません。",
	}}
	s := NewSuggester(model, "gemini-2.0-flash")

	out := s.Suggest(context.Background(), "机", "", "", 3)
	if len(out) == 0 {
		t.Fatal("expected rule fallback")
	}
	for _, c := range out {
		if c.Source == aiSourceLabel {
			t.Errorf("fallback should carry the heuristic label: %+v", c)
		}
	}
}

func TestSuggestCapsResults(t *testing.T) {
	model := &fakeModel{responses: map[string]string{
		"gemini-2.0-flash": `[
			{"name":"a","confidence":0.9},{"name":"b","confidence":0.8},
			{"name":"c","confidence":0.7},{"name":"d","confidence":0.6}
		]`,
	}}
	s := NewSuggester(model, "gemini-2.0-flash")

	out := s.Suggest(context.Background(), "x", "", "", 2)
	if len(out) != 2 {
		t.Errorf("expected cap at 2, got %d", len(out))
	}
}

func TestParseCandidatesDefaultsAndClamps(t *testing.T) {
	out := parseCandidates(`[{"name":"a"},{"name":"b","confidence":3.0}]`)
	if len(out) != 2 {
		t.Fatalf("got %d candidates", len(out))
	}
	// Sorted by confidence descending: clamped 1.0 first, default 0.55 second
	if out[0].Confidence != 1.0 || out[1].Confidence != defaultAIConfidence {
		t.Errorf("confidences = %v, %v", out[0].Confidence, out[1].Confidence)
	}
}

func TestSelfTest(t *testing.T) {
	s := NewSuggester(nil, "")
	if err := s.SelfTest(context.Background()); err == nil {
		t.Error("expected error without a model")
	}

	model := &fakeModel{responses: map[string]string{"gemini-2.0-flash": "OK"}}
	s = NewSuggester(model, "gemini-2.0-flash")
	if err := s.SelfTest(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
