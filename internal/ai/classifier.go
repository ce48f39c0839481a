package ai

import (
	"context"
	"log"
	"strings"

	"github.com/hikkoshi-box/hikkoshigo/internal/models"
	"github.com/hikkoshi-box/hikkoshigo/internal/suggest"
)

// Analysis is the outcome of classifying one product for the move.
type Analysis struct {
	MovingDecision  string  `json:"movingDecision"`
	StorageLocation string  `json:"storageLocation,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	Confidence      float64 `json:"confidence"`
	RuleBased       bool    `json:"ruleBased"`
}

// Classify assigns a moving decision to a product. Uses the same model
// selection and fallback machinery as Suggest; any parse failure or
// invalid decision value drops to the keyword rule classifier.
func (s *Suggester) Classify(ctx context.Context, p *models.Product) Analysis {
	if s.model == nil {
		return ruleClassify(p)
	}

	text, err := generateWithFallback(ctx, s.model, s.configured, buildClassifyPrompt(p))
	if err != nil {
		log.Printf("⚠️ AI classification failed, using rules: %v", err)
		return ruleClassify(p)
	}

	var parsed Analysis
	if err := extractJSONObject(text, &parsed); err != nil {
		log.Printf("⚠️ Unparseable classification response: %v", err)
		return ruleClassify(p)
	}
	if !models.IsValidDecision(parsed.MovingDecision) {
		log.Printf("⚠️ Invalid moving decision %q, using rules", parsed.MovingDecision)
		return ruleClassify(p)
	}

	parsed.Confidence = suggest.ClampConfidence(parsed.Confidence)
	if parsed.Confidence == 0 {
		parsed.Confidence = defaultAIConfidence
	}
	return parsed
}

// decisionRules maps keyword groups to a disposition. First match wins.
var decisionRules = []struct {
	words      []string
	decision   string
	location   string
	notes      string
	confidence float64
}{
	{
		words:      []string{"食品", "飲料", "food", "飲み物", "生もの"},
		decision:   models.DecisionDiscard,
		location:   "",
		notes:      "食品類は引越し前に消費または処分",
		confidence: 0.7,
	},
	{
		words:      []string{"思い出", "アルバム", "記念", "memorabilia", "卒業"},
		decision:   models.DecisionParentsHome,
		location:   "実家",
		notes:      "思い出の品は実家で保管",
		confidence: 0.65,
	},
	{
		words:      []string{"本", "書籍", "漫画", "book", "雑誌"},
		decision:   models.DecisionSell,
		location:   "",
		notes:      "書籍は買取に出しやすい",
		confidence: 0.6,
	},
	{
		words:      []string{"衣類", "服", "clothing", "コート", "シャツ"},
		decision:   models.DecisionKeep,
		location:   "クローゼット",
		notes:      "衣類は新居で使用",
		confidence: 0.6,
	},
	{
		words:      []string{"家電", "appliance", "冷蔵庫", "洗濯機", "レンジ"},
		decision:   models.DecisionKeep,
		location:   "新居",
		notes:      "家電は新居で使用",
		confidence: 0.6,
	},
}

// ruleClassify is the deterministic stand-in for the model: keyword table
// over name, category and description.
func ruleClassify(p *models.Product) Analysis {
	text := strings.ToLower(p.Name + " " + p.Category + " " + p.Description)
	for _, rule := range decisionRules {
		for _, w := range rule.words {
			if strings.Contains(text, strings.ToLower(w)) {
				return Analysis{
					MovingDecision:  rule.decision,
					StorageLocation: rule.location,
					Notes:           rule.notes,
					Confidence:      rule.confidence,
					RuleBased:       true,
				}
			}
		}
	}
	return Analysis{
		MovingDecision: models.DecisionKeep,
		Notes:          "判定材料が少ないため保持",
		Confidence:     0.5,
		RuleBased:      true,
	}
}
