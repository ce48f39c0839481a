package models

import (
	"time"

	"gorm.io/datatypes"
)

// Product categories. The fixed set the whole pipeline agrees on;
// anything outside it collapses to CategoryOther.
const (
	CategoryFood      = "食品・飲料"
	CategoryAppliance = "家電"
	CategoryFurniture = "家具"
	CategoryClothing  = "衣類"
	CategoryBooks     = "本・雑誌"
	CategoryToys      = "おもちゃ"
	CategoryDaily     = "日用品"
	CategoryCosmetics = "化粧品"
	CategorySports    = "スポーツ用品"
	CategoryOther     = "その他"
)

// Categories lists every valid product category, in display order.
var Categories = []string{
	CategoryFood,
	CategoryAppliance,
	CategoryFurniture,
	CategoryClothing,
	CategoryBooks,
	CategoryToys,
	CategoryDaily,
	CategoryCosmetics,
	CategorySports,
	CategoryOther,
}

// IsValidCategory reports whether c is one of the fixed categories.
func IsValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Moving decisions assigned by AI analysis or manual override.
const (
	DecisionKeep        = "keep"
	DecisionParentsHome = "parents_home"
	DecisionDiscard     = "discard"
	DecisionSell        = "sell"
)

// MovingDecisions lists every valid moving decision.
var MovingDecisions = []string{DecisionKeep, DecisionParentsHome, DecisionDiscard, DecisionSell}

// IsValidDecision reports whether d is one of the fixed moving decisions.
func IsValidDecision(d string) bool {
	for _, v := range MovingDecisions {
		if v == d {
			return true
		}
	}
	return false
}

// Product is a persisted inventory record.
// Standardized: Go (PascalCase) -> DB (snake_case) -> JSON (camelCase)
type Product struct {
	ID          int64   `gorm:"primaryKey" json:"id"`
	Barcode     string  `gorm:"uniqueIndex;not null" json:"barcode"`
	Name        string  `gorm:"not null" json:"name"`
	Category    string  `gorm:"default:'その他'" json:"category"`
	Price       float64 `json:"price,omitempty"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Brand       string  `json:"brand,omitempty"`

	// AI analysis fields. Empty MovingDecision means not analyzed yet.
	MovingDecision  string  `json:"movingDecision,omitempty"`
	StorageLocation string  `json:"storageLocation,omitempty"`
	AnalysisNotes   string  `json:"analysisNotes,omitempty"`
	Confidence      float64 `json:"confidence,omitempty"`

	Quantity int    `gorm:"default:1" json:"quantity"`
	Location string `json:"location,omitempty"`
	Scanned  bool   `gorm:"default:false" json:"scanned"`
	Notes    string `json:"notes,omitempty"`

	// Raw payload of the catalog record the product was created from.
	RawData datatypes.JSON `gorm:"type:jsonb" json:"rawData,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Product model
func (Product) TableName() string { return "products" }

// HasAIAnalysis reports whether the product carries a moving decision.
func (p *Product) HasAIAnalysis() bool { return p.MovingDecision != "" }
