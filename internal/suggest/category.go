package suggest

import (
	"strings"

	"github.com/hikkoshi-box/hikkoshigo/internal/models"
)

// categoryKeywords maps each category to the substrings that imply it.
// Checked in order; first category with a matching keyword wins. Shared
// by the commerce client, the AI fallback and anything else that needs
// to guess a category from free text, so the call sites never drift.
var categoryKeywords = []struct {
	category string
	words    []string
}{
	{models.CategoryFood, []string{
		"食品", "飲料", "コーヒー", "紅茶", "お茶", "ジュース", "水", "米", "パン",
		"菓子", "チョコ", "スナック", "カップ麺", "レトルト", "調味料", "酒", "ビール",
		"food", "drink", "coffee", "tea", "snack", "beer", "wine",
	}},
	{models.CategoryAppliance, []string{
		"家電", "冷蔵庫", "洗濯機", "電子レンジ", "炊飯器", "掃除機", "テレビ", "エアコン",
		"扇風機", "ドライヤー", "パソコン", "スマホ", "充電器", "ケーブル", "イヤホン",
		"appliance", "electronics", "tv", "laptop", "charger", "usb",
	}},
	{models.CategoryFurniture, []string{
		"家具", "机", "デスク", "椅子", "チェア", "ソファ", "ベッド", "棚", "ラック",
		"テーブル", "タンス", "カーテン", "furniture", "desk", "chair", "sofa", "shelf",
	}},
	{models.CategoryClothing, []string{
		"衣類", "服", "シャツ", "ズボン", "パンツ", "スカート", "ジャケット", "コート",
		"セーター", "靴", "帽子", "下着", "靴下", "clothing", "shirt", "jacket", "shoes",
	}},
	{models.CategoryBooks, []string{
		"本", "書籍", "雑誌", "漫画", "マンガ", "コミック", "小説", "辞書", "参考書",
		"book", "magazine", "comic", "novel",
	}},
	{models.CategoryToys, []string{
		"おもちゃ", "玩具", "ゲーム", "フィギュア", "ぬいぐるみ", "パズル", "プラモデル",
		"toy", "game", "figure", "puzzle",
	}},
	{models.CategoryCosmetics, []string{
		"化粧", "コスメ", "美容", "シャンプー", "リンス", "クリーム", "化粧水", "乳液",
		"香水", "口紅", "cosmetic", "makeup", "shampoo", "lotion", "perfume",
	}},
	{models.CategorySports, []string{
		"スポーツ", "運動", "ボール", "ラケット", "ダンベル", "ヨガ", "自転車", "ゴルフ",
		"テニス", "sports", "ball", "racket", "yoga", "golf", "bicycle",
	}},
	{models.CategoryDaily, []string{
		"日用品", "洗剤", "タオル", "ティッシュ", "トイレットペーパー", "歯ブラシ",
		"石鹸", "ハンガー", "ゴミ袋", "文房具", "ペン", "ノート",
		"daily", "detergent", "towel", "tissue", "soap", "stationery",
	}},
}

// InferCategory guesses a category from free text via the keyword table.
// Returns models.CategoryOther when nothing matches.
func InferCategory(text string) string {
	lower := strings.ToLower(text)
	for _, entry := range categoryKeywords {
		for _, w := range entry.words {
			if strings.Contains(lower, strings.ToLower(w)) {
				return entry.category
			}
		}
	}
	return models.CategoryOther
}

// NormalizeCategory returns c if it is a member of the fixed category set,
// else the default category.
func NormalizeCategory(c string) string {
	if models.IsValidCategory(c) {
		return c
	}
	return models.CategoryOther
}
