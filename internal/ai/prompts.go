package ai

import (
	"fmt"
	"strings"

	"github.com/hikkoshi-box/hikkoshigo/internal/models"
)

const suggestPromptTemplate = `あなたは引越し用の持ち物目録アシスタントです。
スキャンまたは入力された内容から、該当しそうな商品の候補を推定してください。

入力: %s
バーコード: %s
商品名ヒント: %s

カテゴリは必ず次のいずれか: %s

JSON配列のみで最大%d件回答してください。形式:
[{"name":"商品名","barcode":"数字のみ、不明なら空","category":"カテゴリ","price":0,"description":"説明","brand":"ブランド","confidence":0.0から1.0,"reason":"根拠"}]`

func buildSuggestPrompt(rawInput, barcodeHint, nameHint string, maxResults int) string {
	return fmt.Sprintf(suggestPromptTemplate,
		orNone(rawInput),
		orNone(barcodeHint),
		orNone(nameHint),
		strings.Join(models.Categories, " / "),
		maxResults,
	)
}

const classifyPromptTemplate = `引越しの仕分けを手伝ってください。次の持ち物をどう処分すべきか判断してください。

商品名: %s
カテゴリ: %s
説明: %s

movingDecision は必ず次のいずれか: keep / parents_home / discard / sell

JSONオブジェクトのみで回答してください。形式:
{"movingDecision":"keep","storageLocation":"保管場所","notes":"判断メモ","confidence":0.0から1.0}`

func buildClassifyPrompt(p *models.Product) string {
	return fmt.Sprintf(classifyPromptTemplate, orNone(p.Name), orNone(p.Category), orNone(p.Description))
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(なし)"
	}
	return s
}
