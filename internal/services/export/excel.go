// Package export writes the whole inventory to a spreadsheet. Export is
// best effort: one workbook, overwritten in full on every request.
package export

import (
	"fmt"
	"io"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/hikkoshi-box/hikkoshigo/internal/models"
)

const sheetName = "Sheet1"

var headers = []string{
	"ID", "バーコード", "商品名", "カテゴリ", "価格", "数量",
	"仕分け", "保管場所", "現在地", "ブランド", "説明", "メモ", "登録日",
}

// WriteInventory renders all products as one xlsx sheet to w.
func WriteInventory(w io.Writer, products []models.Product) error {
	f := excelize.NewFile()

	for col, h := range headers {
		f.SetCellValue(sheetName, cell(col, 0), h)
	}

	for row, p := range products {
		values := []interface{}{
			p.ID,
			p.Barcode,
			p.Name,
			p.Category,
			p.Price,
			p.Quantity,
			p.MovingDecision,
			p.StorageLocation,
			p.Location,
			p.Brand,
			p.Description,
			p.Notes,
			p.CreatedAt.Format("2006-01-02"),
		}
		for col, v := range values {
			f.SetCellValue(sheetName, cell(col, row+1), v)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func cell(col, row int) string {
	return fmt.Sprintf("%s%d", excelize.ToAlphaString(col), row+1)
}
