// Package printer renders label sheets for the thermal/label printer:
// product labels with a QR-encoded barcode, and raw-payload labels for
// matrix scans that resolved to nothing.
package printer

import (
	"bytes"
	"fmt"

	"github.com/hikkoshi-box/hikkoshigo/internal/models"
	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

// LabelConfig holds layout configuration for PDF generation
type LabelConfig struct {
	Cols       int     `json:"cols"`
	Rows       int     `json:"rows"`
	MarginTop  float64 `json:"marginTop"`
	MarginLeft float64 `json:"marginLeft"`
	GapX       float64 `json:"gapX"`
	GapY       float64 `json:"gapY"`
}

// DefaultLabelConfig is a 3x7 A4 sheet.
var DefaultLabelConfig = LabelConfig{Cols: 3, Rows: 7, MarginTop: 10, MarginLeft: 7, GapX: 2, GapY: 2}

type label struct {
	qrContent string
	caption   string
}

// GenerateProductLabels creates a PDF sheet of QR labels, one per product
// (repeated by quantity).
func GenerateProductLabels(products []models.Product, cfg LabelConfig) ([]byte, error) {
	var labels []label
	for _, p := range products {
		count := p.Quantity
		if count < 1 {
			count = 1
		}
		for i := 0; i < count; i++ {
			labels = append(labels, label{qrContent: p.Barcode, caption: p.Name})
		}
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("no products to print")
	}
	return render(labels, cfg)
}

// GenerateRawLabel creates a single-label PDF for an unresolved matrix
// scan payload, so the operator can still tag the box.
func GenerateRawLabel(payload string, cfg LabelConfig) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("empty payload")
	}
	return render([]label{{qrContent: payload, caption: payload}}, cfg)
}

func render(labels []label, cfg LabelConfig) ([]byte, error) {
	if cfg.Cols < 1 {
		cfg.Cols = DefaultLabelConfig.Cols
	}
	if cfg.Rows < 1 {
		cfg.Rows = DefaultLabelConfig.Rows
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Arial", "B", 8)

	pageWidth, pageHeight := 210.0, 297.0
	totalGapX := float64(cfg.Cols-1) * cfg.GapX
	totalGapY := float64(cfg.Rows-1) * cfg.GapY
	availW := pageWidth - (cfg.MarginLeft * 2)
	availH := pageHeight - (cfg.MarginTop * 2)
	labelW := (availW - totalGapX) / float64(cfg.Cols)
	labelH := (availH - totalGapY) / float64(cfg.Rows)

	labelsPerPage := cfg.Cols * cfg.Rows

	for i, lb := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		indexOnPage := i % labelsPerPage
		col := indexOnPage % cfg.Cols
		row := indexOnPage / cfg.Cols

		x := cfg.MarginLeft + float64(col)*(labelW+cfg.GapX)
		y := cfg.MarginTop + float64(row)*(labelH+cfg.GapY)

		qrPng, err := qrcode.Encode(lb.qrContent, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("encode QR: %w", err)
		}

		imgName := fmt.Sprintf("qr_%d", i)
		pdf.RegisterImageOptionsReader(imgName, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPng))

		qrSize := labelH - 8
		if qrSize > labelW {
			qrSize = labelW
		}
		pdf.ImageOptions(imgName, x+(labelW-qrSize)/2, y, qrSize, qrSize, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

		caption := lb.caption
		if len(caption) > 40 {
			caption = caption[:40]
		}
		pdf.SetXY(x, y+qrSize+1)
		pdf.CellFormat(labelW, 4, caption, "", 0, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
