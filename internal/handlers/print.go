package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hikkoshi-box/hikkoshigo/internal/models"
	"github.com/hikkoshi-box/hikkoshigo/internal/services/printer"
)

// PrintLabelsRequest selects products and the sheet layout
type PrintLabelsRequest struct {
	ProductIDs []int64             `json:"productIds"`
	Layout     printer.LabelConfig `json:"layout"`
}

// printLabels renders QR labels for the selected products
func (r *Router) printLabels(w http.ResponseWriter, req *http.Request) {
	var body PrintLabelsRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	var products []models.Product
	for _, id := range body.ProductIDs {
		p, err := r.store.FindByID(id)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if p != nil {
			products = append(products, *p)
		}
	}

	pdfBytes, err := printer.GenerateProductLabels(products, body.Layout)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to generate PDF: %v", err))
		return
	}
	servePDF(w, pdfBytes, fmt.Sprintf("labels_%d.pdf", time.Now().Unix()))
}

// PrintRawRequest carries an unresolved matrix payload for direct printing
type PrintRawRequest struct {
	Payload string `json:"payload"`
}

// printRaw renders a single label for a matrix scan that produced no
// candidates
func (r *Router) printRaw(w http.ResponseWriter, req *http.Request) {
	var body PrintRawRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	pdfBytes, err := printer.GenerateRawLabel(body.Payload, printer.DefaultLabelConfig)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to generate PDF: %v", err))
		return
	}
	servePDF(w, pdfBytes, "raw_label.pdf")
}

func servePDF(w http.ResponseWriter, pdfBytes []byte, filename string) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
	w.Write(pdfBytes)
}
