package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/hikkoshi-box/hikkoshigo/internal/services/export"
)

// exportInventory streams the whole inventory as an xlsx workbook
func (r *Router) exportInventory(w http.ResponseWriter, req *http.Request) {
	products, err := r.store.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename := fmt.Sprintf("inventory_%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.WriteInventory(w, products); err != nil {
		// Headers are already out, so the failed download can only be logged
		log.Printf("⚠️ Inventory export failed: %v", err)
	}
}

// selfTest checks connectivity of the external collaborators
func (r *Router) selfTest(w http.ResponseWriter, req *http.Request) {
	rakutenResult := r.rakuten.SelfTest(req.Context())

	geminiStatus := "ok"
	if err := r.suggester.SelfTest(req.Context()); err != nil {
		geminiStatus = err.Error()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rakuten": rakutenResult,
		"gemini":  geminiStatus,
	})
}
