package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/hikkoshi-box/hikkoshigo/internal/resolve"
	"github.com/hikkoshi-box/hikkoshigo/internal/suggest"
	"github.com/hikkoshi-box/hikkoshigo/internal/utils"
)

// ScanRequest represents the payload from the scanner surface
type ScanRequest struct {
	RawValue string `json:"rawValue"`
	Format   string `json:"format"` // linear, matrix
}

// handleScan starts a resolution session for one scan event
func (r *Router) handleScan(w http.ResponseWriter, req *http.Request) {
	var body ScanRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	raw := strings.TrimSpace(body.RawValue)
	if raw == "" {
		respondError(w, http.StatusBadRequest, "Empty scan payload")
		return
	}
	if utils.IsDuplicateScan(raw) {
		respondError(w, http.StatusTooManyRequests, "Duplicate scan ignored")
		return
	}

	sess := r.flow.Scan(req.Context(), resolve.ScanPayload{RawValue: raw, Format: body.Format})
	respondJSON(w, http.StatusOK, r.flow.Snapshot(sess))
}

// SearchRequest represents a typed name search
type SearchRequest struct {
	Query string `json:"query"`
}

// handleSearch starts a resolution session for a typed query
func (r *Router) handleSearch(w http.ResponseWriter, req *http.Request) {
	var body SearchRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(body.Query) == "" {
		respondError(w, http.StatusBadRequest, "Empty query")
		return
	}

	sess := r.flow.SearchByName(req.Context(), body.Query)
	respondJSON(w, http.StatusOK, r.flow.Snapshot(sess))
}

// ResolveRequest carries the operator's pick back to the flow
type ResolveRequest struct {
	SessionID string             `json:"sessionId"`
	Chosen    suggest.Suggestion `json:"chosen"`
}

// handleResolve materializes the picked suggestion
func (r *Router) handleResolve(w http.ResponseWriter, req *http.Request) {
	var body ResolveRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess := r.flow.Session(body.SessionID)
	if sess == nil {
		respondError(w, http.StatusNotFound, "Unknown session")
		return
	}

	product, existing, err := r.flow.Resolve(sess, body.Chosen)
	if errors.Is(err, resolve.ErrSessionCancelled) {
		respondError(w, http.StatusGone, "Session was cancelled")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"existing": existing,
		"product":  product,
	})
}

// ManualRequest opens a manual-entry draft for a session
type ManualRequest struct {
	SessionID string `json:"sessionId"`
}

// handleManual opens a manual-entry draft after the operator declines
// every candidate
func (r *Router) handleManual(w http.ResponseWriter, req *http.Request) {
	var body ManualRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess := r.flow.Session(body.SessionID)
	if sess == nil {
		respondError(w, http.StatusNotFound, "Unknown session")
		return
	}

	draft, err := r.flow.ManualDraft(sess)
	if errors.Is(err, resolve.ErrSessionCancelled) {
		respondError(w, http.StatusGone, "Session was cancelled")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"draft": draft,
	})
}

// handleCancel dismisses a session; in-flight lookups are discarded
func (r *Router) handleCancel(w http.ResponseWriter, req *http.Request) {
	var body ManualRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	r.flow.Cancel(body.SessionID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// isInputError distinguishes operator mistakes from store failures
func isInputError(err error) bool {
	return err != nil &&
		!errors.Is(err, resolve.ErrCreateProduct) &&
		!errors.Is(err, resolve.ErrUpdateProduct)
}
