package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hikkoshi-box/hikkoshigo/internal/ai"
	"github.com/hikkoshi-box/hikkoshigo/internal/catalog"
	"github.com/hikkoshi-box/hikkoshigo/internal/config"
	"github.com/hikkoshi-box/hikkoshigo/internal/database"
	"github.com/hikkoshi-box/hikkoshigo/internal/middleware"
	"github.com/hikkoshi-box/hikkoshigo/internal/resolve"
	"github.com/hikkoshi-box/hikkoshigo/internal/store"
	"github.com/hikkoshi-box/hikkoshigo/internal/websocket"
)

// Router wraps the mux router and the pipeline collaborators
type Router struct {
	*mux.Router
	db        *database.DB
	cfg       *config.Config
	store     store.ProductStore
	flow      *resolve.Flow
	suggester *ai.Suggester
	rakuten   *catalog.RakutenClient
	hub       *websocket.Hub
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *database.DB, cfg *config.Config, suggester *ai.Suggester, hub *websocket.Hub) *Router {
	productStore := store.NewGormStore(db)
	rakuten := catalog.NewRakutenClient(cfg.Rakuten, cfg.Lookup.Timeout)

	flow := resolve.New(
		productStore,
		catalog.NewLocalClient(productStore),
		catalog.NewOpenFactsClient(nil, cfg.Lookup.Timeout),
		rakuten,
		suggester,
		cfg.Lookup.Timeout,
		cfg.Lookup.MaxHits,
	)
	flow.Notify = func(sess resolve.Session) {
		hub.Broadcast(websocket.Event{
			Type:      "RESOLVE_STATE",
			SessionID: sess.ID,
			State:     string(sess.State),
			Count:     len(sess.Suggestions),
		})
	}

	r := &Router{
		Router:    mux.NewRouter(),
		db:        db,
		cfg:       cfg,
		store:     productStore,
		flow:      flow,
		suggester: suggester,
		rakuten:   rakuten,
		hub:       hub,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.register).Methods("POST")
	auth.HandleFunc("/login", r.login).Methods("POST")

	// WebSocket push channel
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		websocket.ServeWs(hub, w, req)
	})

	// API routes (protected)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(cfg.JWTSecret))

	api.HandleFunc("/scan", r.handleScan).Methods("POST")
	api.HandleFunc("/search", r.handleSearch).Methods("POST")
	api.HandleFunc("/resolve", r.handleResolve).Methods("POST")
	api.HandleFunc("/manual", r.handleManual).Methods("POST")
	api.HandleFunc("/cancel", r.handleCancel).Methods("POST")

	api.HandleFunc("/products", r.listProducts).Methods("GET")
	api.HandleFunc("/products", r.createProduct).Methods("POST")
	api.HandleFunc("/products/{id}", r.getProduct).Methods("GET")
	api.HandleFunc("/products/{id}", r.updateProduct).Methods("PUT")
	api.HandleFunc("/products/{id}", r.deleteProduct).Methods("DELETE")
	api.HandleFunc("/products/{id}/analyze", r.analyzeProduct).Methods("POST")

	api.HandleFunc("/print/labels", r.printLabels).Methods("POST")
	api.HandleFunc("/print/raw", r.printRaw).Methods("POST")
	api.HandleFunc("/export", r.exportInventory).Methods("GET")
	api.HandleFunc("/selftest", r.selfTest).Methods("GET")

	return r
}

// healthCheck reports service liveness
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "running",
		"version": "1.0.0",
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
