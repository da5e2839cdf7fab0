// Package dashboard exposes the orchestrator over a small polling JSON API.
package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hetulpatel/LiveEdge/internal/engine"
	"github.com/hetulpatel/LiveEdge/internal/ledger"
	"github.com/hetulpatel/LiveEdge/internal/models"
)

// Engine is the part of *engine.Orchestrator the API drives.
type Engine interface {
	Snapshot() engine.Snapshot
	Trigger() bool
	Place(id string) bool
	Dismiss(id string) bool
	Resolve(index int, outcome ledger.Result) error
	UpdateSettings(s models.Settings) models.Settings
	SetAutoRefresh(enabled bool, interval time.Duration) error
}

type Handler struct {
	engine Engine
}

func NewHandler(e Engine) *Handler {
	return &Handler{engine: e}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "dashboard",
	})
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

// Scan starts a scan unless one is already running.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Trigger() {
		respondError(w, http.StatusConflict, "scan already in flight")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (h *Handler) PlaceAlert(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Place(chi.URLParam(r, "id")) {
		respondError(w, http.StatusNotFound, "alert not found")
		return
	}
	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

// DismissAlert is idempotent: dismissing an unknown id still answers 200.
func (h *Handler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	h.engine.Dismiss(chi.URLParam(r, "id"))
	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

type resolveRequest struct {
	Result string `json:"result"`
}

func (h *Handler) ResolveBet(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid bet index")
		return
	}
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	outcome, err := ledger.ParseOutcome(req.Result)
	if err != nil {
		respondError(w, http.StatusBadRequest, "result must be won, lost or push")
		return
	}
	if err := h.engine.Resolve(index, outcome); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	respondJSON(w, http.StatusOK, h.engine.UpdateSettings(req))
}

type autoRefreshRequest struct {
	Enabled         bool `json:"enabled"`
	IntervalSeconds int  `json:"interval_seconds"`
}

func (h *Handler) SetAutoRefresh(w http.ResponseWriter, r *http.Request) {
	var req autoRefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	err := h.engine.SetAutoRefresh(req.Enabled, time.Duration(req.IntervalSeconds)*time.Second)
	switch {
	case errors.Is(err, engine.ErrInvalidInterval):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.engine.Snapshot().AutoRefresh)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
