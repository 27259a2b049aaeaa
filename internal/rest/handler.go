// Package rest exposes the list controller over HTTP: one request builds
// a controller from the decoded query parameters, waits for the query to
// settle and renders the result as JSON.
package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"refetch/internal/controller"
	"refetch/internal/notify"
	"refetch/internal/querycache"
	"refetch/internal/records"
	"refetch/pkg/model"
)

// DefaultRequestTimeout bounds a single list or record request.
const DefaultRequestTimeout = 30 * time.Second

// APIError is the JSON error body.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUpstreamError = "UPSTREAM_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Handler serves the list and record endpoints on top of a shared query
// cache.
type Handler struct {
	store      *querycache.Store
	records    *records.Store
	selections *controller.SelectionStore
	notifier   notify.Notifier

	debounce   time.Duration
	retryCount int
}

// NewHandler creates a Handler. The selection store and notifier are
// shared across requests so selections and notifications behave like
// process-wide state.
func NewHandler(store *querycache.Store, recs *records.Store, selections *controller.SelectionStore, notifier notify.Notifier, debounce time.Duration, retryCount int) *Handler {
	return &Handler{
		store:      store,
		records:    recs,
		selections: selections,
		notifier:   notifier,
		debounce:   debounce,
		retryCount: retryCount,
	}
}

// RegisterRoutes attaches all endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/records/{resource}/{id}", withTimeout(h.handleGetRecord, DefaultRequestTimeout))
	mux.HandleFunc("GET /api/v1/{resource}/{ownerId}/{reference}", withTimeout(h.handleList, DefaultRequestTimeout))
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(APIError{Code: code, Message: message}); err != nil {
		slog.Warn("Failed to encode error response", "error", err)
	}
}

// writeInternalError writes an internal error response, returning 499
// when the client went away instead of 500.
func writeInternalError(w http.ResponseWriter, err error, message string) {
	if model.IsCanceled(err) {
		w.WriteHeader(499)
		return
	}
	slog.Error(message, "error", err)
	writeError(w, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// writeJSON writes a JSON response with proper error handling.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Failed to encode JSON response", "error", err)
	}
}

// withTimeout wraps a handler with a context timeout.
func withTimeout(next http.HandlerFunc, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}
