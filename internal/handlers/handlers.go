// Package handlers implements the read-side HTTP API. Every endpoint serves
// the engine's last published document from the cache; no metrics are
// computed in the request path.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"royaltyflow/internal/models"
)

// CacheReader is the cache access the handlers need.
type CacheReader interface {
	GetOrders(ctx context.Context) (*models.OrdersSnapshot, error)
	GetSummary(ctx context.Context) (*models.SummaryMetrics, error)
	GetMomentum(ctx context.Context) (*models.MomentumSnapshot, error)
}

// Response is the envelope every endpoint answers with.
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// API bundles the cache-backed handlers.
type API struct {
	cache  CacheReader
	logger *slog.Logger
}

// NewAPI creates the handler set.
func NewAPI(cache CacheReader, logger *slog.Logger) *API {
	return &API{
		cache:  cache,
		logger: logger.With("component", "api"),
	}
}

// GetOrders handles GET /api/orders.
func (a *API) GetOrders(w http.ResponseWriter, r *http.Request) {
	snapshot, err := a.cache.GetOrders(r.Context())
	if err != nil {
		a.logger.Error("cache_read_failed", "endpoint", "orders", "error", err)
		a.sendError(w, http.StatusInternalServerError, "failed to read orders from cache")
		return
	}

	if snapshot == nil {
		a.sendError(w, http.StatusServiceUnavailable, "no order snapshot available yet")
		return
	}

	a.sendData(w, snapshot)
}

// GetSummary handles GET /api/summary.
func (a *API) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.cache.GetSummary(r.Context())
	if err != nil {
		a.logger.Error("cache_read_failed", "endpoint", "summary", "error", err)
		a.sendError(w, http.StatusInternalServerError, "failed to read summary from cache")
		return
	}

	if summary == nil {
		a.sendError(w, http.StatusServiceUnavailable, "no summary available yet")
		return
	}

	a.sendData(w, summary)
}

// GetMomentum handles GET /api/momentum. An optional limit query parameter
// truncates the ranking below the engine's published top-N.
func (a *API) GetMomentum(w http.ResponseWriter, r *http.Request) {
	snapshot, err := a.cache.GetMomentum(r.Context())
	if err != nil {
		a.logger.Error("cache_read_failed", "endpoint", "momentum", "error", err)
		a.sendError(w, http.StatusInternalServerError, "failed to read momentum from cache")
		return
	}

	if snapshot == nil {
		a.sendError(w, http.StatusServiceUnavailable, "no momentum snapshot available yet")
		return
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			a.sendError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if limit < len(snapshot.Songs) {
			trimmed := *snapshot
			trimmed.Songs = snapshot.Songs[:limit]
			snapshot = &trimmed
		}
	}

	a.sendData(w, snapshot)
}

// Health handles GET /health.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (a *API) sendData(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	resp := Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		a.logger.Error("json_encode_failed", "error", err)
	}
}

func (a *API) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(Response{
		Success:   false,
		Error:     message,
		Timestamp: time.Now().UTC(),
	})
}
