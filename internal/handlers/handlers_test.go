package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"royaltyflow/internal/models"
)

type fakeCache struct {
	orders   *models.OrdersSnapshot
	summary  *models.SummaryMetrics
	momentum *models.MomentumSnapshot
	err      error
}

func (f *fakeCache) GetOrders(ctx context.Context) (*models.OrdersSnapshot, error) {
	return f.orders, f.err
}

func (f *fakeCache) GetSummary(ctx context.Context) (*models.SummaryMetrics, error) {
	return f.summary, f.err
}

func (f *fakeCache) GetMomentum(ctx context.Context) (*models.MomentumSnapshot, error) {
	return f.momentum, f.err
}

func testAPI(cache CacheReader) *API {
	return NewAPI(cache, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestGetOrders(t *testing.T) {
	snapshot := &models.OrdersSnapshot{
		GeneratedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Source:      "musicow",
		Orders: []models.OrderWithMetrics{
			{Order: models.Order{OrderNo: "o-1", SongID: "s1"}, Signal: models.SignalNormal},
		},
	}

	api := testAPI(&fakeCache{orders: snapshot})
	rec := httptest.NewRecorder()
	api.GetOrders(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Fatalf("success = false: %s", resp.Error)
	}
}

func TestGetOrdersEmptyCache(t *testing.T) {
	api := testAPI(&fakeCache{})
	rec := httptest.NewRecorder()
	api.GetOrders(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Success {
		t.Fatalf("success = true for empty cache")
	}
}

func TestGetOrdersCacheError(t *testing.T) {
	api := testAPI(&fakeCache{err: errors.New("connection refused")})
	rec := httptest.NewRecorder()
	api.GetOrders(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestGetSummary(t *testing.T) {
	api := testAPI(&fakeCache{summary: &models.SummaryMetrics{TotalOrders: 7}})
	rec := httptest.NewRecorder()
	api.GetSummary(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	resp := decodeResponse(t, rec)
	data, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}
	var summary models.SummaryMetrics
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.TotalOrders != 7 {
		t.Fatalf("total orders = %d", summary.TotalOrders)
	}
}

func momentumSnapshot(n int) *models.MomentumSnapshot {
	songs := make([]models.MomentumData, n)
	for i := range songs {
		songs[i] = models.MomentumData{SongName: "song", Trend: models.TrendStable}
	}
	return &models.MomentumSnapshot{
		GeneratedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Songs:       songs,
	}
}

func TestGetMomentumLimit(t *testing.T) {
	api := testAPI(&fakeCache{momentum: momentumSnapshot(10)})

	rec := httptest.NewRecorder()
	api.GetMomentum(rec, httptest.NewRequest(http.MethodGet, "/api/momentum?limit=3", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	resp := decodeResponse(t, rec)
	data, _ := json.Marshal(resp.Data)
	var snapshot models.MomentumSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snapshot.Songs) != 3 {
		t.Fatalf("songs = %d, want 3", len(snapshot.Songs))
	}
}

func TestGetMomentumBadLimit(t *testing.T) {
	api := testAPI(&fakeCache{momentum: momentumSnapshot(10)})

	for _, limit := range []string{"0", "-5", "many"} {
		rec := httptest.NewRecorder()
		api.GetMomentum(rec, httptest.NewRequest(http.MethodGet, "/api/momentum?limit="+limit, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("limit=%s: status = %d, want 400", limit, rec.Code)
		}
	}
}

func TestGetMomentumLimitBeyondSnapshot(t *testing.T) {
	api := testAPI(&fakeCache{momentum: momentumSnapshot(2)})

	rec := httptest.NewRecorder()
	api.GetMomentum(rec, httptest.NewRequest(http.MethodGet, "/api/momentum?limit=100", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	resp := decodeResponse(t, rec)
	data, _ := json.Marshal(resp.Data)
	var snapshot models.MomentumSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snapshot.Songs) != 2 {
		t.Fatalf("songs = %d, want all 2", len(snapshot.Songs))
	}
}

func TestHealth(t *testing.T) {
	api := testAPI(&fakeCache{})
	rec := httptest.NewRecorder()
	api.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	})

	rec := httptest.NewRecorder()
	RequestIDMiddleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatalf("no request id in context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seen {
		t.Fatalf("header id %q != context id %q", got, seen)
	}

	// An incoming id is propagated rather than replaced.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	rec = httptest.NewRecorder()
	RequestIDMiddleware(next).ServeHTTP(rec, req)

	if seen != "upstream-id" {
		t.Fatalf("incoming id not propagated, got %q", seen)
	}
}
