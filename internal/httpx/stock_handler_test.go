package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fpedia/fpedia-backend/internal/orders"
	"github.com/fpedia/fpedia-backend/internal/ratelimit"
)

type memLimitStore struct {
	hits map[string][]time.Time
}

func newMemLimitStore() *memLimitStore {
	return &memLimitStore{hits: map[string][]time.Time{}}
}

func (m *memLimitStore) CountSince(_ context.Context, key string, since time.Time) (int, error) {
	n := 0
	for _, at := range m.hits[key] {
		if at.After(since) {
			n++
		}
	}
	return n, nil
}

func (m *memLimitStore) Record(_ context.Context, key string, at time.Time) error {
	m.hits[key] = append(m.hits[key], at)
	return nil
}

type fakeStockCounter struct {
	count int
	err   error
	calls int
}

func (f *fakeStockCounter) AvailableStock(_ context.Context, _ string) (int, error) {
	f.calls++
	return f.count, f.err
}

func TestGetStock(t *testing.T) {
	sc := &fakeStockCounter{count: 7}
	h := &StockHandler{Catalog: sc, Limiter: &ratelimit.Limiter{Store: newMemLimitStore()}}

	req := httptest.NewRequest(http.MethodGet, "/api/products/stock?productId=prod-1", nil)
	rec := httptest.NewRecorder()
	h.GetStock(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var resp map[string]int
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["count"] != 7 {
		t.Errorf("count = %d, want 7", resp["count"])
	}
}

func TestGetStockMissingParam(t *testing.T) {
	h := &StockHandler{Catalog: &fakeStockCounter{}, Limiter: &ratelimit.Limiter{Store: newMemLimitStore()}}
	req := httptest.NewRequest(http.MethodGet, "/api/products/stock", nil)
	rec := httptest.NewRecorder()
	h.GetStock(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", rec.Code)
	}
}

func TestGetStockRateLimited(t *testing.T) {
	h := &StockHandler{Catalog: &fakeStockCounter{count: 1}, Limiter: &ratelimit.Limiter{Store: newMemLimitStore()}}

	var last int
	for i := 0; i < 21; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/products/stock?productId=prod-1", nil)
		req.RemoteAddr = "10.0.0.9:5555"
		req.Header.Set("User-Agent", "probe")
		rec := httptest.NewRecorder()
		h.GetStock(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("21st call code = %d, want 429", last)
	}
}

func TestGetStockDBError(t *testing.T) {
	sc := &fakeStockCounter{err: errors.New("db down")}
	h := &StockHandler{Catalog: sc, Limiter: &ratelimit.Limiter{Store: newMemLimitStore()}}
	req := httptest.NewRequest(http.MethodGet, "/api/products/stock?productId=prod-1", nil)
	rec := httptest.NewRecorder()
	h.GetStock(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("code = %d, want 500", rec.Code)
	}
}

func TestGetOrderStatus(t *testing.T) {
	o := &orders.Order{
		TransactionID: "INV-1700000000000-1",
		PaymentStatus: orders.StatusPaid,
		TotalPrice:    301500,
		ExpiresAt:     time.Now().Add(time.Hour),
	}
	h := &OrderStatusHandler{Orders: &fakeOrderLookup{order: o}}

	r := chi.NewRouter()
	r.Get("/api/orders/{transactionID}", h.GetStatus)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/INV-1700000000000-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var resp orderStatusResp
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Status != orders.StatusPaid || resp.TotalPayment != 301500 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGetOrderStatusNotFound(t *testing.T) {
	h := &OrderStatusHandler{Orders: &fakeOrderLookup{}}
	r := chi.NewRouter()
	r.Get("/api/orders/{transactionID}", h.GetStatus)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/INV-nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", rec.Code)
	}
}
