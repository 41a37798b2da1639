package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/fpedia/fpedia-backend/internal/orders"
	"github.com/fpedia/fpedia-backend/internal/ratelimit"
	"github.com/fpedia/fpedia-backend/internal/redisx"
)

type StockCounter interface {
	AvailableStock(ctx context.Context, productID string) (int, error)
}

// StockHandler: probe stok publik, di-rate-limit biar katalog tidak di-scrape.
type StockHandler struct {
	Catalog StockCounter
	Limiter *ratelimit.Limiter
	Redis   *redis.Client
}

const (
	stockProbeLimit  = 20
	stockProbeWindow = time.Minute
)

func (h *StockHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("productId")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "Missing productId")
		return
	}

	ip, ua := clientInfo(r)
	if !h.Limiter.Allow(r.Context(), ratelimit.Key("stock", ip, ua), stockProbeLimit, stockProbeWindow) {
		writeError(w, http.StatusTooManyRequests, "Too many requests")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// cache dulu, DB belakangan
	key := fmt.Sprintf(redisx.KeyStockCount, productID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil {
			if n, err := strconv.Atoi(s); err == nil {
				writeJSON(w, http.StatusOK, map[string]int{"count": n})
				return
			}
		}
	}

	n, err := h.Catalog.AvailableStock(ctx, productID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, strconv.Itoa(n), redisx.TTLStockCache).Err()
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

// OrderStatusHandler: lookup publik status order by transaction id.
type OrderStatusHandler struct {
	Orders OrderLookup
	Redis  *redis.Client
}

type orderStatusResp struct {
	TransactionID string        `json:"transaction_id"`
	Status        orders.Status `json:"payment_status"`
	TotalPayment  int64         `json:"total_payment"`
	ExpiresAt     time.Time     `json:"expires_at"`
}

func (h *OrderStatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	txID := chi.URLParam(r, "transactionID")
	if txID == "" {
		writeError(w, http.StatusBadRequest, "missing transaction id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, txID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	o, err := h.Orders.GetByTransactionID(ctx, txID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	resp := orderStatusResp{
		TransactionID: o.TransactionID,
		Status:        o.PaymentStatus,
		TotalPayment:  o.TotalPrice,
		ExpiresAt:     o.ExpiresAt,
	}
	b, _ := json.Marshal(resp)
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
