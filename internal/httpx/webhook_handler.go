package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/fpedia/fpedia-backend/internal/orders"
	"github.com/fpedia/fpedia-backend/internal/payment"
)

type OrderLookup interface {
	GetByTransactionID(ctx context.Context, txID string) (*orders.Order, error)
}

type Fulfiller interface {
	ConfirmPaid(ctx context.Context, orderID string) error
}

// WebhookHandler menerima callback pembayaran dari Pakasir.
type WebhookHandler struct {
	Orders        OrderLookup
	Fulfill       Fulfiller
	GatewayAPIKey string
}

// Pakasir webhook: status selain completed atau order tak dikenal dijawab
// 200 no-op -- jangan bocorkan state internal ke request iseng.
func (h *WebhookHandler) HandlePakasir(w http.ResponseWriter, r *http.Request) {
	var body payment.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if body.Status != payment.StatusCompleted || body.OrderID == "" {
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 25*time.Second)
	defer cancel()

	order, err := h.Orders.GetByTransactionID(ctx, body.OrderID)
	if errors.Is(err, orders.ErrOrderNotFound) {
		log.Printf("webhook: order tidak ditemukan utk transaction_id %s", body.OrderID)
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Webhook error")
		return
	}

	// idempotency pre-check: replay terhadap order paid = ack tanpa proses
	if order.PaymentStatus == orders.StatusPaid {
		writeJSON(w, http.StatusOK, map[string]bool{"received": true, "already_paid": true})
		return
	}

	// amount harus sama persis dengan total tersimpan
	if body.Amount != 0 && order.TotalPrice != 0 && body.Amount != order.TotalPrice {
		log.Printf("webhook: amount mismatch %s: webhook=%d db=%d", body.OrderID, body.Amount, order.TotalPrice)
		writeError(w, http.StatusBadRequest, "Amount mismatch")
		return
	}

	// api_key di body (kalau ada) harus cocok dengan key kita
	if body.APIKey != "" && body.APIKey != h.GatewayAPIKey {
		log.Printf("webhook: invalid api key utk %s", body.OrderID)
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.Fulfill.ConfirmPaid(ctx, order.ID); err != nil {
		log.Printf("webhook: fulfillment %s: %v", body.OrderID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true, "confirmed": true})
}
