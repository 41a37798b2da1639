package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fpedia/fpedia-backend/internal/orders"
)

type fakeOrderLookup struct {
	order *orders.Order
	err   error
}

func (f *fakeOrderLookup) GetByTransactionID(_ context.Context, txID string) (*orders.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.order == nil || f.order.TransactionID != txID {
		return nil, orders.ErrOrderNotFound
	}
	return f.order, nil
}

type fakeFulfiller struct {
	calls []string
	err   error
}

func (f *fakeFulfiller) ConfirmPaid(_ context.Context, orderID string) error {
	f.calls = append(f.calls, orderID)
	return f.err
}

func postWebhook(h *WebhookHandler, body map[string]any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/pakasir", bytes.NewReader(b))
	rec := httptest.NewRecorder()
	h.HandlePakasir(rec, req)
	return rec
}

func pendingOrder() *orders.Order {
	return &orders.Order{
		ID:            "ord-1",
		TransactionID: "INV-1700000000000-1",
		TotalPrice:    301500,
		PaymentStatus: orders.StatusPending,
	}
}

func TestWebhookCompletedConfirmsOrder(t *testing.T) {
	ff := &fakeFulfiller{}
	h := &WebhookHandler{
		Orders:        &fakeOrderLookup{order: pendingOrder()},
		Fulfill:       ff,
		GatewayAPIKey: "secret-key",
	}

	rec := postWebhook(h, map[string]any{
		"order_id": "INV-1700000000000-1",
		"status":   "completed",
		"amount":   301500,
		"api_key":  "secret-key",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(ff.calls) != 1 || ff.calls[0] != "ord-1" {
		t.Errorf("fulfill calls = %v", ff.calls)
	}
}

func TestWebhookIgnoresNonCompleted(t *testing.T) {
	ff := &fakeFulfiller{}
	h := &WebhookHandler{Orders: &fakeOrderLookup{order: pendingOrder()}, Fulfill: ff}

	for _, status := range []string{"pending", "failed", "expired", ""} {
		rec := postWebhook(h, map[string]any{"order_id": "INV-1700000000000-1", "status": status})
		if rec.Code != http.StatusOK {
			t.Errorf("status %q: code = %d, want 200", status, rec.Code)
		}
	}
	if len(ff.calls) != 0 {
		t.Errorf("fulfill called for non-completed status: %v", ff.calls)
	}
}

func TestWebhookUnknownOrderIsNoOp(t *testing.T) {
	ff := &fakeFulfiller{}
	h := &WebhookHandler{Orders: &fakeOrderLookup{}, Fulfill: ff}

	rec := postWebhook(h, map[string]any{"order_id": "INV-nope", "status": "completed", "amount": 1000})
	if rec.Code != http.StatusOK {
		t.Errorf("code = %d, want 200", rec.Code)
	}
	if len(ff.calls) != 0 {
		t.Errorf("fulfill called for unknown order")
	}
}

func TestWebhookReplayAlreadyPaid(t *testing.T) {
	o := pendingOrder()
	o.PaymentStatus = orders.StatusPaid
	ff := &fakeFulfiller{}
	h := &WebhookHandler{Orders: &fakeOrderLookup{order: o}, Fulfill: ff}

	rec := postWebhook(h, map[string]any{"order_id": o.TransactionID, "status": "completed", "amount": 301500})
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var resp map[string]bool
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp["already_paid"] {
		t.Errorf("replay response = %v, want already_paid", resp)
	}
	if len(ff.calls) != 0 {
		t.Errorf("fulfill called on replay")
	}
}

func TestWebhookAmountMismatch(t *testing.T) {
	ff := &fakeFulfiller{}
	h := &WebhookHandler{Orders: &fakeOrderLookup{order: pendingOrder()}, Fulfill: ff}

	rec := postWebhook(h, map[string]any{"order_id": "INV-1700000000000-1", "status": "completed", "amount": 999})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", rec.Code)
	}
	if len(ff.calls) != 0 {
		t.Errorf("fulfill called despite mismatch")
	}
}

func TestWebhookBadAPIKey(t *testing.T) {
	h := &WebhookHandler{
		Orders:        &fakeOrderLookup{order: pendingOrder()},
		Fulfill:       &fakeFulfiller{},
		GatewayAPIKey: "secret-key",
	}

	rec := postWebhook(h, map[string]any{
		"order_id": "INV-1700000000000-1",
		"status":   "completed",
		"amount":   301500,
		"api_key":  "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401", rec.Code)
	}
}

func TestWebhookFulfillmentError(t *testing.T) {
	ff := &fakeFulfiller{err: errors.New("stok habis")}
	h := &WebhookHandler{Orders: &fakeOrderLookup{order: pendingOrder()}, Fulfill: ff}

	rec := postWebhook(h, map[string]any{"order_id": "INV-1700000000000-1", "status": "completed", "amount": 301500})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("code = %d, want 500", rec.Code)
	}
}
