package httpx

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"
	"time"

	"github.com/fpedia/fpedia-backend/internal/notify"
	"github.com/fpedia/fpedia-backend/internal/orders"
)

type PendingLister interface {
	PendingCreatedBetween(ctx context.Context, from, to time.Time) ([]orders.Order, error)
}

type LimitPruner interface {
	Prune(ctx context.Context, olderThan time.Duration) error
}

// Entri rate_limits lebih tua dari ini tidak pernah dihitung window manapun.
const limitRetention = 24 * time.Hour

// CronHandler menjalankan job terjadwal yang dipicu scheduler eksternal.
// Dilindungi shared secret di header, bukan sesi admin.
type CronHandler struct {
	Orders  PendingLister
	Limits  LimitPruner
	Notify  orders.Notifier
	Secret  string
	SiteURL string
	Now     func() time.Time
}

func (h *CronHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *CronHandler) authorized(r *http.Request) bool {
	if h.Secret == "" {
		return false
	}
	got := r.Header.Get("X-Cron-Secret")
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.Secret)) == 1
}

// PaymentReminder: email pengingat untuk order pending yang dibuat antara
// 2 jam dan 1 jam lalu. Window geser, jadi tiap order paling banyak kena
// sekali selama cron jalan tiap jam.
func (h *CronHandler) PaymentReminder(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	now := h.now()
	pending, err := h.Orders.PendingCreatedBetween(r.Context(), now.Add(-2*time.Hour), now.Add(-1*time.Hour))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sent := 0
	for _, o := range pending {
		if o.BuyerEmail == "" {
			continue
		}
		subject, html := notify.PaymentReminderEmail(notify.OrderInfo{
			TransactionID: o.TransactionID,
			ProductTitle:  o.ProductTitle,
			Quantity:      o.Quantity,
			Total:         o.TotalPrice,
			BuyerEmail:    o.BuyerEmail,
			ExpiresAt:     o.ExpiresAt,
		}, h.SiteURL)
		h.Notify.Email(o.BuyerEmail, subject, html, o.TransactionID)
		sent++
	}

	// numpang di cron yang sama: buang entri rate limit yang sudah basi
	if h.Limits != nil {
		if err := h.Limits.Prune(r.Context(), limitRetention); err != nil {
			log.Printf("cron: prune rate limits: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "reminders": sent})
}
