package orders

import (
	"context"
	"fmt"
	"log"

	"github.com/fpedia/fpedia-backend/internal/crypto"
	"github.com/fpedia/fpedia-backend/internal/notify"
)

// Sisa stok di bawah ini -> email peringatan ke admin.
const LowStockThreshold = 5

type Store interface {
	GetByID(ctx context.Context, id string) (*Order, error)
	MarkPaid(ctx context.Context, orderID string) error
	AlreadyAllocated(ctx context.Context, orderID string) (int, error)
	AllocateAccounts(ctx context.Context, orderID, productID string, qty int) error
	AccountsForOrder(ctx context.Context, orderID string) ([]notify.Credential, error)
}

type StockCounter interface {
	AvailableStock(ctx context.Context, productID string) (int, error)
}

type Notifier interface {
	WhatsApp(to, message, correlationID string)
	Email(to, subject, html, correlationID string)
}

// Fulfillment mengubah order yang dibayar jadi kredensial terkirim.
type Fulfillment struct {
	Store      Store
	Stock      StockCounter
	Notify     Notifier
	Crypto     *crypto.Box
	AdminEmail string
	SiteURL    string
}

// ConfirmPaid: tandai paid -> alokasi -> kirim. Langkah setelah alokasi
// best-effort: error di-log, order tetap paid.
//
// Kalau alokasi gagal, order sudah terlanjur paid tanpa kredensial; itu
// dikembalikan sebagai error supaya webhook balas 500 dan admin turun tangan
// (perbaikan manual lewat preorder delivery).
func (f *Fulfillment) ConfirmPaid(ctx context.Context, orderID string) error {
	o, err := f.Store.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if err := f.Store.MarkPaid(ctx, orderID); err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}

	// replay yang lolos sampai sini (status belum sempat paid waktu pre-check)
	// tidak boleh alokasi dobel
	linked, err := f.Store.AlreadyAllocated(ctx, orderID)
	if err != nil {
		return err
	}
	if linked < o.Quantity {
		if err := f.Store.AllocateAccounts(ctx, orderID, o.ProductID, o.Quantity-linked); err != nil {
			return fmt.Errorf("allocate accounts for %s: %w", o.TransactionID, err)
		}
	}

	accounts := f.fetchDecrypted(ctx, orderID)

	info := notify.OrderInfo{
		TransactionID: o.TransactionID,
		ProductTitle:  o.ProductTitle,
		Quantity:      o.Quantity,
		Total:         o.TotalPrice,
		BuyerEmail:    o.BuyerEmail,
		BuyerWhatsApp: o.BuyerWhatsApp,
		PromoText:     o.PromoText,
		Instructions:  o.ProductInstructions,
	}

	if wa := notify.NormalizePhone(o.BuyerWhatsApp); wa != "" {
		f.Notify.WhatsApp(wa, notify.BuyerDeliveryWA(info, accounts), o.TransactionID)
	}

	subject, html := notify.AdminPaymentEmail(info, accounts)
	f.Notify.Email(f.AdminEmail, subject, html, o.TransactionID)

	f.checkLowStock(ctx, o)
	return nil
}

func (f *Fulfillment) fetchDecrypted(ctx context.Context, orderID string) []notify.Credential {
	stored, err := f.Store.AccountsForOrder(ctx, orderID)
	if err != nil {
		log.Printf("fulfillment: fetch accounts order=%s: %v", orderID, err)
		return nil
	}
	out := make([]notify.Credential, 0, len(stored))
	for _, c := range stored {
		email, err := f.Crypto.Decrypt(c.Email)
		if err != nil {
			log.Printf("fulfillment: decrypt email order=%s: %v", orderID, err)
			continue
		}
		pass, err := f.Crypto.Decrypt(c.Password)
		if err != nil {
			log.Printf("fulfillment: decrypt password order=%s: %v", orderID, err)
			continue
		}
		out = append(out, notify.Credential{Email: email, Password: pass})
	}
	return out
}

func (f *Fulfillment) checkLowStock(ctx context.Context, o *Order) {
	remaining, err := f.Stock.AvailableStock(ctx, o.ProductID)
	if err != nil {
		log.Printf("fulfillment: low stock check %s: %v", o.ProductID, err)
		return
	}
	if remaining >= LowStockThreshold {
		return
	}
	subject, html := notify.LowStockEmail(o.ProductTitle, remaining, f.SiteURL)
	f.Notify.Email(f.AdminEmail, subject, html, o.TransactionID)
}
