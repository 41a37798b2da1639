package httpx

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/fpedia/fpedia-backend/internal/catalog"
	"github.com/fpedia/fpedia-backend/internal/notify"
	"github.com/fpedia/fpedia-backend/internal/orders"
	"github.com/fpedia/fpedia-backend/internal/payment"
	"github.com/fpedia/fpedia-backend/internal/validation"
)

// Window bayar sebelum order dianggap hangus.
const orderTTL = 24 * time.Hour

type CatalogReader interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
	AvailableStock(ctx context.Context, productID string) (int, error)
	FindPromo(ctx context.Context, code string) (*catalog.Promo, error)
}

type OrderCreator interface {
	Create(ctx context.Context, o *orders.Order) error
}

type ChargeCreator interface {
	Configured() bool
	CreateQRISCharge(ctx context.Context, orderID string, amount int64) (*payment.Charge, error)
}

type CheckoutHandler struct {
	Catalog  CatalogReader
	Orders   OrderCreator
	Gateway  ChargeCreator
	Notify   orders.Notifier
	Validate *validatorv10.Validate

	AdminEmail    string
	AdminWhatsApp string
}

type CheckoutReq struct {
	ProductID string `json:"product_id" validate:"required"`
	FullName  string `json:"full_name"`
	Email     string `json:"email" validate:"required,email"`
	WhatsApp  string `json:"whatsapp" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	PromoCode string `json:"promo_code"`
	Note      string `json:"note"`
}

type CheckoutResp struct {
	Success       bool   `json:"success"`
	QRString      string `json:"qr_string"`
	Subtotal      int64  `json:"subtotal"`
	Fee           int64  `json:"fee"`
	TotalPayment  int64  `json:"total_payment"`
	OrderID       string `json:"order_id"`
	TransactionID string `json:"transaction_id"`
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutReq
	if err := validation.DecodeAndValidate(r.Body, &req, h.Validate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	product, err := h.Catalog.GetProduct(ctx, req.ProductID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if req.Quantity < product.MinBuy {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Minimum pembelian %d unit", product.MinBuy))
		return
	}

	// READ saja, bukan lock: race dua checkout memperebutkan unit terakhir
	// baru ketahuan di alokasi setelah pembayaran.
	if !product.IsPreorder {
		available, err := h.Catalog.AvailableStock(ctx, product.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if available < req.Quantity {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Stok tidak cukup. Tersedia: %d unit", available))
			return
		}
	}

	rawSubtotal := catalog.UnitPrice(product, req.Quantity) * int64(req.Quantity)

	var discount int64
	var promoText string
	if req.PromoCode != "" {
		promo, err := h.Catalog.FindPromo(ctx, req.PromoCode)
		if err != nil {
			log.Printf("checkout: promo lookup %q: %v", req.PromoCode, err)
		} else {
			discount, promoText = catalog.Discount(promo, rawSubtotal, time.Now())
		}
	}
	subtotal := rawSubtotal - discount

	txID := orders.NewTransactionID()

	// Gateway gagal / belum dikonfigurasi -> placeholder QR. Checkout tetap
	// jalan tapi order ini tidak akan pernah terbayar (soft failure).
	qrString := payment.PlaceholderQR
	var fee int64
	totalPayment := subtotal
	if h.Gateway.Configured() {
		charge, err := h.Gateway.CreateQRISCharge(ctx, txID, subtotal)
		if err != nil {
			log.Printf("checkout: pakasir %s: %v", txID, err)
		} else {
			qrString = charge.QRString
			fee = charge.Fee
			totalPayment = charge.TotalPayment
		}
	} else {
		log.Printf("checkout: pakasir credentials missing, pakai placeholder QR")
	}

	o := &orders.Order{
		TransactionID: txID,
		ProductID:     product.ID,
		BuyerName:     req.FullName,
		BuyerEmail:    req.Email,
		BuyerWhatsApp: req.WhatsApp,
		Note:          req.Note,
		PromoText:     promoText,
		Quantity:      req.Quantity,
		Subtotal:      subtotal,
		Fee:           fee,
		TotalPrice:    totalPayment,
		PaymentStatus: orders.StatusPending,
		PaymentMethod: "qris",
		PaymentQR:     qrString,
		ExpiresAt:     time.Now().Add(orderTTL),
	}
	if err := h.Orders.Create(ctx, o); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create order: "+err.Error())
		return
	}

	// Tiga notifikasi independen, tidak pernah menggagalkan order.
	info := notify.OrderInfo{
		TransactionID: txID,
		ProductTitle:  product.Title,
		Quantity:      req.Quantity,
		Total:         totalPayment,
		BuyerEmail:    req.Email,
		BuyerWhatsApp: req.WhatsApp,
		PromoText:     promoText,
		ExpiresAt:     o.ExpiresAt,
	}
	if adminWA := notify.NormalizePhone(h.AdminWhatsApp); adminWA != "" {
		h.Notify.WhatsApp(adminWA, notify.AdminNewOrderWA(info), txID)
	}
	subject, html := notify.AdminNewOrderEmail(info)
	h.Notify.Email(h.AdminEmail, subject, html, txID)
	if buyerWA := notify.NormalizePhone(req.WhatsApp); buyerWA != "" {
		h.Notify.WhatsApp(buyerWA, notify.BuyerOrderCreatedWA(info), txID)
	}

	writeJSON(w, http.StatusOK, CheckoutResp{
		Success:       true,
		QRString:      qrString,
		Subtotal:      subtotal,
		Fee:           fee,
		TotalPayment:  totalPayment,
		OrderID:       o.ID,
		TransactionID: txID,
	})
}
