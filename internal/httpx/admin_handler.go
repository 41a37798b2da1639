package httpx

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/fpedia/fpedia-backend/internal/catalog"
	"github.com/fpedia/fpedia-backend/internal/crypto"
	"github.com/fpedia/fpedia-backend/internal/notify"
	"github.com/fpedia/fpedia-backend/internal/orders"
	"github.com/fpedia/fpedia-backend/internal/validation"
)

type AdminCatalog interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	CreateProduct(ctx context.Context, p *catalog.Product) error
	UpdateProduct(ctx context.Context, p *catalog.Product) error
	SoftDeleteProduct(ctx context.Context, id string) error
	ListPromos(ctx context.Context) ([]catalog.Promo, error)
	CreatePromo(ctx context.Context, p *catalog.Promo) error
	UpdatePromo(ctx context.Context, p *catalog.Promo) error
	InsertStock(ctx context.Context, productID string, rows []catalog.StockRow) ([]string, error)
}

type AdminOrders interface {
	GetByID(ctx context.Context, id string) (*orders.Order, error)
	LinkAccounts(ctx context.Context, orderID string, accountIDs []string) error
}

// AdminHandler: CRUD katalog + jalur manual (import stok, preorder delivery).
// Otorisasi sudah ditangani middleware RequireAdmin di router.
type AdminHandler struct {
	Catalog  AdminCatalog
	Orders   AdminOrders
	Crypto   *crypto.Box
	Notify   orders.Notifier
	Validate *validatorv10.Validate
}

// ---- products ----

type productReq struct {
	Title        string                  `json:"title" validate:"required"`
	Price        int64                   `json:"price" validate:"required,gt=0"`
	MinBuy       int                     `json:"min_buy" validate:"omitempty,min=1"`
	IsPreorder   bool                    `json:"is_preorder"`
	Wholesale    []catalog.WholesaleTier `json:"wholesale_prices" validate:"omitempty,dive"`
	Instructions string                  `json:"instructions"`
}

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := validation.DecodeAndValidate(r.Body, &req, h.Validate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := &catalog.Product{
		Title:        req.Title,
		Price:        req.Price,
		MinBuy:       req.MinBuy,
		IsPreorder:   req.IsPreorder,
		Wholesale:    req.Wholesale,
		Instructions: req.Instructions,
	}
	if err := h.Catalog.CreateProduct(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := validation.DecodeAndValidate(r.Body, &req, h.Validate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := &catalog.Product{
		ID:           chi.URLParam(r, "id"),
		Title:        req.Title,
		Price:        req.Price,
		MinBuy:       req.MinBuy,
		IsPreorder:   req.IsPreorder,
		Wholesale:    req.Wholesale,
		Instructions: req.Instructions,
	}
	err := h.Catalog.UpdateProduct(r.Context(), p)
	if errors.Is(err, catalog.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	err := h.Catalog.SoftDeleteProduct(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ---- promos ----

type promoReq struct {
	Code            string     `json:"code" validate:"required"`
	Title           string     `json:"title" validate:"required"`
	Description     string     `json:"description"`
	DiscountPercent int        `json:"discount_percent" validate:"min=0,max=100"`
	DiscountValue   int64      `json:"discount_value" validate:"min=0"`
	IsActive        *bool      `json:"is_active"`
	ValidFrom       *time.Time `json:"valid_from"`
	ValidUntil      *time.Time `json:"valid_until"`
}

func (h *AdminHandler) ListPromos(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Catalog.ListPromos(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *AdminHandler) CreatePromo(w http.ResponseWriter, r *http.Request) {
	var req promoReq
	if err := validation.DecodeAndValidate(r.Body, &req, h.Validate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	p := &catalog.Promo{
		Code:            req.Code,
		Title:           req.Title,
		Description:     req.Description,
		DiscountPercent: req.DiscountPercent,
		DiscountValue:   req.DiscountValue,
		IsActive:        active,
		ValidFrom:       req.ValidFrom,
		ValidUntil:      req.ValidUntil,
	}
	if err := h.Catalog.CreatePromo(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *AdminHandler) UpdatePromo(w http.ResponseWriter, r *http.Request) {
	var req promoReq
	if err := validation.DecodeAndValidate(r.Body, &req, h.Validate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	p := &catalog.Promo{
		ID:              chi.URLParam(r, "id"),
		Title:           req.Title,
		Description:     req.Description,
		DiscountPercent: req.DiscountPercent,
		DiscountValue:   req.DiscountValue,
		IsActive:        active,
		ValidFrom:       req.ValidFrom,
		ValidUntil:      req.ValidUntil,
	}
	err := h.Catalog.UpdatePromo(r.Context(), p)
	if errors.Is(err, catalog.ErrPromoNotFound) {
		writeError(w, http.StatusNotFound, "Promo not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ---- stock import ----

type importStockReq struct {
	ProductID string              `json:"product_id" validate:"required"`
	Accounts  []notify.Credential `json:"accounts" validate:"required,min=1,dive"`
}

// ImportStock: bulk import kredensial, terenkripsi at-rest, masuk pool unsold.
func (h *AdminHandler) ImportStock(w http.ResponseWriter, r *http.Request) {
	var req importStockReq
	if err := validation.DecodeAndValidate(r.Body, &req, h.Validate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows := make([]catalog.StockRow, 0, len(req.Accounts))
	for _, acc := range req.Accounts {
		email, err := h.Crypto.Encrypt(acc.Email)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		pass, err := h.Crypto.Encrypt(acc.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		rows = append(rows, catalog.StockRow{Email: email, Password: pass})
	}

	ids, err := h.Catalog.InsertStock(r.Context(), req.ProductID, rows)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(ids)})
}

// ---- preorder delivery ----

type preorderDeliverReq struct {
	OrderID  string              `json:"order_id" validate:"required"`
	Accounts []notify.Credential `json:"accounts" validate:"required,min=1,dive"`
}

// DeliverPreorder: jalur manual. Tidak ada cek jumlah vs quantity order dan
// tidak ada cek status paid -- kontrol finansial preorder memang operasional.
// Kirim ulang diperbolehkan dan tiap panggilan membuat baris stok baru.
func (h *AdminHandler) DeliverPreorder(w http.ResponseWriter, r *http.Request) {
	var req preorderDeliverReq
	if err := validation.DecodeAndValidate(r.Body, &req, h.Validate); err != nil {
		writeError(w, http.StatusBadRequest, "order_id dan accounts diperlukan")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	order, err := h.Orders.GetByID(ctx, req.OrderID)
	if errors.Is(err, orders.ErrOrderNotFound) {
		writeError(w, http.StatusNotFound, "Order tidak ditemukan")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rows := make([]catalog.StockRow, 0, len(req.Accounts))
	for _, acc := range req.Accounts {
		email, err := h.Crypto.Encrypt(acc.Email)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		pass, err := h.Crypto.Encrypt(acc.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		rows = append(rows, catalog.StockRow{Email: email, Password: pass, Sold: true})
	}

	ids, err := h.Catalog.InsertStock(ctx, order.ProductID, rows)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Gagal menyimpan akun: "+err.Error())
		return
	}
	if err := h.Orders.LinkAccounts(ctx, order.ID, ids); err != nil {
		// akun sudah tercatat sold; link gagal tinggal dilihat admin di log
		log.Printf("preorder: link order_accounts %s: %v", order.ID, err)
	}

	if wa := notify.NormalizePhone(order.BuyerWhatsApp); wa != "" {
		h.Notify.WhatsApp(wa, notify.PreorderDeliveryWA(order.ProductTitle, req.Accounts), order.TransactionID)
	}
	subject, html := notify.PreorderDeliveryEmail(order.ProductTitle, req.Accounts)
	h.Notify.Email(order.BuyerEmail, subject, html, order.TransactionID)

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "count": len(req.Accounts)})
}
