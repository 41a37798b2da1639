package orders

import "time"

type Order struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transaction_id"` // INV-..., dipakai gateway & pembeli
	ProductID     string    `json:"product_id"`
	BuyerName     string    `json:"buyer_name,omitempty"`
	BuyerEmail    string    `json:"buyer_email"`
	BuyerWhatsApp string    `json:"buyer_whatsapp"`
	Note          string    `json:"note,omitempty"`
	PromoText     string    `json:"promo_text,omitempty"`
	Quantity      int       `json:"quantity"`
	Subtotal      int64     `json:"subtotal"`
	Fee           int64     `json:"fee"`
	TotalPrice    int64     `json:"total_price"` // subtotal - diskon + fee gateway
	PaymentStatus Status    `json:"payment_status"`
	PaymentMethod string    `json:"payment_method"`
	PaymentQR     string    `json:"payment_qr,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
	CreatedAt     time.Time `json:"created_at"`

	// diisi via join products saat fetch, bukan kolom orders
	ProductTitle        string `json:"product_title,omitempty"`
	ProductInstructions string `json:"-"`
}
