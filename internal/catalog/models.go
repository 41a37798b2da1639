package catalog

import "time"

type Product struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Price        int64           `json:"price"` // rupiah, bukan sen
	MinBuy       int             `json:"min_buy"`
	IsPreorder   bool            `json:"is_preorder"`
	Wholesale    []WholesaleTier `json:"wholesale_prices,omitempty"`
	Instructions string          `json:"instructions,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    *time.Time      `json:"deleted_at,omitempty"` // soft delete
}

// WholesaleTier: harga satuan turun kalau beli >= MinQty.
type WholesaleTier struct {
	MinQty int   `json:"min_qty"`
	Price  int64 `json:"price"`
}

type Promo struct {
	ID              string     `json:"id"`
	Code            string     `json:"code"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	DiscountPercent int        `json:"discount_percent"`
	DiscountValue   int64      `json:"discount_value"`
	IsActive        bool       `json:"is_active"`
	ValidFrom       *time.Time `json:"valid_from,omitempty"`
	ValidUntil      *time.Time `json:"valid_until,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// AccountStock: satu unit barang digital (email+password terenkripsi at-rest).
// Sekali is_sold=true, baris tidak pernah dipindah ke order lain.
type AccountStock struct {
	ID        string     `json:"id"`
	ProductID string     `json:"product_id"`
	Email     string     `json:"-"`
	Password  string     `json:"-"`
	IsSold    bool       `json:"is_sold"`
	SoldAt    *time.Time `json:"sold_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
