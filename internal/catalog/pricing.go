package catalog

import (
	"fmt"
	"time"

	"github.com/fpedia/fpedia-backend/internal/notify"
)

// UnitPrice: harga satuan setelah tier grosir. Tier dengan MinQty terbesar
// yang masih <= qty yang menang; tanpa tier yang cocok pakai harga dasar.
func UnitPrice(p *Product, qty int) int64 {
	price := p.Price
	best := 0
	for _, t := range p.Wholesale {
		if qty >= t.MinQty && t.MinQty > best {
			best = t.MinQty
			price = t.Price
		}
	}
	return price
}

// Discount menghitung potongan promo terhadap subtotal.
// Promo di luar masa berlaku atau nonaktif -> potongan 0.
// Potongan tidak pernah melebihi subtotal.
func Discount(p *Promo, subtotal int64, now time.Time) (amount int64, promoText string) {
	if p == nil || !p.IsActive {
		return 0, ""
	}
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return 0, ""
	}
	if p.ValidUntil != nil && now.After(*p.ValidUntil) {
		return 0, ""
	}

	switch {
	case p.DiscountPercent > 0:
		// pembulatan setengah ke atas, sama dengan Math.round
		amount = (subtotal*int64(p.DiscountPercent) + 50) / 100
		promoText = fmt.Sprintf("Diskon %d%% (Kode: %s)", p.DiscountPercent, p.Code)
	case p.DiscountValue > 0:
		amount = p.DiscountValue
		promoText = fmt.Sprintf("Diskon %s (Kode: %s)", notify.FormatRupiah(p.DiscountValue), p.Code)
	default:
		return 0, ""
	}
	if amount > subtotal {
		amount = subtotal
	}
	return amount, promoText
}
