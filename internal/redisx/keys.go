package redisx

import "time"

const (
	// Dedup pengiriman notifikasi: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Cache status order utk lookup publik: order_status:{transaction_id}
	KeyOrderStatus = "order_status:%s"

	// Cache jumlah stok unsold: stock_count:{product_id}
	KeyStockCount = "stock_count:%s"
)

var (
	TTLDedup       = 48 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLStockCache  = 30 * time.Second
)
