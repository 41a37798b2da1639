package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrPromoNotFound   = errors.New("promo not found")
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	var wholesale []byte
	err := r.DB.QueryRow(ctx, `
		SELECT id, title, price, min_buy, is_preorder, wholesale_prices, instructions, created_at, updated_at
		FROM products WHERE id=$1 AND deleted_at IS NULL`, id).
		Scan(&p.ID, &p.Title, &p.Price, &p.MinBuy, &p.IsPreorder, &wholesale, &p.Instructions, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(wholesale) > 0 {
		if err := json.Unmarshal(wholesale, &p.Wholesale); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, title, price, min_buy, is_preorder, wholesale_prices, instructions, created_at, updated_at
		FROM products WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		var wholesale []byte
		if err := rows.Scan(&p.ID, &p.Title, &p.Price, &p.MinBuy, &p.IsPreorder, &wholesale, &p.Instructions, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if len(wholesale) > 0 {
			if err := json.Unmarshal(wholesale, &p.Wholesale); err != nil {
				return nil, err
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) CreateProduct(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.MinBuy < 1 {
		p.MinBuy = 1
	}
	wholesale, err := json.Marshal(p.Wholesale)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx, `
		INSERT INTO products(id, title, price, min_buy, is_preorder, wholesale_prices, instructions)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.Title, p.Price, p.MinBuy, p.IsPreorder, wholesale, p.Instructions)
	return err
}

func (r *Repo) UpdateProduct(ctx context.Context, p *Product) error {
	wholesale, err := json.Marshal(p.Wholesale)
	if err != nil {
		return err
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE products
		SET title=$2, price=$3, min_buy=$4, is_preorder=$5, wholesale_prices=$6, instructions=$7, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL`,
		p.ID, p.Title, p.Price, p.MinBuy, p.IsPreorder, wholesale, p.Instructions)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// SoftDeleteProduct: produk tidak pernah di-hard-delete (order lama masih refer).
func (r *Repo) SoftDeleteProduct(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE products SET deleted_at=now() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// FindPromo: lookup by code (case-insensitive, disimpan uppercase).
// Tidak ketemu -> (nil, nil); validasi masa berlaku urusan caller.
func (r *Repo) FindPromo(ctx context.Context, code string) (*Promo, error) {
	var p Promo
	err := r.DB.QueryRow(ctx, `
		SELECT id, code, title, description, discount_percent, discount_value, is_active, valid_from, valid_until, created_at
		FROM promos WHERE code=$1`, strings.ToUpper(strings.TrimSpace(code))).
		Scan(&p.ID, &p.Code, &p.Title, &p.Description, &p.DiscountPercent, &p.DiscountValue, &p.IsActive, &p.ValidFrom, &p.ValidUntil, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) ListPromos(ctx context.Context) ([]Promo, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, code, title, description, discount_percent, discount_value, is_active, valid_from, valid_until, created_at
		FROM promos ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Promo
	for rows.Next() {
		var p Promo
		if err := rows.Scan(&p.ID, &p.Code, &p.Title, &p.Description, &p.DiscountPercent, &p.DiscountValue, &p.IsActive, &p.ValidFrom, &p.ValidUntil, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) CreatePromo(ctx context.Context, p *Promo) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	_, err := r.DB.Exec(ctx, `
		INSERT INTO promos(id, code, title, description, discount_percent, discount_value, is_active, valid_from, valid_until)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.Code, p.Title, p.Description, p.DiscountPercent, p.DiscountValue, p.IsActive, p.ValidFrom, p.ValidUntil)
	return err
}

func (r *Repo) UpdatePromo(ctx context.Context, p *Promo) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE promos
		SET title=$2, description=$3, discount_percent=$4, discount_value=$5, is_active=$6, valid_from=$7, valid_until=$8
		WHERE id=$1`,
		p.ID, p.Title, p.Description, p.DiscountPercent, p.DiscountValue, p.IsActive, p.ValidFrom, p.ValidUntil)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrPromoNotFound
	}
	return nil
}

// AvailableStock: hitung unsold. Ini READ, bukan lock; race antara dua checkout
// memperebutkan unit terakhir baru ketahuan saat alokasi.
func (r *Repo) AvailableStock(ctx context.Context, productID string) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM account_stock WHERE product_id=$1 AND is_sold=false`, productID).Scan(&n)
	return n, err
}

// Sold menentukan apakah baris stok baru langsung ditandai terjual
// (jalur preorder delivery) atau masuk pool (jalur import).
type StockRow struct {
	Email    string // sudah terenkripsi oleh caller
	Password string
	Sold     bool
}

// InsertStock bulk-insert baris stok, return id yang dibuat urut input.
func (r *Repo) InsertStock(ctx context.Context, productID string, rows []StockRow) ([]string, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ids := make([]string, 0, len(rows))
	now := time.Now().UTC()
	for _, row := range rows {
		id := uuid.NewString()
		var soldAt *time.Time
		if row.Sold {
			soldAt = &now
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO account_stock(id, product_id, email, password, is_sold, sold_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			id, productID, row.Email, row.Password, row.Sold, soldAt); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ids, nil
}
