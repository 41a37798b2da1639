package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

var ErrInsufficientStock = errors.New("insufficient unsold stock")

// AlreadyAllocated: jumlah kredensial yang sudah tersambung ke order
// (idempotency short-circuit utk fulfillment).
func (r *Repo) AlreadyAllocated(ctx context.Context, orderID string) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM order_accounts WHERE order_id=$1`, orderID).Scan(&n)
	return n, err
}

// AllocateAccounts: klaim qty baris unsold secara atomik utk satu order.
// FOR UPDATE SKIP LOCKED -> dua order yang balapan tidak pernah dapat baris
// yang sama; kalau baris yang kebagian < qty, seluruh transaksi di-rollback
// dan tidak ada stok yang berubah.
func (r *Repo) AllocateAccounts(ctx context.Context, orderID, productID string, qty int) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT id FROM account_stock
		WHERE product_id=$1 AND is_sold=false
		ORDER BY created_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED`, productID, qty)
	if err != nil {
		return err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if len(ids) < qty {
		return ErrInsufficientStock // rollback via defer
	}

	for _, id := range ids {
		ct, err := tx.Exec(ctx, `
			UPDATE account_stock SET is_sold=true, sold_at=now()
			WHERE id=$1 AND is_sold=false`, id)
		if err != nil {
			return err
		}
		if ct.RowsAffected() != 1 {
			return ErrInsufficientStock
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_accounts(order_id, account_stock_id)
			VALUES ($1,$2) ON CONFLICT DO NOTHING`, orderID, id); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
