package orders

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fpedia/fpedia-backend/internal/notify"
)

var ErrOrderNotFound = errors.New("order not found")

type Repo struct{ DB *pgxpool.Pool }

// NewTransactionID: id yang terlihat pembeli & gateway, format lama INV-<ms>-<nnn>.
func NewTransactionID() string {
	return fmt.Sprintf("INV-%d-%d", time.Now().UnixMilli(), rand.Intn(1000))
}

func (r *Repo) Create(ctx context.Context, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO orders(id, transaction_id, product_id, buyer_name, buyer_email, buyer_whatsapp,
		                   note, promo_text, quantity, subtotal, fee, total_price,
		                   payment_status, payment_method, payment_qr, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		o.ID, o.TransactionID, o.ProductID, o.BuyerName, o.BuyerEmail, o.BuyerWhatsApp,
		o.Note, o.PromoText, o.Quantity, o.Subtotal, o.Fee, o.TotalPrice,
		o.PaymentStatus, o.PaymentMethod, o.PaymentQR, o.ExpiresAt)
	return err
}

const orderSelect = `
	SELECT o.id, o.transaction_id, o.product_id, o.buyer_name, o.buyer_email, o.buyer_whatsapp,
	       o.note, o.promo_text, o.quantity, o.subtotal, o.fee, o.total_price,
	       o.payment_status, o.payment_method, o.payment_qr, o.expires_at, o.created_at,
	       p.title, p.instructions
	FROM orders o JOIN products p ON p.id = o.product_id`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.TransactionID, &o.ProductID, &o.BuyerName, &o.BuyerEmail, &o.BuyerWhatsApp,
		&o.Note, &o.PromoText, &o.Quantity, &o.Subtotal, &o.Fee, &o.TotalPrice,
		&o.PaymentStatus, &o.PaymentMethod, &o.PaymentQR, &o.ExpiresAt, &o.CreatedAt,
		&o.ProductTitle, &o.ProductInstructions)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Order, error) {
	return scanOrder(r.DB.QueryRow(ctx, orderSelect+` WHERE o.id=$1`, id))
}

func (r *Repo) GetByTransactionID(ctx context.Context, txID string) (*Order, error) {
	return scanOrder(r.DB.QueryRow(ctx, orderSelect+` WHERE o.transaction_id=$1`, txID))
}

// MarkPaid: satu UPDATE tanpa guard status. Pre-check idempotency ada di
// webhook handler; panggilan ganda yang lolos pre-check bisa kirim notifikasi
// dobel (kelemahan yang diterima, lihat DESIGN.md).
func (r *Repo) MarkPaid(ctx context.Context, orderID string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE orders SET payment_status=$2 WHERE id=$1`, orderID, StatusPaid)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// AccountsForOrder: kredensial yang teralokasi ke order, masih terenkripsi.
func (r *Repo) AccountsForOrder(ctx context.Context, orderID string) ([]notify.Credential, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT a.email, a.password
		FROM order_accounts oa JOIN account_stock a ON a.id = oa.account_stock_id
		WHERE oa.order_id=$1
		ORDER BY a.sold_at, a.id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []notify.Credential
	for rows.Next() {
		var c notify.Credential
		if err := rows.Scan(&c.Email, &c.Password); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LinkAccounts dipakai jalur preorder delivery: stok sudah dibuat sold oleh
// admin, tinggal disambungkan ke order.
func (r *Repo) LinkAccounts(ctx context.Context, orderID string, accountIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, id := range accountIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_accounts(order_id, account_stock_id)
			VALUES ($1,$2) ON CONFLICT DO NOTHING`, orderID, id); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// PendingCreatedBetween: order pending utk reminder pembayaran (cron).
func (r *Repo) PendingCreatedBetween(ctx context.Context, from, to time.Time) ([]Order, error) {
	rows, err := r.DB.Query(ctx, orderSelect+`
		WHERE o.payment_status=$1 AND o.created_at > $2 AND o.created_at < $3`,
		StatusPending, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}
