package otp

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Insert(ctx context.Context, c *Code) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO otp_codes(id, identifier, code, purpose, expires_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		c.ID, c.Identifier, c.Code, c.Purpose, c.ExpiresAt, c.CreatedAt)
	return err
}

func (r *Repo) CountRecent(ctx context.Context, identifier string, since time.Time) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM otp_codes WHERE identifier=$1 AND created_at >= $2`,
		identifier, since).Scan(&n)
	return n, err
}

// FindLatest: baris terbaru yang cocok; (nil, nil) kalau tidak ada.
func (r *Repo) FindLatest(ctx context.Context, identifier, code, purpose string) (*Code, error) {
	var c Code
	err := r.DB.QueryRow(ctx, `
		SELECT id, identifier, code, purpose, expires_at, created_at
		FROM otp_codes
		WHERE identifier=$1 AND code=$2 AND purpose=$3
		ORDER BY created_at DESC
		LIMIT 1`, identifier, code, purpose).
		Scan(&c.ID, &c.Identifier, &c.Code, &c.Purpose, &c.ExpiresAt, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM otp_codes WHERE id=$1`, id)
	return err
}
