package ratelimit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) CountSince(ctx context.Context, key string, since time.Time) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM rate_limits WHERE key=$1 AND created_at > $2`, key, since).Scan(&n)
	return n, err
}

func (r *Repo) Record(ctx context.Context, key string, at time.Time) error {
	_, err := r.DB.Exec(ctx, `INSERT INTO rate_limits(key, created_at) VALUES ($1,$2)`, key, at)
	return err
}

// Prune buang marker lama; dipanggil berkala, bukan di jalur request.
func (r *Repo) Prune(ctx context.Context, olderThan time.Duration) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM rate_limits WHERE created_at < $1`, time.Now().Add(-olderThan))
	return err
}
