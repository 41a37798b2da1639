// Package ratelimit: sliding window sederhana di atas tabel rate_limits.
// Pola count-then-insert: dua request simultan bisa sama-sama lolos hitungan
// sebelum salah satunya tercatat (undercount maksimal concurrency-1).
// Throttling di sini approximate, bukan jaminan ketat.
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"
)

type Store interface {
	CountSince(ctx context.Context, key string, since time.Time) (int, error)
	Record(ctx context.Context, key string, at time.Time) error
}

type Limiter struct {
	Store Store
	Now   func() time.Time
}

// Key: purpose:ip:user-agent. Gabungan IP+UA supaya spoof IP polos saja
// tidak cukup utk reset jatah.
func Key(purpose, ip, ua string) string {
	return fmt.Sprintf("%s:%s:%s", purpose, ip, ua)
}

// Allow: false kalau jatah dalam window sudah habis. Error DB -> fail open,
// jangan blokir user valid gara-gara DB lagi bermasalah.
func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	now := l.now()
	n, err := l.Store.CountSince(ctx, key, now.Add(-window))
	if err != nil {
		log.Printf("ratelimit: count %s: %v", key, err)
		return true
	}
	if n >= limit {
		return false
	}
	if err := l.Store.Record(ctx, key, now); err != nil {
		log.Printf("ratelimit: record %s: %v", key, err)
	}
	return true
}

func (l *Limiter) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}
