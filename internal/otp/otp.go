// Package otp: kode verifikasi sekali pakai utk register / reset password /
// ganti password. Baris dihapus setelah verifikasi sukses; verifikasi ulang
// terhadap baris yang sudah terhapus selalu "tidak ditemukan".
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
)

const (
	CodeTTL = 5 * time.Minute

	// max penerbitan per identifier per menit (di atas rate limit per-IP)
	issuePerMinute = 10
)

const (
	PurposeRegister       = "register"
	PurposeResetPassword  = "reset-password"
	PurposeChangePassword = "change-password"
)

var (
	ErrNotFound  = errors.New("kode otp salah atau tidak ditemukan")
	ErrExpired   = errors.New("kode otp sudah kadaluarsa")
	ErrThrottled = errors.New("terlalu banyak permintaan otp, tunggu sebentar")
)

type Code struct {
	ID         string
	Identifier string // email lowercase atau nomor 62xxx
	Code       string
	Purpose    string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

type Store interface {
	Insert(ctx context.Context, c *Code) error
	CountRecent(ctx context.Context, identifier string, since time.Time) (int, error)
	FindLatest(ctx context.Context, identifier, code, purpose string) (*Code, error)
	Delete(ctx context.Context, id string) error
}

type Service struct {
	Store Store
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Issue menerbitkan kode 6 digit baru. Kode lama tidak dihapus; yang dipakai
// verifikasi adalah baris terbaru yang cocok.
func (s *Service) Issue(ctx context.Context, identifier, purpose string) (*Code, error) {
	now := s.now()
	n, err := s.Store.CountRecent(ctx, identifier, now.Add(-time.Minute))
	if err != nil {
		return nil, err
	}
	if n >= issuePerMinute {
		return nil, ErrThrottled
	}

	code, err := sixDigits()
	if err != nil {
		return nil, err
	}
	c := &Code{
		Identifier: identifier,
		Code:       code,
		Purpose:    purpose,
		ExpiresAt:  now.Add(CodeTTL),
		CreatedAt:  now,
	}
	if err := s.Store.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Verify: kode diterima iff cocok (identifier, code, purpose) dan belum
// kadaluarsa. Sukses menghapus baris -> sekali pakai.
func (s *Service) Verify(ctx context.Context, identifier, code, purpose string) error {
	c, err := s.Store.FindLatest(ctx, identifier, code, purpose)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}
	if s.now().After(c.ExpiresAt) {
		return ErrExpired
	}
	return s.Store.Delete(ctx, c.ID)
}

func sixDigits() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
