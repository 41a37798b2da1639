package otp

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memStore struct {
	codes []*Code
	next  int
}

func (m *memStore) Insert(_ context.Context, c *Code) error {
	m.next++
	c.ID = string(rune('a' + m.next))
	cp := *c
	m.codes = append(m.codes, &cp)
	return nil
}

func (m *memStore) CountRecent(_ context.Context, identifier string, since time.Time) (int, error) {
	n := 0
	for _, c := range m.codes {
		if c.Identifier == identifier && !c.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) FindLatest(_ context.Context, identifier, code, purpose string) (*Code, error) {
	var best *Code
	for _, c := range m.codes {
		if c.Identifier == identifier && c.Code == code && c.Purpose == purpose {
			if best == nil || c.CreatedAt.After(best.CreatedAt) {
				best = c
			}
		}
	}
	return best, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	out := m.codes[:0]
	for _, c := range m.codes {
		if c.ID != id {
			out = append(out, c)
		}
	}
	m.codes = out
	return nil
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestIssueAndVerifySingleUse(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := &memStore{}
	svc := &Service{Store: store, Now: fixedClock(now)}

	c, err := svc.Issue(context.Background(), "buyer@mail.com", PurposeRegister)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(c.Code) != 6 {
		t.Fatalf("code %q not 6 digits", c.Code)
	}

	if err := svc.Verify(context.Background(), "buyer@mail.com", c.Code, PurposeRegister); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	// sekali pakai: baris terhapus, verifikasi kedua -> not found
	err = svc.Verify(context.Background(), "buyer@mail.com", c.Code, PurposeRegister)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("second verify: want ErrNotFound, got %v", err)
	}
}

func TestVerifyRequiresExactMatch(t *testing.T) {
	now := time.Now()
	store := &memStore{}
	svc := &Service{Store: store, Now: fixedClock(now)}

	c, _ := svc.Issue(context.Background(), "628123456789", PurposeResetPassword)

	cases := []struct {
		identifier, code, purpose string
	}{
		{"628123456789", "000000", PurposeResetPassword}, // kode salah
		{"628999999999", c.Code, PurposeResetPassword},   // identifier salah
		{"628123456789", c.Code, PurposeRegister},        // purpose salah
	}
	for _, cse := range cases {
		if err := svc.Verify(context.Background(), cse.identifier, cse.code, cse.purpose); !errors.Is(err, ErrNotFound) {
			t.Errorf("verify(%q,%q,%q): want ErrNotFound, got %v", cse.identifier, cse.code, cse.purpose, err)
		}
	}
	// yang benar tetap jalan
	if err := svc.Verify(context.Background(), "628123456789", c.Code, PurposeResetPassword); err != nil {
		t.Fatalf("correct verify: %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := &memStore{}
	svc := &Service{Store: store, Now: fixedClock(issuedAt)}

	c, _ := svc.Issue(context.Background(), "buyer@mail.com", PurposeRegister)

	// tepat di batas: masih valid
	svc.Now = fixedClock(issuedAt.Add(CodeTTL))
	if err := svc.Verify(context.Background(), "buyer@mail.com", c.Code, PurposeRegister); err != nil {
		t.Fatalf("at-boundary verify: %v", err)
	}

	c2, _ := svc.Issue(context.Background(), "buyer@mail.com", PurposeRegister)
	svc.Now = fixedClock(issuedAt.Add(CodeTTL + 2*CodeTTL))
	if err := svc.Verify(context.Background(), "buyer@mail.com", c2.Code, PurposeRegister); !errors.Is(err, ErrExpired) {
		t.Fatalf("expired verify: want ErrExpired, got %v", err)
	}
}

func TestIssueThrottledPerIdentifier(t *testing.T) {
	now := time.Now()
	store := &memStore{}
	svc := &Service{Store: store, Now: fixedClock(now)}

	for i := 0; i < issuePerMinute; i++ {
		if _, err := svc.Issue(context.Background(), "spam@mail.com", PurposeRegister); err != nil {
			t.Fatalf("issue %d: %v", i, err)
		}
	}
	if _, err := svc.Issue(context.Background(), "spam@mail.com", PurposeRegister); !errors.Is(err, ErrThrottled) {
		t.Fatalf("want ErrThrottled, got %v", err)
	}
	// identifier lain tidak kena
	if _, err := svc.Issue(context.Background(), "lain@mail.com", PurposeRegister); err != nil {
		t.Fatalf("other identifier: %v", err)
	}
}
