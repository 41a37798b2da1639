package orders

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fpedia/fpedia-backend/internal/crypto"
	"github.com/fpedia/fpedia-backend/internal/notify"
)

type fakeStore struct {
	order *Order

	markPaidCalls int
	allocCalls    int
	allocQty      int
	allocErr      error
	linked        int
	accounts      []notify.Credential
	history       []string
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*Order, error) {
	f.history = append(f.history, "get")
	if f.order == nil || f.order.ID != id {
		return nil, ErrOrderNotFound
	}
	return f.order, nil
}

func (f *fakeStore) MarkPaid(_ context.Context, _ string) error {
	f.history = append(f.history, "mark_paid")
	f.markPaidCalls++
	return nil
}

func (f *fakeStore) AlreadyAllocated(_ context.Context, _ string) (int, error) {
	return f.linked, nil
}

func (f *fakeStore) AllocateAccounts(_ context.Context, _, _ string, qty int) error {
	f.history = append(f.history, "allocate")
	f.allocCalls++
	f.allocQty = qty
	return f.allocErr
}

func (f *fakeStore) AccountsForOrder(_ context.Context, _ string) ([]notify.Credential, error) {
	return f.accounts, nil
}

type fakeStock struct{ available int }

func (f *fakeStock) AvailableStock(_ context.Context, _ string) (int, error) {
	return f.available, nil
}

type sentJob struct {
	kind, to, body, subject string
}

type fakeNotifier struct{ jobs []sentJob }

func (f *fakeNotifier) WhatsApp(to, message, _ string) {
	f.jobs = append(f.jobs, sentJob{kind: "wa", to: to, body: message})
}

func (f *fakeNotifier) Email(to, subject, html, _ string) {
	f.jobs = append(f.jobs, sentJob{kind: "email", to: to, subject: subject, body: html})
}

func testOrder() *Order {
	return &Order{
		ID:            "oid-1",
		TransactionID: "INV-1-1",
		ProductID:     "pid-1",
		BuyerEmail:    "buyer@mail.com",
		BuyerWhatsApp: "081234567890",
		Quantity:      2,
		TotalPrice:    200000,
		PaymentStatus: StatusPending,
		ProductTitle:  "Akun Premium",
	}
}

func newFulfillment(store *fakeStore, stock *fakeStock, n *fakeNotifier) *Fulfillment {
	return &Fulfillment{
		Store:      store,
		Stock:      stock,
		Notify:     n,
		Crypto:     crypto.New(""), // pass-through
		AdminEmail: "admin@fpedia.test",
		SiteURL:    "https://f-pedia.my.id",
	}
}

func TestConfirmPaidHappyPath(t *testing.T) {
	store := &fakeStore{
		order: testOrder(),
		accounts: []notify.Credential{
			{Email: "a@b.c", Password: "p1"},
			{Email: "d@e.f", Password: "p2"},
		},
	}
	n := &fakeNotifier{}
	f := newFulfillment(store, &fakeStock{available: 10}, n)

	if err := f.ConfirmPaid(context.Background(), "oid-1"); err != nil {
		t.Fatalf("ConfirmPaid: %v", err)
	}

	wantSeq := []string{"get", "mark_paid", "allocate"}
	for i, w := range wantSeq {
		if i >= len(store.history) || store.history[i] != w {
			t.Fatalf("sequence: got %v, want prefix %v", store.history, wantSeq)
		}
	}

	// WA pembeli + email admin, tanpa alert low stock
	if len(n.jobs) != 2 {
		t.Fatalf("expected 2 notifications, got %d: %+v", len(n.jobs), n.jobs)
	}
	if n.jobs[0].kind != "wa" || n.jobs[0].to != "6281234567890" {
		t.Errorf("buyer WA: %+v", n.jobs[0])
	}
	if !strings.Contains(n.jobs[0].body, "a@b.c") {
		t.Errorf("buyer WA missing credentials:\n%s", n.jobs[0].body)
	}
	if n.jobs[1].kind != "email" || !strings.Contains(n.jobs[1].subject, "[Payment Received]") {
		t.Errorf("admin email: %+v", n.jobs[1])
	}
}

func TestConfirmPaidAllocationFailureLeavesOrderPaid(t *testing.T) {
	store := &fakeStore{order: testOrder(), allocErr: ErrInsufficientStock}
	n := &fakeNotifier{}
	f := newFulfillment(store, &fakeStock{available: 0}, n)

	err := f.ConfirmPaid(context.Background(), "oid-1")
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock, got %v", err)
	}
	// order sudah ditandai paid sebelum alokasi: inkonsistensi yang diakui,
	// diperbaiki manual oleh admin
	if store.markPaidCalls != 1 {
		t.Fatalf("markPaidCalls = %d", store.markPaidCalls)
	}
	if len(n.jobs) != 0 {
		t.Fatalf("no notifications expected on allocation failure, got %+v", n.jobs)
	}
}

func TestConfirmPaidLowStockAlert(t *testing.T) {
	store := &fakeStore{order: testOrder(), accounts: []notify.Credential{{Email: "a@b.c", Password: "p"}}}
	n := &fakeNotifier{}
	f := newFulfillment(store, &fakeStock{available: LowStockThreshold - 1}, n)

	if err := f.ConfirmPaid(context.Background(), "oid-1"); err != nil {
		t.Fatalf("ConfirmPaid: %v", err)
	}
	last := n.jobs[len(n.jobs)-1]
	if last.kind != "email" || !strings.Contains(last.subject, "[LOW STOCK]") {
		t.Fatalf("expected low stock email last, got %+v", last)
	}
}

func TestConfirmPaidSkipsBuyerWAOnBadNumber(t *testing.T) {
	o := testOrder()
	o.BuyerWhatsApp = "123" // gagal normalisasi
	store := &fakeStore{order: o, accounts: []notify.Credential{{Email: "a@b.c", Password: "p"}}}
	n := &fakeNotifier{}
	f := newFulfillment(store, &fakeStock{available: 10}, n)

	if err := f.ConfirmPaid(context.Background(), "oid-1"); err != nil {
		t.Fatalf("ConfirmPaid: %v", err)
	}
	for _, j := range n.jobs {
		if j.kind == "wa" {
			t.Fatalf("buyer WA should be skipped for invalid number, got %+v", j)
		}
	}
}

func TestConfirmPaidSkipsAllocationWhenFullyLinked(t *testing.T) {
	store := &fakeStore{
		order:    testOrder(),
		linked:   2, // replay: kedua unit sudah tersambung
		accounts: []notify.Credential{{Email: "a@b.c", Password: "p1"}, {Email: "d@e.f", Password: "p2"}},
	}
	n := &fakeNotifier{}
	f := newFulfillment(store, &fakeStock{available: 10}, n)

	if err := f.ConfirmPaid(context.Background(), "oid-1"); err != nil {
		t.Fatalf("ConfirmPaid: %v", err)
	}
	if store.allocCalls != 0 {
		t.Errorf("allocation ran despite accounts already linked")
	}
	if len(n.jobs) != 2 {
		t.Errorf("notifications = %d, want 2", len(n.jobs))
	}
}

func TestConfirmPaidTopsUpPartialAllocation(t *testing.T) {
	store := &fakeStore{order: testOrder(), linked: 1,
		accounts: []notify.Credential{{Email: "a@b.c", Password: "p1"}}}
	f := newFulfillment(store, &fakeStock{available: 10}, &fakeNotifier{})

	if err := f.ConfirmPaid(context.Background(), "oid-1"); err != nil {
		t.Fatalf("ConfirmPaid: %v", err)
	}
	if store.allocCalls != 1 || store.allocQty != 1 {
		t.Errorf("alloc calls=%d qty=%d, want satu kali utk 1 unit", store.allocCalls, store.allocQty)
	}
}

func TestConfirmPaidUnknownOrder(t *testing.T) {
	f := newFulfillment(&fakeStore{}, &fakeStock{}, &fakeNotifier{})
	if err := f.ConfirmPaid(context.Background(), "nope"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("want ErrOrderNotFound, got %v", err)
	}
}
