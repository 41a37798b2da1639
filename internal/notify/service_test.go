package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/fpedia/fpedia-backend/internal/kafka"
)

type fakeWA struct {
	sent []WhatsAppJob
	err  error
}

func (f *fakeWA) Send(_ context.Context, number, message string) error {
	f.sent = append(f.sent, WhatsAppJob{To: number, Message: message})
	return f.err
}

type fakeMail struct {
	sent []EmailJob
	err  error
}

func (f *fakeMail) Send(to, subject, html string) error {
	f.sent = append(f.sent, EmailJob{To: to, Subject: subject, HTML: html})
	return f.err
}

func envelopeMsg(t *testing.T, eventType string, payload any) kafkago.Message {
	t.Helper()
	env := Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "test",
		Payload:      kafkax.MustMarshal(payload),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestHandleJobDispatchesWhatsApp(t *testing.T) {
	wa := &fakeWA{}
	svc := &Service{WhatsApp: wa, Email: &fakeMail{}}

	m := envelopeMsg(t, EventWhatsAppJob, WhatsAppJob{To: "628123456789", Message: "halo"})
	if err := svc.HandleJob(context.Background(), m); err != nil {
		t.Fatalf("HandleJob: %v", err)
	}
	if len(wa.sent) != 1 || wa.sent[0].To != "628123456789" || wa.sent[0].Message != "halo" {
		t.Fatalf("unexpected sends: %+v", wa.sent)
	}
}

func TestHandleJobDispatchesEmail(t *testing.T) {
	mail := &fakeMail{}
	svc := &Service{WhatsApp: &fakeWA{}, Email: mail}

	m := envelopeMsg(t, EventEmailJob, EmailJob{To: "a@b.c", Subject: "s", HTML: "<p>x</p>"})
	if err := svc.HandleJob(context.Background(), m); err != nil {
		t.Fatalf("HandleJob: %v", err)
	}
	if len(mail.sent) != 1 || mail.sent[0].Subject != "s" {
		t.Fatalf("unexpected sends: %+v", mail.sent)
	}
}

func TestHandleJobSendFailureIsSwallowed(t *testing.T) {
	// gagal kirim = log + commit, bukan retry
	svc := &Service{WhatsApp: &fakeWA{err: errors.New("gateway down")}, Email: &fakeMail{}}
	m := envelopeMsg(t, EventWhatsAppJob, WhatsAppJob{To: "628123456789", Message: "halo"})
	if err := svc.HandleJob(context.Background(), m); err != nil {
		t.Fatalf("send failure must not bubble up, got %v", err)
	}
}

func TestHandleJobIgnoresGarbage(t *testing.T) {
	svc := &Service{WhatsApp: &fakeWA{}, Email: &fakeMail{}}
	if err := svc.HandleJob(context.Background(), kafkago.Message{Value: []byte("{not json")}); err != nil {
		t.Fatalf("bad envelope must be committed, got %v", err)
	}
	m := envelopeMsg(t, "SomethingElse", map[string]string{})
	if err := svc.HandleJob(context.Background(), m); err != nil {
		t.Fatalf("unknown event type must be ignored, got %v", err)
	}
}
