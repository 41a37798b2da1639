package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/fpedia/fpedia-backend/internal/kafka"
	"github.com/fpedia/fpedia-backend/internal/redisx"
)

type WhatsAppSender interface {
	Send(ctx context.Context, number, message string) error
}

type EmailSender interface {
	Send(to, subject, html string) error
}

// Service: sisi consumer dari antrian notifikasi. Kegagalan kirim di-log dan
// offset tetap di-commit -- tidak ada retry otomatis, sesuai kontrak
// best-effort pengiriman.
type Service struct {
	Redis       *redis.Client
	WhatsApp    WhatsAppSender
	Email       EmailSender
	ServiceName string
}

// HandleJob dipasang sebagai handler consumer topic notify.jobs.
func (s *Service) HandleJob(ctx context.Context, m kafkago.Message) error {
	var env Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// pesan korup tidak akan pernah bisa diproses, commit saja
		log.Printf("notify: bad envelope: %v", err)
		return nil
	}

	// dedup via Redis (SET NX per event_id)
	if s.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, "notify", env.EventID)
		first, err := redisx.MarkOnce(ctx, s.Redis, dkey, redisx.TTLDedup)
		if err == nil && !first {
			return nil
		}
	}

	switch env.EventType {
	case EventWhatsAppJob:
		job, err := kafkax.UnwrapPayload[WhatsAppJob](env.Payload)
		if err != nil {
			log.Printf("notify: %v", err)
			return nil
		}
		if err := s.WhatsApp.Send(ctx, job.To, job.Message); err != nil {
			log.Printf("notify: wa ke %s gagal (order=%s): %v", mask(job.To), env.CorrelationID, err)
		}
	case EventEmailJob:
		job, err := kafkax.UnwrapPayload[EmailJob](env.Payload)
		if err != nil {
			log.Printf("notify: %v", err)
			return nil
		}
		if err := s.Email.Send(job.To, job.Subject, job.HTML); err != nil {
			log.Printf("notify: email ke %s gagal (order=%s): %v", job.To, env.CorrelationID, err)
		}
	default:
		// event type lain diabaikan
	}
	return nil
}

func mask(number string) string {
	if len(number) < 8 {
		return "***"
	}
	return number[:4] + "***" + number[len(number)-3:]
}
