package notify

import (
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/fpedia/fpedia-backend/internal/kafka"
)

// Publisher dipenuhi oleh kafkax.Producer (dan fake di test).
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Queue: pintu keluar semua notifikasi. Publish tidak pernah error dan tidak
// pernah block; kegagalan kirim ditangani worker, bukan request handler.
type Queue struct {
	Producer Publisher
	Service  string
}

func (q *Queue) WhatsApp(to, message, correlationID string) {
	if to == "" {
		return
	}
	q.publish(EventWhatsAppJob, to, correlationID, WhatsAppJob{To: to, Message: message})
}

func (q *Queue) Email(to, subject, html, correlationID string) {
	if to == "" {
		return
	}
	q.publish(EventEmailJob, to, correlationID, EmailJob{To: to, Subject: subject, HTML: html})
}

func (q *Queue) publish(eventType, target, correlationID string, payload any) {
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      q.Service,
		CorrelationID: correlationID,
		Payload:       kafkax.MustMarshal(payload),
	}
	q.Producer.Publish(PartitionKey(target), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
