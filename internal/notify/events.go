package notify

import (
	"encoding/json"
	"time"
)

const (
	EventWhatsAppJob = "WhatsAppJob"
	EventEmailJob    = "EmailJob"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // WhatsAppJob | EmailJob
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`                 // e.g., "fpedia-api"
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya transaction_id order
	Payload       json.RawMessage `json:"payload"`
}

type WhatsAppJob struct {
	To      string `json:"to"` // 62xxxx, sudah dinormalisasi
	Message string `json:"message"`
}

type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}
