package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WhatsAppClient bicara ke whatsapp-service (gateway internal).
type WhatsAppClient struct {
	BaseURL string
	Secret  string
	HTTP    *http.Client
}

func NewWhatsAppClient(baseURL, secret string) *WhatsAppClient {
	return &WhatsAppClient{
		BaseURL: baseURL,
		Secret:  secret,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type waSendReq struct {
	Number  string `json:"number"`
	Message string `json:"message"`
}

func (c *WhatsAppClient) Send(ctx context.Context, number, message string) error {
	body, err := json.Marshal(waSendReq{Number: number, Message: message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/send-message", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Secret != "" {
		req.Header.Set("X-Api-Key", c.Secret)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("whatsapp send: status %d", resp.StatusCode)
	}
	return nil
}
