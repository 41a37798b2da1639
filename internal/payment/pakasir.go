// Package payment: client Pakasir (gateway QRIS). Biaya pembayaran ditanggung
// pembeli; response berisi fee & total_payment.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PlaceholderQR dipakai saat gateway gagal / kredensial kosong. Checkout tetap
// jalan (degraded mode) tapi order yang lahir dari QR ini tidak akan pernah
// bisa dibayar.
const PlaceholderQR = "00020101021226590013ID.CO.QRIS.WWW01189360091800216005230208216005230303UME51440014ID.CO.QRIS.WWW0215ID10243228429300303UME5204792953033605409100003.005802ID5907Pakasir6012KAB. KEBUMEN61055439262230519SP25RZRATEQI2HQ65Q46304A079"

const StatusCompleted = "completed"

type Client struct {
	BaseURL string
	Slug    string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, slug, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		Slug:    slug,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Configured() bool { return c.Slug != "" && c.APIKey != "" }

type Charge struct {
	QRString     string
	Fee          int64
	TotalPayment int64
}

type createReq struct {
	Project string `json:"project"`
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
	APIKey  string `json:"api_key"`
}

type createResp struct {
	Payment struct {
		PaymentNumber string `json:"payment_number"`
		Fee           int64  `json:"fee"`
		TotalPayment  int64  `json:"total_payment"`
	} `json:"payment"`
}

// CreateQRISCharge minta payload QR utk amount tertentu.
func (c *Client) CreateQRISCharge(ctx context.Context, orderID string, amount int64) (*Charge, error) {
	body, err := json.Marshal(createReq{
		Project: c.Slug,
		OrderID: orderID,
		Amount:  amount,
		APIKey:  c.APIKey,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/transactioncreate/qris", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pakasir: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pakasir: status %d", resp.StatusCode)
	}

	var out createResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("pakasir: decode: %w", err)
	}
	if out.Payment.PaymentNumber == "" {
		return nil, fmt.Errorf("pakasir: no payment_number in response")
	}
	total := out.Payment.TotalPayment
	if total == 0 {
		total = amount + out.Payment.Fee
	}
	return &Charge{
		QRString:     out.Payment.PaymentNumber,
		Fee:          out.Payment.Fee,
		TotalPayment: total,
	}, nil
}

// WebhookPayload: body callback dari Pakasir.
type WebhookPayload struct {
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	Project       string `json:"project,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	CompletedAt   string `json:"completed_at,omitempty"`
	APIKey        string `json:"api_key,omitempty"`
}
