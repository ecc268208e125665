package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/profmed/crm-api/pkg/circuitbreaker"
)

// WhatsAppConfig points at a Green API-compatible gateway instance
type WhatsAppConfig struct {
	BaseURL    string
	InstanceID string
	Token      string
	Enabled    bool
}

// WhatsAppClient sends text messages through the gateway. Calls run
// under a circuit breaker so a dead gateway cannot stall request
// handling for long.
type WhatsAppClient struct {
	cfg     WhatsAppConfig
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
}

func NewWhatsAppClient(cfg WhatsAppConfig) *WhatsAppClient {
	return &WhatsAppClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		breaker: circuitbreaker.New(circuitbreaker.Settings{
			Name:        "whatsapp",
			MaxFailures: 5,
			Timeout:     time.Minute,
		}),
	}
}

type sendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

func (c *WhatsAppClient) SendMessage(ctx context.Context, phone, text string) error {
	if !c.cfg.Enabled {
		return nil
	}

	return c.breaker.Execute(func() error {
		url := fmt.Sprintf("%s/waInstance%s/sendMessage/%s",
			strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.InstanceID, c.cfg.Token)

		body, err := json.Marshal(sendMessageRequest{
			ChatID:  normalizePhone(phone) + "@c.us",
			Message: text,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to send whatsapp message: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return fmt.Errorf("whatsapp gateway returned status %d", resp.StatusCode)
		}
		return nil
	})
}

// normalizePhone strips formatting to digits and forces the country
// prefix the gateway expects on the chat ID.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits != "" && !strings.HasPrefix(digits, "7") {
		digits = "7" + digits
	}
	return digits
}
