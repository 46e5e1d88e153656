package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kolekthq/kolekt-backend/internal/config"
	"golang.org/x/exp/slog"
)

// Gateway sends WhatsApp text messages to customers.
type Gateway interface {
	SendText(ctx context.Context, phone, body string) (string, error)
}

// CloudGateway talks to the WhatsApp Business Cloud API.
type CloudGateway struct {
	baseURL       string
	phoneNumberID string
	accessToken   string
	httpClient    *http.Client
}

// MockGateway logs messages instead of sending them. Used in development and
// tests.
type MockGateway struct{}

// NewGateway returns the configured gateway implementation.
func NewGateway(cfg config.WhatsAppConfig) Gateway {
	if cfg.MockGateway {
		return &MockGateway{}
	}
	return &CloudGateway{
		baseURL:       cfg.BaseURL,
		phoneNumberID: cfg.PhoneNumberID,
		accessToken:   cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type textPayload struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendText sends a plain text message through the Cloud API and returns the
// provider message id.
func (g *CloudGateway) SendText(ctx context.Context, phone, body string) (string, error) {
	payload := textPayload{
		MessagingProduct: "whatsapp",
		To:               phone,
		Type:             "text",
	}
	payload.Text.Body = body

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s/messages", g.baseURL, g.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.accessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whatsapp send failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed sendResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("whatsapp response parse failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whatsapp send failed: %s (code %d)", parsed.Error.Message, parsed.Error.Code)
	}
	if len(parsed.Messages) == 0 {
		return "", fmt.Errorf("whatsapp send returned no message id")
	}
	return parsed.Messages[0].ID, nil
}

// SendText logs the message and returns a synthetic message id.
func (g *MockGateway) SendText(_ context.Context, phone, body string) (string, error) {
	slog.Info("[MOCK WhatsApp] message sent", "phone", phone, "body", body)
	return fmt.Sprintf("MOCK-MSG-%d", time.Now().UnixNano()), nil
}
