// Package gateway wraps the outbound SMS provider behind a small
// interface so the services never see provider wire details.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/relayline/sms-assistant/internal/model"
)

// maxBodyChars is the provider's payload ceiling. Longer texts are
// truncated before sending rather than rejected.
const maxBodyChars = 1600

// Gateway delivers a text to a phone. Implementations must be safe for
// concurrent use.
type Gateway interface {
	Deliver(ctx context.Context, phone, text string) (model.DeliveryResult, error)
}

// HTTPGateway posts sends to an HTTP SMS provider. External calls are
// blocking I/O bounded by a short timeout; a timed-out send is a
// terminal failure for that request, never retried here.
type HTTPGateway struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewHTTPGateway(baseURL, apiKey string) *HTTPGateway {
	return &HTTPGateway{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type sendReq struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type sendResp struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
	Error     string `json:"error"`
}

// Deliver posts one message. The body is truncated to the provider
// maximum before sending.
func (g *HTTPGateway) Deliver(ctx context.Context, phone, text string) (model.DeliveryResult, error) {
	if len(text) > maxBodyChars {
		text = text[:maxBodyChars]
	}
	payload, err := json.Marshal(sendReq{To: phone, Body: text})
	if err != nil {
		return model.DeliveryResult{}, fmt.Errorf("marshal send: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/v1/send", bytes.NewReader(payload))
	if err != nil {
		return model.DeliveryResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.APIKey)
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return model.DeliveryResult{}, fmt.Errorf("gateway send: %w", err)
	}
	defer resp.Body.Close()

	var out sendResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.DeliveryResult{}, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 400 || out.Error != "" {
		return model.DeliveryResult{}, fmt.Errorf("gateway rejected send: status=%d error=%q", resp.StatusCode, out.Error)
	}
	return model.DeliveryResult{Status: out.Status, ProviderMessageID: out.MessageID}, nil
}
