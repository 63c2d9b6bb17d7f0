// Package resolver abstracts the natural-language query backend
// (web search plus language model). The services treat it as a black
// box that turns a user question into an answer and an intent label.
package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Intent labels returned by the resolver.
const (
	IntentSports  = "sports_schedule"
	IntentHours   = "business_hours"
	IntentWeather = "weather"
	IntentGeneral = "general"
	IntentError   = "error"
)

// Personalization carries optional context collected during onboarding.
type Personalization struct {
	Personalized bool   `json:"personalized"`
	FirstName    string `json:"first_name,omitempty"`
	Location     string `json:"location,omitempty"`
}

// Resolver answers a user query. Implementations must be safe for
// concurrent use.
type Resolver interface {
	Resolve(ctx context.Context, phone, text string, pc Personalization) (string, string, error)
}

// HTTPResolver calls the query resolver service over HTTP with a short
// timeout. Failures are terminal for the request; the router converts
// them into a fallback apology.
type HTTPResolver struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPResolver(baseURL string) *HTTPResolver {
	return &HTTPResolver{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type resolveReq struct {
	Phone   string          `json:"phone"`
	Text    string          `json:"text"`
	Context Personalization `json:"context"`
}

type resolveResp struct {
	Response string `json:"response"`
	Intent   string `json:"intent"`
	Error    string `json:"error"`
}

func (r *HTTPResolver) Resolve(ctx context.Context, phone, text string, pc Personalization) (string, string, error) {
	payload, err := json.Marshal(resolveReq{Phone: phone, Text: text, Context: pc})
	if err != nil {
		return "", IntentError, fmt.Errorf("marshal query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/v1/resolve", bytes.NewReader(payload))
	if err != nil {
		return "", IntentError, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.Client.Do(req)
	if err != nil {
		return "", IntentError, fmt.Errorf("resolver call: %w", err)
	}
	defer resp.Body.Close()

	var out resolveResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", IntentError, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 400 || out.Error != "" {
		return "", IntentError, fmt.Errorf("resolver rejected query: status=%d error=%q", resp.StatusCode, out.Error)
	}
	if out.Intent == "" {
		out.Intent = IntentGeneral
	}
	return out.Response, out.Intent, nil
}
