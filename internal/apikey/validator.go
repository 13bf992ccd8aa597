// Package apikey checks provider API keys with a minimal authenticated request.
package apikey

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AvengeMedia/automate/internal/log"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

const (
	DefaultAnthropicURL = "https://api.anthropic.com"
	DefaultOpenAIURL    = "https://api.openai.com"

	anthropicVersion = "2023-06-01"
	validationModel  = "claude-3-5-haiku-latest"
)

type Validator struct {
	client       *http.Client
	anthropicURL string
	openaiURL    string
}

type Option func(*Validator)

func WithHTTPClient(c *http.Client) Option {
	return func(v *Validator) { v.client = c }
}

// WithBaseURLs points the validator at alternative API hosts.
func WithBaseURLs(anthropic, openai string) Option {
	return func(v *Validator) {
		v.anthropicURL = strings.TrimRight(anthropic, "/")
		v.openaiURL = strings.TrimRight(openai, "/")
	}
}

func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		client:       &http.Client{Timeout: 15 * time.Second},
		anthropicURL: DefaultAnthropicURL,
		openaiURL:    DefaultOpenAIURL,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate reports whether the provider accepted key. A rejected key is
// (false, nil); a request that could not be completed is (false, err).
func (v *Validator) Validate(ctx context.Context, provider, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, nil
	}

	var req *http.Request
	var err error
	switch strings.ToLower(provider) {
	case ProviderAnthropic:
		req, err = v.anthropicRequest(ctx, key)
	case ProviderOpenAI:
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, v.openaiURL+"/v1/models", nil)
		if err == nil {
			req.Header.Set("Authorization", "Bearer "+key)
		}
	default:
		return false, fmt.Errorf("unknown provider %q", provider)
	}
	if err != nil {
		return false, err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to reach %s: %w", provider, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	log.Debug("api key validation", "provider", provider, "status", resp.StatusCode)
	return resp.StatusCode == http.StatusOK, nil
}

func (v *Validator) anthropicRequest(ctx context.Context, key string) (*http.Request, error) {
	body, err := json.Marshal(map[string]any{
		"model":      validationModel,
		"max_tokens": 10,
		"messages":   []map[string]string{{"role": "user", "content": "test"}},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.anthropicURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", key)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")
	return req, nil
}
