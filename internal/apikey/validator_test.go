package apikey

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/messages", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Model == "" || body.MaxTokens == 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.Header.Get("anthropic-version") != anthropicVersion || r.Header.Get("x-api-key") != "sk-ant-good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"type":"message"}`))
	})
	mux.HandleFunc("GET /v1/models", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestValidate(t *testing.T) {
	srv := newTestServer(t)
	v := NewValidator(WithBaseURLs(srv.URL, srv.URL+"/"))

	tests := []struct {
		provider string
		key      string
		want     bool
	}{
		{ProviderAnthropic, "sk-ant-good", true},
		{ProviderAnthropic, "sk-ant-revoked", false},
		{"Anthropic", " sk-ant-good ", true},
		{ProviderOpenAI, "sk-good", true},
		{ProviderOpenAI, "sk-bad", false},
		{ProviderOpenAI, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.provider+"/"+tt.key, func(t *testing.T) {
			ok, err := v.Validate(context.Background(), tt.provider, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestValidateErrors(t *testing.T) {
	_, err := NewValidator().Validate(context.Background(), "gemini", "key")
	assert.ErrorContains(t, err, "unknown provider")

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	ok, err := NewValidator(WithBaseURLs(url, url)).Validate(context.Background(), ProviderOpenAI, "sk-good")
	assert.False(t, ok)
	assert.Error(t, err)
}
