// Package vertexchat calls the hosted chat endpoint that answers {"query"} with {"response"}.
package vertexchat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/flowconn/internal/domain"
	"github.com/kailas-cloud/flowconn/internal/metrics"
	"github.com/kailas-cloud/flowconn/internal/transport/httpjson"
)

const (
	connector = "chat"
	provider  = "vertex"
)

// HeaderAPIKey carries the endpoint credential.
const HeaderAPIKey = "x-api-Key"

// Config holds the endpoint settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is a chat provider backed by the hosted endpoint.
type Client struct {
	http *httpjson.Client
}

type queryBody struct {
	Query string `json:"query"`
}

type responseBody struct {
	Response json.RawMessage `json:"response"`
}

// New creates a chat client. A missing URL or key is a domain.ConfigurationError.
func New(cfg Config, opts ...httpjson.Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, domain.NewConfigurationError(connector, "base_url", "is required")
	}
	if cfg.APIKey == "" {
		return nil, domain.NewConfigurationError(connector, "api_key", "is required")
	}
	if cfg.Timeout <= 0 {
		return nil, domain.NewConfigurationError(connector, "timeout", "must be positive")
	}

	opts = append([]httpjson.Option{httpjson.WithHeader(HeaderAPIKey, cfg.APIKey)}, opts...)
	hc, err := httpjson.New(cfg.BaseURL, cfg.Timeout, opts...)
	if err != nil {
		return nil, domain.NewConfigurationError(connector, "base_url", err.Error())
	}
	return &Client{http: hc}, nil
}

// Complete posts the prompt and returns the "response" field. A missing or null field
// yields an empty string; a non-string field is returned as its JSON text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	data, err := c.http.Post(ctx, queryBody{Query: prompt})
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(provider, "", "error").Inc()
		metrics.ChatErrorsTotal.WithLabelValues(provider, "", errorType(err)).Inc()
		return "", err
	}

	var body responseBody
	if err := json.Unmarshal(data, &body); err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(provider, "", "error").Inc()
		metrics.ChatErrorsTotal.WithLabelValues(provider, "", "decode_error").Inc()
		return "", fmt.Errorf("%w: decode response: %w", domain.ErrTransport, err)
	}

	metrics.ChatRequestsTotal.WithLabelValues(provider, "", "success").Inc()
	metrics.ChatRequestDuration.WithLabelValues(provider, "").Observe(time.Since(start).Seconds())

	return responseText(body.Response), nil
}

func responseText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func errorType(err error) string {
	if httpjson.IsTimeout(err) {
		return "timeout"
	}
	return "api_error"
}
