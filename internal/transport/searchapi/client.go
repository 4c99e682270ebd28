// Package searchapi calls the hosted semantic search endpoint.
package searchapi

import (
	"context"
	"time"

	"github.com/kailas-cloud/flowconn/internal/domain"
	"github.com/kailas-cloud/flowconn/internal/domain/search/request"
	"github.com/kailas-cloud/flowconn/internal/transport/httpjson"
	"github.com/kailas-cloud/flowconn/internal/usecase/search"
)

const connector = "search"

// HeaderAPIKey carries the endpoint credential.
const HeaderAPIKey = "x-api-Key"

var _ search.Searcher = (*Client)(nil)

// Config holds the endpoint settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client issues search requests against the hosted endpoint.
type Client struct {
	http *httpjson.Client
}

// payload is the wire body of one search call.
type payload struct {
	CollectionName   string         `json:"collection_name"`
	SearchQuery      string         `json:"search_query"`
	SearchType       string         `json:"search_type"`
	NumSearchResults int            `json:"num_search_results"`
	WhereFilter      map[string]any `json:"where_filter"`
	Threshold        float64        `json:"threshold"`
}

// New creates a search client. A missing URL or key is a domain.ConfigurationError.
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

// Search posts the request and returns the decoded body (nil for an empty body).
func (c *Client) Search(ctx context.Context, req *request.Request) (any, error) {
	data, err := c.http.Post(ctx, payload{
		CollectionName:   req.Collection(),
		SearchQuery:      req.Query(),
		SearchType:       string(req.Mode()),
		NumSearchResults: req.ResultCount(),
		WhereFilter:      req.Filter().Map(),
		Threshold:        req.Threshold(),
	})
	if err != nil {
		return nil, err
	}
	return httpjson.Decode(data)
}
