package searchapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kailas-cloud/flowconn/internal/domain"
	"github.com/kailas-cloud/flowconn/internal/domain/search/catalog"
	"github.com/kailas-cloud/flowconn/internal/domain/search/filter"
	"github.com/kailas-cloud/flowconn/internal/domain/search/mode"
	"github.com/kailas-cloud/flowconn/internal/domain/search/request"
)

func testRequest(t *testing.T, f filter.Filter) *request.Request {
	t.Helper()
	cat, _ := catalog.New([]string{"docs_36"})
	req, err := request.New("docs_36", "restore a vm", mode.Default, 4, f, 1.0,
		request.Limits{Catalog: cat, MaxResults: 10})
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}

func TestNew_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no url", Config{APIKey: "k", Timeout: time.Second}},
		{"no key", Config{BaseURL: "https://search.example.com", Timeout: time.Second}},
		{"no timeout", Config{BaseURL: "https://search.example.com", APIKey: "k"}},
		{"bad url", Config{BaseURL: "search.example.com", APIKey: "k", Timeout: time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if !errors.Is(err, domain.ErrConfiguration) {
				t.Errorf("err = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestSearch_WireFormat(t *testing.T) {
	var body map[string]any
	var key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		key = r.Header.Get(HeaderAPIKey)
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"page_content":"Restore steps","metadata":{"title":"Restore"}}]`))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, APIKey: "secret", Timeout: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	docs, err := c.Search(context.Background(), testRequest(t, filter.Filter{}))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if key != "secret" {
		t.Errorf("api key header = %q", key)
	}
	want := map[string]any{
		"collection_name":    "docs_36",
		"search_query":       "restore a vm",
		"search_type":        "SimilaritySearch",
		"num_search_results": float64(4),
		"threshold":          1.0,
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("body[%s] = %#v, want %#v", k, body[k], v)
		}
	}
	if wf, ok := body["where_filter"]; !ok || wf != nil {
		t.Errorf("where_filter = %#v, want explicit null", wf)
	}

	list, ok := docs.([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("docs = %#v", docs)
	}
}

func TestSearch_FilterForwarded(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL, APIKey: "k", Timeout: time.Second})
	f, _ := filter.New(map[string]any{"product": "backup"})

	docs, err := c.Search(context.Background(), testRequest(t, f))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if docs != nil {
		t.Errorf("empty body decoded to %#v", docs)
	}
	wf, _ := body["where_filter"].(map[string]any)
	if wf["product"] != "backup" {
		t.Errorf("where_filter = %#v", body["where_filter"])
	}
}

func TestSearch_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL, APIKey: "wrong", Timeout: time.Second})
	_, err := c.Search(context.Background(), testRequest(t, filter.Filter{}))

	var se *domain.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusUnauthorized {
		t.Errorf("err = %v", err)
	}
}
