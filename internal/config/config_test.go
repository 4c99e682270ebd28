package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Minimal(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_InvalidChatProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Chat.Provider = "bard"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid chat provider")
	}

	expected := `chat.provider must be "vertex" or "openai", got "bard"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_HistoryDrivers(t *testing.T) {
	tests := []struct {
		name    string
		history HistoryConfig
		wantErr bool
	}{
		{"disabled", HistoryConfig{}, false},
		{"valkey", HistoryConfig{Driver: "valkey", Addrs: []string{"localhost:6379"}}, false},
		{"redis no addrs", HistoryConfig{Driver: "redis"}, true},
		{"cosmos", HistoryConfig{Driver: "cosmos", Cosmos: CosmosConfig{Endpoint: "https://x", Key: "k"}}, false},
		{"cosmos no key", HistoryConfig{Driver: "cosmos", Cosmos: CosmosConfig{Endpoint: "https://x"}}, true},
		{"unknown", HistoryConfig{Driver: "memcached"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.History.Driver = tt.history.Driver
			cfg.History.Addrs = tt.history.Addrs
			cfg.History.Cosmos = tt.history.Cosmos

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_DocumentLimits(t *testing.T) {
	cfg := validConfig()
	cfg.Documents.DefaultLimit = 200

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when default_limit exceeds max_limit")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Search.TimeoutSec != 10 {
		t.Errorf("expected Search.TimeoutSec=10, got %d", cfg.Search.TimeoutSec)
	}
	if cfg.Search.MaxResults != 10 {
		t.Errorf("expected Search.MaxResults=10, got %d", cfg.Search.MaxResults)
	}
	if cfg.Chat.Provider != "vertex" {
		t.Errorf("expected Chat.Provider=vertex, got %q", cfg.Chat.Provider)
	}
	if cfg.Chat.TimeoutSec != 30 {
		t.Errorf("expected Chat.TimeoutSec=30, got %d", cfg.Chat.TimeoutSec)
	}
	if cfg.Documents.DefaultLimit != 10 || cfg.Documents.MaxLimit != 100 {
		t.Errorf("expected documents limits 10/100, got %d/%d", cfg.Documents.DefaultLimit, cfg.Documents.MaxLimit)
	}
	if cfg.Documents.TimeoutSec != 10 {
		t.Errorf("expected Documents.TimeoutSec=10, got %d", cfg.Documents.TimeoutSec)
	}
	if cfg.History.KeyPrefix != "flowconn:history:" {
		t.Errorf("expected KeyPrefix='flowconn:history:', got %q", cfg.History.KeyPrefix)
	}
	if cfg.History.TTLHours != 168 {
		t.Errorf("expected TTLHours=168, got %d", cfg.History.TTLHours)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Search:  SearchConfig{TimeoutSec: 3, MaxResults: 25},
		History: HistoryConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Search.TimeoutSec != 3 {
		t.Errorf("expected Search.TimeoutSec=3, got %d", cfg.Search.TimeoutSec)
	}
	if cfg.Search.MaxResults != 25 {
		t.Errorf("expected Search.MaxResults=25, got %d", cfg.Search.MaxResults)
	}
	if cfg.History.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.History.KeyPrefix)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("FLOWCONN_TEST_KEY", "secret")

	cfg, err := Parse([]byte(`
http:
  port: 9090
search:
  base_url: ${FLOWCONN_TEST_URL:-https://search.example.com/api/v1/search}
  api_key: ${FLOWCONN_TEST_KEY}
  collections: [docs_36, docs_28]
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Search.APIKey != "secret" {
		t.Errorf("APIKey = %q", cfg.Search.APIKey)
	}
	if cfg.Search.BaseURL != "https://search.example.com/api/v1/search" {
		t.Errorf("BaseURL = %q", cfg.Search.BaseURL)
	}
	if len(cfg.Search.Collections) != 2 {
		t.Errorf("Collections = %v", cfg.Search.Collections)
	}
	if cfg.Search.MaxResults != 10 {
		t.Errorf("MaxResults default not applied: %d", cfg.Search.MaxResults)
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("http: [unclosed"))
	if err == nil || !strings.Contains(err.Error(), "failed to parse config") {
		t.Errorf("err = %v", err)
	}

	_, err = Parse([]byte("http:\n  port: 0\n"))
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("err = %v", err)
	}
}
