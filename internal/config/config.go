package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the flowconn configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
	Search    SearchConfig    `yaml:"search"`
	Chat      ChatConfig      `yaml:"chat"`
	Documents DocumentsConfig `yaml:"documents"`
	History   HistoryConfig   `yaml:"history"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds host API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SearchConfig holds the semantic search endpoint settings.
type SearchConfig struct {
	BaseURL     string   `yaml:"base_url"`
	APIKey      string   `yaml:"api_key"`
	TimeoutSec  int      `yaml:"timeout_sec"`
	MaxResults  int      `yaml:"max_results"`
	Collections []string `yaml:"collections"`
}

// ChatConfig holds the hosted chat endpoint settings.
type ChatConfig struct {
	Provider   string `yaml:"provider"` // vertex, openai (default: vertex)
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"` // openai only
	TimeoutSec int    `yaml:"timeout_sec"`
}

// CosmosConfig holds Azure Cosmos DB account settings.
type CosmosConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Key       string `yaml:"key"`
	Database  string `yaml:"database"`
	Container string `yaml:"container"`
}

// DocumentsConfig holds document database query settings.
type DocumentsConfig struct {
	Cosmos       CosmosConfig `yaml:"cosmos"`
	DefaultLimit int          `yaml:"default_limit"`
	MaxLimit     int          `yaml:"max_limit"`
	TimeoutSec   int          `yaml:"timeout_sec"`
}

// HistoryConfig holds chat history storage settings.
type HistoryConfig struct {
	Driver           string       `yaml:"driver"` // valkey, redis, cosmos, "" (disabled)
	Addrs            []string     `yaml:"addrs"`
	Password         string       `yaml:"password"`
	KeyPrefix        string       `yaml:"key_prefix"`
	TTLHours         int          `yaml:"ttl_hours"`
	ReadinessTimeout int          `yaml:"readiness_timeout_sec"`
	Cosmos           CosmosConfig `yaml:"cosmos"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML, substitutes ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = 10
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 10
	}
	if c.Chat.Provider == "" {
		c.Chat.Provider = "vertex"
	}
	if c.Chat.TimeoutSec <= 0 {
		c.Chat.TimeoutSec = 30
	}
	if c.Documents.DefaultLimit <= 0 {
		c.Documents.DefaultLimit = 10
	}
	if c.Documents.MaxLimit <= 0 {
		c.Documents.MaxLimit = 100
	}
	if c.Documents.TimeoutSec <= 0 {
		c.Documents.TimeoutSec = 10
	}
	if c.History.KeyPrefix == "" {
		c.History.KeyPrefix = "flowconn:history:"
	}
	if c.History.TTLHours <= 0 {
		c.History.TTLHours = 24 * 7
	}
	if c.History.ReadinessTimeout <= 0 {
		c.History.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
// Missing connector credentials are not errors here: each connector reports its own
// ConfigurationError at construction so one unusable connector does not stop the process.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Chat.Provider {
	case "vertex", "openai":
	default:
		return fmt.Errorf("chat.provider must be \"vertex\" or \"openai\", got %q", c.Chat.Provider)
	}
	switch c.History.Driver {
	case "":
	case "valkey", "redis":
		if len(c.History.Addrs) == 0 {
			return fmt.Errorf("history.addrs is required for driver %q", c.History.Driver)
		}
	case "cosmos":
		if c.History.Cosmos.Endpoint == "" || c.History.Cosmos.Key == "" {
			return fmt.Errorf("history.cosmos.endpoint and history.cosmos.key are required for driver \"cosmos\"")
		}
	default:
		return fmt.Errorf(
			"history.driver must be \"valkey\", \"redis\" or \"cosmos\", got %q", c.History.Driver,
		)
	}
	if c.Documents.DefaultLimit > c.Documents.MaxLimit {
		return fmt.Errorf("documents.default_limit (%d) exceeds documents.max_limit (%d)",
			c.Documents.DefaultLimit, c.Documents.MaxLimit)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
