package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort        = 8080
	DefaultWSInterval      = 5 * time.Second
	DefaultUpstreamTimeout = 10 * time.Second
	DefaultRefreshInterval = 15 * time.Minute
	DefaultGravity         = 1.8
	DefaultMaxItems        = 50
)

// Config is the top-level configuration for the hotlist service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Ranking  RankingConfig  `yaml:"ranking"`
}

// ServerConfig holds the read-side HTTP settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API, WebSocket feed and /metrics listen on.
	HTTPPort int `yaml:"http_port"`

	// WSInterval controls how often the hot list is pushed to WebSocket clients.
	WSInterval time.Duration `yaml:"ws_interval"`
}

// UpstreamConfig describes the single event source.
type UpstreamConfig struct {
	// URL is the full address of the upstream JSON endpoint.
	URL string `yaml:"url"`

	// Timeout bounds one fetch, including reading the body.
	Timeout time.Duration `yaml:"timeout"`

	// Auth configures how the fetcher authenticates to the upstream.
	Auth AuthConfig `yaml:"auth"`

	// TLS holds optional TLS dial options.
	TLS TLSConfig `yaml:"tls"`
}

// AuthConfig specifies the authentication mode for the upstream.
type AuthConfig struct {
	// Mode is one of: apikey | bearer | basic | none.
	Mode string `yaml:"mode"`

	// API key fields, used when Mode == "apikey".
	// Header is the HTTP header name to send the key in.
	Header string `yaml:"header"`
	// KeyEnv is the name of the environment variable that holds the key value.
	KeyEnv string `yaml:"key_env"`

	// TokenEnv is the name of the environment variable that holds the bearer token.
	TokenEnv string `yaml:"token_env"`

	// Basic auth fields, used when Mode == "basic".
	Username    string `yaml:"username"`
	PasswordEnv string `yaml:"password_env"`
}

// Key returns the API key value resolved from the environment.
// Returns empty string if KeyEnv is unset or the variable is not found.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// Token returns the bearer token value resolved from the environment.
func (a AuthConfig) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// Password returns the basic-auth password resolved from the environment.
func (a AuthConfig) Password() string {
	if a.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(a.PasswordEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// TLSConfig holds upstream TLS dial options.
type TLSConfig struct {
	// InsecureSkipVerify disables TLS certificate verification.
	// Only use this for internal CAs in development environments.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// RefreshConfig controls the background refresh loop.
type RefreshConfig struct {
	// Interval is the sleep between the end of one cycle and the start of the next.
	Interval time.Duration `yaml:"interval"`
}

// RankingConfig controls the decay formula and the snapshot size.
type RankingConfig struct {
	// Gravity is the exponent applied to (age_hours + 2).
	Gravity float64 `yaml:"gravity"`

	// MaxItems caps the number of events kept in a snapshot.
	MaxItems int `yaml:"max_items"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:   DefaultHTTPPort,
			WSInterval: DefaultWSInterval,
		},
		Upstream: UpstreamConfig{
			Timeout: DefaultUpstreamTimeout,
		},
		Refresh: RefreshConfig{
			Interval: DefaultRefreshInterval,
		},
		Ranking: RankingConfig{
			Gravity:  DefaultGravity,
			MaxItems: DefaultMaxItems,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	if cfg.Server.WSInterval <= 0 {
		return fmt.Errorf("server.ws_interval must be positive")
	}
	if cfg.Upstream.URL == "" {
		return fmt.Errorf("upstream.url is required")
	}
	u, err := url.Parse(cfg.Upstream.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("upstream.url %q must be an absolute http(s) URL", cfg.Upstream.URL)
	}
	if cfg.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive")
	}
	switch cfg.Upstream.Auth.Mode {
	case "apikey", "bearer", "basic", "none", "":
	default:
		return fmt.Errorf("upstream.auth.mode %q unknown: want apikey|bearer|basic|none", cfg.Upstream.Auth.Mode)
	}
	if cfg.Refresh.Interval <= 0 {
		return fmt.Errorf("refresh.interval must be positive")
	}
	if cfg.Ranking.Gravity <= 0 {
		return fmt.Errorf("ranking.gravity must be positive")
	}
	if cfg.Ranking.MaxItems <= 0 {
		return fmt.Errorf("ranking.max_items must be positive")
	}
	return nil
}
