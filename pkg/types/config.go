package types

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// HTTPConfig holds settings for requests to the search endpoint.
type HTTPConfig struct {
	// BaseURL is the endpoint prefix; "books" is appended to it
	// (e.g. "http://localhost:3000/").
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429. Zero disables retry.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RequestsPerSecond caps the request rate. Zero means unlimited.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// SearchConfig holds settings for the search controller.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Limit is the page size sent with every request (default 10).
	Limit int `json:"limit" yaml:"limit" mapstructure:"limit"`

	// Debounce is the quiescence window after the last keystroke before a
	// search fires (default 500ms).
	Debounce time.Duration `json:"debounce" yaml:"debounce" mapstructure:"debounce"`

	// DateLayout is the Go time layout used for the Created At column.
	DateLayout string `json:"date_layout" yaml:"date_layout" mapstructure:"date_layout"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default warn).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is text or json (default text).
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// File, when set, receives log output in addition to stderr.
	File string `json:"file" yaml:"file" mapstructure:"file"`
}

// Config groups all client configuration.
type Config struct {
	Search SearchConfig `json:"search" yaml:"search" mapstructure:",squash"`
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
}

const (
	DefaultBaseURL    = "http://localhost:3000/"
	DefaultLimit      = 10
	DefaultDebounce   = 500 * time.Millisecond
	DefaultTimeout    = 15 * time.Second
	DefaultUserAgent  = "book-search/0.1"
	DefaultDateLayout = "1/2/2006"
)

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{
				BaseURL:   DefaultBaseURL,
				Timeout:   DefaultTimeout,
				UserAgent: DefaultUserAgent,
			},
			Limit:      DefaultLimit,
			Debounce:   DefaultDebounce,
			DateLayout: DefaultDateLayout,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Validate checks the configuration for values the client cannot work with.
func (c Config) Validate() error {
	u, err := url.Parse(c.Search.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url %q: %w", c.Search.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base_url %q: scheme must be http or https", c.Search.BaseURL)
	}
	if c.Search.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", c.Search.Limit)
	}
	if c.Search.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative, got %s", c.Search.Debounce)
	}
	if c.Search.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Search.Timeout)
	}
	if c.Search.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.Search.MaxRetries)
	}
	if c.Search.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative, got %g", c.Search.RequestsPerSecond)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: want text or json", c.Log.Format)
	}
	return nil
}
