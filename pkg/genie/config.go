package genie

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config contains configuration for the Genie REST client.
type Config struct {
	// Host is the workspace base URL.
	// Example: "https://example.cloud.databricks.com"
	Host string

	// Auth decorates every request with credentials.
	Auth Authenticator

	// WarehouseID is the SQL warehouse used for statement execution and as
	// the default warehouse of created spaces.
	WarehouseID string

	// TLSVerify controls TLS certificate verification.
	// Set to false only for development/testing with self-signed certs.
	TLSVerify *bool

	// Timeout for API requests.
	// Default: 30 seconds
	Timeout time.Duration

	// MaxRetries for idempotent requests that fail with a transient error.
	// Only GETs are retried.
	// Default: 3
	MaxRetries int

	// RetryDelay is the initial backoff interval between retries.
	// Default: 1 second
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	tlsVerify := true
	return &Config{
		TLSVerify:  &tlsVerify,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
	}
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.TLSVerify == nil {
		c.TLSVerify = defaults.TLSVerify
	}
	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = defaults.RetryDelay
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Auth == nil {
		return &Error{Op: "validate config", Err: ErrAuth, Msg: "no credentials configured"}
	}

	return validation.ValidateStruct(c,
		validation.Field(&c.Host, validation.Required, validation.By(httpURL)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(1)).Error("must be positive")),
		validation.Field(&c.MaxRetries, validation.Min(0)),
		validation.Field(&c.RetryDelay, validation.Min(time.Duration(0))),
	)
}

func httpURL(value interface{}) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must use http or https scheme, got: %q", u.Scheme)
	}
	return nil
}

// NewHTTPClient creates a configured HTTP client.
func (c *Config) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	if c.TLSVerify != nil && !*c.TLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
	}
}
