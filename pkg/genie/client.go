package genie

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
)

// Client talks to the Genie, Permissions and Statement Execution APIs of a
// single workspace.
type Client struct {
	config *Config
	client *http.Client
	logger hclog.Logger
}

// NewClient creates a new client. A nil logger disables logging.
func NewClient(cfg *Config, logger hclog.Logger) (*Client, error) {
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		var gerr *Error
		if errors.As(err, &gerr) {
			return nil, err
		}
		return nil, fmt.Errorf("invalid client config: %w", err)
	}

	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Client{
		config: cfg,
		client: cfg.NewHTTPClient(),
		logger: logger.Named("genie"),
	}, nil
}

// Host returns the workspace base URL.
func (c *Client) Host() string {
	return strings.TrimRight(c.config.Host, "/")
}

// WarehouseID returns the configured default SQL warehouse.
func (c *Client) WarehouseID() string {
	return c.config.WarehouseID
}

// SpaceURL returns the browser URL of a space.
func (c *Client) SpaceURL(spaceID string) string {
	return fmt.Sprintf("%s/explore/genie/%s", c.Host(), url.PathEscape(spaceID))
}

// apiError is the standard Databricks error body.
type apiError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// doRequest executes an HTTP request. GETs are retried with exponential
// backoff on network errors and 5xx responses; everything else is sent once.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body interface{}, result interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	attempt := func() error {
		return c.send(ctx, method, path, query, payload, result)
	}

	if method != http.MethodGet || c.config.MaxRetries == 0 {
		return permanent(attempt())
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.config.RetryDelay
	retry := backoff.WithContext(
		backoff.WithMaxRetries(b, uint64(c.config.MaxRetries)), ctx)

	err := backoff.RetryNotify(attempt, retry, func(err error, wait time.Duration) {
		c.logger.Warn("retrying request",
			"method", method, "path", path, "wait", wait, "error", err)
	})
	return permanent(err)
}

// send performs one round trip. Errors that must not be retried are wrapped
// with backoff.Permanent.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, result interface{}) error {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, query), bodyReader)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.config.Auth.Authenticate(req); err != nil {
		return backoff.Permanent(err)
	}

	c.logger.Debug("sending request", "method", method, "path", path)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return fmt.Errorf("%s %s: request failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: failed to read response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rerr := &RemoteError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
		var body apiError
		if err := json.Unmarshal(respBody, &body); err == nil {
			rerr.ErrorCode = body.ErrorCode
			rerr.Message = body.Message
		}
		if rerr.Retryable() {
			return rerr
		}
		return backoff.Permanent(rerr)
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return backoff.Permanent(fmt.Errorf("%s %s: failed to decode response: %w", method, path, err))
		}
	}

	return nil
}

// permanent strips the backoff.Permanent wrapper.
func permanent(err error) error {
	var perr *backoff.PermanentError
	if errors.As(err, &perr) {
		return perr.Err
	}
	return err
}

// buildURL constructs a URL with query parameters.
func (c *Client) buildURL(path string, query url.Values) string {
	u := c.Host() + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
