// Package gateway holds the JSON-over-HTTP plumbing shared by the remote
// service clients.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/limcoins/user-service/internal/api/metrics"
	"github.com/limcoins/user-service/internal/core/domain"
)

const (
	defaultTimeout = 5 * time.Second
	maxBodyBytes   = 1 << 20
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// StatusError is a 4xx answer from a remote service. Message is the remote's
// own explanation, kept verbatim.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Code)
	}
	return fmt.Sprintf("http %d: %s", e.Code, e.Message)
}

// Client sends JSON requests to one remote service.
type Client struct {
	name string
	base string
	http *http.Client
	log  zerolog.Logger
}

func NewClient(name string, cfg Config, log zerolog.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("%s gateway: base url required", name)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		name: name,
		base: base,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log.With().Str("gateway", name).Logger(),
	}, nil
}

// Do sends body as JSON and decodes a 2xx response into out when out is not
// nil. Transport failures, timeouts, 5xx answers and unreadable bodies wrap
// domain.ErrRemoteUnavailable; 4xx answers are returned as *StatusError.
func (c *Client) Do(ctx context.Context, op, method, path string, body, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.RemoteCallDuration.
			WithLabelValues(c.name, op, callOutcome(err)).
			Observe(time.Since(start).Seconds())
	}()

	var reader io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("%s %s: encode request: %w", c.name, op, err)
		}
		reader = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("%s %s: %w", c.name, op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("op", op).Msg("remote call failed")
		return fmt.Errorf("%s %s: %v: %w", c.name, op, err, domain.ErrRemoteUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s %s: read response: %v: %w", c.name, op, err, domain.ErrRemoteUnavailable)
	}

	switch {
	case resp.StatusCode >= 500:
		c.log.Warn().Int("status", resp.StatusCode).Str("op", op).Msg("remote service error")
		return fmt.Errorf("%s %s: http %d: %w", c.name, op, resp.StatusCode, domain.ErrRemoteUnavailable)
	case resp.StatusCode >= 400:
		return &StatusError{Code: resp.StatusCode, Message: errorMessage(raw)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%s %s: unexpected http %d: %w", c.name, op, resp.StatusCode, domain.ErrRemoteUnavailable)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %v: %w", c.name, op, err, domain.ErrRemoteUnavailable)
	}
	return nil
}

// errorMessage pulls the explanation out of an error body. Services answer
// with {"error": ...}, {"message": ...} or plain text.
func errorMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

func callOutcome(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &se):
		return "rejected"
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
