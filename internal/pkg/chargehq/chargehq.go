package chargehq

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anicoll/iotawatt-chargehq/internal/pkg/config"
	"go.uber.org/zap"
)

const (
	DefaultURL     = "https://api.chargehq.net/api/public/push-solar-data"
	defaultTimeout = 15 * time.Second
)

var (
	ErrPush             = errors.New("chargehq push failed")
	ErrUnexpectedStatus = errors.New("chargehq returned unexpected status")
)

type client struct {
	cfg        *config.ChargeHQConfig
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *client) {
		cl.httpClient = c
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(cl *client) {
		cl.logger = logger
	}
}

func New(cfg *config.ChargeHQConfig, opts ...Option) *client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.L(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) url() string {
	if c.cfg.URL == "" {
		return DefaultURL
	}
	return c.cfg.URL
}

// Push posts an encoded payload and returns the response body text.
// The api key travels in the payload, no auth headers are sent.
func (c *client) Push(ctx context.Context, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPush, err)
	}
	req.Header.Set("Content-type", "application/json")
	req.Header.Set("Accept", "text/plain")

	c.logger.Debug("pushing to chargehq", zap.ByteString("payload", data))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPush, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPush, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return string(body), &StatusError{
			StatusCode: resp.StatusCode,
			Reason:     reasonPhrase(resp),
			Body:       string(body),
		}
	}
	return string(body), nil
}

type StatusError struct {
	StatusCode int
	Reason     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Reason, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// reasonPhrase returns the reason sent by the server, falling back to the standard text.
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		return http.StatusText(resp.StatusCode)
	}
	return reason
}
