package iotawatt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anicoll/iotawatt-chargehq/internal/pkg/config"
	"github.com/anicoll/iotawatt-chargehq/internal/pkg/model"
	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

var (
	ErrQuery             = errors.New("iotawatt query failed")
	ErrMalformedResponse = errors.New("malformed source response")
)

type client struct {
	cfg        *config.IotawattConfig
	httpClient *http.Client
	scheme     string
	logger     *zap.Logger
}

type Option func(*client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *client) {
		cl.httpClient = c
	}
}

// WithScheme overrides the default plain http scheme used to reach the device.
func WithScheme(scheme string) Option {
	return func(cl *client) {
		cl.scheme = scheme
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(cl *client) {
		cl.logger = logger
	}
}

func New(cfg *config.IotawattConfig, opts ...Option) *client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		scheme:     "http",
		logger:     zap.L(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryURL returns the query for both channels averaged over the last minute as a single headerless row.
func (c *client) QueryURL() string {
	query := fmt.Sprintf("select=[%s.watts,%s.watts]&begin=s-1m&end=s&group=all&header=no",
		escapeChannel(c.cfg.GridChannel), escapeChannel(c.cfg.ProductionChannel))
	u := url.URL{
		Scheme:   c.scheme,
		Host:     c.cfg.Host,
		Path:     "/query",
		RawQuery: query,
	}
	return u.String()
}

// escapeChannel percent-encodes a channel name so it stays inside the select value.
// Spaces are written as %20.
func escapeChannel(name string) string {
	return strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
}

func (c *client) Query(ctx context.Context) (model.Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.QueryURL(), nil)
	if err != nil {
		return model.Reading{}, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("querying iotawatt", zap.String("url", req.URL.String()))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Reading{}, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.Reading{}, fmt.Errorf("%w: %s for url: %s", ErrQuery, resp.Status, req.URL.String())
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Reading{}, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return decode(body)
}

// queryRow is one row of the response, [grid watts, production watts].
type queryRow struct {
	grid       float64
	production float64
}

func (r *queryRow) UnmarshalJSON(data []byte) error {
	var values []*float64
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	if len(values) != 2 {
		return fmt.Errorf("expected 2 values per row, got %d", len(values))
	}
	if values[0] == nil || values[1] == nil {
		return errors.New("row contains null values")
	}
	r.grid = *values[0]
	r.production = *values[1]
	return nil
}

func decode(body []byte) (model.Reading, error) {
	var rows []queryRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return model.Reading{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if len(rows) == 0 {
		return model.Reading{}, fmt.Errorf("%w: no rows returned", ErrMalformedResponse)
	}
	return model.Reading{
		ImportWatts:     rows[0].grid,
		ProductionWatts: rows[0].production,
	}, nil
}
