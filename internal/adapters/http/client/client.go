// Package client talks to a remote persistence API. It satisfies the same
// store contract as the local backends, so a synchronizer can run against a
// storefront server in another process.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Showrav193/Sportsworld/internal/adapters/repository"
	"github.com/Showrav193/Sportsworld/internal/domain/model"
	"github.com/Showrav193/Sportsworld/pkg/logger"
	"github.com/Showrav193/Sportsworld/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

var _ repository.Store = (*Client)(nil)

// Client is a repository.Store backed by HTTP calls.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger logger.Logger
}

// New creates a client for the server at baseURL, e.g. http://localhost:3001.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBaseURL, baseURL)
	}
	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: defaultTimeout},
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Load fetches GET /api/{collection} into dst.
func (c *Client) Load(ctx context.Context, coll model.Collection, dst any) error {
	body, err := c.do(ctx, http.MethodGet, "/api/"+coll.String(), nil)
	metrics.RecordStoreRead(coll.String(), err)
	if err != nil {
		return fmt.Errorf("load %s: %w", coll, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: decode %s: %w", repository.ErrIO, coll, err)
	}
	return nil
}

// Replace posts the whole collection.
func (c *Client) Replace(ctx context.Context, coll model.Collection, records any) error {
	return c.post(ctx, coll, "replace", "/api/"+coll.String(), records)
}

// AppendOrder posts a single order.
func (c *Client) AppendOrder(ctx context.Context, o model.Order) error { //nolint:gocritic // hugeParam
	return c.post(ctx, model.CollectionOrders, "append_order", "/api/orders", o)
}

// RegisterUser posts a new user.
func (c *Client) RegisterUser(ctx context.Context, u model.User) error { //nolint:gocritic // hugeParam
	return c.post(ctx, model.CollectionUsers, "register_user", "/api/users/register", u)
}

// SetUserBlocked posts a block toggle.
func (c *Client) SetUserBlocked(ctx context.Context, userID string, blocked bool) error {
	return c.post(ctx, model.CollectionUsers, "set_user_blocked", "/api/users/block", model.BlockRequest{UserID: userID, IsBlocked: blocked})
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) post(ctx context.Context, coll model.Collection, op, path string, v any) error {
	start := time.Now()
	payload, err := json.Marshal(v)
	if err == nil {
		_, err = c.do(ctx, http.MethodPost, path, payload)
	} else {
		err = fmt.Errorf("%w: encode body: %w", model.ErrValidation, err)
	}
	metrics.RecordStoreWrite(coll.String(), op, err, float64(time.Since(start).Milliseconds()))
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, coll, err)
	}
	return nil
}

// do sends a request and returns the body of a 2xx response. Failures are
// mapped onto the repository error kinds.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	u := c.base.JoinPath(path)

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", repository.ErrIO, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "persistence request failed", logger.String("method", method), logger.String("url", u.String()), logger.Error(err))
		return nil, fmt.Errorf("%w: %w", repository.ErrIO, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", repository.ErrIO, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	var ae apiError
	_ = json.Unmarshal(raw, &ae)
	if ae.Message == "" {
		ae.Message = http.StatusText(resp.StatusCode)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound && ae.Code == "unknown_collection":
		return nil, fmt.Errorf("%w: %s", repository.ErrUnknownCollection, ae.Message)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, fmt.Errorf("%w: %s", model.ErrValidation, ae.Message)
	default:
		return nil, fmt.Errorf("%w: server returned %d: %s", repository.ErrIO, resp.StatusCode, ae.Message)
	}
}
