package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the FAL queue endpoint.
const DefaultBaseURL = "https://queue.fal.run"

// Model identifiers for the SeedDream text-to-image endpoints.
const (
	ModelSeedDreamV4 = "fal-ai/bytedance/seedream/v4/text-to-image"
	ModelSeedDreamV3 = "fal-ai/bytedance/seedream/v3/text-to-image"
)

const defaultPollInterval = 500 * time.Millisecond

// Client talks to the FAL queue API: it submits a request, polls its status
// until completion, and fetches the final response. The client is stateless
// apart from its configuration and is safe for concurrent use.
//
// There is no retry layer and no timeout here; a call runs until the queue
// reports completion, an error comes back, or the context is cancelled by the
// transport above.
type Client struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	logger       zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the queue endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPollInterval overrides the status polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// WithLogger attaches a logger for request/poll diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a queue API client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      DefaultBaseURL,
		httpClient:   http.DefaultClient,
		pollInterval: defaultPollInterval,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe submits req to model's queue and blocks until the result is
// available, polling the status URL in between. Each poll delivers a
// QueueUpdate to onUpdate when non-nil; the callback is observational only and
// has no effect on the call's outcome.
func (c *Client) Subscribe(ctx context.Context, model string, req *GenerateRequest, onUpdate func(QueueUpdate)) (*GenerateResponse, error) {
	q, err := c.submit(ctx, model, req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Str("model", model).Str("request_id", q.RequestID).Msg("request queued")

	for {
		update, err := c.status(ctx, q.StatusURL)
		if err != nil {
			return nil, err
		}
		if onUpdate != nil {
			onUpdate(*update)
		}
		if update.Status == StatusCompleted {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}

	return c.response(ctx, q.ResponseURL)
}

func (c *Client) submit(ctx context.Context, model string, req *GenerateRequest) (*queued, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var q queued
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/"+model, bytes.NewReader(body), &q); err != nil {
		return nil, err
	}
	if q.StatusURL == "" || q.ResponseURL == "" {
		return nil, fmt.Errorf("fal: queue acknowledgement missing status or response URL")
	}
	return &q, nil
}

func (c *Client) status(ctx context.Context, statusURL string) (*QueueUpdate, error) {
	var update QueueUpdate
	if err := c.do(ctx, http.MethodGet, statusURL+"?logs=1", nil, &update); err != nil {
		return nil, err
	}
	return &update, nil
}

func (c *Client) response(ctx context.Context, responseURL string) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := c.do(ctx, http.MethodGet, responseURL, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do issues one authenticated request and decodes the JSON response into out.
// Non-2xx statuses become an *APIError carrying the body verbatim.
func (c *Client) do(ctx context.Context, method, url string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}
