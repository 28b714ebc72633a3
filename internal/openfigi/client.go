package openfigi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"figimapper/internal/figi"
	"figimapper/internal/ratelimit"

	"resty.dev/v3"
)

const (
	// DefaultURL is the production mapping endpoint
	DefaultURL = "https://api.openfigi.com/v3/mapping"
	// APIKeyHeader carries the static API key
	APIKeyHeader = "X-OPENFIGI-APIKEY"
	// DefaultTimeout bounds a single mapping call
	DefaultTimeout = 30 * time.Second
)

// Mapper sends one batch of jobs and returns the per-job results in request order
type Mapper interface {
	Map(ctx context.Context, jobs []figi.Job) ([]figi.JobResult, error)
}

// Options holds the static settings for a Client
type Options struct {
	APIKey            string
	URL               string
	Timeout           time.Duration
	RequestsPerSecond float64
	Transport         TransportOptions
}

// Client calls the mapping endpoint
type Client struct {
	apiKey  string
	url     string
	timeout time.Duration
	limiter *ratelimit.Limiter
	client  *resty.Client
}

// NewClient creates a new mapping client
func NewClient(opts Options) *Client {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	return &Client{
		apiKey:  opts.APIKey,
		url:     opts.URL,
		timeout: opts.Timeout,
		limiter: ratelimit.New(opts.RequestsPerSecond),
		client:  NewHTTPClient(opts.Transport),
	}
}

// Map posts jobs as one request. Every failure is returned as a *MappingError.
func (c *Client) Map(ctx context.Context, jobs []figi.Job) ([]figi.JobResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, classifyTransportError(ctx, err)
	}

	body, err := json.Marshal(jobs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mapping jobs: %w", err)
	}

	req := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/json").
		SetBody(body)
	if c.apiKey != "" {
		req.SetHeader(APIKeyHeader, c.apiKey)
	}

	resp, err := req.Post(c.url)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}

	// Non-2xx bodies are never parsed
	if !resp.IsSuccess() {
		return nil, ClassifyHTTPError(resp.StatusCode())
	}

	var results []figi.JobResult
	if err := json.Unmarshal(resp.Bytes(), &results); err != nil {
		return nil, NewDecodeError(err)
	}

	return results, nil
}

func classifyTransportError(ctx context.Context, err error) *MappingError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return NewTimeoutError(err)
	}
	return NewNetworkError(err)
}
