package openfigi

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/http/httpproxy"
	"resty.dev/v3"
)

const (
	// Default retry configuration, only used when retries are enabled
	defaultRetryWaitTime    = 1 * time.Second
	defaultRetryMaxWaitTime = 10 * time.Second
)

// TransportOptions configures the HTTP client used for mapping calls
type TransportOptions struct {
	// HTTPProxy and HTTPSProxy are proxy URLs selected by the request scheme; empty means direct
	HTTPProxy  string
	HTTPSProxy string

	// RetryCount is the number of resty retries on network errors and retryable statuses (0 disables)
	RetryCount int
}

// NewHTTPClient creates the resty client for the mapping endpoint.
// Certificate verification is disabled and proxies are chosen per scheme.
func NewHTTPClient(opts TransportOptions) *resty.Client {
	transport := &http.Transport{
		Proxy:               proxyFunc(opts.HTTPProxy, opts.HTTPSProxy),
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	client := resty.NewWithClient(&http.Client{Transport: transport}).
		SetHeader("Accept", "application/json")

	if opts.RetryCount > 0 {
		client.
			SetRetryCount(opts.RetryCount).
			SetRetryWaitTime(defaultRetryWaitTime).
			SetRetryMaxWaitTime(defaultRetryMaxWaitTime).
			SetAllowNonIdempotentRetry(true).
			AddRetryConditions(retryCondition).
			AddRetryHooks(retryHook)
	}

	return client
}

// proxyFunc returns a per-scheme proxy selector, or nil when no proxy is configured
func proxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return nil
	}
	cfg := &httpproxy.Config{
		HTTPProxy:  httpProxy,
		HTTPSProxy: httpsProxy,
	}
	selector := cfg.ProxyFunc()
	return func(r *http.Request) (*url.URL, error) {
		return selector(r.URL)
	}
}

// retryCondition determines whether a request should be retried based on the response and error
func retryCondition(r *resty.Response, err error) bool {
	// Retry on network errors
	if err != nil {
		return true
	}

	switch code := r.StatusCode(); {
	case code >= 500:
		return true
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout:
		return true
	default:
		return false
	}
}

// retryHook logs retry attempts
func retryHook(r *resty.Response, err error) {
	if err != nil {
		log.Debug().
			Str("url", r.Request.URL).
			Int("attempt", r.Request.Attempt).
			Err(err).
			Msg("retrying mapping request due to error")
		return
	}

	log.Debug().
		Str("url", r.Request.URL).
		Int("attempt", r.Request.Attempt).
		Int("status_code", r.StatusCode()).
		Msg("retrying mapping request due to status code")
}
