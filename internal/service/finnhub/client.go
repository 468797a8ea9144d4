package finnhub

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	drepo "StockScout/internal/domain/repository"
	"StockScout/internal/service/ratelimit"
	xhttp "StockScout/pkg/http"
	applogger "StockScout/pkg/logger"
)

const defaultBaseURL = "https://finnhub.io/api/v1"

// Config holds client tuning. RequestDelay doubles as the backoff base.
type Config struct {
	APIKey         string
	BaseURL        string
	RequestDelay   time.Duration
	RequestTimeout time.Duration
	MaxRetries     int // retries after the first attempt
}

// Client is a rate-limited Finnhub REST client. A bounded pool caps in-flight
// requests globally; retries happen while the slot is held, so a slow or
// failing symbol throttles overall throughput instead of piling up.
type Client struct {
	cfg     Config
	http    *xhttp.Client
	pool    *ratelimit.Pool
	logger  *applogger.Logger
	metrics drepo.Metrics
}

// New creates a Finnhub MarketDataSource.
func New(cfg Config, pool *ratelimit.Pool, logger *applogger.Logger, metrics drepo.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.RequestDelay <= 0 {
		cfg.RequestDelay = 1200 * time.Millisecond
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Client{
		cfg:     cfg,
		http:    xhttp.NewClient(xhttp.WithTimeout(cfg.RequestTimeout)),
		pool:    pool,
		logger:  logger,
		metrics: metrics,
	}
}

// outcome classifies one attempt of the retry state machine.
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeRetryRateLimited
	outcomeRetryTransient
	outcomeFatal
)

// Fetch fetches one endpoint for one symbol. On 429 it backs off
// exponentially (base x 2^attempt); on timeout or transport failure linearly
// (base x (attempt+1)); other non-200 statuses fail immediately.
func (c *Client) Fetch(ctx context.Context, ep drepo.Endpoint, symbol string) ([]byte, error) {
	if err := c.pool.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("acquire slot: %w", err)
	}
	defer c.pool.Release()

	url, params, err := c.endpointRequest(ep, symbol)
	if err != nil {
		return nil, err
	}

	var lastErr error
	rateLimited := false
	attempts := 0
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		attempts++
		body, out, status, aerr := c.attempt(ctx, url, params)
		switch out {
		case outcomeSuccess:
			c.recordFetch(ep, "ok")
			// pacing: hold the slot through the inter-request delay
			_ = sleepCtx(ctx, c.cfg.RequestDelay)
			return body, nil

		case outcomeFatal:
			c.recordFetch(ep, "upstream_error")
			return nil, &UpstreamError{Status: status}

		case outcomeRetryRateLimited:
			rateLimited = true
			lastErr = nil
			if attempt < c.cfg.MaxRetries {
				wait := c.cfg.RequestDelay * (1 << attempt)
				c.warn("finnhub rate limited, backing off", ep, symbol, attempt, wait)
				if serr := sleepCtx(ctx, wait); serr != nil {
					return nil, serr
				}
			}

		case outcomeRetryTransient:
			rateLimited = false
			lastErr = aerr
			if attempt < c.cfg.MaxRetries {
				wait := c.cfg.RequestDelay * time.Duration(attempt+1)
				c.warn("finnhub request failed, retrying", ep, symbol, attempt, wait)
				if serr := sleepCtx(ctx, wait); serr != nil {
					return nil, serr
				}
			}
		}
	}

	if rateLimited {
		c.recordFetch(ep, "rate_limited")
		return nil, &RateLimitedError{Attempts: attempts}
	}
	c.recordFetch(ep, "unavailable")
	return nil, &UnavailableError{Attempts: attempts, Err: lastErr}
}

func (c *Client) attempt(ctx context.Context, url string, params map[string][]string) ([]byte, outcome, int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	resp, err := c.http.SendRequest(reqCtx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         url,
		QueryParams: params,
	})
	if err != nil {
		return nil, outcomeRetryTransient, 0, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, rerr := io.ReadAll(resp.Body)
		if rerr != nil {
			return nil, outcomeRetryTransient, resp.StatusCode, fmt.Errorf("read body: %w", rerr)
		}
		return body, outcomeSuccess, resp.StatusCode, nil
	case http.StatusTooManyRequests:
		return nil, outcomeRetryRateLimited, resp.StatusCode, nil
	default:
		return nil, outcomeFatal, resp.StatusCode, nil
	}
}

func (c *Client) endpointRequest(ep drepo.Endpoint, symbol string) (string, map[string][]string, error) {
	params := map[string][]string{
		"symbol": {symbol},
		"token":  {c.cfg.APIKey},
	}
	switch ep {
	case drepo.EndpointProfile:
		return c.cfg.BaseURL + "/stock/profile2", params, nil
	case drepo.EndpointQuote:
		return c.cfg.BaseURL + "/quote", params, nil
	case drepo.EndpointFundamentals:
		params["metric"] = []string{"all"}
		return c.cfg.BaseURL + "/stock/metric", params, nil
	default:
		return "", nil, fmt.Errorf("unknown endpoint: %s", ep)
	}
}

func (c *Client) recordFetch(ep drepo.Endpoint, result string) {
	if c.metrics != nil {
		c.metrics.RecordFetch(string(ep), result)
	}
}

func (c *Client) warn(msg string, ep drepo.Endpoint, symbol string, attempt int, wait time.Duration) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg,
		applogger.String("endpoint", string(ep)),
		applogger.String("symbol", symbol),
		applogger.Int("attempt", attempt),
		applogger.Duration("wait_ms", wait),
	)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ drepo.MarketDataSource = (*Client)(nil)
