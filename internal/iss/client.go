// Package iss provides a read-only client for the MOEX ISS market-data API.
package iss

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	apperrors "bondcheck/internal/errors"
	"bondcheck/internal/logging"
)

const (
	// DefaultBaseURL is the base URL for the MOEX ISS API.
	DefaultBaseURL = "https://iss.moex.com"

	// DefaultTimeout bounds each request. Resolution of one identifier is
	// therefore bounded by timeout × calls made (1 fast path, up to 3 fallback).
	DefaultTimeout = 10 * time.Second

	// DefaultRateLimit is the default client-side rate limit (requests per second).
	DefaultRateLimit = 10
)

// Client is a MOEX ISS API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithLogger sets a logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new MOEX ISS client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Security fetches the bond-market metadata row for an instrument code.
// The returned table carries SECNAME, MATDATE, PUTOPTIONDATE and
// CALLOPTIONDATE columns among others.
func (c *Client) Security(ctx context.Context, code string) (Table, error) {
	path := fmt.Sprintf("/iss/engines/stock/markets/bonds/securities/%s.json", url.PathEscape(code))
	params := url.Values{}
	params.Set("iss.meta", "off")
	params.Set("iss.only", "securities")

	var payload struct {
		Securities Table `json:"securities"`
	}
	if err := c.get(ctx, path, params, &payload); err != nil {
		return Table{}, err
	}
	return payload.Securities, nil
}

// Search runs a free-text security search. Candidate rows carry SECID, ISIN,
// EMITTER_ID and PRIMARY_BOARDID columns.
func (c *Client) Search(ctx context.Context, query string) (Table, error) {
	path := "/iss/securities.json"
	params := url.Values{}
	params.Set("iss.meta", "off")
	params.Set("q", query)

	var payload struct {
		Securities Table `json:"securities"`
	}
	if err := c.get(ctx, path, params, &payload); err != nil {
		return Table{}, err
	}
	return payload.Securities, nil
}

// BondizationResult holds the coupon schedule and bond summary tables.
type BondizationResult struct {
	Coupons     Table
	Bondization Table
}

// Bondization fetches the coupon/amortization schedule for an instrument code.
func (c *Client) Bondization(ctx context.Context, code string) (BondizationResult, error) {
	path := fmt.Sprintf("/iss/statistics/engines/stock/markets/bonds/bondization/%s.json", url.PathEscape(code))
	params := url.Values{}
	params.Set("iss.meta", "off")
	params.Set("iss.only", "coupons,bondization")
	params.Set("limit", "unlimited")

	var payload struct {
		Coupons     Table `json:"coupons"`
		Bondization Table `json:"bondization"`
	}
	if err := c.get(ctx, path, params, &payload); err != nil {
		return BondizationResult{}, err
	}
	return BondizationResult{Coupons: payload.Coupons, Bondization: payload.Bondization}, nil
}

// get performs a GET request against the API. Non-2xx responses become a
// typed ProviderError; transport failures are returned as-is for the caller
// to classify.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "bondcheck")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	logging.LogAPICall(c.logger, path, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperrors.NewProviderError(path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
