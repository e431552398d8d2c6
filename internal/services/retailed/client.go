package retailed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const productEndpoint = "https://app.retailed.io/api/v1/scraper/stockx/product"

// Fetch failure taxonomy. Callers can distinguish "not found" from
// "rate limited" from "malformed payload" when deciding what to log.
var (
	ErrNotConfigured = errors.New("retailed: RETAILED_API_KEY not configured")
	ErrNotFound      = errors.New("retailed: product not found")
	ErrRateLimited   = errors.New("retailed: upstream rate limit")
	ErrMalformed     = errors.New("retailed: no lowest ask in response")
)

// Client fetches StockX lowest-ask prices through the Retailed.io scraper API.
// A rate limiter gates every request; Retailed tolerates one request at a time
// with a fixed delay between calls.
type Client struct {
	apiKey   string
	currency string
	country  string
	endpoint string
	client   *resty.Client
	limiter  *rate.Limiter
}

type productResponse struct {
	LowestAsk *float64 `json:"lowestAsk"`
	Market    struct {
		Bids struct {
			LowestAsk *float64 `json:"lowest_ask"`
		} `json:"bids"`
	} `json:"market"`
}

// NewClient creates a Retailed client. delay is the minimum spacing between
// requests; tests pass NewClientWithLimiter with rate.Inf instead.
func NewClient(apiKey, currency, country string, delay time.Duration) *Client {
	return NewClientWithLimiter(apiKey, currency, country, rate.NewLimiter(rate.Every(delay), 1))
}

func NewClientWithLimiter(apiKey, currency, country string, limiter *rate.Limiter) *Client {
	client := resty.New()
	client.SetTimeout(30 * time.Second)

	return &Client{
		apiKey:   apiKey,
		currency: currency,
		country:  country,
		endpoint: productEndpoint,
		client:   client,
		limiter:  limiter,
	}
}

// FetchPrice returns the current lowest ask for a StockX product slug.
func (c *Client) FetchPrice(ctx context.Context, slug string) (float64, error) {
	if c.apiKey == "" {
		return 0, ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("retailed: rate limiter wait: %w", err)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("x-api-key", c.apiKey).
		SetQueryParams(map[string]string{
			"query":    slug,
			"currency": c.currency,
			"country":  c.country,
		}).
		Get(c.endpoint)
	if err != nil {
		return 0, fmt.Errorf("retailed: request for %s failed: %w", slug, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		// fall through to parsing
	case http.StatusTooManyRequests:
		return 0, fmt.Errorf("%w (slug=%s)", ErrRateLimited, slug)
	case http.StatusNotFound:
		return 0, fmt.Errorf("%w (slug=%s)", ErrNotFound, slug)
	default:
		return 0, fmt.Errorf("retailed: unexpected status %d for slug=%s", resp.StatusCode(), slug)
	}

	price, err := parseLowestAsk(resp.Body())
	if err != nil {
		return 0, fmt.Errorf("%w (slug=%s)", err, slug)
	}
	return price, nil
}

// parseLowestAsk extracts the lowest ask from a Retailed product payload.
// The value lives under market.bids.lowest_ask, with a top-level lowestAsk
// fallback on older payloads.
func parseLowestAsk(body []byte) (float64, error) {
	var payload productResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, ErrMalformed
	}
	if payload.Market.Bids.LowestAsk != nil {
		return *payload.Market.Bids.LowestAsk, nil
	}
	if payload.LowestAsk != nil {
		return *payload.LowestAsk, nil
	}
	return 0, ErrMalformed
}
