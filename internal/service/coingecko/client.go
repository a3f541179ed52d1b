package coingecko

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"DragonVeins/internal/domain/models"
	drepo "DragonVeins/internal/domain/repository"
	"DragonVeins/internal/service/ratelimit"
	xhttp "DragonVeins/pkg/http"
)

// Error kinds surfaced by the feed client. The poller treats them all the
// same (abandon the cycle, keep last-known-good state) but logs and counts
// them separately.
var (
	ErrTransport = errors.New("coingecko: transport failure")
	ErrUpstream  = errors.New("coingecko: upstream failure")
	ErrMalformed = errors.New("coingecko: malformed payload")
	ErrNotFound  = errors.New("coingecko: coin not found")
	ErrThrottled = errors.New("coingecko: client-side rate limit")
)

// Client implements a MarketFeed backed by the CoinGecko REST API.
type Client struct {
	baseURL  string
	currency string
	perPage  int
	http     *xhttp.Client
	limiter  *ratelimit.Limiter
	capacity float64
	perSec   float64
	metrics  drepo.Metrics
}

// Option configures Client.
type Option func(*Client)

// New creates a new CoinGecko MarketFeed.
func New(baseURL, currency string, perPage int, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		currency: currency,
		perPage:  perPage,
		http:     xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter:  ratelimit.New(),
		capacity: 10,
		perSec:   0.5,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithRate sets the client-side token bucket for the public API tier.
func WithRate(capacity, perSec float64) Option {
	return func(c *Client) {
		c.capacity = capacity
		c.perSec = perSec
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m drepo.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// FetchMarkets performs one round trip against /coins/markets and returns
// the per-asset snapshots in market-cap-descending order.
func (c *Client) FetchMarkets(ctx context.Context) ([]models.CoinSnapshot, error) {
	if !c.limiter.Allow("markets", c.capacity, c.perSec) {
		return nil, ErrThrottled
	}

	start := time.Now()
	var coins []models.CoinSnapshot
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/coins/markets",
		QueryParams: map[string][]string{
			"vs_currency":             {c.currency},
			"order":                   {"market_cap_desc"},
			"per_page":                {fmt.Sprintf("%d", c.perPage)},
			"sparkline":               {"false"},
			"price_change_percentage": {"24h"},
		},
	}, &coins)
	c.observe("markets", start)
	if err != nil {
		return nil, classify(err)
	}
	if len(coins) == 0 {
		return nil, fmt.Errorf("%w: empty markets response", ErrMalformed)
	}
	for _, coin := range coins {
		if coin.ID == "" {
			return nil, fmt.Errorf("%w: coin without id", ErrMalformed)
		}
	}
	return coins, nil
}

// FetchCoin performs one round trip against /coins/{id}.
func (c *Client) FetchCoin(ctx context.Context, id string) (*models.CoinDetail, error) {
	if !c.limiter.Allow("detail", c.capacity, c.perSec) {
		return nil, ErrThrottled
	}

	start := time.Now()
	var detail models.CoinDetail
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/coins/" + id,
		QueryParams: map[string][]string{
			"localization":   {"false"},
			"tickers":        {"false"},
			"market_data":    {"true"},
			"community_data": {"true"},
			"developer_data": {"false"},
			"sparkline":      {"true"},
		},
	}, &detail)
	c.observe("detail", start)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.StatusCode == 404 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, classify(err)
	}
	if detail.ID == "" {
		return nil, fmt.Errorf("%w: detail without id", ErrMalformed)
	}
	return &detail, nil
}

func (c *Client) observe(op string, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordFetchDuration(op, time.Since(start).Seconds())
	}
}

// ErrorKind names the failure class for logs and metrics.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrThrottled):
		return "throttled"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "unknown"
	}
}

func classify(err error) error {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return fmt.Errorf("%w: status %d", ErrUpstream, se.StatusCode)
	}
	// Decode failures come back from SendAndParse wrapped with "decode json".
	if strings.Contains(err.Error(), "decode json") {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}
