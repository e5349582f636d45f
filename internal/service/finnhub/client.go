// Package finnhub is a REST client for Finnhub quotes and calendars.
package finnhub

import (
	"context"
	"errors"
	"strings"
	"time"

	"FinDash/internal/domain/models"
	domrepo "FinDash/internal/domain/repository"
	"FinDash/internal/service/ratelimit"
	xhttp "FinDash/pkg/http"
	applogger "FinDash/pkg/logger"
	"FinDash/pkg/util"

	"golang.org/x/sync/errgroup"
)

var errNotConfigured = errors.New("finnhub: api key not configured")

const (
	vendorName = "finnhub"

	// Finnhub's free tier allows 60 calls per minute.
	defaultRatePerSec = 1.0
	quoteParallelism  = 4
)

// Config holds Finnhub credentials and pacing.
type Config struct {
	APIKey     string
	BaseURL    string
	RatePerSec float64
}

type earningsResponse struct {
	EarningsCalendar []models.Earning `json:"earningsCalendar"`
}

type economicResponse struct {
	EconomicCalendar []models.EconomicEvent `json:"economicCalendar"`
}

// Client implements domrepo.QuoteProvider. Failures come back as nil or empty.
type Client struct {
	cfg     Config
	http    *xhttp.Client
	limiter *ratelimit.Limiter
	l       *applogger.Logger
	metrics domrepo.Metrics
}

func New(cfg Config, client *xhttp.Client, limiter *ratelimit.Limiter, l *applogger.Logger, metrics domrepo.Metrics) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RatePerSec == 0 {
		cfg.RatePerSec = defaultRatePerSec
	}
	c := &Client{cfg: cfg, http: client, limiter: limiter, l: l, metrics: metrics}
	if !c.Configured() {
		l.Warn("finnhub api key not configured, serving demo mode")
	}
	return c
}

func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

// Quote returns the latest quote for symbol, or nil.
func (c *Client) Quote(ctx context.Context, symbol string) *models.Quote {
	var q models.Quote
	if err := c.get(ctx, "/quote", map[string][]string{"symbol": {symbol}}, &q); err != nil {
		return nil
	}
	if !q.Valid() {
		c.l.Debug("finnhub empty quote", applogger.String("symbol", symbol))
		return nil
	}
	return &q
}

// Quotes fetches symbols in parallel under the rate limit and keeps input
// order, dropping symbols without a quote.
func (c *Client) Quotes(ctx context.Context, symbols []string) []models.SymbolQuote {
	if !c.Configured() || len(symbols) == 0 {
		return nil
	}
	// Each goroutine owns one slot; Wait publishes the writes.
	quotes := make([]*models.Quote, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(quoteParallelism)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			quotes[i] = c.Quote(gctx, sym)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.SymbolQuote, 0, len(symbols))
	for i, q := range quotes {
		if q != nil {
			out = append(out, models.SymbolQuote{Symbol: symbols[i], Quote: *q})
		}
	}
	return out
}

// EarningsCalendar lists earnings between from and to inclusive.
func (c *Client) EarningsCalendar(ctx context.Context, from, to time.Time) []models.Earning {
	var resp earningsResponse
	if err := c.get(ctx, "/calendar/earnings", map[string][]string{
		"from": {util.FormatDate(from)},
		"to":   {util.FormatDate(to)},
	}, &resp); err != nil {
		return nil
	}
	return resp.EarningsCalendar
}

// EconomicCalendar lists upcoming macro releases.
func (c *Client) EconomicCalendar(ctx context.Context) []models.EconomicEvent {
	var resp economicResponse
	if err := c.get(ctx, "/calendar/economic", nil, &resp); err != nil {
		return nil
	}
	return resp.EconomicCalendar
}

func (c *Client) get(ctx context.Context, path string, params map[string][]string, dest interface{}) error {
	if !c.Configured() {
		return errNotConfigured
	}
	if err := c.limiter.Wait(ctx, vendorName, 1, c.cfg.RatePerSec); err != nil {
		c.metrics.RecordVendorRequest(vendorName, path, "cancelled")
		return err
	}
	q := map[string][]string{"token": {c.cfg.APIKey}}
	for k, v := range params {
		q[k] = v
	}
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.cfg.BaseURL + path,
		QueryParams: q,
	}, dest)
	if err != nil {
		c.metrics.RecordVendorRequest(vendorName, path, "error")
		c.l.Error("finnhub request failed", applogger.String("path", path), applogger.Error(err))
		return err
	}
	c.metrics.RecordVendorRequest(vendorName, path, "ok")
	return nil
}

var _ domrepo.QuoteProvider = (*Client)(nil)
