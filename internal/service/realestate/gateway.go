// Package realestate is the client for the RapidAPI us-real-estate provider.
package realestate

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"FinDash/internal/domain/models"
	domrepo "FinDash/internal/domain/repository"
	"FinDash/internal/service/ratelimit"
	xhttp "FinDash/pkg/http"
	applogger "FinDash/pkg/logger"
)

// ErrNotConfigured is returned internally when no API key is set.
var ErrNotConfigured = errors.New("realestate: api key not configured")

const (
	vendorName = "rapidapi"

	endpointTrends  = "/market-trends"
	endpointForSale = "/properties/list-for-sale"
	endpointForRent = "/properties/list-for-rent"
	endpointSold    = "/properties/list-sold"
)

// Config holds provider credentials and limits.
type Config struct {
	APIKey     string
	Host       string
	BaseURL    string
	RatePerSec float64
	Burst      float64
}

type trendsResponse struct {
	Data struct {
		MarketTrends []models.MarketTrends `json:"market_trends"`
	} `json:"data"`
}

type listingsResponse struct {
	Data struct {
		HomeSearch struct {
			Results []models.Property `json:"results"`
		} `json:"home_search"`
	} `json:"data"`
}

// Gateway issues single-attempt GETs against the provider. It never returns
// errors to callers: failures are logged and surface as nil or empty.
type Gateway struct {
	cfg     Config
	client  *xhttp.Client
	limiter *ratelimit.Limiter
	logger  *applogger.Logger
	metrics domrepo.Metrics
}

func NewGateway(cfg Config, client *xhttp.Client, limiter *ratelimit.Limiter, logger *applogger.Logger, metrics domrepo.Metrics) *Gateway {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" && cfg.Host != "" {
		cfg.BaseURL = "https://" + cfg.Host
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	g := &Gateway{cfg: cfg, client: client, limiter: limiter, logger: logger, metrics: metrics}
	if !g.Configured() {
		logger.Warn("realestate api key not configured, live fetches disabled")
	}
	return g
}

// Configured reports whether an API key is present.
func (g *Gateway) Configured() bool { return g.cfg.APIKey != "" }

func (g *Gateway) MarketTrends(ctx context.Context, city, state string) *models.MarketTrends {
	var resp trendsResponse
	if err := g.fetch(ctx, endpointTrends, map[string][]string{
		"city":       {city},
		"state_code": {state},
	}, &resp); err != nil {
		return nil
	}
	if len(resp.Data.MarketTrends) == 0 {
		return nil
	}
	t := resp.Data.MarketTrends[0]
	return &t
}

func (g *Gateway) PropertiesForSale(ctx context.Context, city, state string, limit int) []models.Property {
	return g.listings(ctx, endpointForSale, city, state, limit, "relevance")
}

func (g *Gateway) PropertiesForRent(ctx context.Context, city, state string, limit int) []models.Property {
	return g.listings(ctx, endpointForRent, city, state, limit, "relevance")
}

func (g *Gateway) RecentlySold(ctx context.Context, city, state string, limit int) []models.Property {
	return g.listings(ctx, endpointSold, city, state, limit, "sold_date")
}

func (g *Gateway) listings(ctx context.Context, endpoint, city, state string, limit int, sort string) []models.Property {
	var resp listingsResponse
	if err := g.fetch(ctx, endpoint, map[string][]string{
		"city":       {city},
		"state_code": {state},
		"limit":      {strconv.Itoa(limit)},
		"offset":     {"0"},
		"sort":       {sort},
	}, &resp); err != nil {
		return nil
	}
	return resp.Data.HomeSearch.Results
}

// fetch waits for a rate token and performs one request. Errors are logged
// and counted here so callers only need to check for non-nil.
func (g *Gateway) fetch(ctx context.Context, endpoint string, params map[string][]string, dest interface{}) error {
	if !g.Configured() {
		g.metrics.RecordVendorRequest(vendorName, endpoint, "skipped")
		return ErrNotConfigured
	}
	if err := g.limiter.Wait(ctx, vendorName, g.cfg.Burst, g.cfg.RatePerSec); err != nil {
		g.metrics.RecordVendorRequest(vendorName, endpoint, "cancelled")
		return err
	}

	start := time.Now()
	err := g.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         g.cfg.BaseURL + endpoint,
		QueryParams: params,
		Headers: map[string]string{
			"x-rapidapi-key":  g.cfg.APIKey,
			"x-rapidapi-host": g.cfg.Host,
		},
	}, dest)
	g.metrics.RecordLatency("rapidapi"+endpoint, time.Since(start).Seconds())
	if err != nil {
		g.metrics.RecordVendorRequest(vendorName, endpoint, "error")
		g.logger.Error("realestate request failed",
			applogger.String("endpoint", endpoint),
			applogger.String("city", firstParam(params, "city")),
			applogger.Error(err),
		)
		return err
	}
	g.metrics.RecordVendorRequest(vendorName, endpoint, "ok")
	return nil
}

func firstParam(params map[string][]string, key string) string {
	if v := params[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

var _ domrepo.RealEstateGateway = (*Gateway)(nil)
