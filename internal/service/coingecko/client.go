// Package coingecko reads crypto market listings from the public CoinGecko API.
package coingecko

import (
	"context"
	"strconv"
	"strings"

	"FinDash/internal/domain/models"
	domrepo "FinDash/internal/domain/repository"
	xhttp "FinDash/pkg/http"
	applogger "FinDash/pkg/logger"
)

const maxPerPage = 250

// Client needs no credentials.
type Client struct {
	baseURL string
	http    *xhttp.Client
	l       *applogger.Logger
	metrics domrepo.Metrics
}

func New(baseURL string, client *xhttp.Client, l *applogger.Logger, metrics domrepo.Metrics) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: client, l: l, metrics: metrics}
}

// Markets returns the top coins by market cap in USD, or nil on failure.
func (c *Client) Markets(ctx context.Context, perPage int) []models.CoinMarket {
	if perPage <= 0 {
		perPage = 10
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	var out []models.CoinMarket
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/coins/markets",
		Headers: map[string]string{
			"Accept": "application/json",
		},
		QueryParams: map[string][]string{
			"vs_currency":             {"usd"},
			"order":                   {"market_cap_desc"},
			"per_page":                {strconv.Itoa(perPage)},
			"page":                    {"1"},
			"sparkline":               {"false"},
			"price_change_percentage": {"24h"},
		},
	}, &out)
	if err != nil {
		c.metrics.RecordVendorRequest("coingecko", "/coins/markets", "error")
		c.l.Error("coingecko request failed", applogger.Error(err))
		return nil
	}
	c.metrics.RecordVendorRequest("coingecko", "/coins/markets", "ok")
	return out
}

var _ domrepo.CryptoProvider = (*Client)(nil)
