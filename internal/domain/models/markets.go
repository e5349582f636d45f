package models

import "time"

// Quote mirrors the Finnhub /quote payload.
type Quote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	PercentChange float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PrevClose     float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// Valid reports whether the vendor returned a priced quote.
// Finnhub answers unknown symbols with an all-zero body.
func (q Quote) Valid() bool {
	return q.Current != 0 || q.Timestamp != 0
}

// Earning is one row of the Finnhub earnings calendar.
type Earning struct {
	Date            string   `json:"date"`
	EPSActual       *float64 `json:"epsActual"`
	EPSEstimate     *float64 `json:"epsEstimate"`
	Hour            string   `json:"hour"`
	Quarter         int      `json:"quarter"`
	RevenueActual   *float64 `json:"revenueActual"`
	RevenueEstimate *float64 `json:"revenueEstimate"`
	Symbol          string   `json:"symbol"`
	Year            int      `json:"year"`
}

// EconomicEvent is one row of the Finnhub economic calendar.
type EconomicEvent struct {
	Actual   *float64 `json:"actual"`
	Country  string   `json:"country"`
	Estimate *float64 `json:"estimate"`
	Event    string   `json:"event"`
	Impact   string   `json:"impact"`
	Prev     *float64 `json:"prev"`
	Time     string   `json:"time"`
	Unit     string   `json:"unit,omitempty"`
}

// CoinMarket is one entry of the CoinGecko /coins/markets list.
type CoinMarket struct {
	ID                       string  `json:"id"`
	Symbol                   string  `json:"symbol"`
	Name                     string  `json:"name"`
	Image                    string  `json:"image"`
	CurrentPrice             float64 `json:"current_price"`
	MarketCap                float64 `json:"market_cap"`
	MarketCapRank            int     `json:"market_cap_rank"`
	TotalVolume              float64 `json:"total_volume"`
	High24h                  float64 `json:"high_24h"`
	Low24h                   float64 `json:"low_24h"`
	PriceChange24h           float64 `json:"price_change_24h"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	LastUpdated              string  `json:"last_updated"`
}

// SymbolQuote pairs a ticker with its quote.
type SymbolQuote struct {
	Symbol string `json:"symbol"`
	Quote  Quote  `json:"quote"`
}

// Mover is a ranked gainer or loser.
type Mover struct {
	Rank          int     `json:"rank"`
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percentChange"`
}

// Movers holds the top gainers and losers of one industry.
type Movers struct {
	Industry string  `json:"industry"`
	Gainers  []Mover `json:"gainers"`
	Losers   []Mover `json:"losers"`
}

// EarningsRow is an earnings calendar entry with the EPS surprise computed.
type EarningsRow struct {
	ID              string   `json:"id"`
	Ticker          string   `json:"ticker"`
	ReportDate      string   `json:"reportDate"`
	ReportTime      string   `json:"reportTime"`
	ExpectedEPS     float64  `json:"expectedEPS"`
	ActualEPS       *float64 `json:"actualEPS"`
	RevenueExpected string   `json:"revenueExpected"`
	RevenueActual   *string  `json:"revenueActual"`
	Surprise        *float64 `json:"surprise"`
}

// ProviderStatus tells whether a vendor is live or in demo mode.
type ProviderStatus struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
	Mode       string `json:"mode"`
}

// StatusReport lists vendors and the cache backend in use.
type StatusReport struct {
	Providers    []ProviderStatus `json:"providers"`
	CacheBackend string           `json:"cacheBackend"`
	SinkBackend  string           `json:"sinkBackend"`
	Timestamp    time.Time        `json:"timestamp"`
}
