package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"FinDash/internal/domain/models"
	domrepo "FinDash/internal/domain/repository"
	"FinDash/internal/services/features"
	applogger "FinDash/pkg/logger"
)

const (
	moversPerSide        = 5
	defaultEarningsRange = 14 * 24 * time.Hour
)

// ErrUnknownIndustry is returned by Movers for an industry with no symbols.
var ErrUnknownIndustry = errors.New("unknown industry")

// MarketBoard serves the equities, calendar and crypto panels.
type MarketBoard struct {
	quotes          domrepo.QuoteProvider
	crypto          domrepo.CryptoProvider
	overviewSymbols []string
	industries      map[string][]string
	l               *applogger.Logger
	now             func() time.Time
}

func NewMarketBoard(quotes domrepo.QuoteProvider, crypto domrepo.CryptoProvider, overviewSymbols []string, industries map[string][]string, l *applogger.Logger) *MarketBoard {
	return &MarketBoard{
		quotes:          quotes,
		crypto:          crypto,
		overviewSymbols: overviewSymbols,
		industries:      industries,
		l:               l,
		now:             time.Now,
	}
}

// Overview quotes the configured index symbols.
func (b *MarketBoard) Overview(ctx context.Context) []models.SymbolQuote {
	return b.quotes.Quotes(ctx, b.overviewSymbols)
}

// Movers returns the top gainers and losers of an industry by |percent change|.
func (b *MarketBoard) Movers(ctx context.Context, industry string) (*models.Movers, error) {
	symbols, ok := b.industries[industry]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIndustry, industry)
	}
	return RankMovers(industry, b.quotes.Quotes(ctx, symbols)), nil
}

// RankMovers orders quotes by absolute percent change and splits them into
// at most five gainers and five losers. Flat quotes are in neither list.
func RankMovers(industry string, quotes []models.SymbolQuote) *models.Movers {
	sorted := append([]models.SymbolQuote(nil), quotes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].Quote.PercentChange) > math.Abs(sorted[j].Quote.PercentChange)
	})

	out := &models.Movers{Industry: industry, Gainers: []models.Mover{}, Losers: []models.Mover{}}
	for _, q := range sorted {
		switch {
		case q.Quote.PercentChange > 0 && len(out.Gainers) < moversPerSide:
			out.Gainers = append(out.Gainers, toMover(len(out.Gainers)+1, q))
		case q.Quote.PercentChange < 0 && len(out.Losers) < moversPerSide:
			out.Losers = append(out.Losers, toMover(len(out.Losers)+1, q))
		}
	}
	return out
}

func toMover(rank int, q models.SymbolQuote) models.Mover {
	return models.Mover{
		Rank:          rank,
		Ticker:        q.Symbol,
		Price:         q.Quote.Current,
		Change:        q.Quote.Change,
		PercentChange: q.Quote.PercentChange,
	}
}

// Earnings lists the earnings calendar. Zero bounds default to today and
// two weeks from today.
func (b *MarketBoard) Earnings(ctx context.Context, from, to time.Time) []models.EarningsRow {
	if from.IsZero() {
		from = b.now()
	}
	if to.IsZero() {
		to = from.Add(defaultEarningsRange)
	}
	raw := b.quotes.EarningsCalendar(ctx, from, to)
	rows := make([]models.EarningsRow, 0, len(raw))
	for i, e := range raw {
		if e.Symbol == "" || e.Date == "" {
			continue
		}
		rows = append(rows, toEarningsRow(i, e))
	}
	b.l.Debug("earnings calendar loaded", applogger.Int("rows", len(rows)))
	return rows
}

func toEarningsRow(i int, e models.Earning) models.EarningsRow {
	row := models.EarningsRow{
		ID:              fmt.Sprintf("%s-%s-%d", e.Symbol, e.Date, i),
		Ticker:          e.Symbol,
		ReportDate:      e.Date,
		ReportTime:      "AMC",
		ActualEPS:       e.EPSActual,
		RevenueExpected: "n/a",
		Surprise:        features.EPSSurprise(e.EPSActual, e.EPSEstimate),
	}
	if e.Hour == "bmo" {
		row.ReportTime = "BMO"
	}
	if e.EPSEstimate != nil {
		row.ExpectedEPS = *e.EPSEstimate
	}
	if e.RevenueEstimate != nil && *e.RevenueEstimate != 0 {
		row.RevenueExpected = features.RevenueLabel(*e.RevenueEstimate)
	}
	if e.RevenueActual != nil && *e.RevenueActual != 0 {
		v := features.RevenueLabel(*e.RevenueActual)
		row.RevenueActual = &v
	}
	return row
}

// Economic lists macro releases that have both a time and an event name.
func (b *MarketBoard) Economic(ctx context.Context) []models.EconomicEvent {
	raw := b.quotes.EconomicCalendar(ctx)
	out := make([]models.EconomicEvent, 0, len(raw))
	for _, e := range raw {
		if e.Time != "" && e.Event != "" {
			out = append(out, e)
		}
	}
	return out
}

// Crypto returns the top coins by market cap.
func (b *MarketBoard) Crypto(ctx context.Context, limit int) []models.CoinMarket {
	return b.crypto.Markets(ctx, limit)
}

// Industries lists configured industry names in sorted order.
func (b *MarketBoard) Industries() []string {
	names := make([]string, 0, len(b.industries))
	for n := range b.industries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
