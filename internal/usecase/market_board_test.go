package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"FinDash/internal/domain/models"
	applogger "FinDash/pkg/logger"
)

type fakeQuotes struct {
	quotes   map[string]models.Quote
	earnings []models.Earning
	economic []models.EconomicEvent
	from, to time.Time
}

func (f *fakeQuotes) Configured() bool { return true }

func (f *fakeQuotes) Quote(_ context.Context, s string) *models.Quote {
	q, ok := f.quotes[s]
	if !ok {
		return nil
	}
	return &q
}

func (f *fakeQuotes) Quotes(ctx context.Context, symbols []string) []models.SymbolQuote {
	var out []models.SymbolQuote
	for _, s := range symbols {
		if q := f.Quote(ctx, s); q != nil {
			out = append(out, models.SymbolQuote{Symbol: s, Quote: *q})
		}
	}
	return out
}

func (f *fakeQuotes) EarningsCalendar(_ context.Context, from, to time.Time) []models.Earning {
	f.from, f.to = from, to
	return f.earnings
}

func (f *fakeQuotes) EconomicCalendar(context.Context) []models.EconomicEvent { return f.economic }

type fakeCrypto struct{ perPage int }

func (f *fakeCrypto) Markets(_ context.Context, perPage int) []models.CoinMarket {
	f.perPage = perPage
	return []models.CoinMarket{{ID: "bitcoin"}}
}

func fptr(v float64) *float64 { return &v }

func TestRankMovers(t *testing.T) {
	dps := map[string]float64{
		"A": 1, "B": -7, "C": 3, "D": 0, "E": 9, "F": -2, "G": 4, "H": 5, "I": 6, "J": -0.5,
	}
	var quotes []models.SymbolQuote
	for _, s := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"} {
		quotes = append(quotes, models.SymbolQuote{Symbol: s, Quote: models.Quote{Current: 10, PercentChange: dps[s]}})
	}
	m := RankMovers("technology", quotes)

	wantGainers := []string{"E", "I", "H", "G", "C"}
	if len(m.Gainers) != len(wantGainers) {
		t.Fatalf("gainers: %+v", m.Gainers)
	}
	for i, s := range wantGainers {
		if m.Gainers[i].Ticker != s || m.Gainers[i].Rank != i+1 {
			t.Fatalf("gainer %d: got %+v want %s", i, m.Gainers[i], s)
		}
	}
	wantLosers := []string{"B", "F", "J"}
	for i, s := range wantLosers {
		if m.Losers[i].Ticker != s {
			t.Fatalf("loser %d: got %s want %s", i, m.Losers[i].Ticker, s)
		}
	}
	if len(m.Losers) != 3 {
		t.Fatalf("expected 3 losers, got %d", len(m.Losers))
	}
}

func TestMoversUnknownIndustry(t *testing.T) {
	b := NewMarketBoard(&fakeQuotes{}, &fakeCrypto{}, nil, map[string][]string{"energy": {"XOM"}}, applogger.Nop())
	if _, err := b.Movers(context.Background(), "shipping"); !errors.Is(err, ErrUnknownIndustry) {
		t.Fatalf("expected ErrUnknownIndustry, got %v", err)
	}
}

func TestEarningsDefaultsAndSurprise(t *testing.T) {
	fq := &fakeQuotes{earnings: []models.Earning{
		{Symbol: "AAPL", Date: "2024-05-02", Hour: "amc", EPSActual: fptr(1.53), EPSEstimate: fptr(1.5), RevenueEstimate: fptr(90_750_000_000)},
		{Symbol: "", Date: "2024-05-02"},
		{Symbol: "JPM", Date: "2024-05-03", Hour: "bmo", EPSEstimate: fptr(4.1)},
	}}
	b := NewMarketBoard(fq, &fakeCrypto{}, nil, nil, applogger.Nop())
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	rows := b.Earnings(context.Background(), time.Time{}, time.Time{})
	if !fq.from.Equal(now) || !fq.to.Equal(now.AddDate(0, 0, 14)) {
		t.Fatalf("unexpected range %v..%v", fq.from, fq.to)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Surprise == nil || *rows[0].Surprise < 1.99 || *rows[0].Surprise > 2.01 {
		t.Fatalf("unexpected surprise %v", rows[0].Surprise)
	}
	if rows[0].RevenueExpected != "$90750M" || rows[0].ReportTime != "AMC" {
		t.Fatalf("unexpected row %+v", rows[0])
	}
	if rows[1].Surprise != nil || rows[1].ReportTime != "BMO" {
		t.Fatalf("unexpected row %+v", rows[1])
	}
}

func TestEconomicAndCrypto(t *testing.T) {
	fq := &fakeQuotes{economic: []models.EconomicEvent{
		{Time: "2024-05-03 12:30:00", Event: "Nonfarm Payrolls", Country: "US"},
		{Time: "", Event: "Ghost"},
	}}
	fc := &fakeCrypto{}
	b := NewMarketBoard(fq, fc, nil, nil, applogger.Nop())

	if got := b.Economic(context.Background()); len(got) != 1 || got[0].Event != "Nonfarm Payrolls" {
		t.Fatalf("unexpected events %+v", got)
	}
	if got := b.Crypto(context.Background(), 25); len(got) != 1 || fc.perPage != 25 {
		t.Fatalf("unexpected crypto call %d", fc.perPage)
	}
}
