package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	xhttp "FinDash/pkg/http"
	applogger "FinDash/pkg/logger"
	"FinDash/pkg/metrics"
)

func TestMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/coins/markets" || q.Get("vs_currency") != "usd" || q.Get("per_page") != "2" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[
			{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":64000,"market_cap_rank":1,"price_change_percentage_24h":2.1},
			{"id":"ethereum","symbol":"eth","name":"Ethereum","current_price":3100,"market_cap_rank":2,"price_change_percentage_24h":-1.4}
		]`))
	}))
	defer srv.Close()

	got := New(srv.URL, xhttp.NewClient(), applogger.Nop(), metrics.Noop{}).Markets(context.Background(), 2)
	if len(got) != 2 || got[0].ID != "bitcoin" || got[1].PriceChangePercentage24h != -1.4 {
		t.Fatalf("unexpected markets %+v", got)
	}
}

func TestMarketsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if got := New(srv.URL, xhttp.NewClient(), applogger.Nop(), metrics.Noop{}).Markets(context.Background(), 10); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}
