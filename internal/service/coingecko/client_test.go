package coingecko

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(url string) *Client {
	// Generous bucket so the limiter never interferes with a test.
	return New(url, "usd", 50, 2*time.Second, WithRate(1000, 1000))
}

func TestFetchMarketsOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/markets" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("vs_currency") != "usd" {
			t.Errorf("vs_currency = %s", q.Get("vs_currency"))
		}
		if q.Get("order") != "market_cap_desc" {
			t.Errorf("order = %s", q.Get("order"))
		}
		if q.Get("price_change_percentage") != "24h" {
			t.Errorf("price_change_percentage = %s", q.Get("price_change_percentage"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":50000,"price_change_percentage_24h":6.2,"total_volume":5000000000,"market_cap":980000000000},
			{"id":"ethereum","symbol":"eth","name":"Ethereum","current_price":3000,"price_change_percentage_24h":-6.0,"total_volume":2000000000,"market_cap":360000000000}
		]`))
	}))
	defer srv.Close()

	coins, err := newTestClient(srv.URL).FetchMarkets(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(coins) != 2 {
		t.Fatalf("coins = %d, want 2", len(coins))
	}
	if coins[0].ID != "bitcoin" || coins[0].CurrentPrice != 50000 {
		t.Fatalf("first coin = %+v", coins[0])
	}
	if coins[1].PriceChange24 != -6.0 {
		t.Fatalf("change = %v, want -6.0", coins[1].PriceChange24)
	}
}

func TestFetchMarketsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchMarkets(context.Background())
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
	if ErrorKind(err) != "upstream" {
		t.Fatalf("kind = %s", ErrorKind(err))
	}
}

func TestFetchMarketsMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"not":"a list"`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchMarkets(context.Background())
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestFetchMarketsEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchMarkets(context.Background())
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestFetchMarketsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := newTestClient(srv.URL).FetchMarkets(context.Background())
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
	if ErrorKind(err) != "transport" {
		t.Fatalf("kind = %s", ErrorKind(err))
	}
}

func TestFetchMarketsThrottled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin"}]`))
	}))
	defer srv.Close()

	// One token, no refill: the second call must throttle locally.
	c := New(srv.URL, "usd", 50, 2*time.Second, WithRate(1, 0.000001))
	if _, err := c.FetchMarkets(context.Background()); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	_, err := c.FetchMarkets(context.Background())
	if !errors.Is(err, ErrThrottled) {
		t.Fatalf("err = %v, want ErrThrottled", err)
	}
}

func TestFetchCoinOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/bitcoin" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("market_data") != "true" {
			t.Errorf("market_data = %s", r.URL.Query().Get("market_data"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"bitcoin","symbol":"btc","name":"Bitcoin","market_data":{"current_price":{"usd":50000}}}`))
	}))
	defer srv.Close()

	detail, err := newTestClient(srv.URL).FetchCoin(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if detail.ID != "bitcoin" {
		t.Fatalf("id = %s", detail.ID)
	}
}

func TestFetchCoinNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"coin not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchCoin(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if ErrorKind(err) != "not_found" {
		t.Fatalf("kind = %s", ErrorKind(err))
	}
}
