package bseApi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/accounting"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi"
	"github.com/shopspring/decimal"
)

const quoteBody = `{
	"Cmpname": {"FullN": " Reliance Industries Ltd "},
	"Header": {"Open": "2,901.00", "High": "2,950.45", "Low": "2,880.10", "PrevClose": "2,899.95"},
	"CurrRate": {"LTP": "2,934.55", "Chg": "34.60"}
}`

func newTestApi(t *testing.T, handler http.HandlerFunc) *BseApi {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.API.Timeout = 2 * time.Second
	cfg.API.BseApi = config.BseApi{
		Url:           srv.URL,
		QuotePath:     "/quote",
		CodeParam:     "scripcode",
		PriceJsonPath: "$.CurrRate.LTP",
		OpenJsonPath:  "$.Header.Open",
		HighJsonPath:  "$.Header.High",
		LowJsonPath:   "$.Header.Low",
		PrevJsonPath:  "$.Header.PrevClose",
		NameJsonPath:  "$.Cmpname.FullN",
		Concurrency:   2,
	}
	return New(cfg)
}

func TestGetQuote(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("scripcode") != "500325" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Referer") == "" && r.Header.Get("User-Agent") == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(quoteBody))
	})

	quote, err := api.GetQuote(context.Background(), "500325")
	if err != nil {
		t.Fatalf("GetQuote() error = %v", err)
	}

	tests := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"price", quote.Price, "2934.55"},
		{"open", quote.Open, "2901"},
		{"high", quote.High, "2950.45"},
		{"low", quote.Low, "2880.1"},
		{"prev close", quote.PrevClose, "2899.95"},
	}
	for _, tt := range tests {
		if !tt.got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("%s = %s, want %s", tt.name, tt.got, tt.want)
		}
	}
	if quote.StockName != "Reliance Industries Ltd" {
		t.Errorf("StockName = %q, want %q", quote.StockName, "Reliance Industries Ltd")
	}
	if quote.StockCode != "500325" {
		t.Errorf("StockCode = %q, want %q", quote.StockCode, "500325")
	}
}

func TestGetQuoteFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"not found", http.StatusNotFound, "", externalApi.ErrNotFound},
		{"server error", http.StatusBadGateway, "", externalApi.ErrBadResponse},
		{"not json", http.StatusOK, "<html>", externalApi.ErrBadResponse},
		{"empty price", http.StatusOK, `{"CurrRate": {"LTP": ""}}`, externalApi.ErrNotFound},
		{"zero price", http.StatusOK, `{"CurrRate": {"LTP": 0}}`, externalApi.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := api.GetQuote(context.Background(), "500325")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GetQuote() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, accounting.ErrQuoteUnavailable) {
				t.Errorf("GetQuote() error = %v, want it to wrap %v", err, accounting.ErrQuoteUnavailable)
			}
		})
	}
}

func TestGetQuotesSkipsFailures(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("scripcode") {
		case "500325":
			_, _ = w.Write([]byte(`{"CurrRate": {"LTP": 2934.55}}`))
		case "532540":
			_, _ = w.Write([]byte(`{"CurrRate": {"LTP": "4,100"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	quotes, err := api.GetQuotes(context.Background(), []string{"500325", "532540", "000000"})
	if err != nil {
		t.Fatalf("GetQuotes() error = %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("len(quotes) = %d, want 2", len(quotes))
	}
	if !quotes["532540"].Price.Equal(decimal.NewFromInt(4100)) {
		t.Errorf("532540 price = %s, want 4100", quotes["532540"].Price)
	}
}
