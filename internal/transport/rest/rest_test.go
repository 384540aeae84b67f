package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/accounting"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/shopspring/decimal"
)

type fakeService struct {
	live   []bool
	filter model.TradeFilter
	rqID   string
}

func (f *fakeService) PortfolioSummary(ctx context.Context, live bool) (model.PortfolioSummary, error) {
	f.live = append(f.live, live)
	f.rqID = utils.GetRequestIDFromCtx(ctx)
	return model.PortfolioSummary{TotalStocks: 2, TotalInvested: decimal.NewFromInt(1750)}, nil
}

func (f *fakeService) Holdings(_ context.Context, live bool) ([]model.Holding, error) {
	f.live = append(f.live, live)
	return []model.Holding{{Position: model.Position{StockCode: "500325", Quantity: 50}, Stale: true}}, nil
}

func (f *fakeService) ListTrades(_ context.Context, filter model.TradeFilter) ([]model.TradeEvent, error) {
	f.filter = filter
	return []model.TradeEvent{{ID: 1, StockCode: "500325", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Direction: model.Buy}}, nil
}

func (f *fakeService) StockOverview(_ context.Context, code string, _ bool) (model.StockSummary, model.Holding, error) {
	if code != "500325" {
		return model.StockSummary{}, model.Holding{}, fmt.Errorf("%s: %w", code, accounting.ErrUnknownStock)
	}
	return model.StockSummary{StockCode: code, Quantity: 50}, model.Holding{}, nil
}

func newTestApp() (*fakeService, func(req *http.Request) *http.Response) {
	cfg := &config.Config{}
	cfg.Report.Currency = "INR"
	svc := &fakeService{}
	app := NewApp(cfg, NewHandler(cfg, svc))
	return svc, func(req *http.Request) *http.Response {
		resp, err := app.Test(req, -1)
		if err != nil {
			panic(err)
		}
		return resp
	}
}

func decode(t *testing.T, body io.Reader, v any) {
	t.Helper()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestSummary(t *testing.T) {
	svc, do := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/summary?live=false", nil)
	req.Header.Set(requestIDHeader, "rq-1")
	resp := do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get(requestIDHeader) != "rq-1" || svc.rqID != "rq-1" {
		t.Errorf("request id not propagated: header %q, ctx %q", resp.Header.Get(requestIDHeader), svc.rqID)
	}

	var body SummaryResponse
	decode(t, resp.Body, &body)
	if body.TotalStocks != 2 || !body.TotalInvested.Equal(decimal.NewFromInt(1750)) || body.Currency != "INR" {
		t.Errorf("body = %+v", body)
	}
	if len(svc.live) != 1 || svc.live[0] {
		t.Errorf("live = %v, want [false]", svc.live)
	}
}

func TestHoldingsDefaultsToLive(t *testing.T) {
	svc, do := newTestApp()

	resp := do(httptest.NewRequest(http.MethodGet, "/api/v1/holdings", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body []HoldingResponse
	decode(t, resp.Body, &body)
	if len(body) != 1 || !body[0].Stale || body[0].PriceAsOf != nil {
		t.Errorf("body = %+v", body)
	}
	if len(svc.live) != 1 || !svc.live[0] {
		t.Errorf("live = %v, want [true]", svc.live)
	}
}

func TestTradesFilter(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		status int
	}{
		{"all", "/api/v1/trades", http.StatusOK},
		{"filtered", "/api/v1/trades?code=500325&from=2024-01-01&to=2024-02-01&limit=5", http.StatusOK},
		{"bad date", "/api/v1/trades?from=01/01/2024", http.StatusBadRequest},
		{"negative limit", "/api/v1/trades?limit=-1", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, do := newTestApp()
			resp := do(httptest.NewRequest(http.MethodGet, tt.url, nil))
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}

	svc, do := newTestApp()
	resp := do(httptest.NewRequest(http.MethodGet, "/api/v1/trades?code=500325&from=2024-01-01&limit=5", nil))
	var body []TradeResponse
	decode(t, resp.Body, &body)
	if len(body) != 1 || body[0].Date != "2024-01-02" || body[0].Direction != "BUY" {
		t.Errorf("body = %+v", body)
	}
	if svc.filter.StockCode != "500325" || svc.filter.Limit != 5 || !svc.filter.Newest || svc.filter.From == nil || svc.filter.To != nil {
		t.Errorf("filter = %+v", svc.filter)
	}
}

func TestStockNotFound(t *testing.T) {
	_, do := newTestApp()

	resp := do(httptest.NewRequest(http.MethodGet, "/api/v1/stocks/999999", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	var body ErrorResponse
	decode(t, resp.Body, &body)
	if body.Code != http.StatusNotFound || body.RequestID == "" {
		t.Errorf("body = %+v", body)
	}

	resp = do(httptest.NewRequest(http.MethodGet, "/api/v1/stocks/500325", nil))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	_, do := newTestApp()

	for _, path := range []string{"/health", "/metrics"} {
		resp := do(httptest.NewRequest(http.MethodGet, path, nil))
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}
