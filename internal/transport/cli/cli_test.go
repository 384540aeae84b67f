package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/data/cache"
	"github.com/KotFed0t/portfolio_tracker/data/repository/memory"
	"github.com/KotFed0t/portfolio_tracker/internal/accounting"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service/portfolioService"
)

type noQuotes struct{}

func (noQuotes) GetQuote(context.Context, string) (model.Quote, error) {
	return model.Quote{}, accounting.ErrQuoteUnavailable
}

func (noQuotes) GetQuotes(context.Context, []string) (map[string]model.Quote, error) {
	return map[string]model.Quote{}, nil
}

type noAlerts struct{}

func (noAlerts) Notify(context.Context, model.AlertEvent) error { return nil }

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.Report.Currency = "INR"
	cfg.Report.ExportDir = t.TempDir()
	cfg.Report.Style = "notty"
	return cfg
}

func newService(cfg *config.Config) *portfolioService.PortfolioService {
	return portfolioService.New(cfg, memory.New(), cache.Noop{}, noQuotes{}, noAlerts{}, nil, nil)
}

type harness struct {
	cfg    *config.Config
	svc    *portfolioService.PortfolioService
	opened int
}

func newHarness(t *testing.T) *harness {
	cfg := testConfig(t)
	return &harness{cfg: cfg, svc: newService(cfg)}
}

func (h *harness) exec(args ...string) (string, error) {
	deps := Deps{
		Open: func(context.Context) (Service, func(), error) {
			h.opened++
			return h.svc, func() {}, nil
		},
		OpenDryRun: func() Service { return newService(h.cfg) },
	}

	var out bytes.Buffer
	root := NewRootCmd(h.cfg, deps)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--plain"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustExec(t *testing.T, args ...string) string {
	t.Helper()
	out, err := h.exec(args...)
	if err != nil {
		t.Fatalf("%v error = %v\n%s", args, err, out)
	}
	return out
}

func TestTradeAddAndList(t *testing.T) {
	h := newHarness(t)

	out := h.mustExec(t, "trade", "add", "buy", "500325", "10", "--price", "1,450.50", "--date", "2024-01-02", "--brokerage", "20")
	if !strings.Contains(out, "trade #1 recorded: BUY 10 500325") {
		t.Errorf("output = %q", out)
	}

	out = h.mustExec(t, "trade", "list", "--code", "500325")
	if !strings.Contains(out, "# Trades") || !strings.Contains(out, "2024-01-02") || !strings.Contains(out, "1450.50") {
		t.Errorf("trade list = %q", out)
	}

	out = h.mustExec(t, "holdings", "--offline")
	if !strings.Contains(out, "500325") || !strings.Contains(out, "*") {
		t.Errorf("holdings should show the stock valued at cost:\n%s", out)
	}
}

func TestTradeAddRejections(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"oversell", []string{"trade", "add", "SELL", "500325", "1", "--price", "10", "--date", "2024-01-02"}, accounting.ErrInsufficientQuantity},
		{"bad direction", []string{"trade", "add", "HOLD", "500325", "1", "--price", "10"}, accounting.ErrInvalidTrade},
		{"zero quantity", []string{"trade", "add", "BUY", "500325", "0", "--price", "10"}, accounting.ErrInvalidTrade},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			if _, err := h.exec(tt.args...); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	h := newHarness(t)
	if _, err := h.exec("trade", "add", "BUY", "500325", "1", "--price", "10", "--date", "02/01/2024"); err == nil || !strings.Contains(err.Error(), "invalid date") {
		t.Errorf("bad date error = %v", err)
	}
	if _, err := h.exec("trade", "add", "BUY", "500325", "1"); err == nil {
		t.Error("missing --price accepted")
	}
}

func TestCorporateActionCommands(t *testing.T) {
	h := newHarness(t)
	h.mustExec(t, "trade", "add", "BUY", "500325", "10", "--price", "100", "--date", "2024-01-02")

	out := h.mustExec(t, "action", "bonus", "500325", "1:1", "--date", "2024-02-01")
	if !strings.Contains(out, "bonus #2 recorded") {
		t.Errorf("output = %q", out)
	}
	h.mustExec(t, "action", "dividend", "500325", "5", "--date", "2024-03-01")

	pos, err := h.svc.Positions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(pos) != 1 || pos[0].Quantity != 20 || pos[0].DividendIncome.IntPart() != 100 {
		t.Errorf("positions = %+v, want 20 shares and 100 dividends", pos)
	}

	out = h.mustExec(t, "action", "list", "--kind", "dividend")
	if !strings.Contains(out, "DIVIDEND") || strings.Contains(out, "BONUS") {
		t.Errorf("action list = %q", out)
	}

	if _, err := h.exec("action", "split", "500325", "1:0"); !errors.Is(err, accounting.ErrInvalidRatio) {
		t.Errorf("split 1:0 error = %v, want %v", err, accounting.ErrInvalidRatio)
	}
	if _, err := h.exec("action", "dividend", "999999", "5"); !errors.Is(err, accounting.ErrUnknownStock) {
		t.Errorf("dividend on unknown stock error = %v, want %v", err, accounting.ErrUnknownStock)
	}
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trades.csv")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImport(t *testing.T) {
	csv := "Date,Symbol,Qty,Rate,Type\n" +
		"2024-01-05,500325,5,120,SELL\n" +
		"2024-01-02,500325,10,100,BUY\n"
	path := writeCSV(t, csv)

	h := newHarness(t)
	out := h.mustExec(t, "import", path, "--dry-run")
	if !strings.Contains(out, "dry run: 2 trades") {
		t.Errorf("dry run output = %q", out)
	}
	if h.opened != 0 {
		t.Errorf("dry run opened the real store")
	}

	out = h.mustExec(t, "import", path)
	if !strings.Contains(out, "imported 2 trades") {
		t.Errorf("import output = %q", out)
	}
	total, _, err := h.svc.TotalRealizedPnL(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if total.IntPart() != 100 {
		t.Errorf("realized = %s, want 100", total)
	}
}

func TestImportRejectsWholeFile(t *testing.T) {
	path := writeCSV(t, "Date,Symbol,Qty,Rate,Type\n2024-01-02,500325,10,100,BUY\n2024-01-03,500325,x,100,BUY\n")

	h := newHarness(t)
	if _, err := h.exec("import", path); err == nil {
		t.Fatal("import of an invalid file succeeded")
	}
	trades, _ := h.svc.ListTrades(context.Background(), model.TradeFilter{})
	if len(trades) != 0 {
		t.Errorf("trades after rejected import = %d, want 0", len(trades))
	}
}

func TestImportRollsBackOnOversell(t *testing.T) {
	path := writeCSV(t, "Date,Symbol,Qty,Rate,Type\n"+
		"2024-01-02,500325,10,100,BUY\n"+
		"2024-01-03,500325,20,110,SELL\n"+
		"2024-01-04,500325,5,105,BUY\n")

	h := newHarness(t)
	_, err := h.exec("import", path)
	if !errors.Is(err, accounting.ErrInsufficientQuantity) {
		t.Fatalf("import error = %v, want %v", err, accounting.ErrInsufficientQuantity)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error %q should name line 3", err)
	}
	trades, _ := h.svc.ListTrades(context.Background(), model.TradeFilter{})
	if len(trades) != 0 {
		t.Errorf("trades after rolled back import = %d, want 0", len(trades))
	}
}

func TestImportTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.xlsx")
	h := newHarness(t)
	h.mustExec(t, "import", "--template", path)

	out := h.mustExec(t, "import", path, "--dry-run")
	if !strings.Contains(out, "dry run: 3 trades") {
		t.Errorf("template dry run = %q", out)
	}
}

func TestAlertCommands(t *testing.T) {
	h := newHarness(t)
	h.mustExec(t, "trade", "add", "BUY", "500325", "10", "--price", "100", "--date", "2024-01-02")

	out := h.mustExec(t, "alert", "add", "500325", "target_price", "above", "150")
	if !strings.Contains(out, "alert #1 added") {
		t.Errorf("output = %q", out)
	}
	if _, err := h.exec("alert", "add", "500325", "STOP_LOSS", "ABOVE", "150"); err == nil {
		t.Error("stop loss ABOVE accepted")
	}

	h.mustExec(t, "alert", "deactivate", "1")
	out = h.mustExec(t, "alert", "list")
	if !strings.Contains(out, "TARGET_PRICE") || !strings.Contains(out, "false") {
		t.Errorf("alert list = %q", out)
	}

	h.mustExec(t, "alert", "delete", "1")
	out = h.mustExec(t, "alert", "list")
	if !strings.Contains(out, "No alert rules.") {
		t.Errorf("alert list after delete = %q", out)
	}

	if _, err := h.exec("alert", "delete", "abc"); err == nil {
		t.Error("non numeric id accepted")
	}
}

func TestRealizedAndSummary(t *testing.T) {
	h := newHarness(t)
	h.mustExec(t, "trade", "add", "BUY", "500325", "10", "--price", "100", "--date", "2024-01-02")
	h.mustExec(t, "trade", "add", "SELL", "500325", "4", "--price", "150", "--date", "2024-02-02")

	out := h.mustExec(t, "realized")
	if !strings.Contains(out, "200.00") {
		t.Errorf("realized = %q", out)
	}
	out = h.mustExec(t, "realized", "--as-of", "2024-01-31")
	if strings.Contains(out, "200.00") {
		t.Errorf("realized as of January should be zero: %q", out)
	}

	out = h.mustExec(t, "summary", "--offline")
	if !strings.Contains(out, "Portfolio Summary") {
		t.Errorf("summary = %q", out)
	}
}
