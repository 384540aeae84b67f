package render

import (
	"strings"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestMoney(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"1234.5", "1,234.50"},
		{"0.005", "0.01"},
		{"1000000", "1,000,000.00"},
	}
	for _, tt := range tests {
		got := Money(dec(tt.amount), "INR")
		if !strings.Contains(got, tt.want) {
			t.Errorf("Money(%s) = %q, want it to contain %q", tt.amount, got, tt.want)
		}
	}

	if got := Money(dec("-5"), "USD"); !strings.Contains(got, "-") || !strings.Contains(got, "5.00") {
		t.Errorf("Money(-5 USD) = %q", got)
	}
}

func TestMoneyUnknownCurrencyFallsBack(t *testing.T) {
	want := Money(dec("1234.5"), DefaultCurrency)
	for _, code := range []string{"XYZ", "", "inr", " INR "} {
		if got := Money(dec("1234.5"), code); got != want {
			t.Errorf("Money(1234.5, %q) = %q, want %q", code, got, want)
		}
	}
}

func TestSignedAndPct(t *testing.T) {
	if got := Signed(dec("10"), "INR"); !strings.HasPrefix(got, "+") {
		t.Errorf("Signed(10) = %q, want + prefix", got)
	}
	if got := Signed(decimal.Zero, "INR"); strings.HasPrefix(got, "+") {
		t.Errorf("Signed(0) = %q, want no sign", got)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"12.345", "+12.35%"},
		{"-3.1", "-3.10%"},
		{"0", "0.00%"},
	}
	for _, tt := range tests {
		if got := Pct(dec(tt.in)); got != tt.want {
			t.Errorf("Pct(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHoldingsMarkdown(t *testing.T) {
	holdings := []model.Holding{
		{
			Position:     model.Position{StockCode: "500325", StockName: "Reliance", Quantity: 50, AvgCost: dec("15"), Invested: dec("750")},
			CurrentPrice: dec("40"),
			CurrentValue: dec("2000"),
			PnL:          dec("1250"),
			PnLPct:       dec("166.67"),
			Weight:       dec("100"),
			Stale:        true,
		},
	}

	out := HoldingsMarkdown(holdings, "INR")
	for _, want := range []string{"# Holdings", "500325", "Reliance", "40.00*", "+166.67%", "100.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("HoldingsMarkdown() missing %q in\n%s", want, out)
		}
	}

	if out := HoldingsMarkdown(nil, "INR"); !strings.Contains(out, "No open positions.") {
		t.Errorf("empty HoldingsMarkdown() = %q", out)
	}
}

func TestSummaryMarkdown(t *testing.T) {
	s := model.PortfolioSummary{
		TotalStocks:   2,
		TotalInvested: dec("1750"),
		CurrentValue:  dec("2900"),
		TotalPnL:      dec("1150"),
		TotalPnLPct:   dec("65.71"),
		Best:          &model.Performer{StockCode: "500325", PnLPct: dec("166.67")},
		StalePrices:   1,
		GeneratedAt:   time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC),
	}

	out := SummaryMarkdown(s, "INR")
	for _, want := range []string{"Portfolio Summary on 2024-05-01", "1,750.00", "2,900.00", "+65.71%", "## Performers", "Best", "1 holding(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("SummaryMarkdown() missing %q in\n%s", want, out)
		}
	}
	if strings.Contains(out, "Worst") {
		t.Errorf("SummaryMarkdown() renders a worst performer that is not set")
	}
}

func TestRealizedMarkdownSortsCodes(t *testing.T) {
	out := RealizedMarkdown(dec("30"), map[string]decimal.Decimal{"B": dec("20"), "A": dec("10")}, "INR")
	a, b, total := strings.Index(out, "10.00"), strings.Index(out, "20.00"), strings.Index(out, "30.00")
	if a < 0 || b < 0 || total < 0 || !(a < b && b < total) {
		t.Errorf("RealizedMarkdown() order wrong:\n%s", out)
	}
}

func TestTerminal(t *testing.T) {
	out, err := Terminal(TradesMarkdown(nil, "INR"), "notty")
	if err != nil {
		t.Fatalf("Terminal() error = %v", err)
	}
	if !strings.Contains(out, "Trades") || !strings.Contains(out, "No trades.") {
		t.Errorf("Terminal() = %q", out)
	}
}
