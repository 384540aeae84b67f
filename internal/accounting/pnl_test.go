package accounting

import (
	"errors"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
)

func TestSummarize(t *testing.T) {
	events := []Event{
		buy(1, day(1), 20, "1450"),
		buy(2, day(2), 10, "1450"),
		sell(3, day(3), 5, "1600"),
	}

	s, err := Summarize(code, events, dec("1500"))
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"AvgCost", s.AvgCost.String(), "1450"},
		{"Invested", s.Invested.String(), "36250"},
		{"CurrentValue", s.CurrentValue.String(), "37500"},
		{"UnrealizedPnL", s.UnrealizedPnL.String(), "1250"},
		{"UnrealizedPnLPct", s.UnrealizedPnLPct.Round(2).String(), "3.45"},
		{"RealizedPnL", s.RealizedPnL.String(), "750"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, tt.got, tt.want)
		}
	}
	if s.Quantity != 25 {
		t.Errorf("Quantity = %d, want 25", s.Quantity)
	}
}

func TestRealizedAsOf(t *testing.T) {
	events := []Event{
		buy(1, day(1), 10, "100"),
		sell(2, day(2), 2, "110"),
		sell(3, day(5), 3, "90"),
	}

	tests := []struct {
		asOf int
		want string
	}{
		{asOf: 1, want: "0"},
		{asOf: 2, want: "20"},
		{asOf: 4, want: "20"},
		{asOf: 5, want: "-10"},
	}

	for _, tt := range tests {
		got, err := Realized(code, Until(events, day(tt.asOf)))
		if err != nil {
			t.Fatalf("Realized() error = %v", err)
		}
		if !got.Equal(dec(tt.want)) {
			t.Errorf("Realized(as of day %d) = %s, want %s", tt.asOf, got, tt.want)
		}
	}
}

func TestUnrealizedAndPct(t *testing.T) {
	pos := model.Position{Quantity: 40, Invested: dec("30000")}
	if got := Unrealized(pos, dec("700")); !got.Equal(dec("-2000")) {
		t.Errorf("Unrealized() = %s, want -2000", got)
	}
	if got := Pct(dec("-2000"), dec("30000")).Round(2); !got.Equal(dec("-6.67")) {
		t.Errorf("Pct() = %s, want -6.67", got)
	}
	if got := Pct(dec("5"), dec("0")); !got.IsZero() {
		t.Errorf("Pct() with zero whole = %s, want 0", got)
	}
}

func TestValidateTrade(t *testing.T) {
	valid := model.TradeEvent{StockCode: code, Date: day(1), Direction: model.Buy, Quantity: 1, Price: dec("0")}
	if err := ValidateTrade(valid); err != nil {
		t.Fatalf("ValidateTrade(valid) error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*model.TradeEvent)
	}{
		{"zero quantity", func(tr *model.TradeEvent) { tr.Quantity = 0 }},
		{"negative quantity", func(tr *model.TradeEvent) { tr.Quantity = -3 }},
		{"negative price", func(tr *model.TradeEvent) { tr.Price = dec("-1") }},
		{"negative brokerage", func(tr *model.TradeEvent) { tr.Brokerage = dec("-0.5") }},
		{"missing date", func(tr *model.TradeEvent) { tr.Date = time.Time{} }},
		{"bad direction", func(tr *model.TradeEvent) { tr.Direction = "HOLD" }},
		{"empty code", func(tr *model.TradeEvent) { tr.StockCode = " " }},
	}

	for _, tt := range tests {
		tr := valid
		tt.mutate(&tr)
		if err := ValidateTrade(tr); !errors.Is(err, ErrInvalidTrade) {
			t.Errorf("%s: ValidateTrade() error = %v, want %v", tt.name, err, ErrInvalidTrade)
		}
	}
}
