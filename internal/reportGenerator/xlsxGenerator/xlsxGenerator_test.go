package xlsxGenerator

import (
	"bytes"
	"context"
	"slices"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestGenerate(t *testing.T) {
	on := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	report := model.Report{
		Summary: model.PortfolioSummary{
			TotalStocks:   1,
			TotalInvested: decimal.NewFromInt(750),
			CurrentValue:  decimal.NewFromInt(2000),
			Best:          &model.Performer{StockCode: "500325", PnLPct: decimal.RequireFromString("166.666")},
		},
		Holdings: []model.Holding{{
			Position:     model.Position{StockCode: "500325", StockName: "RELIANCE", Quantity: 50, Invested: decimal.NewFromInt(750)},
			CurrentPrice: decimal.NewFromInt(40),
			CurrentValue: decimal.NewFromInt(2000),
		}},
		Trades: []model.TradeEvent{
			{ID: 1, StockCode: "500325", Date: on, Direction: model.Buy, Quantity: 100, Price: decimal.NewFromInt(10)},
			{ID: 2, StockCode: "500325", Date: on, Direction: model.Sell, Quantity: 50, Price: decimal.NewFromInt(30)},
		},
		Actions: []model.CorporateAction{
			{ID: 3, StockCode: "500325", Kind: model.Split, Date: on, Ratio: model.Ratio{Numerator: 2, Denominator: 1}},
		},
		Currency:    "INR",
		GeneratedAt: on,
	}

	fileBytes, ext, err := New().Generate(context.Background(), report)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if ext != ".xlsx" {
		t.Errorf("ext = %q, want .xlsx", ext)
	}

	f, err := excelize.OpenReader(bytes.NewReader(fileBytes))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	wantSheets := []string{SummarySheet, HoldingsSheet, TradesSheet, ActionsSheet}
	if got := f.GetSheetList(); !slices.Equal(got, wantSheets) {
		t.Errorf("sheets = %v, want %v", got, wantSheets)
	}

	trades, err := f.GetRows(TradesSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(trades) != 3 {
		t.Fatalf("trade rows = %d, want 3", len(trades))
	}
	if trades[2][4] != "SELL" || trades[2][7] != "1500" {
		t.Errorf("second trade row = %v", trades[2])
	}

	actions, err := f.GetRows(ActionsSheet)
	if err != nil {
		t.Fatal(err)
	}
	if actions[1][5] != "2/1" {
		t.Errorf("split ratio cell = %q, want 2/1", actions[1][5])
	}

	best, err := f.GetCellValue(SummarySheet, "B15")
	if err != nil {
		t.Fatal(err)
	}
	if best != "500325 (166.67%)" {
		t.Errorf("best performer = %q", best)
	}
}
