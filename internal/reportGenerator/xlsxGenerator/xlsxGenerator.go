package xlsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet  = "Summary"
	HoldingsSheet = "Holdings"
	TradesSheet   = "Trades"
	ActionsSheet  = "Corporate actions"

	dateLayout = "2006-01-02"
)

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

func (g *XLSXGenerator) Generate(ctx context.Context, report model.Report) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#cfe2f3"}},
	})
	if err != nil {
		return nil, "", err
	}

	fills := []func(*excelize.File, int, model.Report) error{
		g.fillSummary,
		g.fillHoldings,
		g.fillTrades,
		g.fillActions,
	}
	for _, fill := range fills {
		if err := fill(f, headerStyle, report); err != nil {
			slog.Error("got error while filling sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return nil, "", err
		}
	}

	// the default sheet is replaced by Summary
	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

// newSheet creates the sheet and writes a styled header row.
func newSheet(f *excelize.File, name string, style int, header []string) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("sheet %s: %w", name, err)
	}

	for i, title := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		_ = f.SetCellStr(name, cell, title)
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", last, style); err != nil {
		return fmt.Errorf("header style %s: %w", name, err)
	}

	return f.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func (g *XLSXGenerator) fillSummary(f *excelize.File, style int, report model.Report) error {
	if err := newSheet(f, SummarySheet, style, []string{"metric", "value"}); err != nil {
		return err
	}

	s := report.Summary
	rows := [][]any{
		{"generated at", report.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"currency", report.Currency},
		{"stocks", s.TotalStocks},
		{"total invested", s.TotalInvested.InexactFloat64()},
		{"current value", s.CurrentValue.InexactFloat64()},
		{"unrealized P&L", s.TotalPnL.InexactFloat64()},
		{"unrealized P&L %", s.TotalPnLPct.Round(2).InexactFloat64()},
		{"realized P&L", s.RealizedPnL.InexactFloat64()},
		{"dividend income", s.DividendIncome.InexactFloat64()},
		{"brokerage paid", s.BrokeragePaid.InexactFloat64()},
		{"gainers", s.Gainers},
		{"losers", s.Losers},
		{"stale prices", s.StalePrices},
	}
	if s.Best != nil {
		rows = append(rows, []any{"best performer", fmt.Sprintf("%s (%s%%)", s.Best.StockCode, s.Best.PnLPct.StringFixed(2))})
	}
	if s.Worst != nil {
		rows = append(rows, []any{"worst performer", fmt.Sprintf("%s (%s%%)", s.Worst.StockCode, s.Worst.PnLPct.StringFixed(2))})
	}

	for i, row := range rows {
		if err := setRow(f, SummarySheet, i+2, row...); err != nil {
			return err
		}
	}

	return f.SetColWidth(SummarySheet, "A", "B", 22)
}

func (g *XLSXGenerator) fillHoldings(f *excelize.File, style int, report model.Report) error {
	header := []string{"code", "name", "quantity", "avg cost", "invested", "price", "value", "P&L", "P&L %", "weight %", "dividends", "stale"}
	if err := newSheet(f, HoldingsSheet, style, header); err != nil {
		return err
	}

	for i, h := range report.Holdings {
		err := setRow(f, HoldingsSheet, i+2,
			h.StockCode,
			h.StockName,
			h.Quantity,
			h.AvgCost.Round(2).InexactFloat64(),
			h.Invested.InexactFloat64(),
			h.CurrentPrice.InexactFloat64(),
			h.CurrentValue.InexactFloat64(),
			h.PnL.Round(2).InexactFloat64(),
			h.PnLPct.Round(2).InexactFloat64(),
			h.Weight.Round(2).InexactFloat64(),
			h.DividendIncome.InexactFloat64(),
			h.Stale,
		)
		if err != nil {
			return err
		}
	}

	return f.SetColWidth(HoldingsSheet, "B", "B", 30)
}

func (g *XLSXGenerator) fillTrades(f *excelize.File, style int, report model.Report) error {
	header := []string{"id", "date", "code", "name", "type", "quantity", "price", "value", "brokerage", "notes"}
	if err := newSheet(f, TradesSheet, style, header); err != nil {
		return err
	}

	for i, t := range report.Trades {
		err := setRow(f, TradesSheet, i+2,
			t.ID,
			t.Date.Format(dateLayout),
			t.StockCode,
			t.StockName,
			string(t.Direction),
			t.Quantity,
			t.Price.InexactFloat64(),
			t.Value().InexactFloat64(),
			t.Brokerage.InexactFloat64(),
			t.Notes,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (g *XLSXGenerator) fillActions(f *excelize.File, style int, report model.Report) error {
	header := []string{"id", "date", "code", "kind", "amount per share", "ratio", "notes"}
	if err := newSheet(f, ActionsSheet, style, header); err != nil {
		return err
	}

	for i, a := range report.Actions {
		ratio := ""
		if a.Kind != model.Dividend {
			ratio = a.Ratio.String()
		}
		err := setRow(f, ActionsSheet, i+2,
			a.ID,
			a.Date.Format(dateLayout),
			a.StockCode,
			string(a.Kind),
			a.AmountPerShare.InexactFloat64(),
			ratio,
			a.Notes,
		)
		if err != nil {
			return err
		}
	}

	return nil
}
