package render

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

func SummaryMarkdown(s model.PortfolioSummary, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Portfolio Summary on %s", s.GeneratedAt.Format(dateLayout)))
	doc.Table(md.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Stocks held", strconv.Itoa(s.TotalStocks)},
			{"Invested", Money(s.TotalInvested, currency)},
			{"Current value", Money(s.CurrentValue, currency)},
			{"Unrealized P&L", fmt.Sprintf("%s (%s)", Signed(s.TotalPnL, currency), Pct(s.TotalPnLPct))},
			{"Realized P&L", Signed(s.RealizedPnL, currency)},
			{"Dividend income", Money(s.DividendIncome, currency)},
			{"Brokerage paid", Money(s.BrokeragePaid, currency)},
			{"Gainers / losers / flat", fmt.Sprintf("%d / %d / %d", s.Gainers, s.Losers, s.Neutral)},
		},
	})

	if s.Best != nil || s.Worst != nil {
		doc.H2("Performers")
		rows := make([][]string, 0, 2)
		if s.Best != nil {
			rows = append(rows, []string{"Best", performer(s.Best), Pct(s.Best.PnLPct)})
		}
		if s.Worst != nil {
			rows = append(rows, []string{"Worst", performer(s.Worst), Pct(s.Worst.PnLPct)})
		}
		doc.Table(md.TableSet{Header: []string{"", "Stock", "P&L %"}, Rows: rows})
	}

	if s.StalePrices > 0 {
		doc.PlainText(fmt.Sprintf("%d holding(s) valued with a stored or cost price.", s.StalePrices))
	}

	return doc.String()
}

func HoldingsMarkdown(holdings []model.Holding, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Holdings")
	if len(holdings) == 0 {
		doc.PlainText("No open positions.")
		return doc.String()
	}

	rows := make([][]string, 0, len(holdings))
	for _, h := range holdings {
		price := Price(h.CurrentPrice)
		if h.Stale {
			price += "*"
		}
		rows = append(rows, []string{
			h.StockCode,
			h.StockName,
			strconv.FormatInt(h.Quantity, 10),
			Price(h.AvgCost),
			price,
			Money(h.Invested, currency),
			Money(h.CurrentValue, currency),
			Signed(h.PnL, currency),
			Pct(h.PnLPct),
			h.Weight.StringFixed(2) + "%",
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Code", "Name", "Qty", "Avg cost", "Price", "Invested", "Value", "P&L", "P&L %", "Weight"},
		Rows:   rows,
	})

	return doc.String()
}

func TradesMarkdown(trades []model.TradeEvent, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Trades")
	if len(trades) == 0 {
		doc.PlainText("No trades.")
		return doc.String()
	}

	rows := make([][]string, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.Date.Format(dateLayout),
			t.StockCode,
			string(t.Direction),
			strconv.FormatInt(t.Quantity, 10),
			Price(t.Price),
			Money(t.Value(), currency),
			Money(t.Brokerage, currency),
			t.Notes,
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"ID", "Date", "Code", "Side", "Qty", "Price", "Value", "Brokerage", "Notes"},
		Rows:   rows,
	})

	return doc.String()
}

func ActionsMarkdown(actions []model.CorporateAction, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Corporate actions")
	if len(actions) == 0 {
		doc.PlainText("No corporate actions.")
		return doc.String()
	}

	rows := make([][]string, 0, len(actions))
	for _, a := range actions {
		detail := a.Ratio.String()
		if a.Kind == model.Dividend {
			detail = Money(a.AmountPerShare, currency) + " per share"
		}
		rows = append(rows, []string{
			strconv.FormatInt(a.ID, 10),
			a.Date.Format(dateLayout),
			a.StockCode,
			string(a.Kind),
			detail,
			a.Notes,
		})
	}
	doc.Table(md.TableSet{Header: []string{"ID", "Date", "Code", "Kind", "Detail", "Notes"}, Rows: rows})

	return doc.String()
}

// StockMarkdown renders the per-stock view with its FIFO breakdown.
func StockMarkdown(s model.StockSummary, h model.Holding, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	title := s.StockCode
	if s.StockName != "" {
		title = fmt.Sprintf("%s (%s)", s.StockName, s.StockCode)
	}
	doc.H1(title)

	price := Price(s.CurrentPrice)
	if h.Stale {
		price += " (stale)"
	}
	doc.Table(md.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Quantity", strconv.FormatInt(s.Quantity, 10)},
			{"Average cost", Price(s.AvgCost)},
			{"Invested", Money(s.Invested, currency)},
			{"Price", price},
			{"Current value", Money(s.CurrentValue, currency)},
			{"Unrealized P&L", fmt.Sprintf("%s (%s)", Signed(s.UnrealizedPnL, currency), Pct(s.UnrealizedPnLPct))},
			{"Realized P&L", Signed(s.RealizedPnL, currency)},
			{"Dividend income", Money(s.DividendIncome, currency)},
		},
	})

	if len(s.OpenLots) > 0 {
		doc.H2("Open lots")
		rows := make([][]string, 0, len(s.OpenLots))
		for _, l := range s.OpenLots {
			rows = append(rows, []string{
				l.AcquiredOn.Format(dateLayout),
				strconv.FormatInt(l.Quantity, 10),
				l.UnitCost.StringFixed(4),
				Money(l.Cost(), currency),
			})
		}
		doc.Table(md.TableSet{Header: []string{"Acquired", "Qty", "Unit cost", "Cost"}, Rows: rows})
	}

	if len(s.Sales) > 0 {
		doc.H2("Sales")
		rows := make([][]string, 0, len(s.Sales))
		for _, sale := range s.Sales {
			rows = append(rows, []string{
				sale.Date.Format(dateLayout),
				strconv.FormatInt(sale.Quantity, 10),
				Price(sale.Price),
				Money(sale.CostBasis, currency),
				Signed(sale.Gain, currency),
			})
		}
		doc.Table(md.TableSet{Header: []string{"Date", "Qty", "Price", "Cost basis", "Gain"}, Rows: rows})
	}

	return doc.String()
}

func RealizedMarkdown(total decimal.Decimal, perStock map[string]decimal.Decimal, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Realized P&L")
	rows := make([][]string, 0, len(perStock)+1)
	for _, code := range sortedKeys(perStock) {
		rows = append(rows, []string{code, Signed(perStock[code], currency)})
	}
	rows = append(rows, []string{"Total", Signed(total, currency)})
	doc.Table(md.TableSet{Header: []string{"Code", "Realized"}, Rows: rows})

	return doc.String()
}

func AlertRulesMarkdown(rules []model.AlertRule) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Alert rules")
	if len(rules) == 0 {
		doc.PlainText("No alert rules.")
		return doc.String()
	}

	rows := make([][]string, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.StockCode,
			string(r.Type),
			string(r.Condition),
			r.Threshold.String(),
			strconv.FormatBool(r.Active),
			optionalTime(r.LastTriggered),
			r.Notes,
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"ID", "Code", "Type", "Condition", "Threshold", "Active", "Last triggered", "Notes"},
		Rows:   rows,
	})

	return doc.String()
}

func AlertHistoryMarkdown(events []model.AlertEvent) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Alert history")
	if len(events) == 0 {
		doc.PlainText("No alerts triggered.")
		return doc.String()
	}

	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{e.TriggeredAt.Format(time.DateTime), e.StockCode, string(e.Type), e.Message})
	}
	doc.Table(md.TableSet{Header: []string{"Triggered", "Code", "Type", "Message"}, Rows: rows})

	return doc.String()
}

func PriceHistoryMarkdown(code string, bars []model.PriceBar) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Price history %s", code))
	if len(bars) == 0 {
		doc.PlainText("No prices recorded.")
		return doc.String()
	}

	rows := make([][]string, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, []string{
			b.Date.Format(dateLayout),
			Price(b.Open),
			Price(b.High),
			Price(b.Low),
			Price(b.Close),
			strconv.FormatInt(b.Volume, 10),
		})
	}
	doc.Table(md.TableSet{Header: []string{"Date", "Open", "High", "Low", "Close", "Volume"}, Rows: rows})

	return doc.String()
}

func performer(p *model.Performer) string {
	if p.StockName == "" {
		return p.StockCode
	}
	return fmt.Sprintf("%s (%s)", p.StockName, p.StockCode)
}

func optionalTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateTime)
}
