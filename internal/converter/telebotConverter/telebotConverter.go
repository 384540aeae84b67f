package telebotConverter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/tg"
	"github.com/KotFed0t/portfolio_tracker/internal/render"
	tele "gopkg.in/telebot.v4"
)

const dateLayout = "2006-01-02"

func SummaryResponse(s model.PortfolioSummary, currency string) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	sb.WriteString("📊 Portfolio summary\n\n")
	sb.WriteString(fmt.Sprintf("💼 Stocks: %d\n", s.TotalStocks))
	sb.WriteString(fmt.Sprintf("💰 Invested: %s\n", render.Money(s.TotalInvested, currency)))
	sb.WriteString(fmt.Sprintf("📈 Value: %s\n", render.Money(s.CurrentValue, currency)))
	sb.WriteString(fmt.Sprintf("%s Unrealized: %s (%s)\n", trend(s.TotalPnL.Sign()), render.Signed(s.TotalPnL, currency), render.Pct(s.TotalPnLPct)))
	sb.WriteString(fmt.Sprintf("✅ Realized: %s\n", render.Signed(s.RealizedPnL, currency)))
	sb.WriteString(fmt.Sprintf("🎁 Dividends: %s\n", render.Money(s.DividendIncome, currency)))
	sb.WriteString(fmt.Sprintf("🧾 Brokerage: %s\n\n", render.Money(s.BrokeragePaid, currency)))
	sb.WriteString(fmt.Sprintf("▲ %d  ▼ %d  ▬ %d\n", s.Gainers, s.Losers, s.Neutral))

	if s.Best != nil {
		sb.WriteString(fmt.Sprintf("🏆 Best: %s %s\n", s.Best.StockCode, render.Pct(s.Best.PnLPct)))
	}
	if s.Worst != nil {
		sb.WriteString(fmt.Sprintf("🥀 Worst: %s %s\n", s.Worst.StockCode, render.Pct(s.Worst.PnLPct)))
	}
	if s.StalePrices > 0 {
		sb.WriteString(fmt.Sprintf("\n⚠️ %d price(s) are not live\n", s.StalePrices))
	}

	markup.Inline(
		markup.Row(
			markup.Data("🔄 Refresh", tg.RefreshSummary),
			markup.Data("📋 Holdings", tg.HoldingsPage, "0"),
		),
	)

	return sb.String(), markup
}

// HoldingsResponse renders one page of holdings with a button per stock.
func HoldingsResponse(holdings []model.Holding, page, perPage int, currency string) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	if len(holdings) == 0 {
		return "📋 No open positions", markup
	}

	start, end, page := PageBounds(len(holdings), page, perPage)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 Holdings (page %d of %d)\n\n", page+1, PageCount(len(holdings), perPage)))

	stockBtns := make([]tele.Btn, 0, end-start)
	for i, h := range holdings[start:end] {
		emoji := fmt.Sprintf("%d️⃣", start+i+1)
		if start+i+1 > 9 {
			emoji = fmt.Sprintf("%d.", start+i+1)
		}

		stockBtns = append(stockBtns, markup.Data(h.StockCode, tg.StockDetails, h.StockCode))

		sb.WriteString(fmt.Sprintf("%s %s (%s)\n", emoji, h.StockCode, h.StockName))
		sb.WriteString(fmt.Sprintf("   ▸ Qty: %d @ %s\n", h.Quantity, render.Price(h.AvgCost)))
		price := render.Price(h.CurrentPrice)
		if h.Stale {
			price += " ⚠️"
		}
		sb.WriteString(fmt.Sprintf("   ▸ Price: %s\n", price))
		sb.WriteString(fmt.Sprintf("   ▸ Value: %s\n", render.Money(h.CurrentValue, currency)))
		sb.WriteString(fmt.Sprintf("   ▸ %s P&L: %s (%s)\n", trend(h.PnL.Sign()), render.Signed(h.PnL, currency), render.Pct(h.PnLPct)))
		sb.WriteString(fmt.Sprintf("   ▸ Weight: %s%%\n\n", h.Weight.StringFixed(1)))
	}

	paginationBtns := make([]tele.Btn, 0, 2)
	if page > 0 {
		paginationBtns = append(paginationBtns, markup.Data("◀️ previous", tg.HoldingsPage, strconv.Itoa(page-1)))
	}
	if end < len(holdings) {
		paginationBtns = append(paginationBtns, markup.Data("next ▶️", tg.HoldingsPage, strconv.Itoa(page+1)))
	}

	markup.Inline(
		markup.Row(stockBtns...),
		markup.Row(paginationBtns...),
	)

	return sb.String(), markup
}

func StockResponse(s model.StockSummary, h model.Holding, currency string) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	if s.StockName != "" {
		sb.WriteString(fmt.Sprintf("🏢 %s (%s)\n\n", s.StockName, s.StockCode))
	} else {
		sb.WriteString(fmt.Sprintf("🏢 %s\n\n", s.StockCode))
	}
	sb.WriteString(fmt.Sprintf("Qty: %d\n", s.Quantity))
	sb.WriteString(fmt.Sprintf("Avg cost: %s\n", render.Price(s.AvgCost)))
	sb.WriteString(fmt.Sprintf("Invested: %s\n", render.Money(s.Invested, currency)))
	price := render.Price(s.CurrentPrice)
	if h.Stale {
		price += " ⚠️ not live"
	}
	sb.WriteString(fmt.Sprintf("Price: %s\n", price))
	sb.WriteString(fmt.Sprintf("Value: %s\n", render.Money(s.CurrentValue, currency)))
	sb.WriteString(fmt.Sprintf("%s Unrealized: %s (%s)\n", trend(s.UnrealizedPnL.Sign()), render.Signed(s.UnrealizedPnL, currency), render.Pct(s.UnrealizedPnLPct)))
	sb.WriteString(fmt.Sprintf("✅ Realized: %s\n", render.Signed(s.RealizedPnL, currency)))
	sb.WriteString(fmt.Sprintf("🎁 Dividends: %s\n", render.Money(s.DividendIncome, currency)))

	if len(s.OpenLots) > 0 {
		sb.WriteString("\nOpen lots:\n")
		for _, l := range s.OpenLots {
			sb.WriteString(fmt.Sprintf("   ▸ %s: %d @ %s\n", l.AcquiredOn.Format(dateLayout), l.Quantity, l.UnitCost.StringFixed(2)))
		}
	}

	markup.Inline(markup.Row(markup.Data("🧾 Trades", tg.StockTrades, s.StockCode)))

	return sb.String(), markup
}

func TradesResponse(trades []model.TradeEvent, currency string) string {
	if len(trades) == 0 {
		return "🧾 No trades"
	}

	var sb strings.Builder
	sb.WriteString("🧾 Trades\n\n")
	for _, t := range trades {
		side := "🟢"
		if t.Direction == model.Sell {
			side = "🔴"
		}
		sb.WriteString(fmt.Sprintf("%s %s %s %d @ %s = %s\n",
			side, t.Date.Format(dateLayout), t.StockCode, t.Quantity, render.Price(t.Price), render.Money(t.Value(), currency)))
	}
	return sb.String()
}

func AlertRulesResponse(rules []model.AlertRule) string {
	if len(rules) == 0 {
		return "🔔 No alert rules"
	}

	var sb strings.Builder
	sb.WriteString("🔔 Alert rules\n\n")
	for _, r := range rules {
		state := "on"
		if !r.Active {
			state = "off"
		}
		sb.WriteString(fmt.Sprintf("#%d %s %s %s %s (%s)\n", r.ID, r.StockCode, r.Type, r.Condition, r.Threshold, state))
	}
	return sb.String()
}

func AlertResponse(event model.AlertEvent) string {
	return fmt.Sprintf("🚨 %s\n%s %s %s, price %s", event.Message, event.StockCode, event.Type, event.Condition, render.Price(event.Price))
}

// PageBounds clamps page into range and returns the slice bounds for it.
func PageBounds(total, page, perPage int) (start, end, clamped int) {
	if perPage <= 0 {
		perPage = total
	}
	pages := PageCount(total, perPage)
	if page >= pages {
		page = pages - 1
	}
	if page < 0 {
		page = 0
	}
	start = page * perPage
	end = min(start+perPage, total)
	return start, end, page
}

func PageCount(total, perPage int) int {
	if perPage <= 0 || total == 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

func trend(sign int) string {
	switch {
	case sign > 0:
		return "🟢"
	case sign < 0:
		return "🔴"
	default:
		return "⚪"
	}
}
