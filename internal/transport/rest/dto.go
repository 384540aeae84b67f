package rest

import (
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      int    `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

type Performer struct {
	StockCode string          `json:"stock_code"`
	StockName string          `json:"stock_name"`
	PnLPct    decimal.Decimal `json:"pnl_pct"`
}

type SummaryResponse struct {
	TotalStocks    int             `json:"total_stocks"`
	TotalInvested  decimal.Decimal `json:"total_invested"`
	CurrentValue   decimal.Decimal `json:"current_value"`
	TotalPnL       decimal.Decimal `json:"total_pnl"`
	TotalPnLPct    decimal.Decimal `json:"total_pnl_pct"`
	RealizedPnL    decimal.Decimal `json:"realized_pnl"`
	DividendIncome decimal.Decimal `json:"dividend_income"`
	BrokeragePaid  decimal.Decimal `json:"brokerage_paid"`
	Gainers        int             `json:"gainers"`
	Losers         int             `json:"losers"`
	Neutral        int             `json:"neutral"`
	Best           *Performer      `json:"best,omitempty"`
	Worst          *Performer      `json:"worst,omitempty"`
	StalePrices    int             `json:"stale_prices"`
	Currency       string          `json:"currency"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

type HoldingResponse struct {
	StockCode      string          `json:"stock_code"`
	StockName      string          `json:"stock_name"`
	Quantity       int64           `json:"quantity"`
	AvgCost        decimal.Decimal `json:"avg_cost"`
	Invested       decimal.Decimal `json:"invested"`
	CurrentPrice   decimal.Decimal `json:"current_price"`
	PriceAsOf      *time.Time      `json:"price_as_of,omitempty"`
	Stale          bool            `json:"stale"`
	CurrentValue   decimal.Decimal `json:"current_value"`
	PnL            decimal.Decimal `json:"pnl"`
	PnLPct         decimal.Decimal `json:"pnl_pct"`
	Weight         decimal.Decimal `json:"weight"`
	DividendIncome decimal.Decimal `json:"dividend_income"`
}

type TradeResponse struct {
	ID        int64           `json:"id"`
	StockCode string          `json:"stock_code"`
	Date      string          `json:"date"`
	Direction string          `json:"direction"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Brokerage decimal.Decimal `json:"brokerage"`
	Notes     string          `json:"notes,omitempty"`
}

type LotResponse struct {
	AcquiredOn string          `json:"acquired_on"`
	Quantity   int64           `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
}

type SaleResponse struct {
	TradeID   int64           `json:"trade_id"`
	Date      string          `json:"date"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CostBasis decimal.Decimal `json:"cost_basis"`
	Gain      decimal.Decimal `json:"gain"`
}

type StockResponse struct {
	StockCode        string          `json:"stock_code"`
	StockName        string          `json:"stock_name"`
	Quantity         int64           `json:"quantity"`
	AvgCost          decimal.Decimal `json:"avg_cost"`
	Invested         decimal.Decimal `json:"invested"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	Stale            bool            `json:"stale"`
	CurrentValue     decimal.Decimal `json:"current_value"`
	UnrealizedPnL    decimal.Decimal `json:"unrealized_pnl"`
	UnrealizedPnLPct decimal.Decimal `json:"unrealized_pnl_pct"`
	RealizedPnL      decimal.Decimal `json:"realized_pnl"`
	DividendIncome   decimal.Decimal `json:"dividend_income"`
	OpenLots         []LotResponse   `json:"open_lots"`
	Sales            []SaleResponse  `json:"sales"`
}

const dateLayout = "2006-01-02"

func toSummary(s model.PortfolioSummary, currency string) SummaryResponse {
	return SummaryResponse{
		TotalStocks:    s.TotalStocks,
		TotalInvested:  s.TotalInvested,
		CurrentValue:   s.CurrentValue,
		TotalPnL:       s.TotalPnL,
		TotalPnLPct:    s.TotalPnLPct,
		RealizedPnL:    s.RealizedPnL,
		DividendIncome: s.DividendIncome,
		BrokeragePaid:  s.BrokeragePaid,
		Gainers:        s.Gainers,
		Losers:         s.Losers,
		Neutral:        s.Neutral,
		Best:           toPerformer(s.Best),
		Worst:          toPerformer(s.Worst),
		StalePrices:    s.StalePrices,
		Currency:       currency,
		GeneratedAt:    s.GeneratedAt,
	}
}

func toPerformer(p *model.Performer) *Performer {
	if p == nil {
		return nil
	}
	return &Performer{StockCode: p.StockCode, StockName: p.StockName, PnLPct: p.PnLPct}
}

func toHolding(h model.Holding) HoldingResponse {
	res := HoldingResponse{
		StockCode:      h.StockCode,
		StockName:      h.StockName,
		Quantity:       h.Quantity,
		AvgCost:        h.AvgCost,
		Invested:       h.Invested,
		CurrentPrice:   h.CurrentPrice,
		Stale:          h.Stale,
		CurrentValue:   h.CurrentValue,
		PnL:            h.PnL,
		PnLPct:         h.PnLPct,
		Weight:         h.Weight,
		DividendIncome: h.DividendIncome,
	}
	if !h.PriceAsOf.IsZero() {
		asOf := h.PriceAsOf
		res.PriceAsOf = &asOf
	}
	return res
}

func toTrade(t model.TradeEvent) TradeResponse {
	return TradeResponse{
		ID:        t.ID,
		StockCode: t.StockCode,
		Date:      t.Date.Format(dateLayout),
		Direction: string(t.Direction),
		Quantity:  t.Quantity,
		Price:     t.Price,
		Brokerage: t.Brokerage,
		Notes:     t.Notes,
	}
}

func toStock(s model.StockSummary, h model.Holding) StockResponse {
	res := StockResponse{
		StockCode:        s.StockCode,
		StockName:        s.StockName,
		Quantity:         s.Quantity,
		AvgCost:          s.AvgCost,
		Invested:         s.Invested,
		CurrentPrice:     s.CurrentPrice,
		Stale:            h.Stale,
		CurrentValue:     s.CurrentValue,
		UnrealizedPnL:    s.UnrealizedPnL,
		UnrealizedPnLPct: s.UnrealizedPnLPct,
		RealizedPnL:      s.RealizedPnL,
		DividendIncome:   s.DividendIncome,
		OpenLots:         make([]LotResponse, 0, len(s.OpenLots)),
		Sales:            make([]SaleResponse, 0, len(s.Sales)),
	}
	for _, l := range s.OpenLots {
		res.OpenLots = append(res.OpenLots, LotResponse{AcquiredOn: l.AcquiredOn.Format(dateLayout), Quantity: l.Quantity, UnitCost: l.UnitCost})
	}
	for _, sale := range s.Sales {
		res.Sales = append(res.Sales, SaleResponse{
			TradeID:   sale.TradeID,
			Date:      sale.Date.Format(dateLayout),
			Quantity:  sale.Quantity,
			Price:     sale.Price,
			CostBasis: sale.CostBasis,
			Gain:      sale.Gain,
		})
	}
	return res
}
