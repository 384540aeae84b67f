package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type StockSummary struct {
	StockCode        string
	StockName        string
	Quantity         int64
	AvgCost          decimal.Decimal
	Invested         decimal.Decimal
	CurrentPrice     decimal.Decimal
	CurrentValue     decimal.Decimal
	UnrealizedPnL    decimal.Decimal
	UnrealizedPnLPct decimal.Decimal
	RealizedPnL      decimal.Decimal
	DividendIncome   decimal.Decimal
	Sales            []Sale
	OpenLots         []Lot
}

type Holding struct {
	Position
	CurrentPrice decimal.Decimal
	PriceAsOf    time.Time
	// Stale is set when the live quote failed and the stored price was used.
	Stale        bool
	CurrentValue decimal.Decimal
	PnL          decimal.Decimal
	PnLPct       decimal.Decimal
	Weight       decimal.Decimal
}

type Performer struct {
	StockCode string
	StockName string
	PnLPct    decimal.Decimal
}

type PortfolioSummary struct {
	TotalStocks    int
	TotalInvested  decimal.Decimal
	CurrentValue   decimal.Decimal
	TotalPnL       decimal.Decimal
	TotalPnLPct    decimal.Decimal
	RealizedPnL    decimal.Decimal
	DividendIncome decimal.Decimal
	BrokeragePaid  decimal.Decimal
	Gainers        int
	Losers         int
	Neutral        int
	Best           *Performer
	Worst          *Performer
	StalePrices    int
	GeneratedAt    time.Time
}

// Report is everything an exported workbook contains.
type Report struct {
	Summary     PortfolioSummary
	Holdings    []Holding
	Trades      []TradeEvent
	Actions     []CorporateAction
	Currency    string
	GeneratedAt time.Time
}
