package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the cached weighted-average view of one stock.
type Position struct {
	StockCode      string
	StockName      string
	Quantity       int64
	AvgCost        decimal.Decimal
	Invested       decimal.Decimal
	DividendIncome decimal.Decimal
	LastPrice      decimal.Decimal
	LastPriceAt    time.Time
	UpdatedAt      time.Time
}

type Lot struct {
	StockCode  string
	AcquiredOn time.Time
	Quantity   int64
	UnitCost   decimal.Decimal
}

// Cost is quantity * unit cost.
func (l Lot) Cost() decimal.Decimal {
	return l.UnitCost.Mul(decimal.NewFromInt(l.Quantity))
}

// Sale is a SELL matched against FIFO lots.
type Sale struct {
	TradeID   int64
	Date      time.Time
	Quantity  int64
	Price     decimal.Decimal
	CostBasis decimal.Decimal
	Gain      decimal.Decimal
}
