package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
)

func (d Direction) Valid() bool {
	return d == Buy || d == Sell
}

// TradeEvent is an immutable ledger row. ID comes from the sequence shared with corporate actions,
// so it is also the insertion order used to break same-day ties.
type TradeEvent struct {
	ID        int64
	StockCode string
	StockName string
	Date      time.Time
	Direction Direction
	Quantity  int64
	Price     decimal.Decimal
	Brokerage decimal.Decimal
	Notes     string
	CreatedAt time.Time
}

// Value is quantity * price.
func (t TradeEvent) Value() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Quantity))
}

type TradeFilter struct {
	StockCode string
	From      *time.Time
	To        *time.Time
	Limit     int
	// Newest reverses the order so the latest trades come first.
	Newest bool
}
