package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ActionKind string

const (
	Dividend ActionKind = "DIVIDEND"
	Bonus    ActionKind = "BONUS"
	Split    ActionKind = "SPLIT"
)

func (k ActionKind) Valid() bool {
	return k == Dividend || k == Bonus || k == Split
}

// Ratio scales a holding by Numerator/Denominator.
type Ratio struct {
	Numerator   int64
	Denominator int64
}

func (r Ratio) String() string {
	return fmt.Sprintf("%d/%d", r.Numerator, r.Denominator)
}

type CorporateAction struct {
	ID             int64
	StockCode      string
	Kind           ActionKind
	Date           time.Time
	AmountPerShare decimal.Decimal
	Ratio          Ratio
	Notes          string
	CreatedAt      time.Time
}

type ActionFilter struct {
	StockCode string
	Kind      ActionKind
}
