package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Stock struct {
	Code        string
	Name        string
	Active      bool
	LastPrice   decimal.Decimal
	LastPriceAt time.Time
	CreatedAt   time.Time
}
