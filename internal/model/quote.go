package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Quote struct {
	StockCode string          `json:"stock_code"`
	StockName string          `json:"stock_name"`
	Price     decimal.Decimal `json:"price"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	PrevClose decimal.Decimal `json:"prev_close"`
	Volume    int64           `json:"volume"`
	AsOf      time.Time       `json:"as_of"`
}

type PriceBar struct {
	StockCode string
	Date      time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    int64
	Source    string
}
