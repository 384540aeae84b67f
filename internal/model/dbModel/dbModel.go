package dbModel

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Stock struct {
	Code        string              `db:"code"`
	Name        string              `db:"name"`
	IsActive    bool                `db:"is_active"`
	LastPrice   decimal.NullDecimal `db:"last_price"`
	LastPriceAt sql.NullTime        `db:"last_price_at"`
	CreatedAt   time.Time           `db:"created_at"`
}

type Trade struct {
	ID        int64           `db:"id"`
	StockCode string          `db:"stock_code"`
	StockName string          `db:"stock_name"`
	TradeDate time.Time       `db:"trade_date"`
	Direction string          `db:"direction"`
	Quantity  int64           `db:"quantity"`
	Price     decimal.Decimal `db:"price"`
	Brokerage decimal.Decimal `db:"brokerage"`
	Notes     string          `db:"notes"`
	CreatedAt time.Time       `db:"created_at"`
}

type CorporateAction struct {
	ID               int64           `db:"id"`
	StockCode        string          `db:"stock_code"`
	ActionType       string          `db:"action_type"`
	ActionDate       time.Time       `db:"action_date"`
	AmountPerShare   decimal.Decimal `db:"amount_per_share"`
	RatioNumerator   int64           `db:"ratio_numerator"`
	RatioDenominator int64           `db:"ratio_denominator"`
	Notes            string          `db:"notes"`
	CreatedAt        time.Time       `db:"created_at"`
}

type Position struct {
	StockCode      string              `db:"stock_code"`
	StockName      string              `db:"stock_name"`
	Quantity       int64               `db:"quantity"`
	AvgCost        decimal.Decimal     `db:"avg_cost"`
	Invested       decimal.Decimal     `db:"invested"`
	DividendIncome decimal.Decimal     `db:"dividend_income"`
	LastPrice      decimal.NullDecimal `db:"last_price"`
	LastPriceAt    sql.NullTime        `db:"last_price_at"`
	UpdatedAt      time.Time           `db:"updated_at"`
}

type PriceBar struct {
	StockCode string              `db:"stock_code"`
	PriceDate time.Time           `db:"price_date"`
	Open      decimal.NullDecimal `db:"open"`
	High      decimal.NullDecimal `db:"high"`
	Low       decimal.NullDecimal `db:"low"`
	Close     decimal.Decimal     `db:"close"`
	Volume    int64               `db:"volume"`
	Source    string              `db:"source"`
}

type AlertRule struct {
	ID            int64           `db:"id"`
	StockCode     string          `db:"stock_code"`
	AlertType     string          `db:"alert_type"`
	Condition     string          `db:"condition"`
	Threshold     decimal.Decimal `db:"threshold_value"`
	IsActive      bool            `db:"is_active"`
	LastTriggered sql.NullTime    `db:"last_triggered"`
	Notes         string          `db:"notes"`
	CreatedAt     time.Time       `db:"created_at"`
}

type AlertEvent struct {
	ID           int64           `db:"id"`
	AlertRuleID  int64           `db:"alert_rule_id"`
	StockCode    string          `db:"stock_code"`
	AlertType    string          `db:"alert_type"`
	Condition    string          `db:"condition"`
	Threshold    decimal.Decimal `db:"threshold_value"`
	TriggerValue decimal.Decimal `db:"trigger_value"`
	Price        decimal.Decimal `db:"price"`
	Message      string          `db:"message"`
	TriggeredAt  time.Time       `db:"triggered_at"`
}
