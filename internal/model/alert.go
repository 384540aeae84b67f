package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type AlertType string

const (
	TargetPrice AlertType = "TARGET_PRICE"
	StopLoss    AlertType = "STOP_LOSS"
	PriceChange AlertType = "PRICE_CHANGE"
)

type AlertCondition string

const (
	Above      AlertCondition = "ABOVE"
	Below      AlertCondition = "BELOW"
	ChangeUp   AlertCondition = "CHANGE_UP"
	ChangeDown AlertCondition = "CHANGE_DOWN"
)

type AlertRule struct {
	ID            int64
	StockCode     string
	Type          AlertType
	Condition     AlertCondition
	Threshold     decimal.Decimal
	Active        bool
	LastTriggered *time.Time
	Notes         string
	CreatedAt     time.Time
}

type AlertEvent struct {
	ID          int64
	RuleID      int64
	StockCode   string
	Type        AlertType
	Condition   AlertCondition
	Threshold   decimal.Decimal
	Value       decimal.Decimal
	Price       decimal.Decimal
	Message     string
	TriggeredAt time.Time
}
