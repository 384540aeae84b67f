package dbConverter

import (
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/dbModel"
	"github.com/shopspring/decimal"
)

func ConvertStock(dbStock dbModel.Stock) model.Stock {
	return model.Stock{
		Code:        dbStock.Code,
		Name:        dbStock.Name,
		Active:      dbStock.IsActive,
		LastPrice:   nullDecimal(dbStock.LastPrice),
		LastPriceAt: dbStock.LastPriceAt.Time,
		CreatedAt:   dbStock.CreatedAt,
	}
}

func ConvertTrade(dbTrade dbModel.Trade) model.TradeEvent {
	return model.TradeEvent{
		ID:        dbTrade.ID,
		StockCode: dbTrade.StockCode,
		StockName: dbTrade.StockName,
		Date:      asDate(dbTrade.TradeDate),
		Direction: model.Direction(dbTrade.Direction),
		Quantity:  dbTrade.Quantity,
		Price:     dbTrade.Price,
		Brokerage: dbTrade.Brokerage,
		Notes:     dbTrade.Notes,
		CreatedAt: dbTrade.CreatedAt,
	}
}

func ConvertCorporateAction(dbAction dbModel.CorporateAction) model.CorporateAction {
	return model.CorporateAction{
		ID:             dbAction.ID,
		StockCode:      dbAction.StockCode,
		Kind:           model.ActionKind(dbAction.ActionType),
		Date:           asDate(dbAction.ActionDate),
		AmountPerShare: dbAction.AmountPerShare,
		Ratio:          model.Ratio{Numerator: dbAction.RatioNumerator, Denominator: dbAction.RatioDenominator},
		Notes:          dbAction.Notes,
		CreatedAt:      dbAction.CreatedAt,
	}
}

func ConvertPosition(dbPosition dbModel.Position) model.Position {
	return model.Position{
		StockCode:      dbPosition.StockCode,
		StockName:      dbPosition.StockName,
		Quantity:       dbPosition.Quantity,
		AvgCost:        dbPosition.AvgCost,
		Invested:       dbPosition.Invested,
		DividendIncome: dbPosition.DividendIncome,
		LastPrice:      nullDecimal(dbPosition.LastPrice),
		LastPriceAt:    dbPosition.LastPriceAt.Time,
		UpdatedAt:      dbPosition.UpdatedAt,
	}
}

func ConvertPriceBar(dbBar dbModel.PriceBar) model.PriceBar {
	return model.PriceBar{
		StockCode: dbBar.StockCode,
		Date:      asDate(dbBar.PriceDate),
		Open:      nullDecimal(dbBar.Open),
		High:      nullDecimal(dbBar.High),
		Low:       nullDecimal(dbBar.Low),
		Close:     dbBar.Close,
		Volume:    dbBar.Volume,
		Source:    dbBar.Source,
	}
}

func ConvertAlertRule(dbRule dbModel.AlertRule) model.AlertRule {
	rule := model.AlertRule{
		ID:        dbRule.ID,
		StockCode: dbRule.StockCode,
		Type:      model.AlertType(dbRule.AlertType),
		Condition: model.AlertCondition(dbRule.Condition),
		Threshold: dbRule.Threshold,
		Active:    dbRule.IsActive,
		Notes:     dbRule.Notes,
		CreatedAt: dbRule.CreatedAt,
	}
	if dbRule.LastTriggered.Valid {
		ts := dbRule.LastTriggered.Time
		rule.LastTriggered = &ts
	}
	return rule
}

func ConvertAlertEvent(dbEvent dbModel.AlertEvent) model.AlertEvent {
	return model.AlertEvent{
		ID:          dbEvent.ID,
		RuleID:      dbEvent.AlertRuleID,
		StockCode:   dbEvent.StockCode,
		Type:        model.AlertType(dbEvent.AlertType),
		Condition:   model.AlertCondition(dbEvent.Condition),
		Threshold:   dbEvent.Threshold,
		Value:       dbEvent.TriggerValue,
		Price:       dbEvent.Price,
		Message:     dbEvent.Message,
		TriggeredAt: dbEvent.TriggeredAt,
	}
}

func nullDecimal(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

// DATE columns come back at midnight in the session timezone, normalize to UTC midnight.
func asDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
