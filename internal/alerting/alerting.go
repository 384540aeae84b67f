package alerting

import (
	"errors"
	"fmt"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

var ErrInvalidRule = errors.New("invalid alert rule")

var hundred = decimal.NewFromInt(100)

type Result struct {
	Met bool
	// Value is the price for target/stop rules and the percent change for change rules.
	Value decimal.Decimal
}

// Validate checks that the condition makes sense for the rule type.
func Validate(rule model.AlertRule) error {
	if rule.StockCode == "" {
		return fmt.Errorf("%w: empty stock code", ErrInvalidRule)
	}
	if rule.Threshold.IsNegative() {
		return fmt.Errorf("%w: negative threshold %s", ErrInvalidRule, rule.Threshold)
	}

	ok := false
	switch rule.Type {
	case model.TargetPrice:
		ok = rule.Condition == model.Above || rule.Condition == model.Below
	case model.StopLoss:
		ok = rule.Condition == model.Below
	case model.PriceChange:
		ok = rule.Condition == model.ChangeUp || rule.Condition == model.ChangeDown
	}
	if !ok {
		return fmt.Errorf("%w: %s cannot use condition %s", ErrInvalidRule, rule.Type, rule.Condition)
	}
	return nil
}

// Evaluate checks one rule against a fresh price. The percent change is measured
// from the position's last stored price; without one the change rules never fire.
func Evaluate(rule model.AlertRule, pos model.Position, price decimal.Decimal) Result {
	switch rule.Type {
	case model.TargetPrice, model.StopLoss:
		res := Result{Value: price}
		switch rule.Condition {
		case model.Above:
			res.Met = price.GreaterThanOrEqual(rule.Threshold)
		case model.Below:
			res.Met = price.LessThanOrEqual(rule.Threshold)
		}
		return res
	case model.PriceChange:
		if !pos.LastPrice.IsPositive() {
			return Result{}
		}
		pct := price.Sub(pos.LastPrice).Div(pos.LastPrice).Mul(hundred)
		res := Result{Value: pct}
		switch rule.Condition {
		case model.ChangeUp:
			res.Met = pct.GreaterThanOrEqual(rule.Threshold)
		case model.ChangeDown:
			res.Met = pct.LessThanOrEqual(rule.Threshold.Neg())
		}
		return res
	}
	return Result{}
}

// Message renders the human text sent by notifiers.
func Message(rule model.AlertRule, pos model.Position, price decimal.Decimal, res Result) string {
	name := pos.StockName
	if name == "" {
		name = rule.StockCode
	}

	switch rule.Type {
	case model.TargetPrice:
		return fmt.Sprintf("🎯 %s (%s) reached target: %s is %s %s",
			name, rule.StockCode, price.StringFixed(2), directionWord(rule.Condition), rule.Threshold.StringFixed(2))
	case model.StopLoss:
		return fmt.Sprintf("🛑 %s (%s) hit stop loss: %s <= %s",
			name, rule.StockCode, price.StringFixed(2), rule.Threshold.StringFixed(2))
	default:
		return fmt.Sprintf("📈 %s (%s) moved %s%% to %s (threshold %s%%)",
			name, rule.StockCode, res.Value.StringFixed(2), price.StringFixed(2), rule.Threshold.StringFixed(2))
	}
}

func directionWord(c model.AlertCondition) string {
	if c == model.Above {
		return "at or above"
	}
	return "at or below"
}
