package accounting

import (
	"fmt"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

func ValidateTrade(t model.TradeEvent) error {
	switch {
	case strings.TrimSpace(t.StockCode) == "":
		return fmt.Errorf("%w: empty stock code", ErrInvalidTrade)
	case !t.Direction.Valid():
		return fmt.Errorf("%w: direction %q", ErrInvalidTrade, t.Direction)
	case t.Quantity <= 0:
		return fmt.Errorf("%w: quantity %d must be positive", ErrInvalidTrade, t.Quantity)
	case t.Price.IsNegative():
		return fmt.Errorf("%w: negative price %s", ErrInvalidTrade, t.Price)
	case t.Brokerage.IsNegative():
		return fmt.Errorf("%w: negative brokerage %s", ErrInvalidTrade, t.Brokerage)
	case t.Date.IsZero():
		return fmt.Errorf("%w: missing date", ErrInvalidTrade)
	}
	return nil
}

func ValidateAction(a model.CorporateAction) error {
	if strings.TrimSpace(a.StockCode) == "" {
		return fmt.Errorf("%w: empty stock code", ErrUnknownStock)
	}
	if a.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTrade)
	}

	switch a.Kind {
	case model.Dividend:
		if !a.AmountPerShare.GreaterThan(decimal.Zero) {
			return fmt.Errorf("%w: dividend per share %s must be positive", ErrInvalidAmount, a.AmountPerShare)
		}
	case model.Bonus, model.Split:
		return ValidateRatio(a.Ratio)
	default:
		return fmt.Errorf("%w: unknown action kind %q", ErrInvalidTrade, a.Kind)
	}
	return nil
}
