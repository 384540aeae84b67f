package accounting

import (
	"fmt"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

// Aggregator maintains the weighted-average position of a single stock.
// Apply either fully applies an event or leaves the state untouched.
type Aggregator struct {
	code      string
	quantity  int64
	invested  decimal.Decimal
	dividends decimal.Decimal
}

func NewAggregator(code string) *Aggregator {
	return &Aggregator{code: code}
}

func (a *Aggregator) Apply(e Event) error {
	if e.StockCode() != a.code {
		return fmt.Errorf("%w: event for %s replayed into %s", ErrInvalidTrade, e.StockCode(), a.code)
	}

	if e.Trade != nil {
		return a.applyTrade(*e.Trade)
	}
	return a.applyAction(*e.Action)
}

func (a *Aggregator) applyTrade(t model.TradeEvent) error {
	if err := ValidateTrade(t); err != nil {
		return err
	}

	q := decimal.NewFromInt(t.Quantity)

	switch t.Direction {
	case model.Buy:
		a.quantity += t.Quantity
		a.invested = a.invested.Add(q.Mul(t.Price))
	case model.Sell:
		if t.Quantity > a.quantity {
			return fmt.Errorf(
				"%w: sell %d %s on %s, holding %d",
				ErrInsufficientQuantity, t.Quantity, a.code, t.Date.Format(dateLayout), a.quantity,
			)
		}
		// invested*q/quantity is avg_cost*q without the rounding of a stored average
		reduce := a.invested.Mul(q).Div(decimal.NewFromInt(a.quantity))
		a.quantity -= t.Quantity
		if a.quantity == 0 {
			a.invested = decimal.Zero
		} else {
			a.invested = a.invested.Sub(reduce)
		}
	}

	return nil
}

func (a *Aggregator) applyAction(act model.CorporateAction) error {
	if err := ValidateAction(act); err != nil {
		return err
	}

	switch act.Kind {
	case model.Dividend:
		a.dividends = a.dividends.Add(act.AmountPerShare.Mul(decimal.NewFromInt(a.quantity)))
	case model.Bonus:
		bonus, _, err := scale(a.quantity, act.Ratio)
		if err != nil {
			return err
		}
		a.quantity += bonus
	case model.Split:
		q, _, err := scale(a.quantity, act.Ratio)
		if err != nil {
			return err
		}
		a.quantity = q
		if q == 0 {
			a.invested = decimal.Zero
		}
	default:
		return fmt.Errorf("unknown corporate action kind %q", act.Kind)
	}
	return nil
}

func (a *Aggregator) Quantity() int64 {
	return a.quantity
}

// Position returns a snapshot. Price fields are left to the caller.
func (a *Aggregator) Position() model.Position {
	return model.Position{
		StockCode:      a.code,
		Quantity:       a.quantity,
		AvgCost:        AvgCost(a.invested, a.quantity),
		Invested:       a.invested,
		DividendIncome: a.dividends,
	}
}

// Aggregate replays events in the given order.
func Aggregate(code string, events []Event) (model.Position, error) {
	agg := NewAggregator(code)
	for _, e := range events {
		if err := agg.Apply(e); err != nil {
			return model.Position{}, err
		}
	}
	return agg.Position(), nil
}

func AvgCost(invested decimal.Decimal, quantity int64) decimal.Decimal {
	if quantity == 0 {
		return decimal.Zero
	}
	return invested.Div(decimal.NewFromInt(quantity))
}
