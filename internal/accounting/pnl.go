package accounting

import (
	"fmt"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Unrealized is (price - avg_cost) * quantity of the weighted-average position,
// computed as price*quantity - invested to avoid the rounding of a divided average.
func Unrealized(pos model.Position, price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(pos.Quantity)).Sub(pos.Invested)
}

// Pct returns part/whole*100, 0 for an empty whole.
func Pct(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// Realized replays the FIFO book and returns the cumulative gain.
func Realized(code string, events []Event) (decimal.Decimal, error) {
	book, err := ReplayFIFO(code, events)
	if err != nil {
		return decimal.Zero, err
	}
	return book.Realized(), nil
}

// Summarize runs both cost models over the same events and combines them for one stock.
func Summarize(code string, events []Event, price decimal.Decimal) (model.StockSummary, error) {
	agg := NewAggregator(code)
	book := NewBook(code)
	for _, e := range events {
		if err := agg.Apply(e); err != nil {
			return model.StockSummary{}, err
		}
		if err := book.Apply(e); err != nil {
			return model.StockSummary{}, err
		}
	}

	if agg.Quantity() != book.OpenQuantity() {
		return model.StockSummary{}, fmt.Errorf(
			"%s: average cost quantity %d differs from open lots %d", code, agg.Quantity(), book.OpenQuantity(),
		)
	}

	pos := agg.Position()
	unrealized := Unrealized(pos, price)

	return model.StockSummary{
		StockCode:        code,
		Quantity:         pos.Quantity,
		AvgCost:          pos.AvgCost,
		Invested:         pos.Invested,
		CurrentPrice:     price,
		CurrentValue:     price.Mul(decimal.NewFromInt(pos.Quantity)),
		UnrealizedPnL:    unrealized,
		UnrealizedPnLPct: Pct(unrealized, pos.Invested),
		RealizedPnL:      book.Realized(),
		DividendIncome:   pos.DividendIncome,
		Sales:            book.Sales(),
		OpenLots:         book.Lots(),
	}, nil
}
