package accounting

import (
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

const code = "500325"

func day(n int) time.Time {
	return time.Date(2024, time.January, n, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func buy(id int64, on time.Time, q int64, price string) Event {
	return FromTrade(model.TradeEvent{ID: id, StockCode: code, Date: on, Direction: model.Buy, Quantity: q, Price: dec(price)})
}

func sell(id int64, on time.Time, q int64, price string) Event {
	return FromTrade(model.TradeEvent{ID: id, StockCode: code, Date: on, Direction: model.Sell, Quantity: q, Price: dec(price)})
}

func bonus(id int64, on time.Time, n, d int64) Event {
	return FromAction(model.CorporateAction{ID: id, StockCode: code, Kind: model.Bonus, Date: on, Ratio: model.Ratio{Numerator: n, Denominator: d}})
}

func split(id int64, on time.Time, n, d int64) Event {
	return FromAction(model.CorporateAction{ID: id, StockCode: code, Kind: model.Split, Date: on, Ratio: model.Ratio{Numerator: n, Denominator: d}})
}

func dividend(id int64, on time.Time, perShare string) Event {
	return FromAction(model.CorporateAction{ID: id, StockCode: code, Kind: model.Dividend, Date: on, AmountPerShare: dec(perShare)})
}

func checkPosition(t *testing.T, got model.Position, quantity int64, invested string) {
	t.Helper()
	if got.Quantity != quantity {
		t.Errorf("Quantity = %d, want %d", got.Quantity, quantity)
	}
	if !got.Invested.Equal(dec(invested)) {
		t.Errorf("Invested = %s, want %s", got.Invested, invested)
	}
}
