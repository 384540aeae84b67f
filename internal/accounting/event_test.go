package accounting

import (
	"testing"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
)

func TestMergeOrdersByDateThenInsertion(t *testing.T) {
	trades := []model.TradeEvent{
		{ID: 7, StockCode: code, Date: day(2), Direction: model.Sell, Quantity: 1},
		{ID: 1, StockCode: code, Date: day(1), Direction: model.Buy, Quantity: 1},
		{ID: 4, StockCode: code, Date: day(2), Direction: model.Buy, Quantity: 1},
	}
	actions := []model.CorporateAction{
		{ID: 5, StockCode: code, Date: day(2), Kind: model.Bonus},
		{ID: 2, StockCode: code, Date: day(3), Kind: model.Split},
	}

	events := Merge(trades, actions)

	want := []int64{1, 4, 5, 7, 2}
	if len(events) != len(want) {
		t.Fatalf("len(Merge()) = %d, want %d", len(events), len(want))
	}
	for i, id := range want {
		if events[i].Seq() != id {
			t.Errorf("events[%d].Seq() = %d, want %d", i, events[i].Seq(), id)
		}
	}
}

func TestBackdatedSplitIsReplayedAtItsDate(t *testing.T) {
	trades := []model.TradeEvent{
		{ID: 1, StockCode: code, Date: day(1), Direction: model.Buy, Quantity: 10, Price: dec("100")},
		{ID: 2, StockCode: code, Date: day(5), Direction: model.Sell, Quantity: 15, Price: dec("60")},
	}
	// recorded after the sell, effective before it
	actions := []model.CorporateAction{
		{ID: 3, StockCode: code, Date: day(3), Kind: model.Split, Ratio: model.Ratio{Numerator: 2, Denominator: 1}},
	}

	pos, err := Aggregate(code, Merge(trades, actions))
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	checkPosition(t, pos, 5, "250")
}

func TestUntilAndGroupByStock(t *testing.T) {
	other := FromTrade(model.TradeEvent{ID: 9, StockCode: "532540", Date: day(2), Direction: model.Buy, Quantity: 1})
	events := []Event{buy(1, day(1), 1, "1"), other, sell(3, day(4), 1, "2")}

	if got := len(Until(events, day(2))); got != 2 {
		t.Errorf("len(Until()) = %d, want 2", got)
	}

	groups := GroupByStock(events)
	if len(groups[code]) != 2 || len(groups["532540"]) != 1 {
		t.Errorf("GroupByStock() = %v", groups)
	}
}
