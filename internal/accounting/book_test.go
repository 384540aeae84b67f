package accounting

import (
	"errors"
	"testing"
)

func TestBookRealizedMatchesManualLotSum(t *testing.T) {
	book, err := ReplayFIFO(code, []Event{
		buy(1, day(1), 10, "100"),
		buy(2, day(2), 10, "120"),
		sell(3, day(3), 15, "150"),
	})
	if err != nil {
		t.Fatalf("ReplayFIFO() error = %v", err)
	}

	// 10*(150-100) + 5*(150-120)
	if want := dec("650"); !book.Realized().Equal(want) {
		t.Errorf("Realized() = %s, want %s", book.Realized(), want)
	}

	lots := book.Lots()
	if len(lots) != 1 {
		t.Fatalf("len(Lots()) = %d, want 1", len(lots))
	}
	if lots[0].Quantity != 5 || !lots[0].UnitCost.Equal(dec("120")) {
		t.Errorf("remaining lot = %+v, want 5 @ 120", lots[0])
	}

	sales := book.Sales()
	if len(sales) != 1 || !sales[0].CostBasis.Equal(dec("1600")) {
		t.Errorf("Sales() = %+v, want one sale with cost basis 1600", sales)
	}
}

func TestBookConcreteScenario(t *testing.T) {
	book, err := ReplayFIFO(code, []Event{
		buy(1, day(1), 20, "1450"),
		buy(2, day(2), 10, "1450"),
		sell(3, day(3), 5, "1600"),
	})
	if err != nil {
		t.Fatalf("ReplayFIFO() error = %v", err)
	}
	if want := dec("750"); !book.Realized().Equal(want) {
		t.Errorf("Realized() = %s, want %s", book.Realized(), want)
	}
	if book.OpenQuantity() != 25 {
		t.Errorf("OpenQuantity() = %d, want 25", book.OpenQuantity())
	}
}

func TestBookBonusLotHasZeroCost(t *testing.T) {
	book, err := ReplayFIFO(code, []Event{
		buy(1, day(1), 100, "2500"),
		bonus(2, day(2), 1, 2),
		sell(3, day(3), 120, "2000"),
	})
	if err != nil {
		t.Fatalf("ReplayFIFO() error = %v", err)
	}

	// 100*(2000-2500) + 20*(2000-0)
	if want := dec("-10000"); !book.Realized().Equal(want) {
		t.Errorf("Realized() = %s, want %s", book.Realized(), want)
	}
	if book.OpenQuantity() != 30 {
		t.Errorf("OpenQuantity() = %d, want 30", book.OpenQuantity())
	}
}

func TestBookSplitDoublesLots(t *testing.T) {
	ratio, err := ParseSplitRatio("1:2")
	if err != nil {
		t.Fatalf("ParseSplitRatio() error = %v", err)
	}

	book, err := ReplayFIFO(code, []Event{
		buy(1, day(1), 20, "1500"),
		buy(2, day(2), 6, "1700"),
		split(3, day(3), ratio.Numerator, ratio.Denominator),
	})
	if err != nil {
		t.Fatalf("ReplayFIFO() error = %v", err)
	}

	want := []struct {
		quantity int64
		cost     string
	}{
		{40, "750"},
		{12, "850"},
	}

	lots := book.Lots()
	if len(lots) != len(want) {
		t.Fatalf("len(Lots()) = %d, want %d", len(lots), len(want))
	}
	for i, w := range want {
		if lots[i].Quantity != w.quantity || !lots[i].UnitCost.Equal(dec(w.cost)) {
			t.Errorf("lot %d = %d @ %s, want %d @ %s", i, lots[i].Quantity, lots[i].UnitCost, w.quantity, w.cost)
		}
	}
}

func TestBookSplitReconcilesWithAggregator(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		lots   []int64
	}{
		{
			name:   "reverse split ties go to the oldest lot",
			events: []Event{buy(1, day(1), 3, "10"), buy(2, day(2), 3, "10"), split(3, day(3), 1, 2)},
			lots:   []int64{2, 1},
		},
		{
			name:   "largest remainder wins",
			events: []Event{buy(1, day(1), 4, "10"), buy(2, day(2), 5, "10"), split(3, day(3), 1, 3)},
			lots:   []int64{1, 2},
		},
		{
			name:   "three for two",
			events: []Event{buy(1, day(1), 1, "10"), buy(2, day(2), 1, "10"), buy(3, day(3), 1, "10"), split(4, day(4), 3, 2)},
			lots:   []int64{2, 1, 1},
		},
		{
			name:   "lot floored away",
			events: []Event{buy(1, day(1), 1, "10"), buy(2, day(2), 4, "10"), split(3, day(3), 1, 5)},
			lots:   []int64{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book, err := ReplayFIFO(code, tt.events)
			if err != nil {
				t.Fatalf("ReplayFIFO() error = %v", err)
			}
			pos, err := Aggregate(code, tt.events)
			if err != nil {
				t.Fatalf("Aggregate() error = %v", err)
			}

			if book.OpenQuantity() != pos.Quantity {
				t.Errorf("OpenQuantity() = %d, Aggregate quantity = %d", book.OpenQuantity(), pos.Quantity)
			}

			lots := book.Lots()
			if len(lots) != len(tt.lots) {
				t.Fatalf("len(Lots()) = %d, want %d", len(lots), len(tt.lots))
			}
			for i, q := range tt.lots {
				if lots[i].Quantity != q {
					t.Errorf("lot %d quantity = %d, want %d", i, lots[i].Quantity, q)
				}
			}
		})
	}
}

func TestBookFullSellEmptiesLots(t *testing.T) {
	book, err := ReplayFIFO(code, []Event{
		buy(1, day(1), 7, "33.33"),
		buy(2, day(1), 5, "41.10"),
		bonus(3, day(2), 1, 4),
		sell(4, day(3), 15, "40"),
	})
	if err != nil {
		t.Fatalf("ReplayFIFO() error = %v", err)
	}
	if book.OpenQuantity() != 0 || len(book.Lots()) != 0 {
		t.Errorf("open lots = %+v, want none", book.Lots())
	}
}

func TestOversellAgreesAcrossModels(t *testing.T) {
	sequences := [][]Event{
		{sell(1, day(1), 1, "10")},
		{buy(1, day(1), 10, "10"), sell(2, day(2), 11, "10")},
		{buy(1, day(1), 10, "10"), split(2, day(2), 1, 4), sell(3, day(3), 3, "10")},
		{buy(1, day(1), 10, "10"), bonus(2, day(2), 1, 3), sell(3, day(3), 13, "10"), sell(4, day(4), 1, "10")},
	}

	for i, events := range sequences {
		_, aggErr := Aggregate(code, events)
		_, bookErr := ReplayFIFO(code, events)

		if !errors.Is(aggErr, ErrInsufficientQuantity) {
			t.Errorf("sequence %d: Aggregate() error = %v, want %v", i, aggErr, ErrInsufficientQuantity)
		}
		if !errors.Is(bookErr, ErrInsufficientQuantity) {
			t.Errorf("sequence %d: ReplayFIFO() error = %v, want %v", i, bookErr, ErrInsufficientQuantity)
		}
	}
}

func TestBookRejectedSellKeepsLots(t *testing.T) {
	book := NewBook(code)
	if err := book.Apply(buy(1, day(1), 5, "10")); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if err := book.Apply(sell(2, day(2), 6, "12")); !errors.Is(err, ErrInsufficientQuantity) {
		t.Fatalf("Apply() error = %v, want %v", err, ErrInsufficientQuantity)
	}
	if book.OpenQuantity() != 5 || !book.Realized().IsZero() || len(book.Sales()) != 0 {
		t.Errorf("book changed after rejected sell: open=%d realized=%s", book.OpenQuantity(), book.Realized())
	}
}
