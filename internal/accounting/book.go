package accounting

import (
	"fmt"
	"sort"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

// Book tracks FIFO lots of a single stock and the gains realized by sales.
// Like Aggregator, Apply is all-or-nothing.
type Book struct {
	code     string
	lots     []model.Lot
	sales    []model.Sale
	realized decimal.Decimal
}

func NewBook(code string) *Book {
	return &Book{code: code}
}

func (b *Book) Apply(e Event) error {
	if e.StockCode() != b.code {
		return fmt.Errorf("%w: event for %s replayed into %s", ErrInvalidTrade, e.StockCode(), b.code)
	}

	if e.Trade != nil {
		if err := ValidateTrade(*e.Trade); err != nil {
			return err
		}
		if e.Trade.Direction == model.Buy {
			b.push(e.Trade.Date, e.Trade.Quantity, e.Trade.Price)
			return nil
		}
		return b.sell(*e.Trade)
	}

	act := *e.Action
	if err := ValidateAction(act); err != nil {
		return err
	}

	switch act.Kind {
	case model.Bonus:
		bonus, _, err := scale(b.OpenQuantity(), act.Ratio)
		if err != nil {
			return err
		}
		b.push(act.Date, bonus, decimal.Zero)
	case model.Split:
		return b.split(act.Ratio)
	}
	return nil
}

func (b *Book) push(on time.Time, quantity int64, unitCost decimal.Decimal) {
	if quantity == 0 {
		return
	}
	b.lots = append(b.lots, model.Lot{StockCode: b.code, AcquiredOn: on, Quantity: quantity, UnitCost: unitCost})
}

func (b *Book) sell(t model.TradeEvent) error {
	open := b.OpenQuantity()
	if t.Quantity > open {
		return fmt.Errorf(
			"%w: sell %d %s on %s, open lots hold %d",
			ErrInsufficientQuantity, t.Quantity, b.code, t.Date.Format(dateLayout), open,
		)
	}

	remaining := t.Quantity
	cost := decimal.Zero
	for remaining > 0 {
		lot := &b.lots[0]
		take := min(lot.Quantity, remaining)
		cost = cost.Add(lot.UnitCost.Mul(decimal.NewFromInt(take)))
		lot.Quantity -= take
		remaining -= take
		if lot.Quantity == 0 {
			b.lots = b.lots[1:]
		}
	}

	gain := t.Value().Sub(cost)
	b.realized = b.realized.Add(gain)
	b.sales = append(b.sales, model.Sale{
		TradeID:   t.ID,
		Date:      t.Date,
		Quantity:  t.Quantity,
		Price:     t.Price,
		CostBasis: cost,
		Gain:      gain,
	})

	return nil
}

// split rescales every lot. Per-lot flooring can lose units against floor(total*n/d), the
// missing units go to the lots with the largest remainders, oldest first on ties, so the open
// quantity always equals what the Aggregator computes.
func (b *Book) split(r model.Ratio) error {
	target, _, err := scale(b.OpenQuantity(), r)
	if err != nil {
		return err
	}

	type remainder struct {
		idx int
		rem int64
	}

	quantities := make([]int64, len(b.lots))
	rems := make([]remainder, len(b.lots))
	var sum int64
	for i, lot := range b.lots {
		q, rem, err := scale(lot.Quantity, r)
		if err != nil {
			return err
		}
		quantities[i] = q
		rems[i] = remainder{idx: i, rem: rem}
		sum += q
	}

	sort.SliceStable(rems, func(i, j int) bool { return rems[i].rem > rems[j].rem })
	for k := int64(0); k < target-sum; k++ {
		quantities[rems[k].idx]++
	}

	num, den := decimal.NewFromInt(r.Numerator), decimal.NewFromInt(r.Denominator)
	lots := make([]model.Lot, 0, len(b.lots))
	for i, lot := range b.lots {
		if quantities[i] == 0 {
			continue
		}
		lot.Quantity = quantities[i]
		lot.UnitCost = lot.UnitCost.Mul(den).Div(num)
		lots = append(lots, lot)
	}
	b.lots = lots

	return nil
}

func (b *Book) OpenQuantity() int64 {
	var q int64
	for _, lot := range b.lots {
		q += lot.Quantity
	}
	return q
}

func (b *Book) Lots() []model.Lot {
	return append([]model.Lot(nil), b.lots...)
}

func (b *Book) Sales() []model.Sale {
	return append([]model.Sale(nil), b.sales...)
}

func (b *Book) Realized() decimal.Decimal {
	return b.realized
}

// ReplayFIFO builds a Book from events already in replay order.
func ReplayFIFO(code string, events []Event) (*Book, error) {
	book := NewBook(code)
	for _, e := range events {
		if err := book.Apply(e); err != nil {
			return nil, err
		}
	}
	return book, nil
}
