package accounting

import (
	"sort"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
)

// Event is one ledger entry in replay order. Exactly one of Trade and Action is set.
type Event struct {
	Trade  *model.TradeEvent
	Action *model.CorporateAction
}

func FromTrade(t model.TradeEvent) Event {
	return Event{Trade: &t}
}

func FromAction(a model.CorporateAction) Event {
	return Event{Action: &a}
}

func (e Event) Date() time.Time {
	if e.Trade != nil {
		return e.Trade.Date
	}
	return e.Action.Date
}

// Seq is the insertion order shared by trades and actions.
func (e Event) Seq() int64 {
	if e.Trade != nil {
		return e.Trade.ID
	}
	return e.Action.ID
}

func (e Event) StockCode() string {
	if e.Trade != nil {
		return e.Trade.StockCode
	}
	return e.Action.StockCode
}

// Merge interleaves trades and actions by (date, insertion order).
func Merge(trades []model.TradeEvent, actions []model.CorporateAction) []Event {
	events := make([]Event, 0, len(trades)+len(actions))
	for _, t := range trades {
		events = append(events, FromTrade(t))
	}
	for _, a := range actions {
		events = append(events, FromAction(a))
	}

	sort.SliceStable(events, func(i, j int) bool {
		di, dj := events[i].Date(), events[j].Date()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return events[i].Seq() < events[j].Seq()
	})

	return events
}

// GroupByStock splits a merged stream per stock, keeping order.
func GroupByStock(events []Event) map[string][]Event {
	res := make(map[string][]Event)
	for _, e := range events {
		code := e.StockCode()
		res[code] = append(res[code], e)
	}
	return res
}

// Until keeps the events dated on or before asOf.
func Until(events []Event, asOf time.Time) []Event {
	res := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Date().After(asOf) {
			continue
		}
		res = append(res, e)
	}
	return res
}
