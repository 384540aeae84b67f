// Package memory is an in-process store with the same contract as the postgres repository.
// It backs import dry-runs and tests.
package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/KotFed0t/portfolio_tracker/data/repository"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

type state struct {
	stocks      map[string]model.Stock
	trades      []model.TradeEvent
	actions     []model.CorporateAction
	positions   map[string]model.Position
	prices      map[string]map[time.Time]model.PriceBar
	rules       []model.AlertRule
	alertEvents []model.AlertEvent
	seq         int64
	alertSeq    int64
}

func (s state) clone() state {
	c := s
	c.stocks = maps.Clone(s.stocks)
	c.trades = slices.Clone(s.trades)
	c.actions = slices.Clone(s.actions)
	c.positions = maps.Clone(s.positions)
	c.prices = make(map[string]map[time.Time]model.PriceBar, len(s.prices))
	for code, bars := range s.prices {
		c.prices[code] = maps.Clone(bars)
	}
	c.rules = slices.Clone(s.rules)
	c.alertEvents = slices.Clone(s.alertEvents)
	return c
}

type txKey struct{}

type Memory struct {
	mu  sync.Mutex
	st  state
	now func() time.Time
}

func New() *Memory {
	return &Memory{
		st: state{
			stocks:    make(map[string]model.Stock),
			positions: make(map[string]model.Position),
			prices:    make(map[string]map[time.Time]model.PriceBar),
		},
		now: time.Now,
	}
}

// WithinTransaction serializes the function and restores the previous state when it fails.
func (m *Memory) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return tFunc(ctx)
	}

	m.mu.Lock()
	snapshot := m.st.clone()
	m.mu.Unlock()

	err := tFunc(context.WithValue(ctx, txKey{}, true))
	if err != nil {
		m.mu.Lock()
		m.st = snapshot
		m.mu.Unlock()
	}
	return err
}

func (m *Memory) UpsertStock(_ context.Context, code, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stock, ok := m.st.stocks[code]
	if !ok {
		stock = model.Stock{Code: code, Active: true, CreatedAt: m.now()}
	}
	if name != "" {
		stock.Name = name
	}
	m.st.stocks[code] = stock
	return nil
}

func (m *Memory) GetStock(_ context.Context, code string) (model.Stock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stock, ok := m.st.stocks[code]
	if !ok {
		return model.Stock{}, repository.ErrNotFound
	}
	return stock, nil
}

func (m *Memory) GetStocks(_ context.Context, onlyActive bool) ([]model.Stock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := make([]model.Stock, 0, len(m.st.stocks))
	for _, code := range slices.Sorted(maps.Keys(m.st.stocks)) {
		stock := m.st.stocks[code]
		if onlyActive && !stock.Active {
			continue
		}
		res = append(res, stock)
	}
	return res, nil
}

func (m *Memory) SetStockActive(_ context.Context, code string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stock, ok := m.st.stocks[code]
	if !ok {
		return repository.ErrNotFound
	}
	stock.Active = active
	m.st.stocks[code] = stock
	return nil
}

func (m *Memory) UpdateLastPrice(_ context.Context, code string, price decimal.Decimal, asOf time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stock, ok := m.st.stocks[code]
	if !ok {
		return repository.ErrNotFound
	}
	stock.LastPrice = price
	stock.LastPriceAt = asOf
	m.st.stocks[code] = stock
	return nil
}

func (m *Memory) InsertTrade(_ context.Context, trade model.TradeEvent) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.st.stocks[trade.StockCode]; !ok {
		return 0, repository.ErrNotFound
	}

	m.st.seq++
	trade.ID = m.st.seq
	trade.CreatedAt = m.now()
	m.st.trades = append(m.st.trades, trade)
	return trade.ID, nil
}

func (m *Memory) GetTrades(_ context.Context, filter model.TradeFilter) ([]model.TradeEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res []model.TradeEvent
	for _, t := range m.st.trades {
		if filter.StockCode != "" && t.StockCode != filter.StockCode {
			continue
		}
		if filter.From != nil && t.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && t.Date.After(*filter.To) {
			continue
		}
		t.StockName = m.st.stocks[t.StockCode].Name
		res = append(res, t)
	}

	sort.SliceStable(res, func(i, j int) bool {
		if !res[i].Date.Equal(res[j].Date) {
			return res[i].Date.Before(res[j].Date)
		}
		return res[i].ID < res[j].ID
	})
	if filter.Newest {
		slices.Reverse(res)
	}
	if filter.Limit > 0 && len(res) > filter.Limit {
		res = res[:filter.Limit]
	}
	return res, nil
}

func (m *Memory) HasTrades(_ context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.ContainsFunc(m.st.trades, func(t model.TradeEvent) bool { return t.StockCode == code }), nil
}

func (m *Memory) InsertCorporateAction(_ context.Context, action model.CorporateAction) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.st.stocks[action.StockCode]; !ok {
		return 0, repository.ErrNotFound
	}

	m.st.seq++
	action.ID = m.st.seq
	action.CreatedAt = m.now()
	m.st.actions = append(m.st.actions, action)
	return action.ID, nil
}

func (m *Memory) GetCorporateActions(_ context.Context, filter model.ActionFilter) ([]model.CorporateAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := make([]model.CorporateAction, 0)
	for _, a := range m.st.actions {
		if filter.StockCode != "" && a.StockCode != filter.StockCode {
			continue
		}
		if filter.Kind != "" && a.Kind != filter.Kind {
			continue
		}
		res = append(res, a)
	}

	sort.SliceStable(res, func(i, j int) bool {
		if !res[i].Date.Equal(res[j].Date) {
			return res[i].Date.Before(res[j].Date)
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (m *Memory) UpsertPosition(_ context.Context, pos model.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.st.stocks[pos.StockCode]; !ok {
		return repository.ErrNotFound
	}
	pos.UpdatedAt = m.now()
	m.st.positions[pos.StockCode] = pos
	return nil
}

func (m *Memory) GetPosition(_ context.Context, code string) (model.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos, ok := m.st.positions[code]
	if !ok {
		return model.Position{}, repository.ErrNotFound
	}
	return m.withStock(pos), nil
}

func (m *Memory) GetPositions(_ context.Context) ([]model.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := make([]model.Position, 0, len(m.st.positions))
	for _, code := range slices.Sorted(maps.Keys(m.st.positions)) {
		res = append(res, m.withStock(m.st.positions[code]))
	}
	return res, nil
}

// withStock fills the columns the postgres repository joins from stocks.
func (m *Memory) withStock(pos model.Position) model.Position {
	stock := m.st.stocks[pos.StockCode]
	pos.StockName = stock.Name
	pos.LastPrice = stock.LastPrice
	pos.LastPriceAt = stock.LastPriceAt
	return pos
}

func (m *Memory) UpsertPriceBar(_ context.Context, bar model.PriceBar) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.st.stocks[bar.StockCode]; !ok {
		return repository.ErrNotFound
	}
	if m.st.prices[bar.StockCode] == nil {
		m.st.prices[bar.StockCode] = make(map[time.Time]model.PriceBar)
	}
	m.st.prices[bar.StockCode][bar.Date] = bar
	return nil
}

func (m *Memory) GetPriceHistory(_ context.Context, code string, limit int) ([]model.PriceBar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bars := slices.Collect(maps.Values(m.st.prices[code]))
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.After(bars[j].Date) })
	if limit > 0 && len(bars) > limit {
		bars = bars[:limit]
	}
	return bars, nil
}

func (m *Memory) InsertAlertRule(_ context.Context, rule model.AlertRule) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.st.stocks[rule.StockCode]; !ok {
		return 0, repository.ErrNotFound
	}

	m.st.alertSeq++
	rule.ID = m.st.alertSeq
	rule.Active = true
	rule.CreatedAt = m.now()
	m.st.rules = append(m.st.rules, rule)
	return rule.ID, nil
}

func (m *Memory) GetAlertRules(_ context.Context, code string, onlyActive bool) ([]model.AlertRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := make([]model.AlertRule, 0)
	for i := len(m.st.rules) - 1; i >= 0; i-- {
		rule := m.st.rules[i]
		if code != "" && rule.StockCode != code {
			continue
		}
		if onlyActive && !rule.Active {
			continue
		}
		res = append(res, rule)
	}
	return res, nil
}

func (m *Memory) SetAlertRuleActive(_ context.Context, id int64, active bool) error {
	return m.updateRule(id, func(rule *model.AlertRule) { rule.Active = active })
}

func (m *Memory) MarkAlertTriggered(_ context.Context, id int64, at time.Time) error {
	return m.updateRule(id, func(rule *model.AlertRule) { rule.LastTriggered = &at })
}

func (m *Memory) updateRule(id int64, fn func(rule *model.AlertRule)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.st.rules {
		if m.st.rules[i].ID == id {
			fn(&m.st.rules[i])
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *Memory) DeleteAlertRule(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := slices.IndexFunc(m.st.rules, func(rule model.AlertRule) bool { return rule.ID == id })
	if idx < 0 {
		return repository.ErrNotFound
	}
	m.st.rules = slices.Delete(m.st.rules, idx, idx+1)
	m.st.alertEvents = slices.DeleteFunc(m.st.alertEvents, func(e model.AlertEvent) bool { return e.RuleID == id })
	return nil
}

func (m *Memory) InsertAlertEvent(_ context.Context, event model.AlertEvent) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.st.alertSeq++
	event.ID = m.st.alertSeq
	m.st.alertEvents = append(m.st.alertEvents, event)
	return event.ID, nil
}

func (m *Memory) GetAlertHistory(_ context.Context, code string, limit int) ([]model.AlertEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := make([]model.AlertEvent, 0)
	for i := len(m.st.alertEvents) - 1; i >= 0; i-- {
		e := m.st.alertEvents[i]
		if code != "" && e.StockCode != code {
			continue
		}
		res = append(res, e)
		if limit > 0 && len(res) == limit {
			break
		}
	}
	return res, nil
}
