package portfolioService

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/KotFed0t/portfolio_tracker/internal/accounting"
	"github.com/KotFed0t/portfolio_tracker/internal/metrics"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/shopspring/decimal"
)

// Holdings returns the open positions valued at the current price, largest first.
// With live set the price comes from the cache or the quote API, otherwise the stored price is used.
func (s *PortfolioService) Holdings(ctx context.Context, live bool) ([]model.Holding, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.Holdings"

	slog.Debug("Holdings start", slog.String("rqID", rqID), slog.String("op", op), slog.Bool("live", live))
	defer func() {
		slog.Debug("Holdings finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	positions, err := s.repo.GetPositions(ctx)
	if err != nil {
		slog.Error("got error from repo.GetPositions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	open := make([]model.Position, 0, len(positions))
	codes := make([]string, 0, len(positions))
	for _, pos := range positions {
		if pos.Quantity > 0 {
			open = append(open, pos)
			codes = append(codes, pos.StockCode)
		}
	}

	var quotes map[string]model.Quote
	if live && len(codes) > 0 {
		quotes = s.quotes(ctx, codes)
	}

	holdings := make([]model.Holding, 0, len(open))
	total := decimal.Zero
	for _, pos := range open {
		h := s.holding(pos, quotes, live)
		total = total.Add(h.CurrentValue)
		holdings = append(holdings, h)
	}

	for i := range holdings {
		holdings[i].Weight = accounting.Pct(holdings[i].CurrentValue, total)
	}

	sort.SliceStable(holdings, func(i, j int) bool {
		return holdings[i].CurrentValue.GreaterThan(holdings[j].CurrentValue)
	})

	return holdings, nil
}

// PortfolioSummary aggregates the holdings with realized gains, dividends and brokerage.
func (s *PortfolioService) PortfolioSummary(ctx context.Context, live bool) (summary model.PortfolioSummary, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.PortfolioSummary"

	slog.Debug("PortfolioSummary start", slog.String("rqID", rqID), slog.String("op", op), slog.Bool("live", live))
	defer func() {
		slog.Debug("PortfolioSummary finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if live {
		summary, err = s.cache.GetSummary(ctx)
		if err == nil {
			return summary, nil
		}
		slog.Debug("can't get summary from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	gen := s.summaryGen.Load()

	holdings, err := s.Holdings(ctx, live)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	summary, err = s.summarize(ctx, holdings)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	if live && summary.StalePrices == 0 {
		s.cacheSummary(ctx, gen, summary)
	}

	return summary, nil
}

// cacheSummary stores a summary computed at generation gen. A write that happened meanwhile
// makes it outdated, so it is either not stored or flushed right after storing.
func (s *PortfolioService) cacheSummary(ctx context.Context, gen uint64, summary model.PortfolioSummary) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.cacheSummary"

	if s.summaryGen.Load() != gen {
		slog.Debug("summary is outdated, not cached", slog.String("rqID", rqID), slog.String("op", op))
		return
	}

	if err := s.cache.SetSummary(ctx, summary); err != nil {
		slog.Warn("can't cache summary", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return
	}

	if s.summaryGen.Load() != gen {
		if err := s.cache.FlushSummary(ctx); err != nil {
			slog.Error("got error from cache.FlushSummary", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}
}

func (s *PortfolioService) summarize(ctx context.Context, holdings []model.Holding) (model.PortfolioSummary, error) {
	summary := model.PortfolioSummary{TotalStocks: len(holdings), GeneratedAt: s.now()}

	for _, h := range holdings {
		summary.TotalInvested = summary.TotalInvested.Add(h.Invested)
		summary.CurrentValue = summary.CurrentValue.Add(h.CurrentValue)
		if h.Stale {
			summary.StalePrices++
		}

		switch h.PnL.Sign() {
		case 1:
			summary.Gainers++
		case -1:
			summary.Losers++
		default:
			summary.Neutral++
		}

		performer := &model.Performer{StockCode: h.StockCode, StockName: h.StockName, PnLPct: h.PnLPct}
		if summary.Best == nil || h.PnLPct.GreaterThan(summary.Best.PnLPct) {
			summary.Best = performer
		}
		if summary.Worst == nil || h.PnLPct.LessThan(summary.Worst.PnLPct) {
			summary.Worst = performer
		}
	}
	summary.TotalPnL = summary.CurrentValue.Sub(summary.TotalInvested)
	summary.TotalPnLPct = accounting.Pct(summary.TotalPnL, summary.TotalInvested)

	realized, _, err := s.TotalRealizedPnL(ctx, nil)
	if err != nil {
		return model.PortfolioSummary{}, err
	}
	summary.RealizedPnL = realized

	// dividends of closed positions still count
	positions, err := s.repo.GetPositions(ctx)
	if err != nil {
		return model.PortfolioSummary{}, err
	}
	for _, pos := range positions {
		summary.DividendIncome = summary.DividendIncome.Add(pos.DividendIncome)
	}

	trades, err := s.repo.GetTrades(ctx, model.TradeFilter{})
	if err != nil {
		return model.PortfolioSummary{}, err
	}
	for _, t := range trades {
		summary.BrokeragePaid = summary.BrokeragePaid.Add(t.Brokerage)
	}

	return summary, nil
}

// holding values one position. Without any known price it is valued at cost and marked stale.
func (s *PortfolioService) holding(pos model.Position, quotes map[string]model.Quote, live bool) model.Holding {
	h := model.Holding{Position: pos}

	quote, ok := quotes[pos.StockCode]
	switch {
	case ok:
		h.CurrentPrice, h.PriceAsOf = quote.Price, quote.AsOf
	case pos.LastPrice.IsPositive():
		h.CurrentPrice, h.PriceAsOf = pos.LastPrice, pos.LastPriceAt
		h.Stale = live
	default:
		h.CurrentPrice = pos.AvgCost
		h.Stale = true
	}

	q := decimal.NewFromInt(pos.Quantity)
	h.CurrentValue = h.CurrentPrice.Mul(q)
	h.PnL = accounting.Unrealized(pos, h.CurrentPrice)
	h.PnLPct = accounting.Pct(h.PnL, pos.Invested)

	return h
}

// quotes resolves prices from the cache first and asks the quote API for the misses.
// Codes with no quote are simply absent from the result.
func (s *PortfolioService) quotes(ctx context.Context, codes []string) map[string]model.Quote {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.quotes"

	res := make(map[string]model.Quote, len(codes))
	misses := make([]string, 0, len(codes))
	for _, code := range codes {
		quote, err := s.cache.GetQuote(ctx, code)
		metrics.RecordCacheLookup(err == nil)
		if err != nil {
			misses = append(misses, code)
			continue
		}
		res[code] = quote
	}

	if len(misses) == 0 {
		return res
	}

	fetched, err := s.quoteApi.GetQuotes(ctx, misses)
	if err != nil {
		slog.Warn("can't get quotes from api", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return res
	}

	toCache := make([]model.Quote, 0, len(fetched))
	for code, quote := range fetched {
		res[code] = quote
		toCache = append(toCache, quote)
	}
	if len(toCache) > 0 {
		go s.cache.SetQuotes(context.WithoutCancel(ctx), toCache)
	}

	return res
}

// Quote resolves a single live quote.
func (s *PortfolioService) Quote(ctx context.Context, code string) (model.Quote, error) {
	quote, err := s.cache.GetQuote(ctx, code)
	metrics.RecordCacheLookup(err == nil)
	if err == nil {
		return quote, nil
	}

	quote, err = s.quoteApi.GetQuote(ctx, code)
	if err != nil {
		if !errors.Is(err, accounting.ErrQuoteUnavailable) {
			return model.Quote{}, errors.Join(accounting.ErrQuoteUnavailable, err)
		}
		return model.Quote{}, err
	}

	go s.cache.SetQuotes(context.WithoutCancel(ctx), []model.Quote{quote})

	return quote, nil
}
