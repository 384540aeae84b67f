package portfolioService

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/utils"
)

const priceSource = "BSE"

// UpdatePrices is the price job. Outside market hours it does nothing when configured so.
func (s *PortfolioService) UpdatePrices(ctx context.Context) error {
	if s.cfg.Jobs.MarketHoursOnly {
		open, err := s.MarketOpen(s.now())
		if err != nil {
			return err
		}
		if !open {
			slog.Info(
				"market is closed, skip price update",
				slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
				slog.String("op", "PortfolioService.UpdatePrices"),
			)
			return nil
		}
	}

	_, err := s.RefreshPrices(ctx)
	return err
}

// RefreshPrices fetches every active stock, stores the last price and the daily bar,
// then evaluates the alert rules against the new price. It returns how many stocks were updated.
func (s *PortfolioService) RefreshPrices(ctx context.Context) (updated int, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RefreshPrices"

	stocks, err := s.repo.GetStocks(ctx, true)
	if err != nil {
		slog.Error("got error from repo.GetStocks", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return 0, err
	}
	if len(stocks) == 0 {
		return 0, nil
	}

	codes := make([]string, 0, len(stocks))
	for _, stock := range stocks {
		codes = append(codes, stock.Code)
	}

	quotes, err := s.quoteApi.GetQuotes(ctx, codes)
	if err != nil {
		slog.Error("got error from quoteApi.GetQuotes", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return 0, err
	}

	fetched := make([]model.Quote, 0, len(quotes))
	for _, stock := range stocks {
		quote, ok := quotes[stock.Code]
		if !ok {
			continue
		}
		fetched = append(fetched, quote)

		if err := s.storeQuote(ctx, stock, quote); err != nil {
			slog.Error(
				"can't store quote",
				slog.String("rqID", rqID),
				slog.String("op", op),
				slog.String("code", stock.Code),
				slog.String("err", err.Error()),
			)
			continue
		}
		updated++
	}

	if len(fetched) > 0 {
		if err := s.cache.SetQuotes(ctx, fetched); err != nil {
			slog.Warn("can't cache quotes", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}
	s.flushSummary(ctx)

	slog.Info("prices updated", slog.String("rqID", rqID), slog.Int("updated", updated), slog.Int("stocks", len(stocks)))

	return updated, nil
}

// UpdatePrice refreshes one stock on demand.
func (s *PortfolioService) UpdatePrice(ctx context.Context, code string) (model.Quote, error) {
	stock, err := s.repo.GetStock(ctx, code)
	if err != nil {
		return model.Quote{}, notFound(err)
	}
	if !stock.Active {
		return model.Quote{}, service.ErrStockNotActive
	}

	quote, err := s.quoteApi.GetQuote(ctx, code)
	if err != nil {
		return model.Quote{}, err
	}

	if err = s.storeQuote(ctx, stock, quote); err != nil {
		return model.Quote{}, err
	}

	go s.cache.SetQuotes(context.WithoutCancel(ctx), []model.Quote{quote})
	s.flushSummary(ctx)

	return quote, nil
}

// storeQuote records the price and its daily bar, then evaluates alerts against the
// price stored before this quote.
func (s *PortfolioService) storeQuote(ctx context.Context, stock model.Stock, quote model.Quote) error {
	if stock.Name == "" && quote.StockName != "" {
		if err := s.repo.UpsertStock(ctx, stock.Code, quote.StockName); err != nil {
			return err
		}
		stock.Name = quote.StockName
	}

	bar := model.PriceBar{
		StockCode: stock.Code,
		Date:      s.marketDate(quote.AsOf),
		Open:      quote.Open,
		High:      quote.High,
		Low:       quote.Low,
		Close:     quote.Price,
		Volume:    quote.Volume,
		Source:    priceSource,
	}

	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateLastPrice(ctx, stock.Code, quote.Price, quote.AsOf); err != nil {
			return err
		}
		return s.repo.UpsertPriceBar(ctx, bar)
	})
	if err != nil {
		return err
	}

	s.checkAlerts(ctx, model.Position{
		StockCode:   stock.Code,
		StockName:   stock.Name,
		LastPrice:   stock.LastPrice,
		LastPriceAt: stock.LastPriceAt,
	}, quote.Price)

	return nil
}

func (s *PortfolioService) PriceHistory(ctx context.Context, code string, limit int) ([]model.PriceBar, error) {
	if _, err := s.repo.GetStock(ctx, code); err != nil {
		return nil, notFound(err)
	}
	return s.repo.GetPriceHistory(ctx, code, limit)
}

func (s *PortfolioService) Stocks(ctx context.Context, onlyActive bool) ([]model.Stock, error) {
	return s.repo.GetStocks(ctx, onlyActive)
}

// DeactivateStock stops price fetching for a code. The ledger is untouched.
func (s *PortfolioService) DeactivateStock(ctx context.Context, code string) error {
	return s.setStockActive(ctx, code, false)
}

func (s *PortfolioService) ActivateStock(ctx context.Context, code string) error {
	return s.setStockActive(ctx, code, true)
}

func (s *PortfolioService) setStockActive(ctx context.Context, code string, active bool) error {
	err := s.repo.SetStockActive(ctx, code, active)
	if err != nil {
		slog.Error(
			"got error from repo.SetStockActive",
			slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.String("code", code),
			slog.String("err", err.Error()),
		)
		return notFound(err)
	}
	return nil
}

// MarketOpen reports whether t falls inside the configured trading session on a weekday.
func (s *PortfolioService) MarketOpen(t time.Time) (bool, error) {
	loc, err := time.LoadLocation(s.cfg.Jobs.MarketTimezone)
	if err != nil {
		return false, fmt.Errorf("market timezone %q: %w", s.cfg.Jobs.MarketTimezone, err)
	}
	local := t.In(loc)

	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return false, nil
	}

	open, err := clock(local, s.cfg.Jobs.MarketOpen)
	if err != nil {
		return false, err
	}
	closing, err := clock(local, s.cfg.Jobs.MarketClose)
	if err != nil {
		return false, err
	}

	return !local.Before(open) && !local.After(closing), nil
}

// clock places an "HH:MM" time on the day of t.
func clock(t time.Time, hhmm string) (time.Time, error) {
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("market time %q: %w", hhmm, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), parsed.Hour(), parsed.Minute(), 0, 0, t.Location()), nil
}

// marketDate is the trading day of t in the exchange timezone.
func (s *PortfolioService) marketDate(t time.Time) time.Time {
	if loc, err := time.LoadLocation(s.cfg.Jobs.MarketTimezone); err == nil {
		t = t.In(loc)
	}
	return asDate(t)
}
