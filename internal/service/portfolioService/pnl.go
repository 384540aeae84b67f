package portfolioService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_tracker/data/repository"
	"github.com/KotFed0t/portfolio_tracker/internal/accounting"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/shopspring/decimal"
)

// RealizedPnL replays the FIFO book of one stock. A non-nil asOf ignores later events.
func (s *PortfolioService) RealizedPnL(ctx context.Context, code string, asOf *time.Time) (decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RealizedPnL"

	events, err := s.stockEvents(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}
	if asOf != nil {
		events = accounting.Until(events, asDate(*asOf))
	}

	realized, err := accounting.Realized(code, events)
	if err != nil {
		slog.Error("FIFO replay failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return decimal.Zero, err
	}

	return realized, nil
}

// TotalRealizedPnL sums the FIFO gains of every stock, per stock.
func (s *PortfolioService) TotalRealizedPnL(ctx context.Context, asOf *time.Time) (total decimal.Decimal, perStock map[string]decimal.Decimal, err error) {
	grouped, err := s.allEvents(ctx)
	if err != nil {
		return decimal.Zero, nil, err
	}

	perStock = make(map[string]decimal.Decimal, len(grouped))
	for code, events := range grouped {
		if asOf != nil {
			events = accounting.Until(events, asDate(*asOf))
		}
		realized, err := accounting.Realized(code, events)
		if err != nil {
			return decimal.Zero, nil, fmt.Errorf("%s: %w", code, err)
		}
		perStock[code] = realized
		total = total.Add(realized)
	}

	return total, perStock, nil
}

// UnrealizedPnL values the weighted-average position at price.
func (s *PortfolioService) UnrealizedPnL(ctx context.Context, code string, price decimal.Decimal) (decimal.Decimal, error) {
	pos, err := s.repo.GetPosition(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("%w: %s", accounting.ErrUnknownStock, code)
		}
		return decimal.Zero, err
	}

	return accounting.Unrealized(pos, price), nil
}

// StockSummary combines both cost models of one stock at the given price.
func (s *PortfolioService) StockSummary(ctx context.Context, code string, price decimal.Decimal) (model.StockSummary, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.StockSummary"

	slog.Debug("StockSummary start", slog.String("rqID", rqID), slog.String("op", op), slog.String("code", code))

	stock, err := s.stockExists(ctx, code)
	if err != nil {
		return model.StockSummary{}, err
	}

	events, err := s.stockEvents(ctx, code)
	if err != nil {
		return model.StockSummary{}, err
	}

	summary, err := accounting.Summarize(code, events, price)
	if err != nil {
		slog.Error("summarize failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.StockSummary{}, err
	}
	summary.StockName = stock.Name

	return summary, nil
}

// StockOverview is StockSummary at the resolved current price.
func (s *PortfolioService) StockOverview(ctx context.Context, code string, live bool) (model.StockSummary, model.Holding, error) {
	pos, err := s.repo.GetPosition(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.StockSummary{}, model.Holding{}, fmt.Errorf("%w: %s", accounting.ErrUnknownStock, code)
		}
		return model.StockSummary{}, model.Holding{}, err
	}

	var quotes map[string]model.Quote
	if live {
		quotes = s.quotes(ctx, []string{code})
	}
	holding := s.holding(pos, quotes, live)

	summary, err := s.StockSummary(ctx, code, holding.CurrentPrice)
	if err != nil {
		return model.StockSummary{}, model.Holding{}, err
	}

	return summary, holding, nil
}

func (s *PortfolioService) stockEvents(ctx context.Context, code string) ([]accounting.Event, error) {
	has, err := s.repo.HasTrades(ctx, code)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, fmt.Errorf("%w: %s has no trades", accounting.ErrUnknownStock, code)
	}
	return s.events(ctx, code)
}
