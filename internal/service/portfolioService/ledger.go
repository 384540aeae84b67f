package portfolioService

import (
	"context"
	"log/slog"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/internal/accounting"
	"github.com/KotFed0t/portfolio_tracker/internal/metrics"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/utils"
)

// RecordTrade appends a trade and refreshes the cached position in the same transaction.
// A SELL the replay cannot cover is rolled back with accounting.ErrInsufficientQuantity.
func (s *PortfolioService) RecordTrade(ctx context.Context, trade model.TradeEvent) (id int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RecordTrade"

	slog.Debug("RecordTrade start", slog.String("rqID", rqID), slog.String("op", op), slog.String("code", trade.StockCode))
	defer func() {
		metrics.TradesRecorded.WithLabelValues(string(trade.Direction), metrics.Status(err)).Inc()
		slog.Debug("RecordTrade finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("id", id))
	}()

	trade.StockCode = strings.TrimSpace(trade.StockCode)
	trade.Direction = model.Direction(strings.ToUpper(string(trade.Direction)))
	if err = accounting.ValidateTrade(trade); err != nil {
		return 0, err
	}
	trade.Date = asDate(trade.Date)

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.UpsertStock(ctx, trade.StockCode, strings.TrimSpace(trade.StockName)); err != nil {
			return err
		}

		id, err = s.repo.InsertTrade(ctx, trade)
		if err != nil {
			return err
		}

		_, err = s.rebuild(ctx, trade.StockCode)
		return err
	})
	if err != nil {
		slog.Warn("trade rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return 0, err
	}

	s.flushSummary(ctx)

	return id, nil
}

// ImportTrades records the trades in the given order inside one transaction.
// The first rejected trade rolls the whole batch back and is reported as a *service.BatchError.
func (s *PortfolioService) ImportTrades(ctx context.Context, trades []model.TradeEvent) (ids []int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ImportTrades"

	slog.Debug("ImportTrades start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("trades", len(trades)))

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		ids = make([]int64, 0, len(trades))
		for i, trade := range trades {
			id, err := s.RecordTrade(ctx, trade)
			if err != nil {
				return &service.BatchError{Index: i, Err: err}
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		slog.Warn("import rolled back", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	s.flushSummary(ctx)

	slog.Info("trades imported", slog.String("rqID", rqID), slog.String("op", op), slog.Int("trades", len(ids)))

	return ids, nil
}

// ListTrades is ordered by (date, id), newest first when the filter asks for it.
func (s *PortfolioService) ListTrades(ctx context.Context, filter model.TradeFilter) ([]model.TradeEvent, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ListTrades"

	trades, err := s.repo.GetTrades(ctx, filter)
	if err != nil {
		slog.Error("got error from repo.GetTrades", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return trades, nil
}

// TradeHistory returns the latest trades, optionally for one stock.
func (s *PortfolioService) TradeHistory(ctx context.Context, code string, limit int) ([]model.TradeEvent, error) {
	return s.ListTrades(ctx, model.TradeFilter{StockCode: code, Limit: limit, Newest: true})
}

// events loads the merged ledger of one stock in replay order.
func (s *PortfolioService) events(ctx context.Context, code string) ([]accounting.Event, error) {
	trades, err := s.repo.GetTrades(ctx, model.TradeFilter{StockCode: code})
	if err != nil {
		return nil, err
	}

	actions, err := s.repo.GetCorporateActions(ctx, model.ActionFilter{StockCode: code})
	if err != nil {
		return nil, err
	}

	return accounting.Merge(trades, actions), nil
}

// allEvents loads the whole ledger grouped per stock.
func (s *PortfolioService) allEvents(ctx context.Context) (map[string][]accounting.Event, error) {
	trades, err := s.repo.GetTrades(ctx, model.TradeFilter{})
	if err != nil {
		return nil, err
	}

	actions, err := s.repo.GetCorporateActions(ctx, model.ActionFilter{})
	if err != nil {
		return nil, err
	}

	return accounting.GroupByStock(accounting.Merge(trades, actions)), nil
}
