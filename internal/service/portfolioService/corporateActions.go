package portfolioService

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/accounting"
	"github.com/KotFed0t/portfolio_tracker/internal/metrics"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/shopspring/decimal"
)

func (s *PortfolioService) RecordDividend(ctx context.Context, code string, date time.Time, amountPerShare decimal.Decimal, notes string) (int64, error) {
	return s.recordAction(ctx, model.CorporateAction{
		StockCode:      code,
		Kind:           model.Dividend,
		Date:           date,
		AmountPerShare: amountPerShare,
		Notes:          notes,
	})
}

func (s *PortfolioService) RecordBonus(ctx context.Context, code string, date time.Time, ratio model.Ratio, notes string) (int64, error) {
	return s.recordAction(ctx, model.CorporateAction{
		StockCode: code,
		Kind:      model.Bonus,
		Date:      date,
		Ratio:     ratio,
		Notes:     notes,
	})
}

func (s *PortfolioService) RecordSplit(ctx context.Context, code string, date time.Time, ratio model.Ratio, notes string) (int64, error) {
	return s.recordAction(ctx, model.CorporateAction{
		StockCode: code,
		Kind:      model.Split,
		Date:      date,
		Ratio:     ratio,
		Notes:     notes,
	})
}

func (s *PortfolioService) recordAction(ctx context.Context, action model.CorporateAction) (id int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.recordAction"

	slog.Debug(
		"recordAction start",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.String("code", action.StockCode),
		slog.String("kind", string(action.Kind)),
	)
	defer func() {
		metrics.ActionsRecorded.WithLabelValues(string(action.Kind), metrics.Status(err)).Inc()
		slog.Debug("recordAction finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("id", id))
	}()

	action.StockCode = strings.TrimSpace(action.StockCode)
	if err = accounting.ValidateAction(action); err != nil {
		return 0, err
	}
	action.Date = asDate(action.Date)

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		has, err := s.repo.HasTrades(ctx, action.StockCode)
		if err != nil {
			return err
		}
		if !has {
			return fmt.Errorf("%w: %s has no trades", accounting.ErrUnknownStock, action.StockCode)
		}

		id, err = s.repo.InsertCorporateAction(ctx, action)
		if err != nil {
			return err
		}

		// a bonus or split dated before a SELL changes what that SELL could cover
		_, err = s.rebuild(ctx, action.StockCode)
		return err
	})
	if err != nil {
		slog.Warn("corporate action rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return 0, err
	}

	s.flushSummary(ctx)

	return id, nil
}

func (s *PortfolioService) ListActions(ctx context.Context, filter model.ActionFilter) ([]model.CorporateAction, error) {
	actions, err := s.repo.GetCorporateActions(ctx, filter)
	if err != nil {
		slog.Error(
			"got error from repo.GetCorporateActions",
			slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.String("op", "PortfolioService.ListActions"),
			slog.String("err", err.Error()),
		)
		return nil, err
	}
	return actions, nil
}
