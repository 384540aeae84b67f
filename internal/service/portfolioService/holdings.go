package portfolioService

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/internal/accounting"
	"github.com/KotFed0t/portfolio_tracker/internal/metrics"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
)

// Rebuild replays one stock and replaces its cached position. On failure the old row stays.
func (s *PortfolioService) Rebuild(ctx context.Context, code string) (pos model.Position, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.Rebuild"

	slog.Debug("Rebuild start", slog.String("rqID", rqID), slog.String("op", op), slog.String("code", code))
	defer func() {
		slog.Debug("Rebuild finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("code", code))
	}()

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.RebuildDuration.WithLabelValues("stock"))

	has, err := s.repo.HasTrades(ctx, code)
	if err != nil {
		return model.Position{}, err
	}
	if !has {
		return model.Position{}, fmt.Errorf("%w: %s has no trades", accounting.ErrUnknownStock, code)
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		pos, err = s.rebuild(ctx, code)
		return err
	})
	if err != nil {
		slog.Error("rebuild failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Position{}, err
	}

	s.flushSummary(ctx)

	return pos, nil
}

// RebuildAll replays every stock in one transaction.
func (s *PortfolioService) RebuildAll(ctx context.Context) (positions map[string]model.Position, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RebuildAll"

	slog.Debug("RebuildAll start", slog.String("rqID", rqID), slog.String("op", op))

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.RebuildDuration.WithLabelValues("all"))

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		grouped, err := s.allEvents(ctx)
		if err != nil {
			return err
		}

		positions = make(map[string]model.Position, len(grouped))
		for code, events := range grouped {
			pos, err := accounting.Aggregate(code, events)
			if err != nil {
				return fmt.Errorf("%s: %w", code, err)
			}
			if err = s.repo.UpsertPosition(ctx, pos); err != nil {
				return err
			}
			positions[code] = pos
		}
		return nil
	})
	if err != nil {
		slog.Error("rebuild all failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	s.flushSummary(ctx)

	slog.Info("positions rebuilt", slog.String("rqID", rqID), slog.Int("stocks", len(positions)))

	return positions, nil
}

// rebuild must run inside a transaction.
func (s *PortfolioService) rebuild(ctx context.Context, code string) (model.Position, error) {
	events, err := s.events(ctx, code)
	if err != nil {
		return model.Position{}, err
	}

	pos, err := accounting.Aggregate(code, events)
	if err != nil {
		return model.Position{}, err
	}

	if err = s.repo.UpsertPosition(ctx, pos); err != nil {
		return model.Position{}, err
	}

	return pos, nil
}

// Positions returns the cached rows, closed positions included.
func (s *PortfolioService) Positions(ctx context.Context) ([]model.Position, error) {
	return s.repo.GetPositions(ctx)
}
