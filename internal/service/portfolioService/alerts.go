package portfolioService

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/internal/alerting"
	"github.com/KotFed0t/portfolio_tracker/internal/metrics"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/shopspring/decimal"
)

func (s *PortfolioService) AddAlertRule(ctx context.Context, rule model.AlertRule) (int64, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.AddAlertRule"

	rule.StockCode = strings.TrimSpace(rule.StockCode)
	rule.Type = model.AlertType(strings.ToUpper(string(rule.Type)))
	rule.Condition = model.AlertCondition(strings.ToUpper(string(rule.Condition)))
	if err := alerting.Validate(rule); err != nil {
		return 0, err
	}

	if _, err := s.stockExists(ctx, rule.StockCode); err != nil {
		return 0, err
	}

	id, err := s.repo.InsertAlertRule(ctx, rule)
	if err != nil {
		slog.Error("got error from repo.InsertAlertRule", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return 0, err
	}

	slog.Info("alert rule added", slog.String("rqID", rqID), slog.Int64("id", id), slog.String("code", rule.StockCode))

	return id, nil
}

func (s *PortfolioService) ListAlertRules(ctx context.Context, code string, onlyActive bool) ([]model.AlertRule, error) {
	return s.repo.GetAlertRules(ctx, code, onlyActive)
}

func (s *PortfolioService) DeactivateAlertRule(ctx context.Context, id int64) error {
	return notFound(s.repo.SetAlertRuleActive(ctx, id, false))
}

func (s *PortfolioService) DeleteAlertRule(ctx context.Context, id int64) error {
	return notFound(s.repo.DeleteAlertRule(ctx, id))
}

func (s *PortfolioService) AlertHistory(ctx context.Context, code string, limit int) ([]model.AlertEvent, error) {
	return s.repo.GetAlertHistory(ctx, code, limit)
}

// checkAlerts fires the active rules of one stock. A rule that fired within the cooldown is skipped.
// Failures are logged, a broken rule never stops the price job.
func (s *PortfolioService) checkAlerts(ctx context.Context, pos model.Position, price decimal.Decimal) []model.AlertEvent {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.checkAlerts"

	rules, err := s.repo.GetAlertRules(ctx, pos.StockCode, true)
	if err != nil {
		slog.Error("got error from repo.GetAlertRules", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil
	}

	now := s.now()
	fired := make([]model.AlertEvent, 0)
	for _, rule := range rules {
		if rule.LastTriggered != nil && now.Sub(*rule.LastTriggered) < s.cfg.Alerts.Cooldown {
			continue
		}

		res := alerting.Evaluate(rule, pos, price)
		if !res.Met {
			continue
		}

		event := model.AlertEvent{
			RuleID:      rule.ID,
			StockCode:   rule.StockCode,
			Type:        rule.Type,
			Condition:   rule.Condition,
			Threshold:   rule.Threshold,
			Value:       res.Value,
			Price:       price,
			Message:     alerting.Message(rule, pos, price, res),
			TriggeredAt: now,
		}

		if err := s.saveAlertEvent(ctx, &event); err != nil {
			slog.Error("can't save alert event", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			continue
		}
		metrics.AlertsTriggered.WithLabelValues(string(rule.Type)).Inc()

		if err := s.notifier.Notify(ctx, event); err != nil {
			slog.Error("can't deliver alert", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
		fired = append(fired, event)
	}

	return fired
}

func (s *PortfolioService) saveAlertEvent(ctx context.Context, event *model.AlertEvent) error {
	return s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		id, err := s.repo.InsertAlertEvent(ctx, *event)
		if err != nil {
			return fmt.Errorf("insert alert event: %w", err)
		}
		event.ID = id
		return s.repo.MarkAlertTriggered(ctx, event.RuleID, event.TriggeredAt)
	})
}
