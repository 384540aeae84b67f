package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/converter/dbConverter"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/dbModel"
)

func (r *Postgres) InsertAlertRule(ctx context.Context, rule model.AlertRule) (id int64, err error) {
	query := `
		INSERT INTO alert_rules(stock_code, alert_type, condition, threshold_value, notes)
		VALUES($1, $2, $3, $4, $5)
		RETURNING id
		`

	defer logOp(ctx, "Postgres.InsertAlertRule", query)(&err)

	err = r.txOrDb(ctx).QueryRowContext(
		ctx, query,
		rule.StockCode,
		string(rule.Type),
		string(rule.Condition),
		rule.Threshold,
		rule.Notes,
	).Scan(&id)
	if err != nil {
		return 0, mapPgErr(err)
	}

	return id, nil
}

func (r *Postgres) GetAlertRules(ctx context.Context, code string, onlyActive bool) (rules []model.AlertRule, err error) {
	query := `
		SELECT id, stock_code, alert_type, condition, threshold_value, is_active,
			last_triggered, notes, created_at
		FROM alert_rules
		WHERE ($1 = '' OR stock_code = $1)
		AND ($2 = FALSE OR is_active)
		ORDER BY created_at DESC, id DESC
		`

	defer logOp(ctx, "Postgres.GetAlertRules", query)(&err)

	var dbRules []dbModel.AlertRule
	err = r.txOrDb(ctx).SelectContext(ctx, &dbRules, query, code, onlyActive)
	if err != nil {
		return nil, err
	}

	rules = make([]model.AlertRule, 0, len(dbRules))
	for _, rule := range dbRules {
		rules = append(rules, dbConverter.ConvertAlertRule(rule))
	}

	return rules, nil
}

func (r *Postgres) SetAlertRuleActive(ctx context.Context, id int64, active bool) (err error) {
	query := `UPDATE alert_rules SET is_active = $2 WHERE id = $1`

	defer logOp(ctx, "Postgres.SetAlertRuleActive", query)(&err)

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, id, active)
	if err != nil {
		return err
	}

	return expectAffected(res)
}

func (r *Postgres) DeleteAlertRule(ctx context.Context, id int64) (err error) {
	query := `DELETE FROM alert_rules WHERE id = $1`

	defer logOp(ctx, "Postgres.DeleteAlertRule", query)(&err)

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return expectAffected(res)
}

func (r *Postgres) MarkAlertTriggered(ctx context.Context, id int64, at time.Time) (err error) {
	query := `UPDATE alert_rules SET last_triggered = $2 WHERE id = $1`

	defer logOp(ctx, "Postgres.MarkAlertTriggered", query)(&err)

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, id, at)
	if err != nil {
		return err
	}

	return expectAffected(res)
}

func (r *Postgres) InsertAlertEvent(ctx context.Context, event model.AlertEvent) (id int64, err error) {
	query := `
		INSERT INTO alert_history(alert_rule_id, stock_code, alert_type, condition, threshold_value,
			trigger_value, price, message, triggered_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
		`

	defer logOp(ctx, "Postgres.InsertAlertEvent", query)(&err)

	err = r.txOrDb(ctx).QueryRowContext(
		ctx, query,
		event.RuleID,
		event.StockCode,
		string(event.Type),
		string(event.Condition),
		event.Threshold,
		event.Value,
		event.Price,
		event.Message,
		event.TriggeredAt,
	).Scan(&id)
	if err != nil {
		return 0, mapPgErr(err)
	}

	return id, nil
}

func (r *Postgres) GetAlertHistory(ctx context.Context, code string, limit int) (events []model.AlertEvent, err error) {
	query := `
		SELECT id, alert_rule_id, stock_code, alert_type, condition, threshold_value,
			trigger_value, price, message, triggered_at
		FROM alert_history
		WHERE ($1 = '' OR stock_code = $1)
		ORDER BY triggered_at DESC, id DESC`

	args := []interface{}{code}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	defer logOp(ctx, "Postgres.GetAlertHistory", query)(&err)

	var dbEvents []dbModel.AlertEvent
	err = r.txOrDb(ctx).SelectContext(ctx, &dbEvents, query, args...)
	if err != nil {
		return nil, err
	}

	events = make([]model.AlertEvent, 0, len(dbEvents))
	for _, e := range dbEvents {
		events = append(events, dbConverter.ConvertAlertEvent(e))
	}

	return events, nil
}
