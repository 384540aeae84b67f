package postgres

import (
	"context"
	"fmt"

	"github.com/KotFed0t/portfolio_tracker/internal/converter/dbConverter"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/dbModel"
)

func (r *Postgres) InsertCorporateAction(ctx context.Context, action model.CorporateAction) (id int64, err error) {
	query := `
		INSERT INTO corporate_actions(stock_code, action_type, action_date, amount_per_share,
			ratio_numerator, ratio_denominator, notes)
		VALUES($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
		`

	defer logOp(ctx, "Postgres.InsertCorporateAction", query)(&err)

	err = r.txOrDb(ctx).QueryRowContext(
		ctx, query,
		action.StockCode,
		string(action.Kind),
		action.Date,
		action.AmountPerShare,
		action.Ratio.Numerator,
		action.Ratio.Denominator,
		action.Notes,
	).Scan(&id)
	if err != nil {
		return 0, mapPgErr(err)
	}

	return id, nil
}

func (r *Postgres) GetCorporateActions(ctx context.Context, filter model.ActionFilter) (actions []model.CorporateAction, err error) {
	query := `
		SELECT id, stock_code, action_type, action_date, amount_per_share,
			ratio_numerator, ratio_denominator, notes, created_at
		FROM corporate_actions
		WHERE 1 = 1`

	args := []interface{}{}

	if filter.StockCode != "" {
		args = append(args, filter.StockCode)
		query += fmt.Sprintf(" AND stock_code = $%d", len(args))
	}

	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		query += fmt.Sprintf(" AND action_type = $%d", len(args))
	}

	query += " ORDER BY action_date, id"

	defer logOp(ctx, "Postgres.GetCorporateActions", query)(&err)

	var dbActions []dbModel.CorporateAction
	err = r.txOrDb(ctx).SelectContext(ctx, &dbActions, query, args...)
	if err != nil {
		return nil, err
	}

	actions = make([]model.CorporateAction, 0, len(dbActions))
	for _, a := range dbActions {
		actions = append(actions, dbConverter.ConvertCorporateAction(a))
	}

	return actions, nil
}
