package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/KotFed0t/portfolio_tracker/data/repository"
	"github.com/KotFed0t/portfolio_tracker/internal/converter/dbConverter"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/dbModel"
)

const positionColumns = `
		SELECT p.stock_code, s.name AS stock_name, p.quantity, p.avg_cost, p.invested,
			p.dividend_income, s.last_price, s.last_price_at, p.updated_at
		FROM positions p
		JOIN stocks s ON s.code = p.stock_code`

// UpsertPosition replaces the cached position row in a single statement.
func (r *Postgres) UpsertPosition(ctx context.Context, pos model.Position) (err error) {
	query := `
		INSERT INTO positions(stock_code, quantity, avg_cost, invested, dividend_income, updated_at)
		VALUES($1, $2, $3, $4, $5, now())
		ON CONFLICT (stock_code) DO UPDATE
		SET quantity = EXCLUDED.quantity,
			avg_cost = EXCLUDED.avg_cost,
			invested = EXCLUDED.invested,
			dividend_income = EXCLUDED.dividend_income,
			updated_at = EXCLUDED.updated_at
		`

	defer logOp(ctx, "Postgres.UpsertPosition", query)(&err)

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, pos.StockCode, pos.Quantity, pos.AvgCost, pos.Invested, pos.DividendIncome)
	return mapPgErr(err)
}

func (r *Postgres) GetPosition(ctx context.Context, code string) (pos model.Position, err error) {
	query := positionColumns + ` WHERE p.stock_code = $1`

	defer logOp(ctx, "Postgres.GetPosition", query)(&err)

	dbPosition := dbModel.Position{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, code).StructScan(&dbPosition)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Position{}, repository.ErrNotFound
		}
		return model.Position{}, err
	}

	return dbConverter.ConvertPosition(dbPosition), nil
}

func (r *Postgres) GetPositions(ctx context.Context) (positions []model.Position, err error) {
	query := positionColumns + ` ORDER BY p.stock_code`

	defer logOp(ctx, "Postgres.GetPositions", query)(&err)

	var dbPositions []dbModel.Position
	err = r.txOrDb(ctx).SelectContext(ctx, &dbPositions, query)
	if err != nil {
		return nil, err
	}

	positions = make([]model.Position, 0, len(dbPositions))
	for _, p := range dbPositions {
		positions = append(positions, dbConverter.ConvertPosition(p))
	}

	return positions, nil
}
