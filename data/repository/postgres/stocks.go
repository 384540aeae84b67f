package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_tracker/data/repository"
	"github.com/KotFed0t/portfolio_tracker/internal/converter/dbConverter"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/dbModel"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/shopspring/decimal"
)

// UpsertStock creates the stock on first reference. A non-empty name replaces the stored one.
func (r *Postgres) UpsertStock(ctx context.Context, code, name string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpsertStock"
	query := `
		INSERT INTO stocks(code, name) VALUES($1, $2)
		ON CONFLICT (code) DO UPDATE
		SET name = CASE WHEN EXCLUDED.name <> '' THEN EXCLUDED.name ELSE stocks.name END
		`

	slog.Debug("UpsertStock start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpsertStock failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpsertStock completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, code, name)
	return err
}

func (r *Postgres) GetStock(ctx context.Context, code string) (stock model.Stock, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetStock"
	query := `
		SELECT code, name, is_active, last_price, last_price_at, created_at
		FROM stocks
		WHERE code = $1
		`

	slog.Debug("GetStock start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("GetStock failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetStock completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbStock := dbModel.Stock{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, code).StructScan(&dbStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Stock{}, repository.ErrNotFound
		}
		return model.Stock{}, err
	}

	return dbConverter.ConvertStock(dbStock), nil
}

func (r *Postgres) GetStocks(ctx context.Context, onlyActive bool) (stocks []model.Stock, err error) {
	query := `
		SELECT code, name, is_active, last_price, last_price_at, created_at
		FROM stocks
		WHERE ($1 = FALSE OR is_active)
		ORDER BY code
		`

	defer logOp(ctx, "Postgres.GetStocks", query)(&err)

	var dbStocks []dbModel.Stock
	err = r.txOrDb(ctx).SelectContext(ctx, &dbStocks, query, onlyActive)
	if err != nil {
		return nil, err
	}

	stocks = make([]model.Stock, 0, len(dbStocks))
	for _, s := range dbStocks {
		stocks = append(stocks, dbConverter.ConvertStock(s))
	}

	return stocks, nil
}

func (r *Postgres) SetStockActive(ctx context.Context, code string, active bool) (err error) {
	query := `UPDATE stocks SET is_active = $2 WHERE code = $1`

	defer logOp(ctx, "Postgres.SetStockActive", query)(&err)

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, code, active)
	if err != nil {
		return err
	}

	return expectAffected(res)
}

// UpdateLastPrice only touches the price columns, so it never conflicts with a position rebuild.
func (r *Postgres) UpdateLastPrice(ctx context.Context, code string, price decimal.Decimal, asOf time.Time) (err error) {
	query := `UPDATE stocks SET last_price = $2, last_price_at = $3 WHERE code = $1`

	defer logOp(ctx, "Postgres.UpdateLastPrice", query)(&err)

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, code, price, asOf)
	if err != nil {
		return err
	}

	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func mapPgErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return repository.ErrAlreadyExists
		case "23503": // foreign_key_violation
			return repository.ErrNotFound
		}
	}
	return err
}
