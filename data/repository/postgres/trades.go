package postgres

import (
	"context"
	"fmt"

	"github.com/KotFed0t/portfolio_tracker/internal/converter/dbConverter"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/dbModel"
)

func (r *Postgres) InsertTrade(ctx context.Context, trade model.TradeEvent) (id int64, err error) {
	query := `
		INSERT INTO trades(stock_code, trade_date, direction, quantity, price, brokerage, notes)
		VALUES($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
		`

	defer logOp(ctx, "Postgres.InsertTrade", query)(&err)

	err = r.txOrDb(ctx).QueryRowContext(
		ctx, query,
		trade.StockCode,
		trade.Date,
		string(trade.Direction),
		trade.Quantity,
		trade.Price,
		trade.Brokerage,
		trade.Notes,
	).Scan(&id)
	if err != nil {
		return 0, mapPgErr(err)
	}

	return id, nil
}

func (r *Postgres) GetTrades(ctx context.Context, filter model.TradeFilter) (trades []model.TradeEvent, err error) {
	query := `
		SELECT t.id, t.stock_code, s.name AS stock_name, t.trade_date, t.direction,
			t.quantity, t.price, t.brokerage, t.notes, t.created_at
		FROM trades t
		JOIN stocks s ON s.code = t.stock_code
		WHERE 1 = 1`

	args := []interface{}{}
	argCount := 0

	if filter.StockCode != "" {
		argCount++
		query += fmt.Sprintf(" AND t.stock_code = $%d", argCount)
		args = append(args, filter.StockCode)
	}

	if filter.From != nil {
		argCount++
		query += fmt.Sprintf(" AND t.trade_date >= $%d", argCount)
		args = append(args, *filter.From)
	}

	if filter.To != nil {
		argCount++
		query += fmt.Sprintf(" AND t.trade_date <= $%d", argCount)
		args = append(args, *filter.To)
	}

	if filter.Newest {
		query += " ORDER BY t.trade_date DESC, t.id DESC"
	} else {
		query += " ORDER BY t.trade_date, t.id"
	}

	if filter.Limit > 0 {
		argCount++
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, filter.Limit)
	}

	defer logOp(ctx, "Postgres.GetTrades", query)(&err)

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var trade dbModel.Trade
		err = rows.StructScan(&trade)
		if err != nil {
			return nil, err
		}
		trades = append(trades, dbConverter.ConvertTrade(trade))
	}

	return trades, rows.Err()
}

func (r *Postgres) HasTrades(ctx context.Context, code string) (exists bool, err error) {
	query := `SELECT EXISTS(SELECT 1 FROM trades WHERE stock_code = $1)`

	defer logOp(ctx, "Postgres.HasTrades", query)(&err)

	err = r.txOrDb(ctx).GetContext(ctx, &exists, query, code)
	return exists, err
}
