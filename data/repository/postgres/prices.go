package postgres

import (
	"context"

	"github.com/KotFed0t/portfolio_tracker/internal/converter/dbConverter"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/dbModel"
	"github.com/shopspring/decimal"
)

func (r *Postgres) UpsertPriceBar(ctx context.Context, bar model.PriceBar) (err error) {
	query := `
		INSERT INTO price_history(stock_code, price_date, open, high, low, close, volume, source)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (stock_code, price_date) DO UPDATE
		SET open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume,
			source = EXCLUDED.source
		`

	defer logOp(ctx, "Postgres.UpsertPriceBar", query)(&err)

	_, err = r.txOrDb(ctx).ExecContext(
		ctx, query,
		bar.StockCode,
		bar.Date,
		optional(bar.Open),
		optional(bar.High),
		optional(bar.Low),
		bar.Close,
		bar.Volume,
		bar.Source,
	)
	return mapPgErr(err)
}

func (r *Postgres) GetPriceHistory(ctx context.Context, code string, limit int) (bars []model.PriceBar, err error) {
	query := `
		SELECT stock_code, price_date, open, high, low, close, volume, source
		FROM price_history
		WHERE stock_code = $1
		ORDER BY price_date DESC
		LIMIT $2
		`

	defer logOp(ctx, "Postgres.GetPriceHistory", query)(&err)

	var dbBars []dbModel.PriceBar
	err = r.txOrDb(ctx).SelectContext(ctx, &dbBars, query, code, limit)
	if err != nil {
		return nil, err
	}

	bars = make([]model.PriceBar, 0, len(dbBars))
	for _, b := range dbBars {
		bars = append(bars, dbConverter.ConvertPriceBar(b))
	}

	return bars, nil
}

func optional(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: !d.IsZero()}
}
