package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

const (
	colDate      = "trade_date"
	colCode      = "scrip_code"
	colName      = "scrip_name"
	colQuantity  = "quantity"
	colPrice     = "price"
	colType      = "trade_type"
	colBrokerage = "brokerage"
	colNotes     = "notes"
)

var required = []string{colDate, colCode, colQuantity, colPrice, colType}

var aliases = map[string]string{
	"date":             colDate,
	"trade date":       colDate,
	"transaction date": colDate,

	"script":     colCode,
	"scrip":      colCode,
	"stock code": colCode,
	"symbol":     colCode,
	"code":       colCode,

	"name":         colName,
	"company":      colName,
	"company name": colName,
	"stock name":   colName,

	"qty":          colQuantity,
	"shares":       colQuantity,
	"no of shares": colQuantity,

	"rate":          colPrice,
	"buy price":     colPrice,
	"sell price":    colPrice,
	"avg price":     colPrice,
	"average price": colPrice,

	"type":             colType,
	"action":           colType,
	"transaction type": colType,
	"buy/sell":         colType,
}

var directions = map[string]model.Direction{
	"BUY":      model.Buy,
	"B":        model.Buy,
	"BOUGHT":   model.Buy,
	"PURCHASE": model.Buy,
	"SELL":     model.Sell,
	"S":        model.Sell,
	"SOLD":     model.Sell,
	"SALE":     model.Sell,
}

var dateLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006", "2006/01/02"}

// normalizeHeader maps column positions by canonical name. The first occurrence wins.
func normalizeHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}
	return cols
}

func parseRecord(cols map[string]int, record []string) (model.TradeEvent, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := parseDate(get(colDate))
	if err != nil {
		return model.TradeEvent{}, err
	}

	direction, ok := directions[strings.ToUpper(get(colType))]
	if !ok {
		return model.TradeEvent{}, fmt.Errorf("unknown trade type %q", get(colType))
	}

	quantity, err := parseQuantity(get(colQuantity))
	if err != nil {
		return model.TradeEvent{}, err
	}

	price, err := parseAmount(get(colPrice))
	if err != nil {
		return model.TradeEvent{}, fmt.Errorf("price: %w", err)
	}

	brokerage := decimal.Zero
	if v := get(colBrokerage); v != "" {
		brokerage, err = parseAmount(v)
		if err != nil {
			return model.TradeEvent{}, fmt.Errorf("brokerage: %w", err)
		}
	}

	return model.TradeEvent{
		StockCode: normalizeCode(get(colCode)),
		StockName: get(colName),
		Date:      date,
		Direction: direction,
		Quantity:  quantity,
		Price:     price,
		Brokerage: brokerage,
		Notes:     get(colNotes),
	}, nil
}

func parseDate(v string) (time.Time, error) {
	// spreadsheets often carry a midnight time after the date
	v, _, _ = strings.Cut(v, " ")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", v)
}

func parseQuantity(v string) (int64, error) {
	d, err := parseAmount(v)
	if err != nil {
		return 0, fmt.Errorf("quantity: %w", err)
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("quantity %s is not a whole number", v)
	}
	return d.IntPart(), nil
}

func parseAmount(v string) (decimal.Decimal, error) {
	v = strings.NewReplacer(",", "", "₹", "").Replace(v)
	return decimal.NewFromString(strings.TrimSpace(v))
}

// normalizeCode drops the ".0" spreadsheets append to numeric scrip codes.
func normalizeCode(v string) string {
	if strings.HasSuffix(v, ".0") {
		if _, err := strconv.Atoi(strings.TrimSuffix(v, ".0")); err == nil {
			return strings.TrimSuffix(v, ".0")
		}
	}
	return v
}
