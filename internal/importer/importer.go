// Package importer reads trade files exported by brokers or kept by hand and replays them
// through the ledger in date order.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/internal/accounting"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/utils"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMissingColumns    = errors.New("missing required columns")
	ErrInvalidRows       = errors.New("invalid rows")
)

// TradeRecorder keeps either every trade of a batch or none of them.
// A rejected trade is reported as a *service.BatchError.
type TradeRecorder interface {
	ImportTrades(ctx context.Context, trades []model.TradeEvent) ([]int64, error)
}

// Row is a parsed trade with the file line it came from.
type Row struct {
	Line  int
	Trade model.TradeEvent
}

type Result struct {
	Imported int
	IDs      []int64
}

type Importer struct {
	recorder TradeRecorder
}

func New(recorder TradeRecorder) *Importer {
	return &Importer{recorder: recorder}
}

// ReadFile picks the reader by extension.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".xlsx", ".xlsm":
		return ReadXLSX(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Import records the rows oldest first as one batch. Rows are expected to be validated already.
// When the ledger rejects a trade nothing from the file is kept.
func (i *Importer) Import(ctx context.Context, rows []Row) (Result, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Importer.Import"

	slog.Info("import start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("rows", len(rows)))

	ordered := Ordered(rows)
	trades := make([]model.TradeEvent, 0, len(ordered))
	for _, row := range ordered {
		trades = append(trades, row.Trade)
	}

	ids, err := i.recorder.ImportTrades(ctx, trades)
	if err != nil {
		var batchErr *service.BatchError
		if errors.As(err, &batchErr) && batchErr.Index >= 0 && batchErr.Index < len(ordered) {
			err = fmt.Errorf("line %d: %w", ordered[batchErr.Index].Line, batchErr.Err)
		}
		slog.Error("import rolled back", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return Result{}, err
	}

	slog.Info("import complete", slog.String("rqID", rqID), slog.String("op", op), slog.Int("imported", len(ids)))

	return Result{Imported: len(ids), IDs: ids}, nil
}

// Ordered sorts by trade date keeping the file order for the same day.
func Ordered(rows []Row) []Row {
	res := make([]Row, len(rows))
	copy(res, rows)
	sort.SliceStable(res, func(a, b int) bool {
		return res[a].Trade.Date.Before(res[b].Trade.Date)
	})
	return res
}

// parseTable turns a header and its records into rows. All records are checked
// and every problem is reported at once.
func parseTable(header []string, records [][]string, lines []int) ([]Row, error) {
	cols := normalizeHeader(header)

	var missing []string
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s (have %s)", ErrMissingColumns, strings.Join(missing, ", "), strings.Join(header, ", "))
	}

	rows := make([]Row, 0, len(records))
	var errs []error
	for n, record := range records {
		line := lines[n]
		if blank(record) {
			continue
		}

		trade, err := parseRecord(cols, record)
		if err == nil {
			err = accounting.ValidateTrade(trade)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		rows = append(rows, Row{Line: line, Trade: trade})
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRows, errors.Join(errs...))
	}

	return rows, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
