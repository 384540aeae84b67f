package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/accounting"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/shopspring/decimal"
)

type recorder struct {
	trades []model.TradeEvent
	failOn int
}

// ImportTrades keeps nothing when the failOn-th trade (1-based) is reached.
func (r *recorder) ImportTrades(_ context.Context, trades []model.TradeEvent) ([]int64, error) {
	ids := make([]int64, 0, len(trades))
	for i := range trades {
		if r.failOn > 0 && i+1 == r.failOn {
			return nil, &service.BatchError{Index: i, Err: accounting.ErrInsufficientQuantity}
		}
		ids = append(ids, int64(len(r.trades)+i+1))
	}
	r.trades = append(r.trades, trades...)
	return ids, nil
}

func TestReadCSVAliases(t *testing.T) {
	data := "Date, Symbol ,Company,Qty,Rate,Buy/Sell,Brokerage,Notes\n" +
		"15/01/2024,500325,Reliance,10,\"1,450.50\",b,12.5,first\n" +
		"\n" +
		"2024-01-10,532540.0,TCS,5,3320,PURCHASE,,\n"

	rows, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	first := rows[0]
	if first.Line != 2 {
		t.Errorf("line = %d, want 2", first.Line)
	}
	tr := first.Trade
	if tr.StockCode != "500325" || tr.StockName != "Reliance" || tr.Direction != model.Buy || tr.Quantity != 10 {
		t.Errorf("trade = %+v", tr)
	}
	if !tr.Price.Equal(decimal.RequireFromString("1450.50")) || !tr.Brokerage.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("price/brokerage = %s/%s", tr.Price, tr.Brokerage)
	}
	if !tr.Date.Equal(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %s", tr.Date)
	}

	second := rows[1]
	if second.Line != 4 || second.Trade.StockCode != "532540" || !second.Trade.Brokerage.IsZero() {
		t.Errorf("second row = %+v", second)
	}
}

func TestReadCSVMissingColumns(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("date,code,qty\n2024-01-01,500325,1\n"))
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("ReadCSV() error = %v, want %v", err, ErrMissingColumns)
	}
	if !strings.Contains(err.Error(), "price") || !strings.Contains(err.Error(), "trade_type") {
		t.Errorf("error %q does not name the missing columns", err)
	}
}

func TestReadCSVReportsEveryInvalidRow(t *testing.T) {
	data := "trade_date,scrip_code,quantity,price,trade_type\n" +
		"2024-01-01,500325,10,100,BUY\n" +
		"01.01.2024,500325,10,100,BUY\n" +
		"2024-01-02,500325,1.5,100,SELL\n" +
		"2024-01-03,500325,10,100,HOLD\n" +
		"2024-01-04,500325,0,100,BUY\n"

	_, err := ReadCSV(strings.NewReader(data))
	if !errors.Is(err, ErrInvalidRows) {
		t.Fatalf("ReadCSV() error = %v, want %v", err, ErrInvalidRows)
	}
	if !errors.Is(err, accounting.ErrInvalidTrade) {
		t.Errorf("error %v should wrap %v for the zero quantity", err, accounting.ErrInvalidTrade)
	}
	for _, line := range []int{3, 4, 5, 6} {
		if !strings.Contains(err.Error(), fmt.Sprintf("line %d:", line)) {
			t.Errorf("error does not mention line %d: %v", line, err)
		}
	}
	if strings.Contains(err.Error(), "line 2:") {
		t.Errorf("valid line 2 reported: %v", err)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-03-05", "05-03-2024", "05/03/2024", "2024/03/05", "2024-03-05 00:00:00"} {
		got, err := parseDate(in)
		if err != nil {
			t.Errorf("parseDate(%q) error = %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("parseDate(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := parseDate("March 5"); err == nil {
		t.Error("parseDate(March 5) expected error")
	}
}

func TestImportOrdersByDate(t *testing.T) {
	rows := []Row{
		{Line: 2, Trade: model.TradeEvent{StockCode: "A", Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Notes: "late"}},
		{Line: 3, Trade: model.TradeEvent{StockCode: "A", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Notes: "first"}},
		{Line: 4, Trade: model.TradeEvent{StockCode: "A", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Notes: "second"}},
	}

	rec := &recorder{}
	res, err := New(rec).Import(context.Background(), rows)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.Imported != 3 || len(res.IDs) != 3 {
		t.Fatalf("result = %+v, want 3 imported", res)
	}

	var got []string
	for _, tr := range rec.trades {
		got = append(got, tr.Notes)
	}
	if strings.Join(got, ",") != "first,second,late" {
		t.Errorf("order = %v", got)
	}
	if rows[0].Trade.Notes != "late" {
		t.Error("Import reordered the caller's slice")
	}
}

func TestImportReportsRejectedLine(t *testing.T) {
	// file order differs from date order, the error must name the file line
	rows := []Row{
		{Line: 2, Trade: model.TradeEvent{StockCode: "A", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}},
		{Line: 3, Trade: model.TradeEvent{StockCode: "A", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}},
		{Line: 4, Trade: model.TradeEvent{StockCode: "A", Date: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)}},
	}

	rec := &recorder{failOn: 2}
	res, err := New(rec).Import(context.Background(), rows)
	if !errors.Is(err, accounting.ErrInsufficientQuantity) {
		t.Fatalf("Import() error = %v, want %v", err, accounting.ErrInsufficientQuantity)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q should name line 2", err)
	}
	if res.Imported != 0 || len(rec.trades) != 0 {
		t.Errorf("imported = %d, recorded = %d, want nothing", res.Imported, len(rec.trades))
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTemplate(&buf); err != nil {
		t.Fatalf("WriteTemplate() error = %v", err)
	}

	rows, err := ReadXLSX(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadXLSX() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[1].Trade.StockCode != "532540" || rows[1].Trade.Quantity != 5 || !rows[1].Trade.Price.Equal(decimal.NewFromInt(3320)) {
		t.Errorf("second template row = %+v", rows[1].Trade)
	}
}

func TestReadFileUnsupported(t *testing.T) {
	path := t.TempDir() + "/trades.ods"
	if err := writeFile(path); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ReadFile() error = %v, want %v", err, ErrUnsupportedFormat)
	}
}

func writeFile(path string) error {
	return os.WriteFile(path, []byte("x"), 0o600)
}
