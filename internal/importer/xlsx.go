package importer

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads the first sheet of a workbook.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, errors.New("empty sheet")
	}

	lines := make([]int, len(records)-1)
	for i := range lines {
		lines[i] = i + 2
	}

	return parseTable(records[0], records[1:], lines)
}

// WriteTemplate writes a sample workbook with the expected columns.
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	rows := [][]any{
		{colDate, colCode, colName, colQuantity, colPrice, colType, colBrokerage, colNotes},
		{"2025-01-15", "500325", "Reliance Industries Ltd", 10, 1450.00, "BUY", 50.00, "First purchase"},
		{"2025-01-20", "532540", "TCS Ltd", 5, 3320.00, "BUY", 30.00, "IT sector"},
		{"2025-02-10", "500180", "HDFC Bank Ltd", 20, 997.00, "BUY", 40.00, "Banking sector"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}
