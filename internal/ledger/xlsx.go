package ledger

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/stevenh6696/bookkeeping-notebook/internal/models"
)

// Sheet names of the spreadsheet export.
const (
	EntriesSheet = "Ledger"
	TotalsSheet  = "Totals"
)

// WriteXLSX writes the ledger and its account totals as a two-sheet
// spreadsheet. The ledger sheet has the same columns WriteCSV would write.
func WriteXLSX(out io.Writer, entries []models.Entry, totals []Total) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", EntriesSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	columns := Columns(nil, entries)
	if err := writeRows(f, EntriesSheet, columns, len(entries), func(i int) []any {
		row := make([]any, len(columns))
		for col, name := range columns {
			if name == "amount" {
				row[col] = entries[i].Amount.InexactFloat64()
				continue
			}
			row[col] = field(entries[i], name)
		}
		return row
	}); err != nil {
		return err
	}
	f.SetColWidth(EntriesSheet, "A", "A", 12)
	f.SetColWidth(EntriesSheet, "B", "B", 36)
	f.SetColWidth(EntriesSheet, "C", "C", 12)
	f.SetColWidth(EntriesSheet, "D", "D", 16)

	if _, err := f.NewSheet(TotalsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeRows(f, TotalsSheet, []string{"account", "amount"}, len(totals), func(i int) []any {
		return []any{totals[i].Account, totals[i].Amount.InexactFloat64()}
	}); err != nil {
		return err
	}
	f.SetColWidth(TotalsSheet, "A", "A", 16)

	if err := f.Write(out); err != nil {
		return fmt.Errorf("write spreadsheet: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, headers []string, n int, row func(i int) []any) error {
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("%s header: %w", sheet, err)
		}
	}
	for i := 0; i < n; i++ {
		for col, v := range row(i) {
			if v == "" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
			}
		}
	}
	return nil
}
