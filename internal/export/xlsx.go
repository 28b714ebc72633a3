// Package export writes mapping results to spreadsheets and the console.
package export

import (
	"fmt"

	"figimapper/internal/resultset"

	"github.com/xuri/excelize/v2"
)

// DefaultFilename is used when no output file is configured
const DefaultFilename = "results.xlsx"

// IndexHeader labels the identifier column
const IndexHeader = "idValue"

// WriteXLSX writes the table to a workbook at path: a header row, then one row per
// identifier in submission order. Unmatched identifiers get empty cells.
func WriteXLSX(t resultset.Table, path string) error {
	if path == "" {
		path = DefaultFilename
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := make([]any, 0, len(t.Columns)+1)
	header = append(header, IndexHeader)
	for _, c := range t.Columns {
		header = append(header, c)
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, id := range t.Index {
		row := make([]any, 0, len(t.Columns)+1)
		row = append(row, id)
		if !t.Missing[i] {
			for _, v := range t.Rows[i] {
				row = append(row, v)
			}
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
