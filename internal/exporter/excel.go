package exporter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// writeXLSX streams a table into a single-sheet workbook. Cells that parse
// as numbers are stored as numbers so spreadsheets can aggregate them.
func writeXLSX(out io.Writer, sheet string, headers []string, records [][]string) error {
	if sheet == "" {
		sheet = "Sheet1"
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	row := 1
	if len(headers) > 0 {
		if err := sw.SetRow(cellName(row), toCells(headers, false)); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
		row++
	}

	for i, record := range records {
		if err := sw.SetRow(cellName(row), toCells(record, true)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
		row++
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func cellName(row int) string {
	name, _ := excelize.CoordinatesToCellName(1, row)
	return name
}

func toCells(record []string, numeric bool) []interface{} {
	cells := make([]interface{}, len(record))
	for i, v := range record {
		if numeric {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				cells[i] = n
				continue
			}
		}
		cells[i] = v
	}
	return cells
}
