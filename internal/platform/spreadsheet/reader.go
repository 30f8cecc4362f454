package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"cleanops/internal/domain/roster"
)

var (
	ErrUnreadable = errors.New("workbook could not be read")
	ErrNoSheets   = errors.New("workbook has no worksheets")
)

var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Open materialises an uploaded workbook into a grid of typed cells. Legacy
// .xls files go through extrame/xls; everything else is treated as OOXML.
func Open(data []byte, filename string) (*roster.Grid, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrUnreadable)
	}
	var (
		grid *roster.Grid
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		grid, err = openXLS(data)
	default:
		grid, err = openXLSX(data)
	}
	if err != nil {
		return nil, err
	}
	if len(grid.SheetNames()) == 0 {
		return nil, ErrNoSheets
	}
	return grid, nil
}

func openXLSX(data []byte) (*roster.Grid, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer func() { _ = file.Close() }()

	grid := roster.NewGrid()
	for _, sheet := range file.GetSheetList() {
		rows, err := file.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %q: %w", ErrUnreadable, sheet, err)
		}
		out := make([][]roster.Cell, len(rows))
		for r, row := range rows {
			cells := make([]roster.Cell, len(row))
			for c, raw := range row {
				if raw == "" {
					continue
				}
				axis, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
				}
				kind, err := file.GetCellType(sheet, axis)
				if err != nil {
					kind = excelize.CellTypeUnset
				}
				cells[c] = xlsxCell(kind, raw)
			}
			out[r] = cells
		}
		grid.AddSheet(sheet, out)
	}
	return grid, nil
}

func xlsxCell(kind excelize.CellType, raw string) roster.Cell {
	switch kind {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return roster.StringCell(raw)
	case excelize.CellTypeBool:
		return roster.BoolCell(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeDate:
		if serial, ok := isoSerial(raw); ok {
			return roster.NumberCell(serial)
		}
	}
	return typedCell(raw)
}

func openXLS(data []byte) (*roster.Grid, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	grid := roster.NewGrid()
	for i := 0; i < workbook.NumSheets(); i++ {
		sheet := workbook.GetSheet(i)
		if sheet == nil {
			continue
		}
		var rows [][]roster.Cell
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			var cells []roster.Cell
			for c := 0; c <= row.LastCol(); c++ {
				cells = append(cells, xlsCell(row.Col(c)))
			}
			rows = append(rows, trimRow(cells))
		}
		grid.AddSheet(sheet.Name, rows)
	}
	return grid, nil
}

// xlsCell also undoes the RFC 3339 rendering extrame/xls applies to cells with
// a built-in date format, so the parser still sees a serial.
func xlsCell(raw string) roster.Cell {
	raw = strings.TrimSpace(raw)
	if serial, ok := isoSerial(raw); ok {
		return roster.NumberCell(serial)
	}
	return typedCell(raw)
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	time.DateOnly,
}

// isoSerial reads ISO 8601 date text as a day serial. Time-only text becomes
// a fraction of a day.
func isoSerial(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return toSerial(t), true
		}
	}
	if t, err := time.Parse(time.TimeOnly, raw); err == nil {
		return float64(t.Hour()*3600+t.Minute()*60+t.Second()) / 86400, true
	}
	return 0, false
}

func typedCell(raw string) roster.Cell {
	if raw == "" {
		return roster.Cell{}
	}
	switch strings.ToUpper(raw) {
	case "TRUE":
		return roster.BoolCell(true)
	case "FALSE":
		return roster.BoolCell(false)
	}
	if value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return roster.NumberCell(value)
	}
	return roster.StringCell(raw)
}

func toSerial(t time.Time) float64 {
	utc := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	return utc.Sub(serialEpoch).Hours() / 24
}

func trimRow(cells []roster.Cell) []roster.Cell {
	end := len(cells)
	for end > 0 && cells[end-1].Kind == roster.CellEmpty {
		end--
	}
	return cells[:end]
}
