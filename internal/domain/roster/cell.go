package roster

import (
	"math"
	"strconv"
	"strings"
)

type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
	CellBool
)

// Cell is one raw spreadsheet value as handed over by a workbook reader.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
	Bool bool
}

func StringCell(value string) Cell {
	if value == "" {
		return Cell{}
	}
	return Cell{Kind: CellString, Str: value}
}

func NumberCell(value float64) Cell {
	return Cell{Kind: CellNumber, Num: value}
}

func BoolCell(value bool) Cell {
	return Cell{Kind: CellBool, Bool: value}
}

// Text renders the cell the way it should appear in a string column.
func (c Cell) Text() string {
	switch c.Kind {
	case CellString:
		return strings.TrimSpace(c.Str)
	case CellNumber:
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return ""
		}
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellBool:
		return strconv.FormatBool(c.Bool)
	}
	return ""
}

func (c Cell) Truthy() bool {
	switch c.Kind {
	case CellString:
		return c.Str != ""
	case CellNumber:
		return c.Num != 0 && !math.IsNaN(c.Num)
	case CellBool:
		return c.Bool
	}
	return false
}

// Amount reads a non-negative quantity. Anything unparsable or negative is 0.
func (c Cell) Amount() float64 {
	var value float64
	switch c.Kind {
	case CellNumber:
		value = c.Num
	case CellBool:
		if c.Bool {
			value = 1
		}
	case CellString:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(c.Str), 64)
		if err != nil {
			return 0
		}
		value = parsed
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return value
}

// serial returns the numeric payload of date/time cells. Only genuine
// numbers count, and zero means "not set".
func (c Cell) serial() (float64, bool) {
	if c.Kind != CellNumber || c.Num == 0 || math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
		return 0, false
	}
	return c.Num, true
}

func cellAt(row []Cell, idx int) Cell {
	if idx < 0 || idx >= len(row) {
		return Cell{}
	}
	return row[idx]
}
