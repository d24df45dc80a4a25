package model

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// CellKind is the type of a worksheet cell.
type CellKind int

const (
	// CellMissing represents an empty cell (merged, blank or out of range)
	CellMissing CellKind = iota
	// CellString represents a text cell
	CellString
	// CellNumber represents a numeric cell
	CellNumber
)

// String returns the name of the cell kind
func (k CellKind) String() string {
	switch k {
	case CellString:
		return "string"
	case CellNumber:
		return "number"
	default:
		return "missing"
	}
}

// Cell is a single typed scalar read from a worksheet.
type Cell struct {
	kind   CellKind
	text   string
	number float64
}

// MissingCell returns the missing-cell sentinel.
func MissingCell() Cell {
	return Cell{kind: CellMissing}
}

// NewStringCell creates a text cell. An empty string is a missing cell.
func NewStringCell(s string) Cell {
	if s == "" {
		return MissingCell()
	}
	return Cell{kind: CellString, text: s}
}

// NewNumberCell creates a numeric cell.
func NewNumberCell(f float64) Cell {
	return Cell{kind: CellNumber, number: f}
}

// NewCell converts an arbitrary Go value into a Cell.
// nil and "" become missing cells, numeric types become number cells and
// everything else is stored as its string form.
func NewCell(v any) Cell {
	switch val := v.(type) {
	case nil:
		return MissingCell()
	case Cell:
		return val
	case string:
		return NewStringCell(val)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return NewNumberCell(cast.ToFloat64(val))
	default:
		return NewStringCell(cast.ToString(val))
	}
}

// Kind returns the cell kind.
func (c Cell) Kind() CellKind {
	return c.kind
}

// IsMissing reports whether the cell is empty.
func (c Cell) IsMissing() bool {
	return c.kind == CellMissing
}

// Text returns the cell rendered as text. Missing cells return "".
func (c Cell) Text() string {
	switch c.kind {
	case CellString:
		return c.text
	case CellNumber:
		return strconv.FormatFloat(c.number, 'f', -1, 64)
	default:
		return ""
	}
}

// Number returns the numeric value of the cell. Text cells holding a number
// (e.g. "12" stored as text) are accepted.
func (c Cell) Number() (float64, bool) {
	switch c.kind {
	case CellNumber:
		return c.number, true
	case CellString:
		f, err := cast.ToFloat64E(strings.TrimSpace(c.text))
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Grid is an immutable two-dimensional block of cells read from one worksheet.
// Rows may be ragged in the source; the grid is padded to the widest row.
type Grid struct {
	cells [][]Cell
	cols  int
}

// NewGrid creates a Grid from rows of cells. The input is copied.
func NewGrid(rows [][]Cell) *Grid {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}

	cells := make([][]Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]Cell, cols)
		copy(cells[i], row)
	}
	return &Grid{cells: cells, cols: cols}
}

// NewGridFromValues creates a Grid from rows of arbitrary values using NewCell.
func NewGridFromValues(rows [][]any) *Grid {
	cellRows := make([][]Cell, len(rows))
	for i, row := range rows {
		cellRows[i] = make([]Cell, len(row))
		for j, v := range row {
			cellRows[i][j] = NewCell(v)
		}
	}
	return NewGrid(cellRows)
}

// Rows returns the number of rows.
func (g *Grid) Rows() int {
	return len(g.cells)
}

// Cols returns the number of columns.
func (g *Grid) Cols() int {
	return g.cols
}

// At returns the cell at (row, col). Positions outside the grid are missing.
func (g *Grid) At(row, col int) Cell {
	if row < 0 || row >= len(g.cells) || col < 0 || col >= g.cols {
		return MissingCell()
	}
	return g.cells[row][col]
}

// IsMissing reports whether the cell at (row, col) is missing.
func (g *Grid) IsMissing(row, col int) bool {
	return g.At(row, col).IsMissing()
}
