package censustable

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/nao1215/censustable/domain/model"
)

const (
	// DefaultHeaderRow is the 0-based row where census tables start their column headers.
	DefaultHeaderRow = 6
	// DefaultMarker prefixes a header cell that names its level and stands for every value.
	DefaultMarker = "All categories: "
	// AllValue replaces a marker cell in the decoded labels.
	AllValue = "All"
	// maxDatasetCode is the largest code that fits the 4-digit dataset format.
	maxDatasetCode = 9999
)

// OverflowPolicy controls what happens when a sheet has more consecutive
// label rows than its row hierarchy has label levels.
type OverflowPolicy int

const (
	// OverflowWarn wraps the hierarchy back to level 0 and records a warning
	OverflowWarn OverflowPolicy = iota
	// OverflowError fails the decode with ErrLevelOverflow
	OverflowError
)

// decodeConfig holds decoder settings.
type decodeConfig struct {
	headerRow int
	marker    string
	overflow  OverflowPolicy
	sheet     string
}

// DecodeOption configures Decode.
type DecodeOption func(*decodeConfig)

// WithHeaderRow sets the 0-based anchor row of the column header block.
func WithHeaderRow(row int) DecodeOption {
	return func(c *decodeConfig) {
		c.headerRow = row
	}
}

// WithMarker sets the marker phrase that names a header level.
func WithMarker(marker string) DecodeOption {
	return func(c *decodeConfig) {
		c.marker = marker
	}
}

// WithOverflowPolicy sets the level overflow policy.
func WithOverflowPolicy(p OverflowPolicy) DecodeOption {
	return func(c *decodeConfig) {
		c.overflow = p
	}
}

// WithSheetName names the sheet in errors.
func WithSheetName(name string) DecodeOption {
	return func(c *decodeConfig) {
		c.sheet = name
	}
}

func newDecodeConfig(opts ...DecodeOption) decodeConfig {
	cfg := decodeConfig{
		headerRow: DefaultHeaderRow,
		marker:    DefaultMarker,
		overflow:  OverflowWarn,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Decode converts one census worksheet grid into a flat table with one record
// per (leaf row, leaf column) pair.
//
// The column header block starts at the header row and ends above the first
// row with a value in column 0. The row header block follows it; its depth is
// the number of rows down to the first row with a value in column 1. Header
// cells starting with the marker phrase name their level and decode as "All".
// Each body cell must hold an integer in 0..9999 and becomes the record's
// 4-digit Dataset code.
//
// Decode returns a *model.MalformedTableError, matched by
// model.ErrMalformedTable, when the grid has no discoverable structure. It
// never returns a partial table. Decode does not modify the grid and is safe
// for concurrent use.
func Decode(grid *model.Grid, opts ...DecodeOption) (*model.DecodedTable, error) {
	d := &decoder{grid: grid, cfg: newDecodeConfig(opts...)}

	table, err := d.decode()
	if err != nil {
		var mte *model.MalformedTableError
		if errors.As(err, &mte) && mte.Sheet == "" {
			mte.Sheet = d.cfg.sheet
		}
		return nil, err
	}
	return table, nil
}

// decoder holds the state of a single Decode call.
type decoder struct {
	grid     *model.Grid
	cfg      decodeConfig
	warnings []model.Warning
}

func (d *decoder) decode() (*model.DecodedTable, error) {
	if d.grid == nil || d.grid.Rows() == 0 {
		return nil, model.NewMalformedTableError(-1, -1, "grid is empty")
	}
	if d.cfg.headerRow < 0 || d.cfg.headerRow >= d.grid.Rows() {
		return nil, model.NewMalformedTableError(d.cfg.headerRow, -1,
			"header row is outside the grid of %d rows", d.grid.Rows())
	}

	cols, bodyStart, err := d.columnHeader()
	if err != nil {
		return nil, err
	}
	rows, err := d.rowHeader(bodyStart)
	if err != nil {
		return nil, err
	}
	datasets, err := d.datasets(rows, cols)
	if err != nil {
		return nil, err
	}

	table := model.NewDecodedTable(rows, cols, datasets, d.warnings)
	if dup := table.Header().Duplicate(); dup != "" {
		return nil, model.NewMalformedTableError(-1, -1, "category %q names both a row and a column level", dup).
			WithCause(model.ErrDuplicateColumnName)
	}
	return table, nil
}

// columnHeader discovers the column hierarchy. It returns the header spec
// and the first row of the body.
func (d *decoder) columnHeader() (*model.HeaderSpec, int, error) {
	anchor := d.cfg.headerRow

	row := anchor
	for d.grid.IsMissing(row, 0) {
		row++
		if row >= d.grid.Rows() {
			return nil, 0, model.NewMalformedTableError(row, 0,
				"no row label found in column 0 below header row %d", anchor)
		}
	}
	depth := row - anchor
	if depth == 0 {
		return nil, 0, model.NewMalformedTableError(anchor, 0,
			"header row has a row label in column 0, no column header levels")
	}

	width := d.width(anchor)
	if width < 2 {
		return nil, 0, model.NewMalformedTableError(anchor, 1, "table has no data columns")
	}

	names := make([]string, depth)
	values := make([][]string, depth)
	positions := make([]int, 0, width-1)
	for col := 1; col < width; col++ {
		for level := 0; level < depth; level++ {
			cell := d.grid.At(anchor+level, col)
			if cell.IsMissing() {
				if col == 1 {
					return nil, 0, model.NewMalformedTableError(anchor+level, col,
						"first column header cell of level %d is empty", level)
				}
				// merged cell: repeat the previous column's label
				values[level] = append(values[level], values[level][len(values[level])-1])
				continue
			}
			values[level] = append(values[level], d.label(cell.Text(), names, level))
		}
		positions = append(positions, col)
	}

	d.nameLevels(model.AxisColumn, names)
	return model.NewHeaderSpec(model.AxisColumn, names, values, positions), row, nil
}

// width returns one past the last column holding a value at or below row.
func (d *decoder) width(row int) int {
	width := 0
	for r := row; r < d.grid.Rows(); r++ {
		for c := d.grid.Cols() - 1; c >= width; c-- {
			if !d.grid.IsMissing(r, c) {
				width = c + 1
				break
			}
		}
	}
	return width
}

// rowHeader discovers the row hierarchy starting at the first body row.
func (d *decoder) rowHeader(start int) (*model.HeaderSpec, error) {
	row := start
	for d.grid.IsMissing(row, 1) {
		row++
		if row >= d.grid.Rows() {
			return nil, model.NewMalformedTableError(row, 1,
				"no body value found in column 1 below row %d", start)
		}
	}
	depth := row + 1 - start

	machine := newLevelMachine(depth)
	stack := make([]string, depth)
	names := make([]string, depth)
	values := make([][]string, depth)
	var positions []int

	for r := start; r < d.grid.Rows() && !d.grid.IsMissing(r, 0); r++ {
		kind := valueRow
		if d.grid.IsMissing(r, 1) {
			kind = labelRow
		}

		step := machine.next(kind)
		if step.orphan {
			return nil, model.NewMalformedTableError(r, 1,
				"row has body values but only %d of %d row levels are labelled", step.level, depth-1)
		}
		if step.overflow {
			if d.cfg.overflow == OverflowError {
				return nil, model.NewMalformedTableError(r, 0,
					"label row exceeds the %d levels of the row hierarchy", depth).WithCause(model.ErrLevelOverflow)
			}
			d.warn(model.WarningLevelOverflow, r,
				fmt.Sprintf("label %q exceeds the %d row levels, hierarchy restarted at level 0", d.grid.At(r, 0).Text(), depth))
			if step.level < 0 {
				continue
			}
		}

		stack[step.level] = d.label(d.grid.At(r, 0).Text(), names, step.level)
		if step.leaf {
			for level := 0; level < depth; level++ {
				values[level] = append(values[level], stack[level])
			}
			positions = append(positions, r)
		}
	}

	if machine.pendingLabels() {
		d.warn(model.WarningTrailingLabels, -1, "label rows at the end of the table have no body rows")
	}
	if len(positions) == 0 {
		return nil, model.NewMalformedTableError(start, 1, "table has no body rows")
	}

	d.nameLevels(model.AxisRow, names)
	return model.NewHeaderSpec(model.AxisRow, names, values, positions), nil
}

// datasets reads the body cell of every (leaf row, leaf column) pair.
func (d *decoder) datasets(rows, cols *model.HeaderSpec) ([]string, error) {
	codes := make([]string, 0, rows.LeafCount()*cols.LeafCount())
	for _, r := range rows.Positions() {
		for _, c := range cols.Positions() {
			code, reason := datasetCode(d.grid.At(r, c))
			if reason != "" {
				return nil, model.NewMalformedTableError(r, c, "%s", reason)
			}
			codes = append(codes, code)
		}
	}
	return codes, nil
}

// datasetCode formats a body cell as a 4-digit code. A non-empty reason
// describes why the cell cannot be a code.
func datasetCode(cell model.Cell) (string, string) {
	if cell.IsMissing() {
		return "", "body cell is empty"
	}
	n, ok := cell.Number()
	if !ok {
		return "", fmt.Sprintf("body cell %q is not numeric", cell.Text())
	}
	if n != math.Trunc(n) {
		return "", fmt.Sprintf("body cell %s is not an integer", cell.Text())
	}
	if n < 0 || n > maxDatasetCode {
		return "", fmt.Sprintf("body cell %s is outside 0..%d", cell.Text(), maxDatasetCode)
	}
	return fmt.Sprintf("%04d", int(n)), ""
}

// label applies the marker rule to a header cell. The first marker seen on a
// level names it.
func (d *decoder) label(text string, names []string, level int) string {
	category, ok := strings.CutPrefix(text, d.cfg.marker)
	if !ok {
		return text
	}
	if names[level] == "" {
		names[level] = category
	}
	return AllValue
}

// nameLevels gives levels without a marker a positional name.
func (d *decoder) nameLevels(axis model.Axis, names []string) {
	for level, name := range names {
		if name != "" {
			continue
		}
		names[level] = fmt.Sprintf("%s level %d", strings.ToUpper(axis.String()[:1])+axis.String()[1:], level+1)
		d.warn(model.WarningUnnamedLevel, -1,
			fmt.Sprintf("%s level %d has no %q cell, named %q", axis, level+1, strings.TrimSpace(d.cfg.marker), names[level]))
	}
}

func (d *decoder) warn(kind model.WarningKind, row int, message string) {
	d.warnings = append(d.warnings, model.Warning{Kind: kind, Row: row, Message: message})
}
