package censustable

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/nao1215/censustable/domain/model"
	"github.com/xuri/excelize/v2"
	"github.com/yaoapp/kun/log"
)

const (
	// IndexSheet is the sheet listing every table of a census workbook.
	IndexSheet = "Index"

	indexNumberColumn = "Table Number"
	indexTitleColumn  = "Table Title"
	indexTypeColumn   = "Type of Table"
)

// TableInfo is one row of the workbook index.
type TableInfo struct {
	// Number is the table identifier and sheet name, e.g. "KS101EW".
	Number string
	// Title describes the table.
	Title string
	// Type is the "Type of Table" column, empty when the index has none.
	Type string
}

// Workbook is an open census workbook. Its methods are safe for concurrent use.
type Workbook struct {
	name string
	mu   sync.Mutex
	file *excelize.File
}

// OpenWorkbook opens the XLSX workbook at path. A .gz, .bz2, .xz or .zst
// suffix is decompressed first.
func OpenWorkbook(path string) (*Workbook, error) {
	reader, cleanup, err := openDecompressed(path)
	if err != nil {
		return nil, NewErrorContext("open workbook", path).Error(err)
	}
	defer func() {
		_ = cleanup() // Ignore close error
	}()

	return openWorkbook(reader, path)
}

// OpenWorkbookReader opens a workbook from r. name is used in errors and to
// detect compression from its extension.
func OpenWorkbookReader(r io.Reader, name string) (*Workbook, error) {
	if r == nil {
		return nil, NewErrorContext("open workbook", name).Error(errors.New("reader cannot be nil"))
	}

	_, compression := model.DetectFileType(name)
	reader, cleanup, err := NewCompressionHandler(compression).CreateReader(r)
	if err != nil {
		return nil, NewErrorContext("open workbook", name).Error(err)
	}
	defer func() {
		_ = cleanup() // Ignore close error
	}()

	return openWorkbook(reader, name)
}

func openWorkbook(r io.Reader, name string) (*Workbook, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, NewErrorContext("open workbook", name).Error(fmt.Errorf("%w: %w", ErrInvalidData, err))
	}
	log.With(log.F{"workbook": name, "sheets": len(file.GetSheetList())}).Debug("workbook opened")
	return &Workbook{name: name, file: file}, nil
}

// Name returns the path or name the workbook was opened with.
func (w *Workbook) Name() string {
	return w.name
}

// Sheets lists the sheet names in workbook order.
func (w *Workbook) Sheets() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.GetSheetList()
}

// HasSheet reports whether the workbook has a sheet called name.
func (w *Workbook) HasSheet(name string) bool {
	return slices.Contains(w.Sheets(), name)
}

// Index reads the table list from the Index sheet.
func (w *Workbook) Index() ([]TableInfo, error) {
	if !w.HasSheet(IndexSheet) {
		return nil, NewErrorContext("read index", w.name).WithTable(IndexSheet).Error(ErrSheetNotFound)
	}

	w.mu.Lock()
	rows, err := w.file.GetRows(IndexSheet)
	w.mu.Unlock()
	if err != nil {
		return nil, NewErrorContext("read index", w.name).WithTable(IndexSheet).Error(err)
	}
	if len(rows) == 0 {
		return nil, NewErrorContext("read index", w.name).WithTable(IndexSheet).Error(ErrEmptyData)
	}

	header := model.NewHeader(rows[0])
	number, title, kind := header.Index(indexNumberColumn), header.Index(indexTitleColumn), header.Index(indexTypeColumn)
	if number < 0 || title < 0 {
		return nil, NewErrorContext("read index", w.name).WithTable(IndexSheet).
			WithDetails(fmt.Sprintf("need %q and %q", indexNumberColumn, indexTitleColumn)).
			Error(ErrMissingColumn)
	}

	tables := make([]TableInfo, 0, len(rows)-1)
	for _, row := range rows[1:] {
		info := TableInfo{
			Number: strings.TrimSpace(cellAt(row, number)),
			Title:  strings.TrimSpace(cellAt(row, title)),
			Type:   strings.TrimSpace(cellAt(row, kind)),
		}
		if info.Number == "" {
			continue
		}
		tables = append(tables, info)
	}
	return tables, nil
}

// Grid returns the cells of a sheet. Numeric cells keep their value; text
// cells that look numeric stay text.
func (w *Workbook) Grid(sheet string) (*model.Grid, error) {
	if !w.HasSheet(sheet) {
		return nil, NewErrorContext("read sheet", w.name).WithTable(sheet).Error(ErrSheetNotFound)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, NewErrorContext("read sheet", w.name).WithTable(sheet).Error(err)
	}

	cells := make([][]model.Cell, len(rows))
	for r, row := range rows {
		cells[r] = make([]model.Cell, len(row))
		for c, value := range row {
			cell, err := w.typedCell(sheet, r, c, value)
			if err != nil {
				return nil, NewErrorContext("read sheet", w.name).WithTable(sheet).Error(err)
			}
			cells[r][c] = cell
		}
	}
	return model.NewGrid(cells), nil
}

// typedCell classifies a raw cell value. Callers hold w.mu.
func (w *Workbook) typedCell(sheet string, r, c int, value string) (model.Cell, error) {
	if strings.TrimSpace(value) == "" {
		return model.MissingCell(), nil
	}

	name, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return model.Cell{}, err
	}
	cellType, err := w.file.GetCellType(sheet, name)
	if err != nil {
		return model.Cell{}, err
	}

	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeBool, excelize.CellTypeError:
		return model.NewStringCell(value), nil
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return model.NewNumberCell(n), nil
	}
	return model.NewStringCell(value), nil
}

// ReadTable decodes the sheet named after a table identifier. Decode
// warnings are logged and kept on the returned table.
func (w *Workbook) ReadTable(name string, opts ...DecodeOption) (*model.DecodedTable, error) {
	grid, err := w.Grid(name)
	if err != nil {
		return nil, err
	}

	opts = append([]DecodeOption{WithSheetName(name)}, opts...)
	table, err := Decode(grid, opts...)
	if err != nil {
		return nil, NewErrorContext("decode", w.name).WithTable(name).Error(err)
	}

	for _, warning := range table.Warnings() {
		log.With(log.F{"workbook": w.name, "sheet": name, "kind": warning.Kind.String(), "row": warning.Row}).
			Warn("%s", warning.Message)
	}
	log.With(log.F{"sheet": name, "records": table.Len()}).Debug("table decoded")
	return table, nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
