package censustable

import (
	"context"

	"github.com/nao1215/censustable/domain/model"
)

// LondonCodePrefix starts the district codes of the London boroughs.
const LondonCodePrefix = "E090000"

type (
	// Grid is a worksheet as a grid of cells.
	Grid = model.Grid
	// DecodedTable is a decoded worksheet.
	DecodedTable = model.DecodedTable
	// Table is a named flat table.
	Table = model.Table
	// DumpOptions configure DumpTable.
	DumpOptions = model.DumpOptions
	// Warning is a non-fatal decode anomaly.
	Warning = model.Warning
	// MalformedTableError reports a worksheet without table structure.
	MalformedTableError = model.MalformedTableError
)

// ReadTable opens a workbook, decodes one table and closes the workbook.
func ReadTable(workbookPath, tableID string, opts ...DecodeOption) (*model.DecodedTable, error) {
	if err := validateTableID(tableID); err != nil {
		return nil, err
	}

	wb, err := OpenWorkbook(workbookPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = wb.Close() // Ignore close error
	}()

	return wb.ReadTable(tableID, opts...)
}

// ReadIndex opens a workbook and returns its table list.
func ReadIndex(workbookPath string) ([]TableInfo, error) {
	wb, err := OpenWorkbook(workbookPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = wb.Close() // Ignore close error
	}()

	return wb.Index()
}

// OpenStore builds and opens a Store in one call. It is a shortcut for
// NewBuilder().AddWorkbook(workbook).AddDataDir(dataDir).AddGeography(geography).
// AddTables(tableIDs...).Build(ctx) followed by Open(ctx). Empty paths are
// skipped.
func OpenStore(ctx context.Context, workbook, dataDir, geography string, tableIDs ...string) (*Store, error) {
	builder := NewBuilder().AddTables(tableIDs...)
	if workbook != "" {
		builder.AddWorkbook(workbook)
	}
	if dataDir != "" {
		builder.AddDataDir(dataDir)
	}
	if geography != "" {
		builder.AddGeography(geography)
	}

	validated, err := builder.Build(ctx)
	if err != nil {
		return nil, err
	}
	return validated.Open(ctx)
}
