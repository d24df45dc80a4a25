package model

import (
	"path/filepath"
	"strings"
)

// Table represents a named, flat table: bulk census data, the geography
// lookup or a decoded worksheet.
type Table struct {
	// Name is table name derived from file path or table identifier.
	name string
	// Header is table header.
	header Header
	// Records is table records.
	records []Record
	// ColumnInfo contains inferred type information for each column
	columnInfo []ColumnInfo
}

// NewTable create new Table.
func NewTable(
	name string,
	header Header,
	records []Record,
) *Table {
	return &Table{
		name:       name,
		header:     header,
		records:    records,
		columnInfo: InferColumnsInfo(header, records),
	}
}

// Name return table name.
func (t *Table) Name() string {
	return t.name
}

// Header return table header.
func (t *Table) Header() Header {
	return t.header
}

// Records return table records.
func (t *Table) Records() []Record {
	return t.records
}

// ColumnInfo returns column information with inferred types
func (t *Table) ColumnInfo() []ColumnInfo {
	return t.columnInfo
}

// Column returns every value of the named column, or nil if absent.
func (t *Table) Column(name string) []string {
	idx := t.header.Index(name)
	if idx < 0 {
		return nil
	}
	values := make([]string, len(t.records))
	for i, record := range t.records {
		if idx < len(record) {
			values[i] = record[idx]
		}
	}
	return values
}

// Equal compare Table.
func (t *Table) Equal(t2 *Table) bool {
	if t.Name() != t2.Name() {
		return false
	}
	if !t.header.Equal(t2.header) {
		return false
	}
	if len(t.Records()) != len(t2.Records()) {
		return false
	}
	for i, record := range t.Records() {
		if !record.Equal(t2.Records()[i]) {
			return false
		}
	}
	return true
}

// TableFromFilePath creates table name from file path, dropping the
// compression and format extensions: "KS101EWDATA.CSV.gz" -> "KS101EWDATA".
func TableFromFilePath(filePath string) string {
	fileName := filepath.Base(filePath)
	lower := strings.ToLower(fileName)
	for _, ext := range []string{ExtGZ, ExtBZ2, ExtXZ, ExtZSTD} {
		if strings.HasSuffix(lower, ext) {
			fileName = fileName[:len(fileName)-len(ext)]
			break
		}
	}
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}
