package model

import (
	"fmt"
	"slices"
	"strings"
)

// DecodedTable is the flat form of one census worksheet table: one record per
// (leaf row, leaf column) pair with the row level labels, the column level
// labels and the dataset code of the body cell.
type DecodedTable struct {
	rowHeader    *HeaderSpec
	columnHeader *HeaderSpec
	header       Header
	records      []Record
	warnings     []Warning
}

// NewDecodedTable assembles a DecodedTable from both header specs and the
// dataset codes laid out row-major (leaf row x leaf column).
func NewDecodedTable(rows, cols *HeaderSpec, datasets []string, warnings []Warning) *DecodedTable {
	header := make(Header, 0, rows.LevelCount()+cols.LevelCount()+1)
	header = append(header, rows.LevelNames()...)
	header = append(header, cols.LevelNames()...)
	header = append(header, DatasetColumn)

	records := make([]Record, 0, len(datasets))
	for r, n := 0, rows.LeafCount(); r < n; r++ {
		rowLabels := rows.Labels(r)
		for c, n := 0, cols.LeafCount(); c < n; c++ {
			record := make(Record, 0, len(header))
			record = append(record, rowLabels...)
			record = append(record, cols.Labels(c)...)
			record = append(record, datasets[r*cols.LeafCount()+c])
			records = append(records, record)
		}
	}

	return &DecodedTable{
		rowHeader:    rows,
		columnHeader: cols,
		header:       header,
		records:      records,
		warnings:     append([]Warning(nil), warnings...),
	}
}

// RowHeader returns the row axis hierarchy.
func (d *DecodedTable) RowHeader() *HeaderSpec {
	return d.rowHeader
}

// ColumnHeader returns the column axis hierarchy.
func (d *DecodedTable) ColumnHeader() *HeaderSpec {
	return d.columnHeader
}

// Header returns the column names: row levels, column levels, then Dataset.
func (d *DecodedTable) Header() Header {
	return slices.Clone(d.header)
}

// Records returns the decoded records.
func (d *DecodedTable) Records() []Record {
	return d.records
}

// Len returns the number of records.
func (d *DecodedTable) Len() int {
	return len(d.records)
}

// Warnings returns the non-fatal anomalies found while decoding.
func (d *DecodedTable) Warnings() []Warning {
	return d.warnings
}

// Datasets returns the Dataset column.
func (d *DecodedTable) Datasets() []string {
	idx := len(d.header) - 1
	codes := make([]string, len(d.records))
	for i, record := range d.records {
		codes[i] = record[idx]
	}
	return codes
}

// Table converts the decoded table into a named flat table.
func (d *DecodedTable) Table(name string) *Table {
	return NewTable(name, d.Header(), d.records)
}

// Category is one category column and its distinct values in table order.
type Category struct {
	Name   string
	Values []string
}

// Categories lists every column except Dataset with its unique values.
func (d *DecodedTable) Categories() []Category {
	categories := make([]Category, 0, len(d.header)-1)
	for i, name := range d.header[:len(d.header)-1] {
		seen := make(map[string]struct{})
		var values []string
		for _, record := range d.records {
			if _, ok := seen[record[i]]; ok {
				continue
			}
			seen[record[i]] = struct{}{}
			values = append(values, record[i])
		}
		categories = append(categories, Category{Name: name, Values: values})
	}
	return categories
}

// Lookup returns the dataset code of the record matching a value for every
// category. Categories not present in the table are rejected.
func (d *DecodedTable) Lookup(selection map[string]string) (string, error) {
	categoryNames := d.header[:len(d.header)-1]

	var missing []string
	for _, name := range categoryNames {
		if _, ok := selection[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: missing %s", ErrIncompleteSelection, strings.Join(missing, ", "))
	}
	for name := range selection {
		if !slices.Contains(categoryNames, name) {
			return "", fmt.Errorf("%w: unknown category %q", ErrIncompleteSelection, name)
		}
	}

	for _, record := range d.records {
		matched := true
		for i, name := range categoryNames {
			if record[i] != selection[name] {
				matched = false
				break
			}
		}
		if matched {
			return record[len(record)-1], nil
		}
	}
	return "", fmt.Errorf("%w: %v", ErrNoMatchingDataset, selection)
}
