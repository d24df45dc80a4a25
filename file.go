package censustable

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow/go/v17/arrow/array"
	pqfile "github.com/apache/arrow/go/v17/parquet/file"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"
	"github.com/nao1215/censustable/domain/model"
	"github.com/xuri/excelize/v2"
)

const (
	csvDelimiter = ','
	tsvDelimiter = '\t'
)

// readTableFile parses a CSV, TSV, LTSV, Parquet or XLSX file into a table
// named after the file. Compressed files are decompressed on the fly.
func readTableFile(path string) (*model.Table, error) {
	f := model.NewFile(path)
	if !f.IsSupported() {
		return nil, NewErrorContext("read", path).Error(ErrUnsupportedFormat)
	}

	reader, cleanup, err := openDecompressed(path)
	if err != nil {
		return nil, NewErrorContext("read", path).Error(err)
	}
	defer func() {
		_ = cleanup() // Ignore close error
	}()

	table, err := readTable(reader, f.Type(), model.TableFromFilePath(path))
	if err != nil {
		return nil, NewErrorContext("read", path).Error(err)
	}
	return table, nil
}

// readTable parses an uncompressed stream of the given type.
func readTable(reader io.Reader, fileType model.FileType, name string) (*model.Table, error) {
	var (
		header  model.Header
		records []model.Record
		err     error
	)

	switch fileType {
	case model.FileTypeCSV:
		header, records, err = parseDelimited(reader, csvDelimiter)
	case model.FileTypeTSV:
		header, records, err = parseDelimited(reader, tsvDelimiter)
	case model.FileTypeLTSV:
		header, records, err = parseLTSV(reader)
	case model.FileTypeParquet:
		header, records, err = parseParquet(reader)
	case model.FileTypeXLSX:
		header, records, err = parseXLSX(reader)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}

	if dup := header.Duplicate(); dup != "" {
		return nil, fmt.Errorf("%w: %q", model.ErrDuplicateColumnName, dup)
	}
	return model.NewTable(name, header, records), nil
}

// parseDelimited parses CSV or TSV data. The first row is the header.
func parseDelimited(reader io.Reader, delimiter rune) (model.Header, []model.Record, error) {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.FieldsPerRecord = -1

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	if len(rows) == 0 {
		return nil, nil, ErrEmptyData
	}

	header := model.NewHeader(trimBOM(rows[0]))
	return header, padRecords(rows[1:], len(header)), nil
}

// parseLTSV parses label:value lines. Columns keep the order labels are first seen.
func parseLTSV(reader io.Reader) (model.Header, []model.Record, error) {
	var (
		header model.Header
		seen   = make(map[string]bool)
		rows   []map[string]string
	)

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		row := make(map[string]string)
		for _, pair := range strings.Split(line, "\t") {
			key, value, ok := strings.Cut(pair, ":")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			row[key] = strings.TrimSpace(value)
			if !seen[key] {
				seen[key] = true
				header = append(header, key)
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	if len(rows) == 0 {
		return nil, nil, ErrEmptyData
	}

	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		record := make(model.Record, len(header))
		for i, key := range header {
			record[i] = row[key]
		}
		records = append(records, record)
	}
	return header, records, nil
}

// parseParquet reads a whole Parquet file through Arrow.
func parseParquet(reader io.Reader) (model.Header, []model.Record, error) {
	// Parquet requires random access
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	if len(data) == 0 {
		return nil, nil, ErrEmptyData
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read table: %w", err)
	}
	defer table.Release()

	schema := table.Schema()
	header := make(model.Header, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}

	tableReader := array.NewTableReader(table, 0)
	defer tableReader.Release()

	records := make([]model.Record, 0, table.NumRows())
	for tableReader.Next() {
		batch := tableReader.Record()
		for i, n := 0, int(batch.NumRows()); i < n; i++ {
			record := make(model.Record, batch.NumCols())
			for j, col := range batch.Columns() {
				if col.IsNull(i) {
					continue
				}
				record[j] = col.ValueStr(i)
			}
			records = append(records, record)
		}
	}
	if err := tableReader.Err(); err != nil {
		return nil, nil, fmt.Errorf("error reading table records: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, ErrEmptyData
	}
	return header, records, nil
}

// parseXLSX reads the first sheet of a workbook as a plain table.
func parseXLSX(reader io.Reader) (model.Header, []model.Record, error) {
	xlsxFile, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() {
		_ = xlsxFile.Close() // Ignore close error
	}()

	sheets := xlsxFile.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("no sheets found in xlsx")
	}

	rows, err := xlsxFile.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, ErrEmptyData
	}

	header := model.NewHeader(rows[0])
	return header, padRecords(rows[1:], len(header)), nil
}

// padRecords fits every row to width columns.
func padRecords(rows [][]string, width int) []model.Record {
	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		record := make(model.Record, width)
		copy(record, row)
		records = append(records, record)
	}
	return records
}

// trimBOM drops a UTF-8 byte order mark from the first header cell.
func trimBOM(header []string) []string {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header
}
