package censustable

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"
	"github.com/nao1215/censustable/domain/model"
	"github.com/xuri/excelize/v2"
	"github.com/yaoapp/kun/log"
)

// maxSheetNameLength is the longest sheet name Excel accepts.
const maxSheetNameLength = 31

// DumpTable writes table to outputDir as <name><format ext><compression ext>
// and returns the written path. The directory is created if needed.
//
// Example:
//
//	options := model.NewDumpOptions().
//		WithFormat(model.OutputFormatParquet).
//		WithCompression(model.CompressionZSTD)
//	path, err := censustable.DumpTable(decoded.Table("KS101EW"), "./out", options)
func DumpTable(table *model.Table, outputDir string, options model.DumpOptions) (string, error) {
	v := newValidator()
	if err := v.validateOutputDirectory(outputDir); err != nil {
		return "", NewErrorContext("dump", outputDir).WithTable(table.Name()).Error(err)
	}
	if err := v.validateDumpOptions(options); err != nil {
		return "", NewErrorContext("dump", outputDir).WithTable(table.Name()).Error(err)
	}
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(outputDir, table.Name()+options.FileExtension())
	writer, closeWriter, err := createCompressed(path, options.Compression)
	if err != nil {
		return "", NewErrorContext("dump", path).WithTable(table.Name()).Error(err)
	}

	writeErr := writeTable(writer, table, options.Format)
	closeErr := closeWriter()
	if writeErr != nil {
		_ = os.Remove(path)
		return "", NewErrorContext("dump", path).WithTable(table.Name()).Error(writeErr)
	}
	if closeErr != nil {
		return "", NewErrorContext("dump", path).WithTable(table.Name()).Error(closeErr)
	}

	log.With(log.F{"file": path, "table": table.Name(), "format": options.Format.String(), "rows": len(table.Records())}).
		Info("table dumped")
	return path, nil
}

func writeTable(w io.Writer, table *model.Table, format model.OutputFormat) error {
	switch format {
	case model.OutputFormatCSV:
		return writeDelimited(w, table, csvDelimiter)
	case model.OutputFormatTSV:
		return writeDelimited(w, table, tsvDelimiter)
	case model.OutputFormatLTSV:
		return writeLTSV(w, table)
	case model.OutputFormatParquet:
		return writeParquet(w, table)
	case model.OutputFormatXLSX:
		return writeXLSX(w, table)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
}

func writeDelimited(w io.Writer, table *model.Table, delimiter rune) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delimiter

	if err := csvWriter.Write(table.Header()); err != nil {
		return err
	}
	for _, record := range table.Records() {
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// writeLTSV writes one label:value line per record. Tabs and newlines in
// values are replaced by spaces.
func writeLTSV(w io.Writer, table *model.Table) error {
	replacer := strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")
	header := table.Header()

	var sb strings.Builder
	for _, record := range table.Records() {
		sb.Reset()
		for i, name := range header {
			if i > 0 {
				sb.WriteByte('\t')
			}
			value := ""
			if i < len(record) {
				value = record[i]
			}
			sb.WriteString(name)
			sb.WriteByte(':')
			sb.WriteString(replacer.Replace(value))
		}
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

// writeParquet writes the table with INTEGER columns as int64, REAL columns
// as float64 and everything else as strings. Empty numeric cells are null.
func writeParquet(w io.Writer, table *model.Table) error {
	mem := memory.NewGoAllocator()
	columns := table.ColumnInfo()

	fields := make([]arrow.Field, len(columns))
	for i, col := range columns {
		fields[i] = arrow.Field{Name: col.Name, Type: arrowType(col.Type), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for _, record := range table.Records() {
		for i, col := range columns {
			value := ""
			if i < len(record) {
				value = strings.TrimSpace(record[i])
			}
			appendArrowValue(builder.Field(i), col.Type, value)
		}
	}

	rec := builder.NewRecord()
	defer rec.Release()

	arrowTable := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer arrowTable.Release()

	// the parquet writer closes its sink; the caller owns w
	sink := struct{ io.Writer }{w}
	chunkSize := max(arrowTable.NumRows(), 1)
	return pqarrow.WriteTable(arrowTable, sink, chunkSize, parquet.NewWriterProperties(parquet.WithAllocator(mem)), pqarrow.DefaultWriterProps())
}

func arrowType(t model.ColumnType) arrow.DataType {
	switch t {
	case model.ColumnTypeInteger:
		return arrow.PrimitiveTypes.Int64
	case model.ColumnTypeReal:
		return arrow.PrimitiveTypes.Float64
	default:
		return arrow.BinaryTypes.String
	}
}

func appendArrowValue(b array.Builder, t model.ColumnType, value string) {
	switch t {
	case model.ColumnTypeInteger:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			b.AppendNull()
			return
		}
		b.(*array.Int64Builder).Append(n)
	case model.ColumnTypeReal:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			b.AppendNull()
			return
		}
		b.(*array.Float64Builder).Append(f)
	default:
		b.(*array.StringBuilder).Append(value)
	}
}

// writeXLSX writes the table to a single sheet named after it. Numeric
// columns are written as numbers.
func writeXLSX(w io.Writer, table *model.Table) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close() // Ignore close error
	}()

	sheet := sheetName(table.Name())
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return err
	}

	header := make([]any, len(table.Header()))
	for i, name := range table.Header() {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	columns := table.ColumnInfo()
	for r, record := range table.Records() {
		row := make([]any, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[i] = xlsxValue(col.Type, record[i])
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func xlsxValue(t model.ColumnType, value string) any {
	switch t {
	case model.ColumnTypeInteger:
		if n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return n
		}
	case model.ColumnTypeReal:
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return value
}

func sheetName(name string) string {
	name = strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_").Replace(name)
	if len(name) > maxSheetNameLength {
		name = name[:maxSheetNameLength]
	}
	if name == "" {
		name = "Sheet1"
	}
	return name
}
