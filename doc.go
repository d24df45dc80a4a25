// Package censustable decodes UK census "Cell Numbered DC Tables" worksheets
// into flat tables and joins them with bulk census data and a ward to local
// authority geography lookup.
//
// A census worksheet spreads the categories of a table over a nested column
// header and a nested row header. Every body cell holds a dataset code, the
// suffix of the bulk data column that carries the table's measurements:
// dataset "0001" of table "KS101EW" is column "KS101EW0001" of
// "KS101EWDATA.CSV". Decode turns the worksheet into one record per body cell
// with a column per category level and a final "Dataset" column.
//
// # Header discovery
//
// The column header starts at row 6 (0-based) and ends above the first row
// with a value in column 0. Merged header cells are empty after the first
// column they cover and are filled from the column to their left. The row
// header starts below it; its depth is the number of rows down to and
// including the first row with a value in column 1. Rows with an empty column
// 1 are labels for the upper row levels, rows with values are leaves.
//
// A header cell starting with "All categories: " names its level after the
// rest of the text and decodes as the value "All".
//
// # Basic Usage
//
//	wb, err := censustable.OpenWorkbook("Cell Numbered DC Tables 3.3.xlsx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer wb.Close()
//
//	table, err := wb.ReadTable("KS101EW")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dataset, err := table.Lookup(map[string]string{"Sex": "Males", "Age": "All"})
//
// # Measurements
//
// Builder loads decoded tables, bulk data and the geography lookup into an
// in-memory SQLite database:
//
//	builder := censustable.NewBuilder().
//	    AddWorkbook("data/Cell Numbered DC Tables 3.3.xlsx").
//	    AddDataDir("data").
//	    AddGeography("data/lookup.csv").
//	    AddTables("KS101EW")
//
//	validated, err := builder.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store, err := validated.Open(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	set, err := store.Measurements(ctx, censustable.MeasurementQuery{
//	    TableID:     "KS101EW",
//	    Selection:   map[string]string{"Sex": "Males", "Age": "All"},
//	    Granularity: censustable.GranularityLocalAuthorities,
//	    CodePrefix:  censustable.LondonCodePrefix,
//	})
//
// # Files
//
// Bulk data and lookup files may be CSV, TSV, LTSV, Parquet or XLSX, each
// optionally compressed with gzip, bzip2, xz or zstandard. Extensions are
// matched case-insensitively. DumpTable writes any table back out in the same
// formats; bzip2 is read only.
package censustable
