package model

import (
	"testing"
)

func TestNewTable(t *testing.T) {
	t.Parallel()

	header := NewHeader([]string{"GeographyCode", "KS101EW0001"})
	records := []Record{
		NewRecord([]string{"E09000001", "7375"}),
		NewRecord([]string{"E09000002", "185911"}),
	}

	table := NewTable("KS101EW", header, records)

	if table.Name() != "KS101EW" {
		t.Errorf("expected name 'KS101EW', got %s", table.Name())
	}
	if !table.Header().Equal(header) {
		t.Errorf("expected header %v, got %v", header, table.Header())
	}
	if len(table.Records()) != 2 {
		t.Errorf("expected 2 records, got %d", len(table.Records()))
	}
	if got := table.ColumnInfo()[1].Type; got != ColumnTypeInteger {
		t.Errorf("expected INTEGER data column, got %v", got)
	}
}

func TestTable_Column(t *testing.T) {
	t.Parallel()

	table := NewTable("geo", NewHeader([]string{"GeographyCode", "Name"}), []Record{
		NewRecord([]string{"E09000001", "City of London"}),
		NewRecord([]string{"E09000002"}),
	})

	got := table.Column("Name")
	if len(got) != 2 || got[0] != "City of London" || got[1] != "" {
		t.Errorf("unexpected column values %v", got)
	}
	if table.Column("Missing") != nil {
		t.Error("expected nil for unknown column")
	}
}

func TestTable_Equal(t *testing.T) {
	t.Parallel()

	header := NewHeader([]string{"Age", DatasetColumn})
	records := []Record{
		NewRecord([]string{"16-24", "0001"}),
		NewRecord([]string{"25-44", "0002"}),
	}

	table1 := NewTable("KS102EW", header, records)
	if !table1.Equal(NewTable("KS102EW", header, records)) {
		t.Error("expected tables to be equal")
	}
	if table1.Equal(NewTable("KS103EW", header, records)) {
		t.Error("expected tables with different names to be not equal")
	}
	if table1.Equal(NewTable("KS102EW", NewHeader([]string{"Sex", DatasetColumn}), records)) {
		t.Error("expected tables with different headers to be not equal")
	}
	if table1.Equal(NewTable("KS102EW", header, records[:1])) {
		t.Error("expected tables with different record count to be not equal")
	}
	if table1.Equal(NewTable("KS102EW", header, []Record{records[0], NewRecord([]string{"25-44", "0003"})})) {
		t.Error("expected tables with different record values to be not equal")
	}
}

func TestTableFromFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filePath string
		expected string
	}{
		{name: "Bulk data file", filePath: "KS101EWDATA.CSV", expected: "KS101EWDATA"},
		{name: "File with path", filePath: "/data/census/KS101EWDATA.csv", expected: "KS101EWDATA"},
		{name: "Compressed file", filePath: "KS101EWDATA.csv.gz", expected: "KS101EWDATA"},
		{name: "Upper case compression", filePath: "KS101EWDATA.CSV.ZST", expected: "KS101EWDATA"},
		{name: "File with multiple dots", filePath: "lookup.2011.csv", expected: "lookup.2011"},
		{name: "File without extension", filePath: "data", expected: "data"},
		{name: "Hidden file", filePath: ".hidden", expected: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := TableFromFilePath(tt.filePath); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}
