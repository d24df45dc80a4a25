package censustable

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/censustable/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTable_Delimited(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fileType model.FileType
		input    string
		header   model.Header
		records  []model.Record
	}{
		{
			name:     "csv",
			fileType: model.FileTypeCSV,
			input:    "GeographyCode,KS101EW0001\nE05000026,100\nE05000027,200\n",
			header:   model.Header{"GeographyCode", "KS101EW0001"},
			records:  []model.Record{{"E05000026", "100"}, {"E05000027", "200"}},
		},
		{
			name:     "csv with byte order mark",
			fileType: model.FileTypeCSV,
			input:    "\ufeffGeographyCode,KS101EW0001\nE05000026,100\n",
			header:   model.Header{"GeographyCode", "KS101EW0001"},
			records:  []model.Record{{"E05000026", "100"}},
		},
		{
			name:     "short rows are padded",
			fileType: model.FileTypeCSV,
			input:    "a,b,c\n1\n1,2,3\n",
			header:   model.Header{"a", "b", "c"},
			records:  []model.Record{{"1", "", ""}, {"1", "2", "3"}},
		},
		{
			name:     "tsv",
			fileType: model.FileTypeTSV,
			input:    "GeographyCode\tName\nE09000001\tCity of London\n",
			header:   model.Header{"GeographyCode", "Name"},
			records:  []model.Record{{"E09000001", "City of London"}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			table, err := readTable(strings.NewReader(tt.input), tt.fileType, "t")
			require.NoError(t, err)
			assert.Equal(t, tt.header, table.Header())
			assert.Equal(t, tt.records, table.Records())
		})
	}
}

func TestReadTable_LTSV(t *testing.T) {
	t.Parallel()

	input := "code:E05000026\tname:Abbey\n\ncode:E05000027\tvalue:12\tname:Alibon\n"
	table, err := readTable(strings.NewReader(input), model.FileTypeLTSV, "places")
	require.NoError(t, err)

	if !table.Header().Equal(model.Header{"code", "name", "value"}) {
		t.Errorf("header keeps first-seen order, got %v", table.Header())
	}
	assert.Equal(t, []model.Record{
		{"E05000026", "Abbey", ""},
		{"E05000027", "Alibon", "12"},
	}, table.Records())
}

func TestReadTable_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fileType model.FileType
		input    string
		want     error
	}{
		{name: "empty csv", fileType: model.FileTypeCSV, input: "", want: ErrEmptyData},
		{name: "empty ltsv", fileType: model.FileTypeLTSV, input: "\n\n", want: ErrEmptyData},
		{name: "duplicate column", fileType: model.FileTypeCSV, input: "a,a\n1,2\n", want: model.ErrDuplicateColumnName},
		{name: "bad quoting", fileType: model.FileTypeCSV, input: "a,b\n\"1,2\n", want: ErrInvalidData},
		{name: "empty parquet", fileType: model.FileTypeParquet, input: "", want: ErrEmptyData},
		{name: "unsupported", fileType: model.FileTypeUnsupported, input: "x", want: ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := readTable(strings.NewReader(tt.input), tt.fileType, "t")
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestReadTableFile(t *testing.T) {
	t.Parallel()

	t.Run("names the table after the file", func(t *testing.T) {
		t.Parallel()

		table, err := readTableFile(filepath.Join("testdata", "KS101EWDATA.CSV"))
		require.NoError(t, err)
		assert.Equal(t, "KS101EWDATA", table.Name())
		assert.Equal(t, model.ColumnTypeText, table.ColumnInfo()[0].Type)
		assert.Equal(t, model.ColumnTypeInteger, table.ColumnInfo()[1].Type)
	})

	t.Run("gzip", func(t *testing.T) {
		t.Parallel()

		path := writeGzip(t, filepath.Join(t.TempDir(), "lookup.tsv.gz"), "a\tb\n1\t2\n")
		table, err := readTableFile(path)
		require.NoError(t, err)
		assert.Equal(t, "lookup", table.Name())
		assert.Equal(t, []model.Record{{"1", "2"}}, table.Records())
	})

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, filepath.Join(t.TempDir(), "notes.txt"), "hello")
		_, err := readTableFile(path)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := readTableFile(filepath.Join(t.TempDir(), "missing.csv"))
		assert.Error(t, err)
	})
}
