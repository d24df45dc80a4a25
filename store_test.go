package censustable

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nao1215/censustable/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openCensusStore loads the fixture workbook, the KS101EW bulk data and the
// geography lookup.
func openCensusStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	store, err := OpenStore(ctx, censusWorkbook(t), "testdata", filepath.Join("testdata", "geography.csv"), "KS101EW")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close() // Ignore close error
	})
	return store
}

func codesOf(set *MeasurementSet) []string {
	codes := make([]string, 0, len(set.Rows))
	for _, row := range set.Rows {
		codes = append(codes, row.GeographyCode)
	}
	return codes
}

func valuesOf(set *MeasurementSet) []float64 {
	values := make([]float64, 0, len(set.Rows))
	for _, row := range set.Rows {
		values = append(values, row.Value)
	}
	return values
}

func TestStore_Tables(t *testing.T) {
	t.Parallel()

	store := openCensusStore(t)

	assert.Equal(t, []string{"KS101EW_datasets", "KS101EW", GeographyTable}, store.Tables())
	assert.Len(t, store.Index(), 2)

	decoded, ok := store.Decoded("KS101EW")
	require.True(t, ok)
	assert.Equal(t, 6, decoded.Len())

	_, ok = store.Table("KS999EW")
	assert.False(t, ok)

	var count int
	require.NoError(t, store.DB().QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM "KS101EW_datasets" WHERE "Sex" = 'Males'`).Scan(&count))
	assert.Equal(t, 2, count)

	var dataset string
	require.NoError(t, store.DB().QueryRowContext(context.Background(),
		`SELECT "Dataset" FROM "KS101EW_datasets" WHERE "Age" = 'Age 0 to 15' AND "Sex" = 'Females'`).Scan(&dataset))
	assert.Equal(t, "0006", dataset, "dataset codes keep their leading zeros")
}

func TestStore_Measurements(t *testing.T) {
	t.Parallel()

	store := openCensusStore(t)
	all := map[string]string{"Age": "All", "Sex": "All"}

	tests := []struct {
		name    string
		query   MeasurementQuery
		dataset string
		codes   []string
		values  []float64
		max     float64
	}{
		{
			name:    "all wards",
			query:   MeasurementQuery{TableID: "KS101EW", Selection: all},
			dataset: "0001",
			codes:   []string{"E05000026", "E05000027", "E05000100", "E05008000"},
			values:  []float64{100, 200, 300, 400},
			max:     400,
		},
		{
			name:    "london wards",
			query:   MeasurementQuery{TableID: "KS101EW", Selection: all, CodePrefix: LondonCodePrefix},
			dataset: "0001",
			codes:   []string{"E05000026", "E05000027", "E05000100"},
			values:  []float64{100, 200, 300},
			max:     300,
		},
		{
			name:    "wards of one district",
			query:   MeasurementQuery{TableID: "KS101EW", Selection: all, LocalAuthority: "E09000002"},
			dataset: "0001",
			codes:   []string{"E05000026", "E05000027"},
			values:  []float64{100, 200},
			max:     200,
		},
		{
			name:    "local authorities",
			query:   MeasurementQuery{TableID: "KS101EW", Selection: all, Granularity: GranularityLocalAuthorities},
			dataset: "0001",
			codes:   []string{"E09000002", "E09000001", "E06000001"},
			values:  []float64{185911, 7375, 92028},
			max:     185911,
		},
		{
			name: "london local authorities ignore the district filter",
			query: MeasurementQuery{
				TableID: "KS101EW", Selection: all, Granularity: GranularityLocalAuthorities,
				LocalAuthority: "E09000002", CodePrefix: LondonCodePrefix,
			},
			dataset: "0001",
			codes:   []string{"E09000002", "E09000001"},
			values:  []float64{185911, 7375},
			max:     185911,
		},
		{
			name:    "empty values are skipped",
			query:   MeasurementQuery{TableID: "KS101EW", Selection: map[string]string{"Age": "Age 0 to 15", "Sex": "Females"}},
			dataset: "0006",
			codes:   []string{"E05000026", "E05000027", "E05000100"},
			values:  []float64{10, 18, 40},
			max:     40,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			set, err := store.Measurements(context.Background(), tt.query)
			require.NoError(t, err)

			assert.Equal(t, tt.dataset, set.Dataset)
			assert.Equal(t, DataColumnName("KS101EW", tt.dataset), set.Column)
			assert.Equal(t, tt.codes, codesOf(set))
			assert.Equal(t, tt.values, valuesOf(set))
			assert.InDelta(t, tt.max, set.Max, 0)
		})
	}
}

func TestStore_MeasurementNames(t *testing.T) {
	t.Parallel()

	store := openCensusStore(t)
	set, err := store.Measurements(context.Background(), MeasurementQuery{
		TableID:    "KS101EW",
		Selection:  map[string]string{"Age": "All", "Sex": "Males"},
		CodePrefix: "E090000",
	})
	require.NoError(t, err)
	require.Len(t, set.Rows, 3)

	assert.Equal(t, Measurement{
		GeographyCode:      "E05000100",
		Name:               "Aldersgate and Cripplegate",
		LocalAuthorityCode: "E09000001",
		LocalAuthorityName: "City of London",
		Value:              150,
	}, set.Rows[2])
}

func TestStore_MeasurementErrors(t *testing.T) {
	t.Parallel()

	store := openCensusStore(t)
	ctx := context.Background()

	t.Run("unknown table", func(t *testing.T) {
		t.Parallel()

		_, err := store.Measurements(ctx, MeasurementQuery{TableID: "KS102EW"})
		assert.ErrorIs(t, err, ErrTableNotFound)
	})

	t.Run("incomplete selection", func(t *testing.T) {
		t.Parallel()

		_, err := store.Measurements(ctx, MeasurementQuery{TableID: "KS101EW", Selection: map[string]string{"Age": "All"}})
		assert.ErrorIs(t, err, ErrIncompleteSelection)
	})

	t.Run("unknown category", func(t *testing.T) {
		t.Parallel()

		_, err := store.Measurements(ctx, MeasurementQuery{
			TableID:   "KS101EW",
			Selection: map[string]string{"Age": "All", "Sex": "All", "Tenure": "Owned"},
		})
		assert.ErrorIs(t, err, ErrIncompleteSelection)
	})

	t.Run("no matching dataset", func(t *testing.T) {
		t.Parallel()

		_, err := store.Measurements(ctx, MeasurementQuery{
			TableID:   "KS101EW",
			Selection: map[string]string{"Age": "Age 16 to 24", "Sex": "All"},
		})
		assert.ErrorIs(t, err, ErrNoMatchingDataset)
	})
}

func TestStore_MissingDataColumn(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "KS101EWDATA.CSV"), "GeographyCode,KS101EW0001\nE05000026,100\n")

	store, err := OpenStore(context.Background(), censusWorkbook(t), dir, filepath.Join("testdata", "geography.csv"), "KS101EW")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Measurements(context.Background(), MeasurementQuery{
		TableID:   "KS101EW",
		Selection: map[string]string{"Age": "All", "Sex": "Males"},
	})
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestStore_SnapshotAndDump(t *testing.T) {
	t.Parallel()

	store := openCensusStore(t)
	ctx := context.Background()

	_, err := store.DB().ExecContext(ctx, `UPDATE "KS101EW" SET "KS101EW0001" = 101 WHERE "GeographyCode" = 'E05000026'`)
	require.NoError(t, err)

	snapshot, err := store.Snapshot(ctx, "KS101EW")
	require.NoError(t, err)
	assert.Equal(t, "101", snapshot.Records()[0][1])
	assert.Equal(t, "", snapshot.Records()[3][6], "empty cells stay empty")

	_, err = store.Snapshot(ctx, "nope")
	assert.ErrorIs(t, err, ErrTableNotFound)

	dir := t.TempDir()
	require.NoError(t, store.Dump(ctx, dir, model.NewDumpOptions().WithFormat(model.OutputFormatTSV).WithCompression(model.CompressionGZ)))

	for _, name := range store.Tables() {
		got, err := readTableFile(filepath.Join(dir, name+".tsv.gz"))
		require.NoError(t, err)
		want, _ := store.Table(name)
		assert.Equal(t, want.Header(), got.Header())
		assert.Len(t, got.Records(), len(want.Records()))
	}
}

func TestParseGranularity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  Granularity
		ok    bool
	}{
		{"wards", GranularityWards, true},
		{"", GranularityWards, true},
		{"Ward", GranularityWards, true},
		{"local-authorities", GranularityLocalAuthorities, true},
		{"LAD", GranularityLocalAuthorities, true},
		{"counties", GranularityWards, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseGranularity(tt.input)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "wards", GranularityWards.String())
	assert.Equal(t, "local-authorities", GranularityLocalAuthorities.String())
}

func TestQuoteIdentifier(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"KS101EW"`, quoteIdentifier("KS101EW"))
	assert.Equal(t, `"a""b"`, quoteIdentifier(`a"b`))
}
