package censustable

import (
	"path/filepath"
	"testing"

	"github.com/nao1215/censustable/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadGeography(t *testing.T) {
	t.Parallel()

	t.Run("wards then districts", func(t *testing.T) {
		t.Parallel()

		table, err := ReadGeography(filepath.Join("testdata", "geography.csv"))
		require.NoError(t, err)

		assert.Equal(t, GeographyTable, table.Name())
		assert.Equal(t, model.Header{"CMWD11CD", "CMWD11NM", "LAD11CD", "LAD11NM", "GeographyCode", "Name"}, table.Header())

		want := [][]string{
			{"E05000026", "Abbey", "E09000002", "Barking and Dagenham", "E05000026", "Abbey"},
			{"E05000027", "Alibon", "E09000002", "Barking and Dagenham", "E05000027", "Alibon"},
			{"E05000100", "Aldersgate and Cripplegate", "E09000001", "City of London", "E05000100", "Aldersgate and Cripplegate"},
			{"E05008000", "Burn Valley", "E06000001", "Hartlepool", "E05008000", "Burn Valley"},
			{"", "", "E09000002", "Barking and Dagenham", "E09000002", "Barking and Dagenham"},
			{"", "", "E09000001", "City of London", "E09000001", "City of London"},
			{"", "", "E06000001", "Hartlepool", "E06000001", "Hartlepool"},
		}
		got := make([][]string, 0, len(table.Records()))
		for _, r := range table.Records() {
			got = append(got, []string(r))
		}
		assert.Equal(t, want, got)
	})

	t.Run("missing lookup column", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, filepath.Join(t.TempDir(), "lookup.csv"), "WD11CD,CMWD11CD,CMWD11NM\nE05000026,E05000026,Abbey\n")
		_, err := ReadGeography(path)
		assert.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("no rows", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, filepath.Join(t.TempDir(), "lookup.csv"), "CMWD11CD,CMWD11NM,LAD11CD,LAD11NM\n")
		_, err := ReadGeography(path)
		assert.ErrorIs(t, err, ErrEmptyData)
	})

	t.Run("tsv lookup", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, filepath.Join(t.TempDir(), "lookup.tsv"),
			"CMWD11CD\tCMWD11NM\tLAD11CD\tLAD11NM\nW05000001\tAberaeron\tW06000008\tCeredigion\n")
		table, err := ReadGeography(path)
		require.NoError(t, err)
		assert.Len(t, table.Records(), 2)
	})
}
