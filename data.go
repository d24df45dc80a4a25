package censustable

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/censustable/domain/model"
	"github.com/yaoapp/kun/log"
)

// DataFileSuffix follows the table identifier in bulk data file names,
// e.g. "KS101EWDATA.CSV".
const DataFileSuffix = "DATA"

// GeographyCodeColumn identifies the location of a bulk data row.
const GeographyCodeColumn = "GeographyCode"

// dataFormatRank orders candidate bulk data files when several exist.
var dataFormatRank = map[model.FileType]int{
	model.FileTypeCSV:     0,
	model.FileTypeTSV:     1,
	model.FileTypeParquet: 2,
	model.FileTypeXLSX:    3,
	model.FileTypeLTSV:    4,
}

// DataColumnName names the bulk data column holding a dataset of a table:
// the table identifier followed by the 4-digit code, e.g. "KS101EW0001".
func DataColumnName(tableID, dataset string) string {
	return tableID + dataset
}

// DataFile finds the bulk data file of tableID in dir. Names are matched
// case-insensitively. Uncompressed CSV is preferred over other formats.
func DataFile(dir, tableID string) (string, error) {
	if err := validateTableID(tableID); err != nil {
		return "", err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", NewErrorContext("find data", dir).WithTable(tableID).Error(err)
	}

	want := strings.ToLower(tableID + DataFileSuffix)
	best, bestRank := "", -1
	for _, entry := range entries {
		if entry.IsDir() || !isValidFileName(entry.Name()) {
			continue
		}
		f := model.NewFile(entry.Name())
		if !f.IsSupported() || strings.ToLower(model.TableFromFilePath(entry.Name())) != want {
			continue
		}

		rank := dataFormatRank[f.Type()] * 2
		if f.IsCompressed() {
			rank++
		}
		if bestRank < 0 || rank < bestRank {
			best, bestRank = entry.Name(), rank
		}
	}
	if best == "" {
		return "", NewErrorContext("find data", dir).WithTable(tableID).
			Error(fmt.Errorf("%w: no %s%s file", os.ErrNotExist, tableID, DataFileSuffix))
	}
	return filepath.Join(dir, best), nil
}

// ReadData reads the bulk data of tableID from dir. The returned table is
// named after tableID and keeps the file's columns, GeographyCode first in
// census releases.
func ReadData(dir, tableID string) (*model.Table, error) {
	path, err := DataFile(dir, tableID)
	if err != nil {
		return nil, err
	}

	table, err := readTableFile(path)
	if err != nil {
		return nil, err
	}
	if table.Header().Index(GeographyCodeColumn) < 0 {
		return nil, NewErrorContext("read data", path).WithTable(tableID).
			WithDetails(GeographyCodeColumn).Error(ErrMissingColumn)
	}

	log.With(log.F{"file": path, "table": tableID, "rows": len(table.Records())}).Debug("bulk data read")
	return model.NewTable(tableID, table.Header(), table.Records()), nil
}
