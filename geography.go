package censustable

import (
	"github.com/nao1215/censustable/domain/model"
	"github.com/yaoapp/kun/log"
)

// GeographyTable is the table name of the place lookup.
const GeographyTable = "geography"

// Lookup file columns.
const (
	WardCodeColumn = "CMWD11CD"
	WardNameColumn = "CMWD11NM"
	LADCodeColumn  = "LAD11CD"
	LADNameColumn  = "LAD11NM"
	NameColumn     = "Name"
)

// geographyHeader is the column order of the geography table.
var geographyHeader = model.Header{
	WardCodeColumn, WardNameColumn, LADCodeColumn, LADNameColumn, GeographyCodeColumn, NameColumn,
}

// ReadGeography reads the ward to merged ward to local authority lookup and
// returns one place per census merged ward followed by one place per local
// authority district. Ward places take GeographyCode and Name from the merged
// ward; district places take them from the district and leave the ward
// columns blank. Duplicates are dropped, first occurrence first.
func ReadGeography(path string) (*model.Table, error) {
	lookup, err := readTableFile(path)
	if err != nil {
		return nil, err
	}

	header := lookup.Header()
	cols := make([]int, 0, 4)
	for _, name := range []string{WardCodeColumn, WardNameColumn, LADCodeColumn, LADNameColumn} {
		idx := header.Index(name)
		if idx < 0 {
			return nil, NewErrorContext("read geography", path).WithDetails(name).Error(ErrMissingColumn)
		}
		cols = append(cols, idx)
	}

	type ward struct{ code, name, lad, ladName string }
	type district struct{ code, name string }

	var (
		wards     []ward
		districts []district
		seenWard  = make(map[ward]bool)
		seenLAD   = make(map[district]bool)
	)
	for _, record := range lookup.Records() {
		w := ward{record[cols[0]], record[cols[1]], record[cols[2]], record[cols[3]]}
		if !seenWard[w] {
			seenWard[w] = true
			wards = append(wards, w)
		}
		d := district{w.lad, w.ladName}
		if !seenLAD[d] {
			seenLAD[d] = true
			districts = append(districts, d)
		}
	}
	if len(wards) == 0 {
		return nil, NewErrorContext("read geography", path).Error(ErrEmptyData)
	}

	records := make([]model.Record, 0, len(wards)+len(districts))
	for _, w := range wards {
		records = append(records, model.Record{w.code, w.name, w.lad, w.ladName, w.code, w.name})
	}
	for _, d := range districts {
		records = append(records, model.Record{"", "", d.code, d.name, d.code, d.name})
	}

	log.With(log.F{"file": path, "wards": len(wards), "districts": len(districts)}).Debug("geography read")
	return model.NewTable(GeographyTable, geographyHeader, records), nil
}
