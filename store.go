package censustable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/nao1215/censustable/domain/model"
	"github.com/spf13/cast"
	"github.com/yaoapp/kun/log"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

const (
	sqliteDriverName = "sqlite"
	sqliteMemoryDSN  = ":memory:"

	// DatasetsTableSuffix names the table holding a decoded worksheet:
	// "KS101EW" is stored as "KS101EW_datasets".
	DatasetsTableSuffix = "_datasets"
)

// Granularity selects which places a measurement query returns.
type Granularity int

const (
	// GranularityWards returns census merged wards
	GranularityWards Granularity = iota
	// GranularityLocalAuthorities returns local authority districts
	GranularityLocalAuthorities
)

// String returns the granularity name used on the command line
func (g Granularity) String() string {
	if g == GranularityLocalAuthorities {
		return "local-authorities"
	}
	return "wards"
}

// ParseGranularity parses "wards" or "local-authorities" ("lad" for short).
func ParseGranularity(name string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "wards", "ward", "":
		return GranularityWards, nil
	case "local-authorities", "local-authority", "lad":
		return GranularityLocalAuthorities, nil
	default:
		return GranularityWards, fmt.Errorf("censustable: unknown granularity %q", name)
	}
}

// MeasurementQuery picks one dataset of a table and the places to report it for.
type MeasurementQuery struct {
	// TableID is the census table, e.g. "KS101EW".
	TableID string
	// Selection maps every category of the table to one of its values.
	Selection map[string]string
	// Granularity chooses wards or local authorities.
	Granularity Granularity
	// LocalAuthority limits wards to one district code. Ignored for local authorities.
	LocalAuthority string
	// CodePrefix keeps places whose district code starts with it, e.g. "E090000" for London.
	CodePrefix string
}

// Measurement is the value of a dataset at one place.
type Measurement struct {
	GeographyCode      string
	Name               string
	LocalAuthorityCode string
	LocalAuthorityName string
	Value              float64
}

// MeasurementSet is the answer to a MeasurementQuery.
type MeasurementSet struct {
	TableID string
	Dataset string
	// Column is the bulk data column the values come from.
	Column string
	Rows   []Measurement
	// Max is the largest value, 0 when there are no rows.
	Max float64
}

// Store is an in-memory SQLite database holding decoded tables, bulk data and
// the geography lookup. Use Builder to create one.
type Store struct {
	db      *sql.DB
	index   []TableInfo
	decoded map[string]*model.DecodedTable
	tables  map[string]*model.Table
	names   []string
}

func openStore(ctx context.Context) (*Store, error) {
	db, err := sql.Open(sqliteDriverName, sqliteMemoryDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, errors.Join(err, fmt.Errorf("failed to close database: %w", closeErr))
		}
		return nil, err
	}

	return &Store{
		db:      db,
		decoded: make(map[string]*model.DecodedTable),
		tables:  make(map[string]*model.Table),
	}, nil
}

// DB returns the underlying database for ad hoc SQL.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Index returns the workbook index the store was built from, if any.
func (s *Store) Index() []TableInfo {
	return s.index
}

// Tables lists the SQL tables in load order.
func (s *Store) Tables() []string {
	return slices.Clone(s.names)
}

// Table returns a loaded table by SQL name.
func (s *Store) Table(name string) (*model.Table, bool) {
	t, ok := s.tables[name]
	return t, ok
}

// Decoded returns the decoded worksheet of a table identifier.
func (s *Store) Decoded(tableID string) (*model.DecodedTable, bool) {
	d, ok := s.decoded[tableID]
	return d, ok
}

// addDecoded stores a decoded worksheet as "<tableID>_datasets".
func (s *Store) addDecoded(ctx context.Context, tableID string, decoded *model.DecodedTable) error {
	s.decoded[tableID] = decoded
	return s.load(ctx, decoded.Table(tableID+DatasetsTableSuffix))
}

// load creates a table and inserts every record in one transaction.
func (s *Store) load(ctx context.Context, table *model.Table) error {
	if _, ok := s.tables[table.Name()]; ok {
		return fmt.Errorf("censustable: table %s loaded twice", table.Name())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := insertTable(ctx, tx, table); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return NewErrorContext("load", "").WithTable(table.Name()).Error(err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.tables[table.Name()] = table
	s.names = append(s.names, table.Name())
	log.With(log.F{"table": table.Name(), "rows": len(table.Records())}).Debug("table loaded")
	return nil
}

func insertTable(ctx context.Context, tx *sql.Tx, table *model.Table) error {
	if _, err := tx.ExecContext(ctx, buildCreateTableQuery(table)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	if len(table.Records()) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, buildInsertQuery(table))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(table.Header()))
	for _, record := range table.Records() {
		for i := range args {
			args[i] = nil
			if i < len(record) {
				args[i] = record[i]
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}
	return nil
}

// buildCreateTableQuery constructs a CREATE TABLE query with inferred column types
func buildCreateTableQuery(table *model.Table) string {
	columns := make([]string, 0, len(table.Header()))
	for _, col := range table.ColumnInfo() {
		columns = append(columns, quoteIdentifier(col.Name)+" "+col.Type.String())
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdentifier(table.Name()), strings.Join(columns, ", "))
}

// buildInsertQuery constructs an INSERT query for the given table
func buildInsertQuery(table *model.Table) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(table.Header())), ", ")
	return fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdentifier(table.Name()), placeholders)
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Measurements resolves a selection to its dataset and returns that dataset's
// value at every matching place, in geography order.
func (s *Store) Measurements(ctx context.Context, q MeasurementQuery) (*MeasurementSet, error) {
	decoded, ok := s.decoded[q.TableID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, q.TableID)
	}
	data, ok := s.tables[q.TableID]
	if !ok {
		return nil, fmt.Errorf("%w: no bulk data for %s", ErrTableNotFound, q.TableID)
	}
	if _, ok := s.tables[GeographyTable]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, GeographyTable)
	}

	dataset, err := decoded.Lookup(q.Selection)
	if err != nil {
		return nil, err
	}
	column := DataColumnName(q.TableID, dataset)
	if data.Header().Index(column) < 0 {
		return nil, NewErrorContext("measure", "").WithTable(q.TableID).WithDetails(column).Error(ErrMissingColumn)
	}

	query, args := buildMeasurementQuery(q, column)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewErrorContext("measure", "").WithTable(q.TableID).Error(err)
	}
	defer rows.Close()

	set := &MeasurementSet{TableID: q.TableID, Dataset: dataset, Column: column}
	for rows.Next() {
		var m Measurement
		if err := rows.Scan(&m.GeographyCode, &m.Name, &m.LocalAuthorityCode, &m.LocalAuthorityName, &m.Value); err != nil {
			return nil, err
		}
		if len(set.Rows) == 0 || m.Value > set.Max {
			set.Max = m.Value
		}
		set.Rows = append(set.Rows, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.With(log.F{"table": q.TableID, "column": column, "granularity": q.Granularity.String(), "rows": len(set.Rows)}).
		Debug("measurements")
	return set, nil
}

func buildMeasurementQuery(q MeasurementQuery, column string) (string, []any) {
	var (
		where []string
		args  []any
	)

	switch q.Granularity {
	case GranularityLocalAuthorities:
		where = append(where, "g."+quoteIdentifier(WardCodeColumn)+" = ''")
	default:
		where = append(where, "g."+quoteIdentifier(WardCodeColumn)+" <> ''")
		if q.LocalAuthority != "" {
			where = append(where, "g."+quoteIdentifier(LADCodeColumn)+" = ?")
			args = append(args, q.LocalAuthority)
		}
	}
	if q.CodePrefix != "" {
		where = append(where, "substr(g."+quoteIdentifier(LADCodeColumn)+", 1, ?) = ?")
		args = append(args, len(q.CodePrefix), q.CodePrefix)
	}

	value := "d." + quoteIdentifier(column)
	where = append(where, "NULLIF(TRIM("+value+"), '') IS NOT NULL")

	query := fmt.Sprintf(
		"SELECT g.%s, g.%s, g.%s, g.%s, CAST(%s AS REAL) FROM %s g JOIN %s d ON d.%s = g.%s WHERE %s ORDER BY g.rowid",
		quoteIdentifier(GeographyCodeColumn), quoteIdentifier(NameColumn),
		quoteIdentifier(LADCodeColumn), quoteIdentifier(LADNameColumn),
		value,
		quoteIdentifier(GeographyTable), quoteIdentifier(q.TableID),
		quoteIdentifier(GeographyCodeColumn), quoteIdentifier(GeographyCodeColumn),
		strings.Join(where, " AND "),
	)
	return query, args
}

// Snapshot reads a table back from the database, including rows changed
// through DB().
func (s *Store) Snapshot(ctx context.Context, name string) (*model.Table, error) {
	if _, ok := s.tables[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdentifier(name)+" ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []model.Record
	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		record := make(model.Record, len(columns))
		for i, v := range values {
			record[i] = cast.ToString(v)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return model.NewTable(name, model.NewHeader(columns), records), nil
}

// Dump writes every table to outputDir, one file per table.
func (s *Store) Dump(ctx context.Context, outputDir string, options model.DumpOptions) error {
	for _, name := range s.names {
		table, err := s.Snapshot(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to read table %s: %w", name, err)
		}
		if _, err := DumpTable(table, outputDir, options); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
