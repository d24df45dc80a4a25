package censustable

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/nao1215/censustable/domain/model"
	"github.com/yaoapp/kun/log"
)

// Builder configures the inputs of a Store. Use NewBuilder to create one,
// chain the Add methods, then call Build and Open.
//
// The typical usage pattern is:
//
//	builder := censustable.NewBuilder().
//		AddWorkbook("data/Cell Numbered DC Tables 3.3.xlsx").
//		AddDataDir("data").
//		AddGeography("data/lookup.csv").
//		AddTables("KS101EW", "KS102EW")
//	validated, err := builder.Build(ctx)
//	if err != nil {
//		return err
//	}
//	defer validated.Cleanup()
//	store, err := validated.Open(ctx)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
type Builder struct {
	workbook   string
	dataDirs   []string
	dataFS     []fs.FS
	geography  string
	tables     []string
	decodeOpts []DecodeOption

	// collectedDirs contains data directories after Build, including temporary copies of dataFS
	collectedDirs []string
	// tempDirs tracks temporary directories created for cleanup
	tempDirs []string
	built    bool
}

// NewBuilder creates a new store builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddWorkbook sets the census workbook whose sheets are decoded.
func (b *Builder) AddWorkbook(path string) *Builder {
	b.workbook = path
	return b
}

// AddDataDir adds a directory holding bulk data files such as "KS101EWDATA.CSV".
// Directories are searched in the order they were added.
func (b *Builder) AddDataDir(dir string) *Builder {
	b.dataDirs = append(b.dataDirs, dir)
	return b
}

// AddDataFS adds bulk data files from a filesystem, e.g. an embed.FS. Supported
// files are copied to a temporary directory during Build; call Cleanup to
// remove it.
func (b *Builder) AddDataFS(filesystem fs.FS) *Builder {
	b.dataFS = append(b.dataFS, filesystem)
	return b
}

// AddGeography sets the ward to local authority lookup file.
func (b *Builder) AddGeography(path string) *Builder {
	b.geography = path
	return b
}

// AddTables adds table identifiers to load.
func (b *Builder) AddTables(tableIDs ...string) *Builder {
	b.tables = append(b.tables, tableIDs...)
	return b
}

// WithDecodeOptions sets options used to decode every workbook table.
func (b *Builder) WithDecodeOptions(opts ...DecodeOption) *Builder {
	b.decodeOpts = append(b.decodeOpts, opts...)
	return b
}

// Build validates all configured inputs and copies filesystem inputs to
// temporary directories. It must be called before Open.
func (b *Builder) Build(ctx context.Context) (*Builder, error) {
	if b.workbook == "" && len(b.dataDirs) == 0 && len(b.dataFS) == 0 && b.geography == "" {
		return nil, fmt.Errorf("%w: add a workbook, a data directory or a geography file", ErrNoInput)
	}

	v := newValidator()
	if b.workbook != "" {
		if err := v.validateFile(b.workbook); err != nil {
			return nil, NewErrorContext("build", b.workbook).Error(err)
		}
		if ft, _ := model.DetectFileType(b.workbook); ft != model.FileTypeXLSX {
			return nil, NewErrorContext("build", b.workbook).WithDetails("workbook must be xlsx").Error(ErrUnsupportedFormat)
		}
	}
	if b.geography != "" {
		if err := v.validateFile(b.geography); err != nil {
			return nil, NewErrorContext("build", b.geography).Error(err)
		}
	}

	hasData := len(b.dataDirs) > 0 || len(b.dataFS) > 0
	if len(b.tables) > 0 && b.workbook == "" && !hasData {
		return nil, fmt.Errorf("%w: tables need a workbook or a data directory", ErrNoInput)
	}
	if len(b.tables) == 0 && (b.workbook != "" || hasData) {
		return nil, fmt.Errorf("%w: no tables added", ErrNoInput)
	}
	seen := make(map[string]bool, len(b.tables))
	for _, id := range b.tables {
		if err := validateTableID(id); err != nil {
			return nil, err
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: %s added twice", ErrInvalidTableID, id)
		}
		seen[id] = true
	}

	b.collectedDirs = make([]string, 0, len(b.dataDirs)+len(b.dataFS))
	for _, dir := range b.dataDirs {
		if err := v.validateDir(dir); err != nil {
			return nil, NewErrorContext("build", dir).Error(err)
		}
		b.collectedDirs = append(b.collectedDirs, dir)
	}
	for _, filesystem := range b.dataFS {
		if filesystem == nil {
			return nil, errors.New("FS cannot be nil")
		}
		dir, err := b.copyFSToTemp(ctx, filesystem)
		if err != nil {
			return nil, fmt.Errorf("failed to process FS input: %w", err)
		}
		b.collectedDirs = append(b.collectedDirs, dir)
	}

	b.built = true
	return b, nil
}

// Open loads every configured input into a new in-memory Store.
func (b *Builder) Open(ctx context.Context) (*Store, error) {
	if !b.built {
		return nil, fmt.Errorf("%w: did you call Build()?", ErrNoInput)
	}

	store, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := b.load(ctx, store); err != nil {
		if closeErr := store.Close(); closeErr != nil {
			return nil, errors.Join(err, fmt.Errorf("failed to close database: %w", closeErr))
		}
		return nil, err
	}
	return store, nil
}

func (b *Builder) load(ctx context.Context, store *Store) error {
	if b.workbook != "" {
		if err := b.loadWorkbook(ctx, store); err != nil {
			return err
		}
	}

	if len(b.collectedDirs) > 0 {
		for _, id := range b.tables {
			data, err := b.readData(id)
			if err != nil {
				return err
			}
			if err := store.load(ctx, data); err != nil {
				return err
			}
		}
	}

	if b.geography != "" {
		geography, err := ReadGeography(b.geography)
		if err != nil {
			return err
		}
		if err := store.load(ctx, geography); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) loadWorkbook(ctx context.Context, store *Store) error {
	wb, err := OpenWorkbook(b.workbook)
	if err != nil {
		return err
	}
	defer func() {
		_ = wb.Close() // Ignore close error
	}()

	index, err := wb.Index()
	switch {
	case errors.Is(err, ErrSheetNotFound):
		log.With(log.F{"workbook": b.workbook}).Warn("workbook has no %s sheet", IndexSheet)
	case err != nil:
		return err
	default:
		store.index = index
	}

	for _, id := range b.tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		decoded, err := wb.ReadTable(id, b.decodeOpts...)
		if err != nil {
			return err
		}
		if err := store.addDecoded(ctx, id, decoded); err != nil {
			return err
		}
	}
	return nil
}

// readData reads the bulk data of tableID from the first directory holding it.
func (b *Builder) readData(tableID string) (*model.Table, error) {
	var errs []error
	for _, dir := range b.collectedDirs {
		table, err := ReadData(dir, tableID)
		if err == nil {
			return table, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

// copyFSToTemp copies the supported files of a filesystem into a new temporary directory
func (b *Builder) copyFSToTemp(_ context.Context, filesystem fs.FS) (string, error) {
	dir, err := os.MkdirTemp("", "censustable-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	b.tempDirs = append(b.tempDirs, dir)

	copied := 0
	err = fs.WalkDir(filesystem, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !model.IsSupportedFile(p) || !isValidFileName(path.Base(p)) {
			return nil
		}
		if err := copyFSFile(filesystem, p, filepath.Join(dir, path.Base(p))); err != nil {
			return fmt.Errorf("failed to copy file %s: %w", p, err)
		}
		copied++
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk filesystem: %w", err)
	}
	if copied == 0 {
		return "", errors.New("no supported files found in filesystem")
	}
	return dir, nil
}

func copyFSFile(filesystem fs.FS, name, dest string) error {
	src, err := filesystem.Open(name)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(dest) //nolint:gosec // dest is inside a directory we created
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

// Cleanup removes temporary directories created for AddDataFS inputs. It is
// safe to call more than once.
func (b *Builder) Cleanup() error {
	var errs []error
	for _, dir := range b.tempDirs {
		if err := os.RemoveAll(dir); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove temp dir %s: %w", dir, err))
		}
	}
	b.tempDirs = nil
	return errors.Join(errs...)
}
