package censustable

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/censustable/domain/model"
)

// Standard error messages and error creation functions for consistency
var (
	// ErrMalformedTable is returned when a worksheet has no discoverable table structure
	ErrMalformedTable = model.ErrMalformedTable

	// ErrLevelOverflow is returned under OverflowError when label rows outnumber row levels
	ErrLevelOverflow = model.ErrLevelOverflow

	// ErrIncompleteSelection indicates a selection that does not name every category
	ErrIncompleteSelection = model.ErrIncompleteSelection

	// ErrNoMatchingDataset indicates that no record matches a selection
	ErrNoMatchingDataset = model.ErrNoMatchingDataset

	// ErrEmptyData indicates that the data source contains no records
	ErrEmptyData = errors.New("censustable: empty data source")

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("censustable: unsupported file format")

	// ErrInvalidData indicates malformed or invalid data
	ErrInvalidData = errors.New("censustable: invalid data format")

	// ErrSheetNotFound indicates that a workbook has no sheet with the requested name
	ErrSheetNotFound = errors.New("censustable: sheet not found")

	// ErrTableNotFound indicates that a table was not loaded into the store
	ErrTableNotFound = errors.New("censustable: table not found")

	// ErrMissingColumn indicates that a required column is absent from a file
	ErrMissingColumn = errors.New("censustable: missing column")

	// ErrNoInput indicates a builder without any input
	ErrNoInput = errors.New("censustable: no input added")

	// ErrInvalidTableID indicates a table identifier that cannot name a table
	ErrInvalidTableID = errors.New("censustable: invalid table id")
)

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	TableName string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithTable adds table context to the error
func (ec *ErrorContext) WithTable(tableName string) *ErrorContext {
	ec.TableName = tableName
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	var parts []string
	parts = append(parts, fmt.Sprintf("censustable: %s failed", ec.Operation))

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}

	if ec.TableName != "" {
		parts = append(parts, "table: "+ec.TableName)
	}

	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return fmt.Errorf("%s", context)
}
