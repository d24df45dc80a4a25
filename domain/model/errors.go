// Package model provides domain model for censustable
package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateColumnName is returned when a table contains duplicate column names
	ErrDuplicateColumnName = errors.New("duplicate column name")

	// ErrMalformedTable is matched by every MalformedTableError
	ErrMalformedTable = errors.New("censustable: malformed table")

	// ErrLevelOverflow indicates more label rows than the row hierarchy has levels
	ErrLevelOverflow = errors.New("censustable: row hierarchy level overflow")

	// ErrIncompleteSelection indicates a lookup without a value for every category
	ErrIncompleteSelection = errors.New("censustable: selection does not cover every category")

	// ErrNoMatchingDataset indicates no record matches a selection
	ErrNoMatchingDataset = errors.New("censustable: no dataset matches selection")
)

// MalformedTableError reports a structural problem found while decoding a
// worksheet table. Row and Col are 0-based grid positions, -1 when unknown.
type MalformedTableError struct {
	Sheet  string
	Row    int
	Col    int
	Reason string
	Err    error
}

// Error implements error
func (e *MalformedTableError) Error() string {
	var b strings.Builder
	b.WriteString("censustable: malformed table")
	if e.Sheet != "" {
		fmt.Fprintf(&b, " %q", e.Sheet)
	}
	if e.Row >= 0 && e.Col >= 0 {
		fmt.Fprintf(&b, " at row %d, col %d", e.Row, e.Col)
	} else if e.Row >= 0 {
		fmt.Fprintf(&b, " at row %d", e.Row)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped cause
func (e *MalformedTableError) Unwrap() error {
	return e.Err
}

// Is makes every MalformedTableError match ErrMalformedTable
func (e *MalformedTableError) Is(target error) bool {
	return target == ErrMalformedTable
}

// NewMalformedTableError creates a MalformedTableError at a grid position.
func NewMalformedTableError(row, col int, format string, args ...any) *MalformedTableError {
	return &MalformedTableError{
		Row:    row,
		Col:    col,
		Reason: fmt.Sprintf(format, args...),
	}
}

// WithCause sets the wrapped cause
func (e *MalformedTableError) WithCause(err error) *MalformedTableError {
	e.Err = err
	return e
}

// WarningKind classifies a non-fatal decode anomaly.
type WarningKind int

const (
	// WarningLevelOverflow means a label row wrapped the row hierarchy back to level 0
	WarningLevelOverflow WarningKind = iota
	// WarningUnnamedLevel means no marker phrase named a header level
	WarningUnnamedLevel
	// WarningTrailingLabels means label rows at the end of the body had no leaf rows
	WarningTrailingLabels
)

// String returns the warning kind name
func (k WarningKind) String() string {
	switch k {
	case WarningLevelOverflow:
		return "level-overflow"
	case WarningUnnamedLevel:
		return "unnamed-level"
	case WarningTrailingLabels:
		return "trailing-labels"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal anomaly recorded while decoding.
type Warning struct {
	Kind    WarningKind
	Row     int
	Message string
}

// String implements fmt.Stringer
func (w Warning) String() string {
	if w.Row >= 0 {
		return fmt.Sprintf("%s (row %d): %s", w.Kind, w.Row, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}
