package model

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMalformedTableError(t *testing.T) {
	t.Parallel()

	t.Run("matches sentinel through wrapping", func(t *testing.T) {
		t.Parallel()

		err := fmt.Errorf("read table: %w", NewMalformedTableError(12, 0, "no body found"))
		if !errors.Is(err, ErrMalformedTable) {
			t.Error("expected errors.Is(err, ErrMalformedTable)")
		}

		var mte *MalformedTableError
		if !errors.As(err, &mte) {
			t.Fatal("expected errors.As to find MalformedTableError")
		}
		if mte.Row != 12 || mte.Col != 0 {
			t.Errorf("unexpected position %d,%d", mte.Row, mte.Col)
		}
	})

	t.Run("unwraps cause", func(t *testing.T) {
		t.Parallel()

		err := NewMalformedTableError(3, -1, "too many labels").WithCause(ErrLevelOverflow)
		if !errors.Is(err, ErrLevelOverflow) {
			t.Error("expected cause to be reachable")
		}
		if !strings.Contains(err.Error(), "at row 3:") {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("message includes sheet", func(t *testing.T) {
		t.Parallel()

		err := NewMalformedTableError(-1, -1, "empty")
		err.Sheet = "KS101EW"
		if got := err.Error(); got != `censustable: malformed table "KS101EW": empty` {
			t.Errorf("unexpected message %q", got)
		}
	})
}

func TestWarning_String(t *testing.T) {
	t.Parallel()

	w := Warning{Kind: WarningLevelOverflow, Row: 20, Message: "wrapped"}
	if got := w.String(); got != "level-overflow (row 20): wrapped" {
		t.Errorf("unexpected %q", got)
	}
	w = Warning{Kind: WarningUnnamedLevel, Row: -1, Message: "no marker"}
	if got := w.String(); got != "unnamed-level: no marker" {
		t.Errorf("unexpected %q", got)
	}
}
