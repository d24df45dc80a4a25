package model

import (
	"testing"
)

func TestNewCell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		kind CellKind
		text string
	}{
		{name: "nil", in: nil, kind: CellMissing, text: ""},
		{name: "empty string", in: "", kind: CellMissing, text: ""},
		{name: "text", in: "All categories: Sex", kind: CellString, text: "All categories: Sex"},
		{name: "int", in: 12, kind: CellNumber, text: "12"},
		{name: "float", in: 1.5, kind: CellNumber, text: "1.5"},
		{name: "uint8", in: uint8(7), kind: CellNumber, text: "7"},
		{name: "bool", in: true, kind: CellString, text: "true"},
		{name: "cell passthrough", in: NewNumberCell(3), kind: CellNumber, text: "3"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewCell(tt.in)
			if c.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", c.Kind(), tt.kind)
			}
			if c.Text() != tt.text {
				t.Errorf("Text() = %q, want %q", c.Text(), tt.text)
			}
			if c.IsMissing() != (tt.kind == CellMissing) {
				t.Errorf("IsMissing() = %v", c.IsMissing())
			}
		})
	}
}

func TestCell_Number(t *testing.T) {
	t.Parallel()

	if n, ok := NewNumberCell(42).Number(); !ok || n != 42 {
		t.Errorf("number cell: got %v, %v", n, ok)
	}
	if n, ok := NewStringCell(" 17 ").Number(); !ok || n != 17 {
		t.Errorf("numeric text cell: got %v, %v", n, ok)
	}
	if _, ok := NewStringCell("Male").Number(); ok {
		t.Error("expected text cell to be non-numeric")
	}
	if _, ok := MissingCell().Number(); ok {
		t.Error("expected missing cell to be non-numeric")
	}
}

func TestGrid(t *testing.T) {
	t.Parallel()

	g := NewGridFromValues([][]any{
		{"a"},
		{nil, "b", 3},
		{},
	})

	if g.Rows() != 3 || g.Cols() != 3 {
		t.Fatalf("expected 3x3 grid, got %dx%d", g.Rows(), g.Cols())
	}

	t.Run("ragged rows are padded with missing cells", func(t *testing.T) {
		t.Parallel()

		if !g.IsMissing(0, 2) || !g.IsMissing(2, 0) {
			t.Error("expected padded cells to be missing")
		}
	})

	t.Run("out of range is missing", func(t *testing.T) {
		t.Parallel()

		for _, pos := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {100, 100}} {
			if !g.IsMissing(pos[0], pos[1]) {
				t.Errorf("expected (%d,%d) to be missing", pos[0], pos[1])
			}
		}
	})

	t.Run("values", func(t *testing.T) {
		t.Parallel()

		if g.At(1, 1).Text() != "b" {
			t.Errorf("At(1,1) = %q", g.At(1, 1).Text())
		}
		if n, _ := g.At(1, 2).Number(); n != 3 {
			t.Errorf("At(1,2) = %v", n)
		}
	})

	t.Run("input is copied", func(t *testing.T) {
		t.Parallel()

		rows := [][]Cell{{NewStringCell("x")}}
		grid := NewGrid(rows)
		rows[0][0] = NewStringCell("y")
		if grid.At(0, 0).Text() != "x" {
			t.Error("grid must not share storage with its input")
		}
	})
}
