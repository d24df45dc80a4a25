package model

// Axis identifies the row or column header of a worksheet table.
type Axis int

const (
	// AxisColumn is the column header block above the body
	AxisColumn Axis = iota
	// AxisRow is the row header in column 0 left of the body
	AxisRow
)

// String returns the axis name
func (a Axis) String() string {
	if a == AxisRow {
		return "row"
	}
	return "column"
}

// HeaderSpec describes the label hierarchy of one axis.
// levelValues[l] holds one label per leaf position for every level l.
type HeaderSpec struct {
	axis        Axis
	levelNames  []string
	levelValues [][]string
	// positions holds the grid index (row or column) of every leaf.
	positions []int
}

// NewHeaderSpec creates a HeaderSpec. The slices are copied.
func NewHeaderSpec(axis Axis, levelNames []string, levelValues [][]string, positions []int) *HeaderSpec {
	values := make([][]string, len(levelValues))
	for i, v := range levelValues {
		values[i] = append([]string(nil), v...)
	}
	return &HeaderSpec{
		axis:        axis,
		levelNames:  append([]string(nil), levelNames...),
		levelValues: values,
		positions:   append([]int(nil), positions...),
	}
}

// Axis returns the axis this header belongs to.
func (h *HeaderSpec) Axis() Axis {
	return h.axis
}

// LevelCount returns the number of hierarchy levels.
func (h *HeaderSpec) LevelCount() int {
	return len(h.levelNames)
}

// LevelNames returns the category names, one per level.
func (h *HeaderSpec) LevelNames() []string {
	return append([]string(nil), h.levelNames...)
}

// LevelValues returns the leaf-aligned labels of a level.
func (h *HeaderSpec) LevelValues(level int) []string {
	if level < 0 || level >= len(h.levelValues) {
		return nil
	}
	return append([]string(nil), h.levelValues[level]...)
}

// LeafCount returns the number of leaf positions on the axis.
func (h *HeaderSpec) LeafCount() int {
	return len(h.positions)
}

// Positions returns the grid indexes of the leaves.
func (h *HeaderSpec) Positions() []int {
	return append([]int(nil), h.positions...)
}

// Labels returns the full label stack of a leaf, outermost level first.
func (h *HeaderSpec) Labels(leaf int) []string {
	labels := make([]string, len(h.levelValues))
	for l, values := range h.levelValues {
		labels[l] = values[leaf]
	}
	return labels
}

// Aligned reports whether every level has exactly one value per leaf.
func (h *HeaderSpec) Aligned() bool {
	if len(h.levelValues) != len(h.levelNames) {
		return false
	}
	for _, values := range h.levelValues {
		if len(values) != len(h.positions) {
			return false
		}
	}
	return true
}
