package censustable

// rowKind classifies a row of the row-header block by its column 1 cell.
type rowKind int

const (
	// labelRow has no body value in column 1: it only names a higher level.
	labelRow rowKind = iota
	// valueRow carries body values from column 1 onwards.
	valueRow
)

// levelState is the position of the row hierarchy cursor.
type levelState int

const (
	stateStart levelState = iota
	stateLabel
	stateLeaf
)

// transition is the outcome of feeding one row to the levelMachine.
type transition struct {
	// level the row's label belongs to
	level int
	// leaf is true when the row contributes records
	leaf bool
	// overflow is true when a label row had no level left and wrapped to 0
	overflow bool
	// orphan is true when a value row arrived before every label level was set
	orphan bool
}

// levelMachine assigns hierarchy levels to the rows of a row-header block
// with depth levels. Levels 0..depth-2 are carried by label rows, level
// depth-1 by value rows (leaves).
//
// Transitions:
//
//	Start    + label -> Label(0)
//	Start    + value -> Leaf               (depth 1 only, else orphan)
//	Label(l) + label -> Label(l+1)         if l+1 <= depth-2
//	Label(l) + label -> Label(0), overflow otherwise
//	any      + label -> unchanged, overflow for depth 1 (row dropped)
//	Label(l) + value -> Leaf               if l+1 == depth-1, else orphan
//	Leaf     + label -> Label(0)           a new top level block
//	Leaf     + value -> Leaf
type levelMachine struct {
	depth int
	state levelState
	level int
}

func newLevelMachine(depth int) *levelMachine {
	return &levelMachine{depth: depth, state: stateStart, level: -1}
}

// next feeds one row and returns where it sits in the hierarchy.
func (m *levelMachine) next(kind rowKind) transition {
	leafLevel := m.depth - 1

	if kind == labelRow {
		if leafLevel == 0 {
			// a depth 1 hierarchy has no label level, the row is dropped
			return transition{level: -1, overflow: true}
		}
		if m.state == stateLabel {
			if m.level+1 < leafLevel {
				m.level++
				return transition{level: m.level}
			}
			m.level = 0
			return transition{level: 0, overflow: true}
		}
		m.state = stateLabel
		m.level = 0
		return transition{level: 0}
	}

	switch m.state {
	case stateLeaf:
		return transition{level: leafLevel, leaf: true}
	case stateLabel:
		if m.level+1 == leafLevel {
			m.state = stateLeaf
			m.level = leafLevel
			return transition{level: leafLevel, leaf: true}
		}
		return transition{level: m.level + 1, orphan: true}
	default:
		if leafLevel == 0 {
			m.state = stateLeaf
			m.level = 0
			return transition{level: 0, leaf: true}
		}
		return transition{level: 0, orphan: true}
	}
}

// pendingLabels reports whether the last rows were labels without leaves.
func (m *levelMachine) pendingLabels() bool {
	return m.state == stateLabel
}
