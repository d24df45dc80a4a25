package censustable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelMachine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		depth int
		rows  []rowKind
		want  []transition
	}{
		{
			name:  "flat hierarchy",
			depth: 1,
			rows:  []rowKind{valueRow, valueRow},
			want: []transition{
				{level: 0, leaf: true},
				{level: 0, leaf: true},
			},
		},
		{
			name:  "flat hierarchy drops label rows",
			depth: 1,
			rows:  []rowKind{valueRow, labelRow, valueRow},
			want: []transition{
				{level: 0, leaf: true},
				{level: -1, overflow: true},
				{level: 0, leaf: true},
			},
		},
		{
			name:  "two levels with two blocks",
			depth: 2,
			rows:  []rowKind{labelRow, valueRow, valueRow, labelRow, valueRow},
			want: []transition{
				{level: 0},
				{level: 1, leaf: true},
				{level: 1, leaf: true},
				{level: 0},
				{level: 1, leaf: true},
			},
		},
		{
			name:  "three levels",
			depth: 3,
			rows:  []rowKind{labelRow, labelRow, valueRow, labelRow, labelRow, valueRow},
			want: []transition{
				{level: 0},
				{level: 1},
				{level: 2, leaf: true},
				{level: 0},
				{level: 1},
				{level: 2, leaf: true},
			},
		},
		{
			name:  "too many label rows wrap to level 0",
			depth: 2,
			rows:  []rowKind{labelRow, labelRow, valueRow},
			want: []transition{
				{level: 0},
				{level: 0, overflow: true},
				{level: 1, leaf: true},
			},
		},
		{
			name:  "value row before any label",
			depth: 2,
			rows:  []rowKind{valueRow},
			want: []transition{
				{level: 0, orphan: true},
			},
		},
		{
			name:  "value row with missing middle level",
			depth: 3,
			rows:  []rowKind{labelRow, valueRow},
			want: []transition{
				{level: 0},
				{level: 1, orphan: true},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := newLevelMachine(tt.depth)
			got := make([]transition, 0, len(tt.rows))
			for _, kind := range tt.rows {
				got = append(got, m.next(kind))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelMachine_PendingLabels(t *testing.T) {
	t.Parallel()

	m := newLevelMachine(2)
	assert.False(t, m.pendingLabels())

	m.next(labelRow)
	assert.True(t, m.pendingLabels())

	m.next(valueRow)
	assert.False(t, m.pendingLabels())
}
