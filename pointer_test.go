package analogy

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePointers_Chapter3(t *testing.T) {
	l := buildLattice(t, chapter3Store(t), chapter3Query, HomogeneityClassic)

	tests := []struct {
		kind      PointerKind
		exemplars map[uint32]int64
		total     int64
	}{
		{
			kind:      QuadraticPointers,
			exemplars: map[uint32]int64{0: 4, 1: 2, 2: 0, 3: 3, 4: 4},
			total:     13,
		},
		{
			kind:      LinearPointers,
			exemplars: map[uint32]int64{0: 2, 1: 1, 2: 0, 3: 2, 4: 2},
			total:     7,
		},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			table, err := ComputePointers(l, tt.kind, 0)
			require.NoError(t, err)

			got := make(map[uint32]int64)
			for id := range tt.exemplars {
				got[id] = table.Exemplar(id).Int64()
			}
			if diff := cmp.Diff(tt.exemplars, got); diff != "" {
				t.Errorf("exemplar pointers mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.total, table.Total().Int64())
			assert.Equal(t, []string{"e", "r"}, table.Classes())
			assert.Zero(t, table.Class("missing").Sign())
		})
	}
}

func TestPointerTable_Gangs(t *testing.T) {
	l := buildLattice(t, chapter3Store(t), chapter3Query, HomogeneityClassic)
	table, err := ComputePointers(l, QuadraticPointers, 0)
	require.NoError(t, err)

	gangs := table.Gangs()
	require.Len(t, gangs, 3)

	type gang struct {
		Subcontext int
		Pointers   int64
		Classes    map[string]int64
		Members    map[string]int
	}
	got := make([]gang, len(gangs))
	for i, g := range gangs {
		got[i] = gang{
			Subcontext: g.Subcontext.Index(),
			Pointers:   g.Pointers.Int64(),
			Classes:    map[string]int64{},
			Members:    map[string]int{},
		}
		for c, p := range g.ClassPointers {
			got[i].Classes[c] = p.Int64()
			got[i].Members[c] = len(g.ClassExemplars[c])
		}
	}
	want := []gang{
		{Subcontext: 0, Pointers: 8, Classes: map[string]int64{"e": 4, "r": 4}, Members: map[string]int{"e": 1, "r": 1}},
		{Subcontext: 3, Pointers: 3, Classes: map[string]int64{"r": 3}, Members: map[string]int{"r": 1}},
		{Subcontext: 1, Pointers: 2, Classes: map[string]int64{"r": 2}, Members: map[string]int{"r": 1}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("gangs mismatch (-want +got):\n%s", diff)
	}
}

func TestComputePointers_Errors(t *testing.T) {
	l := buildLattice(t, chapter3Store(t), chapter3Query, HomogeneityClassic)

	_, err := ComputePointers(l, "cubic", 0)
	assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)

	_, err = ComputePointers(l, QuadraticPointers, 2)
	require.True(t, errors.Is(err, ErrOverflow), "got %v", err)
	assert.NotEmpty(t, errors.GetAllHints(err))
}
