package analogy

import (
	"context"
	"math/rand"
	"testing"

	"github.com/RoaringBitmap/roaring"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionExemplars_Chapter3(t *testing.T) {
	store := chapter3Store(t)
	p, err := PartitionExemplars(context.Background(), chapter3Query, store.All(), nil, nil)
	require.NoError(t, err)

	require.Equal(t, 4, p.Len())
	assert.Equal(t, 3, p.Cardinality())
	assert.Equal(t, 5, p.Exemplars())

	tests := []struct {
		agreement     []int
		ids           []uint32
		outcome       string
		deterministic bool
	}{
		{agreement: []int{0, 1}, ids: []uint32{0, 4}, deterministic: false},
		{agreement: []int{2}, ids: []uint32{1}, outcome: "r", deterministic: true},
		{agreement: []int{1}, ids: []uint32{2}, outcome: "r", deterministic: true},
		{agreement: []int{1, 2}, ids: []uint32{3}, outcome: "r", deterministic: true},
	}
	for i, tt := range tests {
		sub := p.Subcontext(i)
		assert.Equal(t, i, sub.Index())
		assert.Equal(t, tt.agreement, sub.Agreement(), "subcontext %d", i)
		assert.Equal(t, tt.ids, sub.IDs().ToArray(), "subcontext %d", i)
		outcome, ok := sub.Outcome()
		assert.Equal(t, tt.deterministic, ok, "subcontext %d", i)
		assert.Equal(t, tt.outcome, outcome, "subcontext %d", i)
	}
	assert.Equal(t, uint64(1), p.Subcontext(0).ClassOccurrences("e"))
	assert.Equal(t, uint64(1), p.Subcontext(0).ClassOccurrences("r"))
}

func TestPartitionExemplars_IsAPartition(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	schema := digitSchema(t, 4, 2)
	rows := make([]row, 50)
	for i := range rows {
		values := make([]int, 4)
		for j := range values {
			values[j] = rng.Intn(3)
		}
		rows[i] = row{outcome: "o", values: values}
	}
	store := newStore(t, schema, rows...)

	filter := NewExemplarFilter(3, 17, 42)
	defer ReleaseExemplarFilter(filter)

	p, err := PartitionExemplars(context.Background(), Values(0, 1, 2, 0), store.All(), nil, filter)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Excluded())
	assert.Equal(t, 47, p.Exemplars())

	union := roaring.New()
	var size uint64
	for _, sub := range p.Subcontexts() {
		ids := sub.IDs()
		assert.True(t, roaring.And(union, ids).IsEmpty(), "subcontexts overlap")
		union.Or(ids)
		size += sub.Occurrences()
	}
	assert.Equal(t, uint64(47), union.GetCardinality())
	assert.Equal(t, uint64(47), size)
	for _, id := range []uint32{3, 17, 42} {
		assert.False(t, union.Contains(id))
	}
}

func TestPartitionExemplars_ArityMismatch(t *testing.T) {
	store := chapter3Store(t)
	_, err := PartitionExemplars(context.Background(), Values(3, 1), store.All(), nil, nil)
	assert.True(t, errors.Is(err, ErrSchemaMismatch), "got %v", err)
}
