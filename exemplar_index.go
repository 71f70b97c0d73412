package analogy

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
)

// exemplarIndex is an inverted index over the exemplar store.
//
// HOW IT WORKS:
// Every (attribute, value) pair maps to a roaring bitmap of the exemplar IDs
// carrying that value; missing values get their own posting per attribute.
// Outcomes are indexed the same way. Exact-vector lookups AND one posting per
// attribute, so finding a query's own training copies costs O(a) bitmap
// intersections instead of a scan of the store.
//
// The index is filled once while the store is built and is read-only
// afterwards; readers receive copies.
type exemplarIndex struct {
	arity    int
	values   map[string]*roaring.Bitmap
	outcomes map[string]*roaring.Bitmap
	all      *roaring.Bitmap
}

func newExemplarIndex(arity int) *exemplarIndex {
	return &exemplarIndex{
		arity:    arity,
		values:   make(map[string]*roaring.Bitmap),
		outcomes: make(map[string]*roaring.Bitmap),
		all:      roaring.New(),
	}
}

func postingKey(attr int, v Value) string {
	return fmt.Sprintf("%d:%s", attr, v.String())
}

func (idx *exemplarIndex) add(e *Exemplar) {
	idx.all.Add(e.id)
	for i, v := range e.values {
		key := postingKey(i, v)
		if idx.values[key] == nil {
			idx.values[key] = roaring.New()
		}
		idx.values[key].Add(e.id)
	}
	if idx.outcomes[e.outcome] == nil {
		idx.outcomes[e.outcome] = roaring.New()
	}
	idx.outcomes[e.outcome].Add(e.id)
}

func (idx *exemplarIndex) postings(attr int, v Value) *roaring.Bitmap {
	if bm, ok := idx.values[postingKey(attr, v)]; ok {
		return bm.Clone()
	}
	return roaring.New()
}

func (idx *exemplarIndex) outcome(label string) *roaring.Bitmap {
	if bm, ok := idx.outcomes[label]; ok {
		return bm.Clone()
	}
	return roaring.New()
}

func (idx *exemplarIndex) identical(values []Value) *roaring.Bitmap {
	if len(values) != idx.arity {
		return roaring.New()
	}
	bitmaps := make([]*roaring.Bitmap, 0, len(values))
	for i, v := range values {
		bm, ok := idx.values[postingKey(i, v)]
		if !ok {
			return roaring.New()
		}
		bitmaps = append(bitmaps, bm)
	}
	if len(bitmaps) == 0 {
		return idx.all.Clone()
	}
	return roaring.FastAnd(bitmaps...)
}
