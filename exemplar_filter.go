package analogy

import (
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// ExemplarFilter removes exemplars from one classification, e.g. the query's
// own training copy or the held-out item of a leave-one-out run.
// A nil filter excludes nothing.
type ExemplarFilter struct {
	excluded *roaring.Bitmap
}

// exemplarFilterPool is a sync.Pool for ExemplarFilter to reduce allocations
// in batch and leave-one-out runs.
var exemplarFilterPool = sync.Pool{
	New: func() interface{} {
		return &ExemplarFilter{
			excluded: roaring.New(),
		}
	},
}

// NewExemplarFilter creates a filter excluding the given exemplar IDs.
// If the list is empty, returns nil (no filtering).
// The filter should be returned with ReleaseExemplarFilter when done.
func NewExemplarFilter(ids ...uint32) *ExemplarFilter {
	if len(ids) == 0 {
		return nil
	}
	filter := exemplarFilterPool.Get().(*ExemplarFilter)
	filter.excluded.Clear()
	filter.excluded.AddMany(ids)
	return filter
}

// newExemplarFilterFromBitmaps unions the given ID sets into one filter.
func newExemplarFilterFromBitmaps(sets ...*roaring.Bitmap) *ExemplarFilter {
	var filter *ExemplarFilter
	for _, set := range sets {
		if set == nil || set.IsEmpty() {
			continue
		}
		if filter == nil {
			filter = exemplarFilterPool.Get().(*ExemplarFilter)
			filter.excluded.Clear()
		}
		filter.excluded.Or(set)
	}
	return filter
}

// ReleaseExemplarFilter returns a filter to the pool for reuse.
// Do not use the filter after calling this method.
func ReleaseExemplarFilter(filter *ExemplarFilter) {
	if filter != nil {
		exemplarFilterPool.Put(filter)
	}
}

// IsEligible reports whether exemplar id takes part in the classification.
func (f *ExemplarFilter) IsEligible(id uint32) bool {
	if f == nil {
		return true
	}
	return !f.excluded.Contains(id)
}

// ShouldSkip is the negation of IsEligible, for use with continue.
func (f *ExemplarFilter) ShouldSkip(id uint32) bool {
	return !f.IsEligible(id)
}

// Count returns the number of excluded exemplars.
func (f *ExemplarFilter) Count() uint64 {
	if f == nil {
		return 0
	}
	return f.excluded.GetCardinality()
}

// IsEmpty reports whether nothing is excluded.
func (f *ExemplarFilter) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.excluded.IsEmpty()
}
