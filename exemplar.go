package analogy

import (
	"iter"
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring"
	"github.com/cockroachdb/errors"
)

// Exemplar is a stored, labeled instance: an attribute vector, an outcome and
// a positive occurrence count (how many times the instance was observed).
//
// Exemplars are values until the store accepts them; from then on the store
// owns an immutable copy with a dense ID assigned in insertion order.
type Exemplar struct {
	id          uint32
	values      []Value
	outcome     string
	occurrences int
}

// NewExemplar builds an exemplar observed once.
func NewExemplar(outcome string, values ...Value) Exemplar {
	return Exemplar{
		values:      append([]Value(nil), values...),
		outcome:     outcome,
		occurrences: 1,
	}
}

// WithOccurrences returns a copy of e with the given occurrence count.
func (e Exemplar) WithOccurrences(n int) Exemplar {
	e.occurrences = n
	return e
}

// ID returns the store-assigned identifier; it is only meaningful for
// exemplars obtained from a store.
func (e *Exemplar) ID() uint32 { return e.id }

// Outcome returns the normalised outcome label.
func (e *Exemplar) Outcome() string { return e.outcome }

// Occurrences returns the occurrence count.
func (e *Exemplar) Occurrences() int { return e.occurrences }

// NumValues returns the vector length.
func (e *Exemplar) NumValues() int { return len(e.values) }

// Value returns attribute i of the vector.
func (e *Exemplar) Value(i int) Value { return e.values[i] }

// Values returns a copy of the attribute vector.
func (e *Exemplar) Values() []Value { return append([]Value(nil), e.values...) }

// Compile-time check that the store satisfies the source interface used by
// the classifier.
var _ ExemplarSource = (*ExemplarStore)(nil)

// ExemplarSource is the read-only view of training data the classifier needs.
type ExemplarSource interface {
	// Schema returns the schema every exemplar fits.
	Schema() *Schema

	// All yields every exemplar in insertion order.
	All() iter.Seq[*Exemplar]

	// OutcomeClasses returns the distinct outcomes, sorted.
	OutcomeClasses() []string

	// Identical returns the IDs of exemplars whose vector equals values.
	Identical(values []Value) *roaring.Bitmap

	// Len returns the number of exemplars.
	Len() int
}

// ExemplarStore holds the training exemplars for one classifier.
//
// The store is built once by NewExemplarStore and never mutated afterwards, so
// it can be shared by any number of concurrent classifications without locks.
type ExemplarStore struct {
	schema    *Schema
	exemplars []*Exemplar
	outcomes  []string
	index     *exemplarIndex
}

// NewExemplarStore validates and loads exemplars.
//
// Validation is atomic: the first offending exemplar aborts the load with an
// error wrapping ErrSchemaMismatch and naming its position, and no store is
// returned. Outcome labels are normalised like attribute values.
//
// Time Complexity: O(n × a) for n exemplars of a attributes.
func NewExemplarStore(schema *Schema, exemplars []Exemplar) (*ExemplarStore, error) {
	if schema == nil {
		return nil, schemaMismatchf("nil schema")
	}
	if len(exemplars) == 0 {
		return nil, schemaMismatchf("no exemplars")
	}
	if uint64(len(exemplars)) > math.MaxUint32 {
		return nil, schemaMismatchf("%d exemplars exceed the uint32 ID space", len(exemplars))
	}

	loaded := make([]*Exemplar, len(exemplars))
	seen := make(map[string]struct{})
	for i := range exemplars {
		e := &exemplars[i]
		if err := schema.Validate(e.values); err != nil {
			return nil, errors.Wrapf(err, "exemplar %d", i)
		}
		outcome, err := schema.validOutcome(e.outcome)
		if err != nil {
			return nil, errors.Wrapf(err, "exemplar %d", i)
		}
		if e.occurrences < 1 {
			return nil, schemaMismatchf("exemplar %d: occurrence count %d, want at least 1", i, e.occurrences)
		}
		loaded[i] = &Exemplar{
			id:          uint32(i),
			values:      append([]Value(nil), e.values...),
			outcome:     outcome,
			occurrences: e.occurrences,
		}
		seen[outcome] = struct{}{}
	}

	outcomes := make([]string, 0, len(seen))
	for o := range seen {
		outcomes = append(outcomes, o)
	}
	sort.Strings(outcomes)

	index := newExemplarIndex(schema.NumAttributes())
	for _, e := range loaded {
		index.add(e)
	}

	return &ExemplarStore{
		schema:    schema,
		exemplars: loaded,
		outcomes:  outcomes,
		index:     index,
	}, nil
}

// Schema returns the store's schema.
func (s *ExemplarStore) Schema() *Schema { return s.schema }

// Len returns the number of exemplars.
func (s *ExemplarStore) Len() int { return len(s.exemplars) }

// Get returns the exemplar with the given ID.
func (s *ExemplarStore) Get(id uint32) (*Exemplar, bool) {
	if int(id) >= len(s.exemplars) {
		return nil, false
	}
	return s.exemplars[id], true
}

// All yields every exemplar in insertion order. The sequence is lazy and may
// be ranged over any number of times.
func (s *ExemplarStore) All() iter.Seq[*Exemplar] {
	return func(yield func(*Exemplar) bool) {
		for _, e := range s.exemplars {
			if !yield(e) {
				return
			}
		}
	}
}

// OutcomeClasses returns the distinct observed outcomes in lexicographic order.
func (s *ExemplarStore) OutcomeClasses() []string {
	return append([]string(nil), s.outcomes...)
}

// Postings returns the IDs of exemplars whose attribute attr equals v.
// The returned bitmap is a copy.
func (s *ExemplarStore) Postings(attr int, v Value) *roaring.Bitmap {
	return s.index.postings(attr, v)
}

// WithOutcome returns the IDs of exemplars labeled outcome.
func (s *ExemplarStore) WithOutcome(outcome string) *roaring.Bitmap {
	return s.index.outcome(normalize(outcome))
}

// Identical returns the IDs of exemplars whose whole vector equals values,
// missing matching missing. It is how a query's own training copy is found.
func (s *ExemplarStore) Identical(values []Value) *roaring.Bitmap {
	return s.index.identical(values)
}
