package analogy

import (
	"context"
	"iter"

	"github.com/RoaringBitmap/roaring"
	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
)

// Subcontext groups the exemplars that agree with the query on exactly the
// same attributes.
//
// A subcontext is deterministic when all of its exemplars share one outcome;
// otherwise its outcome is empty.
type Subcontext struct {
	index            int
	mask             *bitset.BitSet
	attributes       []int
	members          []*Exemplar
	ids              *roaring.Bitmap
	occurrences      uint64
	classOccurrences map[string]uint64
	outcome          string
}

// Index is the subcontext's position in its partition (first-appearance order).
func (s *Subcontext) Index() int { return s.index }

// Agreement returns the schema indices of the attributes on which every
// member agrees with the query.
func (s *Subcontext) Agreement() []int { return append([]int(nil), s.attributes...) }

// Exemplars returns the members in insertion order.
func (s *Subcontext) Exemplars() []*Exemplar { return append([]*Exemplar(nil), s.members...) }

// IDs returns the members' exemplar IDs.
func (s *Subcontext) IDs() *roaring.Bitmap { return s.ids.Clone() }

// Occurrences is the occurrence-weighted size.
func (s *Subcontext) Occurrences() uint64 { return s.occurrences }

// Outcome returns the shared outcome, and false if the members disagree.
func (s *Subcontext) Outcome() (string, bool) { return s.outcome, s.outcome != "" }

// ClassOccurrences is the occurrence-weighted number of members labeled class.
func (s *Subcontext) ClassOccurrences(class string) uint64 { return s.classOccurrences[class] }

// Deterministic reports whether all members share one outcome.
func (s *Subcontext) Deterministic() bool { return s.outcome != "" }

func (s *Subcontext) add(e *Exemplar) {
	if len(s.members) == 0 {
		s.outcome = e.outcome
	} else if s.outcome != e.outcome {
		s.outcome = ""
	}
	s.members = append(s.members, e)
	s.ids.Add(e.id)
	s.occurrences += uint64(e.occurrences)
	s.classOccurrences[e.outcome] += uint64(e.occurrences)
}

// Partition is the set of subcontexts for one query. The subcontexts are
// pairwise disjoint and together hold every eligible exemplar.
type Partition struct {
	cardinality int
	lab         *labeler
	subcontexts []*Subcontext
	exemplars   int
	excluded    int
}

// Cardinality is the number of attributes that take part in the masks.
func (p *Partition) Cardinality() int { return p.cardinality }

// Len returns the number of subcontexts.
func (p *Partition) Len() int { return len(p.subcontexts) }

// Subcontext returns subcontext i.
func (p *Partition) Subcontext(i int) *Subcontext { return p.subcontexts[i] }

// Subcontexts returns all subcontexts in first-appearance order.
func (p *Partition) Subcontexts() []*Subcontext {
	return append([]*Subcontext(nil), p.subcontexts...)
}

// Exemplars returns the number of exemplars partitioned.
func (p *Partition) Exemplars() int { return p.exemplars }

// Excluded returns the number of exemplars the filter removed.
func (p *Partition) Excluded() int { return p.excluded }

// PartitionExemplars groups exemplars into subcontexts by their agreement
// with query.
//
// The pass is linear: O(n × a) for n exemplars of a attributes. Exemplars the
// filter rejects are skipped. Subcontexts are ordered by first appearance in
// the sequence, so the result is deterministic for a given store.
//
// cfg supplies the missing-data policy and the ignore-unknowns switch; a nil
// cfg means DefaultConfig.
func PartitionExemplars(
	ctx context.Context,
	query []Value,
	exemplars iter.Seq[*Exemplar],
	cfg *Config,
	filter *ExemplarFilter,
) (*Partition, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	lab := newLabeler(query, cfg.MissingData, cfg.IgnoreUnknowns)
	return partition(ctx, lab, exemplars, filter)
}

func partition(ctx context.Context, lab *labeler, exemplars iter.Seq[*Exemplar], filter *ExemplarFilter) (*Partition, error) {
	p := &Partition{cardinality: lab.cardinality(), lab: lab}
	byKey := make(map[string]*Subcontext)

	n := 0
	for e := range exemplars {
		n++
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, "partition interrupted")
			}
		}
		if filter.ShouldSkip(e.id) {
			p.excluded++
			continue
		}
		if len(e.values) != len(lab.query) {
			return nil, schemaMismatchf("exemplar %d: %d values, query has %d", e.id, len(e.values), len(lab.query))
		}

		mask := lab.label(e.values)
		key := maskKey(mask)
		sub, ok := byKey[key]
		if !ok {
			sub = &Subcontext{
				index:            len(p.subcontexts),
				mask:             mask,
				attributes:       lab.attributes(mask),
				ids:              roaring.New(),
				classOccurrences: make(map[string]uint64),
			}
			byKey[key] = sub
			p.subcontexts = append(p.subcontexts, sub)
		}
		sub.add(e)
		p.exemplars++
	}
	return p, nil
}
