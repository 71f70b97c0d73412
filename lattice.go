// Package analogy implements the supracontextual lattice.
//
// WHAT IS THE LATTICE?
// For a query with n attributes, every subset M of attributes defines a
// supracontext: the exemplars that agree with the query on at least M. The 2^n
// subsets form a lattice. A supracontext is usable evidence only when it is
// homogeneous, and each homogeneous one casts pointers toward its exemplars.
//
// HOW IT WORKS:
// Many positions of the lattice hold exactly the same set of subcontexts, so
// the builder never walks the 2^n positions. It works on the k populated
// agreement masks instead:
//  1. Seed a work-list with every subcontext mask.
//  2. Pop an intent I (attributes required to agree) and collect its extent,
//     the subcontexts whose masks contain I.
//  3. A heterogeneous extent is recorded and not expanded: meeting it with
//     further masks only adds subcontexts, so everything below stays
//     heterogeneous.
//  4. A homogeneous extent is kept and expanded with I ∩ m for each mask m
//     outside it.
//
// Each kept node then receives the exact number of positions that share its
// extent (see positions), as a big.Int.
//
// TIME COMPLEXITY:
//   - Nodes visited: at most the number of distinct mask intersections, and
//     in practice far fewer thanks to pruning
//   - Per node: O(k) superset tests for the extent
//   - Counting: exponential in k in the worst case
//
// GUARANTEES & TRADE-OFFS:
// ✓ Pros:
//   - Exact counts with no 2^n scan
//   - No recursion, nodes live in a flat arena
//   - Counts computed in parallel
//
// ✗ Cons:
//   - Heavily fragmented data (many small subcontexts, many attributes)
//     can still be expensive
package analogy

import (
	"context"
	"math/big"

	"github.com/RoaringBitmap/roaring"
	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// HomogeneityKind selects the rule that decides whether a supracontext may
// contribute pointers.
type HomogeneityKind string

var (
	// HomogeneityOutcome accepts a supracontext only when every exemplar in it
	// has the same outcome. This is the default.
	HomogeneityOutcome HomogeneityKind = "outcome"

	// HomogeneityClassic also accepts a supracontext made of a single
	// subcontext, even when that subcontext mixes outcomes.
	HomogeneityClassic HomogeneityKind = "classic"
)

func (k HomogeneityKind) valid() bool {
	switch k {
	case HomogeneityOutcome, HomogeneityClassic:
		return true
	}
	return false
}

// judge returns the outcome of a homogeneous extent ("" for a classic
// single nondeterministic subcontext) and whether the extent is homogeneous.
func (k HomogeneityKind) judge(subs []*Subcontext, extent *roaring.Bitmap) (string, bool) {
	if extent.IsEmpty() {
		return "", false
	}
	if k == HomogeneityClassic && extent.GetCardinality() == 1 {
		return subs[extent.Minimum()].outcome, true
	}
	outcome := ""
	it := extent.Iterator()
	for it.HasNext() {
		s := subs[it.Next()]
		if !s.Deterministic() {
			return "", false
		}
		if outcome == "" {
			outcome = s.outcome
		} else if s.outcome != outcome {
			return "", false
		}
	}
	return outcome, true
}

// Supracontext is a homogeneous lattice node together with the number of
// lattice positions that share it.
type Supracontext struct {
	intent      *bitset.BitSet
	attributes  []int
	extent      *roaring.Bitmap
	subcontexts []*Subcontext
	outcome     string
	count       *big.Int
	occurrences uint64
}

// Agreement returns the schema indices of the attributes every member agrees
// with the query on.
func (s *Supracontext) Agreement() []int { return append([]int(nil), s.attributes...) }

// Subcontexts returns the member subcontexts in partition order.
func (s *Supracontext) Subcontexts() []*Subcontext {
	return append([]*Subcontext(nil), s.subcontexts...)
}

// Extent returns the indices of the member subcontexts.
func (s *Supracontext) Extent() *roaring.Bitmap { return s.extent.Clone() }

// Outcome returns the shared outcome, and false for a classic supracontext
// whose single subcontext mixes outcomes.
func (s *Supracontext) Outcome() (string, bool) { return s.outcome, s.outcome != "" }

// Count returns the number of lattice positions holding this supracontext.
func (s *Supracontext) Count() *big.Int { return new(big.Int).Set(s.count) }

// Occurrences is the occurrence-weighted number of exemplars inside.
func (s *Supracontext) Occurrences() uint64 { return s.occurrences }

// Lattice is the set of homogeneous supracontexts for one query.
type Lattice struct {
	partition     *Partition
	supracontexts []*Supracontext
	explored      int
	heterogeneous int
}

// Partition returns the partition the lattice was built from.
func (l *Lattice) Partition() *Partition { return l.partition }

// Supracontexts returns the homogeneous supracontexts in discovery order.
func (l *Lattice) Supracontexts() []*Supracontext {
	return append([]*Supracontext(nil), l.supracontexts...)
}

// Explored returns the number of nodes the builder visited.
func (l *Lattice) Explored() int { return l.explored }

// Heterogeneous returns the number of visited nodes that were pruned.
func (l *Lattice) Heterogeneous() int { return l.heterogeneous }

// latticeNode is an arena slot of the work-list.
type latticeNode struct {
	intent      *bitset.BitSet
	extent      *roaring.Bitmap
	outcome     string
	homogeneous bool
}

// BuildLattice finds every homogeneous supracontext of p and counts its
// lattice positions. Counting runs on up to workers goroutines.
//
// The context is checked between work-list steps; cancellation returns the
// context error wrapped.
func BuildLattice(ctx context.Context, p *Partition, kind HomogeneityKind, workers int) (*Lattice, error) {
	if !kind.valid() {
		return nil, errors.Wrapf(ErrInvalidConfig, "homogeneity %q", kind)
	}
	subs := p.subcontexts
	for _, s := range subs {
		if len(s.members) == 0 {
			return nil, inconsistency("subcontext %d has no exemplars", s.index)
		}
	}

	var (
		arena []latticeNode
		seen  = make(map[string]int)
		queue []int
	)
	push := func(intent *bitset.BitSet) {
		key := maskKey(intent)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = len(arena)
		queue = append(queue, len(arena))
		arena = append(arena, latticeNode{intent: intent})
	}
	for _, s := range subs {
		push(s.mask.Clone())
	}

	l := &Lattice{partition: p}
	var kept []int
	for head := 0; head < len(queue); head++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "lattice interrupted")
		}
		idx := queue[head]
		intent := arena[idx].intent

		extent := roaring.New()
		for j, s := range subs {
			if s.mask.IsSuperSet(intent) {
				extent.Add(uint32(j))
			}
		}
		outcome, ok := kind.judge(subs, extent)
		arena[idx].extent = extent
		arena[idx].outcome = outcome
		arena[idx].homogeneous = ok
		l.explored++
		if !ok {
			l.heterogeneous++
			continue
		}

		kept = append(kept, idx)
		for j, s := range subs {
			if extent.Contains(uint32(j)) {
				continue
			}
			push(intent.Intersection(s.mask))
		}
	}

	counts := make([]*big.Int, len(kept))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, idx := range kept {
		node := arena[idx]
		g.Go(func() error {
			var covers []*bitset.BitSet
			for j, s := range subs {
				if !node.extent.Contains(uint32(j)) {
					covers = append(covers, node.intent.Intersection(s.mask))
				}
			}
			c, err := positions(gctx, node.intent, covers)
			if err != nil {
				return err
			}
			if c.Sign() <= 0 {
				return inconsistency("supracontext %v owns %s lattice positions", node.intent, c)
			}
			counts[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.supracontexts = make([]*Supracontext, len(kept))
	for i, idx := range kept {
		node := arena[idx]
		supra := &Supracontext{
			intent:     node.intent,
			attributes: p.lab.attributes(node.intent),
			extent:     node.extent,
			outcome:    node.outcome,
			count:      counts[i],
		}
		it := node.extent.Iterator()
		for it.HasNext() {
			s := subs[it.Next()]
			supra.subcontexts = append(supra.subcontexts, s)
			supra.occurrences += s.occurrences
		}
		l.supracontexts[i] = supra
	}
	return l, nil
}
