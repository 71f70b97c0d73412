package analogy

import (
	"context"
	"math/big"

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
)

// pow2 returns 2^n.
func pow2(n uint) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), n)
}

// positions counts the lattice positions that share one supracontext.
//
// A position is a set M of attributes required to agree with the query. The
// node with intent I and extent E owns every M ⊆ I whose supracontext is
// exactly E, i.e. every M ⊆ I not contained in I ∩ m_j for a subcontext
// j outside E:
//
//	count(I) = 2^|I| − |P(I ∩ m_j1) ∪ P(I ∩ m_j2) ∪ ...|
func positions(ctx context.Context, intent *bitset.BitSet, covers []*bitset.BitSet) (*big.Int, error) {
	union, err := downsetSize(ctx, covers)
	if err != nil {
		return nil, err
	}
	n := pow2(intent.Count())
	return n.Sub(n, union), nil
}

// downsetSize returns |P(A1) ∪ ... ∪ P(Am)| by inclusion–exclusion on the
// family's maximal sets:
//
//	|∪ P(Ai)| = 2^|A1| + |∪_{i>1} P(Ai)| − |∪_{i>1} P(A1 ∩ Ai)|
//
// The recursion is unrolled onto an explicit stack. Each step first reduces
// its family to an antichain, which keeps the expansion close to the number of
// distinct intersections. The worst case is still exponential in m.
func downsetSize(ctx context.Context, family []*bitset.BitSet) (*big.Int, error) {
	type frame struct {
		negative bool
		sets     []*bitset.BitSet
	}

	total := new(big.Int)
	stack := []frame{{sets: family}}
	for steps := 0; len(stack) > 0; steps++ {
		if steps%4096 == 4095 {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, "position count interrupted")
			}
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		sets := maximal(f.sets)
		if len(sets) == 0 {
			continue
		}
		head, rest := sets[0], sets[1:]
		if f.negative {
			total.Sub(total, pow2(head.Count()))
		} else {
			total.Add(total, pow2(head.Count()))
		}
		if len(rest) == 0 {
			continue
		}

		meets := make([]*bitset.BitSet, len(rest))
		for i, r := range rest {
			meets[i] = head.Intersection(r)
		}
		stack = append(stack,
			frame{negative: f.negative, sets: rest},
			frame{negative: !f.negative, sets: meets},
		)
	}
	return total, nil
}

// maximal drops every set contained in another one; of equal sets the first
// is kept.
func maximal(sets []*bitset.BitSet) []*bitset.BitSet {
	if len(sets) < 2 {
		return sets
	}
	out := make([]*bitset.BitSet, 0, len(sets))
	for i, a := range sets {
		dominated := false
		for j, b := range sets {
			if i == j || !b.IsSuperSet(a) {
				continue
			}
			if !a.IsSuperSet(b) || j < i {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, a)
		}
	}
	return out
}
