package analogy

import (
	"math/big"
	"sort"

	"github.com/cockroachdb/errors"
)

// PointerKind selects how a homogeneous supracontext's weight grows with its size.
type PointerKind string

var (
	// QuadraticPointers: every exemplar occurrence in a supracontext S points
	// at every occurrence in S, so S casts count(S) · N(S)² pointers, where
	// N(S) is its occurrence-weighted size. This is the default.
	QuadraticPointers PointerKind = "quadratic"

	// LinearPointers: S casts count(S) · N(S) pointers, one per occurrence
	// per lattice position.
	LinearPointers PointerKind = "linear"
)

func (k PointerKind) valid() bool {
	switch k {
	case QuadraticPointers, LinearPointers:
		return true
	}
	return false
}

// weight is the number of pointers each occurrence inside s receives.
func (k PointerKind) weight(s *Supracontext) *big.Int {
	w := new(big.Int).Set(s.count)
	if k == QuadraticPointers {
		w.Mul(w, new(big.Int).SetUint64(s.occurrences))
	}
	return w
}

// GangEffect is the pointer weight received through one subcontext.
type GangEffect struct {
	Subcontext *Subcontext

	// Pointers is the subcontext's total.
	Pointers *big.Int

	// ClassPointers and ClassExemplars break the total down by outcome.
	ClassPointers  map[string]*big.Int
	ClassExemplars map[string][]*Exemplar
}

// PointerTable holds exact pointer totals per exemplar, per class and per
// subcontext.
type PointerTable struct {
	lattice   *Lattice
	exemplars map[uint32]*big.Int
	classes   map[string]*big.Int
	total     *big.Int
}

// ComputePointers distributes the weight of every homogeneous supracontext
// over its exemplars in proportion to their occurrence counts.
//
// A positive maxBits bounds the width of the grand total; wider totals fail
// with ErrOverflow. Zero means unbounded.
func ComputePointers(l *Lattice, kind PointerKind, maxBits int) (*PointerTable, error) {
	if !kind.valid() {
		return nil, errors.Wrapf(ErrInvalidConfig, "pointers %q", kind)
	}
	t := &PointerTable{
		lattice:   l,
		exemplars: make(map[uint32]*big.Int),
		classes:   make(map[string]*big.Int),
		total:     new(big.Int),
	}

	share := new(big.Int)
	for _, supra := range l.supracontexts {
		w := kind.weight(supra)
		for _, sub := range supra.subcontexts {
			for _, e := range sub.members {
				share.Mul(w, big.NewInt(int64(e.occurrences)))
				addTo(t.exemplars, e.id, share)
				addTo(t.classes, e.outcome, share)
				t.total.Add(t.total, share)
			}
		}
	}

	if maxBits > 0 && t.total.BitLen() > maxBits {
		return nil, errors.WithHint(
			errors.Wrapf(ErrOverflow, "total of %d bits exceeds the %d-bit limit", t.total.BitLen(), maxBits),
			"raise max_pointer_bits or set it to 0 for unbounded arithmetic")
	}
	return t, nil
}

func addTo[K comparable](m map[K]*big.Int, k K, v *big.Int) {
	if cur, ok := m[k]; ok {
		cur.Add(cur, v)
		return
	}
	m[k] = new(big.Int).Set(v)
}

// Total returns the sum of all pointers.
func (t *PointerTable) Total() *big.Int { return new(big.Int).Set(t.total) }

// Class returns the pointers received by exemplars with the given outcome.
func (t *PointerTable) Class(outcome string) *big.Int {
	if v, ok := t.classes[outcome]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// Exemplar returns the pointers received by exemplar id.
func (t *PointerTable) Exemplar(id uint32) *big.Int {
	if v, ok := t.exemplars[id]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// Classes returns the outcomes with non-zero pointers, sorted.
func (t *PointerTable) Classes() []string {
	out := make([]string, 0, len(t.classes))
	for c, v := range t.classes {
		if v.Sign() > 0 {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// Gangs returns one GangEffect per subcontext that received pointers, in
// descending order of pointers, ties by subcontext index.
func (t *PointerTable) Gangs() []GangEffect {
	var gangs []GangEffect
	for _, sub := range t.lattice.partition.subcontexts {
		g := GangEffect{
			Subcontext:     sub,
			Pointers:       new(big.Int),
			ClassPointers:  make(map[string]*big.Int),
			ClassExemplars: make(map[string][]*Exemplar),
		}
		for _, e := range sub.members {
			p, ok := t.exemplars[e.id]
			if !ok || p.Sign() == 0 {
				continue
			}
			g.Pointers.Add(g.Pointers, p)
			addTo(g.ClassPointers, e.outcome, p)
			g.ClassExemplars[e.outcome] = append(g.ClassExemplars[e.outcome], e)
		}
		if g.Pointers.Sign() > 0 {
			gangs = append(gangs, g)
		}
	}
	sort.SliceStable(gangs, func(i, j int) bool {
		if c := gangs[i].Pointers.Cmp(gangs[j].Pointers); c != 0 {
			return c > 0
		}
		return gangs[i].Subcontext.index < gangs[j].Subcontext.index
	})
	return gangs
}
