package analogy

import (
	"math/big"
	"sort"
)

// ClassScore is the evidence for one outcome.
type ClassScore struct {
	Class       string
	Pointers    *big.Int
	Probability *big.Rat
}

// Float64 returns the probability rounded to the nearest float64.
func (s ClassScore) Float64() float64 {
	f, _ := s.Probability.Float64()
	return f
}

// AnalogicalEntry is one exemplar that received pointers.
type AnalogicalEntry struct {
	Exemplar *Exemplar
	Pointers *big.Int

	// Effect is the exemplar's share of all pointers.
	Effect *big.Rat
}

// AnalogicalSet lists the exemplars that influenced a prediction, in
// descending order of pointers (ties by exemplar ID), plus the gang effects
// of the subcontexts they came from.
type AnalogicalSet struct {
	Entries []AnalogicalEntry
	Gangs   []GangEffect
	Total   *big.Int
}

// Len returns the number of entries.
func (a *AnalogicalSet) Len() int { return len(a.Entries) }

// Result is the outcome of one classification.
//
// Probabilities are exact rationals that sum to one. Predicted is the class
// with the most pointers; on a tie it is the lexicographically smallest of
// the tied classes, all of which are listed in Tied.
type Result struct {
	Query     []Value
	Predicted string
	Tied      []string

	// Scores covers every outcome class of the store, most pointers first,
	// ties by class name. Classes without pointers have probability zero.
	Scores []ClassScore

	TotalPointers *big.Int

	// Cardinality is the number of attributes that took part in the masks.
	Cardinality int

	// Excluded is the number of training exemplars left out of this run.
	Excluded int

	Supracontexts []*Supracontext
	AnalogicalSet *AnalogicalSet
}

// Probability returns the exact probability of class; zero if unknown.
func (r *Result) Probability(class string) *big.Rat {
	for _, s := range r.Scores {
		if s.Class == class {
			return new(big.Rat).Set(s.Probability)
		}
	}
	return new(big.Rat)
}

// Distribution returns the probabilities as float64 values.
func (r *Result) Distribution() map[string]float64 {
	out := make(map[string]float64, len(r.Scores))
	for _, s := range r.Scores {
		out[s.Class] = s.Float64()
	}
	return out
}

// IsTie reports whether more than one class shares the maximum.
func (r *Result) IsTie() bool { return len(r.Tied) > 1 }

// buildResult turns a pointer table into a Result. total must be positive.
func buildResult(query []Value, classes []string, l *Lattice, t *PointerTable) *Result {
	total := t.Total()
	r := &Result{
		Query:         append([]Value(nil), query...),
		TotalPointers: total,
		Cardinality:   l.partition.cardinality,
		Excluded:      l.partition.excluded,
		Supracontexts: l.Supracontexts(),
	}

	r.Scores = make([]ClassScore, 0, len(classes))
	for _, c := range classes {
		p := t.Class(c)
		r.Scores = append(r.Scores, ClassScore{
			Class:       c,
			Pointers:    p,
			Probability: new(big.Rat).SetFrac(p, total),
		})
	}
	sort.SliceStable(r.Scores, func(i, j int) bool {
		if c := r.Scores[i].Pointers.Cmp(r.Scores[j].Pointers); c != 0 {
			return c > 0
		}
		return r.Scores[i].Class < r.Scores[j].Class
	})

	best := r.Scores[0].Pointers
	r.Predicted = r.Scores[0].Class
	for _, s := range r.Scores {
		if s.Pointers.Cmp(best) != 0 {
			break
		}
		r.Tied = append(r.Tied, s.Class)
	}

	r.AnalogicalSet = buildAnalogicalSet(l, t)
	return r
}

func buildAnalogicalSet(l *Lattice, t *PointerTable) *AnalogicalSet {
	total := t.Total()
	set := &AnalogicalSet{Total: total, Gangs: t.Gangs()}
	for _, sub := range l.partition.subcontexts {
		for _, e := range sub.members {
			p := t.Exemplar(e.id)
			if p.Sign() == 0 {
				continue
			}
			set.Entries = append(set.Entries, AnalogicalEntry{
				Exemplar: e,
				Pointers: p,
				Effect:   new(big.Rat).SetFrac(p, total),
			})
		}
	}
	sort.SliceStable(set.Entries, func(i, j int) bool {
		if c := set.Entries[i].Pointers.Cmp(set.Entries[j].Pointers); c != 0 {
			return c > 0
		}
		return set.Entries[i].Exemplar.id < set.Entries[j].Exemplar.id
	})
	return set
}
