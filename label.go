package analogy

import (
	"encoding/binary"

	"github.com/bits-and-blooms/bitset"
)

// MissingDataKind decides how the don't-care value compares with other values.
type MissingDataKind string

var (
	// MissingVariable treats missing as one more value: it agrees only with
	// another missing value. This is the default.
	MissingVariable MissingDataKind = "variable"

	// MissingMatch lets missing agree with anything.
	MissingMatch MissingDataKind = "match"

	// MissingMismatch lets missing agree with nothing, itself included.
	MissingMismatch MissingDataKind = "mismatch"
)

func (k MissingDataKind) valid() bool {
	switch k {
	case MissingVariable, MissingMatch, MissingMismatch:
		return true
	}
	return false
}

// agree reports whether an exemplar value agrees with a query value.
func (k MissingDataKind) agree(a, b Value) bool {
	switch {
	case !a.IsMissing() && !b.IsMissing():
		return a.code == b.code
	case k == MissingMatch:
		return true
	case k == MissingMismatch:
		return false
	default:
		return a.IsMissing() && b.IsMissing()
	}
}

// labeler turns exemplar vectors into agreement masks against one query.
//
// Bit i of a mask is set when the exemplar agrees with the query on the i-th
// active attribute. Active attributes are all schema attributes, minus those
// the query leaves missing when unknowns are ignored.
type labeler struct {
	query   []Value
	active  []int
	missing MissingDataKind
}

func newLabeler(query []Value, missing MissingDataKind, ignoreUnknowns bool) *labeler {
	active := make([]int, 0, len(query))
	for i, v := range query {
		if ignoreUnknowns && v.IsMissing() {
			continue
		}
		active = append(active, i)
	}
	return &labeler{query: query, active: active, missing: missing}
}

// cardinality is the number of bits in every mask.
func (l *labeler) cardinality() int { return len(l.active) }

// label computes the agreement mask of values.
func (l *labeler) label(values []Value) *bitset.BitSet {
	mask := bitset.New(uint(len(l.active)))
	for bit, attr := range l.active {
		if l.missing.agree(values[attr], l.query[attr]) {
			mask.Set(uint(bit))
		}
	}
	return mask
}

// attributes maps mask bits back to schema attribute indices.
func (l *labeler) attributes(mask *bitset.BitSet) []int {
	out := make([]int, 0, mask.Count())
	for i, ok := mask.NextSet(0); ok; i, ok = mask.NextSet(i + 1) {
		out = append(out, l.active[i])
	}
	return out
}

// maskKey encodes a mask as a map key. Trailing zero words are dropped so
// masks of different backing lengths with the same bits share a key.
func maskKey(mask *bitset.BitSet) string {
	words := mask.Bytes()
	end := len(words)
	for end > 0 && words[end-1] == 0 {
		end--
	}
	buf := make([]byte, 0, 8*end)
	for _, w := range words[:end] {
		buf = binary.LittleEndian.AppendUint64(buf, w)
	}
	return string(buf)
}
