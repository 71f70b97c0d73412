package analogy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// digitSchema returns n attributes whose domain is "0".."top", so that
// Code(i) reads as the digit i.
func digitSchema(t testing.TB, n, top int, opts ...SchemaOption) *Schema {
	t.Helper()
	domain := make([]string, top+1)
	for i := range domain {
		domain[i] = string(rune('0' + i))
	}
	attrs := make([]Attribute, n)
	for i := range attrs {
		attrs[i] = Attribute{Values: domain}
	}
	s, err := NewSchema(attrs, opts...)
	require.NoError(t, err)
	return s
}

type row struct {
	outcome string
	values  []int
}

func newStore(t testing.TB, schema *Schema, rows ...row) *ExemplarStore {
	t.Helper()
	exemplars := make([]Exemplar, len(rows))
	for i, r := range rows {
		exemplars[i] = NewExemplar(r.outcome, Values(r.values...)...)
	}
	store, err := NewExemplarStore(schema, exemplars)
	require.NoError(t, err)
	return store
}

// chapter3Store is the worked example of Skousen (1989), chapter 3, queried
// with 312.
func chapter3Store(t testing.TB) *ExemplarStore {
	return newStore(t, digitSchema(t, 3, 3),
		row{"e", []int{3, 1, 0}},
		row{"r", []int{0, 3, 2}},
		row{"r", []int{2, 1, 0}},
		row{"r", []int{2, 1, 2}},
		row{"r", []int{3, 1, 1}},
	)
}

var chapter3Query = Values(3, 1, 2)

func newTestClassifier(t testing.TB, store ExemplarSource, mutate func(*Config), opts ...ClassifierOption) *Classifier {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	clf, err := NewClassifier(store, cfg, opts...)
	require.NoError(t, err)
	return clf
}

func classic(cfg *Config) { cfg.Homogeneity = HomogeneityClassic }

func buildLattice(t testing.TB, store *ExemplarStore, query []Value, kind HomogeneityKind) *Lattice {
	t.Helper()
	p, err := PartitionExemplars(context.Background(), query, store.All(), nil, nil)
	require.NoError(t, err)
	l, err := BuildLattice(context.Background(), p, kind, 2)
	require.NoError(t, err)
	return l
}
