package analogy

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFields(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{line: "e 3 1 0", want: []string{"e", "3", "1", "0"}},
		{line: "r,0,3,2", want: []string{"r", "0", "3", "2"}},
		{line: "  r ,\t0 , 3,2  ", want: []string{"r", "0", "3", "2"}},
		{line: "yes a-b 3.5 ?", want: []string{"yes", "a-b", "3.5", "?"}},
		{line: "e 3 1 0 # trailing comment", want: []string{"e", "3", "1", "0"}},
		{line: "# only a comment", want: nil},
		{line: "", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, splitFields(tt.line)); diff != "" {
				t.Errorf("splitFields(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

const chapter3Text = `
# Skousen (1989), chapter 3
e 3 1 0
r 0 3 2
r,2,1,0
r 2 1 2

r 3 1 1
`

func TestReadDataset_InferredSchema(t *testing.T) {
	ds, err := ReadDataset(strings.NewReader(chapter3Text), nil)
	require.NoError(t, err)

	require.Len(t, ds.Exemplars, 5)
	assert.Equal(t, 3, ds.Schema.NumAttributes())
	assert.Equal(t, []string{"3", "0", "2"}, ds.Schema.Attribute(0).Values)
	assert.Equal(t, []string{"e", "r", "r", "r", "r"}, []string{
		ds.Exemplars[0].Outcome(), ds.Exemplars[1].Outcome(), ds.Exemplars[2].Outcome(),
		ds.Exemplars[3].Outcome(), ds.Exemplars[4].Outcome(),
	})
	assert.Equal(t, []string{"2", "1", "0"}, ds.Schema.Decode(ds.Rows()[2]))

	store, err := NewExemplarStore(ds.Schema, ds.Exemplars)
	require.NoError(t, err)
	query, err := ds.Schema.Encode([]string{"3", "1", "2"})
	require.NoError(t, err)

	r, err := newTestClassifier(t, store, classic).Classify(t.Context(), query)
	require.NoError(t, err)
	assert.Equal(t, "r", r.Predicted)
	assert.Equal(t, int64(13), r.TotalPointers.Int64())
}

func TestReadDataset_GivenSchema(t *testing.T) {
	schema := digitSchema(t, 3, 3)

	ds, err := ReadDataset(strings.NewReader(chapter3Text), schema)
	require.NoError(t, err)
	assert.Same(t, schema, ds.Schema)
	assert.Equal(t, Values(3, 1, 0), ds.Exemplars[0].Values())

	_, err = ReadDataset(strings.NewReader("e 3 1 9\n"), schema)
	require.True(t, errors.Is(err, ErrSchemaMismatch), "got %v", err)
	assert.Contains(t, err.Error(), "line 1")
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestReadRecords_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "width mismatch", input: "e 3 1 0\nr 0 3\n"},
		{name: "outcome only", input: "e\nr\n"},
		{name: "empty", input: "# nothing here\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRecords(strings.NewReader(tt.input))
			assert.True(t, errors.Is(err, ErrSchemaMismatch), "got %v", err)
		})
	}
}

func TestInferRecordSchema_SharesDomains(t *testing.T) {
	train, err := ReadRecords(strings.NewReader("a x 1\nb y 2\n"))
	require.NoError(t, err)
	test, err := ReadRecords(strings.NewReader("a z 1\n"))
	require.NoError(t, err)

	schema, err := InferRecordSchema([][]Record{train, test})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, schema.Attribute(0).Values)

	exemplars, err := EncodeRecords(test, schema)
	require.NoError(t, err)
	assert.Equal(t, Values(2, 0), exemplars[0].Values())
}
