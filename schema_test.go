package analogy

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchema_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		attrs []Attribute
		opts  []SchemaOption
	}{
		{name: "no attributes"},
		{name: "empty domain", attrs: []Attribute{{Name: "x"}}},
		{name: "duplicate value", attrs: []Attribute{{Name: "x", Values: []string{"a", "a"}}}},
		{name: "duplicate after normalisation", attrs: []Attribute{{Name: "x", Values: []string{"a", " ａ "}}}},
		{name: "duplicate name", attrs: []Attribute{{Name: "x", Values: []string{"a"}}, {Name: "x", Values: []string{"b"}}}},
		{name: "missing marker in domain", attrs: []Attribute{{Name: "x", Values: []string{"a", "?"}}}},
		{
			name:  "custom missing marker in domain",
			attrs: []Attribute{{Name: "x", Values: []string{"a", "-"}}},
			opts:  []SchemaOption{WithMissingMarker("-")},
		},
		{
			name:  "empty declared outcome",
			attrs: []Attribute{{Name: "x", Values: []string{"a"}}},
			opts:  []SchemaOption{WithOutcomes("p", "")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(tt.attrs, tt.opts...)
			assert.True(t, errors.Is(err, ErrSchemaMismatch), "got %v", err)
		})
	}
}

func TestSchema_EncodeDecode(t *testing.T) {
	schema, err := NewSchema([]Attribute{
		{Name: "onset", Values: []string{"p", "b", "t"}},
		{Name: "vowel", Values: []string{"a", "e"}},
	})
	require.NoError(t, err)

	values, err := schema.Encode([]string{"t", "?"})
	require.NoError(t, err)
	assert.Equal(t, []Value{Code(2), Missing()}, values)
	assert.Equal(t, []string{"t", "?"}, schema.Decode(values))

	// Fullwidth forms normalise to their ASCII equivalents.
	values, err = schema.Encode([]string{"ｂ", " e "})
	require.NoError(t, err)
	assert.Equal(t, Values(1, 1), values)

	_, err = schema.Encode([]string{"k", "a"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
	assert.Contains(t, errors.FlattenHints(err), "p, b, t")

	_, err = schema.Encode([]string{"p"})
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
}

func TestSchema_Validate(t *testing.T) {
	schema := digitSchema(t, 2, 1)
	assert.NoError(t, schema.Validate(Values(0, 1)))
	assert.NoError(t, schema.Validate([]Value{Missing(), Code(1)}))
	assert.Error(t, schema.Validate(Values(0, 2)))
	assert.Error(t, schema.Validate(Values(0)))
}

func TestValue(t *testing.T) {
	assert.False(t, Code(0).IsMissing())
	assert.True(t, Missing().IsMissing())
	assert.Equal(t, -1, Missing().Code())
	assert.Equal(t, MissingValue, Missing().Kind())
	assert.Equal(t, CodeValue, Value{}.Kind())
	assert.Equal(t, []Value{Code(1), Missing()}, Values(1, -1))
}

func TestInferSchema(t *testing.T) {
	schema, err := InferSchema([][]string{
		{"b", "?"},
		{"a", "x"},
		{"b", "y"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, schema.NumAttributes())
	assert.Equal(t, []string{"b", "a"}, schema.Attribute(0).Values)
	assert.Equal(t, []string{"x", "y"}, schema.Attribute(1).Values)
	assert.Equal(t, "a0", schema.Attribute(0).Name)

	_, err = InferSchema([][]string{{"a", "b"}, {"a"}})
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
}

func TestLoadSchemaYAML(t *testing.T) {
	const doc = `
missing: "*"
outcomes: [e, r]
attributes:
  - name: first
    values: ["0", "1", "2", "3"]
  - name: second
    values: ["0", "1", "2", "3"]
`
	schema, err := LoadSchemaYAML(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, schema.NumAttributes())
	assert.Equal(t, "*", schema.MissingMarker())
	assert.Equal(t, []string{"e", "r"}, schema.Outcomes())
	assert.Equal(t, "second", schema.Attribute(1).Name)

	values, err := schema.Encode([]string{"3", "*"})
	require.NoError(t, err)
	assert.Equal(t, []Value{Code(3), Missing()}, values)

	_, err = LoadSchemaYAML(strings.NewReader("attributes: []\nbogus: 1\n"))
	assert.Error(t, err)
}
