package analogy

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// DefaultMissingMarker is the textual don't-care value.
const DefaultMissingMarker = "?"

// ValueKind tags a Value as either a domain code or the missing marker.
type ValueKind uint8

const (
	// CodeValue is an index into the attribute's domain.
	CodeValue ValueKind = iota

	// MissingValue is the don't-care marker. How it compares is decided by
	// the MissingDataKind in effect, never by its encoding.
	MissingValue
)

// Value is one attribute value of an exemplar or query, resolved against a
// Schema. The zero Value is Code(0).
type Value struct {
	kind ValueKind
	code int
}

// Code returns the value at index i of an attribute's domain.
func Code(i int) Value {
	return Value{kind: CodeValue, code: i}
}

// Missing returns the don't-care value.
func Missing() Value {
	return Value{kind: MissingValue, code: -1}
}

// Kind returns the value's tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsMissing reports whether v is the don't-care value.
func (v Value) IsMissing() bool { return v.kind == MissingValue }

// Code returns the domain index, or -1 for a missing value.
func (v Value) Code() int {
	if v.IsMissing() {
		return -1
	}
	return v.code
}

func (v Value) String() string {
	if v.IsMissing() {
		return DefaultMissingMarker
	}
	return strconv.Itoa(v.code)
}

// Values is a convenience for building vectors of codes in tests and adapters.
func Values(codes ...int) []Value {
	out := make([]Value, len(codes))
	for i, c := range codes {
		if c < 0 {
			out[i] = Missing()
			continue
		}
		out[i] = Code(c)
	}
	return out
}

// Attribute is a named discrete dimension with a finite domain.
type Attribute struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
}

// Schema is the ordered list of attributes every exemplar and query must fit,
// plus the optional declared outcome set.
//
// Strings are NFKC-normalised and trimmed before they are interned, so the
// same visible value always encodes to the same code.
//
// A Schema is immutable after construction and safe for concurrent use.
type Schema struct {
	attributes []Attribute
	codes      []map[string]int
	outcomes   []string
	outcomeSet map[string]struct{}
	missing    string
}

// SchemaOption customises NewSchema and InferSchema.
type SchemaOption func(*Schema)

// WithOutcomes declares the closed set of outcome labels. Exemplars with any
// other outcome are rejected by the store.
func WithOutcomes(outcomes ...string) SchemaOption {
	return func(s *Schema) {
		s.outcomeSet = make(map[string]struct{}, len(outcomes))
		for _, o := range outcomes {
			s.outcomeSet[normalize(o)] = struct{}{}
		}
	}
}

// WithMissingMarker overrides DefaultMissingMarker.
func WithMissingMarker(marker string) SchemaOption {
	return func(s *Schema) {
		if m := normalize(marker); m != "" {
			s.missing = m
		}
	}
}

// NewSchema builds a schema from attribute definitions.
//
// Every attribute needs a non-empty domain without duplicates, and no domain
// value may equal the missing marker. Unnamed attributes are called a0, a1, ...
func NewSchema(attributes []Attribute, opts ...SchemaOption) (*Schema, error) {
	s := &Schema{missing: DefaultMissingMarker}
	for _, opt := range opts {
		opt(s)
	}
	if len(attributes) == 0 {
		return nil, schemaMismatchf("schema needs at least one attribute")
	}

	s.attributes = make([]Attribute, len(attributes))
	s.codes = make([]map[string]int, len(attributes))
	names := make(map[string]int, len(attributes))
	for i, attr := range attributes {
		name := normalize(attr.Name)
		if name == "" {
			name = fmt.Sprintf("a%d", i)
		}
		if j, dup := names[name]; dup {
			return nil, schemaMismatchf("attribute %d: name %q already used by attribute %d", i, name, j)
		}
		names[name] = i

		if len(attr.Values) == 0 {
			return nil, schemaMismatchf("attribute %q: empty domain", name)
		}
		values := make([]string, len(attr.Values))
		codes := make(map[string]int, len(attr.Values))
		for j, raw := range attr.Values {
			v := normalize(raw)
			if v == s.missing {
				return nil, schemaMismatchf("attribute %q: domain contains the missing marker %q", name, s.missing)
			}
			if _, dup := codes[v]; dup {
				return nil, schemaMismatchf("attribute %q: duplicate value %q", name, v)
			}
			codes[v] = j
			values[j] = v
		}
		s.attributes[i] = Attribute{Name: name, Values: values}
		s.codes[i] = codes
	}

	if s.outcomeSet != nil {
		s.outcomes = make([]string, 0, len(s.outcomeSet))
		for o := range s.outcomeSet {
			if o == "" {
				return nil, schemaMismatchf("declared outcome set contains an empty label")
			}
			s.outcomes = append(s.outcomes, o)
		}
		sort.Strings(s.outcomes)
	}
	return s, nil
}

// InferSchema derives a schema from raw rows: each column becomes an attribute
// whose domain is its distinct non-missing values in order of first appearance.
func InferSchema(rows [][]string, opts ...SchemaOption) (*Schema, error) {
	probe := &Schema{missing: DefaultMissingMarker}
	for _, opt := range opts {
		opt(probe)
	}
	if len(rows) == 0 {
		return nil, schemaMismatchf("cannot infer a schema from zero rows")
	}

	width := len(rows[0])
	attrs := make([]Attribute, width)
	seen := make([]map[string]struct{}, width)
	for i := range attrs {
		attrs[i].Name = fmt.Sprintf("a%d", i)
		seen[i] = make(map[string]struct{})
	}
	for r, row := range rows {
		if len(row) != width {
			return nil, schemaMismatchf("row %d: %d values, want %d", r, len(row), width)
		}
		for i, raw := range row {
			v := normalize(raw)
			if v == probe.missing {
				continue
			}
			if _, ok := seen[i][v]; ok {
				continue
			}
			seen[i][v] = struct{}{}
			attrs[i].Values = append(attrs[i].Values, v)
		}
	}
	for i := range attrs {
		// A column that is missing everywhere still needs a domain.
		if len(attrs[i].Values) == 0 {
			attrs[i].Values = []string{"_"}
		}
	}
	return NewSchema(attrs, opts...)
}

// schemaFile is the YAML layout accepted by LoadSchemaYAML.
type schemaFile struct {
	Missing    string      `yaml:"missing"`
	Outcomes   []string    `yaml:"outcomes,omitempty"`
	Attributes []Attribute `yaml:"attributes"`
}

// LoadSchemaYAML reads a schema definition:
//
//	missing: "?"
//	outcomes: [e, r]
//	attributes:
//	  - name: onset
//	    values: ["0", "1", "2", "3"]
func LoadSchemaYAML(r io.Reader) (*Schema, error) {
	var f schemaFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(err, "failed to decode schema")
	}

	var opts []SchemaOption
	if f.Missing != "" {
		opts = append(opts, WithMissingMarker(f.Missing))
	}
	if len(f.Outcomes) > 0 {
		opts = append(opts, WithOutcomes(f.Outcomes...))
	}
	return NewSchema(f.Attributes, opts...)
}

// WriteYAML writes the schema in the layout LoadSchemaYAML reads.
func (s *Schema) WriteYAML(w io.Writer) error {
	f := schemaFile{
		Missing:    s.missing,
		Outcomes:   s.Outcomes(),
		Attributes: make([]Attribute, len(s.attributes)),
	}
	for i, attr := range s.attributes {
		f.Attributes[i] = Attribute{Name: attr.Name, Values: append([]string(nil), attr.Values...)}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return errors.Wrap(err, "failed to encode schema")
	}
	return errors.Wrap(enc.Close(), "failed to encode schema")
}

// NumAttributes returns the schema arity.
func (s *Schema) NumAttributes() int { return len(s.attributes) }

// Attribute returns attribute i.
func (s *Schema) Attribute(i int) Attribute { return s.attributes[i] }

// MissingMarker returns the textual don't-care value.
func (s *Schema) MissingMarker() string { return s.missing }

// Outcomes returns the declared outcome labels, sorted, or nil when the
// outcome set is open.
func (s *Schema) Outcomes() []string {
	if s.outcomes == nil {
		return nil
	}
	return append([]string(nil), s.outcomes...)
}

// EncodeValue resolves a raw string for attribute attr.
func (s *Schema) EncodeValue(attr int, raw string) (Value, error) {
	if attr < 0 || attr >= len(s.attributes) {
		return Value{}, schemaMismatchf("attribute index %d out of range [0, %d)", attr, len(s.attributes))
	}
	v := normalize(raw)
	if v == s.missing {
		return Missing(), nil
	}
	code, ok := s.codes[attr][v]
	if !ok {
		return Value{}, errors.WithHintf(
			schemaMismatchf("attribute %q: unknown value %q", s.attributes[attr].Name, v),
			"the domain is %s", strings.Join(s.attributes[attr].Values, ", "))
	}
	return Code(code), nil
}

// Encode resolves a raw attribute vector.
func (s *Schema) Encode(raw []string) ([]Value, error) {
	if len(raw) != len(s.attributes) {
		return nil, schemaMismatchf("%d values, want %d", len(raw), len(s.attributes))
	}
	out := make([]Value, len(raw))
	for i, r := range raw {
		v, err := s.EncodeValue(i, r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Decode renders values back to their domain strings.
func (s *Schema) Decode(values []Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		switch {
		case v.IsMissing():
			out[i] = s.missing
		case i < len(s.attributes) && v.code >= 0 && v.code < len(s.attributes[i].Values):
			out[i] = s.attributes[i].Values[v.code]
		default:
			out[i] = v.String()
		}
	}
	return out
}

// Validate checks that values has the schema arity and every code lies in
// its attribute's domain.
func (s *Schema) Validate(values []Value) error {
	if len(values) != len(s.attributes) {
		return schemaMismatchf("%d values, want %d", len(values), len(s.attributes))
	}
	for i, v := range values {
		if v.IsMissing() {
			continue
		}
		if v.code < 0 || v.code >= len(s.attributes[i].Values) {
			return schemaMismatchf("attribute %q: code %d outside domain of size %d",
				s.attributes[i].Name, v.code, len(s.attributes[i].Values))
		}
	}
	return nil
}

// validOutcome normalises label and checks it against the declared set.
func (s *Schema) validOutcome(label string) (string, error) {
	o := normalize(label)
	if o == "" {
		return "", schemaMismatchf("empty outcome label")
	}
	if s.outcomeSet != nil {
		if _, ok := s.outcomeSet[o]; !ok {
			return "", schemaMismatchf("outcome %q not declared", o)
		}
	}
	return o, nil
}

// normalize applies NFKC and trims surrounding space.
func normalize(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}
