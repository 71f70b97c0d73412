package analogy

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
	"github.com/cockroachdb/errors"
)

// Dataset is a set of exemplars read from text together with its schema.
type Dataset struct {
	Schema    *Schema
	Exemplars []Exemplar
}

// Rows returns the raw attribute vectors, for use as queries.
func (d *Dataset) Rows() [][]Value {
	out := make([][]Value, len(d.Exemplars))
	for i := range d.Exemplars {
		out[i] = d.Exemplars[i].Values()
	}
	return out
}

// Record is one parsed line of a dataset file.
type Record struct {
	Line    int
	Outcome string
	Fields  []string
}

// ReadRecords parses the plain exemplar format: one exemplar per line, the
// outcome first and the attribute values after it, separated by whitespace or
// commas. A '#' starts a comment that runs to the end of the line; blank lines
// are skipped. Every line must have the same number of fields.
//
//	# outcome, then three attributes
//	e 3 1 0
//	r,0,3,2
func ReadRecords(r io.Reader) ([]Record, error) {
	var (
		records []Record
		width   = -1
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		fields := splitFields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if width == -1 {
			width = len(fields)
		}
		if len(fields) != width {
			return nil, schemaMismatchf("line %d: %d fields, want %d", lineNo, len(fields), width)
		}
		if width < 2 {
			return nil, schemaMismatchf("line %d: an outcome and at least one attribute are required", lineNo)
		}
		records = append(records, Record{Line: lineNo, Outcome: fields[0], Fields: fields[1:]})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read dataset")
	}
	if len(records) == 0 {
		return nil, schemaMismatchf("dataset has no exemplars")
	}
	return records, nil
}

// InferRecordSchema infers one schema covering every record of every set,
// so that training and test files share their domains.
func InferRecordSchema(sets [][]Record, opts ...SchemaOption) (*Schema, error) {
	var rows [][]string
	for _, records := range sets {
		for _, rec := range records {
			rows = append(rows, rec.Fields)
		}
	}
	return InferSchema(rows, opts...)
}

// EncodeRecords resolves records against schema.
func EncodeRecords(records []Record, schema *Schema) ([]Exemplar, error) {
	out := make([]Exemplar, len(records))
	for i, rec := range records {
		values, err := schema.Encode(rec.Fields)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", rec.Line)
		}
		out[i] = NewExemplar(rec.Outcome, values...)
	}
	return out, nil
}

// ReadDataset reads records and encodes them. A nil schema is inferred from
// the records; otherwise values must belong to its domains.
func ReadDataset(r io.Reader, schema *Schema, opts ...SchemaOption) (*Dataset, error) {
	records, err := ReadRecords(r)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		if schema, err = InferRecordSchema([][]Record{records}, opts...); err != nil {
			return nil, err
		}
	}
	exemplars, err := EncodeRecords(records, schema)
	if err != nil {
		return nil, err
	}
	return &Dataset{Schema: schema, Exemplars: exemplars}, nil
}

// splitFields segments a line into UAX#29 words and joins every run of
// segments between separators into one field, so values such as "a-b" or
// "3.5" stay whole. Separators are whitespace and commas; '#' ends the line.
func splitFields(line string) []string {
	var (
		fields []string
		field  strings.Builder
	)
	flush := func() {
		if field.Len() > 0 {
			fields = append(fields, field.String())
			field.Reset()
		}
	}

	segments := words.FromString(line)
	for segments.Next() {
		seg := segments.Value()
		switch {
		case seg == "#":
			flush()
			return fields
		case seg == "," || strings.TrimFunc(seg, unicode.IsSpace) == "":
			flush()
		default:
			// UAX#29 keeps "0,3,2" together as one number.
			for i, part := range strings.Split(seg, ",") {
				if i > 0 {
					flush()
				}
				field.WriteString(part)
			}
		}
	}
	flush()
	return fields
}
