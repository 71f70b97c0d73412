package analogy

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"io"
	"math"

	"github.com/cockroachdb/errors"
)

// snapshotMagic identifies a serialized exemplar store.
var snapshotMagic = [4]byte{'A', 'M', 'E', 'X'}

const snapshotVersion = uint32(1)

// countingWriter tracks the bytes that reach the underlying writer.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteTo serializes the store, schema included, as a gzip stream.
//
// The uncompressed format is:
//  1. Magic number (4 bytes) - "AMEX"
//  2. Version (4 bytes)
//  3. Schema YAML length (4 bytes) + YAML bytes
//  4. Exemplar count (4 bytes) and arity (4 bytes)
//  5. For each exemplar:
//     - Outcome length (4 bytes) + outcome string
//     - Occurrences (4 bytes)
//     - One int32 code per attribute, -1 for missing
//
// Returns the number of compressed bytes written to w.
//
// Example:
//
//	file, _ := os.Create("train.amx")
//	store.WriteTo(file)
//	file.Close()
func (s *ExemplarStore) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	gz := gzip.NewWriter(cw)

	write := func(data any) error {
		return binary.Write(gz, binary.LittleEndian, data)
	}
	writeString := func(v string) error {
		if err := write(uint32(len(v))); err != nil {
			return err
		}
		_, err := io.WriteString(gz, v)
		return err
	}

	if _, err := gz.Write(snapshotMagic[:]); err != nil {
		return cw.n, errors.Wrap(err, "failed to write magic number")
	}
	if err := write(snapshotVersion); err != nil {
		return cw.n, errors.Wrap(err, "failed to write version")
	}

	var schema bytes.Buffer
	if err := s.schema.WriteYAML(&schema); err != nil {
		return cw.n, err
	}
	if err := writeString(schema.String()); err != nil {
		return cw.n, errors.Wrap(err, "failed to write schema")
	}

	if err := write([2]uint32{uint32(len(s.exemplars)), uint32(s.schema.NumAttributes())}); err != nil {
		return cw.n, errors.Wrap(err, "failed to write exemplar count")
	}
	codes := make([]int32, s.schema.NumAttributes())
	for _, e := range s.exemplars {
		if err := writeString(e.outcome); err != nil {
			return cw.n, errors.Wrapf(err, "failed to write outcome of exemplar %d", e.id)
		}
		if uint64(e.occurrences) > math.MaxUint32 {
			return cw.n, errors.Newf("exemplar %d: occurrence count %d does not fit the format", e.id, e.occurrences)
		}
		if err := write(uint32(e.occurrences)); err != nil {
			return cw.n, errors.Wrapf(err, "failed to write occurrences of exemplar %d", e.id)
		}
		for i, v := range e.values {
			codes[i] = int32(v.Code())
		}
		if err := write(codes); err != nil {
			return cw.n, errors.Wrapf(err, "failed to write values of exemplar %d", e.id)
		}
	}

	if err := gz.Close(); err != nil {
		return cw.n, errors.Wrap(err, "failed to flush snapshot")
	}
	return cw.n, nil
}

// ReadExemplarStore loads a store written by WriteTo. The exemplars are
// validated against the embedded schema and re-indexed, so a loaded store
// behaves exactly like the one that was saved.
func ReadExemplarStore(r io.Reader) (*ExemplarStore, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gzip reader")
	}
	defer gz.Close()

	read := func(data any) error {
		return binary.Read(gz, binary.LittleEndian, data)
	}
	readString := func() (string, error) {
		var n uint32
		if err := read(&n); err != nil {
			return "", err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(gz, buf); err != nil {
			return "", err
		}
		return string(buf), nil
	}

	var magic [4]byte
	if _, err := io.ReadFull(gz, magic[:]); err != nil {
		return nil, errors.Wrap(err, "failed to read magic number")
	}
	if magic != snapshotMagic {
		return nil, errors.Newf("invalid magic number: expected %q, got %q", snapshotMagic[:], magic[:])
	}
	var version uint32
	if err := read(&version); err != nil {
		return nil, errors.Wrap(err, "failed to read version")
	}
	if version != snapshotVersion {
		return nil, errors.Newf("unsupported version: %d", version)
	}

	text, err := readString()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read schema")
	}
	schema, err := LoadSchemaYAML(bytes.NewReader([]byte(text)))
	if err != nil {
		return nil, err
	}

	var header [2]uint32
	if err := read(&header); err != nil {
		return nil, errors.Wrap(err, "failed to read exemplar count")
	}
	count, arity := header[0], int(header[1])
	if arity != schema.NumAttributes() {
		return nil, schemaMismatchf("snapshot arity %d, schema has %d attributes", arity, schema.NumAttributes())
	}

	exemplars := make([]Exemplar, 0, min(count, 1<<16))
	codes := make([]int32, arity)
	for i := uint32(0); i < count; i++ {
		outcome, err := readString()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read outcome of exemplar %d", i)
		}
		var occurrences uint32
		if err := read(&occurrences); err != nil {
			return nil, errors.Wrapf(err, "failed to read occurrences of exemplar %d", i)
		}
		if err := read(codes); err != nil {
			return nil, errors.Wrapf(err, "failed to read values of exemplar %d", i)
		}
		values := make([]Value, arity)
		for j, c := range codes {
			values[j] = Code(int(c))
			if c < 0 {
				values[j] = Missing()
			}
		}
		exemplars = append(exemplars, NewExemplar(outcome, values...).WithOccurrences(int(occurrences)))
	}
	return NewExemplarStore(schema, exemplars)
}
