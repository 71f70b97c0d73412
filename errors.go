package analogy

import (
	"github.com/cockroachdb/errors"
)

// Error taxonomy. Callers match with errors.Is; every error returned by this
// package wraps exactly one of these sentinels (or a context error).
var (
	// ErrSchemaMismatch reports an exemplar or query that does not fit the schema:
	// wrong arity, a value outside the attribute's domain, an empty or undeclared
	// outcome, or a non-positive occurrence count.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrNoAnalogy is returned when no exemplar receives any pointer, i.e. every
	// populated supracontext is heterogeneous. It is an expected outcome, not a fault.
	ErrNoAnalogy = errors.New("no analogy")

	// ErrOverflow is returned when pointer totals exceed Config.MaxPointerBits.
	ErrOverflow = errors.New("pointer overflow")

	// ErrInternalInconsistency marks a violated lattice invariant.
	ErrInternalInconsistency = errors.New("internal inconsistency")

	// ErrInvalidConfig reports an unknown option value.
	ErrInvalidConfig = errors.New("invalid config")
)

// inconsistency builds an assertion failure marked as ErrInternalInconsistency.
func inconsistency(format string, args ...interface{}) error {
	return errors.Mark(errors.AssertionFailedf(format, args...), ErrInternalInconsistency)
}

// schemaMismatchf wraps ErrSchemaMismatch with positional context.
func schemaMismatchf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrSchemaMismatch, format, args...)
}
