package analogy

import (
	"context"
)

// Classification encapsulates one classification request.
type Classification interface {
	// WithQuery sets the query vector
	WithQuery(query []Value) Classification

	// WithRawQuery sets the query from domain strings; encoding errors are
	// reported by Execute
	WithRawQuery(raw ...string) Classification

	// WithExclude leaves the given exemplar IDs out of the training set
	WithExclude(ids ...uint32) Classification

	// WithExcludeIdentical leaves out exemplars identical to the query
	WithExcludeIdentical(exclude bool) Classification

	// WithPointers overrides the pointer counting for this request
	WithPointers(kind PointerKind) Classification

	// WithHomogeneity overrides the homogeneity rule for this request
	WithHomogeneity(kind HomogeneityKind) Classification

	// Execute runs the classification
	Execute(ctx context.Context) (*Result, error)
}

// Compile-time check to ensure classification implements Classification
var _ Classification = (*classification)(nil)

type classification struct {
	classifier       *Classifier
	query            []Value
	err              error
	exclude          []uint32
	excludeIdentical bool
	pointers         PointerKind
	homogeneity      HomogeneityKind
}

func (r *classification) WithQuery(query []Value) Classification {
	r.query = append([]Value(nil), query...)
	return r
}

func (r *classification) WithRawQuery(raw ...string) Classification {
	r.query, r.err = r.classifier.source.Schema().Encode(raw)
	return r
}

func (r *classification) WithExclude(ids ...uint32) Classification {
	r.exclude = append(r.exclude, ids...)
	return r
}

func (r *classification) WithExcludeIdentical(exclude bool) Classification {
	r.excludeIdentical = exclude
	return r
}

func (r *classification) WithPointers(kind PointerKind) Classification {
	r.pointers = kind
	return r
}

func (r *classification) WithHomogeneity(kind HomogeneityKind) Classification {
	r.homogeneity = kind
	return r
}

func (r *classification) Execute(ctx context.Context) (*Result, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.classifier.run(ctx, r)
}
