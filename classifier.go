package analogy

import (
	"context"
	"sort"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Stage names the step a classification is in. Stages only move forward:
// idle → partitioning → lattice → scoring → done, or to error from any step.
type Stage string

const (
	StageIdle         Stage = "idle"
	StagePartitioning Stage = "partitioning"
	StageLattice      Stage = "lattice"
	StageScoring      Stage = "scoring"
	StageDone         Stage = "done"
	StageError        Stage = "error"
)

// Classifier predicts outcomes for queries by analogy with a fixed exemplar
// source.
//
// A Classifier holds no per-query state and is safe for concurrent use.
type Classifier struct {
	source  ExemplarSource
	cfg     Config
	logger  *zap.Logger
	metrics *Metrics
}

// ClassifierOption customises a Classifier.
type ClassifierOption func(*Classifier)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) ClassifierOption {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records classifications on m.
func WithMetrics(m *Metrics) ClassifierOption {
	return func(c *Classifier) {
		c.metrics = m
	}
}

// NewClassifier creates a classifier over source. A nil cfg means
// DefaultConfig; the configuration is copied and validated.
//
// Example:
//
//	store, _ := NewExemplarStore(schema, exemplars)
//	clf, _ := NewClassifier(store, nil)
//	result, err := clf.Classify(ctx, query)
func NewClassifier(source ExemplarSource, cfg *Config, opts ...ClassifierOption) (*Classifier, error) {
	if source == nil {
		return nil, errors.New("nil exemplar source")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := &Classifier{
		source: source,
		cfg:    *cfg,
		logger: zap.NewNop(),
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns a copy of the classifier's configuration.
func (c *Classifier) Config() Config { return c.cfg }

// Source returns the exemplar source.
func (c *Classifier) Source() ExemplarSource { return c.source }

// Classify predicts the outcome of query with the configured options.
//
// It returns ErrNoAnalogy when no exemplar receives pointers and
// ErrSchemaMismatch when the query does not fit the schema.
func (c *Classifier) Classify(ctx context.Context, query []Value) (*Result, error) {
	return c.NewClassification().WithQuery(query).Execute(ctx)
}

// Explain returns the analogical set behind the prediction for query.
func (c *Classifier) Explain(ctx context.Context, query []Value) (*AnalogicalSet, error) {
	r, err := c.Classify(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.AnalogicalSet, nil
}

// NewClassification creates a request builder with the classifier's defaults.
func (c *Classifier) NewClassification() Classification {
	return &classification{
		classifier:       c,
		excludeIdentical: c.cfg.ExcludeIdentical,
		pointers:         c.cfg.Pointers,
		homogeneity:      c.cfg.Homogeneity,
	}
}

// run executes one classification request.
func (c *Classifier) run(ctx context.Context, req *classification) (result *Result, err error) {
	start := time.Now()
	stage := StageIdle
	log := c.logger.With(zap.Int("attributes", len(req.query)))

	defer func() {
		c.metrics.observeDuration(start)
		switch {
		case err == nil:
			c.metrics.recordResult(resultOK, StageDone)
		case errors.Is(err, ErrNoAnalogy):
			c.metrics.recordResult(resultNoAnalogy, stage)
			log.Debug("no analogy", stageField(stage))
		default:
			c.metrics.recordResult(resultError, stage)
			log.Debug("classification failed", stageField(stage), zap.Error(err))
		}
	}()

	if err := c.source.Schema().Validate(req.query); err != nil {
		return nil, errors.Wrap(err, "query")
	}

	filter := newExemplarFilterFromBitmaps(c.exclusions(req)...)
	defer ReleaseExemplarFilter(filter)

	stage = StagePartitioning
	lab := newLabeler(req.query, c.cfg.MissingData, c.cfg.IgnoreUnknowns)
	part, err := partition(ctx, lab, c.source.All(), filter)
	if err != nil {
		return nil, errors.Wrap(err, string(stage))
	}
	log.Debug("partitioned",
		stageField(stage),
		zap.Int("cardinality", part.cardinality),
		zap.Int("exemplars", part.exemplars),
		zap.Int("excluded", part.excluded),
		zap.Int("subcontexts", len(part.subcontexts)))
	if part.exemplars == 0 {
		return nil, errors.Wrap(ErrNoAnalogy, "every exemplar was excluded")
	}

	stage = StageLattice
	lattice, err := BuildLattice(ctx, part, req.homogeneity, c.cfg.Workers)
	if err != nil {
		return nil, errors.Wrap(err, string(stage))
	}
	c.metrics.observeLattice(len(part.subcontexts), len(lattice.supracontexts))
	log.Debug("lattice built",
		stageField(stage),
		zap.Int("explored", lattice.explored),
		zap.Int("homogeneous", len(lattice.supracontexts)),
		zap.Int("heterogeneous", lattice.heterogeneous))

	stage = StageScoring
	table, err := ComputePointers(lattice, req.pointers, c.cfg.MaxPointerBits)
	if err != nil {
		return nil, errors.Wrap(err, string(stage))
	}
	if table.total.Sign() == 0 {
		return nil, errors.Wrap(ErrNoAnalogy, "every populated supracontext is heterogeneous")
	}

	result = buildResult(req.query, c.classes(table), lattice, table)
	stage = StageDone
	log.Debug("classified",
		stageField(stage),
		zap.String("predicted", result.Predicted),
		zap.Strings("tied", result.Tied),
		zap.Stringer("pointers", result.TotalPointers))
	return result, nil
}

// exclusions collects the exemplar ID sets a request leaves out.
func (c *Classifier) exclusions(req *classification) []*roaring.Bitmap {
	var sets []*roaring.Bitmap
	if len(req.exclude) > 0 {
		sets = append(sets, roaring.BitmapOf(req.exclude...))
	}
	if req.excludeIdentical {
		sets = append(sets, c.source.Identical(req.query))
	}
	return sets
}

// classes is the union of the source's classes and those holding pointers.
func (c *Classifier) classes(t *PointerTable) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range [][]string{c.source.OutcomeClasses(), t.Classes()} {
		for _, cl := range list {
			if _, ok := seen[cl]; ok {
				continue
			}
			seen[cl] = struct{}{}
			out = append(out, cl)
		}
	}
	sort.Strings(out)
	return out
}
