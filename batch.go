package analogy

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BatchResult is the outcome of one query of a batch. Exactly one of Result
// and Err is set.
type BatchResult struct {
	Index  int
	Result *Result
	Err    error
}

// ClassifyBatch classifies queries concurrently on up to Config.Workers
// goroutines. Per-query failures, ErrNoAnalogy included, are captured in the
// corresponding BatchResult; results keep the order of queries.
func (c *Classifier) ClassifyBatch(ctx context.Context, queries [][]Value) []BatchResult {
	results := make([]BatchResult, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)
	for i, q := range queries {
		g.Go(func() error {
			r, err := c.Classify(gctx, q)
			results[i] = BatchResult{Index: i, Result: r, Err: err}
			return nil
		})
	}
	_ = g.Wait() // errors captured in BatchResult.Err

	return results
}

// Evaluation summarises a leave-one-out run.
type Evaluation struct {
	Total        int
	Correct      int
	Unclassified int

	// Confusion counts predictions per actual outcome:
	// Confusion[actual][predicted]. Unclassified items are not counted.
	Confusion map[string]map[string]int
}

// Accuracy is Correct / Total, or zero for an empty run.
func (e *Evaluation) Accuracy() float64 {
	if e.Total == 0 {
		return 0
	}
	return float64(e.Correct) / float64(e.Total)
}

// Outcomes returns the actual outcomes in the confusion table, sorted.
func (e *Evaluation) Outcomes() []string {
	out := make([]string, 0, len(e.Confusion))
	for o := range e.Confusion {
		out = append(out, o)
	}
	sort.Strings(out)
	return out
}

// LeaveOneOut classifies every training exemplar with itself excluded and
// compares the prediction to its outcome. A tied prediction counts as
// correct only when the tie-break picks the true outcome.
//
// Items without an analogy are counted as unclassified; any other error
// aborts the run.
func (c *Classifier) LeaveOneOut(ctx context.Context) (*Evaluation, error) {
	var held []*Exemplar
	for e := range c.source.All() {
		held = append(held, e)
	}

	predicted := make([]string, len(held))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)
	for i, e := range held {
		g.Go(func() error {
			r, err := c.NewClassification().
				WithQuery(e.values).
				WithExclude(e.id).
				Execute(gctx)
			switch {
			case errors.Is(err, ErrNoAnalogy):
				return nil
			case err != nil:
				return errors.Wrapf(err, "exemplar %d", e.id)
			}
			predicted[i] = r.Predicted
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	eval := &Evaluation{Total: len(held), Confusion: make(map[string]map[string]int)}
	for i, e := range held {
		if predicted[i] == "" {
			eval.Unclassified++
			continue
		}
		if predicted[i] == e.outcome {
			eval.Correct++
		}
		row := eval.Confusion[e.outcome]
		if row == nil {
			row = make(map[string]int)
			eval.Confusion[e.outcome] = row
		}
		row[predicted[i]]++
	}
	c.logger.Info("leave-one-out finished",
		zap.Int("total", eval.Total),
		zap.Int("correct", eval.Correct),
		zap.Int("unclassified", eval.Unclassified))
	return eval, nil
}
