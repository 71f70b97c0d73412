package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wizenheimer/analogy"
)

var classifyFlags struct {
	train   string
	store   string
	test    string
	schema  string
	explain int
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify every item of a test file against a training file",
	RunE:  runClassify,
}

func init() {
	f := classifyCmd.Flags()
	f.StringVar(&classifyFlags.train, "train", "", "Training exemplars")
	f.StringVar(&classifyFlags.store, "store", "", "Exemplar store snapshot, used instead of --train")
	f.StringVar(&classifyFlags.test, "test", "", "Test items, outcome first (required)")
	f.StringVar(&classifyFlags.schema, "schema", "", "YAML schema (inferred from both files if empty)")
	f.IntVar(&classifyFlags.explain, "explain", 0, "Show the N most influential exemplars per item (-1 for autocut)")

	classifyCmd.MarkFlagsMutuallyExclusive("train", "store")
	classifyCmd.MarkFlagsOneRequired("train", "store")
	_ = classifyCmd.MarkFlagRequired("test")
}

func runClassify(cmd *cobra.Command, _ []string) error {
	test, err := readRecords(classifyFlags.test)
	if err != nil {
		return err
	}
	store, err := trainingStore(classifyFlags.store, classifyFlags.train, classifyFlags.schema, test)
	if err != nil {
		return err
	}
	clf, err := newClassifier(store)
	if err != nil {
		return err
	}
	schema := store.Schema()
	items, err := analogy.EncodeRecords(test, schema)
	if err != nil {
		return fmt.Errorf("test data: %w", err)
	}

	queries := make([][]analogy.Value, len(items))
	for i := range items {
		queries[i] = items[i].Values()
	}
	results := clf.ClassifyBatch(cmd.Context(), queries)

	out := cmd.OutOrStdout()
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Query", "Actual", "Predicted", "Distribution"})
	correct := 0
	for i, br := range results {
		query := strings.Join(schema.Decode(queries[i]), " ")
		actual := items[i].Outcome()
		switch {
		case errors.Is(br.Err, analogy.ErrNoAnalogy):
			t.AppendRow(table.Row{i + 1, query, actual, "-", "no analogy"})
			continue
		case br.Err != nil:
			return fmt.Errorf("item %d: %w", i+1, br.Err)
		}
		predicted := br.Result.Predicted
		if br.Result.IsTie() {
			predicted += " (tie: " + strings.Join(br.Result.Tied, ", ") + ")"
		}
		if br.Result.Predicted == actual {
			correct++
		}
		t.AppendRow(table.Row{i + 1, query, actual, predicted, distribution(br.Result)})
	}
	t.AppendFooter(table.Row{"", "", "", "correct", fmt.Sprintf("%d / %d", correct, len(results))})
	fmt.Fprintln(out, t.Render())

	if classifyFlags.explain != 0 {
		for i, br := range results {
			if br.Err != nil {
				continue
			}
			fmt.Fprintf(out, "\nItem %d analogical set\n", i+1)
			renderAnalogicalSet(out, schema, br.Result.AnalogicalSet, classifyFlags.explain)
		}
	}

	logger.Info("classification finished",
		zap.Int("items", len(results)),
		zap.Int("correct", correct))
	return nil
}

func distribution(r *analogy.Result) string {
	parts := make([]string, 0, len(r.Scores))
	for _, s := range r.Scores {
		parts = append(parts, fmt.Sprintf("%s=%.4f (%s)", s.Class, s.Float64(), s.Pointers))
	}
	return strings.Join(parts, " ")
}

func renderAnalogicalSet(out io.Writer, schema *analogy.Schema, set *analogy.AnalogicalSet, n int) {
	entries := set.Top(n)
	if n == -1 {
		entries = set.Autocut(1)
	}
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Exemplar", "Outcome", "Pointers", "Effect"})
	for _, e := range entries {
		effect, _ := e.Effect.Float64()
		t.AppendRow(table.Row{
			strings.Join(schema.Decode(e.Exemplar.Values()), " "),
			e.Exemplar.Outcome(),
			e.Pointers.String(),
			fmt.Sprintf("%.2f%%", 100*effect),
		})
	}
	fmt.Fprintln(out, t.Render())
}
