package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var looFlags struct {
	train  string
	store  string
	schema string
}

var looCmd = &cobra.Command{
	Use:   "loo",
	Short: "Leave-one-out evaluation of a training file",
	RunE:  runLOO,
}

func init() {
	f := looCmd.Flags()
	f.StringVar(&looFlags.train, "train", "", "Training exemplars")
	f.StringVar(&looFlags.store, "store", "", "Exemplar store snapshot, used instead of --train")
	f.StringVar(&looFlags.schema, "schema", "", "YAML schema (inferred if empty)")

	looCmd.MarkFlagsMutuallyExclusive("train", "store")
	looCmd.MarkFlagsOneRequired("train", "store")
}

func runLOO(cmd *cobra.Command, _ []string) error {
	store, err := trainingStore(looFlags.store, looFlags.train, looFlags.schema)
	if err != nil {
		return err
	}
	clf, err := newClassifier(store)
	if err != nil {
		return err
	}
	eval, err := clf.LeaveOneOut(cmd.Context())
	if err != nil {
		return err
	}

	outcomes := eval.Outcomes()
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	header := table.Row{"actual \\ predicted"}
	for _, o := range outcomes {
		header = append(header, o)
	}
	t.AppendHeader(header)
	for _, actual := range outcomes {
		row := table.Row{actual}
		for _, predicted := range outcomes {
			row = append(row, eval.Confusion[actual][predicted])
		}
		t.AppendRow(row)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, t.Render())
	fmt.Fprintf(out, "accuracy: %d / %d (%.2f%%), unclassified: %d\n",
		eval.Correct, eval.Total, 100*eval.Accuracy(), eval.Unclassified)
	return nil
}
