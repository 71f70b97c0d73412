package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var snapshotFlags struct {
	train  string
	schema string
	out    string
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Encode a training file into a compressed exemplar store",
	Long: "snapshot validates and encodes a training file once and writes it,\n" +
		"schema included, to a file that classify and loo accept with --store.",
	RunE: runSnapshot,
}

func init() {
	f := snapshotCmd.Flags()
	f.StringVar(&snapshotFlags.train, "train", "", "Training exemplars (required)")
	f.StringVar(&snapshotFlags.schema, "schema", "", "YAML schema (inferred if empty)")
	f.StringVarP(&snapshotFlags.out, "out", "o", "", "Output file (required)")

	_ = snapshotCmd.MarkFlagRequired("train")
	_ = snapshotCmd.MarkFlagRequired("out")
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	store, err := trainingStore("", snapshotFlags.train, snapshotFlags.schema)
	if err != nil {
		return err
	}

	f, err := os.Create(snapshotFlags.out)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	n, err := store.WriteTo(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}

	logger.Info("snapshot written",
		zap.String("path", snapshotFlags.out),
		zap.Int("exemplars", store.Len()),
		zap.Int64("bytes", n))
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d exemplars (%d bytes) to %s\n", store.Len(), n, snapshotFlags.out)
	return nil
}
