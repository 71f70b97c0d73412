package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wizenheimer/analogy"
)

// readRecords parses a dataset file.
func readRecords(path string) ([]analogy.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	records, err := analogy.ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// loadSchema reads the YAML schema at path, or infers one from every record
// set when path is empty.
func loadSchema(path string, sets ...[]analogy.Record) (*analogy.Schema, error) {
	if path == "" {
		return analogy.InferRecordSchema(sets, analogy.WithMissingMarker(cfg.MissingMarker))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema: %w", err)
	}
	defer f.Close()
	return analogy.LoadSchemaYAML(f)
}

// buildStore encodes training records into an exemplar store.
func buildStore(schema *analogy.Schema, train []analogy.Record) (*analogy.ExemplarStore, error) {
	exemplars, err := analogy.EncodeRecords(train, schema)
	if err != nil {
		return nil, fmt.Errorf("training data: %w", err)
	}
	store, err := analogy.NewExemplarStore(schema, exemplars)
	if err != nil {
		return nil, fmt.Errorf("training data: %w", err)
	}
	return store, nil
}

// readStore loads a snapshot written by the snapshot command.
func readStore(path string) (*analogy.ExemplarStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer f.Close()
	store, err := analogy.ReadExemplarStore(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

// trainingStore returns the snapshot at storePath when set, and otherwise
// encodes the training file against the schema inferred from it and extra.
func trainingStore(storePath, trainPath, schemaPath string, extra ...[]analogy.Record) (*analogy.ExemplarStore, error) {
	if storePath != "" {
		return readStore(storePath)
	}
	if trainPath == "" {
		return nil, fmt.Errorf("either --train or --store is required")
	}
	train, err := readRecords(trainPath)
	if err != nil {
		return nil, err
	}
	schema, err := loadSchema(schemaPath, append([][]analogy.Record{train}, extra...)...)
	if err != nil {
		return nil, err
	}
	return buildStore(schema, train)
}

// newClassifier builds a classifier over store with the loaded configuration.
func newClassifier(store *analogy.ExemplarStore) (*analogy.Classifier, error) {
	logger.Debug("training data loaded",
		zap.Int("exemplars", store.Len()),
		zap.Int("attributes", store.Schema().NumAttributes()),
		zap.Strings("outcomes", store.OutcomeClasses()))
	return analogy.NewClassifier(store, cfg, analogy.WithLogger(logger))
}
