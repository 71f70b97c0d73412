/*
Package analogy provides an Analogical Modeling classifier for Go.

Analogical Modeling (Skousen, 1989) is an exemplar-based classifier. It keeps
every labeled exemplar and, for each query, reasons over all of them at once:
exemplars are grouped by which attributes they share with the query, groups
that never disagree about the outcome are kept as evidence, and the evidence is
weighted by exact integer pointer counts. Nothing is trained and nothing is
approximated; the result is an exact probability distribution over outcomes
together with the exemplars that produced it.

# Quick Start

	package main

	import (
	    "context"
	    "fmt"
	    "log"
	    "os"

	    "github.com/wizenheimer/analogy"
	)

	func main() {
	    f, err := os.Open("train.txt")
	    if err != nil {
	        log.Fatal(err)
	    }
	    defer f.Close()

	    ds, err := analogy.ReadDataset(f, nil)
	    if err != nil {
	        log.Fatal(err)
	    }
	    store, err := analogy.NewExemplarStore(ds.Schema, ds.Exemplars)
	    if err != nil {
	        log.Fatal(err)
	    }
	    clf, err := analogy.NewClassifier(store, nil)
	    if err != nil {
	        log.Fatal(err)
	    }

	    result, err := clf.NewClassification().
	        WithRawQuery("3", "1", "2").
	        Execute(context.Background())
	    if err != nil {
	        log.Fatal(err)
	    }
	    for _, s := range result.Scores {
	        fmt.Printf("%s %s %.4f\n", s.Class, s.Pointers, s.Float64())
	    }
	}

# Pipeline

Every classification runs the same stages, all scoped to the call:

ExemplarStore: the immutable training set, validated against a Schema when it
is built. Values are resolved to domain codes up front; the don't-care value is
a distinct tag, not a string.

PartitionExemplars: one pass over the exemplars computes each one's agreement
mask with the query and groups equal masks into subcontexts.

BuildLattice: finds the homogeneous supracontexts from the subcontext masks
alone and counts, exactly, how many of the 2^n lattice positions each one
occupies.

ComputePointers: spreads each homogeneous supracontext's weight over its
exemplars, quadratic by default.

Classifier: sums pointers per outcome and returns exact big.Rat probabilities,
the predicted outcome, ties, the analogical set and gang effects.

# Options

	cfg := analogy.DefaultConfig()
	cfg.Pointers = analogy.LinearPointers           // or QuadraticPointers
	cfg.Homogeneity = analogy.HomogeneityClassic    // or HomogeneityOutcome
	cfg.MissingData = analogy.MissingMatch          // or MissingVariable, MissingMismatch
	cfg.IgnoreUnknowns = true
	cfg.ExcludeIdentical = true

Configuration can also be loaded from TOML with LoadConfig, with ANALOGY_*
environment overrides.

# Snapshots

An ExemplarStore can be written once with WriteTo and loaded again with
ReadExemplarStore, schema included, so large training files are parsed and
validated only once.

# Errors

Errors wrap one of ErrSchemaMismatch, ErrNoAnalogy, ErrOverflow,
ErrInternalInconsistency or ErrInvalidConfig; test with errors.Is.
ErrNoAnalogy is an ordinary outcome: no supracontext was homogeneous.

# Concurrency

Stores and classifiers are safe for concurrent use. ClassifyBatch and
LeaveOneOut fan out over Config.Workers goroutines, and lattice counting is
parallel within a single classification.
*/
package analogy
