package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trainData = `# outcome a0 a1 a2
e 3 1 0
r 0 3 2
r 2 1 0
r 2 1 2
r 3 1 1
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Flag values and their changed state outlive Execute.
	for _, c := range append(rootCmd.Commands(), rootCmd) {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestClassifyCommand(t *testing.T) {
	train := writeFile(t, "train.txt", trainData)
	test := writeFile(t, "test.txt", "r 3 1 2\n")

	out, err := execute(t, "classify", "--train", train, "--test", test, "--explain", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "3 1 2")
	assert.Contains(t, out, "r=1.0000 (5)")
	assert.Contains(t, out, "1 / 1")
	assert.Contains(t, out, "Item 1 analogical set")
}

func TestClassifyCommand_Config(t *testing.T) {
	train := writeFile(t, "train.txt", trainData)
	test := writeFile(t, "test.txt", "r 3 1 2\n")
	config := writeFile(t, "analogy.toml", "homogeneity = \"classic\"\n")

	out, err := execute(t, "classify", "--config", config, "--train", train, "--test", test)
	require.NoError(t, err)
	assert.Contains(t, out, "r=0.6923 (9)")
	assert.Contains(t, out, "e=0.3077 (4)")
}

func TestClassifyCommand_UnknownValueInSchema(t *testing.T) {
	train := writeFile(t, "train.txt", trainData)
	test := writeFile(t, "test.txt", "r 3 1 7\n")
	schema := writeFile(t, "schema.yaml", `attributes:
  - name: onset
    values: ["0", "1", "2", "3"]
  - name: nucleus
    values: ["0", "1", "2", "3"]
  - name: coda
    values: ["0", "1", "2", "3"]
`)

	_, err := execute(t, "classify", "--train", train, "--test", test, "--schema", schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test data")
}

func TestLOOCommand(t *testing.T) {
	train := writeFile(t, "train.txt", "A 0 0 0\nA 0 0 1\nB 1 1 1\n")

	out, err := execute(t, "loo", "--train", train)
	require.NoError(t, err)
	assert.Contains(t, out, "accuracy: 2 / 3")
	assert.Contains(t, out, "unclassified: 0")
}

func TestSnapshotCommand(t *testing.T) {
	train := writeFile(t, "train.txt", trainData)
	test := writeFile(t, "test.txt", "r 3 1 2\n")
	snapshot := filepath.Join(t.TempDir(), "train.amx")

	out, err := execute(t, "snapshot", "--train", train, "--out", snapshot)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 5 exemplars")

	out, err = execute(t, "classify", "--store", snapshot, "--test", test)
	require.NoError(t, err)
	assert.Contains(t, out, "r=1.0000 (5)")

	out, err = execute(t, "loo", "--store", snapshot)
	require.NoError(t, err)
	assert.Contains(t, out, "accuracy:")
}

func TestTrainingSourceFlags(t *testing.T) {
	train := writeFile(t, "train.txt", trainData)

	_, err := execute(t, "loo")
	assert.Error(t, err)

	_, err = execute(t, "loo", "--train", train, "--store", train)
	assert.Error(t, err)
}
