package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wizenheimer/analogy"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
	jsonLogs   bool
}

// Populated by PersistentPreRunE for every subcommand.
var (
	logger *zap.Logger
	cfg    *analogy.Config
)

var rootCmd = &cobra.Command{
	Use:   "amclassify",
	Short: "Classify exemplar data with Analogical Modeling",
	Long:  "amclassify predicts outcomes of test items from a training file\nwith Skousen's Analogical Modeling and reports exact distributions.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		if logger, err = analogy.NewLogger(rootFlags.jsonLogs, rootFlags.logLevel); err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		if cfg, err = analogy.LoadConfig(rootFlags.configPath); err != nil {
			return err
		}
		logger.Debug("configuration loaded",
			zap.String("pointers", string(cfg.Pointers)),
			zap.String("homogeneity", string(cfg.Homogeneity)),
			zap.String("missing_data", string(cfg.MissingData)),
			zap.Int("workers", cfg.Workers))
		return nil
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configPath, "config", "", "TOML configuration file")
	f.StringVar(&rootFlags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	f.BoolVar(&rootFlags.jsonLogs, "json-logs", false, "Emit JSON logs")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(looCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.Version = version
}

func main() {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
