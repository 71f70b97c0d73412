package analogy

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// Config holds the classification options.
//
// Files are TOML; every key can be overridden from the environment with the
// ANALOGY_ prefix, e.g. ANALOGY_POINTERS=linear.
type Config struct {
	// Pointers selects quadratic or linear pointer counting.
	Pointers PointerKind `mapstructure:"pointers"`

	// Homogeneity selects the outcome or classic homogeneity rule.
	Homogeneity HomogeneityKind `mapstructure:"homogeneity"`

	// MissingData decides how the missing value compares.
	MissingData MissingDataKind `mapstructure:"missing_data"`

	// IgnoreUnknowns drops the attributes a query leaves missing.
	IgnoreUnknowns bool `mapstructure:"ignore_unknowns"`

	// ExcludeIdentical removes training exemplars identical to the query.
	ExcludeIdentical bool `mapstructure:"exclude_identical"`

	// Workers bounds the goroutines used for lattice counts and batches.
	Workers int `mapstructure:"workers"`

	// MaxPointerBits bounds pointer totals; 0 is unbounded.
	MaxPointerBits int `mapstructure:"max_pointer_bits"`

	// MissingMarker is the textual missing value used by the dataset reader.
	MissingMarker string `mapstructure:"missing_marker"`
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("pointers", string(QuadraticPointers))
	v.SetDefault("homogeneity", string(HomogeneityOutcome))
	v.SetDefault("missing_data", string(MissingVariable))
	v.SetDefault("ignore_unknowns", false)
	v.SetDefault("exclude_identical", false)
	v.SetDefault("workers", 4)
	v.SetDefault("max_pointer_bits", 0)
	v.SetDefault("missing_marker", DefaultMissingMarker)
}

// DefaultConfig returns the configuration SetDefaults describes.
func DefaultConfig() *Config {
	return &Config{
		Pointers:      QuadraticPointers,
		Homogeneity:   HomogeneityOutcome,
		MissingData:   MissingVariable,
		Workers:       4,
		MissingMarker: DefaultMissingMarker,
	}
}

// LoadConfig reads a TOML file on top of the defaults and the environment.
// An empty path loads defaults and environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("ANALOGY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return LoadConfigWithViper(v)
}

// LoadConfigWithViper loads configuration using a provided Viper instance
func LoadConfigWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the option values and clamps Workers to at least one.
func (c *Config) Validate() error {
	if !c.Pointers.valid() {
		return errors.WithHint(errors.Wrapf(ErrInvalidConfig, "pointers %q", c.Pointers),
			"use quadratic or linear")
	}
	if !c.Homogeneity.valid() {
		return errors.WithHint(errors.Wrapf(ErrInvalidConfig, "homogeneity %q", c.Homogeneity),
			"use outcome or classic")
	}
	if !c.MissingData.valid() {
		return errors.WithHint(errors.Wrapf(ErrInvalidConfig, "missing_data %q", c.MissingData),
			"use variable, match or mismatch")
	}
	if c.MaxPointerBits < 0 {
		return errors.Wrapf(ErrInvalidConfig, "max_pointer_bits %d is negative", c.MaxPointerBits)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.MissingMarker == "" {
		c.MissingMarker = DefaultMissingMarker
	}
	return nil
}
