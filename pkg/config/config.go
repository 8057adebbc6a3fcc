package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds the resolved settings for one run.
type Config struct {
	Dialect        string `mapstructure:"dialect"`
	Dictionary     string `mapstructure:"dictionary"`
	Unmatched      string `mapstructure:"unmatched"`
	Rules          string `mapstructure:"rules"`
	Output         string `mapstructure:"output"`
	FuzzyMinLength int    `mapstructure:"fuzzy_min_length"`
}

// flagBindings maps config keys to the command-line flag that overrides
// them.
var flagBindings = map[string]string{
	"dialect":          "dialect",
	"dictionary":       "dictionary",
	"unmatched":        "unmatched",
	"rules":            "rules",
	"output":           "output",
	"fuzzy_min_length": "fuzzy-min-length",
}

// Build layers configuration: defaults, then an optional YAML config file,
// then QFXU_* environment variables (a local .env is honored), then any
// flags set on the command line.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	_ = gotenv.Load() // .env is optional

	v := viper.New()
	v.SetDefault("dialect", "eol")
	v.SetDefault("dictionary", "dictionary.csv")
	v.SetDefault("unmatched", "unmatched.csv")
	v.SetDefault("rules", "")
	v.SetDefault("output", "")
	v.SetDefault("fuzzy_min_length", 5)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("QFXU")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.FuzzyMinLength < 1 {
		return nil, fmt.Errorf("fuzzy_min_length must be at least 1, got %d", cfg.FuzzyMinLength)
	}
	return &cfg, nil
}
