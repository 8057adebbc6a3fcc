package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/yurifrl/qfxu/pkg/config"
	"github.com/yurifrl/qfxu/pkg/service"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "qfxu",
	Short: "QFX statement utilities",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [flags] <statement.qfx>",
	Short: "Rewrite payee names to their canonical form",
	Long: `Rewrite the payee name of every transaction record using the
dictionary of known variations, falling back to pattern rules, fuzzy
matching against prior variations, and title-case normalization. The
dictionary and the unmatched-names report are rewritten after each run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newProcessor(cmd)
		if err != nil {
			return err
		}
		return p.Normalize(args[0])
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <statement.qfx>",
	Short: "Convert a BofA-style statement to the Chase-style dialect",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newProcessor(cmd)
		if err != nil {
			return err
		}
		return p.Convert(args[0])
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [flags] <statement.qfx>",
	Short: "Export normalized transactions as CSV for the ledger importer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newProcessor(cmd)
		if err != nil {
			return err
		}
		return p.Export(args[0])
	},
}

func newProcessor(cmd *cobra.Command) (*service.Processor, error) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "qfxu",
		Level:           level,
	})

	cfg, err := config.Build(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if verbose {
		fmt.Fprintln(os.Stderr, pp.Sprint(cfg))
	}
	return service.NewProcessor(cfg, logger), nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output path (default derives from the input name)")
	rootCmd.PersistentFlags().String("dialect", "eol", "Name field dialect: eol or closed")
	rootCmd.PersistentFlags().String("dictionary", "dictionary.csv", "Dictionary CSV path")
	rootCmd.PersistentFlags().String("unmatched", "unmatched.csv", "Unmatched report CSV path")
	rootCmd.PersistentFlags().String("rules", "", "YAML pattern rules file (default: built-in rules)")
	rootCmd.PersistentFlags().Int("fuzzy-min-length", 5, "Minimum length for fuzzy variation matching")

	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
