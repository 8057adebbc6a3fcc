package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yurifrl/qfxu/pkg/config"
	"github.com/yurifrl/qfxu/pkg/csv"
	"github.com/yurifrl/qfxu/pkg/dictionary"
	"github.com/yurifrl/qfxu/pkg/engine"
	"github.com/yurifrl/qfxu/pkg/fileio"
	"github.com/yurifrl/qfxu/pkg/models"
	"github.com/yurifrl/qfxu/pkg/qfx"
	"github.com/yurifrl/qfxu/pkg/report"
	"github.com/yurifrl/qfxu/pkg/rules"
)

// Processor wires the scanner, dictionary, rules, reporter and engine
// together for whole-file runs. One Processor run owns the dictionary file
// exclusively; concurrent runs against the same dictionary must be
// serialized by the caller.
type Processor struct {
	cfg    *config.Config
	logger *log.Logger
}

func NewProcessor(cfg *config.Config, logger *log.Logger) *Processor {
	return &Processor{
		cfg:    cfg,
		logger: logger,
	}
}

// Normalize reads the statement at inputPath, rewrites every payee name to
// its canonical form and writes the statement, the updated dictionary and
// the unmatched report. Each file is replaced atomically, so an
// interrupted run leaves all three targets as they were.
func (p *Processor) Normalize(inputPath string) error {
	scanner, store, ruleSet, err := p.buildChain()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read statement: %w", err)
	}

	reporter := report.New()
	eng := engine.New(scanner, store, ruleSet, reporter, p.logger)

	p.logger.Info("processing statement", "input", inputPath, "dialect", p.cfg.Dialect)
	rewritten := eng.Rewrite(string(data))

	outPath := p.outputPath(inputPath, "-normalized")
	if err := fileio.WriteAtomic(outPath, func(w io.Writer) error {
		_, werr := io.WriteString(w, rewritten)
		return werr
	}); err != nil {
		return fmt.Errorf("failed to write statement: %w", err)
	}
	if err := store.Persist(p.cfg.Dictionary); err != nil {
		return err
	}
	if err := reporter.Persist(p.cfg.Unmatched); err != nil {
		return err
	}

	p.logger.Info("statement normalized",
		"output", outPath, "entries", store.Len(), "unmatched", reporter.Len())
	return nil
}

// Convert rewrites a statement from the BofA dialect into the Chase
// dialect consumed by the normalization pipeline.
func (p *Processor) Convert(inputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read statement: %w", err)
	}

	scanner := qfx.NewScanner(qfx.DialectEOL, p.logger)
	converted, err := scanner.Convert(string(data))
	if err != nil {
		return fmt.Errorf("failed to convert statement: %w", err)
	}

	outPath := p.outputPath(inputPath, "-converted")
	if err := fileio.WriteAtomic(outPath, func(w io.Writer) error {
		_, werr := io.WriteString(w, converted)
		return werr
	}); err != nil {
		return fmt.Errorf("failed to write statement: %w", err)
	}

	p.logger.Info("statement converted", "output", outPath)
	return nil
}

// Export writes the statement's transactions as Date,Payee,Memo,Amount CSV
// rows with canonical payees, the contract surface toward the external
// ledger importer. Output goes to stdout unless an output path is set.
// The dictionary and unmatched report are left untouched.
func (p *Processor) Export(inputPath string) error {
	scanner, store, ruleSet, err := p.buildChain()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read statement: %w", err)
	}

	eng := engine.New(scanner, store, ruleSet, report.New(), p.logger)

	var txs []*models.Transaction
	for _, tx := range scanner.Transactions(string(data)) {
		payee := tx.Payee()
		if payee != "" {
			payee = eng.Resolve(payee)
		}
		txs = append(txs, models.NewTransaction(tx.Date(), payee, tx.Memo(), tx.Amount()))
	}
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date() < txs[j].Date()
	})

	out := csv.Create(txs, nil)
	if p.cfg.Output == "" {
		fmt.Print(string(out))
		return nil
	}
	if err := fileio.WriteAtomic(p.cfg.Output, func(w io.Writer) error {
		_, werr := w.Write(out)
		return werr
	}); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	p.logger.Info("transactions exported", "output", p.cfg.Output, "count", len(txs))
	return nil
}

// buildChain constructs the collaborators every run needs: the dialect
// scanner, the loaded dictionary and the pattern rules.
func (p *Processor) buildChain() (*qfx.Scanner, *dictionary.Store, *rules.Set, error) {
	dialect, err := qfx.ParseDialect(p.cfg.Dialect)
	if err != nil {
		return nil, nil, nil, err
	}

	store := dictionary.New(p.cfg.FuzzyMinLength, p.logger)
	if err := store.Load(p.cfg.Dictionary); err != nil {
		return nil, nil, nil, err
	}

	ruleSet := rules.Default()
	if p.cfg.Rules != "" {
		if ruleSet, err = rules.LoadFile(p.cfg.Rules); err != nil {
			return nil, nil, nil, err
		}
	}

	return qfx.NewScanner(dialect, p.logger), store, ruleSet, nil
}

// outputPath derives the output file for inputPath: the configured output
// when set, otherwise the input name with a suffix before its extension.
func (p *Processor) outputPath(inputPath, suffix string) string {
	if p.cfg.Output != "" {
		return p.cfg.Output
	}
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + suffix + ext
}
