package engine

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yurifrl/qfxu/pkg/dictionary"
	"github.com/yurifrl/qfxu/pkg/normalizer"
	"github.com/yurifrl/qfxu/pkg/qfx"
	"github.com/yurifrl/qfxu/pkg/report"
	"github.com/yurifrl/qfxu/pkg/rules"
)

// Engine rewrites the payee name of every transaction record in a
// statement document to its canonical form. The dictionary store is the
// only mutable collaborator; everything else is stateless per name.
type Engine struct {
	scanner  *qfx.Scanner
	store    *dictionary.Store
	rules    *rules.Set
	reporter *report.Reporter
	logger   *log.Logger
}

func New(scanner *qfx.Scanner, store *dictionary.Store, ruleSet *rules.Set, reporter *report.Reporter, logger *log.Logger) *Engine {
	return &Engine{
		scanner:  scanner,
		store:    store,
		rules:    ruleSet,
		reporter: reporter,
		logger:   logger,
	}
}

// Rewrite returns the document with every record's name field replaced by
// its resolved canonical form. Reassembly is a single left-to-right pass
// keyed by record offsets, so two records with identical text cannot
// clobber each other and untouched bytes pass through verbatim.
func (e *Engine) Rewrite(doc string) string {
	var out strings.Builder
	out.Grow(len(doc))
	last := 0
	for _, rec := range e.scanner.Records(doc) {
		out.WriteString(doc[last:rec.Start])
		out.WriteString(e.rewriteRecord(rec.Raw))
		last = rec.End
	}
	out.WriteString(doc[last:])
	return out.String()
}

// rewriteRecord replaces each name field's value span, leaving every other
// byte of the record unchanged. Records without a name field pass through
// as-is.
func (e *Engine) rewriteRecord(record string) string {
	fields := e.scanner.NameFields(record)
	if len(fields) == 0 {
		return record
	}
	var out strings.Builder
	last := 0
	for _, f := range fields {
		out.WriteString(record[last:f.Start])
		if f.Value == "" {
			last = f.End
			continue
		}
		out.WriteString(e.Resolve(f.Value))
		last = f.End
	}
	out.WriteString(record[last:])
	return out.String()
}

// Resolve runs the resolution chain for one raw name. The order is strict:
// a curated dictionary entry always outranks a pattern rule, which
// outranks the fuzzy fallback. The default normalizer always succeeds and
// feeds the unmatched report.
func (e *Engine) Resolve(name string) string {
	if canonical, ok := e.store.Resolve(name); ok {
		e.logger.Debug("dictionary match", "name", name, "canonical", canonical)
		return canonical
	}
	if canonical, ok := e.rules.Match(name); ok {
		e.logger.Debug("pattern match", "name", name, "canonical", canonical)
		return canonical
	}
	if canonical, ok := e.store.MatchFuzzy(name); ok {
		e.logger.Info("fuzzy match, absorbed as new variation", "name", name, "canonical", canonical)
		return canonical
	}
	suggested := normalizer.Normalize(name)
	e.reporter.Record(suggested, name)
	e.logger.Debug("no match, using normalized form", "name", name, "suggested", suggested)
	return suggested
}
