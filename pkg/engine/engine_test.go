package engine

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/yurifrl/qfxu/pkg/dictionary"
	"github.com/yurifrl/qfxu/pkg/qfx"
	"github.com/yurifrl/qfxu/pkg/report"
	"github.com/yurifrl/qfxu/pkg/rules"
)

type fixture struct {
	engine   *Engine
	store    *dictionary.Store
	reporter *report.Reporter
}

func newFixture(t *testing.T, ruleSet *rules.Set) *fixture {
	t.Helper()
	logger := log.New(io.Discard)
	store := dictionary.New(5, logger)
	reporter := report.New()
	if ruleSet == nil {
		ruleSet = rules.Default()
	}
	scanner := qfx.NewScanner(qfx.DialectEOL, logger)
	return &fixture{
		engine:   New(scanner, store, ruleSet, reporter, logger),
		store:    store,
		reporter: reporter,
	}
}

func TestDictionaryOutranksPattern(t *testing.T) {
	fx := newFixture(t, nil)
	// The name also matches the built-in amazon pattern; the curated
	// dictionary entry must win.
	fx.store.AddVariation("Amazon Marketplace", "AMAZON.COM*XY99")

	if got := fx.engine.Resolve("AMAZON.COM*XY99"); got != "Amazon Marketplace" {
		t.Errorf("Resolve = %q, want the dictionary canonical", got)
	}
	if fx.reporter.Len() != 0 {
		t.Error("dictionary hit must not be reported as unmatched")
	}
}

func TestPatternMatchNotReported(t *testing.T) {
	fx := newFixture(t, nil)

	if got := fx.engine.Resolve("AMAZON.COM*XY99"); got != "Amazon" {
		t.Errorf("Resolve = %q, want Amazon", got)
	}
	if fx.reporter.Len() != 0 {
		t.Error("pattern hit must not be reported as unmatched")
	}
}

func TestFuzzyFallbackMutatesStore(t *testing.T) {
	empty, err := rules.Compile(nil)
	if err != nil {
		t.Fatal(err)
	}
	fx := newFixture(t, empty)
	fx.store.AddVariation("Whole Foods", "WHOLE FOODS MARKET #123")

	if got := fx.engine.Resolve("WHOLE FOODS MARKET #123 SEATTLE"); got != "Whole Foods" {
		t.Fatalf("Resolve = %q, want Whole Foods", got)
	}
	if canonical, ok := fx.store.Resolve("whole foods market #123 seattle"); !ok || canonical != "Whole Foods" {
		t.Error("fuzzy hit must be absorbed into the dictionary")
	}
	if fx.reporter.Len() != 0 {
		t.Error("fuzzy hit must not be reported as unmatched")
	}
}

func TestDefaultNormalizerReports(t *testing.T) {
	fx := newFixture(t, nil)

	if got := fx.engine.Resolve("the coffee shop"); got != "The Coffee Shop" {
		t.Errorf("Resolve = %q, want The Coffee Shop", got)
	}
	pairs := fx.reporter.Pairs()
	if len(pairs) != 1 || pairs[0] != [2]string{"The Coffee Shop", "the coffee shop"} {
		t.Errorf("unexpected report pairs: %v", pairs)
	}
}

func TestRewriteDocument(t *testing.T) {
	fx := newFixture(t, nil)
	fx.store.AddVariation("Amazon", "AMAZON.COM*AB12")

	doc := "header\n" +
		"<STMTTRN>\n<DTPOSTED>20240105\n<NAME>Amazon.com*AB12\n<MEMO>untouched\n</STMTTRN>\n" +
		"between\n" +
		"<STMTTRN>\n<NAME>the coffee shop\n</STMTTRN>\n" +
		"footer\n"

	got := fx.engine.Rewrite(doc)
	want := "header\n" +
		"<STMTTRN>\n<DTPOSTED>20240105\n<NAME>Amazon\n<MEMO>untouched\n</STMTTRN>\n" +
		"between\n" +
		"<STMTTRN>\n<NAME>The Coffee Shop\n</STMTTRN>\n" +
		"footer\n"
	if got != want {
		t.Errorf("Rewrite:\n%s\nwant:\n%s", got, want)
	}
}

func TestRewriteRoundTrip(t *testing.T) {
	fx := newFixture(t, nil)
	fx.store.AddVariation("Amazon", "Amazon")

	doc := "<STMTTRN>\n<NAME>Amazon\n<TRNAMT>-1.00\n</STMTTRN>\n"
	if got := fx.engine.Rewrite(doc); got != doc {
		t.Errorf("rewriting an already-canonical record changed it:\n%q\n%q", doc, got)
	}
}

func TestRewriteNoNameField(t *testing.T) {
	fx := newFixture(t, nil)

	doc := "<STMTTRN>\n<MEMO>no name here\n</STMTTRN>\n"
	if got := fx.engine.Rewrite(doc); got != doc {
		t.Errorf("record without a name field must pass through unchanged")
	}
	if fx.reporter.Len() != 0 {
		t.Error("no report entries expected")
	}
}

func TestRewriteIdenticalRecords(t *testing.T) {
	fx := newFixture(t, nil)
	fx.store.AddVariation("Amazon", "AMAZON.COM*AB12")

	record := "<STMTTRN>\n<NAME>AMAZON.COM*AB12\n</STMTTRN>"
	doc := record + "\n" + record + "\n"

	got := fx.engine.Rewrite(doc)
	if n := strings.Count(got, "<NAME>Amazon\n"); n != 2 {
		t.Errorf("expected both identical records rewritten, found %d", n)
	}
}

func TestRewriteDuplicateUnmatchedReportedOnce(t *testing.T) {
	fx := newFixture(t, nil)

	record := "<STMTTRN>\n<NAME>the coffee shop\n</STMTTRN>"
	doc := record + "\n" + record + "\n"

	fx.engine.Rewrite(doc)
	if fx.reporter.Len() != 1 {
		t.Errorf("expected a single report pair, got %d", fx.reporter.Len())
	}
}

func TestRewriteEmptyNameValue(t *testing.T) {
	fx := newFixture(t, nil)

	doc := "<STMTTRN>\n<NAME>\n</STMTTRN>\n"
	if got := fx.engine.Rewrite(doc); got != doc {
		t.Errorf("empty name value must pass through unchanged, got %q", got)
	}
	if fx.reporter.Len() != 0 {
		t.Error("empty name must not be reported")
	}
}
