package qfx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yurifrl/qfxu/pkg/models"
)

const (
	recordStart = "<STMTTRN>"
	recordEnd   = "</STMTTRN>"
)

// Dialect selects how a tag's value is terminated. Chase-style exports end
// values at the line break, BofA-style exports carry explicit closing tags.
type Dialect string

const (
	DialectEOL    Dialect = "eol"
	DialectClosed Dialect = "closed"
)

func ParseDialect(s string) (Dialect, error) {
	switch Dialect(strings.ToLower(s)) {
	case DialectEOL:
		return DialectEOL, nil
	case DialectClosed:
		return DialectClosed, nil
	default:
		return "", fmt.Errorf("unknown dialect %q (want %q or %q)", s, DialectEOL, DialectClosed)
	}
}

// Scanner locates transaction records and tag values in raw statement
// text. It never modifies the text it scans, so offsets stay valid for
// in-place rewriting.
type Scanner struct {
	dialect Dialect
	logger  *log.Logger
}

func NewScanner(dialect Dialect, logger *log.Logger) *Scanner {
	return &Scanner{
		dialect: dialect,
		logger:  logger,
	}
}

// Records scans doc left to right and returns every complete transaction
// record, markers inclusive, in document order. A start marker with no
// closing marker is dropped, as is a stray closing marker. Re-scanning the
// same document yields the same records.
func (s *Scanner) Records(doc string) []models.Record {
	var records []models.Record
	pos := 0
	for {
		i := strings.Index(doc[pos:], recordStart)
		if i < 0 {
			break
		}
		start := pos + i
		j := strings.Index(doc[start+len(recordStart):], recordEnd)
		if j < 0 {
			s.logger.Warn("unterminated record, skipping fragment", "offset", start)
			break
		}
		end := start + len(recordStart) + j + len(recordEnd)
		records = append(records, models.Record{Raw: doc[start:end], Start: start, End: end})
		pos = end
	}
	return records
}

// NameFields returns every occurrence of the payee name field within one
// record's text. A well-formed record has exactly one, but zero or several
// are tolerated.
func (s *Scanner) NameFields(record string) []models.NameField {
	return s.fields(record, "NAME")
}

// Field returns the trimmed value of the first occurrence of tag in the
// record, or "" when the tag is absent.
func (s *Scanner) Field(record, tag string) string {
	fields := s.fields(record, tag)
	if len(fields) == 0 {
		return ""
	}
	return fields[0].Value
}

func (s *Scanner) fields(record, tag string) []models.NameField {
	open := "<" + tag + ">"
	var fields []models.NameField
	pos := 0
	for {
		i := strings.Index(record[pos:], open)
		if i < 0 {
			break
		}
		start := pos + i + len(open)
		end := s.valueEnd(record, start, tag)
		// Shrink to the trimmed span so a rewrite preserves surrounding
		// whitespace byte for byte.
		vStart, vEnd := start, end
		for vStart < vEnd && isSpace(record[vStart]) {
			vStart++
		}
		for vEnd > vStart && isSpace(record[vEnd-1]) {
			vEnd--
		}
		fields = append(fields, models.NameField{
			Start: vStart,
			End:   vEnd,
			Value: record[vStart:vEnd],
		})
		pos = end
	}
	return fields
}

// valueEnd finds where a tag's value stops: at the closing tag in the
// closed dialect, otherwise at the end of the line. The closing-tag search
// never crosses a line break, so a value missing its closing tag falls
// back to the line end instead of swallowing later field lines.
func (s *Scanner) valueEnd(record string, start int, tag string) int {
	lineEnd := len(record)
	for k := start; k < len(record); k++ {
		if record[k] == '\n' || record[k] == '\r' {
			lineEnd = k
			break
		}
	}
	if s.dialect == DialectClosed {
		if j := strings.Index(record[start:lineEnd], "</"+tag+">"); j >= 0 {
			return start + j
		}
	}
	return lineEnd
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

// Transactions pulls the exportable fields of every record in doc. Records
// with an unparseable amount are skipped.
func (s *Scanner) Transactions(doc string) []*models.Transaction {
	var txs []*models.Transaction
	for _, rec := range s.Records(doc) {
		rawAmount := s.Field(rec.Raw, "TRNAMT")
		amount, err := strconv.ParseFloat(rawAmount, 64)
		if err != nil {
			s.logger.Debug("skipping record with bad amount", "amount", rawAmount, "error", err)
			continue
		}
		txs = append(txs, models.NewTransaction(
			formatDate(s.Field(rec.Raw, "DTPOSTED")),
			s.Field(rec.Raw, "NAME"),
			s.Field(rec.Raw, "MEMO"),
			amount,
		))
	}
	return txs
}

// formatDate converts an OFX timestamp (YYYYMMDDHHMMSS[.XXX][TZ]) to
// YYYY-MM-DD. Values too short to carry a date pass through unchanged.
func formatDate(ofx string) string {
	if len(ofx) < 8 {
		return ofx
	}
	return ofx[0:4] + "-" + ofx[4:6] + "-" + ofx[6:8]
}
