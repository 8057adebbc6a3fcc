package qfx

import (
	"fmt"
	"strings"
)

const (
	tranListStart = "<BANKTRANLIST>"
	tranListEnd   = "</BANKTRANLIST>"
)

// noiseTags are the per-record tags BofA exports carry that the Chase
// dialect has no equivalent for.
var noiseTags = []string{"DTUSER", "MERCHCAT", "EXPCAT", "CARDNUM", "CARDNAME", "MCC"}

// Convert rewrites a BofA-style statement into the Chase-style dialect:
// header and footer around the transaction list are preserved, noise tags
// are dropped from each record and record lines lose their indentation.
func (s *Scanner) Convert(doc string) (string, error) {
	headerEnd := strings.Index(doc, tranListStart)
	footerStart := strings.LastIndex(doc, tranListEnd)
	if headerEnd < 0 || footerStart < headerEnd+len(tranListStart) {
		return "", fmt.Errorf("no %s section found", tranListStart)
	}

	header := strings.TrimSpace(doc[:headerEnd])
	footer := strings.TrimSpace(doc[footerStart+len(tranListEnd):])
	body := doc[headerEnd+len(tranListStart) : footerStart]

	var out strings.Builder
	out.WriteString(header)
	out.WriteString("\n" + tranListStart + "\n")
	for _, rec := range s.Records(body) {
		out.WriteString(convertRecord(rec.Raw))
	}
	out.WriteString(tranListEnd + "\n")
	out.WriteString(footer)
	out.WriteString("\n")
	return out.String(), nil
}

func convertRecord(record string) string {
	var lines []string
	for _, line := range strings.Split(record, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isNoiseTag(trimmed) {
			continue
		}
		lines = append(lines, trimmed)
	}
	return strings.Join(lines, "\n") + "\n"
}

func isNoiseTag(line string) bool {
	for _, tag := range noiseTags {
		if strings.HasPrefix(line, "<"+tag+">") {
			return true
		}
	}
	return false
}
