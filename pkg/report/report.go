package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/yurifrl/qfxu/pkg/fileio"
)

var header = []string{"Suggested Normalized Name", "Original Name"}

// Reporter accumulates names that fell through to the default normalizer,
// paired with their suggested canonical form, for later human review and
// reconciliation into the dictionary.
type Reporter struct {
	entries map[entry]struct{}
}

type entry struct {
	suggested string
	original  string
}

func New() *Reporter {
	return &Reporter{entries: make(map[entry]struct{})}
}

// Record adds one (suggested, original) pair. Duplicates collapse, so a
// name seen in many records yields a single row.
func (r *Reporter) Record(suggested, original string) {
	r.entries[entry{suggested: suggested, original: original}] = struct{}{}
}

// Len reports the number of distinct pairs.
func (r *Reporter) Len() int {
	return len(r.entries)
}

// Pairs returns the recorded pairs sorted by (suggested, original).
func (r *Reporter) Pairs() [][2]string {
	pairs := make([][2]string, 0, len(r.entries))
	for e := range r.entries {
		pairs = append(pairs, [2]string{e.suggested, e.original})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}

// Write renders the report as CSV.
func (r *Reporter) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, p := range r.Pairs() {
		if err := cw.Write([]string{p[0], p[1]}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Persist writes the report to path, replacing it atomically.
func (r *Reporter) Persist(path string) error {
	if err := fileio.WriteAtomic(path, r.Write); err != nil {
		return fmt.Errorf("failed to persist unmatched report: %w", err)
	}
	return nil
}
