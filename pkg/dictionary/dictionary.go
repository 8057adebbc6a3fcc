package dictionary

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yurifrl/qfxu/pkg/fileio"
)

// header written at the top of the persisted dictionary. Any header row is
// accepted on load.
var header = []string{"Normalized Name", "Variations"}

// Store maps canonical payee names to the statement-name variations known
// to belong to them, with a lowercased reverse index for O(1) resolution.
// The store is owned by a single run; it is not safe for concurrent use.
type Store struct {
	entries     map[string][]string // canonical -> variations, display case
	toCanonical map[string]string   // lowercased variation -> canonical
	fuzzyMinLen int
	logger      *log.Logger
}

// New returns an empty store. fuzzyMinLen is the minimum length either
// side of a fuzzy comparison must reach before it can match.
func New(fuzzyMinLen int, logger *log.Logger) *Store {
	return &Store{
		entries:     make(map[string][]string),
		toCanonical: make(map[string]string),
		fuzzyMinLen: fuzzyMinLen,
		logger:      logger,
	}
}

// Load reads the dictionary CSV at path. A missing file is not an error:
// the store simply starts empty. Rows without a canonical name or without
// any variation are skipped.
func (s *Store) Load(path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		s.logger.Debug("dictionary not found, starting empty", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read dictionary: %w", err)
	}

	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		canonical := strings.TrimSpace(row[0])
		var variations []string
		for _, cell := range row[1:] {
			if v := strings.TrimSpace(cell); v != "" {
				variations = append(variations, v)
			}
		}
		if canonical == "" || len(variations) == 0 {
			continue
		}
		for _, v := range variations {
			s.add(canonical, v)
		}
	}
	s.logger.Debug("dictionary loaded", "path", path, "entries", len(s.entries))
	return nil
}

// Resolve looks the trimmed name up in the variation index and returns the
// canonical name in its stored casing.
func (s *Store) Resolve(name string) (string, bool) {
	canonical, ok := s.toCanonical[strings.ToLower(strings.TrimSpace(name))]
	return canonical, ok
}

// AddVariation records name as a known variation of canonical.
func (s *Store) AddVariation(canonical, name string) {
	s.add(canonical, strings.TrimSpace(name))
}

// MatchFuzzy tests the name against every known variation by
// case-insensitive substring containment in either direction. On a hit the
// name itself is absorbed as a new variation so future runs resolve it
// exactly. Both the name and the candidate variation must reach the
// configured minimum length, which keeps short strings from gluing
// unrelated merchants together.
func (s *Store) MatchFuzzy(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < s.fuzzyMinLen {
		return "", false
	}
	lower := strings.ToLower(trimmed)
	for _, canonical := range s.sortedCanonicals() {
		for _, variation := range s.entries[canonical] {
			if len(variation) < s.fuzzyMinLen {
				continue
			}
			vLower := strings.ToLower(variation)
			if strings.Contains(vLower, lower) || strings.Contains(lower, vLower) {
				s.add(canonical, trimmed)
				return canonical, true
			}
		}
	}
	return "", false
}

// Len reports the number of canonical entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Variations returns the recorded variations of canonical in insertion
// order.
func (s *Store) Variations(canonical string) []string {
	return s.entries[canonical]
}

// add registers one variation under canonical. When another entry already
// claims the variation the later mapping wins, which is surfaced as a
// warning rather than silently absorbed.
func (s *Store) add(canonical, variation string) {
	key := strings.ToLower(variation)
	if prev, ok := s.toCanonical[key]; ok {
		if prev == canonical {
			return
		}
		s.logger.Warn("variation mapped to two canonical names, later mapping wins",
			"variation", variation, "previous", prev, "canonical", canonical)
	}
	s.entries[canonical] = appendUnique(s.entries[canonical], variation)
	s.toCanonical[key] = canonical
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if strings.EqualFold(existing, v) {
			return list
		}
	}
	return append(list, v)
}

func (s *Store) sortedCanonicals() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Write renders the dictionary as CSV, one row per canonical entry, sorted
// by canonical name ascending with variations in insertion order.
func (s *Store) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, canonical := range s.sortedCanonicals() {
		row := append([]string{canonical}, s.entries[canonical]...)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Persist writes the full dictionary to path, replacing it atomically.
// The persisted file is the single source of truth after each run.
func (s *Store) Persist(path string) error {
	if err := fileio.WriteAtomic(path, s.Write); err != nil {
		return fmt.Errorf("failed to persist dictionary: %w", err)
	}
	s.logger.Debug("dictionary persisted", "path", path, "entries", len(s.entries))
	return nil
}
