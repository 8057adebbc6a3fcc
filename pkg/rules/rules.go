package rules

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Rule maps a merchant-name pattern to its canonical payee. Patterns are
// matched case-insensitively and anchored at the start of the name.
type Rule struct {
	Pattern   string `yaml:"pattern"`
	Canonical string `yaml:"canonical"`
}

// File is the YAML shape of a rules file:
//
//	rules:
//	  - pattern: 'amazon\.com\*.*'
//	    canonical: Amazon
type File struct {
	Rules []Rule `yaml:"rules"`
}

// Set is an ordered rule list. The first matching rule wins, so more
// specific patterns belong earlier.
type Set struct {
	rules []compiled
}

type compiled struct {
	re        *regexp.Regexp
	canonical string
}

// Default returns the built-in rules for merchants whose statement names
// carry per-transaction noise.
func Default() *Set {
	set, err := Compile([]Rule{
		{Pattern: `amazon\.com\*.*`, Canonical: "Amazon"},
		{Pattern: `amzn mktp us\*.*`, Canonical: "Amazon"},
		{Pattern: `barnes &amp; noble #\d+`, Canonical: "Barnes & Noble"},
		{Pattern: `target\.com  \*.*`, Canonical: "Target"},
		{Pattern: `target\s+\d+.*`, Canonical: "Target"},
	})
	if err != nil {
		panic(err) // built-in patterns must compile
	}
	return set
}

// LoadFile reads a YAML rules file and compiles it.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rules yaml: %w", err)
	}
	return Compile(f.Rules)
}

// Compile builds a Set, anchoring every pattern at the start of the input
// and making it case-insensitive.
func Compile(rules []Rule) (*Set, error) {
	set := &Set{}
	for _, r := range rules {
		re, err := regexp.Compile(`(?i)^(?:` + r.Pattern + `)`)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", r.Pattern, err)
		}
		set.rules = append(set.rules, compiled{re: re, canonical: r.Canonical})
	}
	return set, nil
}

// Match returns the canonical name of the first rule matching name.
func (s *Set) Match(name string) (string, bool) {
	for _, r := range s.rules {
		if r.re.MatchString(name) {
			return r.canonical, true
		}
	}
	return "", false
}

// Len reports the number of rules in the set.
func (s *Set) Len() int {
	return len(s.rules)
}
