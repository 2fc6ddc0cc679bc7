package geocode

import (
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Hint classifies what the normalizer did with a raw location string.
type Hint string

const (
	HintEmpty   Hint = "EMPTY"   // no usable input
	HintSkip    Hint = "SKIP"    // recognized as non-geocodable
	HintMapped  Hint = "MAPPED"  // resolved through the alias table
	HintCleaned Hint = "CLEANED" // cleaned free text, ready to geocode
)

// Normalized is the deterministic output of Normalize. Never mutated.
type Normalized struct {
	Clean string
	Hint  Hint
}

// sentinels are location strings that are inherently non-geocodable.
var sentinels = map[string]struct{}{
	"":              {},
	"remote":        {},
	"worldwide":     {},
	"earth":         {},
	"somewhere":     {},
	"internet":      {},
	"everywhere":    {},
	"global":        {},
	"online":        {},
	"anywhere":      {},
	"planet earth":  {},
	"the internet":  {},
	"github":        {},
	"home":          {},
	"distributed":   {},
	"international": {},
	"europe":        {},
	"eu":            {},
	"european union": {},
	"emea":          {},
	"apac":          {},
}

// IsSentinel reports whether the lowercased, trimmed value is non-geocodable.
func IsSentinel(s string) bool {
	_, ok := sentinels[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// cleanRules are applied in order before the alias lookup. The order
// matters: bloc qualifiers are stripped before remote variants collapse.
var cleanRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)\b(european\s+union|eu)\b`), ""},
	{regexp.MustCompile(`(?i)\b(remote\s*only|fully\s*remote|remote)\b`), "remote"},
	{regexp.MustCompile("[\u200b\u200c\u200d\ufeff]"), ""}, // zero-width and BOM characters
}

var (
	spaceRun     = regexp.MustCompile(`\s+`)
	trailingBloc = regexp.MustCompile(`(?i),\s*(european union|eu)\s*$`)
)

// Normalize cleans a raw owner/author location string. It is pure and
// idempotent: feeding a CLEANED or MAPPED output back in yields the same
// cleaned text.
func Normalize(raw string) Normalized {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Normalized{Hint: HintEmpty}
	}
	s = norm.NFC.String(s)

	low := strings.ToLower(s)
	if _, ok := sentinels[low]; ok {
		return Normalized{Clean: low, Hint: HintSkip}
	}

	for _, rule := range cleanRules {
		s = rule.re.ReplaceAllString(s, rule.repl)
	}
	s = spaceRun.ReplaceAllString(s, " ")
	// Space belongs in the cutset so interleaved tails like ", -," strip fully.
	s = strings.Trim(s, " ,;|-")
	if s == "" {
		return Normalized{Hint: HintEmpty}
	}

	// A string can become a sentinel only after cleaning ("Remote Only").
	low = strings.ToLower(s)
	if _, ok := sentinels[low]; ok {
		return Normalized{Clean: low, Hint: HintSkip}
	}

	if canonical, ok := aliases[low]; ok {
		return Normalized{Clean: canonical, Hint: HintMapped}
	}

	s = strings.TrimSpace(trailingBloc.ReplaceAllString(s, ""))
	return Normalized{Clean: s, Hint: HintCleaned}
}

// LoadAliases merges a YAML file of alias -> canonical expansion pairs into
// the built-in table. Keys are lowercased. Intended for dataset-specific
// short forms the built-in table does not carry.
func LoadAliases(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "geocode: read alias file %s", path)
	}
	var extra map[string]string
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return eris.Wrapf(err, "geocode: parse alias file %s", path)
	}
	for k, v := range extra {
		aliases[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return nil
}
