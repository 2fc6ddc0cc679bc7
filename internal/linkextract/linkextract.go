// Package linkextract pulls usable URLs out of free-text profile fields
// (bios, blog fields) where links appear bare, punctuated, or schemeless.
package linkextract

import (
	"net/url"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`(?i)https?://[^\s)]+`)

const trailingPunct = ".,);]}>\"'"

// NormalizeURL trims a raw URL and prefixes https:// when no scheme is
// present. Strings that still do not parse to a host return "".
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	low := strings.ToLower(raw)
	if !strings.HasPrefix(low, "http://") && !strings.HasPrefix(low, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return raw
}

// URLsFromText extracts the distinct normalized http(s) URLs from text, in
// order of first appearance. Trailing sentence punctuation is stripped.
func URLsFromText(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, m := range urlPattern.FindAllString(text, -1) {
		nu := NormalizeURL(strings.TrimRight(m, trailingPunct))
		if nu == "" {
			continue
		}
		if _, ok := seen[nu]; ok {
			continue
		}
		seen[nu] = struct{}{}
		out = append(out, nu)
	}
	return out
}

// FirstLinkedIn returns the first LinkedIn URL found across the fields.
// Full URLs win; a bare "linkedin.com/..." fragment is picked up and
// normalized as a fallback.
func FirstLinkedIn(fields ...string) string {
	for _, field := range fields {
		if field == "" {
			continue
		}
		for _, u := range URLsFromText(field) {
			if strings.Contains(strings.ToLower(u), "linkedin.com") {
				return u
			}
		}
		s := strings.TrimSpace(field)
		low := strings.ToLower(s)
		if idx := strings.Index(low, "linkedin.com"); idx >= 0 {
			candidate := s[idx:]
			if sp := strings.IndexFunc(candidate, isSpace); sp >= 0 {
				candidate = candidate[:sp]
			}
			candidate = strings.TrimRight(strings.TrimSpace(candidate), trailingPunct)
			return NormalizeURL(candidate)
		}
	}
	return ""
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
