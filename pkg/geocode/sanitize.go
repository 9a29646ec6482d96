package geocode

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// defaultDenylist holds generic administrative terms that never make a
// useful place name on their own. Matched as whole words,
// case-insensitively. The metro/country labels are included so a provider
// answering "Delhi" or "India" is treated as knowing nothing specific.
var defaultDenylist = []string{
	"district",
	"tehsil",
	"subdivision",
	"division",
	"ward",
	"zone",
	"municipal",
	"delhi",
	"ncr",
	"india",
}

// noisy suffixes stripped from otherwise-usable names.
var (
	suffixAffixes = []string{" Colony", " Block", " Sector"}
	phaseSuffixRe = regexp.MustCompile(`(?i)\s+phase\s+\d+$`)
)

// Sanitizer filters generic administrative noise out of provider names.
type Sanitizer struct {
	deny map[string]struct{}
}

// NewSanitizer builds a sanitizer with the default denylist plus any
// extra terms (e.g. the configured metro label).
func NewSanitizer(extra ...string) *Sanitizer {
	deny := make(map[string]struct{}, len(defaultDenylist)+len(extra))
	for _, term := range defaultDenylist {
		deny[strings.ToLower(term)] = struct{}{}
	}
	for _, term := range extra {
		if term != "" {
			deny[strings.ToLower(term)] = struct{}{}
		}
	}
	return &Sanitizer{deny: deny}
}

// Clean applies the per-string rules: denylist rejection, affix
// stripping, and a minimum length of 3 characters. Returns the cleaned
// name and whether anything usable survived.
func (s *Sanitizer) Clean(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}

	if s.containsGeneric(name) {
		return "", false
	}

	name = strings.TrimPrefix(name, "New ")
	for _, suffix := range suffixAffixes {
		name = strings.TrimSuffix(name, suffix)
	}
	name = phaseSuffixRe.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)

	if utf8.RuneCountInString(name) < 3 {
		return "", false
	}
	// Stripping may have exposed a generic term ("New Delhi" -> "Delhi")
	if s.containsGeneric(name) {
		return "", false
	}
	return name, true
}

// containsGeneric reports whether any whole word of name is denylisted.
func (s *Sanitizer) containsGeneric(name string) bool {
	for _, word := range strings.Fields(strings.ToLower(name)) {
		word = strings.Trim(word, ",.()-")
		if _, ok := s.deny[word]; ok {
			return true
		}
	}
	return false
}

// Pick selects the best name and area from a candidate. Field priority is
// locality over road over city over subdivision; the next lower-priority
// non-generic field becomes the area. ok is false when nothing survives.
func (s *Sanitizer) Pick(c Candidate) (name, area string, ok bool) {
	fields := []string{c.Locality, c.Road, c.City, c.Subdivision}

	nameIdx := -1
	for i, f := range fields {
		if f == "" {
			continue
		}
		if cleaned, usable := s.Clean(f); usable {
			name = cleaned
			nameIdx = i
			break
		}
	}
	if nameIdx == -1 {
		return "", "", false
	}

	for _, f := range fields[nameIdx+1:] {
		if f == "" {
			continue
		}
		cleaned, usable := s.Clean(f)
		if usable && cleaned != name {
			area = cleaned
			break
		}
	}

	return name, area, true
}
