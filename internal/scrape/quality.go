package scrape

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// navPatterns flag text that opens with navigation chrome instead of
// article prose. Only the leading slice of the text is checked.
var navPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bmenu\b`),
	regexp.MustCompile(`home\s+about\s+contact`),
	regexp.MustCompile(`search\s+login\s+register`),
}

// QualityValidator applies the advisory quality heuristics to scraped body
// text. It decides nothing by itself; the coverage resolver chooses what to
// do with a rejection.
type QualityValidator struct {
	minLength      int
	minUniqueRatio float64
	prefixWindow   int
}

// NewQualityValidator creates a validator with the standard thresholds:
// at least 100 characters and a unique-word ratio of at least 0.3.
func NewQualityValidator() *QualityValidator {
	return &QualityValidator{
		minLength:      100,
		minUniqueRatio: 0.3,
		prefixWindow:   100,
	}
}

// Validate returns an error describing the first failed heuristic, or nil
// when the text looks like genuine article prose.
func (v *QualityValidator) Validate(text string) error {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < v.minLength {
		return eris.Errorf("content too short: %d chars", len(trimmed))
	}

	if ratio := uniqueWordRatio(trimmed); ratio < v.minUniqueRatio {
		return eris.Errorf("unique-word ratio %.2f below threshold", ratio)
	}

	prefix := strings.ToLower(trimmed)
	if len(prefix) > v.prefixWindow {
		prefix = prefix[:v.prefixWindow]
	}
	for _, p := range navPatterns {
		if p.MatchString(prefix) {
			return eris.Errorf("navigation chrome detected: %q", p.String())
		}
	}

	return nil
}

// uniqueWordRatio is unique words over total words, case-insensitive.
// Repeated boilerplate and navigation junk score low.
func uniqueWordRatio(text string) float64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}
	return float64(len(seen)) / float64(len(words))
}
