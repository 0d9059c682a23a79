package iconclass

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/culthera/enrich/internal/model"
)

// maxKeywords caps the number of terms fed into the prompt and the
// search seeding stage.
const maxKeywords = 20

// wordPattern splits free text into word tokens, keeping German umlauts
// and hyphenated compounds together.
var wordPattern = regexp.MustCompile(`[A-Za-zÄÖÜäöüß\-]+`)

// ExtractKeywords derives a compact, deterministic set of salient terms
// from the object's title, description and existing subject hints.
// Missing or empty fields contribute nothing; the result is lowercased,
// deduplicated, sorted and capped at maxKeywords.
func ExtractKeywords(obj model.Object) []string {
	var parts []string
	if obj.Title != "" {
		parts = append(parts, obj.Title)
	}
	if obj.Description != "" {
		parts = append(parts, obj.Description)
	}
	parts = append(parts, obj.Subject...)

	seen := make(map[string]bool)
	var terms []string
	for _, word := range wordPattern.FindAllString(strings.Join(parts, " "), -1) {
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		term := strings.ToLower(word)
		if !seen[term] {
			seen[term] = true
			terms = append(terms, term)
		}
	}

	sort.Strings(terms)
	if len(terms) > maxKeywords {
		terms = terms[:maxKeywords]
	}
	return terms
}
