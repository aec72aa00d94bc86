// engine/internal/scrape/keywords.go
package scrape

import "strings"

// HasKeyword reports whether title matches any keyword: either the
// whole keyword as a case-insensitive substring, or any keyword
// component longer than 3 characters equal to a whole title word.
// Short components are ignored so "QA" or "IT" don't match everything.
func HasKeyword(title string, keywords []string) bool {
	if title == "" {
		return false
	}
	lower := strings.ToLower(title)

	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}

	words := strings.Fields(lower)
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[w] = true
	}
	for _, kw := range keywords {
		for _, part := range strings.Fields(strings.ToLower(kw)) {
			if len(part) > 3 && wordSet[part] {
				return true
			}
		}
	}
	return false
}

// BlacklistHit returns the first blacklist term found in text as a
// case-insensitive substring.
func BlacklistHit(text string, blacklist []string) (string, bool) {
	if text == "" {
		return "", false
	}
	lower := strings.ToLower(text)
	for _, term := range blacklist {
		if term == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(term)) {
			return term, true
		}
	}
	return "", false
}
