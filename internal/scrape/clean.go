// engine/internal/scrape/clean.go
package scrape

import (
	"strings"

	"outreach-engine/internal/domain"
)

// NormalizeTitle strips non-ASCII runes (emoji padding is rampant),
// collapses whitespace and lowercases, for duplicate comparison only.
// Stored titles keep their original form.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return strings.ToLower(strings.Join(strings.Fields(b.String()), " "))
}

// Clean drops duplicate listings (same normalized title, first one
// wins) and re-applies the blacklist over the normalized title and the
// original title. Idempotent.
func Clean(ls []domain.Listing, blacklist []string) []domain.Listing {
	seen := map[string]bool{}
	var out []domain.Listing
	for _, l := range ls {
		norm := NormalizeTitle(l.Title)
		if seen[norm] {
			continue
		}
		seen[norm] = true

		if _, hit := BlacklistHit(norm, blacklist); hit {
			continue
		}
		if _, hit := BlacklistHit(l.Title, blacklist); hit {
			continue
		}
		out = append(out, l)
	}
	return out
}
