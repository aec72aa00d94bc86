// engine/internal/outreach/cleaner.go
package outreach

import (
	"strings"
	"time"
)

// CleanText strips non-ASCII runes and collapses runs of whitespace.
// Listing titles and bodies arrive full of emoji and odd spacing that
// confuse the model.
func CleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// jsDateLayout matches the first 24 characters of a JavaScript
// Date.toString(), e.g. "Mon Apr 14 2025 10:03:00".
const jsDateLayout = "Mon Jan 02 2006 15:04:05"

// NormalizeDate converts a JS-style timestamp to YYYY-MM-DD; anything
// unparseable comes back trimmed but otherwise untouched.
func NormalizeDate(s string) string {
	head := s
	if len(head) > 24 {
		head = head[:24]
	}
	if t, err := time.Parse(jsDateLayout, head); err == nil {
		return t.Format("2006-01-02")
	}
	return strings.TrimSpace(s)
}

// Request is one generation job.
type Request struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PostDate    string `json:"post_date"`
	Link        string `json:"link"`
	City        string `json:"city"`
	Persona     string `json:"persona"`
}

// Clean returns a copy with text fields cleaned and the date
// normalized. Link and persona pass through untouched.
func (r Request) Clean() Request {
	return Request{
		Title:       CleanText(r.Title),
		Description: CleanText(r.Description),
		PostDate:    NormalizeDate(r.PostDate),
		Link:        r.Link,
		City:        CleanText(r.City),
		Persona:     r.Persona,
	}
}
