// engine/internal/scrape/discover.go
package scrape

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"outreach-engine/internal/domain"
)

// The board has shipped two generations of search markup; both are
// tried, old style first.
var candidateSelectors = []string{"div.result-info", "div.cl-search-result"}

var titleSelectors = []string{
	"a.cl-app-anchor.cl-search-anchor.posting-title",
	"a.posting-title",
}

var dateSelectors = []string{"span[title]", "time.posted-date", "time.result-date"}

// CityFromURL takes the first label of the host, e.g. "newyork" from
// https://newyork.example.org/search/jjj.
func CityFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	host := u.Hostname()
	if i := strings.Index(host, "."); i > 0 {
		return host[:i]
	}
	return host
}

// ParseCandidates extracts every listing on a search results page.
// Keyword and blacklist filtering is the caller's job. today is used
// when no posting date can be read.
func ParseCandidates(html, city string, today time.Time) []domain.Listing {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var nodes *goquery.Selection
	for _, sel := range candidateSelectors {
		nodes = doc.Find(sel)
		if nodes.Length() > 0 {
			break
		}
	}
	if nodes == nil || nodes.Length() == 0 {
		return nil
	}

	fallbackDate := today.Format("2006-01-02")

	var out []domain.Listing
	nodes.Each(func(_ int, node *goquery.Selection) {
		var anchor *goquery.Selection
		for _, sel := range titleSelectors {
			a := node.Find(sel).First()
			if a.Length() > 0 {
				anchor = a
				break
			}
		}
		if anchor == nil {
			return
		}

		title := strings.TrimSpace(anchor.Text())
		if title == "" {
			title = strings.TrimSpace(anchor.Find("span.label").First().Text())
		}
		if title == "" {
			return
		}

		link, _ := anchor.Attr("href")
		if link == "" {
			return
		}

		postDate := ""
		for _, sel := range dateSelectors {
			d := node.Find(sel).First()
			if d.Length() == 0 {
				continue
			}
			if t, ok := d.Attr("title"); ok && strings.TrimSpace(t) != "" {
				postDate = strings.TrimSpace(t)
				break
			}
			if t := strings.TrimSpace(d.Text()); t != "" {
				postDate = t
				break
			}
		}
		if postDate == "" {
			postDate = fallbackDate
		}

		out = append(out, domain.Listing{
			City:     city,
			Title:    title,
			Link:     link,
			PostDate: postDate,
		})
	})
	return out
}

// FilterCandidates keeps candidates matching a keyword and clear of the
// blacklist.
func FilterCandidates(ls []domain.Listing, keywords, blacklist []string) []domain.Listing {
	var out []domain.Listing
	for _, l := range ls {
		if !HasKeyword(l.Title, keywords) {
			continue
		}
		if _, hit := BlacklistHit(l.Title, blacklist); hit {
			continue
		}
		out = append(out, l)
	}
	return out
}
