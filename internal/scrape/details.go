// engine/internal/scrape/details.go
package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"outreach-engine/internal/domain"
)

var descriptionSelectors = []string{
	"#postingbody",
	"section#postingbody",
	"div[data-testid='postingbody']",
}

// ExtractDescription pulls the posting body out of a detail page.
// Returns the missing-description sentinel when no known region exists.
func ExtractDescription(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.DescriptionMissing
	}
	for _, sel := range descriptionSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(node.Text()); text != "" {
			return text
		}
	}
	return domain.DescriptionMissing
}

// ClassifyRemote buckets a description. Remote terms are checked first,
// so text matching both buckets classifies Remote.
func ClassifyRemote(desc string, remoteTerms, nonRemoteTerms []string) string {
	if desc == "" {
		return domain.RemoteUnknown
	}
	lower := strings.ToLower(desc)
	for _, t := range remoteTerms {
		if t != "" && strings.Contains(lower, strings.ToLower(t)) {
			return domain.RemoteYes
		}
	}
	for _, t := range nonRemoteTerms {
		if t != "" && strings.Contains(lower, strings.ToLower(t)) {
			return domain.RemoteNo
		}
	}
	return domain.RemoteUnknown
}

// EmailInfo carries whatever the reveal flow managed to surface.
// Fields keep their zero/sentinel values on failure.
type EmailInfo struct {
	Email       string
	DefaultMail string
	Gmail       string
	Yahoo       string
	Outlook     string
	AOL         string
}

// NewEmailInfo returns the all-sentinels value.
func NewEmailInfo() EmailInfo {
	return EmailInfo{Email: domain.EmailUnavailable}
}

var emailContainerSelectors = []string{
	"div.reply-content-email",
	"div[class*='reply-email']",
	"div.reply-info",
}

var emailAddressSelectors = []string{
	"div.reply-email-address a",
	"a[href^='mailto:']",
	"a[class*='email']",
}

// ParseEmailContainer reads the revealed reply widget out of a page
// snapshot: the address (anchor text preferred, mailto href fallback),
// the full mailto URL and any webmail deep links.
func ParseEmailContainer(html string) EmailInfo {
	info := NewEmailInfo()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return info
	}

	var container *goquery.Selection
	for _, sel := range emailContainerSelectors {
		c := doc.Find(sel).First()
		if c.Length() > 0 {
			container = c
			break
		}
	}
	if container == nil {
		return info
	}

	var anchor *goquery.Selection
	for _, sel := range emailAddressSelectors {
		a := container.Find(sel).First()
		if a.Length() > 0 {
			anchor = a
			break
		}
	}

	if anchor != nil {
		email := strings.TrimSpace(anchor.Text())
		href, _ := anchor.Attr("href")

		if (email == "" || !strings.Contains(email, "@")) && strings.HasPrefix(href, "mailto:") {
			email = mailtoAddress(href)
		}
		if email != "" {
			info.Email = email
		}
		if strings.HasPrefix(href, "mailto:") {
			info.DefaultMail = href
			if !strings.Contains(info.Email, "@") {
				info.Email = mailtoAddress(href)
			}
		}
	}

	container.Find("a[class*='webmail']").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return
		}
		class, _ := a.Attr("class")
		switch {
		case strings.Contains(class, "gmail"):
			info.Gmail = href
		case strings.Contains(class, "yahoo"):
			info.Yahoo = href
		case strings.Contains(class, "outlook"):
			info.Outlook = href
		case strings.Contains(class, "aol"):
			info.AOL = href
		}
	})

	return info
}

func mailtoAddress(href string) string {
	addr := strings.TrimPrefix(href, "mailto:")
	if i := strings.Index(addr, "?"); i >= 0 {
		addr = addr[:i]
	}
	return addr
}
