// engine/internal/scrape/reveal.go
package scrape

import (
	"log"
	"time"

	"outreach-engine/internal/browser"
)

var replySelectors = []string{
	"button.reply-button",
	"button[data-href*='/reply/']",
	"a.reply-button",
	"a[href*='/reply/']",
}

var revealSelectors = []string{
	"button.reply-option-header",
	"button[class*='reply-email']",
	"div[class*='reply-email']",
}

const (
	revealPollCycles   = 15
	revealPollInterval = 2 * time.Second
)

// Revealer walks the reply widget on an already-loaded detail page:
// click reply, wait out any challenge, click the email option once it
// appears, then read the revealed container. Every step is best-effort;
// a dead end returns whatever was gathered so far.
type Revealer struct {
	Session *browser.Session
	Defense *browser.Defense
	Loader  *browser.Loader

	Sleep func(time.Duration)
}

func (r *Revealer) sleep(t time.Duration) {
	if r.Sleep != nil {
		r.Sleep(t)
		return
	}
	time.Sleep(t)
}

// clickFirst JS-clicks the first element matching any selector; the
// overlay widget swallows native clicks intermittently.
func (r *Revealer) clickFirst(selectors []string) bool {
	for _, sel := range selectors {
		has, el, err := r.Session.Page().Has(sel)
		if err != nil || !has {
			continue
		}
		if _, err := el.Eval(`() => this.click()`); err != nil {
			continue
		}
		return true
	}
	return false
}

// Reveal runs the flow for link (the page must already be loaded) and
// returns whatever contact info surfaced.
func (r *Revealer) Reveal(link string) EmailInfo {
	info := NewEmailInfo()

	if !r.clickFirst(replySelectors) {
		return info
	}

	// A challenge right after the reply click is common; reload and
	// retry the click once after it clears.
	if r.Defense != nil && r.Defense.Check() {
		if err := r.Loader.Load(link, browser.ModeDetail); err != nil {
			log.Printf("[reveal] reload after challenge: %v", err)
			return info
		}
		if !r.clickFirst(replySelectors) {
			return info
		}
	}

	clicked := false
	for i := 0; i < revealPollCycles; i++ {
		if r.clickFirst(revealSelectors) {
			clicked = true
			break
		}
		r.sleep(revealPollInterval)
		if r.Defense != nil {
			r.Defense.Check()
		}
	}
	if !clicked {
		return info
	}

	html, err := r.Session.Page().HTML()
	if err != nil {
		log.Printf("[reveal] snapshot: %v", err)
		return info
	}
	return ParseEmailContainer(html)
}
