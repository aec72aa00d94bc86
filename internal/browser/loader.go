// engine/internal/browser/loader.go
package browser

import (
	"fmt"
	"log"
	"time"
)

// Mode selects the readiness signal a load waits for.
type Mode int

const (
	// ModeSearch waits for the full document load event.
	ModeSearch Mode = iota
	// ModeDetail waits for the posting body region; a slow outer page
	// is tolerated once the region is present.
	ModeDetail
)

const (
	searchTimeout = 30 * time.Second
	detailTimeout = 15 * time.Second
	backoffBase   = 2 * time.Second
)

var detailReadySelectors = []string{
	"#postingbody",
	"section#postingbody",
	"div[data-testid='postingbody']",
}

// Loader drives page loads with retries and backoff, recreating the
// session when it has gone unresponsive.
type Loader struct {
	Session    *Session
	Defense    *Defense
	MaxRetries int // attempts per load, default 3

	// Injectable for tests.
	Attempt func(url string, mode Mode) error
	Sleep   func(time.Duration)
}

func (l *Loader) sleep(t time.Duration) {
	if l.Sleep != nil {
		l.Sleep(t)
		return
	}
	time.Sleep(t)
}

func (l *Loader) attempt(url string, mode Mode) error {
	if l.Attempt != nil {
		return l.Attempt(url, mode)
	}
	if !l.Session.Healthy() {
		log.Printf("[loader] session unresponsive, recreating")
		if err := l.Session.Recreate(); err != nil {
			return fmt.Errorf("recreate session: %w", err)
		}
	}

	switch mode {
	case ModeDetail:
		page := l.Session.Page().Timeout(detailTimeout)
		if err := page.Navigate(url); err != nil {
			return fmt.Errorf("navigate: %w", err)
		}
		loadErr := page.WaitLoad()
		for _, sel := range detailReadySelectors {
			if has, _, err := l.Session.Page().Has(sel); err == nil && has {
				return nil
			}
		}
		if loadErr != nil {
			return fmt.Errorf("wait load: %w", loadErr)
		}
		return nil
	default:
		page := l.Session.Page().Timeout(searchTimeout)
		if err := page.Navigate(url); err != nil {
			return fmt.Errorf("navigate: %w", err)
		}
		if err := page.WaitLoad(); err != nil {
			return fmt.Errorf("wait load: %w", err)
		}
		return nil
	}
}

// Load fetches url, retrying up to MaxRetries attempts with doubling
// backoff between them. After a successful load the defense handler
// inspects the page; a handled challenge does not fail the load.
func (l *Loader) Load(url string, mode Mode) error {
	if url == "" {
		return fmt.Errorf("empty url")
	}
	max := l.MaxRetries
	if max <= 0 {
		max = 3
	}

	var lastErr error
	for attempt := 0; attempt < max; attempt++ {
		lastErr = l.attempt(url, mode)
		if lastErr == nil {
			if l.Defense != nil {
				l.Defense.Check()
			}
			return nil
		}
		if attempt < max-1 {
			wait := backoffBase * time.Duration(1<<uint(attempt))
			log.Printf("[loader] attempt %d/%d for %s failed: %v (retrying in %s)", attempt+1, max, url, lastErr, wait)
			l.sleep(wait)
		}
	}
	return fmt.Errorf("load %s after %d attempts: %w", url, max, lastErr)
}
