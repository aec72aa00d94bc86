// engine/internal/browser/defense.go
package browser

import (
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// blockIndicators are the phrases the site serves when it throttles or
// challenges a client. Matched case-insensitively.
var blockIndicators = []string{
	"IP has been automatically blocked",
	"please solve the CAPTCHA below",
	"your connection has been limited",
	"detected unusual activity",
}

// captchaTokens in the page source mean a challenge is still up.
var captchaTokens = []string{
	"captcha", "robot", "human verification", "prove you're human",
}

// BlockIndicator reports the first throttle/challenge phrase present in
// the page source.
func BlockIndicator(html string) (string, bool) {
	lower := strings.ToLower(html)
	for _, ind := range blockIndicators {
		if strings.Contains(lower, strings.ToLower(ind)) {
			return ind, true
		}
	}
	return "", false
}

// CaptchaMarkersGone reports whether no challenge widget remains: no
// canvas, no recaptcha response input, no captcha iframe, and none of
// the challenge tokens in the source.
func CaptchaMarkersGone(html string) bool {
	lower := strings.ToLower(html)
	for _, tok := range captchaTokens {
		if strings.Contains(lower, tok) {
			return false
		}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	if doc.Find("canvas").Length() > 0 {
		return false
	}
	if doc.Find("#g-recaptcha-response").Length() > 0 {
		return false
	}
	if doc.Find("iframe[src*='recaptcha'], iframe[src*='captcha']").Length() > 0 {
		return false
	}
	return true
}

// Defense watches loaded pages for throttle/challenge responses and
// babysits the session until an operator clears them. Never fatal: a
// timed-out wait just lets the pipeline continue.
type Defense struct {
	Session *Session

	MaxWait  time.Duration // default 5m
	Interval time.Duration // default 5s

	// Injectable for tests.
	Snapshot func() (string, error)
	Sleep    func(time.Duration)
	Alert    func()
	Notify   func(event string)
}

func (d *Defense) snapshot() (string, error) {
	if d.Snapshot != nil {
		return d.Snapshot()
	}
	return d.Session.Page().HTML()
}

func (d *Defense) sleep(t time.Duration) {
	if d.Sleep != nil {
		d.Sleep(t)
		return
	}
	time.Sleep(t)
}

func (d *Defense) alert() {
	if d.Alert != nil {
		d.Alert()
		return
	}
	// Terminal bell; the headed window is the real signal.
	log.Printf("[defense] CAPTCHA detected, solve it in the browser window\a")
}

func (d *Defense) notify(event string) {
	if d.Notify != nil {
		d.Notify(event)
	}
}

// Check inspects the current page and, when a challenge is up,
// escalates to a headed window, alerts the operator and waits for the
// markers to clear. Reports whether a challenge was seen.
func (d *Defense) Check() bool {
	html, err := d.snapshot()
	if err != nil {
		return false
	}
	ind, hit := BlockIndicator(html)
	if !hit {
		return false
	}
	log.Printf("[defense] block indicator: %q", ind)
	d.notify("captcha-waiting")

	if strings.Contains(strings.ToLower(ind), "captcha") && d.Session != nil && d.Session.Headless {
		url := d.Session.CurrentURL()
		if err := d.Session.Escalate(url); err != nil {
			log.Printf("[defense] escalate: %v", err)
		}
	}

	d.alert()
	if d.waitForSolution() {
		log.Printf("[defense] challenge cleared")
	} else {
		log.Printf("[defense] wait timed out, continuing anyway")
	}
	d.notify("captcha-cleared")
	return true
}

func (d *Defense) waitForSolution() bool {
	maxWait := d.MaxWait
	if maxWait <= 0 {
		maxWait = 5 * time.Minute
	}
	interval := d.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	for waited := time.Duration(0); waited < maxWait; waited += interval {
		html, err := d.snapshot()
		if err == nil && CaptchaMarkersGone(html) {
			return true
		}
		d.sleep(interval)
	}
	return false
}
