// engine/internal/browser/session.go
package browser

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
)

// userAgents is the rotation pool; each session picks one at random.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.107 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.2 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:90.0) Gecko/20100101 Firefox/90.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36",
}

func randomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// Session owns one live browser: launcher, connection, the single tab
// the pipeline drives, and the scratch profile dir backing it.
type Session struct {
	Headless bool

	launcher   *launcher.Launcher
	browser    *rod.Browser
	page       *rod.Page
	profileDir string
	userAgent  string
}

// NewSession launches a browser and verifies it answers.
func NewSession(headless bool) (*Session, error) {
	s := &Session{Headless: headless}
	if err := s.start(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) start() error {
	s.profileDir = filepath.Join(os.TempDir(), "outreach-profile-"+uuid.NewString())
	s.userAgent = randomUserAgent()

	l := launcher.New().
		Headless(s.Headless).
		NoSandbox(true).
		UserDataDir(s.profileDir).
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("disable-extensions").
		Set("disable-notifications").
		Set("window-size", "1920,1080")

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connect browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = b.Close()
		l.Kill()
		return fmt.Errorf("open tab: %w", err)
	}
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: s.userAgent}); err != nil {
		_ = b.Close()
		l.Kill()
		return fmt.Errorf("set user agent: %w", err)
	}

	s.launcher = l
	s.browser = b
	s.page = page
	log.Printf("[browser] session up headless=%v profile=%s", s.Headless, s.profileDir)
	return nil
}

// Page returns the tab the pipeline drives.
func (s *Session) Page() *rod.Page { return s.page }

// CurrentURL reports the tab's location, empty when unavailable.
func (s *Session) CurrentURL() string {
	if s.page == nil {
		return ""
	}
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Healthy probes the tab with a trivial eval.
func (s *Session) Healthy() bool {
	if s.page == nil {
		return false
	}
	_, err := s.page.Eval(`() => 1`)
	return err == nil
}

// Recreate tears the session down and launches a fresh one with a new
// profile and user agent.
func (s *Session) Recreate() error {
	s.Close()
	return s.start()
}

// Escalate relaunches the session headed and returns to url so an
// operator can interact with the page. No-op when already headed.
func (s *Session) Escalate(url string) error {
	if !s.Headless {
		return nil
	}
	s.Close()
	s.Headless = false
	if err := s.start(); err != nil {
		return err
	}
	if url == "" {
		return nil
	}
	if err := s.page.Navigate(url); err != nil {
		return fmt.Errorf("return to %s: %w", url, err)
	}
	return s.page.WaitLoad()
}

// Close shuts everything down and removes the scratch profile.
// Safe to call twice.
func (s *Session) Close() {
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			log.Printf("[browser] close: %v", err)
		}
		s.browser = nil
		s.page = nil
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher = nil
	}
	if s.profileDir != "" {
		if err := os.RemoveAll(s.profileDir); err != nil {
			log.Printf("[browser] remove profile: %v", err)
		}
		s.profileDir = ""
	}
}
