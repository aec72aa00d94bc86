package browser

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBlockIndicator(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
		hit  bool
	}{
		{"ip block", "<html>This IP has been automatically blocked</html>", "IP has been automatically blocked", true},
		{"captcha", "<html>Please solve the CAPTCHA below to continue</html>", "please solve the CAPTCHA below", true},
		{"rate limit", "<html>your CONNECTION has been LIMITED</html>", "your connection has been limited", true},
		{"unusual activity", "<html>we detected unusual activity from you</html>", "detected unusual activity", true},
		{"clean page", "<html><body>Video editor wanted</body></html>", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := BlockIndicator(tt.html)
			assert.Equal(t, tt.hit, hit)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCaptchaMarkersGone(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"clean page", "<html><body><p>posting</p></body></html>", true},
		{"token in source", "<html><body>complete the captcha</body></html>", false},
		{"robot token", "<html><body>are you a robot?</body></html>", false},
		{"canvas widget", "<html><body><canvas></canvas></body></html>", false},
		{"recaptcha input", `<html><body><textarea id="g-recaptcha-response"></textarea></body></html>`, false},
		// The iframe src carries "captcha", so the token check already fails it.
		{"challenge iframe", `<html><body><iframe src="https://example.com/recaptcha/frame"></iframe></body></html>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CaptchaMarkersGone(tt.html))
		})
	}
}

func TestDefenseCheckNoChallenge(t *testing.T) {
	d := &Defense{
		Snapshot: func() (string, error) { return "<html><body>fine</body></html>", nil },
	}
	assert.False(t, d.Check())
}

func TestDefenseCheckSnapshotError(t *testing.T) {
	d := &Defense{
		Snapshot: func() (string, error) { return "", errors.New("gone") },
	}
	assert.False(t, d.Check())
}

func TestDefenseCheckWaitsForClear(t *testing.T) {
	pages := []string{
		"<html>please solve the CAPTCHA below</html>", // initial check
		"<html>still a captcha here</html>",           // first wait poll
		"<html><body>posting is back</body></html>",   // cleared
	}
	i := 0
	var events []string
	alerted := false

	d := &Defense{
		MaxWait:  30 * time.Second,
		Interval: 5 * time.Second,
		Snapshot: func() (string, error) {
			html := pages[i]
			if i < len(pages)-1 {
				i++
			}
			return html, nil
		},
		Sleep:  func(time.Duration) {},
		Alert:  func() { alerted = true },
		Notify: func(evt string) { events = append(events, evt) },
	}

	assert.True(t, d.Check())
	assert.True(t, alerted)
	assert.Equal(t, []string{"captcha-waiting", "captcha-cleared"}, events)
}

func TestDefenseCheckWaitTimeout(t *testing.T) {
	slept := 0
	d := &Defense{
		MaxWait:  10 * time.Second,
		Interval: 5 * time.Second,
		Snapshot: func() (string, error) { return "<html>captcha forever</html>", nil },
		Sleep:    func(time.Duration) { slept++ },
		Alert:    func() {},
		Notify:   func(string) {},
	}

	// Still reports the challenge even though the wait gave up.
	assert.True(t, d.Check())
	assert.Equal(t, 2, slept)
}
