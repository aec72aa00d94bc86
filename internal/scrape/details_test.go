package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"outreach-engine/internal/domain"
)

func TestExtractDescription(t *testing.T) {
	tests := []struct {
		name, html, want string
	}{
		{
			"id selector",
			`<html><body><section id="postingbody">Edit wedding videos. Remote OK.</section></body></html>`,
			"Edit wedding videos. Remote OK.",
		},
		{
			"data-testid fallback",
			`<html><body><div data-testid="postingbody"> Cut trailers </div></body></html>`,
			"Cut trailers",
		},
		{
			"missing region",
			`<html><body><div class="other">hi</div></body></html>`,
			domain.DescriptionMissing,
		},
		{
			"empty region",
			`<html><body><div id="postingbody">   </div></body></html>`,
			domain.DescriptionMissing,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDescription(tt.html))
		})
	}
}

func TestClassifyRemote(t *testing.T) {
	remote := []string{"remote", "work from home"}
	nonRemote := []string{"on-site", "in person"}

	assert.Equal(t, domain.RemoteYes, ClassifyRemote("Fully REMOTE position", remote, nonRemote))
	assert.Equal(t, domain.RemoteNo, ClassifyRemote("Must work on-site daily", remote, nonRemote))
	assert.Equal(t, domain.RemoteUnknown, ClassifyRemote("Flexible schedule", remote, nonRemote))
	assert.Equal(t, domain.RemoteUnknown, ClassifyRemote("", remote, nonRemote))
	// Remote terms win when both buckets match.
	assert.Equal(t, domain.RemoteYes, ClassifyRemote("remote or on-site", remote, nonRemote))
}

func TestParseEmailContainerAnchorText(t *testing.T) {
	html := `<html><body><div class="reply-info">
	  <div class="reply-email-address"><a href="mailto:poster@example.com?subject=hi">poster@example.com</a></div>
	  <a class="webmail-gmail" href="https://mail.google.com/compose?to=poster@example.com">gmail</a>
	  <a class="webmail-yahoo" href="https://compose.mail.yahoo.com/?to=poster@example.com">yahoo</a>
	</div></body></html>`

	info := ParseEmailContainer(html)
	assert.Equal(t, "poster@example.com", info.Email)
	assert.Equal(t, "mailto:poster@example.com?subject=hi", info.DefaultMail)
	assert.Equal(t, "https://mail.google.com/compose?to=poster@example.com", info.Gmail)
	assert.Equal(t, "https://compose.mail.yahoo.com/?to=poster@example.com", info.Yahoo)
	assert.Empty(t, info.Outlook)
	assert.Empty(t, info.AOL)
}

func TestParseEmailContainerMailtoFallback(t *testing.T) {
	html := `<html><body><div class="reply-content-email">
	  <a href="mailto:hidden@example.com?subject=Job">Reply by email</a>
	</div></body></html>`

	info := ParseEmailContainer(html)
	assert.Equal(t, "hidden@example.com", info.Email)
	assert.Equal(t, "mailto:hidden@example.com?subject=Job", info.DefaultMail)
}

func TestParseEmailContainerNoContainer(t *testing.T) {
	info := ParseEmailContainer(`<html><body><p>nothing here</p></body></html>`)
	assert.Equal(t, domain.EmailUnavailable, info.Email)
	assert.Empty(t, info.DefaultMail)
}

func TestMailtoAddress(t *testing.T) {
	assert.Equal(t, "a@b.c", mailtoAddress("mailto:a@b.c"))
	assert.Equal(t, "a@b.c", mailtoAddress("mailto:a@b.c?subject=x&body=y"))
}
