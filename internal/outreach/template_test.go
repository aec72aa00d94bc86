package outreach

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const wellFormed = `Subject: Interested in Video Editor

Hey there,

I came across your posting for a video editor and my five years of cutting branded content fit the role well.

I'd love to discuss the position further.

Best regards,
Abj

Job Reference: https://x/1`

func TestCleanGeneratedText(t *testing.T) {
	raw := "Sure! Here is the email you asked for:\n\n" + wellFormed
	got := CleanGeneratedText(raw)
	assert.True(t, strings.HasPrefix(got, "Subject:"))
	assert.NotContains(t, got, "Here is the email")
}

func TestCleanGeneratedTextStripsModelNoise(t *testing.T) {
	raw := "As an AI I wrote this [Your Name] keep it under 150 words\n\n\n\nbody text"
	got := CleanGeneratedText(raw)
	assert.NotContains(t, got, "As an AI")
	assert.NotContains(t, got, "[Your Name]")
	assert.NotContains(t, got, "under 150 words")
	assert.NotContains(t, got, "\n\n\n")
}

func TestFallbackEmail(t *testing.T) {
	got := FallbackEmail("Video Editor", "https://x/1", "")
	assert.Contains(t, got, "Subject: Interested in Video Editor")
	assert.Contains(t, got, "Hey there,")
	assert.Contains(t, got, "Best regards,\nAbj")
	assert.Contains(t, got, "Job Reference: https://x/1")
}

func TestEnforceTemplateKeepsGoodEmail(t *testing.T) {
	got := EnforceTemplate(wellFormed, "https://x/1", "Abj")
	assert.Equal(t, wellFormed, got)
}

func TestEnforceTemplateShortOutput(t *testing.T) {
	got := EnforceTemplate("ok", "https://x/1", "Abj")
	assert.Contains(t, got, "Subject: Job Application")
	assert.Contains(t, got, "Job Reference: https://x/1")
	assert.Contains(t, got, "Best regards,\nAbj")
}

func TestEnforceTemplateAppendsMissingReference(t *testing.T) {
	noRef := strings.Replace(wellFormed, "\n\nJob Reference: https://x/1", "", 1)
	got := EnforceTemplate(noRef, "https://x/9", "Abj")
	assert.True(t, strings.HasSuffix(got, "Job Reference: https://x/9"))
}

func TestEnforceTemplateFixesWrongReference(t *testing.T) {
	got := EnforceTemplate(wellFormed, "https://y/other", "Abj")
	assert.Contains(t, got, "Job Reference: https://y/other")
	assert.NotContains(t, got, "https://x/1")
}

func TestEnforceTemplateReconstructs(t *testing.T) {
	// Long enough to skip the simple template but missing structure.
	raw := `Subject: Video Editing Application

My five years of editing branded content and weddings make me a strong fit for this role.

Available to start immediately and comfortable with tight deadlines on short-form work.`

	got := EnforceTemplate(raw, "https://x/2", "Abj")
	assert.Contains(t, got, "Subject: Video Editing Application")
	assert.Contains(t, got, "Hey there,")
	assert.Contains(t, got, "five years of editing")
	assert.Contains(t, got, "Best regards,\nAbj")
	assert.True(t, strings.HasSuffix(got, "Job Reference: https://x/2"))
}

func TestReconstructEmailNoSalvageableContent(t *testing.T) {
	got := reconstructEmail("one two three", "https://x/3", "Abj")
	assert.Contains(t, got, "I saw your job posting and I'm interested in applying.")
	assert.Contains(t, got, "Job Reference: https://x/3")
}

func TestExtractSubject(t *testing.T) {
	subject, body := ExtractSubject(wellFormed)
	assert.Equal(t, "Interested in Video Editor", subject)
	assert.False(t, strings.Contains(body, "Subject:"))
	assert.True(t, strings.HasPrefix(body, "Hey there,"))

	subject, body = ExtractSubject("no subject line here")
	assert.Equal(t, "Job Application", subject)
	assert.Equal(t, "no subject line here", body)
}
