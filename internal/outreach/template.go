// engine/internal/outreach/template.go
package outreach

import (
	"fmt"
	"regexp"
	"strings"
)

// ReferenceMarker prefixes the posting link inside every generated
// email; the replies poller keys on it.
const ReferenceMarker = "Job Reference:"

var (
	emailBlockRe = regexp.MustCompile(`(?is)Subject:.*Reference:.*$`)

	selfRefRe      = regexp.MustCompile(`(?i)(as an AI|language model|I apologize|I am unable)`)
	instruction1Re = regexp.MustCompile(`(?i)you must write an email|write a job application email|specifically tailored|software developer writing`)
	instruction2Re = regexp.MustCompile(`(?i)keep.*?under \d+ words`)
	instruction3Re = regexp.MustCompile(`(?i)never mention puzzles|never add explanations`)
	trailer1Re     = regexp.MustCompile(`(?is)Remember to keep your email.*`)
	trailer2Re     = regexp.MustCompile(`(?is)This is an example of a job application email.*`)
	trailer3Re     = regexp.MustCompile(`(?is)The email is kept under.*`)
	bracketedRe    = regexp.MustCompile(`\[.*?\]`)
	blankRunsRe    = regexp.MustCompile(`\n{3,}`)

	subjectLineRe = regexp.MustCompile(`(?i)Subject:(.*)`)
	jobRefLineRe  = regexp.MustCompile(`(?i)Job Reference:[^\n]*`)

	greetingRe  = regexp.MustCompile(`(?i)^(Hey there|Hello|Hi|Dear|Best regards|Regards|Sincerely|Thank you)`)
	refParaRe   = regexp.MustCompile(`(?i)^Job Reference:`)
	signatureRe = regexp.MustCompile(`(?i)Best regards|Regards|Sincerely`)
)

// CleanGeneratedText strips everything models like to wrap around the
// actual email: self-references, echoed instructions, bracketed
// placeholders, trailing commentary.
func CleanGeneratedText(text string) string {
	if m := emailBlockRe.FindString(text); m != "" {
		text = strings.TrimSpace(m)
	}

	text = selfRefRe.ReplaceAllString(text, "")
	text = instruction1Re.ReplaceAllString(text, "")
	text = instruction2Re.ReplaceAllString(text, "")
	text = instruction3Re.ReplaceAllString(text, "")
	text = trailer1Re.ReplaceAllString(text, "")
	text = trailer2Re.ReplaceAllString(text, "")
	text = trailer3Re.ReplaceAllString(text, "")
	text = bracketedRe.ReplaceAllString(text, "")
	text = blankRunsRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// FallbackEmail is the deterministic email used when no model can be
// reached or its output is unusable.
func FallbackEmail(title, link, name string) string {
	if name == "" {
		name = "Abj"
	}
	return fmt.Sprintf(`Subject: Interested in %s

Hey there,

I came across your job posting for %s and I'm very interested in the position. The role aligns well with my skills and experience.

I'd love to discuss how I can contribute to your team. Please let me know if you'd like to connect.

Best regards,
%s

%s %s
`, title, title, name, ReferenceMarker, link)
}

func simpleTemplate(link, name string) string {
	return fmt.Sprintf(`Subject: Job Application

Hey there,

I saw your job posting and I'm interested in the position.

I'd love to discuss how my skills match your requirements.

Best regards,
%s

%s %s`, name, ReferenceMarker, link)
}

// EnforceTemplate cleans raw model output and guarantees the result
// carries the full structure: subject, greeting, signature and the
// reference marker pointing at link.
func EnforceTemplate(raw, link, name string) string {
	if name == "" {
		name = "Abj"
	}
	text := CleanGeneratedText(raw)

	if len(strings.TrimSpace(text)) < 20 {
		return simpleTemplate(link, name)
	}

	hasSubject := strings.Contains(text, "Subject:")
	hasGreeting := strings.Contains(text, "Hey there") || strings.Contains(text, "Hello") ||
		strings.Contains(text, "Hi ") || strings.Contains(text, "Dear")
	hasSignature := signatureRe.MatchString(text)
	hasRef := strings.Contains(text, ReferenceMarker)

	if hasSubject && hasGreeting && hasSignature && len(strings.Fields(text)) > 20 {
		if !hasRef {
			return text + "\n\n" + ReferenceMarker + " " + link
		}
		if !strings.Contains(text, ReferenceMarker+" "+link) {
			text = jobRefLineRe.ReplaceAllString(text, ReferenceMarker+" "+link)
		}
		return text
	}

	return reconstructEmail(text, link, name)
}

// reconstructEmail rebuilds a conforming email out of salvageable
// paragraphs.
func reconstructEmail(text, link, name string) string {
	subject := "Job Application"
	if m := subjectLineRe.FindStringSubmatch(text); m != nil {
		if s := strings.TrimSpace(m[1]); s != "" {
			subject = s
		}
	}
	text = subjectLineRe.ReplaceAllString(text, "")

	var content []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" || greetingRe.MatchString(p) || refParaRe.MatchString(p) {
			continue
		}
		if len(strings.Fields(p)) <= 3 {
			continue
		}
		content = append(content, p)
		if len(content) == 2 {
			break
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n\nHey there,\n\n", subject)
	if len(content) > 0 {
		for _, p := range content {
			b.WriteString(p + "\n\n")
		}
	} else {
		b.WriteString("I saw your job posting and I'm interested in applying.\n\n")
		b.WriteString("I'd love to discuss how my skills align with your requirements.\n\n")
	}
	fmt.Fprintf(&b, "Best regards,\n%s\n\n%s %s", name, ReferenceMarker, link)
	return b.String()
}

// ExtractSubject pulls the subject line (sanitized of header-breaking
// characters) and returns the body with that line removed, ready for
// SMTP delivery.
func ExtractSubject(email string) (subject, body string) {
	subject = "Job Application"
	if m := subjectLineRe.FindStringSubmatch(email); m != nil {
		s := strings.TrimSpace(m[1])
		s = strings.ReplaceAll(s, "\r", "")
		s = strings.ReplaceAll(s, "\n", "")
		if s != "" {
			subject = s
		}
	}
	body = subjectLineRe.ReplaceAllString(email, "")
	body = strings.TrimLeft(body, "\r\n")
	return subject, body
}
