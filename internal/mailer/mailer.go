// engine/internal/mailer/mailer.go
package mailer

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

var crlfRe = regexp.MustCompile(`[\r\n]+`)

// SanitizeSubject strips header-breaking characters; an empty subject
// becomes a placeholder.
func SanitizeSubject(s string) string {
	s = strings.TrimSpace(crlfRe.ReplaceAllString(s, " "))
	if s == "" {
		return "No Subject"
	}
	return s
}

// Mailer delivers outreach over SMTP with implicit TLS. The account
// password comes from the OS keychain via the Password hook.
type Mailer struct {
	Host     string
	Port     int
	Username string
	From     string

	Password func() (string, error)

	// Injectable transport for tests; defaults to smtp.SendMailTLS.
	Send func(addr string, a sasl.Client, from string, to []string, r io.Reader) error
}

func (m *Mailer) send(addr string, a sasl.Client, from string, to []string, r io.Reader) error {
	if m.Send != nil {
		return m.Send(addr, a, from, to, r)
	}
	return smtp.SendMailTLS(addr, a, from, to, r)
}

// Compose builds a plain-text RFC 5322 message.
func Compose(from, to, subject, body string) ([]byte, error) {
	var buf bytes.Buffer

	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Address: from}})
	h.SetAddressList("To", []*mail.Address{{Address: to}})
	h.SetSubject(subject)

	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, body); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SendMail delivers one message.
func (m *Mailer) SendMail(to, subject, body string) error {
	if m.Host == "" {
		return fmt.Errorf("smtp host not configured")
	}
	port := m.Port
	if port == 0 {
		port = 465
	}
	from := m.From
	if from == "" {
		from = m.Username
	}

	pass, err := m.Password()
	if err != nil {
		return fmt.Errorf("smtp password: %w", err)
	}

	subject = SanitizeSubject(subject)
	msg, err := Compose(from, to, subject, body)
	if err != nil {
		return fmt.Errorf("compose: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", m.Host, port)
	auth := sasl.NewPlainClient("", m.Username, pass)
	if err := m.send(addr, auth, from, []string{to}, bytes.NewReader(msg)); err != nil {
		return fmt.Errorf("send to %s: %w", to, err)
	}
	log.Printf("[mailer] sent %q to %s", subject, to)
	return nil
}
