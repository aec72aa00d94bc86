package mailer

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/emersion/go-sasl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeSubject(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", "Interested in Video Editor", "Interested in Video Editor"},
		{"crlf collapsed", "Line one\r\nLine two", "Line one Line two"},
		{"newline runs", "a\n\n\nb", "a b"},
		{"empty", "", "No Subject"},
		{"whitespace only", " \r\n ", "No Subject"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeSubject(tt.in))
		})
	}
}

func TestCompose(t *testing.T) {
	msg, err := Compose("me@example.com", "you@example.com", "Hello", "Body text here.\n")
	require.NoError(t, err)

	s := string(msg)
	assert.Contains(t, s, "From: <me@example.com>")
	assert.Contains(t, s, "To: <you@example.com>")
	assert.Contains(t, s, "Subject: Hello")
	assert.Contains(t, s, "Body text here.")
}

func TestSendMailUsesInjectedTransport(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg string

	m := &Mailer{
		Host:     "smtp.example.com",
		Username: "me@example.com",
		Password: func() (string, error) { return "hunter2", nil },
		Send: func(addr string, a sasl.Client, from string, to []string, r io.Reader) error {
			b, _ := io.ReadAll(r)
			gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(b)
			return nil
		},
	}

	require.NoError(t, m.SendMail("you@example.com", "Subject\r\nInjected: gotcha", "hello"))

	// Port defaults to implicit TLS; From falls back to the username.
	assert.Equal(t, "smtp.example.com:465", gotAddr)
	assert.Equal(t, "me@example.com", gotFrom)
	assert.Equal(t, []string{"you@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Subject Injected: gotcha")
	assert.False(t, strings.Contains(gotMsg, "\r\nInjected:"), "header injection must be neutralized")
}

func TestSendMailNoHost(t *testing.T) {
	m := &Mailer{Password: func() (string, error) { return "", nil }}
	assert.Error(t, m.SendMail("a@b.c", "s", "b"))
}

func TestSendMailPasswordError(t *testing.T) {
	m := &Mailer{
		Host:     "smtp.example.com",
		Username: "me@example.com",
		Password: func() (string, error) { return "", errors.New("keychain locked") },
		Send: func(string, sasl.Client, string, []string, io.Reader) error {
			t.Fatal("send must not run without a password")
			return nil
		},
	}
	err := m.SendMail("a@b.c", "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keychain locked")
}

func TestSendMailTransportError(t *testing.T) {
	m := &Mailer{
		Host:     "smtp.example.com",
		Username: "me@example.com",
		Password: func() (string, error) { return "p", nil },
		Send: func(string, sasl.Client, string, []string, io.Reader) error {
			return errors.New("connection refused")
		},
	}
	err := m.SendMail("a@b.c", "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send to a@b.c")
}
