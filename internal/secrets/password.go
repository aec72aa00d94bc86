package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"outreach-engine/internal/config"
)

const (
	// “Service” groups the app's secrets in the OS keychain.
	KeyringService = "outreach"
)

func GetPassword(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) != "" {
		pw, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}

	return "", errors.New("password not found in keychain")
}

func SetPassword(keyringAccount string, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, password)
}

func DeletePassword(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

// SMTPKeyringAccount names the outgoing-mail secret for cfg.
func SMTPKeyringAccount(cfg config.Config) string {
	return fmt.Sprintf(
		"outreach:smtp:%s@%s",
		cfg.Mail.Username,
		cfg.Mail.SMTPHost,
	)
}

// IMAPKeyringAccount names the replies-inbox secret for cfg.
func IMAPKeyringAccount(cfg config.Config) string {
	return fmt.Sprintf(
		"outreach:imap:%s@%s",
		cfg.Replies.Username,
		cfg.Replies.IMAPHost,
	)
}
