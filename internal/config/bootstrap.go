package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// EnsureUserConfig copies the packaged default config into dataDir on
// first run and returns the user config path.
func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	return ensureCopied(dataDir, "config.yml", defaultPath)
}

// EnsurePersonas does the same for the outreach persona file.
func EnsurePersonas(dataDir string, defaultPath string) (string, error) {
	return ensureCopied(dataDir, "personas.yml", defaultPath)
}

func ensureCopied(dataDir, name, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, name)

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	// Copy defaultPath -> userPath
	src, err := os.Open(defaultPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(userPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return userPath, nil
}
