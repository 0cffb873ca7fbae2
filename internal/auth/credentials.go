package auth

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Credentials is the saved sign-in kept between runs.
type Credentials struct {
	AccessToken string    `toml:"access_token"`
	TokenType   string    `toml:"token_type"`
	Email       string    `toml:"email"`
	SavedAt     time.Time `toml:"saved_at"`
}

// Empty reports whether there is no usable token.
func (c Credentials) Empty() bool {
	return strings.TrimSpace(c.AccessToken) == ""
}

// LoadCredentials reads saved credentials. A missing or unreadable file
// yields empty credentials: the user simply has to sign in again.
func LoadCredentials(path string) (Credentials, error) {
	if strings.TrimSpace(path) == "" {
		return Credentials{}, fmt.Errorf("credentials path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, nil
		}
		return Credentials{}, fmt.Errorf("open credentials: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}

	var creds Credentials
	if err := toml.Unmarshal(bytes, &creds); err != nil {
		return Credentials{}, fmt.Errorf("parse credentials: %w", err)
	}
	creds.AccessToken = strings.TrimSpace(creds.AccessToken)
	return creds, nil
}

// SaveCredentials writes credentials with owner-only permissions, creating
// directories as needed.
func SaveCredentials(path string, creds Credentials) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("credentials path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	bytes, err := toml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, bytes, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}

// ClearCredentials removes the saved sign-in. A missing file is not an error.
func ClearCredentials(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
