package provider

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// CredentialsFile is the file name under the qsearch config directory.
const CredentialsFile = "credentials.yaml"

// Account is a stored remote account.
type Account struct {
	Token string `yaml:"token"`
	URL   string `yaml:"url,omitempty"`
}

// DefaultCredentialsPath returns $XDG_CONFIG_HOME/qsearch/credentials.yaml
// (or the platform equivalent).
func DefaultCredentialsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "qsearch", CredentialsFile), nil
}

// LoadAccount reads the account stored at path. A missing file yields an
// error wrapping os.ErrNotExist.
func LoadAccount(path string) (Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Account{}, fmt.Errorf("read account: %w", err)
	}
	var acct Account
	if err := yaml.Unmarshal(data, &acct); err != nil {
		return Account{}, fmt.Errorf("parse account %s: %w", path, err)
	}
	return acct, nil
}

// SaveAccount writes acct to path atomically, readable by the owner only.
func SaveAccount(path string, acct Account) error {
	if acct.Token == "" {
		return errors.New("refusing to save an account without a token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(acct); err != nil {
		return fmt.Errorf("encode account: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode account: %w", err)
	}

	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write account: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("restrict account file: %w", err)
	}
	return nil
}

// ResolveToken applies the token precedence: explicit, then the account
// stored at credentialsPath. The stored URL is returned alongside even when
// the token is explicit, so a saved account still carries the service
// address. An unreadable file does not block an explicit token.
func ResolveToken(explicit, credentialsPath string) (token, url string, err error) {
	if explicit != "" {
		if acct, err := LoadAccount(credentialsPath); err == nil {
			return explicit, acct.URL, nil
		}
		return explicit, "", nil
	}
	acct, err := LoadAccount(credentialsPath)
	if errors.Is(err, os.ErrNotExist) {
		return "", "", NewMissingTokenError(credentialsPath)
	}
	if err != nil {
		return "", "", err
	}
	if acct.Token == "" {
		return "", "", NewMissingTokenError(credentialsPath)
	}
	return acct.Token, acct.URL, nil
}

// Redact shortens a token for display.
func Redact(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
