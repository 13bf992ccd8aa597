package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/AvengeMedia/automate/internal/errdefs"
)

// SkipKey is the sentinel a caller passes to leave an API key unset.
const SkipKey = "SKIP"

// InstallConfig is supplied once per run and never mutated afterwards.
type InstallConfig struct {
	InstallPath  string
	AnthropicKey string
	OpenAIKey    string
	OwnerName    string
}

// DefaultInstallPath returns ~/AutoMate.
func DefaultInstallPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return filepath.Join(home, "AutoMate")
}

// DefaultOwnerName falls back to the login name.
func DefaultOwnerName() string {
	for _, key := range []string{"USER", "USERNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "owner"
}

// HasKey reports whether key is a real secret rather than empty or the skip sentinel.
func HasKey(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != SkipKey
}

func (c InstallConfig) Validate() error {
	if c.InstallPath == "" {
		return errdefs.NewCustomError(errdefs.ErrTypeInvalidConfig, "install path is required")
	}
	if !filepath.IsAbs(c.InstallPath) {
		return errdefs.NewCustomError(errdefs.ErrTypeInvalidConfig, fmt.Sprintf("install path must be absolute, got %q", c.InstallPath))
	}
	// The owner name is written as a double-quoted .env value.
	if strings.ContainsFunc(c.OwnerName, func(r rune) bool { return unicode.IsControl(r) || r == '"' || r == '\\' }) {
		return errdefs.NewCustomError(errdefs.ErrTypeInvalidConfig, fmt.Sprintf("owner name must not contain quotes, backslashes or control characters, got %q", c.OwnerName))
	}
	return nil
}
