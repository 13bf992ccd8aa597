// Package envfile generates and reads the .env file shared by the AutoMate
// services.
package envfile

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AvengeMedia/automate/internal/config"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

const FileName = ".env"

const anthropicPlaceholder = "# ANTHROPIC_API_KEY=your-key-here  # Add your key from https://console.anthropic.com"

// Render produces the file contents. memoryKey becomes AUTOMEM_API_KEY.
func Render(cfg config.InstallConfig, settings config.Settings, memoryKey string) string {
	anthropic := anthropicPlaceholder
	if config.HasKey(cfg.AnthropicKey) {
		anthropic = "ANTHROPIC_API_KEY=" + strings.TrimSpace(cfg.AnthropicKey)
	}
	openai := "# OPENAI_API_KEY="
	if config.HasKey(cfg.OpenAIKey) {
		openai = "OPENAI_API_KEY=" + strings.TrimSpace(cfg.OpenAIKey)
	}

	groups := [][]string{
		{
			"# AutoMate Environment Configuration",
			"# Generated by AutoMate Installer",
		},
		{"# Anthropic API", anthropic},
		{"# OpenAI API (Optional)", openai},
		{
			"# AutoMem Configuration",
			"AUTOMEM_API_KEY=" + memoryKey,
			"AUTOMEM_ENDPOINT=" + settings.HTTPEndpoint(settings.Ports.AutoMem),
		},
		{
			"# Service Ports",
			fmt.Sprintf("AUTOHUB_PORT=%d", settings.Ports.AutoHub),
			fmt.Sprintf("AUTOCHAT_PORT=%d", settings.Ports.AutoChat),
			fmt.Sprintf("FALKORDB_PORT=%d", settings.Ports.FalkorDB),
			fmt.Sprintf("QDRANT_PORT=%d", settings.Ports.Qdrant),
		},
		{"# Owner Configuration", "OWNER_NAME=" + quote(cfg.OwnerName)},
	}

	var b strings.Builder
	for i, group := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, line := range group {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// quote wraps a free-form value so spaces and '#' survive parsing. '$' is
// escaped to stop variable expansion; quotes, backslashes and control
// characters are rejected by InstallConfig.Validate.
func quote(v string) string {
	return `"` + strings.ReplaceAll(v, "$", `\$`) + `"`
}

// Write renders the file with a fresh memory service key into dir and
// returns its path. Any existing file is replaced.
func Write(fs afero.Fs, dir string, cfg config.InstallConfig, settings config.Settings) (string, error) {
	path := filepath.Join(dir, FileName)
	content := Render(cfg, settings, uuid.NewString())
	if err := afero.WriteFile(fs, path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Load parses an env file into KEY=value pairs, sorted by key, suitable for
// appending to a child process environment. Commented placeholders are skipped.
func Load(fs afero.Fs, path string) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	values, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	env := make([]string, 0, len(values))
	for k, v := range values {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env, nil
}
