package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Repository is one external project the stack is assembled from.
type Repository struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
	Dir  string `toml:"dir"`
}

type Ports struct {
	AutoHub  int `toml:"autohub"`
	AutoChat int `toml:"autochat"`
	AutoMem  int `toml:"automem"`
	FalkorDB int `toml:"falkordb"`
	Qdrant   int `toml:"qdrant"`
}

// Settings holds the non-secret parameters of an installation run.
type Settings struct {
	BundledReposDir         string     `toml:"bundled_repos_dir"`
	AutoChat                Repository `toml:"autochat"`
	AutoHub                 Repository `toml:"autohub"`
	AutoMem                 Repository `toml:"automem"`
	Ports                   Ports      `toml:"ports"`
	ReadinessTimeoutSeconds int        `toml:"readiness_timeout_seconds"`
	DatabaseSettleSeconds   int        `toml:"database_settle_seconds"`
	ServiceHost             string     `toml:"service_host"`
}

func Defaults() Settings {
	return Settings{
		BundledReposDir: defaultBundledDir(),
		AutoChat: Repository{
			Name: "AutoChat",
			URL:  "https://github.com/stevew00dy/autochat.git",
			Dir:  "autochat",
		},
		AutoHub: Repository{
			Name: "AutoHub",
			URL:  "https://github.com/verygoodplugins/autohub.git",
			Dir:  "autohub",
		},
		AutoMem: Repository{
			Name: "AutoMem",
			URL:  "https://github.com/verygoodplugins/automem.git",
			Dir:  "automem",
		},
		Ports: Ports{
			AutoHub:  3001,
			AutoChat: 3000,
			AutoMem:  8001,
			FalkorDB: 6379,
			Qdrant:   6333,
		},
		ReadinessTimeoutSeconds: 30,
		DatabaseSettleSeconds:   5,
		ServiceHost:             "localhost",
	}
}

// LoadSettings overlays the TOML file at path onto Defaults. A missing file is not an error.
func LoadSettings(path string) (Settings, error) {
	s := Defaults()
	if path == "" {
		return s, nil
	}

	if _, err := toml.DecodeFile(path, &s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Defaults(), nil
		}
		return Defaults(), fmt.Errorf("failed to load settings %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return Defaults(), err
	}
	return s, nil
}

func (s Settings) Validate() error {
	for _, r := range s.Repositories() {
		if r.URL == "" || r.Dir == "" {
			return fmt.Errorf("repository %q needs both url and dir", r.Name)
		}
	}
	if s.ReadinessTimeoutSeconds <= 0 {
		return fmt.Errorf("readiness_timeout_seconds must be positive")
	}
	if s.DatabaseSettleSeconds < 0 {
		return fmt.Errorf("database_settle_seconds must not be negative")
	}
	return s.Ports.Validate()
}

// Validate checks every port is a usable TCP port and no two services share one.
func (p Ports) Validate() error {
	seen := make(map[int]string, 5)
	for _, entry := range []struct {
		name string
		port int
	}{
		{"autohub", p.AutoHub},
		{"autochat", p.AutoChat},
		{"automem", p.AutoMem},
		{"falkordb", p.FalkorDB},
		{"qdrant", p.Qdrant},
	} {
		if entry.port < 1 || entry.port > 65535 {
			return fmt.Errorf("ports.%s must be between 1 and 65535, got %d", entry.name, entry.port)
		}
		if other, ok := seen[entry.port]; ok {
			return fmt.Errorf("ports.%s and ports.%s both use port %d", other, entry.name, entry.port)
		}
		seen[entry.port] = entry.name
	}
	return nil
}

// Repositories returns the repositories in acquisition order.
func (s Settings) Repositories() []Repository {
	return []Repository{s.AutoChat, s.AutoHub, s.AutoMem}
}

func (s Settings) ReadinessTimeout() time.Duration {
	return time.Duration(s.ReadinessTimeoutSeconds) * time.Second
}

func (s Settings) DatabaseSettle() time.Duration {
	return time.Duration(s.DatabaseSettleSeconds) * time.Second
}

func (s Settings) host() string {
	if s.ServiceHost == "" {
		return "localhost"
	}
	return s.ServiceHost
}

func (s Settings) HTTPEndpoint(port int) string {
	return fmt.Sprintf("http://%s:%d", s.host(), port)
}

func (s Settings) TCPEndpoint(port int) string {
	return fmt.Sprintf("tcp://%s:%d", s.host(), port)
}

// defaultBundledDir looks for bundled-repos next to the executable.
func defaultBundledDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "bundled-repos"
	}
	return filepath.Join(filepath.Dir(exe), "bundled-repos")
}
