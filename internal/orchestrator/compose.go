package orchestrator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

var composeFileNames = []string{"compose.yaml", "compose.yml", "docker-compose.yaml", "docker-compose.yml"}

type composeFile struct {
	Services map[string]struct {
		Image string `yaml:"image"`
	} `yaml:"services"`
}

// VerifyCompose checks that the compose file in dir declares a service for
// each wanted name, matching on the service key or its image.
func VerifyCompose(fs afero.Fs, dir string, wanted ...string) error {
	var path string
	var data []byte
	for _, name := range composeFileNames {
		candidate := filepath.Join(dir, name)
		b, err := afero.ReadFile(fs, candidate)
		if err == nil {
			path, data = candidate, b
			break
		}
	}
	if path == "" {
		return fmt.Errorf("no compose file found in %s", dir)
	}

	var cf composeFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	var missing []string
	for _, want := range wanted {
		found := false
		for name, svc := range cf.Services {
			if strings.Contains(strings.ToLower(name), want) || strings.Contains(strings.ToLower(svc.Image), want) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s does not define services: %s", path, strings.Join(missing, ", "))
	}
	return nil
}
