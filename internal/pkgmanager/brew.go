package pkgmanager

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/AvengeMedia/automate/internal/cmdrunner"
	"github.com/AvengeMedia/automate/internal/deps"
)

const homebrewInstallScript = "https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh"

// dockerDesktopStartup is how long to give Docker Desktop after opening it for the first time.
var dockerDesktopStartup = 10 * time.Second

type BrewInstaller struct {
	baseInstaller
	casks []string
}

func NewBrewInstaller(runner cmdrunner.Runner, logChan chan<- string) *BrewInstaller {
	return &BrewInstaller{
		baseInstaller: baseInstaller{
			name:    "homebrew",
			binary:  "brew",
			runner:  runner,
			logChan: logChan,
			packages: map[string][]string{
				deps.CheckGit:    {"git"},
				deps.CheckNode:   {"node"},
				deps.CheckPython: {"python@3.11"},
				deps.CheckDocker: {"docker"},
			},
		},
		casks: []string{"docker"},
	}
}

func (b *BrewInstaller) Bootstrap(ctx context.Context) error {
	b.log("Installing Homebrew...")
	cmd := cmdrunner.Command{
		Name: "/bin/bash",
		Args: []string{"-c", fmt.Sprintf(`/bin/bash -c "$(curl -fsSL %s)"`, homebrewInstallScript)},
		Env:  []string{"NONINTERACTIVE=1"},
	}
	if err := b.run(ctx, cmd); err != nil {
		return fmt.Errorf("failed to install Homebrew: %w", err)
	}
	return nil
}

// InstallPackages installs formulae in one brew call and casks in a second,
// since brew applies --cask to every name on the command line.
func (b *BrewInstaller) InstallPackages(ctx context.Context, packages []string, progressFunc ProgressFunc) error {
	if len(packages) == 0 {
		return nil
	}

	var formulae, casks []string
	for _, pkg := range packages {
		if slices.Contains(b.casks, pkg) {
			casks = append(casks, pkg)
		} else {
			formulae = append(formulae, pkg)
		}
	}

	if len(formulae) > 0 {
		report(progressFunc, 0.10, fmt.Sprintf("Installing %s...", joinPackages(formulae)), false)
		args := append([]string{"install"}, formulae...)
		if err := b.runWithProgress(ctx, cmdrunner.Command{Name: "brew", Args: args}, formulae, progressFunc, 0.10, 0.60); err != nil {
			return fmt.Errorf("failed to install packages: %w", err)
		}
	}

	if len(casks) > 0 {
		report(progressFunc, 0.65, fmt.Sprintf("Installing %s...", joinPackages(casks)), false)
		args := append([]string{"install", "--cask"}, casks...)
		if err := b.run(ctx, cmdrunner.Command{Name: "brew", Args: args}); err != nil {
			return fmt.Errorf("failed to install casks: %w", err)
		}
	}

	if slices.Contains(casks, "docker") {
		report(progressFunc, 0.90, "Starting Docker Desktop...", false)
		if err := b.run(ctx, cmdrunner.Command{Name: "open", Args: []string{"-a", "Docker"}}); err != nil {
			return fmt.Errorf("failed to open Docker Desktop: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dockerDesktopStartup):
		}
	}

	report(progressFunc, 1.0, "Installation complete", true)
	b.log("Packages installed successfully")
	return nil
}
