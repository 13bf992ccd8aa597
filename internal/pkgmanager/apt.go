package pkgmanager

import (
	"context"
	"fmt"

	"github.com/AvengeMedia/automate/internal/cmdrunner"
)

type APTInstaller struct {
	baseInstaller
}

// NewAPTInstaller targets Ubuntu and its derivatives, which ship the compose
// plugin as docker-compose-v2.
func NewAPTInstaller(runner cmdrunner.Runner, logChan chan<- string) *APTInstaller {
	return newAPTInstaller(runner, logChan, "docker-compose-v2")
}

// NewDebianInstaller targets Debian proper, where the package is docker-compose.
func NewDebianInstaller(runner cmdrunner.Runner, logChan chan<- string) *APTInstaller {
	return newAPTInstaller(runner, logChan, "docker-compose")
}

func newAPTInstaller(runner cmdrunner.Runner, logChan chan<- string, compose string) *APTInstaller {
	return &APTInstaller{
		baseInstaller: baseInstaller{
			name:    "apt",
			binary:  "apt-get",
			runner:  runner,
			logChan: logChan,
			packages: linuxPackages(
				[]string{"nodejs", "npm"},
				[]string{"docker.io"},
				[]string{compose},
				[]string{"python3", "python3-pip", "python3-venv"},
			),
		},
	}
}

func (a *APTInstaller) Bootstrap(ctx context.Context) error {
	return a.cannotBootstrap()
}

func (a *APTInstaller) InstallPackages(ctx context.Context, packages []string, progressFunc ProgressFunc) error {
	if len(packages) == 0 {
		return nil
	}

	report(progressFunc, 0.05, "Updating APT package lists...", false)
	if err := a.run(ctx, a.aptGet("update")); err != nil {
		return fmt.Errorf("failed to update apt: %w", err)
	}

	a.log(fmt.Sprintf("Installing %d packages: %s", len(packages), joinPackages(packages)))
	report(progressFunc, 0.25, "Installing packages...", false)

	args := append([]string{"install", "-y", "--no-install-recommends"}, packages...)
	if err := a.runWithProgress(ctx, a.aptGet(args...), packages, progressFunc, 0.30, 0.90); err != nil {
		return fmt.Errorf("failed to install packages: %w", err)
	}

	report(progressFunc, 1.0, "Installation complete", true)
	a.log("Packages installed successfully")
	return nil
}

// aptGet passes DEBIAN_FRONTEND through env because sudo resets the environment.
func (a *APTInstaller) aptGet(args ...string) cmdrunner.Command {
	return a.privileged("env", append([]string{"DEBIAN_FRONTEND=noninteractive", "apt-get"}, args...)...)
}
