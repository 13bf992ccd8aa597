package pkgmanager

import (
	"context"
	"fmt"

	"github.com/AvengeMedia/automate/internal/cmdrunner"
)

type DNFInstaller struct {
	baseInstaller
}

func NewDNFInstaller(runner cmdrunner.Runner, logChan chan<- string) *DNFInstaller {
	return &DNFInstaller{
		baseInstaller: baseInstaller{
			name:    "dnf",
			binary:  "dnf",
			runner:  runner,
			logChan: logChan,
			packages: linuxPackages(
				[]string{"nodejs", "npm"},
				[]string{"moby-engine"},
				[]string{"docker-compose"},
				[]string{"python3", "python3-pip"},
			),
		},
	}
}

func (d *DNFInstaller) Bootstrap(ctx context.Context) error {
	return d.cannotBootstrap()
}

func (d *DNFInstaller) InstallPackages(ctx context.Context, packages []string, progressFunc ProgressFunc) error {
	if len(packages) == 0 {
		return nil
	}

	report(progressFunc, 0.05, "Initializing DNF package installation...", false)

	d.log("Updating DNF package lists...")
	report(progressFunc, 0.10, "Updating DNF package lists...", false)

	if err := d.run(ctx, d.privileged("dnf", "makecache", "--refresh", "-y")); err != nil {
		return fmt.Errorf("failed to update dnf: %w", err)
	}

	report(progressFunc, 0.25, "Installing packages...", false)
	d.log(fmt.Sprintf("Installing %d packages: %s", len(packages), joinPackages(packages)))

	args := append([]string{"install", "-y"}, packages...)
	if err := d.runWithProgress(ctx, d.privileged("dnf", args...), packages, progressFunc, 0.30, 0.80); err != nil {
		return fmt.Errorf("failed to install packages: %w", err)
	}

	report(progressFunc, 1.0, "Installation complete", true)
	d.log("Packages installed successfully")

	return nil
}
