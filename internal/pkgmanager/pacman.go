package pkgmanager

import (
	"context"
	"fmt"

	"github.com/AvengeMedia/automate/internal/cmdrunner"
)

type PacmanInstaller struct {
	baseInstaller
}

func NewPacmanInstaller(runner cmdrunner.Runner, logChan chan<- string) *PacmanInstaller {
	return &PacmanInstaller{
		baseInstaller: baseInstaller{
			name:    "pacman",
			binary:  "pacman",
			runner:  runner,
			logChan: logChan,
			packages: linuxPackages(
				[]string{"nodejs", "npm"},
				[]string{"docker"},
				[]string{"docker-compose"},
				[]string{"python", "python-pip"},
			),
		},
	}
}

func (p *PacmanInstaller) Bootstrap(ctx context.Context) error {
	return p.cannotBootstrap()
}

func (p *PacmanInstaller) InstallPackages(ctx context.Context, packages []string, progressFunc ProgressFunc) error {
	if len(packages) == 0 {
		return nil
	}

	p.log(fmt.Sprintf("Installing packages: %s", joinPackages(packages)))

	args := append([]string{"-Sy", "--needed", "--noconfirm"}, packages...)
	if err := p.runWithProgress(ctx, p.privileged("pacman", args...), packages, progressFunc, 0.10, 0.90); err != nil {
		p.log("Package installation failed")
		return fmt.Errorf("failed to install packages: %w", err)
	}

	p.log("Package installation completed successfully")
	report(progressFunc, 1.0, "Installation complete", true)

	return nil
}
