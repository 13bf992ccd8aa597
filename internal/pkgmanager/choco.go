package pkgmanager

import (
	"context"
	"fmt"

	"github.com/AvengeMedia/automate/internal/cmdrunner"
	"github.com/AvengeMedia/automate/internal/deps"
)

const chocolateyInstallCommand = "Set-ExecutionPolicy Bypass -Scope Process -Force; " +
	"[System.Net.ServicePointManager]::SecurityProtocol = [System.Net.ServicePointManager]::SecurityProtocol -bor 3072; " +
	"iex ((New-Object System.Net.WebClient).DownloadString('https://community.chocolatey.org/install.ps1'))"

type ChocoInstaller struct {
	baseInstaller
}

func NewChocoInstaller(runner cmdrunner.Runner, logChan chan<- string) *ChocoInstaller {
	return &ChocoInstaller{
		baseInstaller: baseInstaller{
			name:    "chocolatey",
			binary:  "choco",
			runner:  runner,
			logChan: logChan,
			packages: map[string][]string{
				deps.CheckGit:    {"git"},
				deps.CheckNode:   {"nodejs-lts"},
				deps.CheckPython: {"python311"},
				deps.CheckDocker: {"docker-desktop"},
			},
		},
	}
}

func (c *ChocoInstaller) Bootstrap(ctx context.Context) error {
	c.log("Installing Chocolatey...")
	cmd := cmdrunner.Command{
		Name: "powershell",
		Args: []string{"-NoProfile", "-InputFormat", "None", "-ExecutionPolicy", "Bypass", "-Command", chocolateyInstallCommand},
	}
	if err := c.run(ctx, cmd); err != nil {
		return fmt.Errorf("failed to install Chocolatey: %w", err)
	}
	return nil
}

func (c *ChocoInstaller) InstallPackages(ctx context.Context, packages []string, progressFunc ProgressFunc) error {
	if len(packages) == 0 {
		return nil
	}

	c.log(fmt.Sprintf("Installing packages: %s", joinPackages(packages)))
	args := append([]string{"install", "-y", "--no-progress"}, packages...)
	if err := c.runWithProgress(ctx, cmdrunner.Command{Name: "choco", Args: args}, packages, progressFunc, 0.10, 0.90); err != nil {
		return fmt.Errorf("failed to install packages: %w", err)
	}

	report(progressFunc, 1.0, "Installation complete", true)
	c.log("Packages installed successfully")
	return nil
}
