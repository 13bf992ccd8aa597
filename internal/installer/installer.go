// Package installer brings a host up to the AutoMate requirements by
// installing whatever the capability probe reports missing.
package installer

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/AvengeMedia/automate/internal/deps"
	"github.com/AvengeMedia/automate/internal/errdefs"
	"github.com/AvengeMedia/automate/internal/pkgmanager"
)

type Installer struct {
	prober     deps.CapabilityProber
	pkgManager pkgmanager.PackageManager
	logChan    chan<- string
}

func NewInstaller(prober deps.CapabilityProber, pkgManager pkgmanager.PackageManager, logChan chan<- string) *Installer {
	return &Installer{
		prober:     prober,
		pkgManager: pkgManager,
		logChan:    logChan,
	}
}

// Install probes the host and installs the packages behind every failed
// required check in a single package manager call. progressChan may be nil.
func (i *Installer) Install(ctx context.Context, progressChan chan<- InstallProgressMsg) error {
	i.send(progressChan, InstallProgressMsg{Phase: PhaseProbe, Progress: 0.05, Step: "Checking installed dependencies..."})

	packages := i.PackagesFor(i.prober.Probe(ctx))
	if len(packages) == 0 {
		i.log("All dependencies are already installed")
		i.send(progressChan, InstallProgressMsg{Phase: PhaseComplete, Progress: 1.0, Step: "Nothing to install", IsComplete: true})
		return nil
	}

	if !i.pkgManager.Available(ctx) {
		i.log(fmt.Sprintf("%s not found, installing it first", i.pkgManager.Name()))
		i.send(progressChan, InstallProgressMsg{Phase: PhaseBootstrap, Progress: 0.10, Step: fmt.Sprintf("Installing %s...", i.pkgManager.Name())})
		if err := i.pkgManager.Bootstrap(ctx); err != nil {
			return i.fail(progressChan, PhaseBootstrap, err)
		}
	}

	i.log(fmt.Sprintf("Installing with %s: %s", i.pkgManager.Name(), strings.Join(packages, " ")))
	progressFunc := func(_ string, progress float64, step string, _ bool) {
		i.send(progressChan, InstallProgressMsg{Phase: PhasePackages, Progress: progress, Step: step, Packages: packages})
	}
	if err := i.pkgManager.InstallPackages(ctx, packages, progressFunc); err != nil {
		return i.fail(progressChan, PhasePackages, err)
	}

	i.send(progressChan, InstallProgressMsg{Phase: PhaseComplete, Progress: 1.0, Step: "Dependencies installed", IsComplete: true, Packages: packages})
	return nil
}

// PackagesFor maps the failed required checks to package identifiers,
// skipping checks the package manager has no mapping for.
func (i *Installer) PackagesFor(checks []deps.Check) []string {
	var packages []string
	for _, check := range deps.Missing(checks) {
		mapped := i.pkgManager.Packages(check.Name)
		if len(mapped) == 0 {
			i.log(fmt.Sprintf("No %s package for %s, skipping", i.pkgManager.Name(), check.Name))
			continue
		}
		for _, pkg := range mapped {
			if !slices.Contains(packages, pkg) {
				packages = append(packages, pkg)
			}
		}
	}
	return packages
}

func (i *Installer) fail(progressChan chan<- InstallProgressMsg, phase InstallPhase, err error) error {
	wrapped := errdefs.WrapCustomError(errdefs.ErrTypeDependencyInstall, "dependency installation failed", err)
	i.send(progressChan, InstallProgressMsg{Phase: phase, Step: "Installation failed", IsComplete: true, Error: wrapped})
	return wrapped
}

func (i *Installer) send(progressChan chan<- InstallProgressMsg, msg InstallProgressMsg) {
	if progressChan != nil {
		progressChan <- msg
	}
}

func (i *Installer) log(message string) {
	if i.logChan != nil {
		i.logChan <- message
	}
}
