// Package pkgmanager installs system packages through the host's native
// package manager. One strategy exists per platform family.
package pkgmanager

import (
	"context"
	"fmt"

	"github.com/AvengeMedia/automate/internal/cmdrunner"
	"github.com/AvengeMedia/automate/internal/errdefs"
	"github.com/AvengeMedia/automate/internal/osinfo"
)

type ProgressFunc func(packageName string, progress float64, step string, isComplete bool)

// PackageManager is the bootstrap + batch-install contract every platform implements.
type PackageManager interface {
	Name() string
	// Available reports whether the manager itself is installed.
	Available(ctx context.Context) bool
	// Bootstrap installs the manager. Distribution managers cannot be bootstrapped.
	Bootstrap(ctx context.Context) error
	// Packages maps a capability check name to package identifiers; nil means no mapping.
	Packages(checkName string) []string
	InstallPackages(ctx context.Context, packages []string, progressFunc ProgressFunc) error
}

func NewPackageManager(info *osinfo.OSInfo, runner cmdrunner.Runner, logChan chan<- string) (PackageManager, error) {
	if info == nil {
		return nil, fmt.Errorf("unknown platform")
	}

	switch info.OS {
	case osinfo.OSDarwin:
		return NewBrewInstaller(runner, logChan), nil
	case osinfo.OSWindows:
		return NewChocoInstaller(runner, logChan), nil
	case osinfo.OSLinux:
		// Ubuntu reports ID_LIKE=debian, so the specific ID wins over the family.
		for _, id := range []string{info.Distribution, info.Family} {
			switch id {
			case "ubuntu":
				return NewAPTInstaller(runner, logChan), nil
			case "debian":
				return NewDebianInstaller(runner, logChan), nil
			case "fedora", "rhel":
				return NewDNFInstaller(runner, logChan), nil
			case "arch":
				return NewPacmanInstaller(runner, logChan), nil
			}
		}
	}

	return nil, errdefs.NewCustomError(errdefs.ErrTypeUnsupportedDistribution, fmt.Sprintf("unsupported distribution: %s", info.Distribution))
}
