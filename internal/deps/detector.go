// Package deps inspects the host and reports which requirements of the
// AutoMate stack are met.
package deps

import (
	"context"

	"github.com/AvengeMedia/automate/internal/osinfo"
)

// Check is one line of the capability checklist. A failed check is data,
// never an error.
type Check struct {
	Name     string
	Passed   bool
	Required bool
	Message  string
}

// Check names. Package managers map tool names to packages.
const (
	CheckOS            = "OS"
	CheckRAM           = "RAM"
	CheckDisk          = "Disk Space"
	CheckGit           = "Git"
	CheckNode          = "Node.js"
	CheckDocker        = "Docker"
	CheckCompose       = "Docker Compose"
	CheckPython        = "Python"
	CheckDockerDesktop = "Docker Desktop"
)

// MinMemoryBytes is the RAM floor below which the services are not expected to run reliably.
const MinMemoryBytes uint64 = 8 << 30

// Host exposes the host metrics the prober reads.
type Host interface {
	OSInfo(ctx context.Context) (*osinfo.OSInfo, error)
	TotalMemory(ctx context.Context) (uint64, error)
	FreeDisk(ctx context.Context, path string) (uint64, error)
}

// CapabilityProber is what the dependency installer and the CLI consume.
type CapabilityProber interface {
	Probe(ctx context.Context) []Check
}

// Missing returns the required checks that did not pass, in order.
func Missing(checks []Check) []Check {
	var out []Check
	for _, c := range checks {
		if c.Required && !c.Passed {
			out = append(out, c)
		}
	}
	return out
}

func AllRequiredPassed(checks []Check) bool {
	return len(Missing(checks)) == 0
}
