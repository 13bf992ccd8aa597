package deps

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/AvengeMedia/automate/internal/cmdrunner"
	"github.com/AvengeMedia/automate/internal/osinfo"
	"github.com/Masterminds/semver/v3"
	"github.com/dustin/go-humanize"
)

const toolTimeout = 5 * time.Second

// minMacOS matches the oldest macOS Docker Desktop ran on when the stack was assembled.
var minMacOS = mustConstraint(">= 10.13")

var versionPattern = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?`)

// Tool is an external program the stack requires, probed by running a
// version command.
type Tool struct {
	Name    string
	Command string
	Args    []string
}

// DefaultTools returns the required tools in checklist order.
func DefaultTools(goos string) []Tool {
	python := "python3"
	if goos == osinfo.OSWindows {
		python = "python"
	}
	return []Tool{
		{Name: CheckGit, Command: "git", Args: []string{"--version"}},
		{Name: CheckNode, Command: "node", Args: []string{"--version"}},
		{Name: CheckDocker, Command: "docker", Args: []string{"--version"}},
		{Name: CheckCompose, Command: "docker", Args: []string{"compose", "version"}},
		{Name: CheckPython, Command: python, Args: []string{"--version"}},
	}
}

type Prober struct {
	runner   cmdrunner.Runner
	host     Host
	diskPath string
	logChan  chan<- string
}

// NewProber builds a prober that measures free disk space for diskPath,
// normally the install directory.
func NewProber(runner cmdrunner.Runner, host Host, diskPath string, logChan chan<- string) *Prober {
	return &Prober{
		runner:   runner,
		host:     host,
		diskPath: diskPath,
		logChan:  logChan,
	}
}

// Probe returns a fresh checklist: OS, RAM, disk, then each tool. On macOS a
// final check confirms the Docker daemon is running.
func (p *Prober) Probe(ctx context.Context) []Check {
	var checks []Check

	info, osCheck := p.checkOS(ctx)
	checks = append(checks, osCheck)
	checks = append(checks, p.checkRAM(ctx))
	checks = append(checks, p.checkDisk(ctx))

	goos := ""
	if info != nil {
		goos = info.OS
	}

	dockerInstalled := false
	for _, tool := range DefaultTools(goos) {
		c := p.checkTool(ctx, tool)
		if tool.Name == CheckDocker {
			dockerInstalled = c.Passed
		}
		checks = append(checks, c)
	}

	if goos == osinfo.OSDarwin {
		checks = append(checks, p.checkDockerDesktop(ctx, dockerInstalled))
	}

	for _, c := range checks {
		status := "ok"
		if !c.Passed {
			status = "missing"
		}
		p.log(fmt.Sprintf("%s: %s (%s)", c.Name, status, c.Message))
	}

	return checks
}

func (p *Prober) checkOS(ctx context.Context) (*osinfo.OSInfo, Check) {
	check := Check{Name: CheckOS, Required: true}

	info, err := p.host.OSInfo(ctx)
	if err != nil {
		check.Message = err.Error()
		return nil, check
	}

	check.Message = info.PrettyName
	switch {
	case info.OS == osinfo.OSDarwin:
		v, err := semver.NewVersion(info.VersionID)
		if err != nil || !minMacOS.Check(v) {
			check.Message = fmt.Sprintf("%s (need 10.13+)", info.PrettyName)
			return info, check
		}
		check.Passed = true
	case osinfo.IsSupported(info):
		check.Passed = true
	default:
		check.Message = fmt.Sprintf("%s (unsupported distribution)", info.PrettyName)
	}

	return info, check
}

func (p *Prober) checkRAM(ctx context.Context) Check {
	check := Check{Name: CheckRAM, Required: true}

	total, err := p.host.TotalMemory(ctx)
	if err != nil {
		check.Message = "Could not check"
		return check
	}

	gb := int(math.Round(float64(total) / float64(1<<30)))
	check.Passed = total >= MinMemoryBytes
	if check.Passed {
		check.Message = fmt.Sprintf("%dGB", gb)
	} else {
		check.Message = fmt.Sprintf("%dGB (minimum 8GB required)", gb)
	}
	return check
}

func (p *Prober) checkDisk(ctx context.Context) Check {
	check := Check{Name: CheckDisk, Required: true}

	free, err := p.host.FreeDisk(ctx, p.diskPath)
	if err != nil {
		check.Message = "Could not check"
		return check
	}

	check.Passed = true
	check.Message = fmt.Sprintf("%s available", humanize.IBytes(free))
	return check
}

func (p *Prober) checkTool(ctx context.Context, tool Tool) Check {
	check := Check{Name: tool.Name, Required: true}

	out, err := p.toolOutput(ctx, tool.Command, tool.Args...)
	if err != nil {
		check.Message = "Not installed"
		return check
	}

	check.Passed = true
	check.Message = ParseVersion(out)
	return check
}

func (p *Prober) checkDockerDesktop(ctx context.Context, installed bool) Check {
	check := Check{Name: CheckDockerDesktop, Required: true}
	if !installed {
		check.Message = "Not installed"
		return check
	}

	if _, err := p.toolOutput(ctx, "docker", "ps"); err != nil {
		check.Message = "Installed but not running - please open Docker Desktop"
		return check
	}

	check.Passed = true
	check.Message = "Running"
	return check
}

func (p *Prober) toolOutput(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()
	return cmdrunner.Output(ctx, p.runner, cmdrunner.Command{Name: name, Args: args})
}

// ParseVersion extracts a semantic version from a tool's version banner,
// falling back to "Installed".
func ParseVersion(output string) string {
	match := versionPattern.FindString(output)
	if match == "" {
		return "Installed"
	}
	v, err := semver.NewVersion(match)
	if err != nil {
		return "Installed"
	}
	return v.String()
}

func (p *Prober) log(message string) {
	if p.logChan != nil {
		p.logChan <- message
	}
}

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}
