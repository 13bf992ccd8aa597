package deps

import (
	"context"
	"errors"
	"testing"

	"github.com/AvengeMedia/automate/internal/cmdrunner"
	"github.com/AvengeMedia/automate/internal/osinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	info    *osinfo.OSInfo
	infoErr error
	memory  uint64
	memErr  error
	disk    uint64
	diskErr error
}

func (f fakeHost) OSInfo(context.Context) (*osinfo.OSInfo, error) { return f.info, f.infoErr }
func (f fakeHost) TotalMemory(context.Context) (uint64, error)    { return f.memory, f.memErr }
func (f fakeHost) FreeDisk(context.Context, string) (uint64, error) {
	return f.disk, f.diskErr
}

func ubuntuHost() fakeHost {
	return fakeHost{
		info:   &osinfo.OSInfo{OS: osinfo.OSLinux, Distribution: "ubuntu", Family: "debian", VersionID: "24.04", PrettyName: "Ubuntu 24.04 LTS"},
		memory: 16 << 30,
		disk:   120 << 30,
	}
}

func allToolsRunner() *cmdrunner.MockRunner {
	m := cmdrunner.NewMockRunner()
	m.AddOutput("git", []string{"--version"}, "git version 2.44.0\n")
	m.AddOutput("node", []string{"--version"}, "v20.11.1\n")
	m.AddOutput("docker", []string{"--version"}, "Docker version 24.0.7, build afdd53b\n")
	m.AddOutput("docker", []string{"compose", "version"}, "Docker Compose version v2.24.6\n")
	m.AddOutput("python3", []string{"--version"}, "Python 3.11.4\n")
	return m
}

func names(checks []Check) []string {
	out := make([]string, len(checks))
	for i, c := range checks {
		out[i] = c.Name
	}
	return out
}

func find(t *testing.T, checks []Check, name string) Check {
	t.Helper()
	for _, c := range checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found in %v", name, names(checks))
	return Check{}
}

func TestProbeOrderAndVersions(t *testing.T) {
	p := NewProber(allToolsRunner(), ubuntuHost(), "/home/me/AutoMate", nil)

	checks := p.Probe(context.Background())

	assert.Equal(t, []string{CheckOS, CheckRAM, CheckDisk, CheckGit, CheckNode, CheckDocker, CheckCompose, CheckPython}, names(checks))
	assert.True(t, AllRequiredPassed(checks))
	assert.Equal(t, "2.44.0", find(t, checks, CheckGit).Message)
	assert.Equal(t, "20.11.1", find(t, checks, CheckNode).Message)
	assert.Equal(t, "3.11.4", find(t, checks, CheckPython).Message)
	assert.Equal(t, "Ubuntu 24.04 LTS", find(t, checks, CheckOS).Message)
	assert.Equal(t, "120 GiB available", find(t, checks, CheckDisk).Message)
}

func TestProbeMissingToolsAreData(t *testing.T) {
	m := cmdrunner.NewMockRunner()
	m.AddOutput("git", []string{"--version"}, "git version 2.44.0")
	m.AddResult("node", []string{"--version"}, cmdrunner.Result{ExitCode: 127})
	m.AddError("python3", []string{"--version"}, errors.New("permission denied"))

	p := NewProber(m, ubuntuHost(), "/tmp", nil)

	var checks []Check
	require.NotPanics(t, func() { checks = p.Probe(context.Background()) })
	require.Len(t, checks, 8)

	for _, name := range []string{CheckNode, CheckDocker, CheckCompose, CheckPython} {
		c := find(t, checks, name)
		assert.False(t, c.Passed, name)
		assert.True(t, c.Required, name)
		assert.Equal(t, "Not installed", c.Message, name)
	}
	assert.True(t, find(t, checks, CheckGit).Passed)

	missing := Missing(checks)
	assert.Equal(t, []string{CheckNode, CheckDocker, CheckCompose, CheckPython}, names(missing))
}

func TestProbeRAMBoundary(t *testing.T) {
	tests := []struct {
		name    string
		memory  uint64
		passed  bool
		message string
	}{
		{"exactly 8 GiB", MinMemoryBytes, true, "8GB"},
		{"one byte short", MinMemoryBytes - 1, false, "8GB (minimum 8GB required)"},
		{"4 GiB", 4 << 30, false, "4GB (minimum 8GB required)"},
		{"32 GiB", 32 << 30, true, "32GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := ubuntuHost()
			host.memory = tt.memory
			p := NewProber(allToolsRunner(), host, "/tmp", nil)

			ram := find(t, p.Probe(context.Background()), CheckRAM)
			assert.Equal(t, tt.passed, ram.Passed)
			assert.Equal(t, tt.message, ram.Message)
		})
	}
}

func TestProbeHostFailures(t *testing.T) {
	host := fakeHost{
		infoErr: errors.New("no host info"),
		memErr:  errors.New("no meminfo"),
		diskErr: errors.New("no statfs"),
	}
	p := NewProber(allToolsRunner(), host, "/tmp", nil)

	checks := p.Probe(context.Background())

	assert.False(t, find(t, checks, CheckOS).Passed)
	assert.Equal(t, "Could not check", find(t, checks, CheckRAM).Message)
	assert.Equal(t, "Could not check", find(t, checks, CheckDisk).Message)
	assert.False(t, find(t, checks, CheckDisk).Passed)
	assert.True(t, find(t, checks, CheckGit).Passed, "tool checks still run")
}

func TestProbeUnsupportedDistribution(t *testing.T) {
	host := ubuntuHost()
	host.info = &osinfo.OSInfo{OS: osinfo.OSLinux, Distribution: "alpine", Family: "alpine", PrettyName: "Alpine Linux v3.19"}
	p := NewProber(allToolsRunner(), host, "/tmp", nil)

	os := find(t, p.Probe(context.Background()), CheckOS)
	assert.False(t, os.Passed)
	assert.Contains(t, os.Message, "unsupported")
}

func TestProbeDarwin(t *testing.T) {
	darwin := func(version string) fakeHost {
		h := ubuntuHost()
		h.info = &osinfo.OSInfo{OS: osinfo.OSDarwin, VersionID: version, PrettyName: "macOS " + version}
		return h
	}

	t.Run("docker desktop running", func(t *testing.T) {
		m := allToolsRunner()
		m.AddOutput("docker", []string{"ps"}, "CONTAINER ID   IMAGE")
		checks := NewProber(m, darwin("14.5"), "/tmp", nil).Probe(context.Background())

		require.Len(t, checks, 9)
		last := checks[len(checks)-1]
		assert.Equal(t, CheckDockerDesktop, last.Name)
		assert.True(t, last.Passed)
		assert.True(t, find(t, checks, CheckOS).Passed)
	})

	t.Run("docker desktop not running", func(t *testing.T) {
		m := allToolsRunner()
		m.AddResult("docker", []string{"ps"}, cmdrunner.Result{ExitCode: 1, Stderr: "Cannot connect to the Docker daemon"})
		checks := NewProber(m, darwin("14.5"), "/tmp", nil).Probe(context.Background())

		dd := find(t, checks, CheckDockerDesktop)
		assert.False(t, dd.Passed)
		assert.Contains(t, dd.Message, "not running")
	})

	t.Run("docker missing", func(t *testing.T) {
		m := cmdrunner.NewMockRunner()
		checks := NewProber(m, darwin("14.5"), "/tmp", nil).Probe(context.Background())

		assert.Equal(t, "Not installed", find(t, checks, CheckDockerDesktop).Message)
		assert.Len(t, m.CallsTo("docker"), 2, "docker ps is skipped when docker is absent")
	})

	t.Run("old macOS", func(t *testing.T) {
		checks := NewProber(allToolsRunner(), darwin("10.12"), "/tmp", nil).Probe(context.Background())
		os := find(t, checks, CheckOS)
		assert.False(t, os.Passed)
		assert.Contains(t, os.Message, "need 10.13+")
	})
}

func TestWindowsUsesPython(t *testing.T) {
	tools := DefaultTools(osinfo.OSWindows)
	assert.Equal(t, "python", tools[len(tools)-1].Command)
}

func TestParseVersion(t *testing.T) {
	assert.Equal(t, "20.11.1", ParseVersion("v20.11.1"))
	assert.Equal(t, "24.0.7", ParseVersion("Docker version 24.0.7, build afdd53b"))
	assert.Equal(t, "3.12.0", ParseVersion("Python 3.12"))
	assert.Equal(t, "Installed", ParseVersion("some tool"))
}

func TestLogChanReceivesSummary(t *testing.T) {
	logChan := make(chan string, 32)
	p := NewProber(allToolsRunner(), ubuntuHost(), "/tmp", logChan)

	checks := p.Probe(context.Background())
	close(logChan)

	var lines []string
	for l := range logChan {
		lines = append(lines, l)
	}
	assert.Len(t, lines, len(checks))
	assert.Contains(t, lines[1], "RAM: ok")
}
