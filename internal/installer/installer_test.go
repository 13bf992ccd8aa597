package installer

import (
	"context"
	"errors"
	"testing"

	"github.com/AvengeMedia/automate/internal/deps"
	"github.com/AvengeMedia/automate/internal/errdefs"
	"github.com/AvengeMedia/automate/internal/pkgmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProber []deps.Check

func (p staticProber) Probe(context.Context) []deps.Check {
	return p
}

type fakeManager struct {
	available    bool
	bootstrapErr error
	installErr   error
	bootstraps   int
	installs     [][]string
}

func (f *fakeManager) Name() string { return "fake" }

func (f *fakeManager) Available(context.Context) bool { return f.available }

func (f *fakeManager) Bootstrap(context.Context) error {
	f.bootstraps++
	if f.bootstrapErr == nil {
		f.available = true
	}
	return f.bootstrapErr
}

func (f *fakeManager) Packages(checkName string) []string {
	return map[string][]string{
		deps.CheckGit:    {"git"},
		deps.CheckNode:   {"nodejs", "npm"},
		deps.CheckDocker: {"docker"},
		// compose ships inside the docker package here
		deps.CheckCompose: {"docker"},
	}[checkName]
}

func (f *fakeManager) InstallPackages(_ context.Context, packages []string, progressFunc pkgmanager.ProgressFunc) error {
	f.installs = append(f.installs, packages)
	if progressFunc != nil {
		progressFunc("", 0.5, "Installing packages...", false)
	}
	return f.installErr
}

func failed(names ...string) staticProber {
	checks := staticProber{{Name: deps.CheckOS, Passed: true, Required: true}}
	for _, n := range names {
		checks = append(checks, deps.Check{Name: n, Required: true})
	}
	return checks
}

func TestInstallNothingMissing(t *testing.T) {
	pm := &fakeManager{available: true}
	progressChan := make(chan InstallProgressMsg, 10)

	err := NewInstaller(failed(), pm, nil).Install(context.Background(), progressChan)

	require.NoError(t, err)
	assert.Empty(t, pm.installs)
	assert.Zero(t, pm.bootstraps)
}

func TestInstallBatchesAndDedupes(t *testing.T) {
	pm := &fakeManager{available: true}
	logChan := make(chan string, 10)

	err := NewInstaller(failed(deps.CheckGit, deps.CheckDocker, deps.CheckCompose, deps.CheckRAM), pm, logChan).Install(context.Background(), nil)

	require.NoError(t, err)
	require.Len(t, pm.installs, 1)
	assert.Equal(t, []string{"git", "docker"}, pm.installs[0])

	close(logChan)
	var logs []string
	for l := range logChan {
		logs = append(logs, l)
	}
	assert.Contains(t, logs, "No fake package for RAM, skipping")
}

func TestInstallIgnoresOptionalFailures(t *testing.T) {
	pm := &fakeManager{available: true}
	checks := staticProber{{Name: deps.CheckNode, Required: false}}

	require.NoError(t, NewInstaller(checks, pm, nil).Install(context.Background(), nil))
	assert.Empty(t, pm.installs)
}

func TestInstallBootstrapsMissingManager(t *testing.T) {
	pm := &fakeManager{}

	err := NewInstaller(failed(deps.CheckNode), pm, nil).Install(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 1, pm.bootstraps)
	assert.Equal(t, [][]string{{"nodejs", "npm"}}, pm.installs)
}

func TestInstallFailures(t *testing.T) {
	t.Run("bootstrap", func(t *testing.T) {
		pm := &fakeManager{bootstrapErr: errors.New("no network")}
		err := NewInstaller(failed(deps.CheckGit), pm, nil).Install(context.Background(), nil)

		assert.True(t, errdefs.IsType(err, errdefs.ErrTypeDependencyInstall))
		assert.ErrorContains(t, err, "no network")
		assert.Empty(t, pm.installs)
	})

	t.Run("packages", func(t *testing.T) {
		pm := &fakeManager{available: true, installErr: errors.New("exit status 100")}
		progressChan := make(chan InstallProgressMsg, 10)
		err := NewInstaller(failed(deps.CheckGit), pm, nil).Install(context.Background(), progressChan)

		assert.True(t, errdefs.IsType(err, errdefs.ErrTypeDependencyInstall))

		close(progressChan)
		var last InstallProgressMsg
		for msg := range progressChan {
			last = msg
		}
		assert.True(t, last.IsComplete)
		assert.Equal(t, PhasePackages, last.Phase)
		assert.Error(t, last.Error)
	})
}
