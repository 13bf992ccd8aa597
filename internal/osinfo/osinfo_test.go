package osinfo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/AvengeMedia/automate/internal/errdefs"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withPlatform(t *testing.T, goos, arch string) {
	t.Helper()
	origOS, origArch, origHost, origOpen := getOsFunc, getArchFunc, hostInfoFunc, osOpen
	t.Cleanup(func() {
		getOsFunc, getArchFunc, hostInfoFunc, osOpen = origOS, origArch, origHost, origOpen
	})
	getOsFunc = func() string { return goos }
	getArchFunc = func() string { return arch }
}

func withOSRelease(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "os-release")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	osOpen = func(string) (*os.File, error) { return os.Open(path) }
}

func TestGetOSInfoUbuntu(t *testing.T) {
	withPlatform(t, "linux", "amd64")
	withOSRelease(t, `NAME="Ubuntu"
VERSION="24.04 LTS (Noble Numbat)"
ID=ubuntu
ID_LIKE=debian
PRETTY_NAME="Ubuntu 24.04 LTS"
VERSION_ID="24.04"
`)

	info, err := GetOSInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ubuntu", info.Distribution)
	assert.Equal(t, "debian", info.Family)
	assert.Equal(t, "24.04", info.VersionID)
	assert.Equal(t, "Ubuntu 24.04 LTS", info.PrettyName)
}

func TestGetOSInfoArchIsRolling(t *testing.T) {
	withPlatform(t, "linux", "arm64")
	withOSRelease(t, "ID=arch\nPRETTY_NAME=\"Arch Linux\"\n")

	info, err := GetOSInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "arch", info.Distribution)
	assert.Equal(t, "arch", info.Family)
	assert.Equal(t, "rolling", info.VersionID)
}

func TestGetOSInfoDarwinUsesHostInfo(t *testing.T) {
	withPlatform(t, "darwin", "arm64")
	hostInfoFunc = func(context.Context) (*host.InfoStat, error) {
		return &host.InfoStat{Platform: "darwin", PlatformFamily: "Standalone Workstation", PlatformVersion: "14.5"}, nil
	}

	info, err := GetOSInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OSDarwin, info.OS)
	assert.Equal(t, "14.5", info.VersionID)
	assert.Equal(t, "macOS 14.5", info.PrettyName)
}

func TestGetOSInfoRejectsUnsupported(t *testing.T) {
	t.Run("operating system", func(t *testing.T) {
		withPlatform(t, "freebsd", "amd64")
		_, err := GetOSInfo(context.Background())
		assert.True(t, errdefs.IsType(err, errdefs.ErrTypeUnsupportedPlatform))
	})

	t.Run("architecture", func(t *testing.T) {
		withPlatform(t, "linux", "386")
		_, err := GetOSInfo(context.Background())
		assert.True(t, errdefs.IsType(err, errdefs.ErrTypeInvalidArchitecture))
	})
}

func TestGetOSInfoHostFailure(t *testing.T) {
	withPlatform(t, "windows", "amd64")
	hostInfoFunc = func(context.Context) (*host.InfoStat, error) {
		return nil, errors.New("wmi unavailable")
	}

	_, err := GetOSInfo(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wmi unavailable")
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		name string
		info *OSInfo
		want bool
	}{
		{"nil", nil, false},
		{"macOS", &OSInfo{OS: OSDarwin}, true},
		{"windows", &OSInfo{OS: OSWindows}, true},
		{"pop os via family", &OSInfo{OS: OSLinux, Distribution: "pop", Family: "ubuntu"}, true},
		{"fedora", &OSInfo{OS: OSLinux, Distribution: "fedora", Family: "fedora"}, true},
		{"endeavour via family", &OSInfo{OS: OSLinux, Distribution: "endeavouros", Family: "arch"}, true},
		{"alpine", &OSInfo{OS: OSLinux, Distribution: "alpine", Family: "alpine"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSupported(tt.info))
		})
	}
}
