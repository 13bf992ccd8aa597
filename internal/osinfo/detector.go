package osinfo

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/AvengeMedia/automate/internal/errdefs"
	"github.com/shirou/gopsutil/v3/host"
)

// Supported operating systems. Linux support further depends on the distribution.
const (
	OSDarwin  = "darwin"
	OSLinux   = "linux"
	OSWindows = "windows"
)

// OSInfo describes the host. Family groups related Linux distributions,
// e.g. "debian" for ubuntu, and is empty elsewhere unless gopsutil reports one.
type OSInfo struct {
	OS           string
	Distribution string
	Family       string
	Version      string
	VersionID    string
	PrettyName   string
	Architecture string
}

var getOsFunc = getGoos
var getArchFunc = getGoarch
var hostInfoFunc = host.InfoWithContext

func getGoos() string {
	return runtime.GOOS
}

func getGoarch() string {
	return runtime.GOARCH
}

// GetOSInfo describes the host. Only darwin, linux and windows on amd64 or
// arm64 are accepted.
func GetOSInfo(ctx context.Context) (*OSInfo, error) {
	goos := getOsFunc()
	switch goos {
	case OSDarwin, OSLinux, OSWindows:
	default:
		return nil, errdefs.NewCustomError(errdefs.ErrTypeUnsupportedPlatform, fmt.Sprintf("Unsupported operating system: %s", goos))
	}

	arch := getArchFunc()
	if arch != "amd64" && arch != "arm64" {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeInvalidArchitecture, fmt.Sprintf("Only amd64 and arm64 are supported, but I found %s", arch))
	}

	info := &OSInfo{
		OS:           goos,
		Architecture: arch,
	}

	if goos == OSLinux {
		if err := detectLinuxDistro(info); err == nil {
			return info, nil
		}
	}

	hi, err := hostInfoFunc(ctx)
	if err != nil {
		return nil, errdefs.WrapCustomError(errdefs.ErrTypeGeneric, "Failed to read host information", err)
	}

	info.Distribution = hi.Platform
	info.Family = hi.PlatformFamily
	info.VersionID = hi.PlatformVersion
	info.Version = hi.PlatformVersion
	info.PrettyName = prettyName(goos, hi.Platform, hi.PlatformVersion)
	return info, nil
}

func prettyName(goos, platform, version string) string {
	switch goos {
	case OSDarwin:
		return strings.TrimSpace("macOS " + version)
	case OSWindows:
		return strings.TrimSpace("Windows " + version)
	default:
		return strings.TrimSpace(platform + " " + version)
	}
}
