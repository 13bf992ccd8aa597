package osinfo

import "slices"

// SupportedLinuxFamilies lists the distribution families that have a
// package-manager strategy.
var SupportedLinuxFamilies = []string{
	"debian",
	"ubuntu",
	"fedora",
	"rhel",
	"arch",
}

// IsSupported reports whether dependencies can be installed automatically on info.
func IsSupported(info *OSInfo) bool {
	if info == nil {
		return false
	}
	switch info.OS {
	case OSDarwin, OSWindows:
		return true
	case OSLinux:
		return slices.Contains(SupportedLinuxFamilies, info.Family) ||
			slices.Contains(SupportedLinuxFamilies, info.Distribution)
	default:
		return false
	}
}
