package deps

import (
	"context"
	"os"
	"path/filepath"

	"github.com/AvengeMedia/automate/internal/osinfo"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHost reads metrics from the running machine.
type SystemHost struct{}

func (SystemHost) OSInfo(ctx context.Context) (*osinfo.OSInfo, error) {
	return osinfo.GetOSInfo(ctx)
}

func (SystemHost) TotalMemory(ctx context.Context) (uint64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return vm.Total, nil
}

// FreeDisk reports free bytes on the filesystem holding path, walking up to
// the nearest directory that exists.
func (SystemHost) FreeDisk(ctx context.Context, path string) (uint64, error) {
	usage, err := disk.UsageWithContext(ctx, existingAncestor(path))
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}

func existingAncestor(path string) string {
	p := filepath.Clean(path)
	for {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(p)
		if parent == p {
			return p
		}
		p = parent
	}
}
