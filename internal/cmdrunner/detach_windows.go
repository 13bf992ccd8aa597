//go:build windows

package cmdrunner

import (
	"syscall"

	"golang.org/x/sys/windows"
)

func detachedAttrs() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP | windows.DETACHED_PROCESS,
	}
}
