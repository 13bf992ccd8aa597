package cmdrunner

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/AvengeMedia/automate/internal/log"
)

// startGrace is how long a detached child must stay up to count as started.
var startGrace = 500 * time.Millisecond

// Detach starts c in its own session with output appended to logPath. It
// fails if the child exits within startGrace; otherwise the child is reaped
// in the background whenever it ends.
func (r *RealRunner) Detach(c Command, logPath string) (int, error) {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.SysProcAttr = detachedAttrs()

	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			return 0, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return 0, fmt.Errorf("failed to open service log: %w", err)
		}
		// The child keeps its own copy of the descriptor.
		defer f.Close()
		cmd.Stdout = f
		cmd.Stderr = f
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", c.Name, err)
	}

	pid := cmd.Process.Pid
	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	select {
	case err := <-exited:
		if err == nil {
			err = fmt.Errorf("exit status 0")
		}
		return 0, fmt.Errorf("%s exited immediately after start: %w", c.Name, err)
	case <-time.After(startGrace):
	}

	log.Debug("detached process", "cmd", c.String(), "pid", pid, "log", logPath)
	return pid, nil
}
