package pkgmanager

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AvengeMedia/automate/internal/cmdrunner"
	"github.com/AvengeMedia/automate/internal/deps"
)

var geteuid = os.Geteuid

type baseInstaller struct {
	name     string
	binary   string
	runner   cmdrunner.Runner
	logChan  chan<- string
	packages map[string][]string
}

func (b *baseInstaller) Name() string {
	return b.name
}

func (b *baseInstaller) Available(ctx context.Context) bool {
	_, err := cmdrunner.Output(ctx, b.runner, cmdrunner.Command{Name: b.binary, Args: []string{"--version"}})
	return err == nil
}

func (b *baseInstaller) Packages(checkName string) []string {
	return b.packages[checkName]
}

func (b *baseInstaller) cannotBootstrap() error {
	return fmt.Errorf("%s is not available and cannot be bootstrapped; install it with your distribution tools", b.binary)
}

// privileged prefixes sudo unless already running as root.
func (b *baseInstaller) privileged(name string, args ...string) cmdrunner.Command {
	if geteuid() == 0 {
		return cmdrunner.Command{Name: name, Args: args}
	}
	return cmdrunner.Command{Name: "sudo", Args: append([]string{name}, args...)}
}

func (b *baseInstaller) run(ctx context.Context, cmd cmdrunner.Command) error {
	b.log(fmt.Sprintf("$ %s", cmd.String()))
	out, err := cmdrunner.Output(ctx, b.runner, cmd)
	if out != "" {
		b.log(out)
	}
	return err
}

// runWithProgress reports advancing progress between start and end while cmd runs.
func (b *baseInstaller) runWithProgress(ctx context.Context, cmd cmdrunner.Command, packages []string, progressFunc ProgressFunc, start, end float64) error {
	if progressFunc == nil {
		return b.run(ctx, cmd)
	}

	progressDone := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		currentProgress := start
		ticker := time.NewTicker(300 * time.Millisecond)
		defer ticker.Stop()
		for currentProgress < end {
			select {
			case <-progressDone:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				currentProgress += 0.03
				progressFunc("", currentProgress, fmt.Sprintf("Installing %d packages...", len(packages)), false)
			}
		}
	}()

	err := b.run(ctx, cmd)
	close(progressDone)
	<-exited
	return err
}

func (b *baseInstaller) log(message string) {
	if b.logChan != nil {
		b.logChan <- message
	}
}

func report(progressFunc ProgressFunc, progress float64, step string, complete bool) {
	if progressFunc != nil {
		progressFunc("", progress, step, complete)
	}
}

// linuxPackages is shared by managers whose package names only differ in a few places.
func linuxPackages(node, docker, compose, python []string) map[string][]string {
	return map[string][]string{
		deps.CheckGit:     {"git"},
		deps.CheckNode:    node,
		deps.CheckDocker:  docker,
		deps.CheckCompose: compose,
		deps.CheckPython:  python,
	}
}

func joinPackages(packages []string) string {
	return strings.Join(packages, ", ")
}
