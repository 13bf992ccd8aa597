package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/AvengeMedia/automate/internal/cmdrunner"
	"github.com/AvengeMedia/automate/internal/config"
	"github.com/AvengeMedia/automate/internal/envfile"
	"github.com/AvengeMedia/automate/internal/log"
	"github.com/AvengeMedia/automate/internal/osinfo"
	"github.com/AvengeMedia/automate/internal/readiness"
	"github.com/spf13/afero"
)

// RepoAcquirer places one sub-project at dest.
type RepoAcquirer interface {
	Acquire(ctx context.Context, repo config.Repository, dest string) error
}

type Orchestrator struct {
	fs       afero.Fs
	runner   cmdrunner.Runner
	repos    RepoAcquirer
	waiter   readiness.Waiter
	settings config.Settings
	goos     string
	logChan  chan<- string
}

func New(fs afero.Fs, runner cmdrunner.Runner, repos RepoAcquirer, waiter readiness.Waiter, settings config.Settings, logChan chan<- string) *Orchestrator {
	return &Orchestrator{
		fs:       fs,
		runner:   runner,
		repos:    repos,
		waiter:   waiter,
		settings: settings,
		goos:     runtime.GOOS,
		logChan:  logChan,
	}
}

// Run validates cfg and executes the installation plan.
func (o *Orchestrator) Run(ctx context.Context, cfg config.InstallConfig, events chan<- ProgressEvent) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := o.settings.Validate(); err != nil {
		return err
	}

	log.Info("starting installation", "path", cfg.InstallPath)
	return Execute(ctx, o.Plan(cfg), events)
}

// Plan returns the installation steps in execution order.
func (o *Orchestrator) Plan(cfg config.InstallConfig) []Step {
	s := o.settings
	chat, hub, mem := s.AutoChat, s.AutoHub, s.AutoMem
	dir := func(r config.Repository) string { return filepath.Join(cfg.InstallPath, r.Dir) }

	steps := []Step{
		{Name: "Creating install directory", Action: func(ctx context.Context) error {
			return o.fs.MkdirAll(filepath.Join(cfg.InstallPath, "logs"), 0o755)
		}},
	}

	for _, r := range s.Repositories() {
		r := r
		steps = append(steps, Step{
			Name: "Cloning " + r.Name,
			Action: func(ctx context.Context) error {
				return o.repos.Acquire(ctx, r, dir(r))
			},
		})
	}

	steps = append(steps,
		Step{Name: "Generating .env configuration", Action: func(ctx context.Context) error {
			path, err := envfile.Write(o.fs, cfg.InstallPath, cfg, s)
			if err == nil {
				o.log(fmt.Sprintf("Wrote %s", path))
			}
			return err
		}},
		Step{Name: fmt.Sprintf("Installing %s dependencies (npm)", chat.Name), Action: func(ctx context.Context) error {
			return o.exec(ctx, dir(chat), "npm", "install")
		}},
		Step{Name: fmt.Sprintf("Installing %s dependencies (npm)", hub.Name), Action: func(ctx context.Context) error {
			return o.exec(ctx, dir(hub), "npm", "install")
		}},
		Step{Name: fmt.Sprintf("Installing %s dependencies (pip)", mem.Name), Action: func(ctx context.Context) error {
			return o.exec(ctx, dir(mem), o.pip(), "install", "-r", "requirements.txt")
		}},
		Step{Name: "Starting Docker containers (FalkorDB, Qdrant)", Action: func(ctx context.Context) error {
			return o.startContainers(ctx, dir(mem))
		}},
		Step{Name: "Initializing databases", Action: o.initDatabases},
		Step{Name: fmt.Sprintf("Starting %s server", hub.Name), Action: func(ctx context.Context) error {
			return o.startService(ctx, cfg.InstallPath, hub, s.Ports.AutoHub, "npm", "start")
		}},
		Step{Name: fmt.Sprintf("Starting %s UI", chat.Name), Action: func(ctx context.Context) error {
			return o.startService(ctx, cfg.InstallPath, chat, s.Ports.AutoChat, "npm", "run", "dev")
		}},
	)

	return steps
}

func (o *Orchestrator) startContainers(ctx context.Context, dir string) error {
	if err := VerifyCompose(o.fs, dir, "falkordb", "qdrant"); err != nil {
		return err
	}
	if err := o.exec(ctx, dir, "docker", "compose", "up", "-d"); err != nil {
		return err
	}
	return o.waitForStores(ctx)
}

func (o *Orchestrator) initDatabases(ctx context.Context) error {
	if settle := o.settings.DatabaseSettle(); settle > 0 {
		o.log(fmt.Sprintf("Waiting %s for databases to initialize...", settle))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(settle):
		}
	}
	return o.waitForStores(ctx)
}

func (o *Orchestrator) waitForStores(ctx context.Context) error {
	for _, port := range []int{o.settings.Ports.FalkorDB, o.settings.Ports.Qdrant} {
		if err := o.waiter.WaitForReady(ctx, o.settings.TCPEndpoint(port), o.settings.ReadinessTimeout()); err != nil {
			return err
		}
	}
	return nil
}

// startService launches a long-running process with the generated .env in
// its environment, then waits for its HTTP port. The process is not tracked
// after it has started.
func (o *Orchestrator) startService(ctx context.Context, installPath string, r config.Repository, port int, name string, args ...string) error {
	env, err := envfile.Load(o.fs, filepath.Join(installPath, envfile.FileName))
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}

	cmd := cmdrunner.Command{Name: name, Args: args, Dir: filepath.Join(installPath, r.Dir), Env: env}
	logPath := filepath.Join(installPath, "logs", r.Dir+".log")

	pid, err := o.runner.Detach(cmd, logPath)
	if err != nil {
		return err
	}
	log.Info("service started", "service", r.Name, "pid", pid, "log", logPath)
	o.log(fmt.Sprintf("%s started (pid %d), logging to %s", r.Name, pid, logPath))

	return o.waiter.WaitForReady(ctx, o.settings.HTTPEndpoint(port), o.settings.ReadinessTimeout())
}

func (o *Orchestrator) exec(ctx context.Context, dir, name string, args ...string) error {
	cmd := cmdrunner.Command{Name: name, Args: args, Dir: dir}
	o.log(fmt.Sprintf("$ %s", cmd.String()))
	out, err := cmdrunner.Output(ctx, o.runner, cmd)
	if out != "" {
		log.Debug("command output", "cmd", cmd.String(), "output", out)
	}
	return err
}

func (o *Orchestrator) pip() string {
	if o.goos == osinfo.OSWindows {
		return "pip"
	}
	return "pip3"
}

func (o *Orchestrator) log(message string) {
	if o.logChan != nil {
		o.logChan <- message
	}
}
