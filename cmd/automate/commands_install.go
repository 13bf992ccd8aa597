package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/AvengeMedia/automate/internal/cmdrunner"
	"github.com/AvengeMedia/automate/internal/config"
	"github.com/AvengeMedia/automate/internal/log"
	"github.com/AvengeMedia/automate/internal/orchestrator"
	"github.com/AvengeMedia/automate/internal/readiness"
	"github.com/AvengeMedia/automate/internal/repo"
	"github.com/AvengeMedia/automate/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install and start the AutoMate stack",
	Long:  "Fetch AutoChat, AutoHub and AutoMem, generate their .env, install their\ndependencies, start FalkorDB and Qdrant and launch the services.",
	RunE:  runInstall,
}

func runInstall(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return err
	}

	path, err := resolveInstallPath()
	if err != nil {
		return err
	}
	owner := ownerName
	if owner == "" {
		owner = config.DefaultOwnerName()
	}
	cfg := config.InstallConfig{
		InstallPath:  path,
		AnthropicKey: keyOrEnv(anthropicKey, "ANTHROPIC_API_KEY"),
		OpenAIKey:    keyOrEnv(openaiKey, "OPENAI_API_KEY"),
		OwnerName:    owner,
	}
	if !config.HasKey(cfg.AnthropicKey) {
		log.Warn("no Anthropic API key given; AutoChat will need one in .env before it can answer")
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logChan := make(chan string, 100)
	fs := afero.NewOsFs()
	acquirer := repo.NewAcquirer(fs, settings.BundledReposDir, repo.NewGitCloner(logChan), logChan)
	orch := orchestrator.New(fs, cmdrunner.NewRealRunner(), acquirer, readiness.NewPoller(), settings, logChan)

	events := make(chan orchestrator.ProgressEvent)
	done := make(chan error, 1)
	go func() {
		done <- orch.Run(ctx, cfg, events)
	}()

	if plain {
		return followPlain(events, logChan, done)
	}
	return followTUI(cfg.InstallPath, events, logChan, done, cancel)
}

func followPlain(events <-chan orchestrator.ProgressEvent, logChan <-chan string, done <-chan error) error {
	for {
		select {
		case ev := <-events:
			fmt.Printf("[%3d%%] %s\n", ev.Percent, ev.Message)
		case line := <-logChan:
			log.Info(line)
		case err := <-done:
			drainLogs(logChan)
			return err
		}
	}
}

func drainLogs(logChan <-chan string) {
	for {
		select {
		case line := <-logChan:
			log.Info(line)
		default:
			return
		}
	}
}

func followTUI(path string, events <-chan orchestrator.ProgressEvent, logChan <-chan string, done <-chan error, cancel context.CancelFunc) error {
	// the alt screen owns the terminal until the program exits
	logFile, err := openInstallerLog(path)
	if err == nil {
		log.SetOutput(logFile)
		defer func() {
			log.SetOutput(os.Stderr)
			logFile.Close()
		}()
	}

	model := tui.NewModel(path, events, logChan, done, cancel)
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	if m, ok := final.(tui.Model); ok {
		if m.Err() != nil {
			return m.Err()
		}
		if m.Interrupted() {
			return context.Canceled
		}
	}
	return nil
}

func openInstallerLog(installPath string) (*os.File, error) {
	dir := filepath.Join(installPath, "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "installer.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
