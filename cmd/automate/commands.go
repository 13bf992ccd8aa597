package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AvengeMedia/automate/internal/apikey"
	"github.com/AvengeMedia/automate/internal/cmdrunner"
	"github.com/AvengeMedia/automate/internal/config"
	"github.com/AvengeMedia/automate/internal/deps"
	"github.com/AvengeMedia/automate/internal/installer"
	"github.com/AvengeMedia/automate/internal/log"
	"github.com/AvengeMedia/automate/internal/osinfo"
	"github.com/AvengeMedia/automate/internal/pkgmanager"
	"github.com/AvengeMedia/automate/internal/tui"
	"github.com/spf13/cobra"
)

var (
	debug        bool
	installPath  string
	anthropicKey string
	openaiKey    string
	ownerName    string
	settingsPath string
	plain        bool
)

var rootCmd = &cobra.Command{
	Use:           "automate",
	Short:         "AutoMate local stack installer",
	Long:          "AutoMate installer\n\nChecks the host, installs missing system dependencies and brings up\nAutoChat, AutoHub and AutoMem with their databases on this machine.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetDebug(debug)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("AutoMate installer v%s\n", Version)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether this machine can run AutoMate",
	RunE:  runCheck,
}

var installDepsCmd = &cobra.Command{
	Use:   "install-deps",
	Short: "Install missing system dependencies with the native package manager",
	RunE:  runInstallDeps,
}

var validateKeyCmd = &cobra.Command{
	Use:       "validate-key <anthropic|openai> <key>",
	Short:     "Check an API key against the provider",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{apikey.ProviderAnthropic, apikey.ProviderOpenAI},
	RunE:      runValidateKey,
}

func resolveInstallPath() (string, error) {
	if installPath == "" {
		return config.DefaultInstallPath(), nil
	}
	return filepath.Abs(installPath)
}

func newProber(runner cmdrunner.Runner, logChan chan<- string) (*deps.Prober, error) {
	path, err := resolveInstallPath()
	if err != nil {
		return nil, err
	}
	return deps.NewProber(runner, deps.SystemHost{}, path, logChan), nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	prober, err := newProber(cmdrunner.NewRealRunner(), nil)
	if err != nil {
		return err
	}

	checks := prober.Probe(cmd.Context())
	fmt.Print(tui.RenderChecklist(checks))

	if !deps.AllRequiredPassed(checks) {
		return errors.New("system requirements not met")
	}
	return nil
}

func runInstallDeps(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	info, err := osinfo.GetOSInfo(ctx)
	if err != nil {
		return err
	}
	if !osinfo.IsSupported(info) {
		return fmt.Errorf("%s is not supported", info.PrettyName)
	}

	logChan := make(chan string, 100)
	logDone := make(chan struct{})
	go func() {
		defer close(logDone)
		for line := range logChan {
			log.Info(line)
		}
	}()

	// sudo and the Homebrew installer may prompt
	runner := cmdrunner.NewInteractiveRunner()
	pm, err := pkgmanager.NewPackageManager(info, runner, logChan)
	if err != nil {
		close(logChan)
		<-logDone
		return err
	}
	prober, err := newProber(runner, nil)
	if err != nil {
		close(logChan)
		<-logDone
		return err
	}

	log.Info("installing dependencies", "os", info.PrettyName, "manager", pm.Name())
	err = installer.NewInstaller(prober, pm, logChan).Install(ctx, nil)
	close(logChan)
	<-logDone
	if err != nil {
		return err
	}

	checks := prober.Probe(ctx)
	fmt.Print(tui.RenderChecklist(checks))
	if !deps.AllRequiredPassed(checks) {
		return errors.New("some requirements are still missing")
	}
	return nil
}

func runValidateKey(cmd *cobra.Command, args []string) error {
	ok, err := apikey.NewValidator().Validate(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s rejected the key", args[0])
	}
	fmt.Println("Key is valid")
	return nil
}

func keyOrEnv(flag, env string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(env)
}
