package main

import (
	"os"

	"github.com/AvengeMedia/automate/internal/log"
)

var Version = "dev"

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	checkCmd.Flags().StringVar(&installPath, "path", "", "Install directory whose filesystem is checked for free space (default ~/AutoMate)")

	installCmd.Flags().StringVar(&installPath, "path", "", "Install directory (default ~/AutoMate)")
	installCmd.Flags().StringVar(&anthropicKey, "anthropic-key", "", "Anthropic API key, or SKIP (default $ANTHROPIC_API_KEY)")
	installCmd.Flags().StringVar(&openaiKey, "openai-key", "", "OpenAI API key, or SKIP (default $OPENAI_API_KEY)")
	installCmd.Flags().StringVar(&ownerName, "owner", "", "Owner name written to the environment file (default current user)")
	installCmd.Flags().StringVar(&settingsPath, "settings", "", "TOML file overriding repositories, ports and timeouts")
	installCmd.Flags().BoolVar(&plain, "plain", false, "Print progress as log lines instead of the interactive view")

	rootCmd.AddCommand(versionCmd, checkCmd, installDepsCmd, installCmd, validateKeyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
