package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgPath string
	devMode bool
)

var rootCmd = &cobra.Command{
	Use:   "hhbot",
	Short: "hh.ru vacancy notifier for Telegram",
	Long:  "hhbot registers Telegram users for a position and an optional city and pushes new hh.ru listings to them every hour.",
	// Running the binary without a subcommand starts the bot.
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: HHBOT_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "console logs and no PII redaction")
}

// configPath resolves the config file: explicit flag > HHBOT_CONFIG > ./config.yaml.
func configPath() string {
	if cfgPath != "" {
		return cfgPath
	}
	if env := os.Getenv("HHBOT_CONFIG"); env != "" {
		return env
	}
	return "config.yaml"
}
