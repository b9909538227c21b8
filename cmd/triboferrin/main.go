package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/triboferrin/triboferrin/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "triboferrin",
	Short:   "Discord voice companion bot",
	Long: `Triboferrin is a Discord bot that joins voice channels to relay,
transcribe, and summarize conversations.

Configuration is resolved once at startup from defaults, an optional
TOML file, TRIBOFERRIN_* environment variables, and CLI flags, in that
order of precedence.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
	SilenceUsage: true,
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
