package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/triboferrin/triboferrin/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and scaffold configuration",
}

var showSecrets bool

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective merged configuration",
	Long: `Show the configuration as resolved from defaults, the config file,
environment variables, and flags.

The Discord token is redacted unless --show-secrets is given.`,
	RunE: runConfigShow,
}

var (
	initForce   bool
	initNoInput bool
)

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter configuration file",
	Long: `Write a starter configuration file with the default values.

Prompts for a Discord token and API URL; pass --no-input to skip the
prompts. Defaults to ./` + config.DefaultConfigFile + ` when no path is given.`,
	Args: cobra.MaximumNArgs(1),
	// init must work before any (possibly broken or missing) config
	// exists, so it skips the root command's resolution step.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(nil)
		return nil
	},
	RunE: runConfigInit,
}

func init() {
	configShowCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print the Discord token in clear text")
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
	configInitCmd.Flags().BoolVar(&initNoInput, "no-input", false, "do not prompt; write defaults only")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	shown := *cfg
	if !showSecrets && shown.DiscordToken != "" {
		shown.DiscordToken = "[REDACTED]"
	}

	if err := toml.NewEncoder(cmd.OutOrStdout()).Encode(shown); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultConfigFile
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	starter := config.Default()
	if !initNoInput {
		token, apiURL, err := promptStarterValues()
		if err != nil {
			return err
		}
		starter.DiscordToken = token
		starter.DiscordAPIURL = apiURL
	}

	// 0600: the file may hold the bot token.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := toml.NewEncoder(f).Encode(starter); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func promptStarterValues() (token, apiURL string, err error) {
	tokenPrompt := promptui.Prompt{
		Label: "Discord bot token (blank to fill in later)",
		Mask:  '*',
	}
	token, err = tokenPrompt.Run()
	if err != nil {
		return "", "", fmt.Errorf("prompt token: %w", err)
	}

	urlPrompt := promptui.Prompt{
		Label: "Discord API base URL (blank for the default endpoint)",
		Validate: func(s string) error {
			if s == "" {
				return nil
			}
			if _, err := url.ParseRequestURI(s); err != nil {
				return errors.New("must be a valid URL")
			}
			return nil
		},
	}
	apiURL, err = urlPrompt.Run()
	if err != nil {
		return "", "", fmt.Errorf("prompt API URL: %w", err)
	}

	return token, apiURL, nil
}
