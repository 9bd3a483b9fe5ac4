package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vytor/flashdeck/internal/config"
	"github.com/vytor/flashdeck/internal/deckclient"
	"github.com/vytor/flashdeck/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:          "study <deck-id>",
	Short:        "Study a flashdeck deck in the terminal",
	Long:         "study runs a spaced-repetition session against a flashdeck server, saving progress as you go.",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStudy(cmd, args[0])
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", defaultConfigPath(), "path to the YAML config file")
	rootCmd.PersistentFlags().Bool("verbose", false, "log debug output to stderr")
	config.ClientFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(restartCmd)
}

// defaultConfigPath is $XDG_CONFIG_HOME/flashdeck/study.yaml or its platform equivalent.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "flashdeck", "study.yaml")
}

// setup loads the layered config and builds the deck client for cmd.
func setup(cmd *cobra.Command) (config.ClientConfig, *deckclient.Client, error) {
	level := logger.WARN
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = logger.DEBUG
	}
	logger.SetDefault(logger.New(logger.WithLevel(level), logger.WithOutput(cmd.ErrOrStderr())))

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadClient(path, cmd.Flags())
	if err != nil {
		return config.ClientConfig{}, nil, err
	}
	client := deckclient.New(cfg.Server, cfg.Token, deckclient.WithTimeout(cfg.Timeout))
	return cfg, client, nil
}
