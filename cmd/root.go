// Package cmd implements the command-line interface for newsclip.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/newsclip/newsclip/internal/config"
	"github.com/newsclip/newsclip/internal/logger"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "newsclip",
		Short: "Scheduled web content ingestion service",
		Long:  `Captures articles from configured media sources on a schedule.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	_ = rootCmd.ParseFlags(os.Args[1:])

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	if err := config.InitializeViper(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	if debug {
		viper.Set("logger.level", "debug")
	}

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(runCommand())
	rootCmd.AddCommand(sourcesCommand())
	rootCmd.AddCommand(versionCommand())
}

// loadConfig loads the application config and builds the process logger.
func loadConfig() (*config.Config, logger.Interface, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return cfg, log, nil
}
