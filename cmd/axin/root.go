package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/axin/api"
	"github.com/kbukum/axin/config"
	"github.com/kbukum/axin/logger"
)

// GlobalFlags are the persistent flags of every command.
type GlobalFlags struct {
	ConfigFile string
	EnvFile    string
	LogLevel   string
	BaseURL    string
}

var (
	globalFlags GlobalFlags
	appConfig   Config
)

var rootCmd = &cobra.Command{
	Use:   "axin",
	Short: "Client for the axin AI agent service",
	Long: `axin talks to the axin AI agent backend.

It sends chat messages to the plan app, either waiting for the whole reply or
streaming it as Server-Sent Events, runs the manus agent, and can serve a
local stand-in backend for development.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.ConfigFile, "config", "", "config file (default: searched next to the binary)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.EnvFile, "env-file", "", ".env file to load")
	rootCmd.PersistentFlags().StringVar(&globalFlags.LogLevel, "log-level", "", "log level: trace|debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&globalFlags.BaseURL, "base-url", "", "backend base URL (default "+api.DefaultBaseURL+")")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(manusCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(chatIDCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads file and env config, applies flag overrides and sets up
// the global logger.
func loadConfig() error {
	var opts []config.LoaderOption
	if globalFlags.ConfigFile != "" {
		opts = append(opts, config.WithConfigFile(globalFlags.ConfigFile))
	}
	if globalFlags.EnvFile != "" {
		opts = append(opts, config.WithEnvFile(globalFlags.EnvFile))
	}

	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return err
	}
	if globalFlags.LogLevel != "" {
		cfg.Logging.Level = globalFlags.LogLevel
	}
	if globalFlags.BaseURL != "" {
		cfg.API.BaseURL = globalFlags.BaseURL
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Init(cfg.Logging)
	logger.RegisterDefaults("api", "devserver")
	appConfig = cfg
	return nil
}

// newGateway builds the backend client from the loaded config.
func newGateway() (*api.Client, error) {
	return api.New(appConfig.API, logger.Get("api"))
}
