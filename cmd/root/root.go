// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"

	"fintrack/internal/config"
	"fintrack/internal/container"
	"fintrack/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags shared by every command
type CommonFlags struct {
	ConfigFile string
	LogLevel   string
	LogFormat  string
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.GetLogger()

	// AppConfig is loaded by PersistentPreRunE before any subcommand runs
	AppConfig *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "fintrack",
		Short: "A personal finance tracker that categorizes transactions automatically.",
		Long: `fintrack stores bank transactions, predicts their spending category with a
TF-IDF + Naive Bayes text classifier and reports income, expenses and budgets
from the command line or over an HTTP API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return Setup()
		},
	}

	// SharedFlags holds the persistent flag values
	SharedFlags = CommonFlags{}
)

func init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.ConfigFile, "config", "c", "", "Config file (default searches $HOME/.fintrack, .fintrack and .)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogFormat, "log-format", "", "Log format override (text or json)")
}

// Setup loads .env and the configuration, applies flag overrides and
// installs the configured logger.
func Setup() error {
	config.LoadEnv()

	var (
		cfg *config.Config
		err error
	)
	if SharedFlags.ConfigFile != "" {
		cfg, err = config.InitializeConfigFile(SharedFlags.ConfigFile)
	} else {
		cfg, err = config.InitializeConfig()
	}
	if err != nil {
		return err
	}

	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = SharedFlags.LogLevel
	}
	if SharedFlags.LogFormat != "" {
		cfg.Log.Format = SharedFlags.LogFormat
	}

	AppConfig = cfg
	Log = cfg.NewLogger()
	logging.SetLogger(Log)
	return nil
}

// WithContainer opens the application container for the duration of fn.
func WithContainer(cmd *cobra.Command, fn func(ctx context.Context, c *container.Container) error) error {
	if AppConfig == nil {
		return fmt.Errorf("configuration not loaded")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c, err := container.NewContainer(ctx, AppConfig, container.WithLogger(Log))
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			Log.WithError(err).Warn("Failed to close container")
		}
	}()
	return fn(ctx, c)
}
