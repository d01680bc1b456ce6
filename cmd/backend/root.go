package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"notesbuzz/internal/config"
	"notesbuzz/internal/logging"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "notesbuzz",
		Short:         "NotesBuzz file-sharing backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a TOML config file (default $"+config.EnvConfigFile+")")
	flags.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides "+config.EnvLogLevel+")")
	flags.StringVar(&a.logFormat, "log-format", "", "text or json (overrides "+config.EnvLogFormat+")")

	cmd.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// load resolves configuration (defaults, file, .env, environment, flags)
// and builds the logger.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	slog.SetDefault(logger)

	a.cfg = cfg
	a.logger = logger
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Needs no configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "notesbuzz %s\n", version)
			return err
		},
	}
}
