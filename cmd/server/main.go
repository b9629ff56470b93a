package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-dm/internal/app"
	"github.com/vovakirdan/wirechat-dm/internal/auth"
	"github.com/vovakirdan/wirechat-dm/internal/config"
	applog "github.com/vovakirdan/wirechat-dm/internal/log"
	"github.com/vovakirdan/wirechat-dm/internal/store/sqlite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type cliOptions struct {
	configPath string
	overrides  config.Config
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:          "wirechat-dm",
		Short:        "Direct messaging server with live presence",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (default ./config.yaml)")
	root.PersistentFlags().StringVar(&opts.overrides.DatabasePath, "db", "", "SQLite database path")
	root.PersistentFlags().StringVar(&opts.overrides.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.overrides.LogFormat, "log-format", "", "log format: console or json")

	serve := newServeCmd(opts)
	root.AddCommand(serve, newMigrateCmd(opts), newTokenCmd(opts))
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func newServeCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, &cfg, logger)
			if err != nil {
				logger.Error().Err(err).Msg("failed to initialize application")
				return err
			}

			logger.Info().Str("addr", cfg.Addr).Msg("starting wirechat-dm server")
			if err := application.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("server exited with error")
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.overrides.Addr, "addr", "", "HTTP listen address")
	cmd.Flags().DurationVar(&opts.overrides.ReadHeaderTimeout, "read-header-timeout", 0, "HTTP read header timeout")
	cmd.Flags().DurationVar(&opts.overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")
	cmd.Flags().BoolVar(&opts.overrides.CloseSuperseded, "close-superseded", true, "close a connection replaced by a newer one for the same user")
	cmd.Flags().BoolVar(&opts.overrides.SanitizeContent, "sanitize", false, "strip markup from message content")
	cmd.Flags().BoolVar(&opts.overrides.MetricsEnabled, "metrics", true, "expose /metrics")
	return cmd
}

func newMigrateCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			st, err := sqlite.New(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("migrate %s: %w", cfg.DatabasePath, err)
			}
			logger.Info().Str("db_path", cfg.DatabasePath).Msg("database is up to date")
			return st.Close()
		},
	}
}

func newTokenCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "token <username>",
		Short: "Issue a signed credential for an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			st, err := sqlite.New(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			user, err := st.GetUserByUsername(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("lookup %q: %w", args[0], err)
			}

			token, err := auth.NewService(st, app.NewJWTConfig(&cfg)).IssueToken(user)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

// loadConfig resolves configuration (defaults < file < env < flags) and builds the logger.
func loadConfig(cmd *cobra.Command, opts *cliOptions) (config.Config, *zerolog.Logger, error) {
	bootLogger := applog.NewWithWriter(os.Stderr, "info", "console")

	cfg, path, err := config.Load(bootLogger, opts.configPath)
	if err != nil {
		bootLogger.Error().Err(err).Str("path", path).Msg("failed to load config")
		return cfg, nil, err
	}
	cfg.UpdateFrom(opts.overrides)

	flags := cmd.Flags()
	if flags.Changed("close-superseded") {
		cfg.CloseSuperseded = opts.overrides.CloseSuperseded
	}
	if flags.Changed("sanitize") {
		cfg.SanitizeContent = opts.overrides.SanitizeContent
	}
	if flags.Changed("metrics") {
		cfg.MetricsEnabled = opts.overrides.MetricsEnabled
	}

	logger := applog.New(cfg.LogLevel, cfg.LogFormat)
	logger.Debug().Str("config_path", path).Msg("configuration loaded")
	return cfg, logger, nil
}
