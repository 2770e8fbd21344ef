package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	service "github.com/okian/datastrike/internal/app"
	"github.com/okian/datastrike/internal/config"
	"github.com/okian/datastrike/internal/domain/kpi"
	"github.com/okian/datastrike/pkg/logger"
)

type configKey struct{}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		dbPath     string
		logLevel   string
	)
	root := &cobra.Command{
		Use:           "datastrike",
		Short:         "Match event KPI engine",
		Long:          "Compute football match KPIs from xlsx or csv event exports.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if configFile != "" {
				if err := os.Setenv(config.EnvConfigFile, configFile); err != nil {
					return fmt.Errorf("set config path: %w", err)
				}
			}
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			// Tables and JSON go to stdout, so logs go to stderr.
			if err := logger.Init(logger.WithOutput(os.Stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
				return fmt.Errorf("failed to initialize logging: %w", err)
			}
			if err := logger.SetLevelString(cfg.LogLevel); err != nil {
				logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
					logger.String("log_level", cfg.LogLevel), logger.Error(err))
				_ = logger.SetLevelString("info")
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
	}
	root.SetContext(context.Background())

	root.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (overrides "+config.EnvConfigFile+")")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "path to the SQLite roster database")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(newServeCmd())
	root.AddCommand(newKPIsCmd())
	root.AddCommand(newPeriodsCmd())
	root.AddCommand(newRosterCmd())
	root.AddCommand(newLoadTestCmd())
	return root
}

func configFrom(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return config.New(ctx)
}

// newService builds a service from configuration. Callers start and stop it.
func newService(cfg *config.Config) *service.Service {
	return service.New(
		service.WithLogger(logger.Named("service")),
		service.WithDBPath(cfg.DBPath),
		service.WithUploadDir(cfg.UploadDir),
		service.WithMaxUploadBytes(cfg.MaxUploadBytes()),
		service.WithMaxConcurrent(cfg.MaxConcurrent),
		service.WithSeedFiles(cfg.SeedTeams, cfg.SeedPlayers),
		service.WithAggregatorOptions(
			kpi.WithParallel(cfg.ParallelViews),
			kpi.WithProgressiveThreshold(cfg.ProgressiveThreshold),
			kpi.WithTopN(cfg.ProgressiveTopN),
		),
	)
}

// startService builds and starts a service for a one-shot command.
func startService(ctx context.Context) (*service.Service, error) {
	svc := newService(configFrom(ctx))
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start service: %w", err)
	}
	return svc, nil
}
