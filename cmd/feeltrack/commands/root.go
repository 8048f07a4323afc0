package commands

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"feeltrack/config"
	"feeltrack/internal/app"
	"feeltrack/pkg/logger"
)

type globalFlags struct {
	configPath string
	logLevel   string
}

// NewRootCmd builds the feeltrack command tree.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "feeltrack",
		Short: "Mental health companion backend",
		Long: `feeltrack serves the companion chat API, reframes user messages,
and sends supportive check-in notifications during each user's active hours.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// a missing .env is normal outside local development
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "config.yaml", "config file or layered config directory")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override server.log_level (debug, info, warn, error)")

	cmd.AddCommand(
		NewServeCmd(flags),
		NewWorkerCmd(flags),
		NewMigrateCmd(flags),
		NewSweepCmd(flags),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (f *globalFlags) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if f.logLevel != "" {
		cfg.Server.LogLevel = f.logLevel
	}
	return cfg, logger.NewLogger(cfg.Server.LogLevel), nil
}

func (f *globalFlags) buildApp(ctx context.Context) (*app.App, error) {
	cfg, log, err := f.load()
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return a, nil
}
