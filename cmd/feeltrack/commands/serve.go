package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func NewServeCmd(flags *globalFlags) *cobra.Command {
	var withScheduler bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API. Unless --scheduler=false is given, the periodic
supportive notification sweep runs in the same process.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := flags.buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			defer a.Logger.Sync()

			srv := &http.Server{
				Addr:              ":" + a.Config.Server.Port,
				Handler:           a.Router().Engine,
				ReadHeaderTimeout: 10 * time.Second,
			}

			if withScheduler {
				go a.Scheduler.Run(ctx, a.Config.Notification.SweepInterval)
				if a.Outbox != nil {
					go a.Outbox.Start(ctx)
				}
			}

			errCh := make(chan error, 1)
			go func() {
				a.Logger.Info("Server starting", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			a.Logger.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.Logger.Error("Server forced to shutdown", zap.Error(err))
			}
			if err := a.Trigger.Wait(shutdownCtx); err != nil {
				a.Logger.Warn("Notification trigger still running at shutdown", zap.Error(err))
			}

			a.Logger.Info("Server exited")
			return nil
		},
	}

	cmd.Flags().BoolVar(&withScheduler, "scheduler", true, "run the periodic notification sweep in this process")
	return cmd
}
