package commands

import (
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	contracts "feeltrack/contracts/mq"
	"feeltrack/internal/mqhandler"
	"feeltrack/pkg/mq"
	"feeltrack/pkg/util"
)

const (
	sweepQueue      = "notification.sweep.q"
	maxSweepRetries = 3
	retryKeyTTL     = 24 * time.Hour
)

func NewWorkerCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume message-created events and run notification sweeps",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := flags.buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			defer a.Logger.Sync()

			if a.Config.MQ.URL == "" || a.Publisher == nil {
				return errors.New("worker requires a reachable broker (mq.url)")
			}

			// 1. Dead letter queue
			if err := a.Publisher.EnsureDLQ(contracts.RoutingKeyMessageCreated); err != nil {
				return err
			}

			// 2. Consumer
			a.Logger.Info("Initializing sweep consumer", zap.String("queue", sweepQueue))
			consumer, err := mq.NewConsumer(a.Config.MQ.URL, sweepQueue, contracts.RoutingKeyMessageCreated, a.Logger)
			if err != nil {
				return err
			}
			defer consumer.Close()

			handler := mqhandler.NewMessageCreatedHandler(a.Scheduler, a.Logger)
			consumer.SetHandler(handler.HandleMessageCreated)
			consumer.SetDeadLetter(a.Publisher)
			consumer.SetRetryLimit(util.NewRetryCounter(a.Redis, retryKeyTTL), maxSweepRetries)

			a.Logger.Info("Worker is ready to process messages")
			return consumer.StartConsuming(ctx)
		},
	}
}
