package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Dispatcher republishes pending events from a Source until they are marked sent.
type Dispatcher struct {
	source    Source
	publisher Publisher
	logger    *zap.Logger
	interval  time.Duration
	batchSize int
}

func NewDispatcher(source Source, publisher Publisher, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		source:    source,
		publisher: publisher,
		logger:    logger,
		interval:  time.Minute,
		batchSize: 100,
	}
}

func (d *Dispatcher) WithInterval(interval time.Duration) *Dispatcher {
	d.interval = interval
	return d
}

func (d *Dispatcher) WithBatchSize(batchSize int) *Dispatcher {
	d.batchSize = batchSize
	return d
}

// Start blocks, dispatching one batch per interval until ctx is done.
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("Starting outbox dispatcher",
		zap.Duration("interval", d.interval),
		zap.Int("batch_size", d.batchSize),
	)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Outbox dispatcher stopped")
			return
		case <-ticker.C:
			d.DispatchPending(ctx)
		}
	}
}

// DispatchPending publishes one batch and returns how many events went out. An event that
// fails to publish stays pending for the next round.
func (d *Dispatcher) DispatchPending(ctx context.Context) int {
	events, err := d.source.PendingEvents(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("Failed to get pending events", zap.Error(err))
		return 0
	}
	if len(events) == 0 {
		return 0
	}

	d.logger.Debug("Processing pending events", zap.Int("count", len(events)))

	sent := 0
	for _, event := range events {
		if err := d.publisher.Publish(event.RoutingKey, event.Payload); err != nil {
			d.logger.Error("Failed to publish event",
				zap.Int("event_id", event.ID),
				zap.String("routing_key", event.RoutingKey),
				zap.Error(err),
			)
			continue
		}

		if err := d.source.MarkSent(ctx, event.ID); err != nil {
			d.logger.Error("Failed to mark event as sent",
				zap.Int("event_id", event.ID),
				zap.Error(err),
			)
			continue
		}
		sent++
	}
	return sent
}
