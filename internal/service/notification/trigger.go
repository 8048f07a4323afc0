package notification

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	contracts "feeltrack/contracts/mq"
	"feeltrack/pkg/logger"
)

type Sweeper interface {
	Sweep(ctx context.Context) (SweepResult, error)
}

// BackgroundTrigger starts a sweep without holding up the caller. Wait drains the
// work it started.
type BackgroundTrigger interface {
	Trigger(ctx context.Context, userID int)
	Wait(ctx context.Context) error
}

var (
	_ BackgroundTrigger = (*AsyncTrigger)(nil)
	_ BackgroundTrigger = (*MQTrigger)(nil)
)

// AsyncTrigger runs a sweep in the background after each chat turn. Triggers that
// arrive while a sweep is running are folded into it.
type AsyncTrigger struct {
	sweeper Sweeper
	timeout time.Duration
	logger  *zap.Logger

	running atomic.Bool
	wg      sync.WaitGroup
}

func NewAsyncTrigger(sweeper Sweeper, timeout time.Duration, logger *zap.Logger) *AsyncTrigger {
	return &AsyncTrigger{sweeper: sweeper, timeout: timeout, logger: logger}
}

// Trigger returns immediately. The sweep outlives the request that caused it but keeps
// its trace id.
func (t *AsyncTrigger) Trigger(ctx context.Context, userID int) {
	if !t.running.CompareAndSwap(false, true) {
		return
	}

	sweepCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.timeout)
	log := logger.WithTrace(ctx, t.logger)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer t.running.Store(false)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				log.Error("Notification sweep panicked", zap.Any("panic", r))
			}
		}()

		if _, err := t.sweeper.Sweep(sweepCtx); err != nil {
			log.Error("Triggered notification sweep failed", zap.Int("user_id", userID), zap.Error(err))
		}
	}()
}

// Wait blocks until background sweeps finish or ctx is done.
func (t *AsyncTrigger) Wait(ctx context.Context) error {
	return waitGroup(ctx, &t.wg)
}

func waitGroup(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MQTrigger hands the sweep to the worker through the message broker. Publishing
// happens off the request path since a broker under flow control can block it.
type MQTrigger struct {
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time

	wg sync.WaitGroup
}

func NewMQTrigger(publisher EventPublisher, logger *zap.Logger) *MQTrigger {
	return &MQTrigger{publisher: publisher, logger: logger, now: time.Now}
}

func (t *MQTrigger) Trigger(ctx context.Context, userID int) {
	payload := contracts.MessageCreatedPayload{UserID: userID, OccurredAt: t.now()}
	log := logger.WithTrace(ctx, t.logger)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if err := t.publisher.Publish(contracts.RoutingKeyMessageCreated, payload); err != nil {
			log.Warn("Failed to publish message created event",
				zap.Int("user_id", userID),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until in-flight publishes finish or ctx is done.
func (t *MQTrigger) Wait(ctx context.Context) error {
	return waitGroup(ctx, &t.wg)
}
