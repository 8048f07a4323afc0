package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	contracts "feeltrack/contracts/mq"
	"feeltrack/internal/model"
	"feeltrack/pkg/logger"
	"feeltrack/pkg/metrics"
)

const (
	summaryMessageLimit = 10
	lockHandler         = "supportive_sweep"
)

type SupportiveStore interface {
	ListNotificationCandidates(ctx context.Context) ([]model.NotificationCandidate, error)
	Create(ctx context.Context, userID int, content string) (*model.SupportiveMessage, error)
	MarkSent(ctx context.Context, id int) error
}

type ConversationSource interface {
	LatestForUser(ctx context.Context, userID int) (*model.Conversation, error)
}

type MessageSource interface {
	// Recent returns up to limit messages, newest first.
	Recent(ctx context.Context, conversationID, limit int) ([]model.Message, error)
}

// Writer produces the notification text; it never fails.
type Writer interface {
	SupportiveNotification(ctx context.Context, summary string) string
}

// Locker grants at most one sweeper per user at a time across processes.
type Locker interface {
	AcquireOnce(ctx context.Context, handler string, id int) bool
	Release(ctx context.Context, handler string, id int)
}

type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type SweepResult struct {
	Candidates int
	Created    int
	Skipped    int
	Failed     int
}

type Scheduler struct {
	supportive    SupportiveStore
	conversations ConversationSource
	messages      MessageSource
	writer        Writer
	locker        Locker
	publisher     EventPublisher
	logger        *zap.Logger
	now           func() time.Time
}

// NewScheduler wires a sweeper. locker and publisher may be nil: without a locker every
// due user is processed, without a publisher created messages are only stored.
func NewScheduler(
	supportive SupportiveStore,
	conversations ConversationSource,
	messages MessageSource,
	writer Writer,
	locker Locker,
	publisher EventPublisher,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		supportive:    supportive,
		conversations: conversations,
		messages:      messages,
		writer:        writer,
		locker:        locker,
		publisher:     publisher,
		logger:        logger,
		now:           time.Now,
	}
}

// Sweep creates a supportive message for every user who is inside their active hours,
// due, and has at least one conversation. A failure for one user is logged and counted
// and the sweep moves on; only failing to list candidates aborts it.
func (s *Scheduler) Sweep(ctx context.Context) (SweepResult, error) {
	log := logger.WithTrace(ctx, s.logger)
	start := time.Now()
	defer func() { metrics.RecordSweepDuration(time.Since(start)) }()

	candidates, err := s.supportive.ListNotificationCandidates(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list notification candidates: %w", err)
	}

	result := SweepResult{Candidates: len(candidates)}
	now := s.now()

	for _, c := range candidates {
		if ctx.Err() != nil {
			break
		}

		if !WithinActiveHours(c.ActiveHoursStart, c.ActiveHoursEnd, now) || !IsDue(c, now) {
			result.Skipped++
			continue
		}

		// never lock a user who has nothing to summarize yet
		conv, err := s.conversations.LatestForUser(ctx, c.UserID)
		if err != nil {
			result.Failed++
			metrics.IncrementSupportiveMessage("failed")
			log.Error("Failed to load latest conversation", zap.Int("user_id", c.UserID), zap.Error(err))
			continue
		}
		if conv == nil {
			result.Skipped++
			metrics.IncrementSupportiveMessage("skipped")
			continue
		}

		if s.locker != nil && !s.locker.AcquireOnce(ctx, lockHandler, c.UserID) {
			result.Skipped++
			continue
		}

		if err := s.notify(ctx, c.UserID, conv); err != nil {
			result.Failed++
			metrics.IncrementSupportiveMessage("failed")
			log.Error("Supportive message failed", zap.Int("user_id", c.UserID), zap.Error(err))
			if s.locker != nil {
				s.locker.Release(ctx, lockHandler, c.UserID)
			}
			continue
		}
		result.Created++
		metrics.IncrementSupportiveMessage("created")
	}

	log.Info("Notification sweep finished",
		zap.Int("candidates", result.Candidates),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// notify summarizes conv and stores a supportive message for userID.
func (s *Scheduler) notify(ctx context.Context, userID int, conv *model.Conversation) error {
	recent, err := s.messages.Recent(ctx, conv.ID, summaryMessageLimit)
	if err != nil {
		return fmt.Errorf("recent messages: %w", err)
	}
	chronological := make([]model.Message, len(recent))
	for i, m := range recent {
		chronological[len(recent)-1-i] = m
	}

	text := s.writer.SupportiveNotification(ctx, Summarize(chronological))

	msg, err := s.supportive.Create(ctx, userID, text)
	if err != nil {
		return fmt.Errorf("store supportive message: %w", err)
	}

	s.publish(ctx, msg)
	return nil
}

// publish is best effort: the message is already stored and will be listed as unread
// whether or not the event goes out. Unsent messages are retried by the outbox dispatcher.
func (s *Scheduler) publish(ctx context.Context, msg *model.SupportiveMessage) {
	if s.publisher == nil {
		return
	}
	log := logger.WithTrace(ctx, s.logger)

	err := s.publisher.Publish(contracts.RoutingKeySupportiveMessageCreated, createdPayload(msg))
	if err != nil {
		log.Warn("Failed to publish supportive message event", zap.Int("message_id", msg.ID), zap.Error(err))
		return
	}
	if err := s.supportive.MarkSent(ctx, msg.ID); err != nil {
		log.Warn("Failed to mark supportive message sent", zap.Int("message_id", msg.ID), zap.Error(err))
	}
}

// Run sweeps once immediately and then every interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	s.logger.Info("Notification scheduler started", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("Notification sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			s.logger.Info("Notification scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}
