package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	contracts "feeltrack/contracts/mq"
	"feeltrack/internal/service/notification"
)

type MessageCreatedHandler struct {
	sweeper notification.Sweeper
	logger  *zap.Logger
}

func NewMessageCreatedHandler(sweeper notification.Sweeper, logger *zap.Logger) *MessageCreatedHandler {
	return &MessageCreatedHandler{
		sweeper: sweeper,
		logger:  logger,
	}
}

// HandleMessageCreated runs a notification sweep for a finished chat turn.
// A malformed payload is returned as-is so the consumer dead-letters it.
func (h *MessageCreatedHandler) HandleMessageCreated(ctx context.Context, raw json.RawMessage) error {
	var p contracts.MessageCreatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal message created payload", zap.Error(err))
		return err
	}

	h.logger.Info("Running notification sweep",
		zap.Int("user_id", p.UserID),
		zap.Time("occurred_at", p.OccurredAt),
	)

	res, err := h.sweeper.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("notification sweep: %w", err)
	}

	h.logger.Info("Notification sweep done",
		zap.Int("user_id", p.UserID),
		zap.Int("created", res.Created),
		zap.Int("failed", res.Failed),
	)
	return nil
}
