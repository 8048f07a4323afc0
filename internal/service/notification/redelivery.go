package notification

import (
	"context"
	"time"

	contracts "feeltrack/contracts/mq"
	"feeltrack/internal/model"
	"feeltrack/pkg/outbox"
)

// UnsentStore lists supportive messages whose created event never reached the broker.
type UnsentStore interface {
	ListUnsent(ctx context.Context, cutoff time.Time, limit int) ([]model.SupportiveMessage, error)
	MarkSent(ctx context.Context, id int) error
}

// UnsentMessages exposes unsent supportive messages as outbox events. Messages younger
// than grace are left alone so a sweep that is still publishing is not raced.
type UnsentMessages struct {
	store UnsentStore
	grace time.Duration
	now   func() time.Time
}

func NewUnsentMessages(store UnsentStore, grace time.Duration) *UnsentMessages {
	return &UnsentMessages{store: store, grace: grace, now: time.Now}
}

func (u *UnsentMessages) PendingEvents(ctx context.Context, limit int) ([]outbox.Event, error) {
	msgs, err := u.store.ListUnsent(ctx, u.now().Add(-u.grace), limit)
	if err != nil {
		return nil, err
	}

	events := make([]outbox.Event, 0, len(msgs))
	for _, m := range msgs {
		events = append(events, outbox.Event{
			ID:         m.ID,
			RoutingKey: contracts.RoutingKeySupportiveMessageCreated,
			Payload:    createdPayload(&m),
		})
	}
	return events, nil
}

func (u *UnsentMessages) MarkSent(ctx context.Context, id int) error {
	return u.store.MarkSent(ctx, id)
}

func createdPayload(m *model.SupportiveMessage) contracts.SupportiveMessageCreatedPayload {
	return contracts.SupportiveMessageCreatedPayload{
		MessageID: m.ID,
		UserID:    m.UserID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
