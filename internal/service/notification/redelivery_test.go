package notification

import (
	"context"
	"testing"
	"time"

	contracts "feeltrack/contracts/mq"
	"feeltrack/internal/model"
)

type fakeUnsent struct {
	cutoff time.Time
	msgs   []model.SupportiveMessage
	sent   []int
}

func (f *fakeUnsent) ListUnsent(ctx context.Context, cutoff time.Time, limit int) ([]model.SupportiveMessage, error) {
	f.cutoff = cutoff
	return f.msgs, nil
}

func (f *fakeUnsent) MarkSent(ctx context.Context, id int) error {
	f.sent = append(f.sent, id)
	return nil
}

func TestUnsentMessages_PendingEvents(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeUnsent{msgs: []model.SupportiveMessage{
		{ID: 7, UserID: 3, Content: "You are doing well", CreatedAt: now.Add(-time.Hour)},
	}}
	u := NewUnsentMessages(store, time.Minute)
	u.now = func() time.Time { return now }

	events, err := u.PendingEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("PendingEvents: %v", err)
	}
	if !store.cutoff.Equal(now.Add(-time.Minute)) {
		t.Errorf("cutoff = %v, want %v", store.cutoff, now.Add(-time.Minute))
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	e := events[0]
	if e.ID != 7 || e.RoutingKey != contracts.RoutingKeySupportiveMessageCreated {
		t.Errorf("event = %+v", e)
	}
	p, ok := e.Payload.(contracts.SupportiveMessageCreatedPayload)
	if !ok {
		t.Fatalf("payload type = %T", e.Payload)
	}
	if p.UserID != 3 || p.Content != "You are doing well" {
		t.Errorf("payload = %+v", p)
	}

	if err := u.MarkSent(context.Background(), 7); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	if len(store.sent) != 1 || store.sent[0] != 7 {
		t.Errorf("sent = %v, want [7]", store.sent)
	}
}
