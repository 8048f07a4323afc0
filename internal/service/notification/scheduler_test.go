package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	contracts "feeltrack/contracts/mq"
	"feeltrack/internal/model"
)

type fakeSupportive struct {
	mu         sync.Mutex
	candidates []model.NotificationCandidate
	listErr    error
	createErr  map[int]error
	created    []model.SupportiveMessage
	sent       []int
}

func (f *fakeSupportive) ListNotificationCandidates(context.Context) ([]model.NotificationCandidate, error) {
	return f.candidates, f.listErr
}

func (f *fakeSupportive) Create(_ context.Context, userID int, content string) (*model.SupportiveMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createErr[userID]; err != nil {
		return nil, err
	}
	m := model.SupportiveMessage{ID: len(f.created) + 1, UserID: userID, Content: content, CreatedAt: time.Now()}
	f.created = append(f.created, m)
	return &m, nil
}

func (f *fakeSupportive) MarkSent(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, id)
	return nil
}

type fakeConversations map[int]*model.Conversation

func (f fakeConversations) LatestForUser(_ context.Context, userID int) (*model.Conversation, error) {
	return f[userID], nil
}

type fakeMessages map[int][]model.Message

func (f fakeMessages) Recent(_ context.Context, conversationID, limit int) ([]model.Message, error) {
	msgs := f[conversationID]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

type recordingWriter struct {
	summaries []string
}

func (w *recordingWriter) SupportiveNotification(_ context.Context, summary string) string {
	w.summaries = append(w.summaries, summary)
	return "You've got this."
}

// fakeLocker behaves like SetNX with a TTL that never expires during a test.
type fakeLocker struct {
	held     map[int]bool
	released []int
}

func (l *fakeLocker) AcquireOnce(_ context.Context, _ string, id int) bool {
	if l.held[id] {
		return false
	}
	l.held[id] = true
	return true
}

func (l *fakeLocker) Release(_ context.Context, _ string, id int) {
	delete(l.held, id)
	l.released = append(l.released, id)
}

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	block  chan struct{}
	events []string
	bodies []any
}

func (p *fakePublisher) Publish(routingKey string, payload any) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, routingKey)
	p.bodies = append(p.bodies, payload)
	return nil
}

func candidate(userID int, last *time.Time) model.NotificationCandidate {
	return model.NotificationCandidate{
		UserID:                userID,
		NotificationFrequency: 120,
		ActiveHoursStart:      model.ClockTime{Hour: 8},
		ActiveHoursEnd:        model.ClockTime{Hour: 22},
		LastMessageAt:         last,
	}
}

func newTestScheduler(store *fakeSupportive, pub *fakePublisher) (*Scheduler, *recordingWriter, *fakeLocker) {
	reframe := "Reaching out is brave."
	convs := fakeConversations{1: {ID: 10, UserID: 1}, 2: {ID: 20, UserID: 2}, 4: {ID: 40, UserID: 4}}
	msgs := fakeMessages{
		// newest first, as the repository returns them
		10: {
			{ID: 3, IsUser: false, Content: "I'm here for you."},
			{ID: 2, IsUser: true, Content: "I feel alone", PositiveReframe: &reframe},
			{ID: 1, IsUser: true, Content: "hi"},
		},
		20: {{ID: 5, IsUser: true, Content: "busy week"}},
		40: {{ID: 7, IsUser: true, Content: "tired"}},
	}
	writer := &recordingWriter{}
	locker := &fakeLocker{held: map[int]bool{}}

	var publisher EventPublisher
	if pub != nil {
		publisher = pub
	}
	s := NewScheduler(store, convs, msgs, writer, locker, publisher, zap.NewNop())
	s.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s, writer, locker
}

func TestSweep(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-30 * time.Minute)
	old := now.Add(-3 * time.Hour)

	outside := candidate(5, nil)
	outside.ActiveHoursStart = model.ClockTime{Hour: 20}

	store := &fakeSupportive{candidates: []model.NotificationCandidate{
		candidate(1, nil),     // due, has conversation
		candidate(2, &old),    // due, has conversation
		candidate(3, nil),     // due, no conversation
		candidate(4, &recent), // not due yet
		outside,               // outside active hours
	}}
	pub := &fakePublisher{}
	s, writer, _ := newTestScheduler(store, pub)

	res, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if res.Candidates != 5 || res.Created != 2 || res.Skipped != 3 || res.Failed != 0 {
		t.Errorf("result = %+v", res)
	}

	if len(store.created) != 2 || store.created[0].UserID != 1 || store.created[1].UserID != 2 {
		t.Fatalf("created = %+v", store.created)
	}
	if store.created[0].Content != "You've got this." {
		t.Errorf("content = %q", store.created[0].Content)
	}

	wantSummary := "User: hi\nUser: I feel alone\nPositive reframe: Reaching out is brave.\nAI: I'm here for you....\n"
	if writer.summaries[0] != wantSummary {
		t.Errorf("summary = %q, want %q", writer.summaries[0], wantSummary)
	}

	if len(pub.events) != 2 || pub.events[0] != contracts.RoutingKeySupportiveMessageCreated {
		t.Errorf("events = %v", pub.events)
	}
	if len(store.sent) != 2 {
		t.Errorf("sent = %v", store.sent)
	}
}

func TestSweep_ContinuesPastFailures(t *testing.T) {
	store := &fakeSupportive{
		candidates: []model.NotificationCandidate{candidate(1, nil), candidate(2, nil)},
		createErr:  map[int]error{1: errors.New("db down")},
	}
	s, _, _ := newTestScheduler(store, nil)

	res, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if res.Failed != 1 || res.Created != 1 {
		t.Errorf("result = %+v", res)
	}
	if len(store.created) != 1 || store.created[0].UserID != 2 {
		t.Errorf("created = %+v", store.created)
	}
}

func TestSweep_PublishFailureLeavesMessageUnsent(t *testing.T) {
	store := &fakeSupportive{candidates: []model.NotificationCandidate{candidate(1, nil)}}
	s, _, _ := newTestScheduler(store, &fakePublisher{err: errors.New("broker gone")})

	res, err := s.Sweep(context.Background())
	if err != nil || res.Created != 1 {
		t.Fatalf("res=%+v err=%v", res, err)
	}
	if len(store.sent) != 0 {
		t.Errorf("message should not be marked sent: %v", store.sent)
	}
}

func TestSweep_LockPreventsDoubleSend(t *testing.T) {
	store := &fakeSupportive{candidates: []model.NotificationCandidate{candidate(1, nil)}}
	s, _, locker := newTestScheduler(store, nil)
	locker.held[1] = true

	res, _ := s.Sweep(context.Background())
	if res.Created != 0 || res.Skipped != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestSweep_UserWithoutConversationIsNotLocked(t *testing.T) {
	store := &fakeSupportive{candidates: []model.NotificationCandidate{candidate(9, nil)}}
	convs := fakeConversations{}
	msgs := fakeMessages{90: {{ID: 1, IsUser: true, Content: "first message"}}}
	locker := &fakeLocker{held: map[int]bool{}}
	s := NewScheduler(store, convs, msgs, &recordingWriter{}, locker, nil, zap.NewNop())
	s.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	res, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("first Sweep: %v", err)
	}
	if res.Skipped != 1 || res.Created != 0 {
		t.Errorf("first sweep = %+v", res)
	}
	if locker.held[9] {
		t.Fatal("lock taken for a user with nothing to summarize")
	}

	// the user starts chatting before the lock TTL would have run out
	convs[9] = &model.Conversation{ID: 90, UserID: 9}

	res, err = s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("second Sweep: %v", err)
	}
	if res.Created != 1 {
		t.Errorf("second sweep = %+v, want one created", res)
	}
	if len(store.created) != 1 || store.created[0].UserID != 9 {
		t.Errorf("created = %+v", store.created)
	}
}

func TestSweep_FailureReleasesLock(t *testing.T) {
	store := &fakeSupportive{
		candidates: []model.NotificationCandidate{candidate(1, nil)},
		createErr:  map[int]error{1: errors.New("db down")},
	}
	s, _, locker := newTestScheduler(store, nil)

	res, _ := s.Sweep(context.Background())
	if res.Failed != 1 {
		t.Fatalf("result = %+v", res)
	}
	if locker.held[1] || len(locker.released) != 1 {
		t.Errorf("lock should be released after a failure: held=%v released=%v", locker.held, locker.released)
	}

	delete(store.createErr, 1)
	res, _ = s.Sweep(context.Background())
	if res.Created != 1 {
		t.Errorf("retry sweep = %+v, want one created", res)
	}
}

func TestSweep_ListFailureAborts(t *testing.T) {
	store := &fakeSupportive{listErr: errors.New("db down")}
	s, _, _ := newTestScheduler(store, nil)
	if _, err := s.Sweep(context.Background()); err == nil {
		t.Error("expected error")
	}
}

type countingSweeper struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
}

func (c *countingSweeper) Sweep(ctx context.Context) (SweepResult, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.release != nil {
		<-c.release
	}
	return SweepResult{}, ctx.Err()
}

func TestAsyncTrigger(t *testing.T) {
	sweeper := &countingSweeper{release: make(chan struct{})}
	trig := NewAsyncTrigger(sweeper, time.Second, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	trig.Trigger(ctx, 1)
	cancel() // the request ending must not cancel the sweep
	trig.Trigger(context.Background(), 2)

	close(sweeper.release)
	if err := trig.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	sweeper.mu.Lock()
	defer sweeper.mu.Unlock()
	if sweeper.calls != 1 {
		t.Errorf("overlapping triggers should coalesce, got %d sweeps", sweeper.calls)
	}
}

func TestMQTrigger(t *testing.T) {
	pub := &fakePublisher{}
	trig := NewMQTrigger(pub, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	trig.Trigger(ctx, 7)
	cancel()
	if err := trig.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	if len(pub.events) != 1 || pub.events[0] != contracts.RoutingKeyMessageCreated {
		t.Fatalf("events = %v", pub.events)
	}
	payload, ok := pub.bodies[0].(contracts.MessageCreatedPayload)
	if !ok || payload.UserID != 7 {
		t.Errorf("payload = %#v", pub.bodies[0])
	}

	// publish failures are swallowed
	failing := NewMQTrigger(&fakePublisher{err: errors.New("down")}, zap.NewNop())
	failing.Trigger(context.Background(), 7)
	if err := failing.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestMQTrigger_DoesNotWaitForBroker(t *testing.T) {
	pub := &fakePublisher{block: make(chan struct{})}
	trig := NewMQTrigger(pub, zap.NewNop())

	returned := make(chan struct{})
	go func() {
		trig.Trigger(context.Background(), 3)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Trigger blocked on the publisher")
	}

	short, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := trig.Wait(short); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait with stuck publish = %v, want deadline exceeded", err)
	}

	close(pub.block)
	if err := trig.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}
