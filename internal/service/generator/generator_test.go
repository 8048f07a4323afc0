package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"feeltrack/internal/model"
)

type fakeClient struct {
	out     string
	err     error
	block   bool
	calls   int
	prompts []string
	system  string
	history []model.Message
}

func (f *fakeClient) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.result(ctx)
}

func (f *fakeClient) Chat(ctx context.Context, system string, history []model.Message, message string) (string, error) {
	f.calls++
	f.system = system
	f.history = history
	f.prompts = append(f.prompts, message)
	return f.result(ctx)
}

func (f *fakeClient) result(ctx context.Context) (string, error) {
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.out, f.err
}

func TestReply(t *testing.T) {
	client := &fakeClient{out: "  That sounds hard.  "}
	g := New(client, time.Second, zap.NewNop())

	history := []model.Message{{IsUser: true, Content: "hi"}, {IsUser: false, Content: "hello"}}
	got := g.Reply(context.Background(), history, "I feel low")
	if got != "That sounds hard." {
		t.Errorf("Reply = %q", got)
	}
	if client.system != chatbotSystemPrompt {
		t.Error("system prompt not passed")
	}
	if len(client.history) != 2 || client.prompts[0] != "I feel low" {
		t.Errorf("history=%v prompts=%v", client.history, client.prompts)
	}
}

func TestReply_Fallback(t *testing.T) {
	g := New(&fakeClient{err: errors.New("boom")}, time.Second, zap.NewNop())
	if got := g.Reply(context.Background(), nil, "hi"); got != FallbackReply {
		t.Errorf("Reply = %q, want fallback", got)
	}
}

func TestReply_TimeoutFallsBack(t *testing.T) {
	g := New(&fakeClient{block: true}, 20*time.Millisecond, zap.NewNop())
	start := time.Now()
	if got := g.Reply(context.Background(), nil, "hi"); got != FallbackReply {
		t.Errorf("Reply = %q, want fallback", got)
	}
	if time.Since(start) > time.Second {
		t.Error("timeout not applied")
	}
}

func TestReframe(t *testing.T) {
	client := &fakeClient{out: "You showed courage by sharing."}
	g := New(client, time.Second, zap.NewNop())

	got := g.Reframe(context.Background(), `I failed {again} 100%`)
	if got == nil || *got != "You showed courage by sharing." {
		t.Fatalf("Reframe = %v", got)
	}
	if !strings.Contains(client.prompts[0], `"I failed {again} 100%"`) {
		t.Errorf("utterance not embedded verbatim: %q", client.prompts[0])
	}
}

func TestReframe_NilOnFailureOrEmpty(t *testing.T) {
	if got := New(&fakeClient{err: errors.New("down")}, time.Second, zap.NewNop()).Reframe(context.Background(), "x"); got != nil {
		t.Errorf("expected nil on error, got %q", *got)
	}
	if got := New(&fakeClient{out: "   "}, time.Second, zap.NewNop()).Reframe(context.Background(), "x"); got != nil {
		t.Errorf("expected nil on empty output, got %q", *got)
	}
}

func TestSupportiveNotification(t *testing.T) {
	client := &fakeClient{out: "You handled today with grace."}
	g := New(client, time.Second, zap.NewNop())

	got := g.SupportiveNotification(context.Background(), "User: rough day\n")
	if got != "You handled today with grace." {
		t.Errorf("SupportiveNotification = %q", got)
	}
	if !strings.Contains(client.prompts[0], "User: rough day\n") {
		t.Errorf("summary not embedded: %q", client.prompts[0])
	}

	g = New(&fakeClient{err: errors.New("down")}, time.Second, zap.NewNop())
	if got := g.SupportiveNotification(context.Background(), "x"); got != FallbackSupportive {
		t.Errorf("SupportiveNotification = %q, want fallback", got)
	}
}

func TestNilClientFallsBack(t *testing.T) {
	g := New(nil, time.Second, zap.NewNop())
	ctx := context.Background()
	if g.Reply(ctx, nil, "hi") != FallbackReply {
		t.Error("Reply should fall back")
	}
	if g.Reframe(ctx, "hi") != nil {
		t.Error("Reframe should be nil")
	}
	if g.SupportiveNotification(ctx, "") != FallbackSupportive {
		t.Error("SupportiveNotification should fall back")
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	client := &fakeClient{err: errors.New("down")}
	g := New(client, time.Second, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		g.Reply(ctx, nil, "hi")
	}
	// default threshold is 3 consecutive failures; later calls are rejected without reaching the client
	if client.calls != 3 {
		t.Errorf("client calls = %d, want 3", client.calls)
	}
}

func TestCanceledCallerDoesNotTripBreaker(t *testing.T) {
	client := &fakeClient{block: true}
	g := New(client, time.Second, zap.NewNop())

	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if got := g.Reply(ctx, nil, "hi"); got != FallbackReply {
			t.Fatalf("call %d: reply = %q, want fallback", i, got)
		}
	}
	if client.calls != 5 {
		t.Fatalf("client calls = %d, want 5", client.calls)
	}

	client.block = false
	client.out = "still here"
	if got := g.Reply(context.Background(), nil, "hi"); got != "still here" {
		t.Errorf("reply = %q, want the client answer", got)
	}
}
