package trace

import (
	"context"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithContext(context.Background(), "abc")
	if got := FromContext(ctx); got != "abc" {
		t.Errorf("FromContext() = %q, want abc", got)
	}
	if got := FromContext(context.Background()); got != "" {
		t.Errorf("FromContext(empty) = %q, want empty", got)
	}
}

func TestFromHeaders(t *testing.T) {
	if got := FromHeaders("t1", "r1"); got != "t1" {
		t.Errorf("got %q, want t1", got)
	}
	if got := FromHeaders("", "r1"); got != "r1" {
		t.Errorf("got %q, want r1", got)
	}
	a, b := FromHeaders("", ""), FromHeaders("", "")
	if a == "" || a == b {
		t.Errorf("generated ids should be non-empty and unique, got %q and %q", a, b)
	}
}
