package notification

import (
	"strings"
	"testing"
	"time"

	"feeltrack/internal/model"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 1, hour, minute, 0, 0, time.UTC)
}

func clk(hour, minute int) model.ClockTime {
	return model.ClockTime{Hour: hour, Minute: minute}
}

func TestWithinActiveHours(t *testing.T) {
	cases := []struct {
		name       string
		start, end model.ClockTime
		now        time.Time
		want       bool
	}{
		{"inside", clk(8, 0), clk(22, 0), at(12, 0), true},
		{"at start", clk(8, 0), clk(22, 0), at(8, 0), true},
		{"at end", clk(8, 0), clk(22, 0), at(22, 0), true},
		{"before", clk(8, 0), clk(22, 0), at(7, 59), false},
		{"after", clk(8, 0), clk(22, 0), at(22, 1), false},
		{"overnight late", clk(22, 0), clk(6, 0), at(23, 30), true},
		{"overnight early", clk(22, 0), clk(6, 0), at(5, 0), true},
		{"overnight midday", clk(22, 0), clk(6, 0), at(12, 0), false},
		{"single instant", clk(9, 0), clk(9, 0), at(9, 0), true},
	}
	for _, tc := range cases {
		if got := WithinActiveHours(tc.start, tc.end, tc.now); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsDue(t *testing.T) {
	now := at(12, 0)
	last := now.Add(-90 * time.Minute)

	if !IsDue(model.NotificationCandidate{NotificationFrequency: 120}, now) {
		t.Error("user without prior message should be due")
	}
	if IsDue(model.NotificationCandidate{NotificationFrequency: 120, LastMessageAt: &last}, now) {
		t.Error("90 minutes is less than 120")
	}
	if !IsDue(model.NotificationCandidate{NotificationFrequency: 90, LastMessageAt: &last}, now) {
		t.Error("exactly the frequency should be due")
	}
	if !IsDue(model.NotificationCandidate{NotificationFrequency: 0, LastMessageAt: &now}, now) {
		t.Error("zero frequency is always due")
	}
}

func TestSummarize(t *testing.T) {
	reframe := "You are learning."
	empty := ""
	long := strings.Repeat("é", 150)

	got := Summarize([]model.Message{
		{IsUser: true, Content: "I failed my test", PositiveReframe: &reframe},
		{IsUser: false, Content: "That sounds hard."},
		{IsUser: true, Content: "yeah", PositiveReframe: &empty},
		{IsUser: false, Content: long},
	})

	want := "User: I failed my test\n" +
		"Positive reframe: You are learning.\n" +
		"AI: That sounds hard....\n" +
		"User: yeah\n" +
		"AI: " + strings.Repeat("é", 100) + "...\n"
	if got != want {
		t.Errorf("Summarize =\n%q\nwant\n%q", got, want)
	}

	if Summarize(nil) != "" {
		t.Error("empty input should produce empty summary")
	}
}
