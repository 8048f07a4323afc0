package model

import (
	"encoding/json"
	"testing"
)

func TestParseClockTime(t *testing.T) {
	cases := []struct {
		in      string
		want    ClockTime
		wantErr bool
	}{
		{"08:00", ClockTime{Hour: 8}, false},
		{"22:30:15", ClockTime{Hour: 22, Minute: 30, Second: 15}, false},
		{"24:00", ClockTime{}, true},
		{"8am", ClockTime{}, true},
		{"", ClockTime{}, true},
	}
	for _, tc := range cases {
		got, err := ParseClockTime(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClockTime(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClockTime(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClockTime(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestClockTimeMicroseconds(t *testing.T) {
	c := ClockTime{Hour: 13, Minute: 5, Second: 9}
	if back := ClockFromMicroseconds(c.Microseconds()); back != c {
		t.Errorf("round trip through microseconds = %v", back)
	}
}

func TestPreferencesPatchDecode(t *testing.T) {
	var p PreferencesPatch
	if err := json.Unmarshal([]byte(`{"active_hours_start":"07:30","theme":"dark"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.ActiveHoursStart == nil || *p.ActiveHoursStart != (ClockTime{Hour: 7, Minute: 30}) {
		t.Errorf("start = %v", p.ActiveHoursStart)
	}
	if p.Theme == nil || *p.Theme != "dark" {
		t.Errorf("theme = %v", p.Theme)
	}
	if p.NotificationFrequency != nil || p.Empty() {
		t.Errorf("unexpected patch %+v", p)
	}

	if err := json.Unmarshal([]byte(`{"active_hours_end":"late"}`), &p); err == nil {
		t.Error("expected error for malformed time")
	}
}
