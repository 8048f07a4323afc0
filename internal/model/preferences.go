package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClockTime is a time of day with second precision, stored as a SQL TIME.
type ClockTime struct {
	Hour, Minute, Second int
}

// ParseClockTime accepts "HH:MM" or "HH:MM:SS".
func ParseClockTime(s string) (ClockTime, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return ClockTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return ClockTime{}, fmt.Errorf("invalid time of day %q, want HH:MM or HH:MM:SS", s)
}

// ClockOf returns the time of day of t in t's location.
func ClockOf(t time.Time) ClockTime {
	return ClockTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

func (c ClockTime) Seconds() int {
	return c.Hour*3600 + c.Minute*60 + c.Second
}

// ClockFromMicroseconds converts a postgres TIME value (microseconds since midnight).
func ClockFromMicroseconds(us int64) ClockTime {
	s := int(us / 1_000_000)
	return ClockTime{Hour: s / 3600, Minute: s % 3600 / 60, Second: s % 60}
}

func (c ClockTime) Microseconds() int64 {
	return int64(c.Seconds()) * 1_000_000
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

const (
	DefaultNotificationFrequency = 120
	DefaultTheme                 = "light"
)

var (
	DefaultActiveHoursStart = ClockTime{Hour: 8}
	DefaultActiveHoursEnd   = ClockTime{Hour: 22}
)

type Preferences struct {
	UserID                int       `json:"user_id"`
	NotificationFrequency int       `json:"notification_frequency"`
	ActiveHoursStart      ClockTime `json:"active_hours_start"`
	ActiveHoursEnd        ClockTime `json:"active_hours_end"`
	NotificationsEnabled  bool      `json:"notifications_enabled"`
	Theme                 string    `json:"theme"`
}

// PreferencesPatch holds the fields a caller wants changed; nil fields are left alone.
type PreferencesPatch struct {
	NotificationFrequency *int       `json:"notification_frequency"`
	ActiveHoursStart      *ClockTime `json:"active_hours_start"`
	ActiveHoursEnd        *ClockTime `json:"active_hours_end"`
	NotificationsEnabled  *bool      `json:"notifications_enabled"`
	Theme                 *string    `json:"theme"`
}

func (p PreferencesPatch) Empty() bool {
	return p.NotificationFrequency == nil &&
		p.ActiveHoursStart == nil &&
		p.ActiveHoursEnd == nil &&
		p.NotificationsEnabled == nil &&
		p.Theme == nil
}
