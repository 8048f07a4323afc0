package notification

import (
	"time"

	"feeltrack/internal/model"
)

// WithinActiveHours reports whether now's time of day falls in [start, end], both
// inclusive. A window whose start is after its end wraps past midnight, so 22:00-06:00
// covers late evening and early morning.
func WithinActiveHours(start, end model.ClockTime, now time.Time) bool {
	t := model.ClockOf(now).Seconds()
	s, e := start.Seconds(), end.Seconds()
	if s <= e {
		return s <= t && t <= e
	}
	return t >= s || t <= e
}

// IsDue reports whether enough time has passed since the candidate's last supportive
// message. A user who never received one is always due.
func IsDue(c model.NotificationCandidate, now time.Time) bool {
	if c.LastMessageAt == nil {
		return true
	}
	return now.Sub(*c.LastMessageAt) >= time.Duration(c.NotificationFrequency)*time.Minute
}
