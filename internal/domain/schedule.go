package domain

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DateKey returns the YYYY-MM-DD calendar key of t in its own location.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// WeekKey returns the date key of the most recent Friday on or before t.
// UTC weeks open at Friday midnight.
func WeekKey(t time.Time) string {
	back := (int(t.Weekday()) - int(time.Friday) + 7) % 7
	return DateKey(t.AddDate(0, 0, -back))
}

// LocalNow converts now into the user's zone. Unknown zones yield ErrInvalidTimezone.
func LocalNow(now time.Time, tz string) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidTimezone, tz)
	}
	return now.In(loc), nil
}

// TriggerSpec describes when a local-time trigger fires.
type TriggerSpec struct {
	Trigger Trigger
	Hour    int
	Minute  int
	Fridays bool // only on local Fridays
}

// Triggers lists the per-user local-time triggers in evaluation order.
func Triggers() []TriggerSpec {
	return []TriggerSpec{
		{Trigger: TriggerMorning, Hour: 8},
		{Trigger: TriggerNightly, Hour: 23},
		{Trigger: TriggerWeekly, Hour: 17, Fridays: true},
	}
}

// Due reports whether the trigger should fire at local time, given the key it
// last fired with. A trigger is due from its target minute until window has
// passed (a non-positive window means the target minute only), and at most
// once per local date. The returned key must be recorded after firing.
func (s TriggerSpec) Due(local time.Time, lastKey string, window time.Duration) (string, bool) {
	if s.Fridays && local.Weekday() != time.Friday {
		return "", false
	}
	target := time.Date(local.Year(), local.Month(), local.Day(), s.Hour, s.Minute, 0, 0, local.Location())
	if local.Before(target) {
		return "", false
	}
	if window < time.Minute {
		window = time.Minute
	}
	if !local.Before(target.Add(window)) {
		return "", false
	}
	key := DateKey(local)
	if key == lastKey {
		return "", false
	}
	return key, true
}
