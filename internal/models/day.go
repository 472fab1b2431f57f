package models

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DayKey identifies a day either by weekday name ("Monday".."Sunday",
// recurring weekly availability) or by calendar date ("2006-01-02",
// one-off events).
type DayKey string

var weekdayKeys = map[DayKey]struct{}{
	"Monday":    {},
	"Tuesday":   {},
	"Wednesday": {},
	"Thursday":  {},
	"Friday":    {},
	"Saturday":  {},
	"Sunday":    {},
}

func (d DayKey) IsWeekday() bool {
	_, ok := weekdayKeys[d]
	return ok
}

func (d DayKey) IsDate() bool {
	_, err := time.Parse(dateLayout, string(d))
	return err == nil
}

func (d DayKey) Validate() error {
	if d.IsWeekday() || d.IsDate() {
		return nil
	}
	return fmt.Errorf("%w: day key %q is neither a weekday name nor a YYYY-MM-DD date", ErrValidation, d)
}

// WeekdayKey resolves the key to its weekday form: identity for weekday keys,
// the date's weekday for date keys.
func (d DayKey) WeekdayKey() (DayKey, bool) {
	if d.IsWeekday() {
		return d, true
	}
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return "", false
	}
	return DayKey(t.Weekday().String()), true
}

// DayKeyForDate returns the date key for a point in time.
func DayKeyForDate(t time.Time) DayKey {
	return DayKey(t.Format(dateLayout))
}
