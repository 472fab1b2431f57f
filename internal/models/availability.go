package models

import (
	"errors"
	"fmt"
	"time"
)

var ErrValidation = errors.New("validation error")

type AvailabilityMode string

const (
	// ModeWeekly marks recurring availability keyed by weekday names.
	ModeWeekly AvailabilityMode = "weekly"
	// ModeDateSpecific marks one-off availability keyed by calendar dates.
	ModeDateSpecific AvailabilityMode = "dateSpecific"
)

// UserAvailability is one user's submitted availability. Created on first
// submission and replaced wholesale on resubmission; there is no merging
// across submissions.
type UserAvailability struct {
	UserID    string                  `json:"userId"`
	Mode      AvailabilityMode        `json:"mode"`
	Days      map[DayKey][]TimeWindow `json:"days"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

// Validate checks the record before it enters normalization or the store.
// An empty mode defaults to weekly, matching the weekly grid the
// availability form submits.
func (ua *UserAvailability) Validate() error {
	if ua.UserID == "" {
		return fmt.Errorf("%w: missing userId", ErrValidation)
	}
	switch ua.Mode {
	case ModeWeekly, ModeDateSpecific:
	case "":
		ua.Mode = ModeWeekly
	default:
		return fmt.Errorf("%w: unknown availability mode %q", ErrValidation, ua.Mode)
	}
	for day, windows := range ua.Days {
		if err := day.Validate(); err != nil {
			return err
		}
		if ua.Mode == ModeWeekly && !day.IsWeekday() {
			return fmt.Errorf("%w: weekly availability cannot use date key %q", ErrValidation, day)
		}
		if ua.Mode == ModeDateSpecific && !day.IsDate() {
			return fmt.Errorf("%w: date-specific availability cannot use weekday key %q", ErrValidation, day)
		}
		if err := ValidateWindows(windows); err != nil {
			return fmt.Errorf("day %s: %w", day, err)
		}
	}
	return nil
}

// Normalize sorts and merges every day's windows. Call after Validate.
func (ua *UserAvailability) Normalize() {
	for day, windows := range ua.Days {
		ua.Days[day] = NormalizeWindows(windows)
	}
}

// WindowsFor resolves the windows applying to a queried day key. A weekly
// record answers date queries through the date's weekday; a date-specific
// record answers only its exact dates.
func (ua *UserAvailability) WindowsFor(day DayKey) []TimeWindow {
	if ua == nil {
		return nil
	}
	if ua.Mode == ModeWeekly {
		wk, ok := day.WeekdayKey()
		if !ok {
			return nil
		}
		return ua.Days[wk]
	}
	return ua.Days[day]
}

// Clone returns a deep copy so callers can hand records out without
// exposing store-internal state.
func (ua *UserAvailability) Clone() *UserAvailability {
	if ua == nil {
		return nil
	}
	cp := &UserAvailability{
		UserID:    ua.UserID,
		Mode:      ua.Mode,
		UpdatedAt: ua.UpdatedAt,
	}
	if ua.Days != nil {
		cp.Days = make(map[DayKey][]TimeWindow, len(ua.Days))
		for day, windows := range ua.Days {
			ws := make([]TimeWindow, len(windows))
			copy(ws, windows)
			cp.Days[day] = ws
		}
	}
	return cp
}
