package models

import (
	"errors"
	"fmt"
	"sort"

	json "github.com/goccy/go-json"
)

// MinutesPerDay is the exclusive upper bound for window ends. A window never
// wraps midnight; cross-midnight requests must be split by the caller.
const MinutesPerDay = 1440

var ErrInvalidWindow = errors.New("invalid time window")

// TimeWindow is a [Start, End) interval in minutes since midnight.
// Its JSON form uses "HH:MM" clock strings, matching the submission payloads.
type TimeWindow struct {
	Start int
	End   int
}

type clockWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (w TimeWindow) MarshalJSON() ([]byte, error) {
	return json.Marshal(clockWindow{
		Start: FormatClock(w.Start),
		End:   FormatClock(w.End),
	})
}

func (w *TimeWindow) UnmarshalJSON(data []byte) error {
	var cw clockWindow
	if err := json.Unmarshal(data, &cw); err != nil {
		return err
	}
	start, err := ParseClock(cw.Start)
	if err != nil {
		return err
	}
	end, err := ParseClock(cw.End)
	if err != nil {
		return err
	}
	w.Start = start
	w.End = end
	return nil
}

func (w TimeWindow) Duration() int {
	return w.End - w.Start
}

func (w TimeWindow) Validate() error {
	if w.Start < 0 || w.End > MinutesPerDay || w.Start >= w.End {
		return fmt.Errorf("%w: %s-%s", ErrInvalidWindow, FormatClock(w.Start), FormatClock(w.End))
	}
	return nil
}

// ParseClock converts a "HH:MM" string to minutes since midnight.
// "24:00" is accepted as the end-of-day boundary.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: bad clock value %q", ErrInvalidWindow, s)
	}
	h, err := twoDigits(s[0], s[1])
	if err != nil {
		return 0, fmt.Errorf("%w: bad clock value %q", ErrInvalidWindow, s)
	}
	m, err := twoDigits(s[3], s[4])
	if err != nil {
		return 0, fmt.Errorf("%w: bad clock value %q", ErrInvalidWindow, s)
	}
	total := h*60 + m
	if h > 24 || m > 59 || total > MinutesPerDay {
		return 0, fmt.Errorf("%w: bad clock value %q", ErrInvalidWindow, s)
	}
	return total, nil
}

func twoDigits(a, b byte) (int, error) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, errors.New("not a digit")
	}
	return int(a-'0')*10 + int(b-'0'), nil
}

// FormatClock converts minutes since midnight to "HH:MM".
func FormatClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ValidateWindows rejects any malformed window before it can enter
// normalization.
func ValidateWindows(windows []TimeWindow) error {
	for _, w := range windows {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeWindows sorts windows by start and merges overlapping or adjacent
// ones. Deterministic and idempotent; the input slice is not modified.
func NormalizeWindows(windows []TimeWindow) []TimeWindow {
	if len(windows) == 0 {
		return nil
	}

	sorted := make([]TimeWindow, len(windows))
	copy(sorted, windows)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	merged := sorted[:1]
	for _, w := range sorted[1:] {
		last := &merged[len(merged)-1]
		if w.Start <= last.End {
			if w.End > last.End {
				last.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

// IntersectWindows computes the intersection of two normalized window
// sequences with a two-pointer sweep, O(|a|+|b|).
func IntersectWindows(a, b []TimeWindow) []TimeWindow {
	var out []TimeWindow
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := a[i].Start
		if b[j].Start > start {
			start = b[j].Start
		}
		end := a[i].End
		if b[j].End < end {
			end = b[j].End
		}
		if start < end {
			out = append(out, TimeWindow{Start: start, End: end})
		}
		if a[i].End < b[j].End {
			i++
		} else {
			j++
		}
	}
	return out
}

// WindowsContain reports whether the given minute falls inside one of the
// normalized windows. Binary search over the sorted sequence.
func WindowsContain(windows []TimeWindow, minute int) bool {
	idx := sort.Search(len(windows), func(i int) bool {
		return windows[i].End > minute
	})
	return idx < len(windows) && windows[idx].Start <= minute
}
