package engine

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"weschedule/internal/models"
)

// UserWindows pairs a queried user ID with their normalized windows for the
// day under aggregation. A queried user without a record (or without windows
// for that day) participates with nil windows and is simply never available.
type UserWindows struct {
	ID      string
	Windows []models.TimeWindow
}

type boundary struct {
	at    int
	user  uint32
	start bool
}

// Coverage folds the queried users' windows into coverage segments that
// partition the full day, including zero-coverage gaps. Boundary sweep over
// the union of all window edges; the running availability set is a roaring
// bitmap over user indexes. All events at a timestamp are applied before the
// next segment is emitted, with ends applied before starts so a user whose
// windows touch at a boundary stays in the active set across the seam.
//
// Zero users queried yields nil, not an error.
func Coverage(users []UserWindows) []models.CoverageSegment {
	if len(users) == 0 {
		return nil
	}

	total := 0
	for _, u := range users {
		total += len(u.Windows)
	}

	events := make([]boundary, 0, total*2)
	for idx, u := range users {
		for _, w := range u.Windows {
			events = append(events, boundary{at: w.Start, user: uint32(idx), start: true})
			events = append(events, boundary{at: w.End, user: uint32(idx), start: false})
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].at != events[j].at {
			return events[i].at < events[j].at
		}
		return !events[i].start && events[j].start
	})

	active := roaring.New()
	segments := make([]models.CoverageSegment, 0, len(events)+1)
	cursor := 0

	i := 0
	for i < len(events) {
		at := events[i].at
		if at > cursor {
			segments = append(segments, snapshot(cursor, at, active, users))
			cursor = at
		}
		for i < len(events) && events[i].at == at {
			if events[i].start {
				active.Add(events[i].user)
			} else {
				active.Remove(events[i].user)
			}
			i++
		}
	}
	if cursor < models.MinutesPerDay {
		segments = append(segments, snapshot(cursor, models.MinutesPerDay, active, users))
	}
	return segments
}

// snapshot materializes the current availability set into a segment.
func snapshot(start, end int, active *roaring.Bitmap, users []UserWindows) models.CoverageSegment {
	ids := make([]string, 0, active.GetCardinality())
	it := active.Iterator()
	for it.HasNext() {
		ids = append(ids, users[it.Next()].ID)
	}
	sort.Strings(ids)
	return models.CoverageSegment{
		Window:  models.TimeWindow{Start: start, End: end},
		UserIDs: ids,
	}
}
