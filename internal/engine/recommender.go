package engine

import (
	"sort"

	"weschedule/internal/models"
)

// Recommend ranks coverage segments as candidate meeting slots. Adjacent
// segments with identical user sets are re-merged (the aggregator's
// change-triggered emission already prevents duplicates, but ranking must
// not depend on that), segments with no coverage or shorter than minDuration
// are dropped, and the rest are ordered by coverage count descending, then
// duration descending, then start ascending. topK <= 0 returns all.
//
// queried must be the sorted, deduplicated set of requested user IDs; it is
// used to populate MissingUserIDs and CoveragePct even when no segment
// reaches full coverage.
func Recommend(segments []models.CoverageSegment, day models.DayKey, queried []string, minDuration, topK int) []models.RecommendedSlot {
	merged := mergeSegments(segments)

	slots := make([]models.RecommendedSlot, 0, len(merged))
	for _, seg := range merged {
		if len(seg.UserIDs) == 0 || seg.Window.Duration() < minDuration {
			continue
		}
		slots = append(slots, models.RecommendedSlot{
			Window:         seg.Window,
			Day:            day,
			CoverageCount:  len(seg.UserIDs),
			CoveragePct:    coveragePct(len(seg.UserIDs), len(queried)),
			MissingUserIDs: missingUsers(queried, seg.UserIDs),
		})
	}

	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].CoverageCount != slots[j].CoverageCount {
			return slots[i].CoverageCount > slots[j].CoverageCount
		}
		di, dj := slots[i].Window.Duration(), slots[j].Window.Duration()
		if di != dj {
			return di > dj
		}
		return slots[i].Window.Start < slots[j].Window.Start
	})

	if topK > 0 && len(slots) > topK {
		slots = slots[:topK]
	}
	return slots
}

// mergeSegments joins contiguous segments whose user sets are equal.
func mergeSegments(segments []models.CoverageSegment) []models.CoverageSegment {
	if len(segments) == 0 {
		return nil
	}
	merged := make([]models.CoverageSegment, 0, len(segments))
	merged = append(merged, segments[0])
	for _, seg := range segments[1:] {
		last := &merged[len(merged)-1]
		if seg.Window.Start == last.Window.End && equalIDs(seg.UserIDs, last.UserIDs) {
			last.Window.End = seg.Window.End
			continue
		}
		merged = append(merged, seg)
	}
	return merged
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// missingUsers returns queried IDs absent from the available set.
// Both inputs are sorted; available may contain IDs outside queried.
func missingUsers(queried, available []string) []string {
	missing := make([]string, 0, len(queried))
	j := 0
	for _, id := range queried {
		for j < len(available) && available[j] < id {
			j++
		}
		if j < len(available) && available[j] == id {
			j++
			continue
		}
		missing = append(missing, id)
	}
	return missing
}

// coveragePct is the share of queried users covered, as a percentage.
func coveragePct(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
