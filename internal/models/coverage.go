package models

// CoverageSegment is a maximal sub-interval of a day during which the set of
// available users is constant. The segments returned for one query partition
// the full day with no gaps or overlaps; UserIDs is sorted.
type CoverageSegment struct {
	Window  TimeWindow `json:"window"`
	UserIDs []string   `json:"availableUserIds"`
}

// Midpoint returns the middle minute of the segment, used to cross-check
// membership against the source windows.
func (cs CoverageSegment) Midpoint() int {
	return (cs.Window.Start + cs.Window.End) / 2
}

// RecommendedSlot is a ranked candidate meeting window. Ephemeral: computed
// per query and never persisted.
type RecommendedSlot struct {
	Window         TimeWindow `json:"window"`
	Day            DayKey     `json:"dayKey"`
	CoverageCount  int        `json:"coverageCount"`
	CoveragePct    float64    `json:"coveragePct"`
	MissingUserIDs []string   `json:"missingUserIds"`
}
