package model

import "time"

// StatsDateLayout formats the calendar day an EvaluationStats counter belongs to.
const StatsDateLayout = "2006-01-02"

// EvaluationStats counts successful evaluations for a single calendar day.
type EvaluationStats struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Record returns the stats after one more evaluation on the day of now.
// The counter rolls over to 1 the first time the stored day differs.
func (s EvaluationStats) Record(now time.Time) EvaluationStats {
	today := now.Format(StatsDateLayout)
	if s.Date == today {
		return EvaluationStats{Date: today, Count: s.Count + 1}
	}
	return EvaluationStats{Date: today, Count: 1}
}
