package attendance

import "math"

// Summarize derives the attendance summary for one subject from its records.
// Order of records is irrelevant.
//
// Counting policy: "late" counts fully toward presence (and is tallied
// separately in LateCount); "excused" counts in the total but not toward
// presence, so an excused absence still lowers the percentage.
func Summarize(records []Record) Summary {
	var s Summary
	s.TotalClasses = len(records)
	for _, r := range records {
		switch r.Status {
		case StatusPresent:
			s.PresentCount++
		case StatusLate:
			s.PresentCount++
			s.LateCount++
		case StatusAbsent:
			s.AbsentCount++
		case StatusExcused:
			s.ExcusedCount++
		}
	}
	if s.TotalClasses > 0 {
		pct := round2(float64(s.PresentCount) / float64(s.TotalClasses) * 100)
		s.Percentage = &pct
		s.BelowThreshold = pct < Threshold
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
