package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordsOf(statuses ...Status) []Record {
	recs := make([]Record, len(statuses))
	for i, st := range statuses {
		recs[i] = Record{Status: st}
	}
	return recs
}

func TestSummarize_NoRecords(t *testing.T) {
	sum := Summarize(nil)

	assert.Equal(t, 0, sum.TotalClasses)
	assert.Nil(t, sum.Percentage, "zero records must yield no percentage, not 0%")
	assert.False(t, sum.BelowThreshold)
}

func TestSummarize_LateCountsAsPresent(t *testing.T) {
	sum := Summarize(recordsOf(StatusPresent, StatusLate, StatusAbsent, StatusLate))

	assert.Equal(t, 4, sum.TotalClasses)
	assert.Equal(t, 3, sum.PresentCount)
	assert.Equal(t, 2, sum.LateCount)
	assert.Equal(t, 1, sum.AbsentCount)
	require.NotNil(t, sum.Percentage)
	assert.Equal(t, 75.0, *sum.Percentage)
	assert.False(t, sum.BelowThreshold, "exactly 75% is not below the threshold")
}

func TestSummarize_ExcusedCountsAgainstStudent(t *testing.T) {
	// Excused stays in the denominator but never in the numerator.
	sum := Summarize(recordsOf(StatusPresent, StatusExcused))

	assert.Equal(t, 2, sum.TotalClasses)
	assert.Equal(t, 1, sum.PresentCount)
	assert.Equal(t, 0, sum.AbsentCount)
	require.NotNil(t, sum.Percentage)
	assert.Equal(t, 50.0, *sum.Percentage)
	assert.True(t, sum.BelowThreshold)
}

func TestSummarize_PercentageBounds(t *testing.T) {
	cases := []struct {
		name     string
		records  []Record
		expected float64
		below    bool
	}{
		{"all present", recordsOf(StatusPresent, StatusPresent), 100.0, false},
		{"all absent", recordsOf(StatusAbsent, StatusAbsent, StatusAbsent), 0.0, true},
		{"two thirds", recordsOf(StatusPresent, StatusPresent, StatusAbsent), 66.67, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sum := Summarize(tc.records)
			require.NotNil(t, sum.Percentage)
			assert.Equal(t, tc.expected, *sum.Percentage)
			assert.GreaterOrEqual(t, *sum.Percentage, 0.0)
			assert.LessOrEqual(t, *sum.Percentage, 100.0)
			assert.Equal(t, tc.below, sum.BelowThreshold)
			assert.Equal(t, *sum.Percentage < Threshold, sum.BelowThreshold)
		})
	}
}

func TestSummarize_RealZeroIsNotNoData(t *testing.T) {
	sum := Summarize(recordsOf(StatusAbsent))

	require.NotNil(t, sum.Percentage, "a real 0% must be distinguishable from no data")
	assert.Equal(t, 0.0, *sum.Percentage)
	assert.True(t, sum.BelowThreshold)
}
