package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/swamp-dev/mindcare/internal/journal"
)

// TrendDirection describes how recent scores compare to older ones.
type TrendDirection string

const (
	Improving TrendDirection = "improving"
	Stable    TrendDirection = "stable"
	Declining TrendDirection = "declining"
)

// directionThreshold is the minimum change in average overall score, in
// points, that counts as a trend.
var directionThreshold = decimal.NewFromInt(1)

// Direction compares the average overall score of the newer half of entries
// with the older half. Fewer than two entries are always stable.
func Direction(entries []journal.Entry) (TrendDirection, error) {
	if len(entries) < 2 {
		return Stable, nil
	}

	// Entries are newest first. For odd lengths the middle entry goes to the
	// older half.
	recentCount := len(entries) / 2
	recent, err := meanScore(entries[:recentCount])
	if err != nil {
		return "", err
	}
	older, err := meanScore(entries[recentCount:])
	if err != nil {
		return "", err
	}

	diff := recent.Sub(older)
	switch {
	case diff.GreaterThanOrEqual(directionThreshold):
		return Improving, nil
	case diff.Neg().GreaterThanOrEqual(directionThreshold):
		return Declining, nil
	default:
		return Stable, nil
	}
}

// Band buckets a score for display: great (8+), good (6-7), fair (4-5) or
// low.
func Band(score int) string {
	switch {
	case score >= 8:
		return "great"
	case score >= 6:
		return "good"
	case score >= 4:
		return "fair"
	default:
		return "low"
	}
}

// Summary is everything the dashboard shows.
type Summary struct {
	TotalEntries     int             `json:"totalEntries"`
	AverageScore     decimal.Decimal `json:"averageScore"`
	MostCommonMood   string          `json:"mostCommonMood,omitempty"`
	MoodDistribution []MoodShare     `json:"moodDistribution"`
	Trend            []TrendPoint    `json:"trend"`
	Direction        TrendDirection  `json:"direction"`
	WeeklyActivity   []DayCount      `json:"weeklyActivity"`
}

// Summarize computes the dashboard over the newest window entries (all of
// them when window <= 0).
func Summarize(entries []journal.Entry, now time.Time, window int) (*Summary, error) {
	if window > 0 && len(entries) > window {
		entries = entries[:window]
	}

	avg, err := AverageScore(entries)
	if err != nil {
		return nil, err
	}
	dist, err := MoodDistribution(entries)
	if err != nil {
		return nil, err
	}
	trend, err := DailyTrend(entries, 0)
	if err != nil {
		return nil, err
	}
	dir, err := Direction(entries)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		TotalEntries:     len(entries),
		AverageScore:     avg,
		MoodDistribution: dist,
		Trend:            trend,
		Direction:        dir,
		WeeklyActivity:   WeeklyActivity(entries, now),
	}
	if len(dist) > 0 {
		s.MostCommonMood = dist[0].Mood
	}
	return s, nil
}
