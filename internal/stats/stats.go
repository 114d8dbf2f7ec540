// Package stats derives dashboard statistics from a snapshot of journal
// entries. Every function is pure: entries are expected newest first, as
// returned by journal.Repository.List.
package stats

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/swamp-dev/mindcare/internal/journal"
)

// ErrMalformedEntry is returned when an entry cannot be aggregated, such as a
// score outside [1,10] or a missing overall mood.
var ErrMalformedEntry = errors.New("malformed journal entry")

// MoodShare is one row of the mood distribution.
type MoodShare struct {
	Mood       string          `json:"mood"`
	Count      int             `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

// TrendPoint is one entry on the score chart.
type TrendPoint struct {
	ID             string    `json:"id"`
	Date           string    `json:"date"`
	CreatedAt      time.Time `json:"createdAt"`
	Mood           string    `json:"mood"`
	MorningScore   int       `json:"morningScore"`
	AfternoonScore int       `json:"afternoonScore"`
	EveningScore   int       `json:"eveningScore"`
	OverallScore   int       `json:"overallScore"`
}

// DayCount is the number of entries written on one calendar day.
type DayCount struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Entries int    `json:"entries"`
}

func checkScore(e *journal.Entry, name string, score int) error {
	if score < 1 || score > 10 {
		return fmt.Errorf("%w: entry %s has %s %d", ErrMalformedEntry, e.ID, name, score)
	}
	return nil
}

// AverageScore returns the mean overall score rounded half-up to one decimal
// place. An empty slice averages to zero.
func AverageScore(entries []journal.Entry) (decimal.Decimal, error) {
	avg, err := meanScore(entries)
	if err != nil {
		return decimal.Zero, err
	}
	return avg.Round(1), nil
}

// meanScore is the unrounded mean overall score; zero for no entries.
func meanScore(entries []journal.Entry) (decimal.Decimal, error) {
	if len(entries) == 0 {
		return decimal.Zero, nil
	}

	var sum int64
	for i := range entries {
		if err := checkScore(&entries[i], "overallScore", entries[i].OverallScore); err != nil {
			return decimal.Zero, err
		}
		sum += int64(entries[i].OverallScore)
	}

	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(len(entries)))), nil
}

// MoodDistribution groups entries by overall mood, most frequent first. Ties
// keep the order in which the moods first appear. Each percentage is
// count/total*100 rounded half-up to one decimal place, so the sum may differ
// from 100 by rounding.
func MoodDistribution(entries []journal.Entry) ([]MoodShare, error) {
	if len(entries) == 0 {
		return []MoodShare{}, nil
	}

	index := make(map[string]int)
	var shares []MoodShare
	for i := range entries {
		mood := entries[i].OverallMood
		if mood == "" {
			return nil, fmt.Errorf("%w: entry %s has no overall mood", ErrMalformedEntry, entries[i].ID)
		}
		if j, ok := index[mood]; ok {
			shares[j].Count++
			continue
		}
		index[mood] = len(shares)
		shares = append(shares, MoodShare{Mood: mood, Count: 1})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Count > shares[j].Count
	})

	total := decimal.NewFromInt(int64(len(entries)))
	for i := range shares {
		shares[i].Percentage = decimal.NewFromInt(int64(shares[i].Count) * 100).Div(total).Round(1)
	}
	return shares, nil
}

// DailyTrend returns the newest window entries oldest first for charting. A
// window <= 0 uses every entry.
func DailyTrend(entries []journal.Entry, window int) ([]TrendPoint, error) {
	n := len(entries)
	if window > 0 && window < n {
		n = window
	}

	points := make([]TrendPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		e := &entries[i]
		for _, s := range []struct {
			name  string
			score int
		}{
			{"morningScore", e.MorningScore},
			{"afternoonScore", e.AfternoonScore},
			{"eveningScore", e.EveningScore},
			{"overallScore", e.OverallScore},
		} {
			if err := checkScore(e, s.name, s.score); err != nil {
				return nil, err
			}
		}

		date := e.Date
		if date == "" {
			date = e.CreatedAt.Format("2006-01-02")
		}
		points = append(points, TrendPoint{
			ID:             e.ID,
			Date:           date,
			CreatedAt:      e.CreatedAt,
			Mood:           e.OverallMood,
			MorningScore:   e.MorningScore,
			AfternoonScore: e.AfternoonScore,
			EveningScore:   e.EveningScore,
			OverallScore:   e.OverallScore,
		})
	}
	return points, nil
}

// WeeklyActivity counts entries per calendar day for the seven days ending on
// now's day, oldest first. Days are computed in now's location.
func WeeklyActivity(entries []journal.Entry, now time.Time) []DayCount {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	days := make([]DayCount, 7)
	index := make(map[string]int, 7)
	for i := 0; i < 7; i++ {
		d := today.AddDate(0, 0, i-6)
		key := d.Format("2006-01-02")
		days[i] = DayCount{Date: key, Weekday: d.Weekday().String()[:3]}
		index[key] = i
	}

	for i := range entries {
		key := entries[i].CreatedAt.In(loc).Format("2006-01-02")
		if j, ok := index[key]; ok {
			days[j].Entries++
		}
	}
	return days
}
