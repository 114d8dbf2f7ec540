package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/swamp-dev/mindcare/internal/journal"
)

// DayAnalysis is the full analysis of one day, ready to be stored.
type DayAnalysis struct {
	Texts     DayTexts     `json:"texts"`
	Morning   PeriodResult `json:"morning"`
	Afternoon PeriodResult `json:"afternoon"`
	Evening   PeriodResult `json:"evening"`
	Day       DayResult    `json:"day"`
}

// Degraded reports whether any part of the analysis used neutral defaults.
func (a *DayAnalysis) Degraded() bool {
	return a.Morning.Degraded || a.Afternoon.Degraded || a.Evening.Degraded || a.Day.Degraded
}

// Fields converts the analysis into entry fields for date (YYYY-MM-DD).
func (a *DayAnalysis) Fields(date string) journal.Fields {
	return journal.Fields{
		Morning:        a.Texts.Morning,
		Afternoon:      a.Texts.Afternoon,
		Evening:        a.Texts.Evening,
		MorningMood:    a.Morning.Mood,
		MorningScore:   a.Morning.Score,
		MorningTip:     a.Morning.Tip,
		AfternoonMood:  a.Afternoon.Mood,
		AfternoonScore: a.Afternoon.Score,
		AfternoonTip:   a.Afternoon.Tip,
		EveningMood:    a.Evening.Mood,
		EveningScore:   a.Evening.Score,
		EveningTip:     a.Evening.Tip,
		OverallMood:    a.Day.OverallMood,
		OverallScore:   a.Day.OverallScore,
		DailySummary:   a.Day.DailySummary,
		Date:           date,
	}
}

// AnalyzeDay classifies the three periods concurrently and then, once all
// three are done, summarizes the day. It fails only when ctx is done.
func AnalyzeDay(ctx context.Context, gw Gateway, texts DayTexts) (*DayAnalysis, error) {
	var results [3]PeriodResult

	g, gctx := errgroup.WithContext(ctx)
	for i, text := range []string{texts.Morning, texts.Afternoon, texts.Evening} {
		g.Go(func() error {
			res, err := gw.Classify(gctx, text)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	day, err := gw.SummarizeDay(ctx, DayInput{
		Texts:     texts,
		Morning:   results[0],
		Afternoon: results[1],
		Evening:   results[2],
	})
	if err != nil {
		return nil, err
	}

	return &DayAnalysis{
		Texts:     texts,
		Morning:   results[0],
		Afternoon: results[1],
		Evening:   results[2],
		Day:       day,
	}, nil
}
