package analysis

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/swamp-dev/mindcare/internal/journal"
)

var demoMoods = []string{"Happy", "Content", "Neutral", "Anxious", "Sad", "Excited", "Stressed"}

var demoTips = map[string]string{
	"Happy":    "Keep up the positive energy! Consider sharing your joy with others.",
	"Content":  "You're in a good place. Practice gratitude for this peaceful state.",
	"Neutral":  "Take some time to reflect on what might bring you more joy today.",
	"Anxious":  "Try some deep breathing exercises or a short walk to calm your mind.",
	"Sad":      "It's okay to feel sad. Consider reaching out to a friend or practicing self-care.",
	"Excited":  "Channel this energy into something productive or creative!",
	"Stressed": "Take a break, practice mindfulness, or try some relaxation techniques.",
}

var demoSummaries = []string{
	"Your day showed a nice balance of emotions. The variety in your feelings suggests you're experiencing life fully and authentically.",
	"Today's emotional journey reflects natural human responses to daily experiences. Continue practicing mindfulness to stay aware of these patterns.",
	"Your mood progression throughout the day is completely normal. Consider what specific events or activities influenced your emotional state.",
	"The emotional shifts you experienced today show healthy emotional responsiveness. Keep journaling to maintain this self-awareness.",
	"Your day's emotional landscape shows resilience and adaptability. These are valuable traits for mental wellness.",
}

var demoInsights = []string{
	"Over the past month, you've shown remarkable consistency in your journaling practice. Your emotional awareness has likely improved through this regular reflection. The patterns show you tend to have higher energy in the mornings, with some variability in afternoon moods. Consider scheduling important tasks during your peak energy times.",
	"Your monthly data reveals a healthy range of emotions, indicating you're fully experiencing life's ups and downs. There's a slight trend toward more positive emotions on weekends, suggesting work-life balance awareness. Try incorporating some weekend activities into your weekday routine for better overall mood stability.",
	"The past month shows your emotional resilience and adaptability. You've navigated various moods effectively, demonstrating good emotional intelligence. Your evening reflections tend to be more thoughtful and grounded. Consider using evening time for planning and goal-setting activities.",
	"Your journaling reveals strong self-awareness and emotional processing skills. The variety in your daily experiences and emotional responses shows you're living an engaged life. Focus on maintaining the positive patterns you've established while being gentle with yourself during challenging periods.",
}

// Fallback is the demo provider used when no API key is configured. Results
// are pseudo-random and not reproducible unless a seeded source is supplied.
type Fallback struct {
	mu    sync.Mutex
	rng   *rand.Rand
	delay time.Duration
}

// NewFallback creates a demo provider. A nil src seeds from the runtime.
func NewFallback(src rand.Source) *Fallback {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Fallback{rng: rand.New(src)}
}

// WithDelay makes every call wait d (or until ctx is done) to mimic network
// latency.
func (f *Fallback) WithDelay(d time.Duration) *Fallback {
	f.delay = d
	return f
}

// Name returns "demo".
func (f *Fallback) Name() string { return "demo" }

func (f *Fallback) wait(ctx context.Context) error {
	if f.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(f.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Fallback) intN(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rng.IntN(n)
}

// Classify picks a random demo mood and a score in [1,10].
func (f *Fallback) Classify(ctx context.Context, _ string) (PeriodResult, error) {
	if err := f.wait(ctx); err != nil {
		return PeriodResult{}, err
	}
	mood := demoMoods[f.intN(len(demoMoods))]
	return PeriodResult{
		Mood:  mood,
		Score: f.intN(10) + 1,
		Tip:   demoTips[mood],
	}, nil
}

// SummarizeDay uses the most frequent period mood (earliest period wins ties)
// and the rounded mean of the period scores.
func (f *Fallback) SummarizeDay(ctx context.Context, in DayInput) (DayResult, error) {
	if err := f.wait(ctx); err != nil {
		return DayResult{}, err
	}
	return DayResult{
		OverallMood:  dominantMood(in.Morning.Mood, in.Afternoon.Mood, in.Evening.Mood),
		OverallScore: in.MeanScore(),
		DailySummary: demoSummaries[f.intN(len(demoSummaries))],
	}, nil
}

// MonthlyInsights returns one of the canned insights.
func (f *Fallback) MonthlyInsights(ctx context.Context, _ []journal.Entry) (Insights, error) {
	if err := f.wait(ctx); err != nil {
		return Insights{}, err
	}
	return Insights{MonthlyInsights: demoInsights[f.intN(len(demoInsights))]}, nil
}

func dominantMood(moods ...string) string {
	best, bestCount := "", 0
	for _, m := range moods {
		count := 0
		for _, other := range moods {
			if other == m {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = m, count
		}
	}
	return best
}
