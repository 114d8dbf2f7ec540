package analysis

import (
	"context"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewSelectsProvider(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"no key", Config{}, "demo"},
		{"placeholder key", Config{APIKey: "demo_gemini_api_key"}, "demo"},
		{"blank key", Config{APIKey: "   "}, "demo"},
		{"real key", Config{APIKey: "AIza-real"}, "remote"},
		{"forced demo", Config{Provider: "demo", APIKey: "AIza-real"}, "demo"},
		{"forced remote", Config{Provider: "remote"}, "remote"},
		{"auto with key", Config{Provider: "auto", APIKey: "k"}, "remote"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, New(tt.cfg, quietLogger()).Name())
		})
	}
}

func TestFallbackClassifyWithoutCredential(t *testing.T) {
	gw := New(Config{}, quietLogger())

	for i := 0; i < 200; i++ {
		res, err := gw.Classify(context.Background(), "I feel okay")
		require.NoError(t, err)
		require.Contains(t, demoMoods, res.Mood)
		require.GreaterOrEqual(t, res.Score, 1)
		require.LessOrEqual(t, res.Score, 10)
		require.Equal(t, demoTips[res.Mood], res.Tip)
		require.False(t, res.Degraded)
	}
}

func TestFallbackSeededIsReproducible(t *testing.T) {
	a := NewFallback(rand.NewPCG(1, 2))
	b := NewFallback(rand.NewPCG(1, 2))

	for i := 0; i < 10; i++ {
		ra, _ := a.Classify(context.Background(), "x")
		rb, _ := b.Classify(context.Background(), "x")
		require.Equal(t, ra, rb)
	}
}

func TestFallbackSummarizeDay(t *testing.T) {
	tests := []struct {
		name  string
		moods [3]string
		want  string
	}{
		{"majority", [3]string{"Sad", "Happy", "Happy"}, "Happy"},
		{"all different", [3]string{"Anxious", "Happy", "Sad"}, "Anxious"},
		{"all same", [3]string{"Content", "Content", "Content"}, "Content"},
	}

	f := NewFallback(rand.NewPCG(7, 7))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := DayInput{
				Morning:   PeriodResult{Mood: tt.moods[0], Score: 2},
				Afternoon: PeriodResult{Mood: tt.moods[1], Score: 5},
				Evening:   PeriodResult{Mood: tt.moods[2], Score: 6},
			}
			res, err := f.SummarizeDay(context.Background(), in)
			require.NoError(t, err)
			require.Equal(t, tt.want, res.OverallMood)
			require.Equal(t, 4, res.OverallScore)
			require.True(t, slices.Contains(demoSummaries, res.DailySummary))
		})
	}
}

func TestFallbackMonthlyInsights(t *testing.T) {
	res, err := NewFallback(nil).MonthlyInsights(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, slices.Contains(demoInsights, res.MonthlyInsights))
}

func TestFallbackHonorsContext(t *testing.T) {
	f := NewFallback(nil).WithDelay(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := f.Classify(ctx, "x")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), time.Second)
}

func TestMeanScore(t *testing.T) {
	tests := []struct {
		scores [3]int
		want   int
	}{
		{[3]int{5, 5, 5}, 5},
		{[3]int{8, 3, 6}, 6},    // 5.67
		{[3]int{1, 1, 2}, 1},    // 1.33
		{[3]int{10, 10, 9}, 10}, // 9.67
		{[3]int{1, 2, 2}, 2},    // 1.67
	}

	for _, tt := range tests {
		in := DayInput{
			Morning:   PeriodResult{Score: tt.scores[0]},
			Afternoon: PeriodResult{Score: tt.scores[1]},
			Evening:   PeriodResult{Score: tt.scores[2]},
		}
		require.Equal(t, tt.want, in.MeanScore(), "scores %v", tt.scores)
	}
}
