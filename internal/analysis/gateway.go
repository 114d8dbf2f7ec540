// Package analysis classifies journal text into moods and scores.
//
// Two providers implement Gateway: Remote talks to an OpenAI-compatible chat
// endpoint (Gemini by default) and Fallback produces local demo results. New
// picks one at startup from configuration. Remote never surfaces provider
// failures to its caller; it substitutes neutral results and marks them
// Degraded instead.
package analysis

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/swamp-dev/mindcare/internal/journal"
)

var (
	// ErrAnalysisUnavailable means the provider could not be reached or
	// returned an error status.
	ErrAnalysisUnavailable = errors.New("analysis unavailable")

	// ErrTimeout means the provider did not answer within the per-call timeout.
	ErrTimeout = errors.New("analysis timed out")

	// ErrMalformedResponse means the provider answered with something that
	// does not fit the expected shape.
	ErrMalformedResponse = errors.New("malformed analysis response")
)

// Moods is the conventional label set offered to the remote provider. Other
// labels are accepted as-is.
var Moods = []string{
	"Happy", "Sad", "Neutral", "Anxious", "Excited",
	"Stressed", "Angry", "Content", "Confused", "Hopeful",
}

// Gateway is a mood analysis provider. Methods only return an error when ctx
// is done; every other failure is absorbed into a Degraded result.
type Gateway interface {
	Name() string
	Classify(ctx context.Context, text string) (PeriodResult, error)
	SummarizeDay(ctx context.Context, in DayInput) (DayResult, error)
	MonthlyInsights(ctx context.Context, entries []journal.Entry) (Insights, error)
}

// PeriodResult is the analysis of one period's text.
type PeriodResult struct {
	Mood  string `json:"mood"`
	Score int    `json:"score"`
	Tip   string `json:"tip"`

	Degraded bool  `json:"degraded,omitempty"`
	Reason   error `json:"-"`
}

// DayTexts is what the user wrote for each period.
type DayTexts struct {
	Morning   string `json:"morning"`
	Afternoon string `json:"afternoon"`
	Evening   string `json:"evening"`
}

// DayInput is the day-summary request: the texts plus the per-period results.
type DayInput struct {
	Texts     DayTexts
	Morning   PeriodResult
	Afternoon PeriodResult
	Evening   PeriodResult
}

// MeanScore is the rounded mean of the three period scores.
func (in DayInput) MeanScore() int {
	sum := in.Morning.Score + in.Afternoon.Score + in.Evening.Score
	// Integer round-half-up of sum/3.
	return (2*sum + 3) / 6
}

// DayResult is the overall analysis of a day.
type DayResult struct {
	OverallMood  string `json:"overallMood"`
	OverallScore int    `json:"overallScore"`
	DailySummary string `json:"dailySummary"`

	Degraded bool  `json:"degraded,omitempty"`
	Reason   error `json:"-"`
}

// Insights is the narrative over a month of entries.
type Insights struct {
	MonthlyInsights string `json:"monthlyInsights"`

	Degraded bool  `json:"degraded,omitempty"`
	Reason   error `json:"-"`
}

// Config selects and tunes the provider.
type Config struct {
	// Provider is "auto", "demo" or "remote". Auto uses the remote provider
	// when a real API key is present.
	Provider   string
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 10 * time.Second

	// placeholderKey is the key shipped in sample environments; it means
	// "not configured".
	placeholderKey = "demo_gemini_api_key"
)

// UseDemo reports whether cfg selects the local fallback provider.
func (c Config) UseDemo() bool {
	switch strings.ToLower(c.Provider) {
	case "demo":
		return true
	case "remote":
		return false
	}
	key := strings.TrimSpace(c.APIKey)
	return key == "" || key == placeholderKey
}

// New returns the provider cfg selects.
func New(cfg Config, logger *slog.Logger) Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.UseDemo() {
		logger.Info("analysis provider selected", "provider", "demo")
		return NewFallback(nil)
	}
	logger.Info("analysis provider selected", "provider", "remote", "model", cfg.Model)
	return NewRemote(cfg, logger)
}
