package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/swamp-dev/mindcare/internal/journal"
)

const (
	neutralMood    = "Neutral"
	neutralScore   = 5
	neutralTip     = "Take some time to reflect on your day and practice mindfulness."
	neutralSummary = "Your day had varying emotions. Continue to practice self-awareness and mindfulness."
	neutralInsight = "Keep maintaining your journaling habit. Regular self-reflection contributes to better mental health and self-awareness."
)

var errEmptyCompletion = errors.New("completion has no choices")

// Remote asks an OpenAI-compatible chat completion endpoint for analysis.
type Remote struct {
	client  openai.Client
	model   string
	timeout time.Duration
	retry   *RetryHandler
	logger  *slog.Logger
}

// NewRemote builds a Remote from cfg. Extra request options are applied after
// the configured ones, which lets tests swap the HTTP client.
func NewRemote(cfg Config, logger *slog.Logger, opts ...option.RequestOption) *Remote {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	// Retries are ours; the SDK's own retry loop is disabled.
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	}
	reqOpts = append(reqOpts, opts...)

	return &Remote{
		client:  openai.NewClient(reqOpts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		retry:   NewRetryHandler(RetryConfig{MaxRetries: cfg.MaxRetries}),
		logger:  logger,
	}
}

// Name returns "remote".
func (r *Remote) Name() string { return "remote" }

// Classify asks for the mood, score and tip of one period.
func (r *Remote) Classify(ctx context.Context, text string) (PeriodResult, error) {
	var raw struct {
		Mood  string      `json:"mood"`
		Score json.Number `json:"score"`
		Tip   string      `json:"tip"`
	}
	err := r.ask(ctx, classifyPrompt(text), &raw)
	var score int
	if err == nil {
		score, err = parseScore(raw.Score)
	}
	if err == nil && strings.TrimSpace(raw.Mood) == "" {
		err = fmt.Errorf("%w: empty mood", ErrMalformedResponse)
	}
	if err != nil {
		if ctx.Err() != nil {
			return PeriodResult{}, ctx.Err()
		}
		r.logger.Warn("mood classification degraded", "error", err)
		return PeriodResult{
			Mood:     neutralMood,
			Score:    neutralScore,
			Tip:      neutralTip,
			Degraded: true,
			Reason:   err,
		}, nil
	}

	return PeriodResult{Mood: strings.TrimSpace(raw.Mood), Score: score, Tip: raw.Tip}, nil
}

// SummarizeDay asks for the overall mood, score and summary of a day. When the
// provider fails the score falls back to the mean of the period scores.
func (r *Remote) SummarizeDay(ctx context.Context, in DayInput) (DayResult, error) {
	var raw struct {
		OverallMood  string      `json:"overallMood"`
		OverallScore json.Number `json:"overallScore"`
		DailySummary string      `json:"dailySummary"`
	}
	err := r.ask(ctx, dayPrompt(in), &raw)
	var score int
	if err == nil {
		score, err = parseScore(raw.OverallScore)
	}
	if err == nil && strings.TrimSpace(raw.OverallMood) == "" {
		err = fmt.Errorf("%w: empty overallMood", ErrMalformedResponse)
	}
	if err != nil {
		if ctx.Err() != nil {
			return DayResult{}, ctx.Err()
		}
		r.logger.Warn("day summary degraded", "error", err)
		return DayResult{
			OverallMood:  neutralMood,
			OverallScore: in.MeanScore(),
			DailySummary: neutralSummary,
			Degraded:     true,
			Reason:       err,
		}, nil
	}

	return DayResult{
		OverallMood:  strings.TrimSpace(raw.OverallMood),
		OverallScore: score,
		DailySummary: raw.DailySummary,
	}, nil
}

// MonthlyInsights asks for a narrative over entries.
func (r *Remote) MonthlyInsights(ctx context.Context, entries []journal.Entry) (Insights, error) {
	var raw struct {
		MonthlyInsights string `json:"monthlyInsights"`
	}
	err := r.ask(ctx, monthPrompt(entries), &raw)
	if err == nil && strings.TrimSpace(raw.MonthlyInsights) == "" {
		err = fmt.Errorf("%w: empty monthlyInsights", ErrMalformedResponse)
	}
	if err != nil {
		if ctx.Err() != nil {
			return Insights{}, ctx.Err()
		}
		r.logger.Warn("monthly insights degraded", "error", err)
		return Insights{MonthlyInsights: neutralInsight, Degraded: true, Reason: err}, nil
	}
	return Insights{MonthlyInsights: raw.MonthlyInsights}, nil
}

// ask sends prompt and decodes the JSON reply into out. Errors are classified
// as ErrTimeout, ErrAnalysisUnavailable or ErrMalformedResponse.
func (r *Remote) ask(ctx context.Context, prompt string, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	format := shared.NewResponseFormatJSONObjectParam()
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(r.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &format,
		},
	}

	start := time.Now()
	var content string
	err := r.retry.Do(callCtx, func() error {
		resp, err := r.client.Chat.Completions.New(callCtx, params)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errEmptyCompletion
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s: %v", ErrTimeout, r.timeout, err)
		}
		if errors.Is(err, errEmptyCompletion) {
			return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
	}

	r.logger.Debug("analysis response", "model", r.model, "duration_ms", time.Since(start).Milliseconds())

	if err := json.Unmarshal([]byte(stripFences(content)), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

var fencePattern = regexp.MustCompile("```(?:json)?\\n?|\\n?```")

// stripFences removes markdown code fences models like to wrap JSON in.
func stripFences(s string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(s, ""))
}

// parseScore accepts integral or fractional numbers (quoted or not) and
// rounds to the nearest integer in [1,10].
func parseScore(n json.Number) (int, error) {
	if n == "" {
		return 0, fmt.Errorf("%w: missing score", ErrMalformedResponse)
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: score %q: %v", ErrMalformedResponse, n, err)
	}
	score := int(math.Round(f))
	if score < 1 || score > 10 {
		return 0, fmt.Errorf("%w: score %s out of range", ErrMalformedResponse, n)
	}
	return score, nil
}
