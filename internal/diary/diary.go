// Package diary ties the session user, the journal repository and the
// analysis gateway together into the operations the CLI and API expose.
package diary

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/swamp-dev/mindcare/internal/analysis"
	"github.com/swamp-dev/mindcare/internal/journal"
	"github.com/swamp-dev/mindcare/internal/session"
	"github.com/swamp-dev/mindcare/internal/stats"
)

const (
	// DefaultWindow is the number of recent entries the dashboard covers.
	DefaultWindow = 30

	// InsightsPeriod is how far back monthly insights look.
	InsightsPeriod = 30 * 24 * time.Hour
)

// Service is the application layer. All operations act on the session user.
type Service struct {
	repo    *journal.Repository
	gateway analysis.Gateway
	session *session.Manager
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a Service. A nil logger discards output.
func New(repo *journal.Repository, gw analysis.Gateway, sess *session.Manager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, gateway: gw, session: sess, logger: logger, now: time.Now}
}

// Recorded is the outcome of Record.
type Recorded struct {
	Entry    *journal.Entry        `json:"entry"`
	Analysis *analysis.DayAnalysis `json:"analysis"`
}

func (s *Service) userID(ctx context.Context) (string, error) {
	if u := s.session.Current(); u != nil {
		return u.ID, nil
	}
	u, err := s.session.Load(ctx)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

// User returns the session user.
func (s *Service) User(ctx context.Context) (*session.User, error) {
	return s.session.Load(ctx)
}

// SignIn starts a session for a new user named name. Entries of the previous
// user stay stored but are no longer listed.
func (s *Service) SignIn(ctx context.Context, name string) (*session.User, error) {
	u, err := s.session.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("signed in", "id", u.ID)
	return u, nil
}

// RenameUser changes the session user's display name.
func (s *Service) RenameUser(ctx context.Context, name string) (*session.User, error) {
	return s.session.Rename(ctx, name)
}

// Record analyzes a day's texts and stores the result. Nothing is stored when
// ctx is cancelled before the entry is saved.
func (s *Service) Record(ctx context.Context, texts analysis.DayTexts) (*Recorded, error) {
	for i, text := range []string{texts.Morning, texts.Afternoon, texts.Evening} {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: %s entry is required", journal.ErrValidation, journal.Periods[i])
		}
	}

	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	a, err := analysis.AnalyzeDay(ctx, s.gateway, texts)
	if err != nil {
		return nil, fmt.Errorf("analyzing day: %w", err)
	}
	if a.Degraded() {
		s.logger.Warn("storing entry with fallback analysis", "provider", s.gateway.Name())
	}

	// Analysis may have taken a while; do not persist for a caller that left.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, err := s.repo.Save(ctx, uid, a.Fields(s.now().Format("2006-01-02")))
	if err != nil {
		return nil, err
	}
	entry, err := s.repo.Find(ctx, uid, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("recorded journal entry", "id", id, "mood", entry.OverallMood, "score", entry.OverallScore)
	return &Recorded{Entry: entry, Analysis: a}, nil
}

// Entries lists the user's entries newest first; limit <= 0 means all.
func (s *Service) Entries(ctx context.Context, limit int) ([]journal.Entry, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, uid, limit)
}

// Entry returns one of the user's entries.
func (s *Service) Entry(ctx context.Context, id string) (*journal.Entry, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, uid, id)
}

// Update patches one of the user's entries and returns the result.
func (s *Service) Update(ctx context.Context, id string, p journal.Patch) (*journal.Entry, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, uid, id, p); err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, uid, id)
}

// Delete removes one of the user's entries and reports whether it existed.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return false, err
	}
	return s.repo.Delete(ctx, uid, id)
}

// Export renders the user's entries as markdown.
func (s *Service) Export(ctx context.Context) (string, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return "", err
	}
	return s.repo.ExportMarkdown(ctx, uid)
}

// Dashboard summarizes the newest window entries (DefaultWindow when <= 0).
func (s *Service) Dashboard(ctx context.Context, window int) (*stats.Summary, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	entries, err := s.Entries(ctx, window)
	if err != nil {
		return nil, err
	}
	summary, err := stats.Summarize(entries, s.now(), window)
	if err != nil {
		return nil, fmt.Errorf("summarizing entries: %w", err)
	}
	return summary, nil
}

// Insights asks the gateway about the last InsightsPeriod of entries. With no
// entries the gateway is not called and the result is empty.
func (s *Service) Insights(ctx context.Context) (analysis.Insights, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return analysis.Insights{}, err
	}
	entries, err := s.repo.ListSince(ctx, uid, s.now().Add(-InsightsPeriod))
	if err != nil {
		return analysis.Insights{}, err
	}
	if len(entries) == 0 {
		return analysis.Insights{}, nil
	}
	return s.gateway.MonthlyInsights(ctx, entries)
}

// Clear logs out, wiping every stored entry and the user record. The session
// starts over with the default user on next use.
func (s *Service) Clear(ctx context.Context) error {
	return s.session.Logout(ctx, s.repo)
}
