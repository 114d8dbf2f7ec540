// Package journal owns the journal entry schema and the repository that
// persists entries for each user.
package journal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/swamp-dev/mindcare/internal/store"
)

// Repository stores every user's entries as one collection under
// store.KeyJournals. Each operation reads the whole collection, applies the
// change and writes it back; mu serializes that cycle within the process.
type Repository struct {
	mu     sync.Mutex
	kv     store.KV
	codec  store.Codec
	logger *slog.Logger
	now    func() time.Time
	newID  func() (string, error)
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDGenerator replaces the UUIDv7 generator.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(r *Repository) { r.newID = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// NewRepository creates a repository over kv.
func NewRepository(kv store.KV, codec store.Codec, opts ...Option) *Repository {
	if codec == nil {
		codec = store.JSONCodec{}
	}
	r := &Repository{
		kv:     kv,
		codec:  codec,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		newID:  newUUID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func newUUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (r *Repository) load(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if _, err := store.Load(ctx, r.kv, r.codec, store.KeyJournals, &entries); err != nil {
		return nil, fmt.Errorf("loading journal entries: %w", err)
	}
	return entries, nil
}

func (r *Repository) persist(ctx context.Context, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	return store.Put(ctx, r.kv, r.codec, store.KeyJournals, entries)
}

// Save validates f, stamps a new entry for userID and appends it. The returned
// ID is only valid if err is nil.
func (r *Repository) Save(ctx context.Context, userID string, f Fields) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if err := f.Validate(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load(ctx)
	if err != nil {
		return "", err
	}

	id, err := r.newID()
	if err != nil {
		return "", fmt.Errorf("generating entry id: %w", err)
	}
	for _, e := range entries {
		if e.ID == id {
			return "", fmt.Errorf("%w: generated duplicate entry id %s", ErrValidation, id)
		}
	}

	now := r.now()
	entries = append(entries, Entry{
		ID:        id,
		UserID:    userID,
		Fields:    f,
		CreatedAt: now,
		UpdatedAt: now,
	})

	if err := r.persist(ctx, entries); err != nil {
		return "", fmt.Errorf("saving journal entry: %w", err)
	}

	r.logger.Debug("saved journal entry", "id", id, "user", userID)
	return id, nil
}

// List returns userID's entries newest first. A positive limit keeps only the
// newest limit entries.
func (r *Repository) List(ctx context.Context, userID string, limit int) ([]Entry, error) {
	r.mu.Lock()
	entries, err := r.load(ctx)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	owned := ownedNewestFirst(entries, userID)
	if limit > 0 && len(owned) > limit {
		owned = owned[:limit]
	}
	return owned, nil
}

// ListSince returns userID's entries created at or after since, oldest first.
func (r *Repository) ListSince(ctx context.Context, userID string, since time.Time) ([]Entry, error) {
	all, err := r.List(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if !all[i].CreatedAt.Before(since) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// Find returns a single entry.
func (r *Repository) Find(ctx context.Context, userID, id string) (*Entry, error) {
	r.mu.Lock()
	entries, err := r.load(ctx)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	idx := indexOf(entries, userID, id)
	if idx < 0 {
		return nil, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	e := entries[idx]
	return &e, nil
}

// Update merges p into the matching entry and refreshes UpdatedAt.
func (r *Repository) Update(ctx context.Context, userID, id string, p Patch) error {
	if err := p.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load(ctx)
	if err != nil {
		return err
	}

	idx := indexOf(entries, userID, id)
	if idx < 0 {
		return fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}

	e := &entries[idx]
	p.Apply(&e.Fields)
	if err := e.Fields.Validate(); err != nil {
		return err
	}

	// UpdatedAt must move forward even when the clock has not.
	now := r.now()
	if !now.After(e.UpdatedAt) {
		now = e.UpdatedAt.Add(time.Nanosecond)
	}
	e.UpdatedAt = now

	if err := r.persist(ctx, entries); err != nil {
		return fmt.Errorf("updating journal entry: %w", err)
	}

	r.logger.Debug("updated journal entry", "id", id, "user", userID)
	return nil
}

// Delete removes the matching entry. It reports false without error when
// nothing matched, so callers decide whether that is a problem.
func (r *Repository) Delete(ctx context.Context, userID, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load(ctx)
	if err != nil {
		return false, err
	}

	idx := indexOf(entries, userID, id)
	if idx < 0 {
		return false, nil
	}

	entries = append(entries[:idx], entries[idx+1:]...)
	if err := r.persist(ctx, entries); err != nil {
		return false, fmt.Errorf("deleting journal entry: %w", err)
	}

	r.logger.Debug("deleted journal entry", "id", id, "user", userID)
	return true, nil
}

// Clear irreversibly removes every entry of every user and the stored user
// record.
func (r *Repository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := errors.Join(
		r.kv.Remove(ctx, store.KeyJournals),
		r.kv.Remove(ctx, store.KeyUser),
	)
	if err != nil {
		return fmt.Errorf("clearing data: %w", err)
	}

	r.logger.Info("cleared all journal data")
	return nil
}

func indexOf(entries []Entry, userID, id string) int {
	for i, e := range entries {
		if e.UserID == userID && e.ID == id {
			return i
		}
	}
	return -1
}

// ownedNewestFirst filters by owner and sorts by CreatedAt descending. Entries
// with equal timestamps keep reverse insertion order.
func ownedNewestFirst(entries []Entry, userID string) []Entry {
	owned := make([]Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].UserID == userID {
			owned = append(owned, entries[i])
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	return owned
}
