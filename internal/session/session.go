// Package session holds the signed-in user explicitly instead of in process
// globals. A Manager is created at startup, Load initialises the session and
// Logout tears it down.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/swamp-dev/mindcare/internal/store"
)

const (
	DefaultUserID   = "local-user"
	DefaultUserName = "Local User"
)

// ErrValidation is returned for an empty or blank user name.
var ErrValidation = errors.New("invalid user")

// User is the account that owns journal entries.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Picture   string    `json:"picture"`
}

// AvatarURL returns the generated avatar image for name.
func AvatarURL(name string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=2563eb&color=fff&size=40", escaped)
}

// Manager loads, creates and tears down the current user.
type Manager struct {
	mu     sync.Mutex
	kv     store.KV
	codec  store.Codec
	logger *slog.Logger
	now    func() time.Time
	user   *User
}

// NewManager creates a Manager over kv. A nil logger discards output.
func NewManager(kv store.KV, codec store.Codec, logger *slog.Logger) *Manager {
	if codec == nil {
		codec = store.JSONCodec{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{kv: kv, codec: codec, logger: logger, now: time.Now}
}

// Load returns the stored user, creating the default local user on first use.
func (m *Manager) Load(ctx context.Context) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user != nil {
		u := *m.user
		return &u, nil
	}

	var u User
	ok, err := store.Load(ctx, m.kv, m.codec, store.KeyUser, &u)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if !ok {
		u = User{
			ID:        DefaultUserID,
			Name:      DefaultUserName,
			CreatedAt: m.now(),
			Picture:   AvatarURL(DefaultUserName),
		}
		if err := m.put(ctx, &u); err != nil {
			return nil, err
		}
		m.logger.Info("created default user", "id", u.ID)
	}

	m.user = &u
	out := u
	return &out, nil
}

// Current returns the loaded user, or nil before Load.
func (m *Manager) Current() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Create replaces the stored user with a new one named name.
func (m *Manager) Create(ctx context.Context, name string) (*User, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating user id: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u := User{
		ID:        id.String(),
		Name:      name,
		CreatedAt: m.now(),
		Picture:   AvatarURL(name),
	}
	if err := m.put(ctx, &u); err != nil {
		return nil, err
	}
	m.user = &u
	m.logger.Info("created user", "id", u.ID)

	out := u
	return &out, nil
}

// Rename changes the current user's name and regenerates the picture.
func (m *Manager) Rename(ctx context.Context, name string) (*User, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	if _, err := m.Load(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u := *m.user
	u.Name = name
	u.Picture = AvatarURL(name)
	if err := m.put(ctx, &u); err != nil {
		return nil, err
	}
	m.user = &u

	out := u
	return &out, nil
}

// Clearer wipes every persisted record. journal.Repository implements it.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Logout tears the session down: data is cleared and the in-memory user is
// dropped. The next Load starts over with the default user.
func (m *Manager) Logout(ctx context.Context, data Clearer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := data.Clear(ctx); err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	m.user = nil
	m.logger.Info("logged out")
	return nil
}

func (m *Manager) put(ctx context.Context, u *User) error {
	if err := store.Put(ctx, m.kv, m.codec, store.KeyUser, u); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidation)
	}
	return name, nil
}
