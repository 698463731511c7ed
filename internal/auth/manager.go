// Package auth implements the session manager: password digests, signed
// tokens, the persisted token slot and identity resolution.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/epic-events/internal/apperr"
	"github.com/diewo77/epic-events/internal/lib/sl"
	"github.com/diewo77/epic-events/internal/models"
	"github.com/diewo77/epic-events/internal/report"
)

// ErrUserNotFound is returned by a UserLookup when no user has the email.
var ErrUserNotFound = errors.New("user not found")

// UserLookup loads a live user, role included, by email.
type UserLookup func(ctx context.Context, email string) (*models.User, error)

// GormUserLookup looks users up in db.
func GormUserLookup(db *gorm.DB) UserLookup {
	return func(ctx context.Context, email string) (*models.User, error) {
		var u models.User
		err := db.WithContext(ctx).Preload("Role").Where("LOWER(email) = LOWER(?)", strings.TrimSpace(email)).First(&u).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("auth.GormUserLookup: %w", err)
		}
		return &u, nil
	}
}

// Session is the resolved identity passed explicitly into every operation.
type Session struct {
	User      *models.User
	ExpiresAt time.Time
}

// Identity returns the session user, or nil for a nil session.
func (s *Session) Identity() *models.User {
	if s == nil {
		return nil
	}
	return s.User
}

// Manager ties the digest, signer and token store to the user store.
type Manager struct {
	users    UserLookup
	digest   Digest
	signer   Signer
	store    TokenStore
	reporter report.Reporter
	log      *slog.Logger

	dummyOnce sync.Once
	dummy     string
}

// Options configures a Manager. Reporter and Logger are optional.
type Options struct {
	Users    UserLookup
	Digest   Digest
	Signer   Signer
	Store    TokenStore
	Reporter report.Reporter
	Logger   *slog.Logger
}

func NewManager(opts Options) *Manager {
	m := &Manager{
		users:    opts.Users,
		digest:   opts.Digest,
		signer:   opts.Signer,
		store:    opts.Store,
		reporter: opts.Reporter,
		log:      opts.Logger,
	}
	if m.reporter == nil {
		m.reporter = report.Nop{}
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	return m
}

const invalidCredentials = "invalid email or password"

// Authenticate verifies credentials. Unknown email and wrong password give
// the same AuthError so callers cannot enumerate accounts.
func (m *Manager) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	const op = "Authenticate"
	email = strings.TrimSpace(email)

	user, err := m.users(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		// Burn the same hashing time as a real comparison.
		m.digest.Verify(password, m.dummyDigest())
		m.reportFailedLogin(ctx, email)
		return nil, apperr.Auth(op, invalidCredentials)
	case err != nil:
		return nil, apperr.Storage(op, err)
	}

	if !m.digest.Verify(password, user.PasswordHash) {
		m.reportFailedLogin(ctx, email)
		return nil, apperr.Auth(op, invalidCredentials)
	}
	return user, nil
}

func (m *Manager) dummyDigest() string {
	m.dummyOnce.Do(func() {
		m.dummy, _ = m.digest.Hash("epic-events-dummy-password")
	})
	return m.dummy
}

func (m *Manager) reportFailedLogin(ctx context.Context, email string) {
	m.reporter.Report(ctx, report.New(report.FailedLogin, report.LevelWarning,
		"failed login attempt", map[string]any{"email": email}))
}

// Issue signs a token for user.
func (m *Manager) Issue(user *models.User) (string, error) {
	return m.signer.Sign(user.Email, string(user.RoleName()))
}

// Persist stores token in the current-identity slot, replacing any previous one.
func (m *Manager) Persist(token string) error {
	return m.store.Save(token)
}

// Login authenticates, issues and persists a token, and returns the session.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	const op = "Login"
	user, err := m.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, err := m.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := m.Persist(token); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, err := m.signer.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m.reporter.Report(ctx, report.New(report.UserLoggedIn, report.LevelInfo,
		"user logged in", map[string]any{"user_id": user.ID, "role": string(user.RoleName())}))
	return &Session{User: user, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Resolve returns the session behind the persisted token, or nil when there
// is none or it fails verification. The subject is always re-read from the
// store so deleted or changed users are never served from the token.
func (m *Manager) Resolve(ctx context.Context) *Session {
	token, err := m.store.Load()
	if err != nil {
		if !errors.Is(err, ErrNoToken) {
			m.log.Debug("token unreadable", sl.Err(err))
		}
		return nil
	}
	claims, err := m.signer.Parse(token)
	if err != nil {
		m.log.Debug("token rejected", sl.Err(err))
		return nil
	}
	user, err := m.users(ctx, claims.Email())
	if err != nil {
		m.log.Debug("token subject unavailable", sl.Err(err))
		return nil
	}
	return &Session{User: user, ExpiresAt: claims.ExpiresAt.Time}
}

// Logout clears the persisted token. It is idempotent.
func (m *Manager) Logout() error {
	return m.store.Clear()
}
