package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/client/repositories/kvstore"
	"github.com/dmitrijs2005/useradmin/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

const (
	TokenKey = "auth_token"
	UserKey  = "user"
)

var ErrNoUser = errors.New("session: user is required")

// placeholders written by careless serializers; treated like absence
var emptyMarkers = [][]byte{[]byte(""), []byte("undefined"), []byte("null")}

// Store holds the signed-in user and persists it with the bearer token.
// It is safe for concurrent use.
type Store struct {
	repo  kvstore.Repository
	log   logging.Logger
	clock clockwork.Clock

	mu   sync.RWMutex
	user *models.User
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to judge token expiry.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// New builds a Store and rehydrates it from repo.
func New(ctx context.Context, repo kvstore.Repository, log logging.Logger, opts ...Option) *Store {
	s := &Store{repo: repo, log: log.With("component", "session"), clock: clockwork.NewRealClock()}
	for _, o := range opts {
		o(s)
	}
	s.Rehydrate(ctx)
	return s
}

// Rehydrate reloads the user from durable storage. An absent, blank,
// "undefined" or undecodable value yields nil; anything but plain absence
// is also deleted so the next start does not trip over it again.
func (s *Store) Rehydrate(ctx context.Context) *models.User {
	user := s.readUser(ctx)

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	return user.Clone()
}

func (s *Store) readUser(ctx context.Context) *models.User {
	raw, err := s.repo.Get(ctx, UserKey)
	if err != nil {
		s.log.Error(ctx, "reading stored user failed", "error", err)
		return nil
	}
	if raw == nil {
		return nil
	}

	cleaned := bytes.TrimSpace(raw)
	for _, m := range emptyMarkers {
		if bytes.Equal(cleaned, m) {
			s.erase(ctx, UserKey)
			return nil
		}
	}

	var u models.User
	if err := json.Unmarshal(cleaned, &u); err != nil {
		s.log.Warn(ctx, "stored user is corrupt, removing it", "error", err)
		s.erase(ctx, UserKey)
		return nil
	}
	return &u
}

// Login stores user and token. An empty token removes the token slot, which
// leaves a session without credentials rather than failing.
func (s *Store) Login(ctx context.Context, user *models.User, token string) error {
	if user == nil {
		return ErrNoUser
	}
	u := user.Clone()

	data, err := json.Marshal(u)
	if err != nil {
		s.log.Error(ctx, "encoding user failed", "error", err)
	} else {
		err = s.repo.Batch(ctx, func(ctx context.Context, tx kvstore.Repository) error {
			if token == "" {
				if err := tx.Delete(ctx, TokenKey); err != nil {
					return err
				}
			} else if err := tx.Set(ctx, TokenKey, []byte(token)); err != nil {
				return err
			}
			return tx.Set(ctx, UserKey, data)
		})
		if err != nil {
			s.log.Error(ctx, "persisting session failed", "error", err)
		}
	}

	s.mu.Lock()
	s.user = u
	s.mu.Unlock()

	s.log.Info(ctx, "logged in", "user_id", u.ID, "has_token", token != "")
	return nil
}

// Logout clears both slots and the in-memory user. Calling it again is a no-op.
func (s *Store) Logout(ctx context.Context) {
	s.erase(ctx, TokenKey)
	s.erase(ctx, UserKey)

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// Update replaces the stored user and leaves the token as it is.
func (s *Store) Update(ctx context.Context, user *models.User) error {
	if user == nil {
		return ErrNoUser
	}
	u := user.Clone()

	if data, err := json.Marshal(u); err != nil {
		s.log.Error(ctx, "encoding user failed", "error", err)
	} else if err := s.repo.Set(ctx, UserKey, data); err != nil {
		s.log.Error(ctx, "persisting user failed", "error", err)
	}

	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	return nil
}

// ExpireToken drops the credential but keeps the cached user.
func (s *Store) ExpireToken(ctx context.Context) {
	s.erase(ctx, TokenKey)
}

// Token returns the stored bearer token, or "" when there is none.
func (s *Store) Token(ctx context.Context) string {
	raw, err := s.repo.Get(ctx, TokenKey)
	if err != nil {
		s.log.Error(ctx, "reading token failed", "error", err)
		return ""
	}
	return string(bytes.TrimSpace(raw))
}

func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

func (s *Store) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// TokenExpiry reads the exp claim of a JWT token without verifying it.
// ok is false when there is no token or it carries no expiry.
func (s *Store) TokenExpiry(ctx context.Context) (exp time.Time, ok bool) {
	token := s.Token(ctx)
	if token == "" {
		return time.Time{}, false
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		s.log.Debug(ctx, "token is not a readable JWT", "error", err)
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// DropExpiredToken removes the token when its exp claim is already in the
// past and reports whether it did so.
func (s *Store) DropExpiredToken(ctx context.Context) bool {
	exp, ok := s.TokenExpiry(ctx)
	if !ok || s.clock.Now().Before(exp) {
		return false
	}
	s.log.Info(ctx, "stored token expired", "expired_at", exp)
	s.ExpireToken(ctx)
	return true
}

func (s *Store) erase(ctx context.Context, key string) {
	if err := s.repo.Delete(ctx, key); err != nil {
		s.log.Error(ctx, "removing stored value failed", "key", key, "error", err)
	}
}
