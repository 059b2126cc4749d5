// Package auth maintains the local account registry and the single active
// session. Every other store consults it to scope data per user.
package auth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/apex/internal/apperr"
	"github.com/dukerupert/apex/internal/collection"
	"github.com/dukerupert/apex/internal/kv"
	"github.com/dukerupert/apex/internal/model"
)

const (
	registryKey = "apex_users_registry"
	sessionKey  = "apex_auth_session"
	sessionTTL  = 24 * time.Hour

	minPasswordLen = 8
)

// Service is the session context for one process. Tests construct several
// independent instances over separate stores to model separate users.
type Service struct {
	// mu serializes registry mutations; two concurrent signups share the
	// load-check-append-save of one namespace.
	mu     sync.Mutex
	store  kv.Store
	logger *slog.Logger
}

func NewService(store kv.Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Signup registers a new account and establishes a session for it. The
// returned projection never carries credential material.
func (s *Service) Signup(name, email, password string) (*model.User, error) {
	if name == "" || email == "" || len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be %d+ characters", apperr.ErrValidation, minPasswordLen)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := collection.Load[model.Account](s.store, registryKey)
	for _, a := range accounts {
		if strings.EqualFold(a.Email, email) {
			return nil, apperr.ErrConflict
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := model.Account{
		User: model.User{
			ID:    uuid.NewString(),
			Email: strings.ToLower(email),
			Name:  name,
			Role:  model.RoleUser,
		},
		PasswordHash: string(hash),
	}

	// A failed registry write must surface: silently losing a just-created
	// account would be a correctness bug, not a degraded mode.
	if err := collection.Save(s.store, registryKey, append(accounts, account)); err != nil {
		return nil, fmt.Errorf("save registry: %w", err)
	}

	if err := s.establishSession(account.User); err != nil {
		return nil, err
	}
	u := account.User
	return &u, nil
}

// Login validates credentials and establishes a fresh session. Unknown
// email and wrong password return the same generic error so neither case
// leaks which part failed.
func (s *Service) Login(email, password string) (*model.User, error) {
	accounts := collection.Load[model.Account](s.store, registryKey)

	var account *model.Account
	for i := range accounts {
		if strings.EqualFold(accounts[i].Email, email) {
			account = &accounts[i]
			break
		}
	}
	if account == nil {
		return nil, apperr.ErrAuth
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, apperr.ErrAuth
	}

	if err := s.establishSession(account.User); err != nil {
		return nil, err
	}
	u := account.User
	return &u, nil
}

// CurrentUser reads the persisted session. A missing session returns nil; a
// malformed or expired one is destroyed on the spot (lazy invalidation, run
// on every call) and nil is returned.
func (s *Service) CurrentUser() *model.User {
	raw, ok, err := s.store.Get(sessionKey)
	if err != nil {
		s.logger.Error("read session", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	var sess model.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		s.logger.Warn("session corrupt, forcing logout", "error", err)
		s.Logout()
		return nil
	}
	if !sess.Valid(time.Now()) {
		s.logger.Warn("session expired, forcing logout", "user", sess.User.ID)
		s.Logout()
		return nil
	}

	u := sess.User
	return &u
}

// Logout unconditionally clears the session. Idempotent.
func (s *Service) Logout() {
	if err := s.store.Delete(sessionKey); err != nil {
		s.logger.Error("clear session", "error", err)
	}
}

func (s *Service) IsAuthenticated() bool {
	return s.CurrentUser() != nil
}

func (s *Service) establishSession(u model.User) error {
	sess := model.Session{User: u, Expiry: time.Now().Add(sessionTTL)}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.store.Set(sessionKey, string(data)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
