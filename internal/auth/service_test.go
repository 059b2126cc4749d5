package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/apex/internal/apperr"
	"github.com/dukerupert/apex/internal/database"
	"github.com/dukerupert/apex/internal/kv"
	"github.com/dukerupert/apex/internal/model"
)

func setupService(t *testing.T) (*Service, kv.Store) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store := kv.NewSQLiteStore(db, 0)
	return NewService(store, slog.Default()), store
}

func TestSignup(t *testing.T) {
	svc, _ := setupService(t)

	u, err := svc.Signup("Ada", "Ada@X.com", "password1")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if u.ID == "" {
		t.Error("expected non-empty user id")
	}
	if u.Email != "ada@x.com" {
		t.Errorf("email = %q, want lowercased %q", u.Email, "ada@x.com")
	}
	if u.Role != model.RoleUser {
		t.Errorf("role = %q, want USER", u.Role)
	}
	if !svc.IsAuthenticated() {
		t.Error("expected session established after signup")
	}
}

func TestSignupValidation(t *testing.T) {
	svc, _ := setupService(t)

	cases := []struct {
		name, userName, email, password string
	}{
		{"empty name", "", "a@x.com", "password1"},
		{"empty email", "Ada", "", "password1"},
		{"short password", "Ada", "a@x.com", "seven77"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(tc.userName, tc.email, tc.password)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestSignupConflict(t *testing.T) {
	svc, _ := setupService(t)

	if _, err := svc.Signup("Ada", "ada@x.com", "password1"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	// Case-insensitive collision.
	_, err := svc.Signup("Imposter", "ADA@X.COM", "password2")
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestLoginGenericRejection(t *testing.T) {
	svc, _ := setupService(t)

	if _, err := svc.Signup("Ada", "ada@x.com", "password1"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	svc.Logout()

	_, unknownErr := svc.Login("nobody@x.com", "password1")
	_, wrongPassErr := svc.Login("ada@x.com", "wrongpass")

	if !errors.Is(unknownErr, apperr.ErrAuth) {
		t.Errorf("unknown email: expected ErrAuth, got %v", unknownErr)
	}
	if !errors.Is(wrongPassErr, apperr.ErrAuth) {
		t.Errorf("wrong password: expected ErrAuth, got %v", wrongPassErr)
	}
	// Same generic message for both failure modes.
	if unknownErr.Error() != wrongPassErr.Error() {
		t.Errorf("messages differ: %q vs %q", unknownErr, wrongPassErr)
	}
	if svc.IsAuthenticated() {
		t.Error("failed login must not establish a session")
	}
}

func TestLoginSuccess(t *testing.T) {
	svc, _ := setupService(t)

	orig, _ := svc.Signup("Ada", "ada@x.com", "password1")
	svc.Logout()

	u, err := svc.Login("ada@x.com", "password1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.ID != orig.ID {
		t.Errorf("login returned user %q, want %q", u.ID, orig.ID)
	}
	if !svc.IsAuthenticated() {
		t.Error("expected session after login")
	}
}

func TestSessionExpiry(t *testing.T) {
	svc, store := setupService(t)

	u, _ := svc.Signup("Ada", "ada@x.com", "password1")

	// Rewind the stored expiry into the past; the very first read after
	// expiry must return nil and destroy the session.
	sess := model.Session{User: *u, Expiry: time.Now().Add(-time.Minute)}
	data, _ := json.Marshal(sess)
	if err := store.Set("apex_auth_session", string(data)); err != nil {
		t.Fatalf("seed expired session: %v", err)
	}

	if got := svc.CurrentUser(); got != nil {
		t.Fatalf("expected nil user for expired session, got %+v", got)
	}
	if _, ok, _ := store.Get("apex_auth_session"); ok {
		t.Error("expired session should have been destroyed")
	}
	if svc.IsAuthenticated() {
		t.Error("IsAuthenticated must be false immediately after expiry")
	}
}

func TestMalformedSessionDestroyed(t *testing.T) {
	svc, store := setupService(t)

	if err := store.Set("apex_auth_session", `{"legacy":"token"}`); err != nil {
		t.Fatalf("seed malformed session: %v", err)
	}
	if got := svc.CurrentUser(); got != nil {
		t.Fatalf("expected nil for malformed session, got %+v", got)
	}
	if _, ok, _ := store.Get("apex_auth_session"); ok {
		t.Error("malformed session should have been destroyed")
	}
}

func TestLogoutIdempotent(t *testing.T) {
	svc, _ := setupService(t)

	svc.Signup("Ada", "ada@x.com", "password1")
	svc.Logout()
	svc.Logout() // second call is a no-op, must not panic or error

	if svc.CurrentUser() != nil {
		t.Error("expected nil user after logout")
	}
}

func TestSignupStorageFull(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store := kv.NewSQLiteStore(db, 64) // too small for a bcrypt hash
	svc := NewService(store, slog.Default())

	_, err = svc.Signup("Ada", "ada@x.com", "password1")
	if !errors.Is(err, apperr.ErrStorageFull) {
		t.Fatalf("expected ErrStorageFull, got %v", err)
	}
}

func TestRegistryNeverReturnsHash(t *testing.T) {
	svc, store := setupService(t)

	u, _ := svc.Signup("Ada", "ada@x.com", "password1")

	data, _ := json.Marshal(u)
	if strings.Contains(string(data), "passwordHash") {
		t.Error("public projection leaked credential material")
	}
	// The hash does live in the registry namespace.
	raw, ok, _ := store.Get("apex_users_registry")
	if !ok || !strings.Contains(raw, "passwordHash") {
		t.Error("registry should persist the password hash")
	}
}

func TestConcurrentSignupsAllRegistered(t *testing.T) {
	svc, _ := setupService(t)

	const signups = 10
	var wg sync.WaitGroup
	for i := 0; i < signups; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := fmt.Sprintf("user%d@x.com", i)
			if _, err := svc.Signup(fmt.Sprintf("User %d", i), email, "password1"); err != nil {
				t.Errorf("signup %s: %v", email, err)
			}
		}(i)
	}
	wg.Wait()

	// Every account must survive the concurrent registry writes: each can
	// still authenticate afterwards.
	for i := 0; i < signups; i++ {
		email := fmt.Sprintf("user%d@x.com", i)
		if _, err := svc.Login(email, "password1"); err != nil {
			t.Errorf("login %s after concurrent signups: %v", email, err)
		}
	}
}
