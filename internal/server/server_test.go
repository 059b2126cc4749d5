package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukerupert/apex/internal/database"
	"github.com/dukerupert/apex/internal/kv"
	"github.com/dukerupert/apex/internal/model"
)

func setupServer(t *testing.T) http.Handler {
	t.Helper()
	db, err := database.Open(t.TempDir() + "/apex.db")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	kvStore := kv.NewSQLiteStore(db, 0)
	srv := New(db, kvStore, Config{PollInterval: time.Minute}, logger)
	return srv.Router()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "127.0.0.1:9999"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	router := setupServer(t)
	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: got %d, want 200", rec.Code)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	router := setupServer(t)
	for _, path := range []string{"/api/records", "/api/contacts", "/api/logs", "/api/reminders"} {
		rec := doJSON(t, router, http.MethodGet, path, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without session: got %d, want 401", path, rec.Code)
		}
	}
}

func TestSignupLoginRecordFlow(t *testing.T) {
	router := setupServer(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "hunter2hunter2",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: got %d, want 201: %s", rec.Code, rec.Body)
	}

	// Signup establishes a session.
	rec = doJSON(t, router, http.MethodGet, "/api/auth/me", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me after signup: got %d, want 200", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/records", map[string]string{
		"company": "Initech", "name": "Bill",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create record: got %d, want 201: %s", rec.Code, rec.Body)
	}
	var created model.TrackingRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding created record: %v", err)
	}
	if created.ID == "" || created.Company != "Initech" {
		t.Errorf("unexpected record: %+v", created)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/records", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list records: got %d, want 200", rec.Code)
	}
	var records []model.TrackingRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decoding records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/records/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete record: got %d, want 200: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/auth/logout", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: got %d, want 200", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/records", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("records after logout: got %d, want 401", rec.Code)
	}
}

func TestLoginRejectionIsGeneric(t *testing.T) {
	router := setupServer(t)

	doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "hunter2hunter2",
	})
	doJSON(t, router, http.MethodPost, "/api/auth/logout", nil)

	wrongPass := doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ada@example.com", "password": "wrong",
	})
	unknownUser := doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "nobody@example.com", "password": "whatever",
	})

	if wrongPass.Code != http.StatusUnauthorized || unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("got %d and %d, want 401 for both", wrongPass.Code, unknownUser.Code)
	}
	if wrongPass.Body.String() != unknownUser.Body.String() {
		t.Error("rejection bodies should be indistinguishable")
	}
}

func TestDuplicateSignupConflicts(t *testing.T) {
	router := setupServer(t)

	doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "hunter2hunter2",
	})
	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Imposter", "email": "ADA@example.com", "password": "hunter2hunter2",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: got %d, want 409", rec.Code)
	}
}
