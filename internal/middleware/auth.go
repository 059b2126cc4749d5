package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/dukerupert/apex/internal/auth"
)

// RequireAuth rejects requests that arrive without a live session.
// Session lookup is delegated to the auth service, which also handles
// lazy expiry, so a request made with a stale session both fails here
// and clears the stored session.
func RequireAuth(authSvc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authSvc.CurrentUser() == nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
