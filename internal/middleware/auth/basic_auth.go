package auth

import (
	"context"
	"net/http"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

// StaffVerifier checks the password of a back-office account.
type StaffVerifier interface {
	StaffLogin(ctx context.Context, kind storage.StaffKind, password string) (storage.StaffUser, error)
}

// BasicAuth lets a request through when its basic credentials belong to one
// of the allowed staff accounts. The user name is the account kind.
func BasicAuth(verifier StaffVerifier, allowed ...storage.StaffKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				requireAuth(w)
				return
			}

			kind := storage.StaffKind(username)
			if !permitted(kind, allowed) {
				requireAuth(w)
				return
			}

			if _, err := verifier.StaffLogin(r.Context(), kind, password); err != nil {
				requireAuth(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func permitted(kind storage.StaffKind, allowed []storage.StaffKind) bool {
	for _, k := range allowed {
		if k == kind {
			return true
		}
	}
	return false
}

func requireAuth(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="Taller"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
