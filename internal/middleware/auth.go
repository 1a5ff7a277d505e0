package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/aserras/webfront/internal/request"
)

// Session creates middleware that resolves the caller's session token
// (Authorization header or session cookie) and attaches it to the request
// context. It never rejects: endpoints that require a token wrap
// RequireToken as well.
func Session(cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := request.SessionToken(r, cookieName)
			if token != "" {
				r = r.WithContext(request.WithToken(r.Context(), token))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireToken rejects requests whose context carries no session token.
// Token validity is not checked here; the Brain backend is the authority
// and answers 401 for bad tokens, which handlers pass through.
func RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if request.TokenFromContext(r) == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"detail": "Authentication required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
