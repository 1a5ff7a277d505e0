package middleware

import (
	"net/http"
	"strings"
)

// webhookPath carries a provider-defined content type and is exempt from
// the JSON requirement. Its body must also reach the handler unmodified
// for signature verification.
const webhookPath = "/api/payments/webhook"

// ContentType validates Content-Type headers for requests with bodies
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut {
			if r.URL.Path != webhookPath && r.ContentLength != 0 {
				contentType := r.Header.Get("Content-Type")
				if contentType == "" {
					http.Error(w, "Content-Type header is required", http.StatusBadRequest)
					return
				}
				if !strings.HasPrefix(strings.ToLower(contentType), "application/json") {
					http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
					return
				}
			}
		}

		next.ServeHTTP(w, r)
	})
}
