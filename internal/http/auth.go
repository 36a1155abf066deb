package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
)

// withAuth gates a handler behind the shared app password, sent as a
// bearer token. An empty configured password disables the gate, which
// is the local-development mode.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	if s.password == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.password)) != 1 {
			slog.WarnContext(r.Context(), "Unauthorized request", "url", r.URL.Path)
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}
