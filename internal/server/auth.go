package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/srinivastls/AADIS/internal/logging"
)

// authMiddleware guards the QA routes with a static Bearer token. An empty
// apiKey disables the check entirely; the server logs a single warning at
// startup so a deployment is never silently open by accident.
//
// The token comparison is constant-time, and presented token values never
// reach the logs — only their presence or absence is recorded.
func authMiddleware(apiKey string, next http.Handler) http.Handler {
	if apiKey == "" {
		return next
	}
	want := []byte(apiKey)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			logging.FromContext(r.Context()).Warn("auth: missing bearer token",
				slog.String("path", r.URL.Path),
			)
			unauthorized(w, `Bearer realm="aadis"`, "authorization required")
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), want) != 1 {
			logging.FromContext(r.Context()).Warn("auth: token rejected",
				slog.String("path", r.URL.Path),
			)
			unauthorized(w, `Bearer realm="aadis" error="invalid_token"`, "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// unauthorized writes a 401 carrying the given WWW-Authenticate challenge.
func unauthorized(w http.ResponseWriter, challenge, msg string) {
	w.Header().Set("WWW-Authenticate", challenge)
	http.Error(w, msg, http.StatusUnauthorized)
}

// bearerToken extracts the credential from "Authorization: Bearer <token>".
// The scheme match is case-insensitive per RFC 7235.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
