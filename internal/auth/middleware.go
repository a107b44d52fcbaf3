package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// contextKey is an unexported type so no other package can read or shadow
// the session ID stored in a request context.
type contextKey string

const sessionIDKey contextKey = "sessionID"

// Session is a middleware that guarantees every request has a session.
//
// It reads the JWT from the session cookie and, when it is valid, stores
// the session ID in the request context. When the cookie is missing or
// invalid (expired, tampered, signed by an old secret) a new session is
// minted and its cookie set on the response. The request always continues.
func Session(tokens *TokenService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := extractSessionID(r, tokens)
			if err != nil {
				id = NewSessionID()
				token, err := tokens.Generate(id)
				if err != nil {
					logger.Error("issuing session token failed", slog.String("error", err.Error()))
					writeSessionError(w)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(tokens.ttl.Seconds()),
					HttpOnly: true,
					Secure:   r.TLS != nil,
					SameSite: http.SameSiteLaxMode,
				})
				logger.Debug("session started", slog.String("session", id))
			}

			ctx := WithSessionID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeSessionError answers 500 in the same JSON shape as the API handlers.
func writeSessionError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "internal_error",
		"message": "could not start a session",
	})
}

// WithSessionID returns a copy of ctx carrying id.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext returns the session ID the Session middleware stored.
// Returns ("", false) outside of that middleware.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}

// extractSessionID reads the session cookie and validates it.
func extractSessionID(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", err
	}

	return tokens.Validate(cookie.Value)
}
