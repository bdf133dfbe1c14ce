package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"greenia/internal/models"
)

type ctxKey string

const ctxSession ctxKey = "session"

// SessionParser verifies an access token and returns the session it carries.
type SessionParser interface {
	Parse(ctx context.Context, token string) (*models.Session, error)
}

// JWTAuth requires a valid bearer token and stores the decoded session in the
// request context.
func JWTAuth(sessions SessionParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "Missing Authorization header")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid Authorization header")
				return
			}

			sess, err := sessions.Parse(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				log.Debug().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("Rejected access token")
				writeError(w, http.StatusUnauthorized, "invalid_token", "Invalid or expired session")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// RequireRole rejects sessions whose role is not role. It must run after JWTAuth.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
				return
			}
			if sess.Role != role {
				writeError(w, http.StatusForbidden, "forbidden", "This action requires the "+string(role)+" role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithSession(ctx context.Context, sess *models.Session) context.Context {
	return context.WithValue(ctx, ctxSession, sess)
}

func SessionFrom(ctx context.Context) (*models.Session, bool) {
	sess, ok := ctx.Value(ctxSession).(*models.Session)
	return sess, ok && sess != nil
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code, "message": message})
}
