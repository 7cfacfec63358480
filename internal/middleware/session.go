package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/set-night/groqchat/internal/config"
)

type ctxKey string

const SessionKey ctxKey = "session_id"

// GetSessionID extracts the session ID from context.
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionKey).(string)
	return id
}

// WithSessionID stores a session ID in ctx.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionKey, id)
}

// SessionLoader returns middleware that identifies the browser session by a
// cookie, issuing a new random ID when the cookie is missing or malformed.
func SessionLoader(secure bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(config.SessionCookieName); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}

			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     config.SessionCookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(config.SessionCookieAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
		})
	}
}
