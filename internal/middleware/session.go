package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dahui-ai/assistant-server-go/internal/model"
	"github.com/dahui-ai/assistant-server-go/internal/service"
)

type contextKey string

const SessionContextKey contextKey = "session"

func GetSession(ctx context.Context) *model.SessionInfo {
	if session, ok := ctx.Value(SessionContextKey).(*model.SessionInfo); ok {
		return session
	}
	return nil
}

// SessionMiddleware authenticates requests by session id and refreshes the
// session's activity timestamp on every authenticated call.
type SessionMiddleware struct {
	access *service.AccessService
}

func NewSessionMiddleware(access *service.AccessService) *SessionMiddleware {
	return &SessionMiddleware{access: access}
}

func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := extractSessionID(r)
		if sessionID == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Missing session id",
			})
			return
		}

		session, err := m.access.ValidateSession(sessionID)
		if err != nil {
			log.Warn().Msg("session middleware: invalid session attempt")
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid or expired session",
			})
			return
		}

		m.access.TouchSession(sessionID)

		ctx := context.WithValue(r.Context(), SessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractSessionID(r *http.Request) string {
	if id := r.Header.Get("X-Session-Id"); id != "" {
		return id
	}
	return r.URL.Query().Get("session_id")
}
