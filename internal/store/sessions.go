package store

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/dahui-ai/assistant-server-go/internal/errors"
	"github.com/dahui-ai/assistant-server-go/internal/model"
)

const sessionIDBytes = 16

// KindResolver resolves the current kind of an access code. Implemented by
// *CodeStore; injected so session validation can be tested without a file.
type KindResolver interface {
	KindOf(token string) (model.CodeKind, bool)
}

// SessionTable is the in-memory session registry. Sessions live for the
// process lifetime only and are never removed; there is no logout path.
type SessionTable struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	kinds    KindResolver
}

func NewSessionTable(kinds KindResolver) *SessionTable {
	return &SessionTable{
		sessions: make(map[string]*model.Session),
		kinds:    kinds,
	}
}

// Create mints a session bound to accessCode. Session ids are 32 hex chars
// of crypto/rand output, unrelated to the code token namespace.
func (t *SessionTable) Create(accessCode, ip, userAgent string) string {
	id := generateSessionID()
	now := time.Now().UTC()

	t.mu.Lock()
	t.sessions[id] = &model.Session{
		SessionID:    id,
		AccessCode:   accessCode,
		IPAddress:    ip,
		UserAgent:    userAgent,
		StartedAt:    now,
		LastActivity: now,
		IsActive:     true,
	}
	t.mu.Unlock()

	log.Info().Str("sessionId", id[:8]+"...").Str("ip", ip).Msg("session created")
	return id
}

// Validate looks up a session and resolves the bound code's current kind.
// A session stays valid even if its code has since been consumed, reset or
// deleted: code state is only checked at login.
func (t *SessionTable) Validate(sessionID string) (*model.SessionInfo, error) {
	t.mu.RLock()
	session, ok := t.sessions[sessionID]
	t.mu.RUnlock()

	if !ok {
		return nil, apperrors.InvalidSession("Session not found or expired")
	}
	if !session.IsActive {
		return nil, apperrors.InvalidSession("Session is no longer active")
	}

	kind, ok := t.kinds.KindOf(session.AccessCode)
	if !ok {
		kind = model.CodeKindUnknown
	}

	return &model.SessionInfo{
		SessionID:  session.SessionID,
		AccessCode: session.AccessCode,
		IPAddress:  session.IPAddress,
		CodeKind:   kind,
	}, nil
}

// Touch refreshes a session's last-activity timestamp. No-op for unknown
// sessions. LastActivity never moves backwards.
func (t *SessionTable) Touch(sessionID string) {
	now := time.Now().UTC()

	t.mu.Lock()
	defer t.mu.Unlock()
	if session, ok := t.sessions[sessionID]; ok {
		if now.After(session.LastActivity) {
			session.LastActivity = now
		}
	}
}

// List returns a snapshot of every session, for the admin surface.
func (t *SessionTable) List() []model.Session {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]model.Session, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, *s)
	}
	return out
}

func generateSessionID() string {
	bytes := make([]byte, sessionIDBytes)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)
}
